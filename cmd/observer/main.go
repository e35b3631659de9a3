package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Garsondee/Eternal-War/internal/game"
	"github.com/Garsondee/Eternal-War/internal/observer"
)

func main() {
	var addr string
	var seed int64
	var configPath string
	var dev bool

	flag.StringVar(&addr, "addr", ":8080", "listen address")
	flag.Int64Var(&seed, "seed", 1, "seed for map generation and combat rolls")
	flag.StringVar(&configPath, "config", "", "YAML simulation config (defaults if empty)")
	flag.BoolVar(&dev, "dev", false, "development logging")
	flag.Parse()

	var logger *zap.Logger
	var err error
	if dev {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg := game.DefaultSimConfig()
	if configPath != "" {
		if cfg, err = game.LoadSimConfig(configPath); err != nil {
			logger.Fatal("config", zap.Error(err))
		}
	}
	opts := append([]game.SimOption{
		game.WithConfig(cfg),
		game.WithSeed(seed),
		game.WithLogger(logger),
	}, game.DefaultScenario(cfg.Map)...)
	sim, err := game.NewSimulation(opts...)
	if err != nil {
		logger.Fatal("simulation setup", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := observer.New(sim, logger)
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("simulation stopped", zap.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	logger.Info("observer listening", zap.String("addr", addr), zap.Int64("seed", seed))
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("listen", zap.Error(err))
	}
	logger.Info("observer stopped")
}
