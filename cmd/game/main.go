package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/Garsondee/Eternal-War/internal/game"
	"github.com/Garsondee/Eternal-War/internal/viewer"
)

func main() {
	var seed int64
	var configPath string
	var dev bool
	var width, height int

	flag.Int64Var(&seed, "seed", 1, "seed for map generation and combat rolls")
	flag.StringVar(&configPath, "config", "", "YAML simulation config (defaults if empty)")
	flag.BoolVar(&dev, "dev", false, "development logging (debug level, event mirror)")
	flag.IntVar(&width, "width", 1600, "window width")
	flag.IntVar(&height, "height", 900, "window height")
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

	ebiten.SetWindowTitle("Eternal War")
	ebiten.SetWindowSize(width, height)
	if err := ebiten.RunGame(viewer.New(sim, logger, width, height)); err != nil {
		logger.Fatal("viewer", zap.Error(err))
	}
}
