// Package observer serves a running simulation over HTTP: JSON endpoints for
// the world, armies, cells, path previews and the event log, and a websocket
// that streams snapshots as the simulation advances.
package observer

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Garsondee/Eternal-War/internal/game"
)

const (
	defaultStreamInterval = 100 * time.Millisecond
	defaultEventBacklog   = 4096
	wsWriteTimeout        = 5 * time.Second
)

// worldInfo is the part of the world that does not change once the
// simulation is built.
type worldInfo struct {
	Seed        int64           `json:"seed"`
	Cols        int             `json:"cols"`
	Rows        int             `json:"rows"`
	Factions    []factionInfo   `json:"factions"`
	Territories []territoryInfo `json:"territories"`
}

type factionInfo struct {
	ID    game.FactionID `json:"id"`
	Name  string         `json:"name"`
	Color string         `json:"color"`
}

type territoryInfo struct {
	ID    int            `json:"id"`
	Name  string         `json:"name"`
	Owner game.FactionID `json:"owner"`
	Cells int            `json:"cells"`
}

// Server owns a Simulation. Only the goroutine in Run (or a caller of
// Advance) touches the simulation; handlers read published copies.
type Server struct {
	sim *game.Simulation
	log *zap.Logger

	grid   *game.Grid
	static worldInfo

	// StreamInterval is how often websocket clients are checked for a new
	// snapshot.
	StreamInterval time.Duration

	mu        sync.RWMutex
	snap      game.SimSnapshot
	stats     game.RunStats
	events    []game.EventEntry
	eventBase int // log index of events[0]
	lastEvent int
	decided   bool

	// maxEvents bounds the retained event backlog; older entries are
	// dropped and ?since= below the window starts at its oldest entry.
	maxEvents int

	upgrader websocket.Upgrader
}

// New wraps sim and publishes its initial state.
func New(sim *game.Simulation, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		sim:            sim,
		log:            log,
		grid:           sim.World.Grid,
		StreamInterval: defaultStreamInterval,
		maxEvents:      defaultEventBacklog,
		upgrader:       websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
	s.static = worldInfo{Seed: sim.Seed(), Cols: s.grid.Cols, Rows: s.grid.Rows}
	for _, f := range sim.World.Factions() {
		s.static.Factions = append(s.static.Factions, factionInfo{
			ID:    f.ID,
			Name:  f.Name,
			Color: hexColor(f.Color.R, f.Color.G, f.Color.B),
		})
	}
	for _, t := range sim.World.Territories {
		s.static.Territories = append(s.static.Territories, territoryInfo{
			ID: t.ID, Name: t.Name, Owner: t.Owner, Cells: len(t.Cells),
		})
	}
	s.publish()
	return s
}

// Router returns the HTTP routes.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/world", s.handleWorld).Methods(http.MethodGet)
	api.HandleFunc("/armies/{id:[0-9]+}", s.handleArmy).Methods(http.MethodGet)
	api.HandleFunc("/cells/{x:-?[0-9]+}/{y:-?[0-9]+}", s.handleCell).Methods(http.MethodGet)
	api.HandleFunc("/path", s.handlePath).Methods(http.MethodGet)
	api.HandleFunc("/events", s.handleEvents).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.handleWS)
	return r
}

// Advance steps the simulation n ticks and publishes the result. Once the
// battle is decided further calls do nothing.
func (s *Server) Advance(n int) {
	s.mu.RLock()
	decided := s.decided
	s.mu.RUnlock()
	if decided {
		return
	}
	dt := s.sim.Config.TickSeconds
	for i := 0; i < n; i++ {
		s.sim.Step(dt)
	}
	s.publish()
}

// Run advances the simulation in real time until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	dt := s.sim.Config.TickSeconds
	ticker := time.NewTicker(time.Duration(dt * float64(time.Second)))
	defer ticker.Stop()
	s.log.Info("simulation running", zap.Float64("tick_seconds", dt), zap.Int64("seed", s.sim.Seed()))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Advance(1)
		}
	}
}

// publish copies the simulation's current state for the handlers.
func (s *Server) publish() {
	snap := s.sim.Snapshot()
	stats := s.sim.Stats()
	fresh, n := s.sim.Events.Since(s.lastEvent)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
	s.stats = stats
	s.events = append(s.events, fresh...)
	if drop := len(s.events) - s.maxEvents; drop > 0 {
		kept := copy(s.events, s.events[drop:])
		clear(s.events[kept:])
		s.events = s.events[:kept]
		s.eventBase += drop
	}
	s.lastEvent = n
	if !s.decided && stats.Outcome != game.OutcomeInconclusive.String() {
		s.decided = true
		s.log.Info("battle decided",
			zap.String("outcome", stats.Outcome),
			zap.Int("winner", int(stats.Winner)),
			zap.Int("tick", stats.Ticks),
			zap.String("description", stats.Description))
	}
}

func (s *Server) snapshot() game.SimSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}
