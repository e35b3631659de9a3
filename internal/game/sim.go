package game

import (
	"errors"
	"fmt"
	"math/rand"

	"go.uber.org/zap"
)

// Simulation owns one world and advances it in fixed order:
// AI, army movement, collision detection, combat resolution.
type Simulation struct {
	World    *World
	Config   SimConfig
	Generals []*General
	Events   *EventLog
	Logger   *zap.Logger
	Terrain  *TerrainCatalog
	Units    *UnitCatalog
	Map      *GeneratedMap // nil unless the map was generated

	seed        int64
	rng         *rand.Rand
	pathFn      PathFunc
	detector    *CollisionDetector
	grid        *Grid
	generate    bool
	factions    []*Faction
	tick        int
	now         float64
	combatAccum float64
	initial     map[FactionID]FactionTally
	stats       RunStats
	armyStart   map[ArmyID]ArmyGrade
	wins        map[ArmyID]int
	errs        []error
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra   simOptionKind = iota // config, seed, grid, catalogs, factions: applied first
	simOptArmy                         // armies: applied once the world exists
	simOptGeneral                      // generals: applied after armies have handles
)

// SimOption is a builder function applied to a Simulation during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*Simulation)
}

// WithConfig replaces the default tuning.
func WithConfig(cfg SimConfig) SimOption {
	return SimOption{simOptInfra, func(s *Simulation) {
		s.Config = cfg
	}}
}

// WithSeed sets the seed for combat rolls, spawn search and map generation.
func WithSeed(seed int64) SimOption {
	return SimOption{simOptInfra, func(s *Simulation) {
		s.seed = seed
		s.rng = rand.New(rand.NewSource(seed)) // #nosec G404 -- simulation rolls
	}}
}

// WithGrid runs the simulation on a prepared grid.
func WithGrid(g *Grid) SimOption {
	return SimOption{simOptInfra, func(s *Simulation) {
		s.grid = g
	}}
}

// WithGeneratedMap generates the grid from Config.Map and the seed.
func WithGeneratedMap() SimOption {
	return SimOption{simOptInfra, func(s *Simulation) {
		s.generate = true
	}}
}

// WithEventLog records events into el instead of a private log.
func WithEventLog(el *EventLog) SimOption {
	return SimOption{simOptInfra, func(s *Simulation) {
		if el != nil {
			s.Events = el
		}
	}}
}

// WithLogger sets the process logger; events are mirrored to it at debug level.
func WithLogger(l *zap.Logger) SimOption {
	return SimOption{simOptInfra, func(s *Simulation) {
		if l != nil {
			s.Logger = l
		}
	}}
}

// WithPathFunc replaces the pathfinder the generals use.
func WithPathFunc(fn PathFunc) SimOption {
	return SimOption{simOptInfra, func(s *Simulation) {
		s.pathFn = fn
	}}
}

// WithCatalogs replaces the embedded terrain and unit catalogs. Nil keeps
// the default.
func WithCatalogs(tc *TerrainCatalog, uc *UnitCatalog) SimOption {
	return SimOption{simOptInfra, func(s *Simulation) {
		if tc != nil {
			s.Terrain = tc
		}
		if uc != nil {
			s.Units = uc
		}
	}}
}

// WithFaction registers a side. Factions are known before map generation so
// territories can be handed out.
func WithFaction(id FactionID, name string, c [3]uint8) SimOption {
	return SimOption{simOptInfra, func(s *Simulation) {
		s.factions = append(s.factions, &Faction{ID: id, Name: name, Color: rgb(c)})
	}}
}

// WithArmy places an army built from roster at world position (x,y).
// Armies receive handles 1, 2, ... in option order.
func WithArmy(faction FactionID, x, y float64, roster Roster) SimOption {
	return SimOption{simOptArmy, func(s *Simulation) {
		s.addArmy(faction, x, y, roster)
	}}
}

// WithArmyInRegion places an army on a random walkable cell of the
// rectangle [x0,x1)x[y0,y1), or on fallback when none is found.
func WithArmyInRegion(faction FactionID, x0, y0, x1, y1 int, fallback Point, roster Roster) SimOption {
	return SimOption{simOptArmy, func(s *Simulation) {
		p, ok := FindSpawn(s.World.Grid, s.rng, x0, y0, x1, y1, 100)
		if !ok {
			s.Logger.Warn("no valid spawn point, using fallback",
				zap.Int("faction", int(faction)), zap.Stringer("fallback", fallback))
			p = fallback
		}
		x, y := CellToWorld(p)
		s.addArmy(faction, x, y, roster)
	}}
}

// WithGeneral puts the named AI profile in command of army.
func WithGeneral(army ArmyID, profile string) SimOption {
	return SimOption{simOptGeneral, func(s *Simulation) {
		if _, ok := s.World.Army(army); !ok {
			s.errs = append(s.errs, fmt.Errorf("general %q: %w: A%d", profile, ErrArmyNotFound, army))
			return
		}
		p := LoadProfile(s.Config.ProfileDir, profile, s.Logger)
		if p.Inert {
			s.Events.Add(0, fmt.Sprintf("A%d", army), "--", "ai", "inert",
				fmt.Sprintf("profile %q unavailable", profile), 0)
		}
		g := NewGeneral(army, p, s.pathFn)
		g.PathRecalcInterval = s.Config.PathRecalcInterval
		g.UnreachableCooldown = s.Config.UnreachableCooldown
		s.Generals = append(s.Generals, g)
	}}
}

// NewSimulation constructs a Simulation from the given options in three
// ordered passes:
//  1. Infrastructure (config, seed, grid or generated map, factions)
//  2. Armies
//  3. Generals
//
// Any error from the passes (unknown unit type, missing army) is returned.
func NewSimulation(opts ...SimOption) (*Simulation, error) {
	s := &Simulation{
		Config: DefaultSimConfig(),
		Events: NewEventLog(false),
		Logger: zap.NewNop(),
		seed:   1,
		rng:    rand.New(rand.NewSource(1)), // #nosec G404 -- simulation default
		pathFn: FindPath,
	}
	for _, o := range opts {
		if o.kind == simOptInfra {
			o.fn(s)
		}
	}
	s.Events.WithLogger(s.Logger)
	if err := s.Config.Validate(); err != nil {
		return nil, err
	}
	if err := s.buildWorld(); err != nil {
		return nil, err
	}

	for _, o := range opts {
		if o.kind == simOptArmy {
			o.fn(s)
		}
	}
	for _, o := range opts {
		if o.kind == simOptGeneral {
			o.fn(s)
		}
	}
	if len(s.errs) > 0 {
		return nil, errors.Join(s.errs...)
	}

	s.detector = NewCollisionDetector(s.World, s.World.Grid, s.rng, s.Events)
	s.initial = TallyWorld(s.World)
	s.stats = newRunStats(s.seed)
	s.recordArmyStarts()
	s.Logger.Info("simulation ready",
		zap.Int64("seed", s.seed),
		zap.Int("cols", s.World.Grid.Cols),
		zap.Int("rows", s.World.Grid.Rows),
		zap.Int("armies", len(s.World.Armies())),
		zap.Int("generals", len(s.Generals)))
	return s, nil
}

func (s *Simulation) buildWorld() error {
	if s.Terrain == nil {
		tc, err := DefaultTerrainCatalog()
		if err != nil {
			return fmt.Errorf("terrain catalog: %w", err)
		}
		s.Terrain = tc
	}
	if s.Units == nil {
		uc, err := DefaultUnitCatalog()
		if err != nil {
			return fmt.Errorf("unit catalog: %w", err)
		}
		s.Units = uc
	}

	var territories []*Territory
	switch {
	case s.grid != nil:
	case s.generate:
		ids := make([]FactionID, len(s.factions))
		for i, f := range s.factions {
			ids[i] = f.ID
		}
		m, err := GenerateMap(s.Config.Map, s.seed, s.Terrain, ids)
		if err != nil {
			return err
		}
		s.Map = m
		s.grid = m.Grid
		territories = m.Territories
	default:
		fill, err := s.Terrain.Get("GRASSLAND")
		if err != nil {
			return err
		}
		s.grid = NewGrid(s.Config.Map.Cols, s.Config.Map.Rows, fill)
	}

	s.World = NewWorld(s.grid, s.Events)
	s.World.Territories = territories
	for _, f := range s.factions {
		s.World.AddFaction(f)
	}
	return nil
}

func (s *Simulation) addArmy(faction FactionID, x, y float64, roster Roster) {
	units, err := s.Units.Build(roster)
	if err != nil {
		s.errs = append(s.errs, fmt.Errorf("army of %s: %w", factionLabel(faction), err))
		return
	}
	a := NewArmy(faction, x, y, units)
	a.Speed = s.Config.ArmySpeed
	a.CollisionRadius = s.Config.CollisionRadius
	s.World.AddArmy(a)
}

// Tick is the number of steps taken so far.
func (s *Simulation) Tick() int { return s.tick }

// Now is the elapsed simulation time in seconds.
func (s *Simulation) Now() float64 { return s.now }

// Seed is the seed the run was built with.
func (s *Simulation) Seed() int64 { return s.seed }

// Step advances the simulation by dt seconds.
func (s *Simulation) Step(dt float64) {
	s.tick++
	s.now += dt
	s.Events.SetTick(s.tick)

	for _, g := range s.Generals {
		g.Update(s.now, s.World)
	}

	for _, a := range s.World.Armies() {
		a.Update(dt, s.World.Grid)
	}

	for _, c := range s.detector.Detect(s.World.Armies(), s.World.ActiveCombats()) {
		s.World.AddCombat(c)
		s.stats.CombatsStarted++
		if s.stats.FirstContactTick < 0 {
			s.stats.FirstContactTick = s.tick
		}
	}

	s.combatAccum += dt
	for s.combatAccum >= s.Config.CombatTickInterval {
		s.combatAccum -= s.Config.CombatTickInterval
		s.resolveCombats()
	}
}

// resolveCombats runs one round of every active combat and retires the
// finished ones. A loser leaves the world; a winner with no other fight
// is released.
func (s *Simulation) resolveCombats() {
	for _, c := range s.World.ActiveCombats() {
		if !s.World.hasCombat(c.ID) {
			continue // severed by an earlier removal this round
		}
		res := c.Tick()
		s.stats.RoundsFought++
		if res.Status != CombatFinished {
			continue
		}
		s.stats.CombatsFinished++
		s.World.RemoveCombat(c.ID)

		losers := []ArmyID{res.Loser}
		if res.Winner == 0 {
			losers = []ArmyID{c.A, c.B}
		}
		for _, id := range losers {
			if err := s.World.RemoveArmy(id); err == nil {
				s.stats.ArmiesDestroyed++
			}
		}
		if res.Winner != 0 {
			s.wins[res.Winner]++
		}
		if w, ok := s.World.Army(res.Winner); ok && !s.World.inAnyCombat(w.ID) {
			w.LeaveCombat()
			s.Events.Add(s.tick, w.Label(), factionLabel(w.Faction), "combat", "released",
				fmt.Sprintf("%d units remain", len(w.Units)), float64(len(w.Units)))
		}
	}
}

// RunTicks advances the simulation n ticks of Config.TickSeconds.
func (s *Simulation) RunTicks(n int) {
	for i := 0; i < n; i++ {
		s.Step(s.Config.TickSeconds)
	}
}

// RunUntil advances the simulation up to maxTicks, stopping early if predicate
// returns true. Returns the tick at which the predicate was satisfied, or -1.
func (s *Simulation) RunUntil(predicate func(*Simulation) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		s.Step(s.Config.TickSeconds)
		if predicate(s) {
			return s.tick
		}
	}
	return -1
}

// Outcome judges the battle so far against the starting forces.
func (s *Simulation) Outcome() BattleOutcomeReason {
	return DetermineBattleOutcome(s.initial, s.World)
}

// SimSnapshot is a lightweight, copy-only view of the world at a tick.
type SimSnapshot struct {
	Tick    int              `json:"tick"`
	Time    float64          `json:"time"`
	Armies  []ArmySnapshot   `json:"armies"`
	Combats []CombatSnapshot `json:"combats"`
}

// ArmySnapshot is a copy of one army's state.
type ArmySnapshot struct {
	ID       ArmyID    `json:"id"`
	Label    string    `json:"label"`
	Faction  FactionID `json:"faction"`
	X        float64   `json:"x"`
	Y        float64   `json:"y"`
	Cell     Point     `json:"cell"`
	State    string    `json:"state"`
	Stance   string    `json:"stance"`
	Units    int       `json:"units"`
	HP       int       `json:"hp"`
	MaxHP    int       `json:"max_hp"`
	Target   ArmyID    `json:"target"`
	Path     []Point   `json:"path,omitempty"`
	Strength float64   `json:"strength"`
}

// CombatSnapshot is a copy of one combat's state.
type CombatSnapshot struct {
	ID       int    `json:"id"`
	A        ArmyID `json:"a"`
	B        ArmyID `json:"b"`
	Type     string `json:"type"`
	Defender ArmyID `json:"defender,omitempty"`
	Round    int    `json:"round"`
}

// Snapshot returns the current state of all armies and combats.
func (s *Simulation) Snapshot() SimSnapshot {
	snap := SimSnapshot{Tick: s.tick, Time: s.now}
	for _, a := range s.World.Armies() {
		snap.Armies = append(snap.Armies, SnapshotArmy(a))
	}
	for _, c := range s.World.ActiveCombats() {
		snap.Combats = append(snap.Combats, CombatSnapshot{
			ID:       c.ID,
			A:        c.A,
			B:        c.B,
			Type:     c.Type.String(),
			Defender: c.Defender,
			Round:    c.Round,
		})
	}
	return snap
}

// SnapshotArmy copies a's state.
func SnapshotArmy(a *Army) ArmySnapshot {
	return ArmySnapshot{
		ID:       a.ID,
		Label:    a.Label(),
		Faction:  a.Faction,
		X:        a.X,
		Y:        a.Y,
		Cell:     a.Cell(),
		State:    a.State().String(),
		Stance:   a.Stance.String(),
		Units:    len(a.Units),
		HP:       a.TotalHP(),
		MaxHP:    a.MaxHP(),
		Target:   a.Target(),
		Path:     a.Path(),
		Strength: a.Strength(),
	}
}
