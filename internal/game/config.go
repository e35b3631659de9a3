package game

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// NoiseConfig parameterises one fractal noise layer.
type NoiseConfig struct {
	Scale       float64 `yaml:"scale"`
	Octaves     int     `yaml:"octaves"`
	Persistence float64 `yaml:"persistence"`
	Lacunarity  float64 `yaml:"lacunarity"`
}

// MapConfig controls procedural map generation.
type MapConfig struct {
	Cols int `yaml:"cols"`
	Rows int `yaml:"rows"`

	Elevation NoiseConfig `yaml:"elevation"`
	Moisture  NoiseConfig `yaml:"moisture"`

	RoadMinPOI      int `yaml:"road_min_poi"`       // at least this many points of interest
	RoadCellsPerPOI int `yaml:"road_cells_per_poi"` // one extra POI per this many cells

	TerritoriesX int `yaml:"territories_x"`
	TerritoriesY int `yaml:"territories_y"`
}

// SimConfig holds the tunables of one simulation run.
type SimConfig struct {
	TickSeconds         float64 `yaml:"tick_seconds"`          // dt per Step in RunTicks
	CombatTickInterval  float64 `yaml:"combat_tick_interval"`  // seconds between combat rounds
	ArmySpeed           float64 `yaml:"army_speed"`            // cells per second
	CollisionRadius     float64 `yaml:"collision_radius"`      // cells
	PathRecalcInterval  float64 `yaml:"path_recalc_interval"`  // seconds
	UnreachableCooldown float64 `yaml:"unreachable_cooldown"`  // seconds
	ProfileDir          string  `yaml:"profile_dir"`           // empty = embedded profiles

	Map MapConfig `yaml:"map"`
}

// DefaultSimConfig returns the stock tuning.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		TickSeconds:         1.0 / 60.0,
		CombatTickInterval:  1.0,
		ArmySpeed:           defaultArmySpeed,
		CollisionRadius:     defaultCollisionRadius,
		PathRecalcInterval:  defaultPathRecalcInterval,
		UnreachableCooldown: defaultUnreachableCooldown,
		Map: MapConfig{
			Cols:            100,
			Rows:            100,
			Elevation:       NoiseConfig{Scale: 90, Octaves: 6, Persistence: 0.5, Lacunarity: 2.0},
			Moisture:        NoiseConfig{Scale: 70, Octaves: 4, Persistence: 0.5, Lacunarity: 2.0},
			RoadMinPOI:      10,
			RoadCellsPerPOI: 200,
			TerritoriesX:    3,
			TerritoriesY:    3,
		},
	}
}

// LoadSimConfig overlays the YAML file at path onto the defaults. Keys not
// present in the file keep their default value.
func LoadSimConfig(path string) (SimConfig, error) {
	cfg := DefaultSimConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read sim config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse sim config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("sim config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the simulation cannot run with.
func (c SimConfig) Validate() error {
	switch {
	case c.TickSeconds <= 0:
		return fmt.Errorf("tick_seconds must be positive, got %v", c.TickSeconds)
	case c.CombatTickInterval <= 0:
		return fmt.Errorf("combat_tick_interval must be positive, got %v", c.CombatTickInterval)
	case c.ArmySpeed < 0:
		return fmt.Errorf("army_speed must not be negative, got %v", c.ArmySpeed)
	case c.CollisionRadius < 0:
		return fmt.Errorf("collision_radius must not be negative, got %v", c.CollisionRadius)
	case c.Map.Cols < 0 || c.Map.Rows < 0:
		return fmt.Errorf("map size must not be negative, got %dx%d", c.Map.Cols, c.Map.Rows)
	}
	return nil
}
