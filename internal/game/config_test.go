package game

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sim.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultSimConfig_Valid(t *testing.T) {
	cfg := DefaultSimConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	if cfg.ArmySpeed != 5 || cfg.CollisionRadius != 0.75 || cfg.CombatTickInterval != 1 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadSimConfig_Overlay(t *testing.T) {
	cfg, err := LoadSimConfig(writeConfig(t, "army_speed: 3\nmap:\n  cols: 50\n  elevation:\n    octaves: 2\n"))
	if err != nil {
		t.Fatalf("LoadSimConfig: %v", err)
	}
	if cfg.ArmySpeed != 3 || cfg.Map.Cols != 50 || cfg.Map.Elevation.Octaves != 2 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	def := DefaultSimConfig()
	if cfg.Map.Rows != def.Map.Rows || cfg.Map.Elevation.Scale != def.Map.Elevation.Scale || cfg.TickSeconds != def.TickSeconds {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestLoadSimConfig_Errors(t *testing.T) {
	if _, err := LoadSimConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file accepted")
	}
	for name, body := range map[string]string{
		"malformed":      "army_speed: [",
		"zero tick":      "tick_seconds: 0\n",
		"negative speed": "army_speed: -1\n",
		"negative map":   "map:\n  cols: -4\n",
		"zero interval":  "combat_tick_interval: 0\n",
	} {
		if _, err := LoadSimConfig(writeConfig(t, body)); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}
