package game

import (
	"embed"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed data
var dataFS embed.FS

// ErrUnknownTerrain is returned when a terrain key is not in the catalog.
var ErrUnknownTerrain = errors.New("unknown terrain type")

// UnitModifier is a terrain-specific adjustment for one unit type.
type UnitModifier struct {
	AttackBonus  float64 `yaml:"attack_bonus"`
	DefenseBonus float64 `yaml:"defense_bonus"`
}

// TerrainType is the immutable descriptor shared by every cell of that terrain.
type TerrainType struct {
	Key           string                  `yaml:"key"`
	Name          string                  `yaml:"name"`
	MovementCost  float64                 `yaml:"movement_cost"`
	DefenseBonus  float64                 `yaml:"defense_bonus"`
	Impassable    bool                    `yaml:"impassable"`
	Color         []int                   `yaml:"color,flow"`
	UnitModifiers map[string]UnitModifier `yaml:"unit_modifiers"`
}

// IsWalkable reports whether the bare terrain can be crossed.
func (t *TerrainType) IsWalkable() bool {
	return !t.Impassable
}

// RGBA returns the terrain's map colour, grey when none is configured.
func (t *TerrainType) RGBA() color.RGBA {
	if len(t.Color) < 3 {
		return color.RGBA{R: 128, G: 128, B: 128, A: 255}
	}
	return color.RGBA{R: uint8(t.Color[0]), G: uint8(t.Color[1]), B: uint8(t.Color[2]), A: 255}
}

// TerrainCatalog indexes terrain types by key.
type TerrainCatalog struct {
	types map[string]*TerrainType
	order []string
}

type terrainFile struct {
	Terrain []*TerrainType `yaml:"terrain"`
}

// LoadTerrainCatalog decodes a terrain catalog from YAML.
func LoadTerrainCatalog(r io.Reader) (*TerrainCatalog, error) {
	var f terrainFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode terrain catalog: %w", err)
	}
	tc := &TerrainCatalog{types: make(map[string]*TerrainType, len(f.Terrain))}
	for _, t := range f.Terrain {
		if t.Key == "" {
			return nil, fmt.Errorf("terrain %q: missing key", t.Name)
		}
		if _, dup := tc.types[t.Key]; dup {
			return nil, fmt.Errorf("terrain %q: duplicate key", t.Key)
		}
		if t.MovementCost <= 0 {
			t.MovementCost = 1.0
		}
		if t.UnitModifiers == nil {
			t.UnitModifiers = map[string]UnitModifier{}
		}
		tc.types[t.Key] = t
		tc.order = append(tc.order, t.Key)
	}
	return tc, nil
}

// LoadTerrainCatalogFile reads a terrain catalog from disk.
func LoadTerrainCatalogFile(path string) (*TerrainCatalog, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return LoadTerrainCatalog(fh)
}

// DefaultTerrainCatalog returns the built-in terrain set.
func DefaultTerrainCatalog() (*TerrainCatalog, error) {
	fh, err := dataFS.Open("data/terrain.yaml")
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return LoadTerrainCatalog(fh)
}

// Get returns the terrain type for key.
func (tc *TerrainCatalog) Get(key string) (*TerrainType, error) {
	t, ok := tc.types[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTerrain, key)
	}
	return t, nil
}

// Keys returns terrain keys in catalog order.
func (tc *TerrainCatalog) Keys() []string {
	out := make([]string, len(tc.order))
	copy(out, tc.order)
	return out
}
