package game

import (
	"fmt"
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GeneratedMap is the output of GenerateMap.
type GeneratedMap struct {
	Grid        *Grid
	Territories []*Territory
	Roads       [][]Point
	Seed        int64
}

// GenerateMap builds a terrain grid from two fractal noise layers, lays a
// road network between random points of interest and partitions the result
// into territories handed to factions round-robin. The same seed always
// yields the same map.
func GenerateMap(cfg MapConfig, seed int64, tc *TerrainCatalog, factions []FactionID) (*GeneratedMap, error) {
	if tc == nil {
		var err error
		if tc, err = DefaultTerrainCatalog(); err != nil {
			return nil, fmt.Errorf("generate map: %w", err)
		}
	}
	elevation := noiseMap(cfg.Cols, cfg.Rows, cfg.Elevation, seed)
	moisture := noiseMap(cfg.Cols, cfg.Rows, cfg.Moisture, seed+1)

	g := NewGrid(cfg.Cols, cfg.Rows, nil)
	var walkable []Point
	for y := 0; y < g.Rows; y++ {
		for x := 0; x < g.Cols; x++ {
			key := classifyBiome(elevation[y][x], moisture[y][x], defaultBiomeConfig)
			t, err := tc.Get(key)
			if err != nil {
				return nil, fmt.Errorf("generate map: %w", err)
			}
			g.SetTerrain(x, y, t)
			if t.IsWalkable() {
				walkable = append(walkable, Point{x, y})
			}
		}
	}

	rng := rand.New(rand.NewSource(seed))
	roads := generateRoads(g, rng, walkable, cfg)

	territories := partitionTerritories(g, cfg.TerritoriesX, cfg.TerritoriesY)
	assignOwners(territories, factions)

	return &GeneratedMap{Grid: g, Territories: territories, Roads: roads, Seed: seed}, nil
}

// noiseMap samples octave OpenSimplex noise into a rows x cols array and
// normalises it to 0-1. A flat map is returned unnormalised.
func noiseMap(cols, rows int, nc NoiseConfig, seed int64) [][]float64 {
	if cols <= 0 || rows <= 0 {
		return nil
	}
	scale := nc.Scale
	if scale <= 0 {
		scale = 1
	}
	noise := opensimplex.New(seed)

	out := make([][]float64, rows)
	lo, hi := math.Inf(1), math.Inf(-1)
	for y := 0; y < rows; y++ {
		out[y] = make([]float64, cols)
		for x := 0; x < cols; x++ {
			amplitude, frequency, v := 1.0, 1.0, 0.0
			for o := 0; o < nc.Octaves; o++ {
				sx := float64(x) / scale * frequency
				sy := float64(y) / scale * frequency
				v += noise.Eval2(sx, sy) * amplitude
				amplitude *= nc.Persistence
				frequency *= nc.Lacunarity
			}
			out[y][x] = v
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}

	if hi > lo {
		span := hi - lo
		for y := range out {
			for x := range out[y] {
				out[y][x] = (out[y][x] - lo) / span
			}
		}
	}
	return out
}

// FindSpawn picks a random walkable cell inside the rectangle [x0,x1)x[y0,y1),
// trying at most attempts times. The rectangle is clipped to the grid.
func FindSpawn(g *Grid, rng *rand.Rand, x0, y0, x1, y1, attempts int) (Point, bool) {
	x0, y0 = max(x0, 0), max(y0, 0)
	x1, y1 = min(x1, g.Cols), min(y1, g.Rows)
	if x1 <= x0 || y1 <= y0 {
		return Point{}, false
	}
	for i := 0; i < attempts; i++ {
		p := Point{x0 + rng.Intn(x1-x0), y0 + rng.Intn(y1-y0)}
		if c := g.AtPoint(p); c != nil && c.IsWalkable() {
			return p, true
		}
	}
	return Point{}, false
}
