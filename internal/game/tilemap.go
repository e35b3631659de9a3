package game

import (
	"fmt"
	"math"
	"sync/atomic"
)

// NoTerritory marks a cell that belongs to no territory.
const NoTerritory = -1

// minMovementCost is the floor applied after feature multipliers.
const minMovementCost = 0.1

// Point addresses one grid cell by column and row.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Cell is one grid location: base terrain plus mutable features.
type Cell struct {
	Terrain   *TerrainType
	Features  []Feature
	Territory int
}

// AddFeature places f on the cell unless an identical feature is already present.
// Cells that belong to a Grid should be changed through Grid.AddFeature.
func (c *Cell) AddFeature(f Feature) {
	for _, have := range c.Features {
		if have == f {
			return
		}
	}
	c.Features = append(c.Features, f)
}

// HasFeature reports whether any feature of kind k is on the cell.
func (c *Cell) HasFeature(k FeatureKind) bool {
	for _, f := range c.Features {
		if f.Kind() == k {
			return true
		}
	}
	return false
}

// IsWalkable is true when a feature overrides walkability or the base terrain
// is passable.
func (c *Cell) IsWalkable() bool {
	for _, f := range c.Features {
		if w, ok := f.(walkabilityOverride); ok && w.OverridesWalkability() {
			return true
		}
	}
	return c.Terrain != nil && c.Terrain.IsWalkable()
}

// MovementCost folds the base cost through every feature multiplier.
// Returns +Inf for an impassable cell.
func (c *Cell) MovementCost() float64 {
	if !c.IsWalkable() {
		return math.Inf(1)
	}
	cost := 1.0
	if c.Terrain != nil {
		cost = c.Terrain.MovementCost
	}
	for _, f := range c.Features {
		if m, ok := f.(costMultiplier); ok {
			cost *= m.MovementMultiplier()
		}
	}
	return math.Max(minMovementCost, cost)
}

// DefenseBonus is the aggregate defence granted to an army holding the cell.
func (c *Cell) DefenseBonus() float64 {
	if c.Terrain == nil {
		return 0
	}
	return c.Terrain.DefenseBonus
}

// UnitModifiers returns the per-unit-type modifiers published by the terrain.
func (c *Cell) UnitModifiers() map[string]UnitModifier {
	if c.Terrain == nil {
		return nil
	}
	return c.Terrain.UnitModifiers
}

// Grid is a fixed-size row-major array of cells. One world unit is one cell.
type Grid struct {
	Cols  int
	Rows  int
	cells []Cell

	// minCost caches the cheapest walkable entry cost; nil when stale.
	minCost atomic.Pointer[float64]
}

// NewGrid creates a cols x rows grid filled with the given terrain.
// Negative dimensions yield an empty grid.
func NewGrid(cols, rows int, fill *TerrainType) *Grid {
	if cols < 0 || rows < 0 {
		cols, rows = 0, 0
	}
	g := &Grid{Cols: cols, Rows: rows, cells: make([]Cell, cols*rows)}
	for i := range g.cells {
		g.cells[i] = Cell{Terrain: fill, Territory: NoTerritory}
	}
	return g
}

// InBounds reports whether (col,row) is on the grid.
func (g *Grid) InBounds(col, row int) bool {
	return g != nil && col >= 0 && row >= 0 && col < g.Cols && row < g.Rows
}

// At returns the cell at (col,row), or nil when off-grid.
func (g *Grid) At(col, row int) *Cell {
	if !g.InBounds(col, row) {
		return nil
	}
	return &g.cells[row*g.Cols+col]
}

// AtPoint is At for a Point.
func (g *Grid) AtPoint(p Point) *Cell {
	return g.At(p.X, p.Y)
}

// CellAt returns the cell containing world position (x,y), or nil.
func (g *Grid) CellAt(x, y float64) *Cell {
	return g.AtPoint(WorldToCell(x, y))
}

// SetTerrain replaces the base terrain of a cell. Used by map generation only.
func (g *Grid) SetTerrain(col, row int, t *TerrainType) {
	if c := g.At(col, row); c != nil {
		c.Terrain = t
		g.minCost.Store(nil)
	}
}

// AddFeature places f on the cell at (col,row).
func (g *Grid) AddFeature(col, row int, f Feature) {
	if c := g.At(col, row); c != nil {
		c.AddFeature(f)
		g.minCost.Store(nil)
	}
}

// cheapestEntryCost is the cheapest entry cost of any walkable cell, or 1 when
// nothing is walkable. It is recomputed only after SetTerrain or AddFeature.
func (g *Grid) cheapestEntryCost() float64 {
	if lo := g.minCost.Load(); lo != nil {
		return *lo
	}
	lo := math.Inf(1)
	for i := range g.cells {
		if c := &g.cells[i]; c.IsWalkable() {
			lo = math.Min(lo, c.MovementCost())
		}
	}
	if math.IsInf(lo, 1) {
		lo = 1
	}
	g.minCost.Store(&lo)
	return lo
}

// Empty reports whether the grid has no cells.
func (g *Grid) Empty() bool {
	return g == nil || g.Cols == 0 || g.Rows == 0
}

// WorldToCell converts world coordinates to the containing cell.
func WorldToCell(x, y float64) Point {
	return Point{X: int(math.Floor(x)), Y: int(math.Floor(y))}
}

// CellToWorld returns the world position an army stands on when it reaches
// the cell as a waypoint (the cell's origin corner).
func CellToWorld(p Point) (float64, float64) {
	return float64(p.X), float64(p.Y)
}
