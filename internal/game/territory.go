package game

import (
	"fmt"
	"math"
	"strings"
)

// Territory is a named region of the map, owned by at most one faction.
type Territory struct {
	ID    int
	Name  string
	Owner FactionID // zero when unclaimed
	Cells []Point
}

func (t *Territory) String() string {
	owner := "none"
	if t.Owner != 0 {
		owner = factionLabel(t.Owner)
	}
	return fmt.Sprintf("%s (owner %s, %d cells)", t.Name, owner, len(t.Cells))
}

// partitionTerritories splits the grid into an nx by ny block layout and
// stamps each cell with its territory id. The last row and column of blocks
// absorb the remainder so every cell belongs to exactly one territory.
func partitionTerritories(g *Grid, nx, ny int) []*Territory {
	if g.Empty() || nx <= 0 || ny <= 0 {
		return nil
	}
	regionW := g.Cols / nx
	regionH := g.Rows / ny

	var out []*Territory
	nextID := 0
	for i := 0; i < nx; i++ {
		x0 := i * regionW
		x1 := x0 + regionW
		if i == nx-1 {
			x1 = g.Cols
		}
		for j := 0; j < ny; j++ {
			y0 := j * regionH
			y1 := y0 + regionH
			if j == ny-1 {
				y1 = g.Rows
			}
			if x1 <= x0 || y1 <= y0 {
				continue
			}
			t := &Territory{ID: nextID, Name: fmt.Sprintf("Region %d", nextID)}
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					g.At(x, y).Territory = nextID
					t.Cells = append(t.Cells, Point{x, y})
				}
			}
			out = append(out, t)
			nextID++
		}
	}
	return out
}

// assignOwners hands territories out to factions round-robin.
func assignOwners(ts []*Territory, factions []FactionID) {
	if len(factions) == 0 {
		return
	}
	for i, t := range ts {
		t.Owner = factions[i%len(factions)]
	}
}

// TerritoryAt returns the territory that contains p, or nil.
func (w *World) TerritoryAt(p Point) *Territory {
	c := w.Grid.AtPoint(p)
	if c == nil || c.Territory == NoTerritory {
		return nil
	}
	for _, t := range w.Territories {
		if t.ID == c.Territory {
			return t
		}
	}
	return nil
}

// CellReport is a readable summary of one grid cell.
type CellReport struct {
	Cell         Point    `json:"cell"`
	TerrainKey   string   `json:"terrain_key"`
	TerrainName  string   `json:"terrain_name"`
	Walkable     bool     `json:"walkable"`
	MovementCost float64  `json:"movement_cost"` // +Inf is reported as -1
	DefenseBonus float64  `json:"defense_bonus"`
	Features     []string `json:"features"`
	Territory    int      `json:"territory"`
	Owner        string   `json:"owner,omitempty"`
}

// DescribeCell reports the terrain, features and ownership of p.
func (w *World) DescribeCell(p Point) (CellReport, bool) {
	c := w.Grid.AtPoint(p)
	if c == nil {
		return CellReport{}, false
	}
	r := CellReport{
		Cell:         p,
		Walkable:     c.IsWalkable(),
		MovementCost: c.MovementCost(),
		DefenseBonus: c.DefenseBonus(),
		Features:     []string{},
		Territory:    c.Territory,
	}
	if math.IsInf(r.MovementCost, 1) {
		r.MovementCost = -1
	}
	if c.Terrain != nil {
		r.TerrainKey = c.Terrain.Key
		r.TerrainName = c.Terrain.Name
	}
	for _, f := range c.Features {
		r.Features = append(r.Features, f.Kind().String())
	}
	if t := w.TerritoryAt(p); t != nil && t.Owner != 0 {
		r.Owner = factionLabel(t.Owner)
		if f, ok := w.Faction(t.Owner); ok {
			r.Owner = f.Name
		}
	}
	return r, true
}

func (r CellReport) String() string {
	cost := fmt.Sprintf("%.2f", r.MovementCost)
	if r.MovementCost < 0 {
		cost = "inf"
	}
	owner := r.Owner
	if owner == "" {
		owner = "none"
	}
	return fmt.Sprintf("TILE INFO: %s | type: %s (key: %s) | walkable: %t | move_cost: %s | defense: %.2f | features: [%s] | territory: %d | owner: %s",
		r.Cell, r.TerrainName, r.TerrainKey, r.Walkable, cost, r.DefenseBonus,
		strings.Join(r.Features, ","), r.Territory, owner)
}
