package game

import "testing"

func testTerrain(t *testing.T) *TerrainCatalog {
	t.Helper()
	tc, err := DefaultTerrainCatalog()
	if err != nil {
		t.Fatalf("DefaultTerrainCatalog: %v", err)
	}
	return tc
}

func testUnits(t *testing.T) *UnitCatalog {
	t.Helper()
	uc, err := DefaultUnitCatalog()
	if err != nil {
		t.Fatalf("DefaultUnitCatalog: %v", err)
	}
	return uc
}

func terrainOf(t *testing.T, key string) *TerrainType {
	t.Helper()
	tt, err := testTerrain(t).Get(key)
	if err != nil {
		t.Fatalf("terrain %s: %v", key, err)
	}
	return tt
}

// uniformGrid is a cols x rows grid of one terrain.
func uniformGrid(t *testing.T, cols, rows int, key string) *Grid {
	t.Helper()
	return NewGrid(cols, rows, terrainOf(t, key))
}

// testArmy builds an army from roster without registering it in a world.
func testArmy(t *testing.T, faction FactionID, x, y float64, roster Roster) *Army {
	t.Helper()
	units, err := testUnits(t).Build(roster)
	if err != nil {
		t.Fatalf("Build(%v): %v", roster, err)
	}
	return NewArmy(faction, x, y, units)
}

// isNeighbour reports whether b is one of the eight cells around a.
func isNeighbour(a, b Point) bool {
	dx, dy := a.X-b.X, a.Y-b.Y
	if dx == 0 && dy == 0 {
		return false
	}
	return dx >= -1 && dx <= 1 && dy >= -1 && dy <= 1
}
