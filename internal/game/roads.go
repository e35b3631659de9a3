package game

import "math/rand"

// generateRoads joins a random sample of walkable points of interest in
// sequence with fastest paths and lays a road on every cell they cross.
// Later roads are routed through the cheaper cells of earlier ones, so the
// network tends to share trunks.
func generateRoads(g *Grid, rng *rand.Rand, walkable []Point, cfg MapConfig) [][]Point {
	if len(walkable) < 2 {
		return nil
	}
	perCell := cfg.RoadCellsPerPOI
	if perCell <= 0 {
		perCell = 200
	}
	n := max(cfg.RoadMinPOI, g.Cols*g.Rows/perCell)
	n = min(n, len(walkable))

	order := rng.Perm(len(walkable))
	pois := make([]Point, n)
	for i := range pois {
		pois[i] = walkable[order[i]]
	}

	var roads [][]Point
	for i := 0; i+1 < len(pois); i++ {
		path, err := FindPath(g, pois[i], pois[i+1], PathFastest)
		if err != nil || len(path) == 0 {
			continue
		}
		for _, p := range path {
			if !g.AtPoint(p).HasFeature(FeatureRoad) {
				g.AddFeature(p.X, p.Y, NewRoad())
			}
		}
		roads = append(roads, path)
	}
	return roads
}
