package game

import (
	"container/heap"
	"errors"
	"math"
)

// MaxPathIterations bounds the number of frontier pops in one search so
// unreachable goals cannot stall the tick.
const MaxPathIterations = 20000

// ErrNoPath is returned when start and goal are not connected, either cell is
// off-grid or impassable, or the search budget runs out.
var ErrNoPath = errors.New("no path")

// PathMode selects the edge cost model.
type PathMode int

const (
	PathFastest  PathMode = iota // terrain movement cost
	PathShortest                 // unit cost, ignores terrain
)

func (m PathMode) String() string {
	if m == PathShortest {
		return "shortest"
	}
	return "fastest"
}

// PathFunc is the pathfinder signature consumed by the AI layer.
type PathFunc func(g *Grid, start, goal Point, mode PathMode) ([]Point, error)

// --- A* pathfinding ---

type pathNode struct {
	p     Point
	g, f  float64
	seq   int // push order; FIFO among equal f
	index int // heap index
}

type openList []*pathNode

func (ol openList) Len() int { return len(ol) }
func (ol openList) Less(i, j int) bool {
	if ol[i].f != ol[j].f {
		return ol[i].f < ol[j].f
	}
	return ol[i].seq < ol[j].seq
}
func (ol openList) Swap(i, j int)       { ol[i], ol[j] = ol[j], ol[i]; ol[i].index = i; ol[j].index = j }
func (ol *openList) Push(x interface{}) { n := x.(*pathNode); n.index = len(*ol); *ol = append(*ol, n) }
func (ol *openList) Pop() interface{} {
	old := *ol
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*ol = old[:len(old)-1]
	return n
}

var dirs = [8][2]int{
	{0, 1}, {0, -1}, {1, 0}, {-1, 0},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// chebyshev is the heuristic for an 8-connected grid.
func chebyshev(a, b Point) float64 {
	dx := math.Abs(float64(a.X - b.X))
	dy := math.Abs(float64(a.Y - b.Y))
	return math.Max(dx, dy)
}

// minStepCost is the cheapest cell entry cost on g under mode. Scaling the
// heuristic by it keeps the search admissible when roads cost less than 1.
func minStepCost(g *Grid, mode PathMode) float64 {
	if mode == PathShortest {
		return 1
	}
	return g.cheapestEntryCost()
}

// stepCost is the cost of entering cell to from a neighbour offset (dx,dy).
func stepCost(c *Cell, dx, dy int, mode PathMode) float64 {
	cost := 1.0
	if mode == PathFastest {
		cost = c.MovementCost()
	}
	if dx != 0 && dy != 0 {
		cost *= math.Sqrt2
	}
	return cost
}

func walkable(g *Grid, p Point) bool {
	c := g.AtPoint(p)
	return c != nil && c.IsWalkable()
}

// FindPath returns the least-cost cell sequence from start to goal, both
// inclusive. An empty, non-nil slice means start == goal.
// Searches never modify cells, so independent searches may run concurrently.
func FindPath(g *Grid, start, goal Point, mode PathMode) ([]Point, error) {
	if g.Empty() {
		return nil, ErrNoPath
	}
	if !walkable(g, start) || !walkable(g, goal) {
		return nil, ErrNoPath
	}
	if start == goal {
		return []Point{}, nil
	}

	key := func(p Point) int { return p.Y*g.Cols + p.X }
	hScale := math.Min(1, minStepCost(g, mode))
	h := func(p Point) float64 { return hScale * chebyshev(p, goal) }

	gScore := map[int]float64{key(start): 0}
	cameFrom := map[int]Point{}

	seq := 0
	ol := &openList{{p: start, g: 0, f: h(start), seq: seq}}
	heap.Init(ol)

	for iterations := 0; ol.Len() > 0; {
		iterations++
		if iterations > MaxPathIterations {
			return nil, ErrNoPath
		}
		cur := heap.Pop(ol).(*pathNode)
		if cur.p == goal {
			return buildPath(cameFrom, start, goal, key), nil
		}
		// Skip stale entries superseded by a cheaper push.
		if cur.g > gScore[key(cur.p)] {
			continue
		}

		for _, d := range dirs {
			np := Point{X: cur.p.X + d[0], Y: cur.p.Y + d[1]}
			c := g.AtPoint(np)
			if c == nil || !c.IsWalkable() {
				continue
			}
			ng := cur.g + stepCost(c, d[0], d[1], mode)
			nk := key(np)
			if prev, ok := gScore[nk]; ok && ng >= prev {
				continue
			}
			gScore[nk] = ng
			cameFrom[nk] = cur.p
			seq++
			heap.Push(ol, &pathNode{p: np, g: ng, f: ng + h(np), seq: seq})
		}
	}
	return nil, ErrNoPath
}

func buildPath(cameFrom map[int]Point, start, goal Point, key func(Point) int) []Point {
	path := []Point{goal}
	for cur := goal; cur != start; {
		cur = cameFrom[key(cur)]
		path = append(path, cur)
	}
	// Reverse
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// PathCost sums the edge costs of path under mode. Returns +Inf if any step
// is not between neighbours or enters an impassable cell.
func PathCost(g *Grid, path []Point, mode PathMode) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		dx := path[i].X - path[i-1].X
		dy := path[i].Y - path[i-1].Y
		if dx < -1 || dx > 1 || dy < -1 || dy > 1 || (dx == 0 && dy == 0) {
			return math.Inf(1)
		}
		c := g.AtPoint(path[i])
		if c == nil || !c.IsWalkable() {
			return math.Inf(1)
		}
		total += stepCost(c, dx, dy, mode)
	}
	return total
}
