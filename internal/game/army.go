package game

import (
	"fmt"
	"math"
)

const (
	defaultArmySpeed       = 5.0  // cells per second
	defaultCollisionRadius = 0.75 // cells
)

// ArmyID is a stable handle for an army inside a World. Zero means none.
type ArmyID int

// FactionID identifies the side an army fights for.
type FactionID int

// Stance is the tactical posture of an army.
type Stance int

const (
	StanceIdle         Stance = iota // waiting for orders
	StanceMoving                     // following a path
	StanceHoldPosition               // dug in, deliberately stationary
	StanceRetreat                    // falling back
)

func (s Stance) String() string {
	switch s {
	case StanceIdle:
		return "idle"
	case StanceMoving:
		return "moving"
	case StanceHoldPosition:
		return "hold"
	case StanceRetreat:
		return "retreat"
	default:
		return "unknown"
	}
}

// ArmyState is the movement state machine position derived from stance,
// path and combat flag.
type ArmyState int

const (
	ArmyIdle ArmyState = iota
	ArmyMoving
	ArmyInCombat
)

func (s ArmyState) String() string {
	switch s {
	case ArmyIdle:
		return "idle"
	case ArmyMoving:
		return "moving"
	case ArmyInCombat:
		return "in_combat"
	default:
		return "unknown"
	}
}

// Army is a group of units moving and fighting as one body.
type Army struct {
	ID      ArmyID
	Faction FactionID
	X, Y    float64
	Units   []*Unit

	Speed           float64
	CollisionRadius float64
	Stance          Stance

	path     []Point
	target   ArmyID
	inCombat bool

	lastCell Point
	events   *EventLog
	label    string
}

// NewArmy creates an idle army at world position (x,y).
func NewArmy(faction FactionID, x, y float64, units []*Unit) *Army {
	return &Army{
		Faction:         faction,
		X:               x,
		Y:               y,
		Units:           units,
		Speed:           defaultArmySpeed,
		CollisionRadius: defaultCollisionRadius,
		lastCell:        WorldToCell(x, y),
	}
}

// Label is the short name used in logs, e.g. "A3".
func (a *Army) Label() string {
	if a.label == "" {
		return fmt.Sprintf("A%d", a.ID)
	}
	return a.label
}

// State returns the state machine position.
func (a *Army) State() ArmyState {
	switch {
	case a.inCombat:
		return ArmyInCombat
	case len(a.path) > 0 && a.Stance == StanceMoving:
		return ArmyMoving
	default:
		return ArmyIdle
	}
}

// InCombat reports whether the army is locked in a battle.
func (a *Army) InCombat() bool { return a.inCombat }

// Target returns the pursued army handle, zero when none.
func (a *Army) Target() ArmyID { return a.target }

// Path returns a copy of the remaining waypoints.
func (a *Army) Path() []Point {
	out := make([]Point, len(a.path))
	copy(out, a.path)
	return out
}

// Cell returns the grid cell the army occupies.
func (a *Army) Cell() Point { return WorldToCell(a.X, a.Y) }

// Destroyed is true once no units remain.
func (a *Army) Destroyed() bool { return len(a.Units) == 0 }

// DistanceTo is the Euclidean distance between army positions.
func (a *Army) DistanceTo(o *Army) float64 {
	return math.Hypot(a.X-o.X, a.Y-o.Y)
}

// TotalHP sums the current hit points of every unit.
func (a *Army) TotalHP() int {
	total := 0
	for _, u := range a.Units {
		total += u.HP
	}
	return total
}

// MaxHP sums the maximum hit points of every unit.
func (a *Army) MaxHP() int {
	total := 0
	for _, u := range a.Units {
		total += u.MaxHP
	}
	return total
}

// AttackPower sums unit attack values.
func (a *Army) AttackPower() int {
	total := 0
	for _, u := range a.Units {
		total += u.Attack
	}
	return total
}

// DefensePower sums unit defense values.
func (a *Army) DefensePower() int {
	total := 0
	for _, u := range a.Units {
		total += u.Defense
	}
	return total
}

// Strength is a rough fighting value used by the AI: attack plus defense
// weighted by remaining health.
func (a *Army) Strength() float64 {
	if a.MaxHP() == 0 {
		return 0
	}
	return float64(a.AttackPower()+a.DefensePower()) * float64(a.TotalHP()) / float64(a.MaxHP())
}

// SetTarget sets the army to pursue and drops the current path.
func (a *Army) SetTarget(id ArmyID) {
	a.target = id
	a.path = nil
	a.Stance = StanceIdle
	if id != 0 {
		a.log("target", "set", fmt.Sprintf("A%d", id), float64(id))
	} else {
		a.log("target", "cleared", "", 0)
	}
}

// SetPath assigns a precomputed waypoint path. When the army is already
// heading for the same next waypoint the rest of the path is swapped in
// without touching the stance.
func (a *Army) SetPath(path []Point) {
	if len(path) == 0 {
		a.ClearPath()
		return
	}
	if len(a.path) > 1 && len(path) > 1 && a.path[0] == path[0] {
		a.path = append([]Point(nil), path...)
		return
	}
	a.path = append([]Point(nil), path...)
	if a.Stance != StanceMoving {
		a.log("state", "change", fmt.Sprintf("%s → %s", a.Stance, StanceMoving), 0)
	}
	a.Stance = StanceMoving
}

// ClearPath stops the army where it stands.
func (a *Army) ClearPath() {
	a.path = nil
	if a.Stance == StanceMoving {
		a.log("state", "change", fmt.Sprintf("%s → %s", a.Stance, StanceIdle), 0)
	}
	a.Stance = StanceIdle
}

// EnterCombat freezes the army. Path and pursuit target are forgotten.
func (a *Army) EnterCombat() {
	a.inCombat = true
	a.path = nil
	a.target = 0
	a.Stance = StanceIdle
}

// LeaveCombat releases a surviving army back to idle.
func (a *Army) LeaveCombat() {
	a.inCombat = false
}

// Update advances the army along its path for one tick of dt seconds.
// Step length is divided by the movement cost of the cell currently
// occupied, so an army crawls through a swamp and hurries along a road.
func (a *Army) Update(dt float64, g *Grid) {
	if a.inCombat || len(a.path) == 0 {
		return
	}

	tx, ty := CellToWorld(a.path[0])
	dx := tx - a.X
	dy := ty - a.Y
	dist := math.Hypot(dx, dy)

	if dist == 0 {
		a.popWaypoint()
		return
	}

	step := a.Speed * dt / occupiedCost(g, a.X, a.Y)
	if step >= dist {
		a.X, a.Y = tx, ty
		a.popWaypoint()
	} else {
		a.X += dx / dist * step
		a.Y += dy / dist * step
	}

	if cell := a.Cell(); cell != a.lastCell {
		a.lastCell = cell
		if a.events != nil {
			a.events.AddVerbose(a.events.tick, a.Label(), factionLabel(a.Faction), "move", "cell", cell.String(), 0)
		}
	}
}

// occupiedCost is the movement cost under (x,y). Off-grid and impassable
// cells count as normal ground so a misplaced army can still walk out.
func occupiedCost(g *Grid, x, y float64) float64 {
	c := g.CellAt(x, y)
	if c == nil {
		return 1.0
	}
	cost := c.MovementCost()
	if math.IsInf(cost, 0) || math.IsNaN(cost) || cost <= 0 {
		return 1.0
	}
	return cost
}

func (a *Army) popWaypoint() {
	a.path = a.path[1:]
	if len(a.path) == 0 {
		a.path = nil
		a.target = 0
		a.Stance = StanceIdle
		a.log("move", "arrived", a.Cell().String(), 0)
	}
}

func (a *Army) log(category, key, value string, num float64) {
	if a.events == nil {
		return
	}
	a.events.Add(a.events.tick, a.Label(), factionLabel(a.Faction), category, key, value, num)
}

func factionLabel(f FactionID) string {
	return fmt.Sprintf("F%d", f)
}
