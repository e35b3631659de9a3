package game

import (
	"errors"
	"fmt"
	"math"
)

const (
	defaultPathRecalcInterval  = 2.0  // seconds of sim time
	defaultUnreachableCooldown = 30.0 // seconds of sim time
)

// General is the AI commander of one army. It picks the closest enemy,
// asks its profile whether to engage and periodically re-plans a path.
type General struct {
	Army    ArmyID
	Profile *Profile

	PathRecalcInterval  float64
	UnreachableCooldown float64

	pathFn      PathFunc
	mode        PathMode
	target      ArmyID
	unreachable map[ArmyID]float64 // target -> time it was found unreachable
	lastRecalc  float64
	planned     bool
	lastRule    string
}

// NewGeneral binds a profile to an army. A nil pathFn means FindPath.
func NewGeneral(army ArmyID, p *Profile, pathFn PathFunc) *General {
	if p == nil {
		p = InertProfile("none")
	}
	if pathFn == nil {
		pathFn = FindPath
	}
	return &General{
		Army:                army,
		Profile:             p,
		PathRecalcInterval:  defaultPathRecalcInterval,
		UnreachableCooldown: defaultUnreachableCooldown,
		pathFn:              pathFn,
		mode:                PathFastest,
		unreachable:         make(map[ArmyID]float64),
	}
}

// Target is the enemy the general is currently pursuing.
func (g *General) Target() ArmyID { return g.target }

// Unreachable reports whether id is in the unreachable cache.
func (g *General) Unreachable(id ArmyID) bool {
	_, ok := g.unreachable[id]
	return ok
}

// Update runs one decision cycle at simulation time now.
func (g *General) Update(now float64, w *World) {
	army, ok := w.Army(g.Army)
	if !ok || g.Profile.Inert {
		return
	}
	events := w.Events()

	if army.InCombat() {
		g.target = 0
		return
	}

	if g.target != 0 {
		if _, ok := w.Army(g.target); !ok {
			events.Add(events.Tick(), army.Label(), factionLabel(army.Faction), "ai", "target_lost",
				fmt.Sprintf("A%d gone, acquiring new target", g.target), 0)
			g.target = 0
		}
	}

	for id, at := range g.unreachable {
		if now-at >= g.UnreachableCooldown {
			delete(g.unreachable, id)
		}
	}

	if g.target == 0 {
		if enemy := g.closestEnemy(army, w); enemy != nil {
			g.target = enemy.ID
			army.SetTarget(enemy.ID)
			// SetTarget dropped the old path; plan this cycle.
			g.planned = false
			events.Add(events.Tick(), army.Label(), factionLabel(army.Faction), "ai", "target_acquired",
				fmt.Sprintf("%s targets %s at %.1f", g.Profile.Name, enemy.Label(), army.DistanceTo(enemy)),
				float64(enemy.ID))
		}
	}

	decision, rule := g.Profile.Decide(g.env(army, w))
	if rule != g.lastRule {
		g.lastRule = rule
		events.Add(events.Tick(), army.Label(), factionLabel(army.Faction), "ai", "decision",
			fmt.Sprintf("%s (%s)", decision, rule), 0)
	}
	if decision == DecisionHold {
		if army.State() == ArmyMoving {
			army.ClearPath()
		}
		return
	}
	if g.target == 0 {
		return
	}

	if g.planned && now-g.lastRecalc < g.PathRecalcInterval {
		return
	}
	g.planned = true
	g.lastRecalc = now

	if g.Unreachable(g.target) {
		return
	}
	enemy, ok := w.Army(g.target)
	if !ok {
		return
	}

	path, err := g.pathFn(w.Grid, army.Cell(), enemy.Cell(), g.mode)
	switch {
	case err == nil:
		army.SetPath(path)
		events.AddVerbose(events.Tick(), army.Label(), factionLabel(army.Faction), "ai", "path",
			fmt.Sprintf("%d waypoints to %s", len(path), enemy.Label()), float64(len(path)))
	case errors.Is(err, ErrNoPath):
		g.unreachable[g.target] = now
		events.Add(events.Tick(), army.Label(), factionLabel(army.Faction), "ai", "unreachable",
			fmt.Sprintf("no path to %s, cached for %.0fs", enemy.Label(), g.UnreachableCooldown), float64(g.target))
		g.target = 0
		army.SetTarget(0)
	default:
		events.Global("ai", "path_error", err.Error(), 0)
	}
}

// closestEnemy returns the nearest hostile army not cached as unreachable.
// Ties go to the army added to the world first.
func (g *General) closestEnemy(army *Army, w *World) *Army {
	var best *Army
	bestDist := math.Inf(1)
	for _, other := range w.EnemiesOf(army.Faction) {
		if g.Unreachable(other.ID) {
			continue
		}
		if d := army.DistanceTo(other); d < bestDist {
			best, bestDist = other, d
		}
	}
	return best
}

func (g *General) env(army *Army, w *World) DecisionEnv {
	env := DecisionEnv{
		Aggression:    g.Profile.Personality.Aggression,
		Caution:       g.Profile.Personality.Caution,
		OwnUnits:      len(army.Units),
		OwnStrength:   army.Strength(),
		EnemyDistance: math.Inf(1),
	}
	if enemy, ok := w.Army(g.target); ok && g.target != 0 {
		env.HasTarget = true
		env.EnemyUnits = len(enemy.Units)
		env.EnemyStrength = enemy.Strength()
		env.EnemyDistance = army.DistanceTo(enemy)
	}
	return env
}
