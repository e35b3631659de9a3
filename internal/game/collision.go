package game

import (
	"fmt"
	"math/rand"
)

// CollisionDetector starts battles between hostile armies that come into
// contact.
type CollisionDetector struct {
	armies ArmyLookup
	grid   *Grid
	rng    *rand.Rand
	events *EventLog
	nextID int
}

// NewCollisionDetector creates a detector whose combats resolve handles
// through armies and draw from rng.
func NewCollisionDetector(armies ArmyLookup, g *Grid, rng *rand.Rand, events *EventLog) *CollisionDetector {
	if events == nil {
		events = NewEventLog(false)
	}
	return &CollisionDetector{armies: armies, grid: g, rng: rng, events: events}
}

// Detect checks every unordered pair of hostile armies and returns the new
// combats for pairs within collision range that are not already fighting
// each other. Both armies of a new combat enter the in-combat state.
func (cd *CollisionDetector) Detect(armies []*Army, active []*Combat) []*Combat {
	var started []*Combat
	for i, a := range armies {
		if a.Destroyed() {
			continue
		}
		for _, b := range armies[i+1:] {
			if b.Destroyed() || a.Faction == b.Faction {
				continue
			}
			if alreadyPaired(a.ID, b.ID, active) || alreadyPaired(a.ID, b.ID, started) {
				continue
			}
			if a.DistanceTo(b) >= a.CollisionRadius+b.CollisionRadius {
				continue
			}

			ct, defender := ClassifyEngagement(a, b)
			attacker := b
			if defender == b.ID {
				attacker = a
			}
			if ct == MeetingEngagement {
				cd.events.Add(cd.events.Tick(), a.Label(), factionLabel(a.Faction), "combat", "collision",
					fmt.Sprintf("meeting engagement %s vs %s", a.Label(), b.Label()), 0)
			} else {
				cd.events.Add(cd.events.Tick(), attacker.Label(), factionLabel(attacker.Faction), "combat", "collision",
					fmt.Sprintf("%s assaults the position of A%d", attacker.Label(), defender), 0)
			}

			a.EnterCombat()
			b.EnterCombat()
			cd.nextID++
			started = append(started, NewCombat(cd.nextID, a.ID, b.ID, ct, defender, cd.armies, cd.grid, cd.rng, cd.events))
		}
	}
	return started
}

// ClassifyEngagement derives the combat type from the stances at the moment
// of contact. Two moving armies meet head on; otherwise the army that is not
// moving defends, and when neither moves the first army defends.
func ClassifyEngagement(a, b *Army) (CombatType, ArmyID) {
	aMoving := a.Stance == StanceMoving
	bMoving := b.Stance == StanceMoving
	switch {
	case aMoving && bMoving:
		return MeetingEngagement, 0
	case !bMoving && aMoving:
		return PositionalAssault, b.ID
	default:
		return PositionalAssault, a.ID
	}
}

func alreadyPaired(a, b ArmyID, combats []*Combat) bool {
	for _, c := range combats {
		if c.Pairs(a, b) {
			return true
		}
	}
	return false
}
