package game

import (
	"fmt"
	"math"
	"math/rand"
)

// CounterBonus multiplies attack when the defender's type is in the
// attacker's counters list.
const CounterBonus = 1.5

// CombatType classifies how a battle started.
type CombatType int

const (
	MeetingEngagement CombatType = iota // both armies were on the move
	PositionalAssault                   // one army attacked a stationary one
)

func (t CombatType) String() string {
	switch t {
	case MeetingEngagement:
		return "meeting_engagement"
	case PositionalAssault:
		return "positional_assault"
	default:
		return "unknown"
	}
}

// CombatStatus is the resolver state.
type CombatStatus int

const (
	CombatOngoing CombatStatus = iota
	CombatFinished
)

func (s CombatStatus) String() string {
	if s == CombatFinished {
		return "finished"
	}
	return "ongoing"
}

// CombatResult is what one round reports. Winner and Loser are zero while
// ongoing and both zero on mutual destruction.
type CombatResult struct {
	Status CombatStatus
	Winner ArmyID
	Loser  ArmyID
}

// ArmyLookup resolves army handles. World implements it.
type ArmyLookup interface {
	Army(id ArmyID) (*Army, bool)
}

// Combat is one battle between two armies. It holds handles, not armies:
// an army removed from the world simply counts as destroyed here.
type Combat struct {
	ID       int
	A, B     ArmyID
	Type     CombatType
	Defender ArmyID // zero for meeting engagements
	Round    int

	armies ArmyLookup
	grid   *Grid
	rng    *rand.Rand
	events *EventLog
}

// NewCombat pairs two armies. The defender only matters for positional
// assaults and must be one of a or b.
func NewCombat(id int, a, b ArmyID, ct CombatType, defender ArmyID, armies ArmyLookup, g *Grid, rng *rand.Rand, events *EventLog) *Combat {
	if ct == MeetingEngagement {
		defender = 0
	}
	if events == nil {
		events = NewEventLog(false)
	}
	return &Combat{
		ID:       id,
		A:        a,
		B:        b,
		Type:     ct,
		Defender: defender,
		armies:   armies,
		grid:     g,
		rng:      rng,
		events:   events,
	}
}

// Involves reports whether the army takes part in this combat.
func (c *Combat) Involves(id ArmyID) bool {
	return c.A == id || c.B == id
}

// Pairs reports whether the combat is between exactly a and b (any order).
func (c *Combat) Pairs(a, b ArmyID) bool {
	return (c.A == a && c.B == b) || (c.A == b && c.B == a)
}

func (c *Combat) lookup(id ArmyID) *Army {
	if c.armies == nil {
		return nil
	}
	a, ok := c.armies.Army(id)
	if !ok {
		return nil
	}
	return a
}

// Tick resolves one round. Every unit strikes once; damage is applied after
// all strikes so a unit killed this round still fights this round.
func (c *Combat) Tick() CombatResult {
	c.Round++

	a := c.lookup(c.A)
	b := c.lookup(c.B)
	if a == nil || b == nil || a.Destroyed() || b.Destroyed() {
		return c.checkWinner(a, b)
	}

	rosterA := append([]*Unit(nil), a.Units...)
	rosterB := append([]*Unit(nil), b.Units...)

	pending := make(map[*Unit]int, len(rosterA)+len(rosterB))
	dmgToA, dmgToB := 0, 0

	for _, u := range rosterA {
		target := rosterB[c.rng.Intn(len(rosterB))]
		d := c.resolveUnitAttack(u, target)
		pending[target] += d
		dmgToB += d
	}
	for _, u := range rosterB {
		target := rosterA[c.rng.Intn(len(rosterA))]
		d := c.resolveUnitAttack(u, target)
		pending[target] += d
		dmgToA += d
	}

	for u, d := range pending {
		u.HP -= d
	}
	lostA := cleanupUnits(a)
	lostB := cleanupUnits(b)

	c.events.Add(c.events.Tick(), a.Label(), factionLabel(a.Faction), "combat", "round",
		fmt.Sprintf("round %d: %s (%d) vs %s (%d) | dmg %d/%d | lost %d/%d",
			c.Round, a.Label(), len(rosterA), b.Label(), len(rosterB),
			dmgToA, dmgToB, lostA, lostB),
		float64(dmgToA+dmgToB))

	return c.checkWinner(a, b)
}

// resolveUnitAttack computes the damage attacker deals to defender.
func (c *Combat) resolveUnitAttack(attacker, defender *Unit) int {
	attack := float64(attacker.Attack)
	defense := float64(defender.Defense)

	if attacker.Counters(defender.Type) {
		attack *= CounterBonus
	}

	if c.Type == PositionalAssault {
		if holder := c.lookup(c.Defender); holder != nil {
			if cell := c.grid.CellAt(holder.X, holder.Y); cell != nil {
				// Every exchange of an assault is fought on the holder's ground.
				if len(holder.Units) > 0 {
					defense += cell.DefenseBonus() / float64(len(holder.Units))
				}
				mods := cell.UnitModifiers()
				for _, t := range [2]string{attacker.Type, defender.Type} {
					if m, ok := mods[t]; ok {
						attack += m.AttackBonus
						defense += m.DefenseBonus
					}
				}
			}
		}
	}

	return ResolveDamage(attack, defense)
}

// ResolveDamage applies the saturating damage formula
//
//	damage = a*a / (a+d)
//
// rounded to the nearest integer with a floor of 1 whenever a > 0, so high
// defence slows a fight down but never makes a unit unkillable.
// Negative inputs are treated as zero.
func ResolveDamage(attack, defense float64) int {
	attack = math.Max(0, attack)
	defense = math.Max(0, defense)
	if attack == 0 {
		return 0
	}
	damage := attack * attack / (attack + defense)
	if damage < 1 {
		damage = 1
	}
	return int(math.Round(damage))
}

// cleanupUnits removes units with hp <= 0 and returns how many were lost.
func cleanupUnits(a *Army) int {
	alive := a.Units[:0]
	lost := 0
	for _, u := range a.Units {
		if u.Alive() {
			alive = append(alive, u)
		} else {
			lost++
		}
	}
	for i := len(alive); i < len(a.Units); i++ {
		a.Units[i] = nil
	}
	a.Units = alive
	return lost
}

func (c *Combat) checkWinner(a, b *Army) CombatResult {
	aAlive := a != nil && !a.Destroyed()
	bAlive := b != nil && !b.Destroyed()

	switch {
	case aAlive && !bAlive:
		c.events.Global("combat", "finished",
			fmt.Sprintf("A%d wins with %d units left", c.A, len(a.Units)), float64(c.Round))
		return CombatResult{Status: CombatFinished, Winner: c.A, Loser: c.B}
	case !aAlive && bAlive:
		c.events.Global("combat", "finished",
			fmt.Sprintf("A%d wins with %d units left", c.B, len(b.Units)), float64(c.Round))
		return CombatResult{Status: CombatFinished, Winner: c.B, Loser: c.A}
	case !aAlive && !bAlive:
		c.events.Global("combat", "finished", "mutual destruction", float64(c.Round))
		return CombatResult{Status: CombatFinished}
	default:
		return CombatResult{Status: CombatOngoing}
	}
}
