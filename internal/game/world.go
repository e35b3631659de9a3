package game

import (
	"errors"
	"fmt"
	"image/color"
)

// ErrArmyNotFound is returned for a handle that is not in the world.
var ErrArmyNotFound = errors.New("army not found")

// Faction is one side of the war.
type Faction struct {
	ID    FactionID
	Name  string
	Color color.RGBA
}

// World owns the grid, factions, armies and active combats. Armies are
// referenced everywhere else by ArmyID.
type World struct {
	Grid        *Grid
	Territories []*Territory

	factions []*Faction
	armies   []*Army
	byID     map[ArmyID]*Army
	combats  []*Combat
	nextArmy ArmyID
	events   *EventLog
}

// NewWorld wraps a grid. events may be nil.
func NewWorld(g *Grid, events *EventLog) *World {
	if events == nil {
		events = NewEventLog(false)
	}
	return &World{Grid: g, byID: map[ArmyID]*Army{}, events: events}
}

// Events returns the world's event sink.
func (w *World) Events() *EventLog { return w.events }

// AddFaction registers a faction; a faction with the same ID is ignored.
func (w *World) AddFaction(f *Faction) {
	for _, have := range w.factions {
		if have.ID == f.ID {
			return
		}
	}
	w.factions = append(w.factions, f)
}

// Faction looks up a faction by id.
func (w *World) Faction(id FactionID) (*Faction, bool) {
	for _, f := range w.factions {
		if f.ID == id {
			return f, true
		}
	}
	return nil, false
}

// Factions returns the registered factions in insertion order.
func (w *World) Factions() []*Faction {
	out := make([]*Faction, len(w.factions))
	copy(out, w.factions)
	return out
}

// AddArmy assigns the army a handle and places it in the world.
// Adding an army that already has a handle in this world is a no-op.
func (w *World) AddArmy(a *Army) ArmyID {
	if a.ID != 0 {
		if have, ok := w.byID[a.ID]; ok && have == a {
			return a.ID
		}
	}
	w.nextArmy++
	a.ID = w.nextArmy
	a.events = w.events
	w.armies = append(w.armies, a)
	w.byID[a.ID] = a
	w.events.Add(w.events.Tick(), a.Label(), factionLabel(a.Faction), "world", "army_added",
		fmt.Sprintf("%d units at %s", len(a.Units), a.Cell()), float64(len(a.Units)))
	return a.ID
}

// Army resolves a handle.
func (w *World) Army(id ArmyID) (*Army, bool) {
	a, ok := w.byID[id]
	return a, ok
}

// Armies returns the armies in insertion order.
func (w *World) Armies() []*Army {
	out := make([]*Army, len(w.armies))
	copy(out, w.armies)
	return out
}

// EnemiesOf returns every army not belonging to faction.
func (w *World) EnemiesOf(faction FactionID) []*Army {
	var out []*Army
	for _, a := range w.armies {
		if a.Faction != faction {
			out = append(out, a)
		}
	}
	return out
}

// RemoveArmy takes an army out of the world and severs every combat that
// references it. A partner left with no other combat is released.
func (w *World) RemoveArmy(id ArmyID) error {
	a, ok := w.byID[id]
	if !ok {
		return fmt.Errorf("%w: A%d", ErrArmyNotFound, id)
	}
	delete(w.byID, id)
	for i, have := range w.armies {
		if have == a {
			w.armies = append(w.armies[:i], w.armies[i+1:]...)
			break
		}
	}

	var partners []ArmyID
	kept := w.combats[:0]
	for _, c := range w.combats {
		if !c.Involves(id) {
			kept = append(kept, c)
			continue
		}
		if c.A == id {
			partners = append(partners, c.B)
		} else {
			partners = append(partners, c.A)
		}
	}
	for i := len(kept); i < len(w.combats); i++ {
		w.combats[i] = nil
	}
	w.combats = kept

	for _, pid := range partners {
		p, ok := w.byID[pid]
		if !ok || w.inAnyCombat(pid) {
			continue
		}
		p.LeaveCombat()
	}

	w.events.Add(w.events.Tick(), a.Label(), factionLabel(a.Faction), "world", "army_removed",
		fmt.Sprintf("%d units left", len(a.Units)), float64(len(a.Units)))
	return nil
}

// AddCombat registers an active combat.
func (w *World) AddCombat(c *Combat) {
	w.combats = append(w.combats, c)
}

// RemoveCombat drops a combat by id.
func (w *World) RemoveCombat(id int) {
	for i, c := range w.combats {
		if c.ID == id {
			w.combats = append(w.combats[:i], w.combats[i+1:]...)
			return
		}
	}
}

// ActiveCombats returns the running combats in start order.
func (w *World) ActiveCombats() []*Combat {
	out := make([]*Combat, len(w.combats))
	copy(out, w.combats)
	return out
}

func (w *World) inAnyCombat(id ArmyID) bool {
	for _, c := range w.combats {
		if c.Involves(id) {
			return true
		}
	}
	return false
}

func (w *World) hasCombat(id int) bool {
	for _, c := range w.combats {
		if c.ID == id {
			return true
		}
	}
	return false
}

func rgb(c [3]uint8) color.RGBA {
	return color.RGBA{R: c[0], G: c[1], B: c[2], A: 0xff}
}
