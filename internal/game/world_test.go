package game

import (
	"errors"
	"math/rand"
	"testing"
)

func TestWorld_AddArmyAssignsHandles(t *testing.T) {
	w := NewWorld(uniformGrid(t, 5, 5, "GRASSLAND"), nil)
	a := testArmy(t, 1, 0, 0, Roster{{Type: "militia", Count: 1}})
	b := testArmy(t, 2, 1, 1, Roster{{Type: "militia", Count: 1}})
	if id := w.AddArmy(a); id != 1 {
		t.Fatalf("first handle = %d", id)
	}
	if id := w.AddArmy(b); id != 2 {
		t.Fatalf("second handle = %d", id)
	}
	if id := w.AddArmy(a); id != 1 || len(w.Armies()) != 2 {
		t.Fatal("re-adding an army must be a no-op")
	}
	if got, ok := w.Army(2); !ok || got != b {
		t.Fatal("Army(2) lookup failed")
	}
	if a.Label() != "A1" {
		t.Fatalf("label = %s", a.Label())
	}
	if enemies := w.EnemiesOf(1); len(enemies) != 1 || enemies[0] != b {
		t.Fatalf("EnemiesOf(1) = %v", enemies)
	}
}

func TestWorld_FactionsDeduplicate(t *testing.T) {
	w := NewWorld(nil, nil)
	w.AddFaction(&Faction{ID: 1, Name: "Sun"})
	w.AddFaction(&Faction{ID: 1, Name: "Impostor"})
	w.AddFaction(&Faction{ID: 2, Name: "Shadow"})
	if len(w.Factions()) != 2 {
		t.Fatalf("factions = %d", len(w.Factions()))
	}
	if f, ok := w.Faction(1); !ok || f.Name != "Sun" {
		t.Fatalf("faction 1 = %+v", f)
	}
	if _, ok := w.Faction(9); ok {
		t.Fatal("unknown faction found")
	}
}

func TestWorld_RemoveUnknownArmy(t *testing.T) {
	w := NewWorld(uniformGrid(t, 5, 5, "GRASSLAND"), nil)
	if err := w.RemoveArmy(42); !errors.Is(err, ErrArmyNotFound) {
		t.Fatalf("expected ErrArmyNotFound, got %v", err)
	}
}

func TestWorld_RemoveArmySeversCombats(t *testing.T) {
	g := uniformGrid(t, 10, 10, "GRASSLAND")
	w := NewWorld(g, nil)
	rng := rand.New(rand.NewSource(1))
	victim := testArmy(t, 1, 5, 5, Roster{{Type: "militia", Count: 1}})
	lone := testArmy(t, 2, 5, 5, Roster{{Type: "spearman", Count: 1}})
	busy := testArmy(t, 2, 5, 5, Roster{{Type: "spearman", Count: 1}})
	other := testArmy(t, 1, 5, 5, Roster{{Type: "spearman", Count: 1}})
	for _, a := range []*Army{victim, lone, busy, other} {
		w.AddArmy(a)
		a.EnterCombat()
	}
	w.AddCombat(NewCombat(1, victim.ID, lone.ID, MeetingEngagement, 0, w, g, rng, nil))
	w.AddCombat(NewCombat(2, busy.ID, victim.ID, MeetingEngagement, 0, w, g, rng, nil))
	w.AddCombat(NewCombat(3, busy.ID, other.ID, MeetingEngagement, 0, w, g, rng, nil))

	if err := w.RemoveArmy(victim.ID); err != nil {
		t.Fatal(err)
	}
	if _, ok := w.Army(victim.ID); ok {
		t.Fatal("removed army still resolvable")
	}
	combats := w.ActiveCombats()
	if len(combats) != 1 || combats[0].ID != 3 {
		t.Fatalf("remaining combats = %v", combats)
	}
	if lone.InCombat() {
		t.Error("partner with no other combat should be released")
	}
	if !busy.InCombat() {
		t.Error("partner still fighting elsewhere must stay in combat")
	}
	if !w.Events().HasEntry("world", "army_removed", "") {
		t.Error("removal not logged")
	}
}

func TestWorld_RemoveCombat(t *testing.T) {
	g := uniformGrid(t, 5, 5, "GRASSLAND")
	w := NewWorld(g, nil)
	rng := rand.New(rand.NewSource(1))
	w.AddCombat(NewCombat(7, 1, 2, MeetingEngagement, 0, w, g, rng, nil))
	w.RemoveCombat(99)
	if len(w.ActiveCombats()) != 1 {
		t.Fatal("removing an unknown combat changed the list")
	}
	w.RemoveCombat(7)
	if len(w.ActiveCombats()) != 0 {
		t.Fatal("combat not removed")
	}
}
