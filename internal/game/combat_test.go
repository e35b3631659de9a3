package game

import (
	"math/rand"
	"strings"
	"testing"
)

func TestResolveDamage_Boundaries(t *testing.T) {
	cases := []struct {
		attack, defense float64
		want            int
	}{
		{10, 0, 10},
		{10, 90, 1},
		{0, 0, 0},
		{0, 50, 0},
		{-3, 5, 0},
		{10, 10, 5},
		{7, -4, 7},
		{1, 1000, 1},
	}
	for _, tc := range cases {
		if got := ResolveDamage(tc.attack, tc.defense); got != tc.want {
			t.Errorf("ResolveDamage(%v, %v) = %d, want %d", tc.attack, tc.defense, got, tc.want)
		}
	}
}

// duel registers two armies in a fresh world and pairs them.
func duel(t *testing.T, g *Grid, a, b *Army, ct CombatType, defender func(a, b ArmyID) ArmyID, seed int64) (*World, *Combat) {
	t.Helper()
	w := NewWorld(g, nil)
	w.AddArmy(a)
	w.AddArmy(b)
	a.EnterCombat()
	b.EnterCombat()
	c := NewCombat(1, a.ID, b.ID, ct, defender(a.ID, b.ID), w, g, rand.New(rand.NewSource(seed)), w.Events())
	return w, c
}

func noDefender(ArmyID, ArmyID) ArmyID { return 0 }

func TestCombat_Terminates(t *testing.T) {
	g := uniformGrid(t, 5, 5, "GRASSLAND")
	for seed := int64(1); seed <= 20; seed++ {
		a := testArmy(t, 1, 1, 1, Roster{{Type: "shieldman", Count: 3}, {Type: "spearman", Count: 7}, {Type: "archer", Count: 5}})
		b := testArmy(t, 2, 1, 1, Roster{{Type: "swordsman", Count: 5}, {Type: "light_cavalry", Count: 4}, {Type: "crossbowman", Count: 3}})
		_, c := duel(t, g, a, b, MeetingEngagement, noDefender, seed)

		var res CombatResult
		rounds := 0
		for res.Status != CombatFinished {
			res = c.Tick()
			rounds++
			if rounds > 1000 {
				t.Fatalf("seed %d: combat did not finish in 1000 rounds", seed)
			}
		}
		if res.Winner != 0 {
			winner, loser := a, b
			if res.Winner == b.ID {
				winner, loser = b, a
			}
			if winner.Destroyed() || !loser.Destroyed() || res.Loser != loser.ID {
				t.Fatalf("seed %d: inconsistent result %+v", seed, res)
			}
		} else if !a.Destroyed() || !b.Destroyed() {
			t.Fatalf("seed %d: no winner but an army survives", seed)
		}
	}
}

func TestCombat_MutualDestruction(t *testing.T) {
	// Two single slingers at 3 hp: each strike deals 3 and damage lands
	// simultaneously, so both die in round one.
	g := uniformGrid(t, 3, 3, "GRASSLAND")
	a := testArmy(t, 1, 1, 1, Roster{{Type: "slinger", Count: 1}})
	b := testArmy(t, 2, 1, 1, Roster{{Type: "slinger", Count: 1}})
	a.Units[0].HP = 3
	b.Units[0].HP = 3
	_, c := duel(t, g, a, b, MeetingEngagement, noDefender, 5)

	res := c.Tick()
	if res.Status != CombatFinished || res.Winner != 0 || res.Loser != 0 {
		t.Fatalf("expected mutual destruction, got %+v", res)
	}
	if !a.Destroyed() || !b.Destroyed() {
		t.Fatal("both armies should be destroyed")
	}
}

func TestCombat_CounterBonus(t *testing.T) {
	g := uniformGrid(t, 3, 3, "GRASSLAND")
	spear := testArmy(t, 1, 1, 1, Roster{{Type: "spearman", Count: 1}})
	cav := testArmy(t, 2, 1, 1, Roster{{Type: "light_cavalry", Count: 1}})
	_, c := duel(t, g, spear, cav, MeetingEngagement, noDefender, 1)

	// spearman counters light cavalry: 5*1.5 = 7.5 vs defense 2.
	want := ResolveDamage(5*CounterBonus, 2)
	if got := c.resolveUnitAttack(spear.Units[0], cav.Units[0]); got != want {
		t.Fatalf("counter damage = %d, want %d", got, want)
	}
	// light cavalry does not counter spearman: 6 vs 3.
	if got := c.resolveUnitAttack(cav.Units[0], spear.Units[0]); got != ResolveDamage(6, 3) {
		t.Fatalf("plain damage = %d, want %d", got, ResolveDamage(6, 3))
	}
}

func holderDefends(a, _ ArmyID) ArmyID { return a }

func TestCombat_HolderGroundAppliesBothWays(t *testing.T) {
	g := uniformGrid(t, 3, 3, "CASTLE") // defense bonus 25
	holder := testArmy(t, 1, 1, 1, Roster{{Type: "militia", Count: 1}})
	attacker := testArmy(t, 2, 1, 1, Roster{{Type: "militia", Count: 1}})
	_, c := duel(t, g, holder, attacker, PositionalAssault, holderDefends, 1)

	// The holder's share lands on whichever unit is struck.
	want := ResolveDamage(4, 1+25)
	if got := c.resolveUnitAttack(attacker.Units[0], holder.Units[0]); got != want {
		t.Fatalf("damage to holder = %d, want %d", got, want)
	}
	if got := c.resolveUnitAttack(holder.Units[0], attacker.Units[0]); got != want {
		t.Fatalf("damage to attacker = %d, want %d", got, want)
	}
	if want != 1 {
		t.Fatalf("castle exchange = %d, want the floor of 1", want)
	}

	// The bonus is split across the holder's units.
	big := testArmy(t, 1, 1, 1, Roster{{Type: "militia", Count: 5}})
	raider := testArmy(t, 2, 1, 1, Roster{{Type: "militia", Count: 1}})
	_, c = duel(t, g, big, raider, PositionalAssault, holderDefends, 1)
	if got, want := c.resolveUnitAttack(raider.Units[0], big.Units[0]), ResolveDamage(4, 1+25.0/5); got != want {
		t.Fatalf("split share damage = %d, want %d", got, want)
	}

	// In a meeting engagement nobody holds the ground.
	_, m := duel(t, g, testArmy(t, 1, 1, 1, Roster{{Type: "militia", Count: 1}}),
		testArmy(t, 2, 1, 1, Roster{{Type: "militia", Count: 1}}), MeetingEngagement, noDefender, 1)
	if m.Defender != 0 {
		t.Fatalf("meeting engagement defender = %d, want 0", m.Defender)
	}
	if got := m.resolveUnitAttack(m.lookup(m.A).Units[0], m.lookup(m.B).Units[0]); got != ResolveDamage(4, 1) {
		t.Fatalf("meeting damage = %d, want %d", got, ResolveDamage(4, 1))
	}
}

func TestCombat_TerrainUnitModifiers(t *testing.T) {
	// heavy_cavalry -5 attack and -3 defense, defense bonus 5.
	g := uniformGrid(t, 3, 3, "CONIFEROUS_FOREST")
	holder := testArmy(t, 1, 1, 1, Roster{{Type: "spearman", Count: 1}})
	cav := testArmy(t, 2, 1, 1, Roster{{Type: "heavy_cavalry", Count: 1}})
	_, c := duel(t, g, holder, cav, PositionalAssault, holderDefends, 1)

	// The cavalry modifier counts whether the cavalry strikes or is struck.
	if got, want := c.resolveUnitAttack(cav.Units[0], holder.Units[0]), ResolveDamage(8-5, 3+5-3); got != want || got != 1 {
		t.Fatalf("cavalry on holder = %d, want %d", got, want)
	}
	if got, want := c.resolveUnitAttack(holder.Units[0], cav.Units[0]), ResolveDamage(5*CounterBonus-5, 6+5-3); got != want || got != 1 {
		t.Fatalf("holder on cavalry = %d, want %d", got, want)
	}
}

const fieldTerrain = `
terrain:
  - key: TEST_FIELD
    name: Test Field
    movement_cost: 1
    defense_bonus: 4
    unit_modifiers:
      militia: {attack_bonus: 2, defense_bonus: 1}
      archer: {attack_bonus: 3, defense_bonus: 2}
`

func TestCombat_ModifiersForBothTypesStack(t *testing.T) {
	tc, err := LoadTerrainCatalog(strings.NewReader(fieldTerrain))
	if err != nil {
		t.Fatalf("LoadTerrainCatalog: %v", err)
	}
	field, err := tc.Get("TEST_FIELD")
	if err != nil {
		t.Fatal(err)
	}
	g := NewGrid(3, 3, field)
	holder := testArmy(t, 1, 1, 1, Roster{{Type: "militia", Count: 2}})
	archers := testArmy(t, 2, 1, 1, Roster{{Type: "archer", Count: 1}})
	_, c := duel(t, g, holder, archers, PositionalAssault, holderDefends, 1)

	// Holder militia strikes the attacking archer: both modifiers add to
	// attack and defense, and the archer still takes the holder's share.
	if got, want := c.resolveUnitAttack(holder.Units[0], archers.Units[0]), ResolveDamage(4+2+3, 1+4.0/2+1+2); got != want {
		t.Fatalf("holder on archer = %d, want %d", got, want)
	}
	if got, want := c.resolveUnitAttack(archers.Units[0], holder.Units[0]), ResolveDamage(5+3+2, 1+4.0/2+2+1); got != want {
		t.Fatalf("archer on holder = %d, want %d", got, want)
	}
}

func TestCombat_RemovedArmyLoses(t *testing.T) {
	g := uniformGrid(t, 3, 3, "GRASSLAND")
	a := testArmy(t, 1, 1, 1, Roster{{Type: "spearman", Count: 2}})
	b := testArmy(t, 2, 1, 1, Roster{{Type: "spearman", Count: 2}})
	w, c := duel(t, g, a, b, MeetingEngagement, noDefender, 1)
	if err := w.RemoveArmy(b.ID); err != nil {
		t.Fatal(err)
	}
	res := c.Tick()
	if res.Status != CombatFinished || res.Winner != a.ID {
		t.Fatalf("expected A%d to win by default, got %+v", a.ID, res)
	}
}

func TestCombat_RoundIsLogged(t *testing.T) {
	g := uniformGrid(t, 3, 3, "GRASSLAND")
	a := testArmy(t, 1, 1, 1, Roster{{Type: "shieldman", Count: 3}})
	b := testArmy(t, 2, 1, 1, Roster{{Type: "shieldman", Count: 3}})
	w, c := duel(t, g, a, b, MeetingEngagement, noDefender, 1)
	c.Tick()
	if !w.Events().HasEntry("combat", "round", "round 1") {
		t.Fatalf("round not logged:\n%s", w.Events().Format())
	}
}
