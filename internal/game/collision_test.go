package game

import (
	"math/rand"
	"testing"
)

func TestClassifyEngagement(t *testing.T) {
	cases := []struct {
		name         string
		aMove, bMove bool
		wantType     CombatType
		wantDefender int // 0 none, 1 a, 2 b
	}{
		{"both moving", true, true, MeetingEngagement, 0},
		{"a charges b", true, false, PositionalAssault, 2},
		{"b charges a", false, true, PositionalAssault, 1},
		{"both still", false, false, PositionalAssault, 1},
	}
	for _, tc := range cases {
		a := testArmy(t, 1, 0, 0, Roster{{Type: "militia", Count: 1}})
		b := testArmy(t, 2, 0, 0, Roster{{Type: "militia", Count: 1}})
		a.ID, b.ID = 1, 2
		if tc.aMove {
			a.Stance = StanceMoving
		}
		if tc.bMove {
			b.Stance = StanceMoving
		}
		ct, def := ClassifyEngagement(a, b)
		if ct != tc.wantType || int(def) != tc.wantDefender {
			t.Errorf("%s: got %s defender A%d, want %s defender %d", tc.name, ct, def, tc.wantType, tc.wantDefender)
		}
	}
}

func TestDetect_StartsOneCombatPerHostilePair(t *testing.T) {
	g := uniformGrid(t, 20, 20, "GRASSLAND")
	w := NewWorld(g, nil)
	a := testArmy(t, 1, 5, 5, Roster{{Type: "spearman", Count: 2}})
	b := testArmy(t, 2, 5.5, 5, Roster{{Type: "archer", Count: 2}})
	ally := testArmy(t, 1, 5, 5.5, Roster{{Type: "archer", Count: 1}})
	far := testArmy(t, 2, 15, 15, Roster{{Type: "archer", Count: 1}})
	for _, x := range []*Army{a, b, ally, far} {
		w.AddArmy(x)
	}
	a.Stance = StanceMoving

	cd := NewCollisionDetector(w, g, rand.New(rand.NewSource(1)), w.Events())
	started := cd.Detect(w.Armies(), nil)

	// a-b and ally-b are in range; a-ally are friends; far is out of reach.
	if len(started) != 2 {
		t.Fatalf("started %d combats, want 2", len(started))
	}
	if !started[0].Pairs(a.ID, b.ID) || started[0].Type != PositionalAssault || started[0].Defender != b.ID {
		t.Fatalf("first combat = %+v", started[0])
	}
	if !started[1].Pairs(ally.ID, b.ID) {
		t.Fatalf("second combat = %+v", started[1])
	}
	if started[0].ID == started[1].ID {
		t.Fatal("combat ids must be unique")
	}
	for _, x := range []*Army{a, b, ally} {
		if !x.InCombat() {
			t.Errorf("%s should be in combat", x.Label())
		}
	}
	if far.InCombat() {
		t.Error("distant army should not be in combat")
	}

	// Pairs already fighting are not started again.
	if again := cd.Detect(w.Armies(), started); len(again) != 0 {
		t.Fatalf("re-detected %d combats", len(again))
	}
}

func TestDetect_SkipsDestroyed(t *testing.T) {
	g := uniformGrid(t, 5, 5, "GRASSLAND")
	w := NewWorld(g, nil)
	a := testArmy(t, 1, 1, 1, Roster{{Type: "spearman", Count: 1}})
	b := testArmy(t, 2, 1, 1, nil)
	w.AddArmy(a)
	w.AddArmy(b)
	cd := NewCollisionDetector(w, g, rand.New(rand.NewSource(1)), nil)
	if got := cd.Detect(w.Armies(), nil); len(got) != 0 {
		t.Fatalf("combat started with a destroyed army: %+v", got)
	}
}

func TestDetect_RadiusIsStrict(t *testing.T) {
	g := uniformGrid(t, 5, 5, "GRASSLAND")
	w := NewWorld(g, nil)
	a := testArmy(t, 1, 1, 1, Roster{{Type: "spearman", Count: 1}})
	b := testArmy(t, 2, 2.5, 1, Roster{{Type: "spearman", Count: 1}}) // exactly 0.75+0.75 apart
	w.AddArmy(a)
	w.AddArmy(b)
	cd := NewCollisionDetector(w, g, rand.New(rand.NewSource(1)), nil)
	if got := cd.Detect(w.Armies(), nil); len(got) != 0 {
		t.Fatal("armies exactly at the summed radius should not collide")
	}
	b.X = 2.49
	if got := cd.Detect(w.Armies(), nil); len(got) != 1 {
		t.Fatal("armies inside the summed radius should collide")
	}
}
