package game

import (
	"fmt"
	"sort"
)

type BattleOutcome int

const (
	OutcomeInconclusive BattleOutcome = iota
	OutcomeVictory
	OutcomeDraw
)

func (o BattleOutcome) String() string {
	switch o {
	case OutcomeVictory:
		return "victory"
	case OutcomeDraw:
		return "draw"
	case OutcomeInconclusive:
		return "inconclusive"
	default:
		return "unknown"
	}
}

// FactionTally counts what one faction started with and what is left.
type FactionTally struct {
	Faction        FactionID `json:"faction"`
	ArmiesTotal    int       `json:"armies_total"`
	ArmiesLeft     int       `json:"armies_left"`
	UnitsTotal     int       `json:"units_total"`
	UnitsLeft      int       `json:"units_left"`
	CasualtyRate   float64   `json:"casualty_rate"`
	RemainingPower float64   `json:"remaining_strength"`
}

type BattleOutcomeReason struct {
	Outcome     BattleOutcome  `json:"outcome"`
	Winner      FactionID      `json:"winner"` // zero unless Outcome is OutcomeVictory
	Tallies     []FactionTally `json:"tallies"`
	Description string         `json:"description"`
}

// DetermineBattleOutcome compares each faction's starting unit count
// (initial) with what is left in the world.
func DetermineBattleOutcome(initial map[FactionID]FactionTally, w *World) BattleOutcomeReason {
	tallies := make(map[FactionID]*FactionTally, len(initial))
	for id, t := range initial {
		t.Faction = id
		t.ArmiesLeft, t.UnitsLeft, t.RemainingPower = 0, 0, 0
		tallies[id] = &t
	}
	for _, a := range w.Armies() {
		t, ok := tallies[a.Faction]
		if !ok {
			t = &FactionTally{Faction: a.Faction}
			tallies[a.Faction] = t
		}
		if a.Destroyed() {
			continue
		}
		t.ArmiesLeft++
		t.UnitsLeft += len(a.Units)
		t.RemainingPower += a.Strength()
	}

	var list []FactionTally
	for _, t := range tallies {
		if t.UnitsTotal > 0 {
			t.CasualtyRate = float64(t.UnitsTotal-t.UnitsLeft) / float64(t.UnitsTotal)
		}
		list = append(list, *t)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Faction < list[j].Faction })

	reason := func(o BattleOutcome, winner FactionID, desc string) BattleOutcomeReason {
		return BattleOutcomeReason{Outcome: o, Winner: winner, Tallies: list, Description: desc}
	}

	var standing []FactionTally
	for _, t := range list {
		if t.UnitsLeft > 0 {
			standing = append(standing, t)
		}
	}

	switch len(standing) {
	case 0:
		return reason(OutcomeDraw, 0, "mutual_annihilation")
	case 1:
		if len(list) > 1 {
			return reason(OutcomeVictory, standing[0].Faction,
				fmt.Sprintf("decisive_victory_%s_last_standing", factionLabel(standing[0].Faction)))
		}
		return reason(OutcomeInconclusive, 0, "inconclusive_single_faction")
	}

	// Several factions still in the field: compare the best and worst off.
	sort.SliceStable(standing, func(i, j int) bool {
		return standing[i].CasualtyRate < standing[j].CasualtyRate
	})
	best := standing[0]
	worst := standing[len(standing)-1]
	casualtyDiff := worst.CasualtyRate - best.CasualtyRate

	if casualtyDiff > 0.30 && best.CasualtyRate < 0.50 {
		return reason(OutcomeVictory, best.Faction,
			fmt.Sprintf("marginal_victory_%s_casualty_advantage", factionLabel(best.Faction)))
	}
	if casualtyDiff <= 0.20 && worst.CasualtyRate > 0.30 {
		return reason(OutcomeDraw, 0, "draw_similar_casualties")
	}
	return reason(OutcomeInconclusive, 0, "inconclusive_insufficient_resolution")
}

// TallyWorld snapshots per-faction totals, used as the baseline for
// DetermineBattleOutcome.
func TallyWorld(w *World) map[FactionID]FactionTally {
	out := make(map[FactionID]FactionTally)
	for _, f := range w.Factions() {
		out[f.ID] = FactionTally{Faction: f.ID}
	}
	for _, a := range w.Armies() {
		t := out[a.Faction]
		t.Faction = a.Faction
		t.ArmiesTotal++
		t.UnitsTotal += len(a.Units)
		out[a.Faction] = t
	}
	return out
}
