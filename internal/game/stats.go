package game

import (
	"fmt"
	"sort"
	"strings"
)

// RunStats summarises one simulation run for reports.
type RunStats struct {
	Seed             int64          `json:"seed"`
	Ticks            int            `json:"ticks"`
	SimTime          float64        `json:"sim_time"`
	FirstContactTick int            `json:"first_contact_tick"` // -1 if armies never met
	CombatsStarted   int            `json:"combats_started"`
	CombatsFinished  int            `json:"combats_finished"`
	RoundsFought     int            `json:"rounds_fought"`
	ArmiesDestroyed  int            `json:"armies_destroyed"`
	Outcome          string         `json:"outcome"`
	Winner           FactionID      `json:"winner"`
	Description      string         `json:"description"`
	Tallies          []FactionTally `json:"tallies"`
	Grades           []ArmyGrade    `json:"grades"`
}

func newRunStats(seed int64) RunStats {
	return RunStats{Seed: seed, FirstContactTick: -1}
}

// ArmyGrade scores how well one army fared over a run.
type ArmyGrade struct {
	Army       ArmyID    `json:"army"`
	Label      string    `json:"label"`
	Faction    FactionID `json:"faction"`
	Survived   bool      `json:"survived"`
	UnitsStart int       `json:"units_start"`
	UnitsLeft  int       `json:"units_left"`
	HPStart    int       `json:"hp_start"`
	HPLeft     int       `json:"hp_left"`
	Wins       int       `json:"wins"`
	Score      float64   `json:"score"`
	Grade      string    `json:"grade"`
}

// Stats returns the run summary so far.
func (s *Simulation) Stats() RunStats {
	rs := s.stats
	rs.Ticks = s.tick
	rs.SimTime = s.now
	o := s.Outcome()
	rs.Outcome = o.Outcome.String()
	rs.Winner = o.Winner
	rs.Description = o.Description
	rs.Tallies = o.Tallies
	rs.Grades = s.ArmyGrades()
	return rs
}

// ArmyGrades grades every army the run started with, in handle order.
func (s *Simulation) ArmyGrades() []ArmyGrade {
	out := make([]ArmyGrade, 0, len(s.armyStart))
	for id, start := range s.armyStart {
		g := start
		if a, ok := s.World.Army(id); ok && !a.Destroyed() {
			g.Survived = true
			g.UnitsLeft = len(a.Units)
			g.HPLeft = a.TotalHP()
		}
		g.Wins = s.wins[id]
		g.Score = scoreArmy(g)
		g.Grade = PerfLetterGrade(g.Score)
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Army < out[j].Army })
	return out
}

// scoreArmy weights survival, unit retention, health retention and
// combats won into a 0-100 score.
func scoreArmy(g ArmyGrade) float64 {
	score := 0.0
	if g.Survived {
		score += 40
	}
	score += 30 * perfFrac(g.UnitsLeft, g.UnitsStart)
	score += 10 * perfFrac(g.HPLeft, g.HPStart)
	score += 10 * float64(min(g.Wins, 2))
	return perfClamp(score)
}

func (s *Simulation) recordArmyStarts() {
	s.armyStart = make(map[ArmyID]ArmyGrade)
	s.wins = make(map[ArmyID]int)
	for _, a := range s.World.Armies() {
		s.armyStart[a.ID] = ArmyGrade{
			Army:       a.ID,
			Label:      a.Label(),
			Faction:    a.Faction,
			UnitsStart: len(a.Units),
			HPStart:    a.TotalHP(),
		}
	}
}

// FormatGrades returns a human-readable performance report.
func FormatGrades(grades []ArmyGrade) string {
	var sb strings.Builder
	sb.WriteString("\n=== Army Performance Grades ===\n")

	current := FactionID(-1)
	for _, g := range grades {
		if g.Faction != current {
			current = g.Faction
			fmt.Fprintf(&sb, "\n--- Faction %s ---\n", factionLabel(g.Faction))
		}
		status := "survived"
		if !g.Survived {
			status = "destroyed"
		}
		fmt.Fprintf(&sb, "  %-3s  %-4s  [%s]  units=%d/%d  hp=%d/%d  wins=%d\n",
			g.Grade, g.Label, status, g.UnitsLeft, g.UnitsStart, g.HPLeft, g.HPStart, g.Wins)
	}
	return sb.String()
}

// BatchSummary aggregates RunStats over many runs.
type BatchSummary struct {
	Runs              int                   `json:"runs"`
	Victories         map[FactionID]int     `json:"victories"`
	Draws             int                   `json:"draws"`
	Inconclusive      int                   `json:"inconclusive"`
	AvgFirstContact   float64               `json:"avg_first_contact"`    // over runs that had contact; -1 if none did
	AvgCombats        float64               `json:"avg_combats"`
	AvgRounds         float64               `json:"avg_rounds"`
	AvgArmiesLost     float64               `json:"avg_armies_destroyed"`
	AvgScoreByFaction map[FactionID]float64 `json:"avg_score_by_faction"`
}

// SummarizeRuns folds per-run stats into a BatchSummary.
func SummarizeRuns(runs []RunStats) BatchSummary {
	b := BatchSummary{
		Runs:              len(runs),
		Victories:         map[FactionID]int{},
		AvgFirstContact:   -1,
		AvgScoreByFaction: map[FactionID]float64{},
	}
	if len(runs) == 0 {
		return b
	}

	contactSum, contactN := 0, 0
	combats, rounds, lost := 0, 0, 0
	scoreSum := map[FactionID]float64{}
	scoreN := map[FactionID]int{}
	for _, r := range runs {
		switch r.Outcome {
		case OutcomeVictory.String():
			b.Victories[r.Winner]++
		case OutcomeDraw.String():
			b.Draws++
		default:
			b.Inconclusive++
		}
		if r.FirstContactTick >= 0 {
			contactSum += r.FirstContactTick
			contactN++
		}
		combats += r.CombatsStarted
		rounds += r.RoundsFought
		lost += r.ArmiesDestroyed
		for _, g := range r.Grades {
			scoreSum[g.Faction] += g.Score
			scoreN[g.Faction]++
		}
	}
	if contactN > 0 {
		b.AvgFirstContact = float64(contactSum) / float64(contactN)
	}
	n := float64(len(runs))
	b.AvgCombats = float64(combats) / n
	b.AvgRounds = float64(rounds) / n
	b.AvgArmiesLost = float64(lost) / n
	for f, sum := range scoreSum {
		b.AvgScoreByFaction[f] = sum / float64(scoreN[f])
	}
	return b
}

// Format renders the summary as report lines.
func (b BatchSummary) Format() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "runs=%d draws=%d inconclusive=%d\n", b.Runs, b.Draws, b.Inconclusive)

	factions := make([]FactionID, 0, len(b.AvgScoreByFaction))
	for f := range b.AvgScoreByFaction {
		factions = append(factions, f)
	}
	for f := range b.Victories {
		if _, ok := b.AvgScoreByFaction[f]; !ok {
			factions = append(factions, f)
		}
	}
	sort.Slice(factions, func(i, j int) bool { return factions[i] < factions[j] })
	for _, f := range factions {
		avg := b.AvgScoreByFaction[f]
		fmt.Fprintf(&sb, "  %s: victories=%d avg_score=%.1f (%s)\n",
			factionLabel(f), b.Victories[f], avg, PerfLetterGrade(avg))
	}

	contact := "n/a"
	if b.AvgFirstContact >= 0 {
		contact = fmt.Sprintf("%.1f", b.AvgFirstContact)
	}
	fmt.Fprintf(&sb, "avg_per_run: first_contact=%s combats=%.1f rounds=%.1f armies_destroyed=%.1f\n",
		contact, b.AvgCombats, b.AvgRounds, b.AvgArmiesLost)
	return sb.String()
}

func perfFrac(num, denom int) float64 {
	if denom <= 0 {
		return 0
	}
	return float64(num) / float64(denom)
}

func perfClamp(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// PerfLetterGrade maps a 0-100 score to a letter grade.
func PerfLetterGrade(score float64) string {
	switch {
	case score >= 93:
		return "A+"
	case score >= 85:
		return "A"
	case score >= 78:
		return "B+"
	case score >= 70:
		return "B"
	case score >= 62:
		return "C+"
	case score >= 55:
		return "C"
	case score >= 45:
		return "D"
	default:
		return "F"
	}
}
