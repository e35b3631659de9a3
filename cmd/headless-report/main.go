package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Garsondee/Eternal-War/internal/game"
)

type runResult struct {
	runIndex int
	stats    game.RunStats

	firstCombatTick  int
	firstRoundTick   int
	firstDestroyTick int
	targetsAcquired  int
	unreachable      int
	decisions        int
	roundsLogged     int
	armiesDestroyed  int
	stalemate        bool
	stalemateReason  string
	err              error
}

func main() {
	var runs int
	var ticks int
	var seedBase int64
	var seedStep int64
	var workers int
	var configPath string
	var asJSON bool
	var verbose bool

	flag.IntVar(&runs, "runs", 5, "number of headless simulation runs")
	flag.IntVar(&ticks, "ticks", 36000, "maximum ticks per run (60 ticks = 1 simulated second)")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.IntVar(&workers, "workers", 4, "runs simulated in parallel")
	flag.StringVar(&configPath, "config", "", "YAML simulation config (defaults if empty)")
	flag.BoolVar(&asJSON, "json", false, "print per-run stats and the summary as JSON")
	flag.BoolVar(&verbose, "v", false, "log simulation setup to stderr")
	flag.Parse()

	log := zap.NewNop()
	if verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: logger: %v\n", err)
			os.Exit(1)
		}
		log = l
	}
	defer func() { _ = log.Sync() }()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		os.Exit(2)
	}
	if ticks <= 0 {
		fmt.Println("error: -ticks must be > 0")
		os.Exit(2)
	}

	cfg := game.DefaultSimConfig()
	if configPath != "" {
		c, err := game.LoadSimConfig(configPath)
		if err != nil {
			log.Error("config", zap.Error(err))
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		cfg = c
	}

	seeds := make([]int64, runs)
	for i := range seeds {
		seeds[i] = seedBase + int64(i)*seedStep
	}
	results := runBatch(cfg, seeds, ticks, workers, log)

	all := make([]game.RunStats, 0, len(results))
	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			log.Error("run failed", zap.Int("run", r.runIndex), zap.Error(r.err))
			fmt.Fprintf(os.Stderr, "run %d: %v\n", r.runIndex, r.err)
			continue
		}
		all = append(all, r.stats)
	}
	summary := game.SummarizeRuns(all)

	if asJSON {
		out := struct {
			Runs    []game.RunStats   `json:"runs"`
			Summary game.BatchSummary `json:"summary"`
		}{all, summary}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	} else {
		fmt.Printf("=== Headless Battle Report ===\n")
		fmt.Printf("map=%dx%d runs=%d max_ticks=%d seed_base=%d seed_step=%d workers=%d\n\n",
			cfg.Map.Cols, cfg.Map.Rows, runs, ticks, seedBase, seedStep, workers)
		for _, r := range results {
			if r.err == nil {
				printRun(r)
			}
		}
		fmt.Println("=== Aggregate ===")
		fmt.Print(summary.Format())
		fmt.Printf("stalemates=%d\n", countStalemates(results))
	}
	if failed > 0 {
		os.Exit(1)
	}
}

// runBatch simulates one run per seed on a pool of workers. Results come
// back in seed order.
func runBatch(cfg game.SimConfig, seeds []int64, ticks, workers int, log *zap.Logger) []runResult {
	if workers < 1 {
		workers = 1
	}
	results := make([]runResult, len(seeds))
	jobs := make(chan int)

	var mu sync.Mutex
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				r := runOne(i+1, cfg, seeds[i], ticks, log)
				mu.Lock()
				results[i] = r
				mu.Unlock()
			}
		}()
	}
	for i := range seeds {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return results
}

// runOne plays the stock scenario until the battle is decided or maxTicks
// pass.
func runOne(runIndex int, cfg game.SimConfig, seed int64, maxTicks int, log *zap.Logger) runResult {
	opts := append([]game.SimOption{
		game.WithConfig(cfg),
		game.WithSeed(seed),
		game.WithLogger(log.With(zap.Int("run", runIndex))),
	}, game.DefaultScenario(cfg.Map)...)
	sim, err := game.NewSimulation(opts...)
	if err != nil {
		return runResult{runIndex: runIndex, err: err}
	}
	sim.RunUntil(decided, maxTicks)

	ev := sim.Events
	rs := sim.Stats()
	r := runResult{
		runIndex:         runIndex,
		stats:            rs,
		firstCombatTick:  firstTick(ev.Entries(), "combat", "collision", ""),
		firstRoundTick:   firstTick(ev.Entries(), "combat", "round", ""),
		firstDestroyTick: firstTick(ev.Entries(), "world", "army_removed", ""),
		targetsAcquired:  ev.CountCategory("ai", "target_acquired"),
		unreachable:      ev.CountCategory("ai", "unreachable"),
		decisions:        ev.CountCategory("ai", "decision"),
		roundsLogged:     ev.CountCategory("combat", "round"),
		armiesDestroyed:  rs.ArmiesDestroyed,
	}
	r.stalemate, r.stalemateReason = detectStalemate(rs)
	return r
}

func decided(s *game.Simulation) bool {
	return s.Outcome().Outcome != game.OutcomeInconclusive
}

func firstTick(entries []game.EventEntry, category, key, contains string) int {
	for _, e := range entries {
		if e.Category != category || e.Key != key {
			continue
		}
		if contains == "" || strings.Contains(e.Value, contains) {
			return e.Tick
		}
	}
	return -1
}

// detectStalemate flags runs that fought but ended with every faction
// largely intact.
func detectStalemate(rs game.RunStats) (bool, string) {
	if rs.Outcome != game.OutcomeInconclusive.String() {
		return false, "decided:" + rs.Outcome
	}
	if rs.CombatsStarted == 0 {
		return false, "no_contact"
	}
	worst := 0.0
	for _, t := range rs.Tallies {
		worst = max(worst, t.CasualtyRate)
	}
	if worst > 0.5 {
		return false, fmt.Sprintf("attrition_decisive worst_casualty=%.2f", worst)
	}
	reasons := []string{fmt.Sprintf("high_mutual_survival worst_casualty=%.2f", worst)}
	if rs.RoundsFought > 0 && rs.CombatsFinished == 0 {
		reasons = append(reasons, "no_combat_finished")
	}
	return true, strings.Join(reasons, " ")
}

func countStalemates(results []runResult) int {
	n := 0
	for _, r := range results {
		if r.err == nil && r.stalemate {
			n++
		}
	}
	return n
}

func printRun(r runResult) {
	rs := r.stats
	fmt.Printf("--- Run %d (seed=%d) ---\n", r.runIndex, rs.Seed)
	fmt.Printf("result: %s  %s  ticks=%d sim_time=%.1fs\n", rs.Outcome, rs.Description, rs.Ticks, rs.SimTime)
	fmt.Printf("phase_markers: contact=%d first_combat=%d first_round=%d first_destroyed=%d\n",
		rs.FirstContactTick, r.firstCombatTick, r.firstRoundTick, r.firstDestroyTick)
	fmt.Printf("event_totals: target_acquired=%d decisions=%d unreachable=%d rounds=%d\n",
		r.targetsAcquired, r.decisions, r.unreachable, r.roundsLogged)
	fmt.Printf("combat: started=%d finished=%d rounds=%d armies_destroyed=%d\n",
		rs.CombatsStarted, rs.CombatsFinished, rs.RoundsFought, r.armiesDestroyed)
	for _, t := range rs.Tallies {
		fmt.Printf("  F%d: armies=%d/%d units=%d/%d casualty=%.0f%%\n",
			t.Faction, t.ArmiesLeft, t.ArmiesTotal, t.UnitsLeft, t.UnitsTotal, t.CasualtyRate*100)
	}
	if r.stalemate {
		fmt.Printf("stalemate: %s\n", r.stalemateReason)
	}
	fmt.Print(game.FormatGrades(rs.Grades))
	fmt.Println()
}
