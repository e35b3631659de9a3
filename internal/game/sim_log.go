package game

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// EventEntry is one recorded simulation event.
type EventEntry struct {
	Tick     int     `json:"tick"`
	Army     string  `json:"army"`     // label e.g. "A3", or "--" for global events
	Faction  string  `json:"faction"`  // "F1", or "--"
	Category string  `json:"category"` // move, state, target, combat, ai, world
	Key      string  `json:"key"`      // specific event name within the category
	Value    string  `json:"value"`    // human-readable detail
	NumVal   float64 `json:"num"`      // optional numeric value for threshold checks
}

// String formats the entry as a fixed-width log line.
//
//	[T=042] A1   combat    round           F1 (12) vs F2 (9) | dmg 31/40 | lost 1/2
func (e EventEntry) String() string {
	return fmt.Sprintf("[T=%03d] %-4s %-9s %-15s %s",
		e.Tick, e.Army, e.Category, e.Key, e.Value)
}

// EventLog is the structured event sink handed to every simulation
// component. It is scoped to one simulation run and optionally mirrors
// entries to a zap logger.
type EventLog struct {
	entries []EventEntry
	verbose bool
	tick    int
	logger  *zap.Logger
}

// NewEventLog creates an EventLog. If verbose is true, per-cell movement
// entries are also recorded.
func NewEventLog(verbose bool) *EventLog {
	return &EventLog{verbose: verbose, logger: zap.NewNop()}
}

// WithLogger mirrors every entry to l at debug level.
func (el *EventLog) WithLogger(l *zap.Logger) *EventLog {
	if l == nil {
		l = zap.NewNop()
	}
	el.logger = l
	return el
}

// Logger returns the mirror logger (never nil).
func (el *EventLog) Logger() *zap.Logger {
	return el.logger
}

// SetTick stamps subsequent entries recorded through component helpers.
func (el *EventLog) SetTick(tick int) { el.tick = tick }

// Tick returns the current stamp.
func (el *EventLog) Tick() int { return el.tick }

// Add records a new entry.
func (el *EventLog) Add(tick int, army, faction, category, key, value string, numVal float64) {
	e := EventEntry{
		Tick:     tick,
		Army:     army,
		Faction:  faction,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	}
	el.entries = append(el.entries, e)
	el.logger.Debug(value,
		zap.Int("tick", tick),
		zap.String("army", army),
		zap.String("faction", faction),
		zap.String("category", category),
		zap.String("key", key),
		zap.Float64("num", numVal),
	)
}

// AddVerbose records an entry only when verbose mode is on.
func (el *EventLog) AddVerbose(tick int, army, faction, category, key, value string, numVal float64) {
	if !el.verbose {
		return
	}
	el.Add(tick, army, faction, category, key, value, numVal)
}

// Global records a world-level entry not tied to an army.
func (el *EventLog) Global(category, key, value string, numVal float64) {
	el.Add(el.tick, "--", "--", category, key, value, numVal)
}

// Entries returns all recorded entries.
func (el *EventLog) Entries() []EventEntry {
	return el.entries
}

// Since returns entries with index >= n, and the new length.
func (el *EventLog) Since(n int) ([]EventEntry, int) {
	if n < 0 {
		n = 0
	}
	if n >= len(el.entries) {
		return nil, len(el.entries)
	}
	out := make([]EventEntry, len(el.entries)-n)
	copy(out, el.entries[n:])
	return out, len(el.entries)
}

// Len is the number of recorded entries.
func (el *EventLog) Len() int { return len(el.entries) }

// Filter returns entries matching the given category and/or key.
// Pass empty string to match any value for that field.
func (el *EventLog) Filter(category, key string) []EventEntry {
	var out []EventEntry
	for _, e := range el.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterArmy returns entries for a specific army label.
func (el *EventLog) FilterArmy(label string) []EventEntry {
	var out []EventEntry
	for _, e := range el.entries {
		if e.Army == label {
			out = append(out, e)
		}
	}
	return out
}

// CountCategory returns how many entries match the given category and key.
func (el *EventLog) CountCategory(category, key string) int {
	return len(el.Filter(category, key))
}

// LastOf returns the most recent entry matching category+key, or false if none.
func (el *EventLog) LastOf(category, key string) (EventEntry, bool) {
	entries := el.Filter(category, key)
	if len(entries) == 0 {
		return EventEntry{}, false
	}
	return entries[len(entries)-1], true
}

// HasEntry returns true if at least one entry matches category, key, and value substring.
func (el *EventLog) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range el.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if valueSubstr != "" && !strings.Contains(e.Value, valueSubstr) {
			continue
		}
		return true
	}
	return false
}

// Format returns the full log as a single string for t.Log output.
func (el *EventLog) Format() string {
	var sb strings.Builder
	for _, e := range el.entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
