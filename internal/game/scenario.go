package game

// Faction handles used by the stock scenario.
const (
	FactionSun    FactionID = 1
	FactionShadow FactionID = 2
)

// DefaultScenario is the stock two-army war on a generated map: an infantry
// fist with archers spawns in the western quarter, a cavalry raid with
// crossbow support in the eastern quarter, each under an aggressive general.
func DefaultScenario(cfg MapConfig) []SimOption {
	w, h := cfg.Cols, cfg.Rows
	return []SimOption{
		WithGeneratedMap(),
		WithFaction(FactionSun, "Order of the Sun", [3]uint8{60, 110, 230}),
		WithFaction(FactionShadow, "Shadow Syndicate", [3]uint8{210, 50, 50}),
		WithArmyInRegion(FactionSun, 0, 0, w/4, h, Point{10, 10}, Roster{
			{Type: "shieldman", Count: 3},
			{Type: "spearman", Count: 7},
			{Type: "archer", Count: 5},
		}),
		WithArmyInRegion(FactionShadow, w*3/4, 0, w, h, Point{w - 10, h - 10}, Roster{
			{Type: "swordsman", Count: 5},
			{Type: "light_cavalry", Count: 4},
			{Type: "crossbowman", Count: 3},
		}),
		WithGeneral(1, "aggressive_general"),
		WithGeneral(2, "aggressive_general"),
	}
}
