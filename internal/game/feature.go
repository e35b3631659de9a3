package game

// FeatureKind tags a feature placed on a cell.
type FeatureKind uint8

const (
	FeatureRoad FeatureKind = iota
	FeatureBridge
	FeatureTrap
)

func (k FeatureKind) String() string {
	switch k {
	case FeatureRoad:
		return "road"
	case FeatureBridge:
		return "bridge"
	case FeatureTrap:
		return "trap"
	default:
		return "unknown"
	}
}

// Feature is an object placed on top of a cell's base terrain.
// Effects are expressed through the optional capability interfaces below
// and folded over every feature on the cell.
type Feature interface {
	Kind() FeatureKind
}

// walkabilityOverride makes a cell passable regardless of its terrain.
type walkabilityOverride interface {
	OverridesWalkability() bool
}

// costMultiplier scales a cell's movement cost.
type costMultiplier interface {
	MovementMultiplier() float64
}

// defaultRoadModifier halves movement cost on a road.
const defaultRoadModifier = 0.5

// Road speeds up movement and lets armies cross otherwise impassable terrain.
type Road struct {
	Surface  string  // "dirt" or "stone"
	Modifier float64 // movement cost multiplier
}

// NewRoad returns a dirt road with the default cost modifier.
func NewRoad() Road {
	return Road{Surface: "dirt", Modifier: defaultRoadModifier}
}

func (Road) Kind() FeatureKind { return FeatureRoad }

func (Road) OverridesWalkability() bool { return true }

func (r Road) MovementMultiplier() float64 {
	if r.Modifier <= 0 {
		return defaultRoadModifier
	}
	return r.Modifier
}

// Bridge makes a water cell passable.
type Bridge struct{}

func (Bridge) Kind() FeatureKind { return FeatureBridge }

func (Bridge) OverridesWalkability() bool { return true }

// Trap is hidden damage on a cell. It does not affect movement.
type Trap struct {
	Damage          int
	DetectionChance float64
}

func (Trap) Kind() FeatureKind { return FeatureTrap }
