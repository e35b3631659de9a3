package game

// biomeConfig holds the elevation/moisture thresholds that pick a terrain
// key. Noise values are normalised to 0-1 before classification.
type biomeConfig struct {
	// Elevation bands.
	DeepWaterBelow    float64
	WaterBelow        float64
	ShallowWaterBelow float64
	LowlandBelow      float64 // plains and forests
	HighlandBelow     float64 // hills and steppe; above this are mountains

	// Moisture splits inside each band.
	WastelandMoisture float64 // lowland: below -> wasteland
	ForestMoisture    float64 // lowland: above -> forest
	SteppeMoisture    float64 // highland: below -> steppe
	RocksMoisture     float64 // mountains: below -> rocks

	// Special cases.
	SwampElevation   float64 // wet forest above this elevation turns to swamp
	SwampMoisture    float64
	PlateauElevation float64 // hills above this become plateau
}

var defaultBiomeConfig = biomeConfig{
	DeepWaterBelow:    0.2,
	WaterBelow:        0.25,
	ShallowWaterBelow: 0.3,
	LowlandBelow:      0.6,
	HighlandBelow:     0.8,

	WastelandMoisture: 0.3,
	ForestMoisture:    0.6,
	SteppeMoisture:    0.4,
	RocksMoisture:     0.5,

	SwampElevation:   0.5,
	SwampMoisture:    0.8,
	PlateauElevation: 0.75,
}

// classifyBiome maps normalised elevation e and moisture m to a terrain key.
func classifyBiome(e, m float64, cfg biomeConfig) string {
	key := "GRASSLAND"
	switch {
	case e < cfg.DeepWaterBelow:
		key = "DEEP_WATER"
	case e < cfg.WaterBelow:
		key = "WATER"
	case e < cfg.ShallowWaterBelow:
		key = "SHALLOW_RIVER"
	case e < cfg.LowlandBelow:
		switch {
		case m < cfg.WastelandMoisture:
			key = "WASTELAND"
		case m < cfg.ForestMoisture:
			key = "PLAINS"
		default:
			key = "DECIDUOUS_FOREST"
		}
	case e < cfg.HighlandBelow:
		if m < cfg.SteppeMoisture {
			key = "STEPPE"
		} else {
			key = "HILLS"
		}
	default:
		if m < cfg.RocksMoisture {
			key = "ROCKS"
		} else {
			key = "MOUNTAIN_PEAK"
		}
	}

	if key == "DECIDUOUS_FOREST" && e > cfg.SwampElevation && m > cfg.SwampMoisture {
		key = "SWAMP"
	}
	if key == "HILLS" && e > cfg.PlateauElevation {
		key = "PLATEAU"
	}
	return key
}
