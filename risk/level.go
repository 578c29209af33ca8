package risk

// Risk level labels, coarsest public surface of a prediction.
const (
	LevelVeryLow  = "Very Low"
	LevelLow      = "Low"
	LevelModerate = "Moderate"
	LevelHigh     = "High"
	LevelVeryHigh = "Very High"
)

// LevelFor discretizes a 0-100 probability onto the five risk levels.
func LevelFor(probability float64) string {
	switch {
	case probability < 15:
		return LevelVeryLow
	case probability < 30:
		return LevelLow
	case probability < 70:
		return LevelModerate
	case probability < 85:
		return LevelHigh
	default:
		return LevelVeryHigh
	}
}
