package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelForBoundaries(t *testing.T) {
	assert.Equal(t, LevelVeryLow, LevelFor(0))
	assert.Equal(t, LevelVeryLow, LevelFor(14.9))
	assert.Equal(t, LevelLow, LevelFor(15))
	assert.Equal(t, LevelLow, LevelFor(29.9))
	assert.Equal(t, LevelModerate, LevelFor(30))
	assert.Equal(t, LevelModerate, LevelFor(69.9))
	assert.Equal(t, LevelHigh, LevelFor(70))
	assert.Equal(t, LevelHigh, LevelFor(84.9))
	assert.Equal(t, LevelVeryHigh, LevelFor(85))
	assert.Equal(t, LevelVeryHigh, LevelFor(100))
}

func TestRecommendationPerLevel(t *testing.T) {
	seen := map[string]bool{}
	for _, level := range []string{LevelVeryLow, LevelLow, LevelModerate, LevelHigh, LevelVeryHigh} {
		text := Recommendation(level, "en")
		assert.NotEmpty(t, text)
		seen[text] = true
	}
	// Very Low and Low share phrasing in spirit but not verbatim
	assert.Len(t, seen, 5)
}

func TestRecommendationUnknownLevel(t *testing.T) {
	assert.Equal(t, "Monitor your health.", Recommendation("Unheard Of", "en"))
}
