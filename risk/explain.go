package risk

import (
	"sort"
	"strings"

	"github.com/aavahealth/migraine-api/schema"
)

const (
	// TopFactorCount is how many factors a full prediction carries.
	TopFactorCount = 5

	// HeadlineFactorCount trims that to the public-facing reasons.
	HeadlineFactorCount = 2
)

// Factor is one feature's share of a prediction, ranked by its absolute
// contribution to the model's log-odds.
type Factor struct {
	Feature      string  `json:"feature"`
	Label        string  `json:"label"`
	Value        float64 `json:"value"`
	Contribution float64 `json:"contribution"`
}

var sensorFactorLabels = map[string]string{
	"screen_time_h":     "High screen time",
	"heart_rate_bpm":    "Elevated heart rate",
	"steps":             "Low physical activity",
	"sleep_h":           "Insufficient sleep",
	"stress_level":      "High stress level",
	"respiration_rate":  "Elevated respiration rate",
	"temperature_c":     "High temperature",
	"air_quality":       "Poor air quality",
	"weather_condition": "Weather conditions",
	"air_pressure_hpa":  "Air pressure changes",
}

// FactorLabel maps a model feature name to its human-readable form. The
// per-user aggregate decorations collapse onto their base trigger, so
// "user_stress_mean" and "stress" both read as "Stress".
func FactorLabel(feature string) string {
	if label, ok := sensorFactorLabels[feature]; ok {
		return label
	}

	base := strings.TrimPrefix(feature, "user_")
	base = strings.TrimSuffix(base, "_mean")
	base = strings.TrimSuffix(base, "_std")
	base = strings.ReplaceAll(base, "_", " ")
	if base == "" {
		return feature
	}
	return strings.ToUpper(base[:1]) + base[1:]
}

// RankFactors orders features by |weight x standardized value| descending,
// ties broken by the artifact's stored feature order. The contribution is
// computed in the model's space (the standardized row the classifier
// scored); Value reports the raw reading for display.
func RankFactors(artifact schema.ModelArtifact, raw, scaled []float64, limit int) []Factor {
	factors := make([]Factor, len(artifact.FeatureNames))
	for i, name := range artifact.FeatureNames {
		contribution := artifact.Weights[i] * scaled[i]
		if contribution < 0 {
			contribution = -contribution
		}
		factors[i] = Factor{
			Feature:      name,
			Label:        FactorLabel(name),
			Value:        raw[i],
			Contribution: contribution,
		}
	}

	sort.SliceStable(factors, func(i, j int) bool {
		return factors[i].Contribution > factors[j].Contribution
	})

	if limit > 0 && len(factors) > limit {
		factors = factors[:limit]
	}
	return factors
}
