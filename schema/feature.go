package schema

import "fmt"

// Stream identifies one of the two independent prediction pipelines.
type Stream string

const (
	StreamSensor Stream = "sensor"
	StreamSurvey Stream = "survey"
)

func (s Stream) Valid() bool {
	return s == StreamSensor || s == StreamSurvey
}

// FeatureVector is the wire format of one day of readings. Internally the
// typed SensorDay / SurveyDay records are used; conversion happens only at
// the boundary.
type FeatureVector map[string]float64

type FeatureRange struct {
	Min float64
	Max float64
}

// SensorFeatures is the canonical feature order of the sensor stream. The
// order is part of every trained model's contract and must never change.
var SensorFeatures = []string{
	"screen_time_h",
	"heart_rate_bpm",
	"steps",
	"sleep_h",
	"stress_level",
	"respiration_rate",
	"temperature_c",
	"air_quality",
	"weather_condition",
	"air_pressure_hpa",
}

var SensorFeatureRanges = map[string]FeatureRange{
	"screen_time_h":     {0, 24},
	"heart_rate_bpm":    {40, 200},
	"steps":             {0, 50000},
	"sleep_h":           {0, 24},
	"stress_level":      {0, 100},
	"respiration_rate":  {8, 30},
	"temperature_c":     {-20, 50},
	"air_quality":       {0, 5},
	"weather_condition": {0, 3},
	"air_pressure_hpa":  {950, 1050},
}

// SurveyFeatures is the canonical feature order of the survey stream. All
// fields are boolean trigger indicators transmitted as 0/1.
var SurveyFeatures = []string{
	"stress",
	"oversleep",
	"sleep_deprivation",
	"exercise",
	"fatigue",
	"menstrual",
	"emotional_distress",
	"excessive_noise",
	"excessive_smells",
	"excessive_alcohol",
	"irregular_meals",
	"overeating",
	"excessive_caffeine",
	"excessive_smoking",
	"travel",
}

func streamContract(stream Stream) ([]string, map[string]FeatureRange) {
	switch stream {
	case StreamSensor:
		return SensorFeatures, SensorFeatureRanges
	case StreamSurvey:
		ranges := make(map[string]FeatureRange, len(SurveyFeatures))
		for _, f := range SurveyFeatures {
			ranges[f] = FeatureRange{0, 1}
		}
		return SurveyFeatures, ranges
	}
	return nil, nil
}

// ValidateFeatures checks a wire-format vector against the stream's contract.
// It reports every missing key and every out-of-range value; bounds are
// inclusive. The input is never mutated.
func ValidateFeatures(v FeatureVector, stream Stream) (bool, []string) {
	features, ranges := streamContract(stream)
	if features == nil {
		return false, []string{fmt.Sprintf("unknown stream %q", stream)}
	}

	var problems []string
	for _, name := range features {
		value, ok := v[name]
		if !ok {
			problems = append(problems, fmt.Sprintf("missing feature: %s", name))
			continue
		}

		r := ranges[name]
		if value < r.Min || value > r.Max {
			problems = append(problems, fmt.Sprintf("%s = %v is outside valid range [%v, %v]", name, value, r.Min, r.Max))
		}
	}

	return len(problems) == 0, problems
}

// ClipToRange clamps each known feature into its declared bounds. It is used
// for bulk cleaning of historical corpora only; live scoring rejects instead
// of clamping so that a bad upstream sensor is not silently masked.
func ClipToRange(v FeatureVector, stream Stream) FeatureVector {
	_, ranges := streamContract(stream)

	clipped := make(FeatureVector, len(v))
	for name, value := range v {
		if r, ok := ranges[name]; ok {
			if value < r.Min {
				value = r.Min
			} else if value > r.Max {
				value = r.Max
			}
		}
		clipped[name] = value
	}

	return clipped
}
