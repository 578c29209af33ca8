package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func completeSensorVector() FeatureVector {
	return FeatureVector{
		"screen_time_h":     6.5,
		"heart_rate_bpm":    72,
		"steps":             8000,
		"sleep_h":           7.2,
		"stress_level":      40,
		"respiration_rate":  15,
		"temperature_c":     22.5,
		"air_quality":       2,
		"weather_condition": 1,
		"air_pressure_hpa":  1013.25,
	}
}

func TestValidateFeaturesComplete(t *testing.T) {
	ok, problems := ValidateFeatures(completeSensorVector(), StreamSensor)
	assert.True(t, ok)
	assert.Empty(t, problems)
}

func TestValidateFeaturesMissingKey(t *testing.T) {
	v := completeSensorVector()
	delete(v, "sleep_h")

	ok, problems := ValidateFeatures(v, StreamSensor)
	assert.False(t, ok)
	assert.Len(t, problems, 1)
	assert.Contains(t, problems[0], "sleep_h")
}

func TestValidateFeaturesOutOfRange(t *testing.T) {
	v := completeSensorVector()
	v["heart_rate_bpm"] = 250
	v["air_pressure_hpa"] = 900

	ok, problems := ValidateFeatures(v, StreamSensor)
	assert.False(t, ok)
	assert.Len(t, problems, 2)
	assert.Contains(t, problems[0], "heart_rate_bpm")
	assert.Contains(t, problems[1], "air_pressure_hpa")
}

func TestValidateFeaturesInclusiveBounds(t *testing.T) {
	v := completeSensorVector()
	v["stress_level"] = 100
	v["screen_time_h"] = 0

	ok, problems := ValidateFeatures(v, StreamSensor)
	assert.True(t, ok)
	assert.Empty(t, problems)
}

func TestValidateFeaturesSurvey(t *testing.T) {
	v := make(FeatureVector)
	for _, f := range SurveyFeatures {
		v[f] = 0
	}
	v["stress"] = 1

	ok, problems := ValidateFeatures(v, StreamSurvey)
	assert.True(t, ok)
	assert.Empty(t, problems)

	delete(v, "travel")
	ok, problems = ValidateFeatures(v, StreamSurvey)
	assert.False(t, ok)
	assert.Contains(t, problems[0], "travel")
}

func TestClipToRange(t *testing.T) {
	v := completeSensorVector()
	v["heart_rate_bpm"] = 250
	v["temperature_c"] = -40

	clipped := ClipToRange(v, StreamSensor)
	assert.Equal(t, 200.0, clipped["heart_rate_bpm"])
	assert.Equal(t, -20.0, clipped["temperature_c"])
	assert.Equal(t, 8000.0, clipped["steps"])

	// input untouched
	assert.Equal(t, 250.0, v["heart_rate_bpm"])
}

func TestSensorDayRoundTrip(t *testing.T) {
	day := SensorDayFromFeatures(completeSensorVector())
	assert.Equal(t, completeSensorVector(), day.Features())

	vec := day.Vector()
	assert.Len(t, vec, len(SensorFeatures))
	assert.Equal(t, 6.5, vec[0])
	assert.Equal(t, 1013.25, vec[9])
}

func TestSurveyDayVectorOrder(t *testing.T) {
	day := SurveyDay{Stress: true, Travel: true}
	vec := day.Vector()
	assert.Len(t, vec, len(SurveyFeatures))
	assert.Equal(t, 1.0, vec[0])
	assert.Equal(t, 1.0, vec[14])
	assert.Equal(t, 0.0, vec[1])
}
