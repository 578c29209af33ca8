package risk

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aavahealth/migraine-api/schema"
)

func seedFusedSource() *fakeSource {
	source := newFakeSource()
	source.addArtifact(flatArtifact(schema.BaseModelOwner, schema.StreamSensor, -4))
	source.addArtifact(flatArtifact(schema.BaseModelOwner, schema.StreamSurvey, -4))
	return source
}

func TestPredictFusedBothStreams(t *testing.T) {
	source := seedFusedSource()
	source.sensorDays["carol"] = []schema.SensorDay{goodSensorDay(), goodSensorDay()}
	source.surveyDays["carol"] = []schema.SurveyDay{{Exercise: true}, {}}
	engine := newTestEngine(source)

	fused, err := engine.PredictFused("carol")
	assert.NoError(t, err)

	sensorP := fused.Sensor.Prediction.Probability
	surveyP := fused.Survey.Prediction.Probability
	assert.InDelta(t, (sensorP+surveyP)/2, fused.Probability, 1e-9)
	assert.Equal(t, LevelVeryLow, fused.RiskLevel)
	assert.NotEmpty(t, fused.Recommendation)

	// reason1 from the sensor stream, reason2 from the survey stream
	assert.Equal(t, fused.Sensor.Prediction.TopFactors[0].Label, fused.Reason1)
	assert.Equal(t, fused.Survey.Prediction.TopFactors[0].Label, fused.Reason2)
}

func TestPredictFusedExcellentWeekStaysVeryLow(t *testing.T) {
	source := seedFusedSource()
	week := make([]schema.SensorDay, 7)
	for i := range week {
		week[i] = goodSensorDay()
	}
	source.sensorDays["carol"] = week
	source.surveyDays["carol"] = make([]schema.SurveyDay, 7)
	engine := newTestEngine(source)

	fused, err := engine.PredictFused("carol")
	assert.NoError(t, err)
	assert.Equal(t, 0.0, fused.Sensor.Prediction.TemporalAdjustment)
	assert.Less(t, fused.Probability, 20.0)
	assert.Equal(t, LevelVeryLow, fused.RiskLevel)
}

func TestPredictFusedSurveyStreamMissing(t *testing.T) {
	source := seedFusedSource()
	source.sensorDays["dave"] = []schema.SensorDay{goodSensorDay()}
	engine := newTestEngine(source)

	fused, err := engine.PredictFused("dave")
	assert.NoError(t, err)

	// the fused value is the mean of one stream, i.e. that stream's value
	assert.Equal(t, fused.Sensor.Prediction.Probability, fused.Probability)
	assert.NotEmpty(t, fused.Survey.Error)
	assert.Nil(t, fused.Survey.Prediction)
	assert.NotEmpty(t, fused.Reason1)
	assert.Empty(t, fused.Reason2)
}

func TestPredictFusedSensorStreamMissing(t *testing.T) {
	source := seedFusedSource()
	source.surveyDays["erin"] = []schema.SurveyDay{
		{Stress: true, Fatigue: true},
		{Stress: true},
	}
	engine := newTestEngine(source)

	fused, err := engine.PredictFused("erin")
	assert.NoError(t, err)
	assert.Equal(t, fused.Survey.Prediction.Probability, fused.Probability)

	// survey factors fill both headline slots
	assert.Equal(t, fused.Survey.Prediction.TopFactors[0].Label, fused.Reason1)
	assert.Equal(t, fused.Survey.Prediction.TopFactors[1].Label, fused.Reason2)
}

func TestPredictFusedOverfullWindowKeepsNewestDays(t *testing.T) {
	source := seedFusedSource()

	// nine rows inside the week, e.g. a double-submitted day plus
	// observations; the newest seven are scored instead of failing
	rows := make([]schema.SensorDay, 9)
	for i := range rows {
		rows[i] = goodSensorDay()
	}
	for i := 0; i < 2; i++ {
		rows[i].SleepHours = 5.8 // oldest rows, outside the kept window
	}
	source.sensorDays["carol"] = rows
	source.surveyDays["carol"] = make([]schema.SurveyDay, 8)
	engine := newTestEngine(source)

	fused, err := engine.PredictFused("carol")
	assert.NoError(t, err)
	assert.Equal(t, 7, fused.Sensor.Prediction.DaysAnalyzed)
	assert.Equal(t, 7, fused.Survey.Prediction.DaysAnalyzed)
	// the short-sleep rows fell off the window, so no sleep debt accrues
	assert.Equal(t, 0.0, fused.Sensor.Prediction.TemporalAdjustment)
}

func TestPredictFusedBothStreamsFail(t *testing.T) {
	engine := newTestEngine(seedFusedSource())

	_, err := engine.PredictFused("nobody")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "sensor")
	assert.Contains(t, err.Error(), "survey")
}

func TestPredictFusedSurfacesMissingBaseModel(t *testing.T) {
	source := newFakeSource()
	source.sensorDays["carol"] = []schema.SensorDay{goodSensorDay()}
	source.surveyDays["carol"] = []schema.SurveyDay{{}}
	engine := newTestEngine(source)

	_, err := engine.PredictFused("carol")

	var noModel *NoModelError
	assert.True(t, errors.As(err, &noModel))
	assert.True(t, noModel.BaseMissing())
}
