package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/aavahealth/migraine-api/ml"
	"github.com/aavahealth/migraine-api/risk"
	"github.com/aavahealth/migraine-api/schema"
	"github.com/aavahealth/migraine-api/store"
	"github.com/aavahealth/migraine-api/weather"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// memoryStore is an in-memory MigraineStore for handler tests.
type memoryStore struct {
	sensor    map[string][]schema.SensorRecord
	survey    map[string][]schema.SurveyRecord
	artifacts map[string]schema.ModelArtifact
	pingErr   error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		sensor:    map[string][]schema.SensorRecord{},
		survey:    map[string][]schema.SurveyRecord{},
		artifacts: map[string]schema.ModelArtifact{},
	}
}

func (m *memoryStore) AppendSensorDay(userID string, day schema.SensorDay, hadMigraine *bool) (schema.SensorRecord, int64, error) {
	record := schema.SensorRecord{UserID: userID, Day: day, HadMigraine: hadMigraine, Seq: int64(len(m.sensor[userID]) + 1)}
	m.sensor[userID] = append(m.sensor[userID], record)
	return record, m.countSensorLabeled(userID), nil
}

func (m *memoryStore) countSensorLabeled(userID string) int64 {
	var n int64
	for _, rec := range m.sensor[userID] {
		if rec.Labeled() {
			n++
		}
	}
	return n
}

func (m *memoryStore) ListSensorRecords(userID string) ([]schema.SensorRecord, error) {
	var labeled []schema.SensorRecord
	for _, rec := range m.sensor[userID] {
		if rec.Labeled() {
			labeled = append(labeled, rec)
		}
	}
	return labeled, nil
}

func (m *memoryStore) CountLabeledSensorRecords(userID string) (int64, error) {
	return m.countSensorLabeled(userID), nil
}

func (m *memoryStore) ListRecentSensorDays(userID string, days int) ([]schema.SensorDay, error) {
	var out []schema.SensorDay
	for _, rec := range m.sensor[userID] {
		out = append(out, rec.Day)
	}
	return out, nil
}

func (m *memoryStore) SensorTrainingCorpus() ([]schema.SensorRecord, error) {
	var all []schema.SensorRecord
	for userID := range m.sensor {
		labeled, _ := m.ListSensorRecords(userID)
		all = append(all, labeled...)
	}
	return all, nil
}

func (m *memoryStore) AppendSurveyDay(userID string, day schema.SurveyDay, hadMigraine *bool) (schema.SurveyRecord, int64, error) {
	record := schema.SurveyRecord{UserID: userID, Day: day, HadMigraine: hadMigraine, Seq: int64(len(m.survey[userID]) + 1)}
	m.survey[userID] = append(m.survey[userID], record)
	return record, m.countSurveyLabeled(userID), nil
}

func (m *memoryStore) countSurveyLabeled(userID string) int64 {
	var n int64
	for _, rec := range m.survey[userID] {
		if rec.Labeled() {
			n++
		}
	}
	return n
}

func (m *memoryStore) ListSurveyRecords(userID string) ([]schema.SurveyRecord, error) {
	var labeled []schema.SurveyRecord
	for _, rec := range m.survey[userID] {
		if rec.Labeled() {
			labeled = append(labeled, rec)
		}
	}
	return labeled, nil
}

func (m *memoryStore) CountLabeledSurveyRecords(userID string) (int64, error) {
	return m.countSurveyLabeled(userID), nil
}

func (m *memoryStore) ListRecentSurveyDays(userID string, days int) ([]schema.SurveyDay, error) {
	var out []schema.SurveyDay
	for _, rec := range m.survey[userID] {
		out = append(out, rec.Day)
	}
	return out, nil
}

func (m *memoryStore) SurveyTrainingCorpus() ([]schema.SurveyRecord, error) {
	var all []schema.SurveyRecord
	for userID := range m.survey {
		labeled, _ := m.ListSurveyRecords(userID)
		all = append(all, labeled...)
	}
	return all, nil
}

func (m *memoryStore) SaveModelArtifact(artifact schema.ModelArtifact) error {
	m.artifacts[artifact.Owner+"/"+string(artifact.Stream)] = artifact
	return nil
}

func (m *memoryStore) GetModelArtifact(owner string, stream schema.Stream) (*schema.ModelArtifact, error) {
	artifact, ok := m.artifacts[owner+"/"+string(stream)]
	if !ok {
		return nil, store.ErrNoModelArtifact
	}
	return &artifact, nil
}

func (m *memoryStore) HasModelArtifact(owner string, stream schema.Stream) (bool, error) {
	_, ok := m.artifacts[owner+"/"+string(stream)]
	return ok, nil
}

func (m *memoryStore) Ping() error  { return m.pingErr }
func (m *memoryStore) Close() error { return nil }

func newTestServer(mongoStore *memoryStore, weatherSource weather.Source) *Server {
	cache := ml.NewModelCache()
	trainer := ml.NewTrainer(mongoStore, cache)
	engine := risk.NewEngine(mongoStore, cache, "en")
	return NewServer(mongoStore, trainer, engine, weatherSource, false)
}

func performRequest(s *Server, method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			panic(err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	w := httptest.NewRecorder()
	s.setupRouter().ServeHTTP(w, req)
	return w
}

func completeSensorFeatures() schema.FeatureVector {
	return schema.FeatureVector{
		"screen_time_h": 3, "heart_rate_bpm": 62, "steps": 11000,
		"sleep_h": 8, "stress_level": 20, "respiration_rate": 14,
		"temperature_c": 21, "air_quality": 1, "weather_condition": 0,
		"air_pressure_hpa": 1014,
	}
}

func TestHealthz(t *testing.T) {
	w := performRequest(newTestServer(newMemoryStore(), nil), "GET", "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRequesterRequired(t *testing.T) {
	s := newTestServer(newMemoryStore(), nil)
	w := performRequest(s, "POST", "/reports/sensor", "", map[string]interface{}{
		"features": completeSensorFeatures(),
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUnknownStream(t *testing.T) {
	s := newTestServer(newMemoryStore(), nil)
	w := performRequest(s, "POST", "/reports/telepathy", "alice", map[string]interface{}{
		"features": completeSensorFeatures(),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unknown data stream")
}

func TestSubmitSensorReport(t *testing.T) {
	mongoStore := newMemoryStore()
	s := newTestServer(mongoStore, nil)

	w := performRequest(s, "POST", "/reports/sensor", "alice", map[string]interface{}{
		"features":     completeSensorFeatures(),
		"had_migraine": false,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		TotalLabeled     int64 `json:"total_labeled"`
		TrainingEligible bool  `json:"training_eligible"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.TotalLabeled)
	assert.False(t, resp.TrainingEligible)
	assert.Len(t, mongoStore.sensor["alice"], 1)
}

func TestSubmitObservationNotCounted(t *testing.T) {
	mongoStore := newMemoryStore()
	s := newTestServer(mongoStore, nil)

	w := performRequest(s, "POST", "/reports/sensor", "alice", map[string]interface{}{
		"features": completeSensorFeatures(),
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_labeled":0`)
}

func TestSubmitReportValidationFailure(t *testing.T) {
	s := newTestServer(newMemoryStore(), nil)

	features := completeSensorFeatures()
	features["heart_rate_bpm"] = 900
	delete(features, "steps")

	w := performRequest(s, "POST", "/reports/sensor", "alice", map[string]interface{}{
		"features": features,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Problems []string `json:"problems"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Problems, 2)
}

func TestPredictStreamNoModel(t *testing.T) {
	s := newTestServer(newMemoryStore(), nil)

	w := performRequest(s, "POST", "/risk/sensor", "alice", map[string]interface{}{
		"today": completeSensorFeatures(),
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "no trained model available")
}

func TestTrainUserModelShortfall(t *testing.T) {
	mongoStore := newMemoryStore()
	s := newTestServer(mongoStore, nil)

	no := false
	for i := 0; i < 3; i++ {
		mongoStore.AppendSensorDay("alice", schema.SensorDayFromFeatures(completeSensorFeatures()), &no)
	}

	w := performRequest(s, "POST", "/models/sensor/train", "alice", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Count    int `json:"count"`
		Required int `json:"required"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Count)
	assert.Equal(t, 10, resp.Required)
}

func TestTrainAndPredictRoundTrip(t *testing.T) {
	mongoStore := newMemoryStore()
	s := newTestServer(mongoStore, nil)

	yes, no := true, false
	calm := completeSensorFeatures()
	rough := schema.FeatureVector{
		"screen_time_h": 11, "heart_rate_bpm": 88, "steps": 2000,
		"sleep_h": 4.5, "stress_level": 85, "respiration_rate": 19,
		"temperature_c": 27, "air_quality": 4, "weather_condition": 2,
		"air_pressure_hpa": 992,
	}
	for i := 0; i < 6; i++ {
		mongoStore.AppendSensorDay("alice", schema.SensorDayFromFeatures(calm), &no)
		mongoStore.AppendSensorDay("alice", schema.SensorDayFromFeatures(rough), &yes)
	}

	w := performRequest(s, "POST", "/models/sensor/train", "alice", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"owner":"alice"`)

	w = performRequest(s, "POST", "/risk/sensor", "alice", map[string]interface{}{
		"today": calm,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var prediction risk.Prediction
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &prediction))
	assert.True(t, prediction.Personalized)
	assert.Less(t, prediction.Probability, 50.0)
	assert.Len(t, prediction.TopFactors, risk.TopFactorCount)
}

func TestTrainBaseModelEndpoint(t *testing.T) {
	mongoStore := newMemoryStore()
	s := newTestServer(mongoStore, nil)

	yes, no := true, false
	for _, userID := range []string{"u1", "u2", "u3", "u4", "u5", "u6"} {
		for i := 0; i < 4; i++ {
			mongoStore.AppendSensorDay(userID, schema.SensorDayFromFeatures(completeSensorFeatures()), &no)
			day := schema.SensorDayFromFeatures(completeSensorFeatures())
			day.StressLevel = 90
			day.SleepHours = 4
			mongoStore.AppendSensorDay(userID, day, &yes)
		}
	}

	w := performRequest(s, "POST", "/models/sensor/train-base", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"owner":"base"`)
	assert.Contains(t, w.Body.String(), `"evaluation"`)
}

func TestPredictFusedEndpoint(t *testing.T) {
	mongoStore := newMemoryStore()
	s := newTestServer(mongoStore, nil)

	// only a base sensor model and sensor history: survey degrades
	artifact := schema.ModelArtifact{
		Owner:        schema.BaseModelOwner,
		Stream:       schema.StreamSensor,
		FeatureNames: schema.SensorFeatures,
		Weights:      make([]float64, len(schema.SensorFeatures)),
		ScalerMean:   make([]float64, len(schema.SensorFeatures)),
		ScalerStd:    onesVector(len(schema.SensorFeatures)),
	}
	assert.NoError(t, mongoStore.SaveModelArtifact(artifact))
	mongoStore.AppendSensorDay("alice", schema.SensorDayFromFeatures(completeSensorFeatures()), nil)

	w := performRequest(s, "GET", "/risk", "alice", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var fused risk.FusedPrediction
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &fused))
	assert.NotNil(t, fused.Sensor.Prediction)
	assert.NotEmpty(t, fused.Survey.Error)
	assert.Equal(t, fused.Sensor.Prediction.Probability, fused.Probability)
}

func TestPredictFusedMissingBaseModelIsServerFault(t *testing.T) {
	mongoStore := newMemoryStore()
	s := newTestServer(mongoStore, nil)

	// recent data exists but no model was ever trained
	mongoStore.AppendSensorDay("alice", schema.SensorDayFromFeatures(completeSensorFeatures()), nil)

	w := performRequest(s, "GET", "/risk", "alice", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "no trained model available")
}

func TestPredictFusedNoRecentData(t *testing.T) {
	s := newTestServer(newMemoryStore(), nil)

	w := performRequest(s, "GET", "/risk", "alice", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func onesVector(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = 1
	}
	return v
}
