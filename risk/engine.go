package risk

import (
	log "github.com/sirupsen/logrus"

	"github.com/aavahealth/migraine-api/ml"
	"github.com/aavahealth/migraine-api/schema"
	"github.com/aavahealth/migraine-api/store"
)

// smoothingFactor keeps probabilities away from the 0% and 100% extremes
// a small personal dataset produces too easily: the raw probability is
// squeezed into (5, 95).
const smoothingFactor = 0.05

// MaxWindowDays bounds the history a prediction may analyze.
const MaxWindowDays = 7

// DataSource is the slice of the data store the engine reads from.
type DataSource interface {
	GetModelArtifact(owner string, stream schema.Stream) (*schema.ModelArtifact, error)
	ListRecentSensorDays(userID string, days int) ([]schema.SensorDay, error)
	ListRecentSurveyDays(userID string, days int) ([]schema.SurveyDay, error)
}

// Prediction is one stream's risk assessment on the 0-100 scale.
type Prediction struct {
	Stream             schema.Stream `json:"stream"`
	Probability        float64       `json:"probability"`
	BaseProbability    float64       `json:"base_probability"`
	TemporalAdjustment float64       `json:"temporal_adjustment"`
	RiskLevel          string        `json:"risk_level"`
	DaysAnalyzed       int           `json:"days_analyzed"`
	Personalized       bool          `json:"personalized"`
	TopFactors         []Factor      `json:"top_factors"`
	Recommendation     string        `json:"recommendation"`
}

// Engine scores users against their personalized model, falling back to
// the shared base model. Construct one at process start and share it; it
// holds no per-request state.
type Engine struct {
	source DataSource
	cache  *ml.ModelCache
	lang   string
}

func NewEngine(source DataSource, cache *ml.ModelCache, lang string) *Engine {
	return &Engine{
		source: source,
		cache:  cache,
		lang:   lang,
	}
}

// resolveModel returns the user's own artifact when one exists, otherwise
// the base artifact. A missing base model is reported loudly: every
// prediction for unmodeled users depends on it.
func (e *Engine) resolveModel(userID string, stream schema.Stream) (schema.ModelArtifact, error) {
	for _, owner := range []string{userID, schema.BaseModelOwner} {
		if artifact, ok := e.cache.Get(owner, stream); ok {
			return artifact, nil
		}

		artifact, err := e.source.GetModelArtifact(owner, stream)
		if err == nil {
			e.cache.Put(*artifact)
			return *artifact, nil
		}
		if err != store.ErrNoModelArtifact {
			return schema.ModelArtifact{}, err
		}
	}

	log.WithFields(log.Fields{
		"prefix": "risk",
		"stream": stream,
	}).Error("no base model trained")
	return schema.ModelArtifact{}, &NoModelError{Owner: schema.BaseModelOwner, Stream: stream}
}

// score orders the features per the artifact's stored list, standardizes
// them and returns the smoothed percentage plus the ranked factors.
func score(artifact schema.ModelArtifact, features schema.FeatureVector) (float64, []Factor) {
	row := make([]float64, len(artifact.FeatureNames))
	for i, name := range artifact.FeatureNames {
		row[i] = features[name]
	}

	scaler := &ml.StandardScaler{Mean: artifact.ScalerMean, Std: artifact.ScalerStd}
	model := &ml.Logistic{Weights: artifact.Weights, Intercept: artifact.Intercept}

	scaled := scaler.Transform(row)
	raw := model.Probability(scaled)
	smoothed := raw*(1-2*smoothingFactor) + smoothingFactor

	return smoothed * 100, RankFactors(artifact, row, scaled, TopFactorCount)
}

// PredictSensor assesses 1-7 oldest-first sensor days, the last being
// today. Today's readings are validated strictly; out-of-range values are
// rejected, never clamped.
func (e *Engine) PredictSensor(userID string, days []schema.SensorDay) (*Prediction, error) {
	if len(days) < 1 || len(days) > MaxWindowDays {
		return nil, ErrWindowSize
	}

	today := days[len(days)-1]
	history := days[:len(days)-1]

	if ok, problems := schema.ValidateFeatures(today.Features(), schema.StreamSensor); !ok {
		return nil, &ValidationError{Stream: schema.StreamSensor, Problems: problems}
	}

	artifact, err := e.resolveModel(userID, schema.StreamSensor)
	if err != nil {
		return nil, err
	}

	base, factors := score(artifact, today.Features())
	adjustment := TemporalAdjustment(history, today)
	probability := clamp(base+adjustment, 0, 100)
	level := LevelFor(probability)

	return &Prediction{
		Stream:             schema.StreamSensor,
		Probability:        probability,
		BaseProbability:    base,
		TemporalAdjustment: adjustment,
		RiskLevel:          level,
		DaysAnalyzed:       len(days),
		Personalized:       !artifact.IsBase(),
		TopFactors:         factors,
		Recommendation:     Recommendation(level, e.lang),
	}, nil
}

// PredictSurvey assesses 1-7 oldest-first survey days. The day weighting
// inside the feature build plays the temporal role here, so no separate
// adjustment is applied.
func (e *Engine) PredictSurvey(userID string, days []schema.SurveyDay) (*Prediction, error) {
	if len(days) < 1 || len(days) > MaxWindowDays {
		return nil, ErrWindowSize
	}

	artifact, err := e.resolveModel(userID, schema.StreamSurvey)
	if err != nil {
		return nil, err
	}

	probability, factors := score(artifact, ml.SurveyInferenceFeatures(days))
	level := LevelFor(probability)

	return &Prediction{
		Stream:          schema.StreamSurvey,
		Probability:     probability,
		BaseProbability: probability,
		RiskLevel:       level,
		DaysAnalyzed:    len(days),
		Personalized:    !artifact.IsBase(),
		TopFactors:      factors,
		Recommendation:  Recommendation(level, e.lang),
	}, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
