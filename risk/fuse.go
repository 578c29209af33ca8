package risk

import (
	"errors"
	"fmt"
)

// StreamOutcome records one stream's attempt inside a fused prediction:
// either the prediction or the reason it was unavailable.
type StreamOutcome struct {
	Prediction *Prediction `json:"prediction,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// FusedPrediction blends both streams into one headline answer. A stream
// that fails is recorded and skipped; the probability is the mean of the
// streams that answered.
type FusedPrediction struct {
	Probability    float64       `json:"probability"`
	RiskLevel      string        `json:"risk_level"`
	Reason1        string        `json:"reason1,omitempty"`
	Reason2        string        `json:"reason2,omitempty"`
	Recommendation string        `json:"recommendation"`
	Sensor         StreamOutcome `json:"sensor"`
	Survey         StreamOutcome `json:"survey"`
}

// PredictFused assesses a user from both stored streams' recent days.
// It fails only when neither stream can produce a prediction, returning
// both failure reasons together. A missing base model is surfaced as is,
// not folded into the combined message, so callers can tell a deployment
// fault from a quiet week.
func (e *Engine) PredictFused(userID string) (*FusedPrediction, error) {
	fused := &FusedPrediction{}

	sensorErr := e.sensorOutcome(userID, &fused.Sensor)
	surveyErr := e.surveyOutcome(userID, &fused.Survey)

	var sum float64
	var succeeded int
	for _, outcome := range []StreamOutcome{fused.Sensor, fused.Survey} {
		if outcome.Prediction != nil {
			sum += outcome.Prediction.Probability
			succeeded++
		}
	}
	if succeeded == 0 {
		for _, err := range []error{sensorErr, surveyErr} {
			var noModel *NoModelError
			if errors.As(err, &noModel) && noModel.BaseMissing() {
				return nil, noModel
			}
		}
		return nil, fmt.Errorf("sensor: %s; survey: %s", fused.Sensor.Error, fused.Survey.Error)
	}

	fused.Probability = sum / float64(succeeded)
	fused.RiskLevel = LevelFor(fused.Probability)
	fused.Recommendation = Recommendation(fused.RiskLevel, e.lang)
	fused.Reason1, fused.Reason2 = headlineReasons(fused.Sensor.Prediction, fused.Survey.Prediction)

	return fused, nil
}

func (e *Engine) sensorOutcome(userID string, outcome *StreamOutcome) error {
	days, err := e.source.ListRecentSensorDays(userID, MaxWindowDays)
	if err == nil && len(days) == 0 {
		err = errors.New("no sensor data in the last 7 days")
	}
	if err != nil {
		outcome.Error = err.Error()
		return err
	}

	// An over-full window (double submissions, observations mixed with
	// reports) keeps the newest entries rather than failing the stream.
	if len(days) > MaxWindowDays {
		days = days[len(days)-MaxWindowDays:]
	}

	prediction, err := e.PredictSensor(userID, days)
	if err != nil {
		outcome.Error = err.Error()
		return err
	}
	outcome.Prediction = prediction
	return nil
}

func (e *Engine) surveyOutcome(userID string, outcome *StreamOutcome) error {
	days, err := e.source.ListRecentSurveyDays(userID, MaxWindowDays)
	if err == nil && len(days) == 0 {
		err = errors.New("no survey data in the last 7 days")
	}
	if err != nil {
		outcome.Error = err.Error()
		return err
	}

	if len(days) > MaxWindowDays {
		days = days[len(days)-MaxWindowDays:]
	}

	prediction, err := e.PredictSurvey(userID, days)
	if err != nil {
		outcome.Error = err.Error()
		return err
	}
	outcome.Prediction = prediction
	return nil
}

// headlineReasons picks reason1 from the sensor stream's top factor and
// reason2 from the survey stream's. When the sensor stream is absent the
// survey's top factor takes the first slot and its runner-up the second.
func headlineReasons(sensor, survey *Prediction) (string, string) {
	var reasons []string
	if sensor != nil && len(sensor.TopFactors) > 0 {
		reasons = append(reasons, sensor.TopFactors[0].Label)
	}
	if survey != nil {
		for _, factor := range survey.TopFactors[:minInt(HeadlineFactorCount, len(survey.TopFactors))] {
			reasons = append(reasons, factor.Label)
		}
	}

	switch len(reasons) {
	case 0:
		return "", ""
	case 1:
		return reasons[0], ""
	default:
		return reasons[0], reasons[1]
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
