package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aavahealth/migraine-api/risk"
	"github.com/aavahealth/migraine-api/schema"
)

// predictStream runs one stream's prediction over caller-supplied days:
// either a single "today" vector or 1-7 vectors oldest first.
func (s *Server) predictStream(c *gin.Context) {
	stream, ok := parseStream(c)
	if !ok {
		return
	}

	var params struct {
		Today schema.FeatureVector   `json:"today"`
		Days  []schema.FeatureVector `json:"days"`
	}
	if err := c.BindJSON(&params); err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters, err)
		return
	}

	days := params.Days
	if len(days) == 0 && params.Today != nil {
		days = []schema.FeatureVector{params.Today}
	}

	requester := c.GetString("requester")

	var prediction *risk.Prediction
	var err error
	switch stream {
	case schema.StreamSensor:
		sensorDays := make([]schema.SensorDay, len(days))
		for i, v := range days {
			sensorDays[i] = schema.SensorDayFromFeatures(v)
		}
		prediction, err = s.engine.PredictSensor(requester, sensorDays)
	case schema.StreamSurvey:
		surveyDays := make([]schema.SurveyDay, len(days))
		for i, v := range days {
			surveyDays[i] = schema.SurveyDayFromFeatures(v)
		}
		prediction, err = s.engine.PredictSurvey(requester, surveyDays)
	}
	if err != nil {
		abortWithPredictionError(c, err)
		return
	}

	c.JSON(http.StatusOK, prediction)
}

// predictFused blends both streams from the requester's stored recent
// days into the headline result.
func (s *Server) predictFused(c *gin.Context) {
	fused, err := s.engine.PredictFused(c.GetString("requester"))
	if err != nil {
		var noModel *risk.NoModelError
		if errors.As(err, &noModel) {
			abortWithEncoding(c, http.StatusInternalServerError, errorNoModelAvailable, err)
			return
		}
		abortWithEncoding(c, http.StatusNotFound, errorNoRecentData, err)
		return
	}

	c.JSON(http.StatusOK, fused)
}

func abortWithPredictionError(c *gin.Context, err error) {
	var validation *risk.ValidationError
	var noModel *risk.NoModelError

	switch {
	case errors.Is(err, risk.ErrWindowSize):
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters, err)
	case errors.As(err, &validation):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":    errorValidationFailed,
			"problems": validation.Problems,
		})
	case errors.As(err, &noModel):
		// a missing base model is a deployment fault, not a caller error
		abortWithEncoding(c, http.StatusInternalServerError, errorNoModelAvailable, err)
	default:
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
	}
}
