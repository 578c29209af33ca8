package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/aavahealth/migraine-api/ml"
	"github.com/aavahealth/migraine-api/schema"
	"github.com/aavahealth/migraine-api/weather"
)

// submitReport appends one day of data to the requester's log. A report
// with a had_migraine outcome becomes training data; one without is an
// observation only usable as prediction history.
func (s *Server) submitReport(c *gin.Context) {
	stream, ok := parseStream(c)
	if !ok {
		return
	}

	var params struct {
		Features    schema.FeatureVector `json:"features" binding:"required"`
		HadMigraine *bool                `json:"had_migraine"`
		Latitude    *float64             `json:"latitude"`
		Longitude   *float64             `json:"longitude"`
	}
	if err := c.BindJSON(&params); err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters, err)
		return
	}

	if stream == schema.StreamSensor {
		s.enrichAmbientFeatures(params.Features, params.Latitude, params.Longitude)
	}

	if ok, problems := schema.ValidateFeatures(params.Features, stream); !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":    errorValidationFailed,
			"problems": problems,
		})
		return
	}

	requester := c.GetString("requester")

	var total int64
	var err error
	switch stream {
	case schema.StreamSensor:
		_, total, err = s.mongoStore.AppendSensorDay(requester, schema.SensorDayFromFeatures(params.Features), params.HadMigraine)
	case schema.StreamSurvey:
		_, total, err = s.mongoStore.AppendSurveyDay(requester, schema.SurveyDayFromFeatures(params.Features), params.HadMigraine)
	}
	if err != nil {
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_labeled":     total,
		"training_eligible": total >= ml.MinTrainingSamples,
	})
}

// ambientFeatures are the sensor keys a wearable cannot produce; a report
// may omit them and let the weather feed fill them in.
var ambientFeatures = []string{"temperature_c", "air_pressure_hpa", "weather_condition", "air_quality"}

// enrichAmbientFeatures fills absent weather-fed keys from the server's
// weather source, falling back to the package-level default when none was
// injected. Enrichment is best effort: without a source, a coordinate, or
// a reachable feed the report proceeds unchanged and validation decides
// its fate.
func (s *Server) enrichAmbientFeatures(features schema.FeatureVector, latitude, longitude *float64) {
	if latitude == nil || longitude == nil {
		return
	}

	missing := false
	for _, name := range ambientFeatures {
		if _, ok := features[name]; !ok {
			missing = true
			break
		}
	}
	if !missing {
		return
	}

	conditions, err := s.currentConditions(*latitude, *longitude)
	if err != nil {
		log.WithField("prefix", "api").WithError(err).Warn("fail to fetch weather conditions")
		return
	}

	fills := map[string]float64{
		"temperature_c":     conditions.TemperatureC,
		"air_pressure_hpa":  conditions.AirPressureHPA,
		"weather_condition": conditions.ConditionCode,
		"air_quality":       conditions.AirQuality,
	}
	for name, value := range fills {
		if _, ok := features[name]; !ok {
			features[name] = value
		}
	}
}

func (s *Server) currentConditions(latitude, longitude float64) (*weather.Conditions, error) {
	if s.weather != nil {
		return s.weather.CurrentConditions(latitude, longitude)
	}
	return weather.CurrentConditions(latitude, longitude)
}
