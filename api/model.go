package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aavahealth/migraine-api/ml"
)

// trainUserModel synchronously refits the requester's personalized model
// from their full labeled history, replacing any prior model.
func (s *Server) trainUserModel(c *gin.Context) {
	stream, ok := parseStream(c)
	if !ok {
		return
	}

	artifact, err := s.trainer.TrainUserModel(c.GetString("requester"), stream)
	if err != nil {
		abortWithTrainingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"owner":    artifact.Owner,
		"stream":   artifact.Stream,
		"metadata": artifact.Metadata,
	})
}

// trainBaseModel refits the shared population model over the whole
// corpus and reports its held-out evaluation.
func (s *Server) trainBaseModel(c *gin.Context) {
	stream, ok := parseStream(c)
	if !ok {
		return
	}

	artifact, evaluation, err := s.trainer.TrainBaseModel(stream)
	if err != nil {
		abortWithTrainingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"owner":      artifact.Owner,
		"stream":     artifact.Stream,
		"metadata":   artifact.Metadata,
		"evaluation": evaluation,
	})
}

func abortWithTrainingError(c *gin.Context, err error) {
	var insufficient *ml.InsufficientDataError

	switch {
	case errors.As(err, &insufficient):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":    errorInsufficientData,
			"count":    insufficient.Count,
			"required": insufficient.Required,
		})
	case errors.Is(err, ml.ErrSingleClass):
		abortWithEncoding(c, http.StatusBadRequest, errorSingleClassData, err)
	default:
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
	}
}
