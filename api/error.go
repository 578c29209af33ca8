package api

import (
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

var (
	errorInternalServer    = errorResponse{1000, "internal server error"}
	errorInvalidParameters = errorResponse{1001, "invalid parameters"}
	errorUnknownStream     = errorResponse{1002, "unknown data stream"}
	errorValidationFailed  = errorResponse{1100, "feature validation failed"}
	errorInsufficientData  = errorResponse{1101, "not enough labeled data to train"}
	errorSingleClassData   = errorResponse{1102, "training data needs both outcomes"}
	errorNoModelAvailable  = errorResponse{1103, "no trained model available"}
	errorNoRecentData      = errorResponse{1104, "no recent data to predict from"}
)

func abortWithEncoding(c *gin.Context, code int, resp errorResponse, errors ...error) {
	for _, err := range errors {
		log.WithField("prefix", "api").WithError(err).Error(resp.Message)
		c.Error(err)
	}
	c.AbortWithStatusJSON(code, gin.H{"error": resp})
}
