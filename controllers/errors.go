package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joy095/settlement/logger"
	"github.com/joy095/settlement/models/order_models"
	"github.com/joy095/settlement/services"
)

// RespondError maps service errors onto HTTP statuses. action names the operation in logs.
func RespondError(c *gin.Context, action string, err error) {
	var validation *services.ValidationError
	var overlap *services.OverlapError

	switch {
	case errors.As(err, &overlap):
		c.JSON(http.StatusConflict, gin.H{
			"code":              "DISCOUNT_RANGE_OVERLAP",
			"error":             err.Error(),
			"conflicting_rule":  overlap.Existing.ID,
			"conflicting_range": overlap.Existing.RangeString(),
		})
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"code": "VALIDATION_ERROR", "error": err.Error(), "field": validation.Field})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"code": "NOT_FOUND", "error": err.Error()})
	case errors.Is(err, services.ErrAlreadyReviewed):
		c.JSON(http.StatusConflict, gin.H{"code": "ALREADY_REVIEWED", "error": err.Error()})
	case errors.Is(err, order_models.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"code": "INVALID_TRANSITION", "error": err.Error()})
	case services.IsRetryable(err):
		c.JSON(http.StatusConflict, gin.H{"code": retryCode(err), "error": err.Error(), "retryable": true})
	default:
		logger.ErrorLogger.Errorf("%s failed: %v", action, err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": "SERVER_ERROR", "error": "Internal server error"})
		return
	}
	logger.WarnLogger.Warnf("%s rejected: %v", action, err)
}

func retryCode(err error) string {
	switch {
	case errors.Is(err, services.ErrNothingToSettle):
		return "NOTHING_TO_SETTLE"
	case errors.Is(err, services.ErrSettlementInProgress):
		return "SETTLEMENT_IN_PROGRESS"
	}
	return "CONCURRENCY_CONFLICT"
}

// BadRequest answers a malformed request before any service is called.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"code": "VALIDATION_ERROR", "error": message})
}
