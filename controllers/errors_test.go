package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joy095/settlement/models/discount_models"
	"github.com/joy095/settlement/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func respond(t *testing.T, err error) (int, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	RespondError(c, "test", err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestRespondErrorMapping(t *testing.T) {
	rule := discount_models.DiscountRule{ID: uuid.New(), MinQuantity: 10, MaxQuantity: 19, DiscountRate: decimal.RequireFromString("0.9")}

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"overlap", &services.OverlapError{Existing: rule}, http.StatusConflict, "DISCOUNT_RANGE_OVERLAP"},
		{"validation", &services.ValidationError{Field: "start_date", Message: "bad"}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"not found", fmt.Errorf("commission x: %w", services.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"reviewed", services.ErrAlreadyReviewed, http.StatusConflict, "ALREADY_REVIEWED"},
		{"nothing", services.ErrNothingToSettle, http.StatusConflict, "NOTHING_TO_SETTLE"},
		{"in progress", services.ErrSettlementInProgress, http.StatusConflict, "SETTLEMENT_IN_PROGRESS"},
		{"conflict", fmt.Errorf("order a: %w", services.ErrConcurrencyConflict), http.StatusConflict, "CONCURRENCY_CONFLICT"},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError, "SERVER_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := respond(t, tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, body["code"])
		})
	}
}

func TestRespondErrorDetails(t *testing.T) {
	rule := discount_models.DiscountRule{ID: uuid.New(), MinQuantity: 10, MaxQuantity: 19, DiscountRate: decimal.RequireFromString("0.9")}
	_, body := respond(t, &services.OverlapError{Existing: rule})
	assert.Equal(t, rule.ID.String(), body["conflicting_rule"])
	assert.Equal(t, rule.RangeString(), body["conflicting_range"])

	_, body = respond(t, services.ErrNothingToSettle)
	assert.Equal(t, true, body["retryable"])

	_, body = respond(t, errors.New("db password is hunter2"))
	assert.Equal(t, "Internal server error", body["error"], "internal details stay out of responses")
}
