package mail

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/joy095/settlement/models/commission_models"
	"github.com/joy095/settlement/models/reseller_models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commission(status commission_models.CommissionStatus, reason string) *commission_models.Commission {
	c := &commission_models.Commission{
		ID:           uuid.New(),
		SettlementID: uuid.New(),
		Amount:       decimal.RequireFromString("1.26"),
		Status:       status,
	}
	if reason != "" {
		c.RejectReason = &reason
	}
	return c
}

func TestRenderCommissionReview(t *testing.T) {
	referrer := &reseller_models.Reseller{ID: uuid.New(), Name: "Alice <A>", Email: "a@example.com"}

	subject, body, err := RenderCommissionReview(referrer, commission(commission_models.CommissionStatusApproved, ""))
	require.NoError(t, err)
	assert.Equal(t, "Your referral commission was approved", subject)
	assert.Contains(t, body, "1.26")
	assert.Contains(t, body, "credited")
	assert.Contains(t, body, "Alice &lt;A&gt;", "names are escaped")

	_, body, err = RenderCommissionReview(referrer, commission(commission_models.CommissionStatusRejected, "duplicate account"))
	require.NoError(t, err)
	assert.Contains(t, body, "duplicate account")
	assert.NotContains(t, body, "credited")
}

func TestDisabledMailerOnlyLogs(t *testing.T) {
	m := NewMailer("", 0, "", "", "no-reply@example.com")
	referrer := &reseller_models.Reseller{ID: uuid.New(), Name: "Alice", Email: "a@example.com"}
	assert.NoError(t, m.CommissionReviewed(context.Background(), referrer, commission(commission_models.CommissionStatusApproved, "")))

	referrer.Email = ""
	assert.Error(t, m.CommissionReviewed(context.Background(), referrer, commission(commission_models.CommissionStatusApproved, "")))
}
