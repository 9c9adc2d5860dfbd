package commission_models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPendingCommissionRounds(t *testing.T) {
	c, err := NewPendingCommission(uuid.New(), uuid.New(), uuid.New(), decimal.RequireFromString("63"), decimal.RequireFromString("0.02"))
	require.NoError(t, err)
	assert.Equal(t, CommissionStatusPending, c.Status)
	assert.True(t, c.Amount.Equal(decimal.RequireFromString("1.26")))

	c, err = NewPendingCommission(uuid.New(), uuid.New(), uuid.New(), decimal.RequireFromString("10.37"), decimal.RequireFromString("0.02"))
	require.NoError(t, err)
	assert.True(t, c.Amount.Equal(decimal.RequireFromString("0.21")), "0.2074 rounds to 0.21, got %s", c.Amount)
}

func TestApplyDecision(t *testing.T) {
	now := time.Now().UTC()
	c, err := NewPendingCommission(uuid.New(), uuid.New(), uuid.New(), decimal.NewFromInt(100), decimal.RequireFromString("0.02"))
	require.NoError(t, err)

	require.NoError(t, c.Apply(Decision{Status: CommissionStatusRejected, Reason: "fraud", ReviewerID: "admin", At: now}))
	assert.Equal(t, CommissionStatusRejected, c.Status)
	require.NotNil(t, c.RejectReason)
	assert.Equal(t, "fraud", *c.RejectReason)
	require.NotNil(t, c.ReviewedAt)
	assert.True(t, c.ReviewedAt.Equal(now))

	assert.Error(t, c.Apply(Decision{Status: CommissionStatusApproved, At: now}), "reviews are final")
}

func TestCommissionStatus(t *testing.T) {
	s, err := ParseCommissionStatus("APPROVED")
	require.NoError(t, err)
	assert.Equal(t, CommissionStatusApproved, s)
	_, err = ParseCommissionStatus("paid")
	assert.Error(t, err)

	assert.True(t, CommissionStatusPending.CanTransitionTo(CommissionStatusApproved))
	assert.True(t, CommissionStatusPending.CanTransitionTo(CommissionStatusRejected))
	assert.False(t, CommissionStatusPending.CanTransitionTo(CommissionStatusPending))
	assert.False(t, CommissionStatusApproved.CanTransitionTo(CommissionStatusRejected))
	assert.False(t, CommissionStatusRejected.CanTransitionTo(CommissionStatusApproved))
}
