package commission_models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CommissionStatus string

const (
	CommissionStatusPending  CommissionStatus = "pending"
	CommissionStatusApproved CommissionStatus = "approved"
	CommissionStatusRejected CommissionStatus = "rejected"
)

func ParseCommissionStatus(s string) (CommissionStatus, error) {
	status := CommissionStatus(strings.ToLower(strings.TrimSpace(s)))
	switch status {
	case CommissionStatusPending, CommissionStatusApproved, CommissionStatusRejected:
		return status, nil
	}
	return "", fmt.Errorf("unknown commission status %q", s)
}

// CanTransitionTo allows only pending -> approved and pending -> rejected.
func (s CommissionStatus) CanTransitionTo(next CommissionStatus) bool {
	return s == CommissionStatusPending && (next == CommissionStatusApproved || next == CommissionStatusRejected)
}

// Commission is the first-level referral reward derived from one settlement record.
type Commission struct {
	ID               uuid.UUID        `json:"id"`
	SettlementID     uuid.UUID        `json:"settlement_id"`
	ReferrerID       uuid.UUID        `json:"referrer_id"`
	RefereeID        uuid.UUID        `json:"referee_id"`
	SettlementAmount decimal.Decimal  `json:"settlement_amount"`
	Amount           decimal.Decimal  `json:"commission_amount"`
	Rate             decimal.Decimal  `json:"commission_rate"`
	Status           CommissionStatus `json:"status"`
	RejectReason     *string          `json:"reject_reason,omitempty"`
	ReviewedBy       *string          `json:"reviewed_by,omitempty"`
	ReviewedAt       *time.Time       `json:"reviewed_at,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// NewPendingCommission computes base*rate rounded to cents.
func NewPendingCommission(settlementID, referrerID, refereeID uuid.UUID, base, rate decimal.Decimal) (*Commission, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for commission: %w", err)
	}
	now := time.Now().UTC()
	return &Commission{
		ID:               id,
		SettlementID:     settlementID,
		ReferrerID:       referrerID,
		RefereeID:        refereeID,
		SettlementAmount: base,
		Amount:           base.Mul(rate).Round(2),
		Rate:             rate,
		Status:           CommissionStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// Decision is the reviewer's verdict.
type Decision struct {
	Status     CommissionStatus
	Reason     string
	ReviewerID string
	At         time.Time
}

// Apply moves a pending commission to the decided status.
func (c *Commission) Apply(d Decision) error {
	if !c.Status.CanTransitionTo(d.Status) {
		return fmt.Errorf("commission %s cannot move from %s to %s", c.ID, c.Status, d.Status)
	}
	c.Status = d.Status
	if d.Status == CommissionStatusRejected {
		reason := d.Reason
		c.RejectReason = &reason
	}
	if d.ReviewerID != "" {
		reviewer := d.ReviewerID
		c.ReviewedBy = &reviewer
	}
	at := d.At
	c.ReviewedAt = &at
	c.UpdatedAt = at
	return nil
}

// ReviewRequest is the PUT /commissions/:id/review payload.
type ReviewRequest struct {
	Status       string `json:"status" binding:"required,oneof=approved rejected"`
	RejectReason string `json:"reject_reason,omitempty"`
}

// ListFilter narrows the admin commission list. Search matches ids and reseller names.
type ListFilter struct {
	Status *CommissionStatus
	Search string
	Limit  int
	Offset int
}
