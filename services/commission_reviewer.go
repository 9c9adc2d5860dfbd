package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joy095/settlement/logger"
	"github.com/joy095/settlement/models/commission_models"
	"github.com/joy095/settlement/models/reseller_models"
	"github.com/joy095/settlement/models/wallet_models"
	"github.com/joy095/settlement/repositories"
)

// Notifier tells a referrer about the outcome of a review.
type Notifier interface {
	CommissionReviewed(ctx context.Context, referrer *reseller_models.Reseller, c *commission_models.Commission) error
}

type NoopNotifier struct{}

func (NoopNotifier) CommissionReviewed(context.Context, *reseller_models.Reseller, *commission_models.Commission) error {
	return nil
}

type ReviewRequest struct {
	CommissionID uuid.UUID
	Decision     commission_models.CommissionStatus
	Reason       string
	ReviewerID   string
}

// CommissionReviewer applies an admin decision to a pending commission. Approval credits the
// referrer's wallet in the same transaction.
type CommissionReviewer struct {
	repo     repositories.Repository
	notifier Notifier
	now      func() time.Time
}

func NewCommissionReviewer(repo repositories.Repository, notifier Notifier) *CommissionReviewer {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &CommissionReviewer{repo: repo, notifier: notifier, now: func() time.Time { return time.Now().UTC() }}
}

func (r *CommissionReviewer) Review(ctx context.Context, req ReviewRequest) (*commission_models.Commission, error) {
	req.Reason = strings.TrimSpace(req.Reason)
	if req.Decision != commission_models.CommissionStatusApproved && req.Decision != commission_models.CommissionStatusRejected {
		return nil, newValidationError("status", "must be approved or rejected, got %q", req.Decision)
	}

	var reviewed *commission_models.Commission
	err := r.repo.InTx(ctx, func(tx repositories.Repository) error {
		c, err := tx.GetCommission(ctx, req.CommissionID)
		if err != nil {
			return err
		}
		if c.Status != commission_models.CommissionStatusPending {
			return fmt.Errorf("%w: %s is %s", ErrAlreadyReviewed, c.ID, c.Status)
		}
		// Reviewed rows report ErrAlreadyReviewed whatever the payload.
		if req.Decision == commission_models.CommissionStatusRejected && req.Reason == "" {
			return newValidationError("reject_reason", "is required when rejecting a commission")
		}

		if err := c.Apply(commission_models.Decision{
			Status:     req.Decision,
			Reason:     req.Reason,
			ReviewerID: req.ReviewerID,
			At:         r.now(),
		}); err != nil {
			return fmt.Errorf("%w: %v", ErrAlreadyReviewed, err)
		}

		err = tx.UpdateCommissionReview(ctx, c)
		if errors.Is(err, repositories.ErrPreconditionFailed) {
			return fmt.Errorf("%w: %s changed during review", ErrAlreadyReviewed, c.ID)
		}
		if err != nil {
			return err
		}

		if c.Status == commission_models.CommissionStatusApproved {
			credit, err := wallet_models.NewCommissionCredit(c.ReferrerID, c.ID, c.Amount)
			if err != nil {
				return err
			}
			balance, err := tx.CreditWallet(ctx, credit)
			if err != nil {
				return fmt.Errorf("failed to credit wallet of %s: %w", c.ReferrerID, err)
			}
			logger.InfoLogger.Infof("Wallet of %s credited %s for commission %s, balance %s", c.ReferrerID, c.Amount, c.ID, balance)
		}

		reviewed = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.InfoLogger.Infof("Commission %s %s by %s", reviewed.ID, reviewed.Status, req.ReviewerID)
	r.notify(ctx, reviewed)
	return reviewed, nil
}

func (r *CommissionReviewer) notify(ctx context.Context, c *commission_models.Commission) {
	referrer, err := r.repo.GetReseller(ctx, c.ReferrerID)
	if err != nil {
		logger.WarnLogger.Warnf("Cannot notify referrer %s of commission %s: %v", c.ReferrerID, c.ID, err)
		return
	}
	if err := r.notifier.CommissionReviewed(ctx, referrer, c); err != nil {
		logger.ErrorLogger.Errorf("Failed to notify referrer %s of commission %s: %v", c.ReferrerID, c.ID, err)
	}
}
