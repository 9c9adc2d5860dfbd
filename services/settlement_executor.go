package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/joy095/settlement/logger"
	"github.com/joy095/settlement/models/commission_models"
	"github.com/joy095/settlement/models/settlement_models"
	"github.com/joy095/settlement/repositories"
)

type ExecuteRequest struct {
	StartDate  time.Time
	EndDate    time.Time
	ResellerID uuid.UUID
	Notes      string
}

// ExecutionResult is the record written by Execute and the commission derived from it, if any.
type ExecutionResult struct {
	Record     *settlement_models.SettlementRecord `json:"record"`
	Commission *commission_models.Commission       `json:"commission,omitempty"`
}

// SettlementExecutor turns a reseller's calculated orders into one settlement record.
type SettlementExecutor struct {
	repo    repositories.Repository
	deriver *CommissionDeriver
	locker  Locker
	lockTTL time.Duration
}

func NewSettlementExecutor(repo repositories.Repository, deriver *CommissionDeriver, locker Locker, lockTTL time.Duration) *SettlementExecutor {
	return &SettlementExecutor{repo: repo, deriver: deriver, locker: locker, lockTTL: lockTTL}
}

// Execute settles every calculated order of the reseller in the window. The status flips, the
// record and the commission commit together or not at all.
func (e *SettlementExecutor) Execute(ctx context.Context, req ExecuteRequest) (*ExecutionResult, error) {
	if req.ResellerID == uuid.Nil {
		return nil, newValidationError("resellerId", "is required")
	}
	if req.StartDate.After(req.EndDate) {
		return nil, newValidationError("startDate", "must not be after endDate")
	}

	release, err := e.locker.Acquire(ctx, resellerLockKey(req.ResellerID), e.lockTTL)
	if err != nil {
		return nil, err
	}
	defer release()

	result := &ExecutionResult{}
	err = e.repo.InTx(ctx, func(tx repositories.Repository) error {
		orders, err := tx.LockCalculatedOrders(ctx, req.ResellerID, req.StartDate, req.EndDate)
		if err != nil {
			return fmt.Errorf("failed to lock calculated orders: %w", err)
		}
		if len(orders) == 0 {
			return fmt.Errorf("%w: reseller %s has no calculated orders between %s and %s",
				ErrNothingToSettle, req.ResellerID, req.StartDate.Format(time.RFC3339), req.EndDate.Format(time.RFC3339))
		}

		record, err := settlement_models.NewCompletedRecord(req.ResellerID, req.StartDate, req.EndDate, orders, req.Notes)
		if err != nil {
			return err
		}
		// Orders reference the record, so it goes in first.
		if err := tx.InsertSettlementRecord(ctx, record); err != nil {
			return fmt.Errorf("failed to insert settlement record: %w", err)
		}

		for i := range orders {
			key := orders[i].Key()
			err := tx.MarkSettled(ctx, key, record.ID)
			if errors.Is(err, repositories.ErrPreconditionFailed) || errors.Is(err, repositories.ErrNotFound) {
				return fmt.Errorf("%w: order %s", ErrConcurrencyConflict, key)
			}
			if err != nil {
				return fmt.Errorf("failed to settle order %s: %w", key, err)
			}
		}

		commission, err := e.deriver.Derive(ctx, tx, record)
		if err != nil {
			return fmt.Errorf("failed to derive commission for settlement %s: %w", record.ID, err)
		}

		result.Record = record
		result.Commission = commission
		return nil
	})
	if err != nil {
		if IsRetryable(err) {
			logger.WarnLogger.Warnf("Settlement of reseller %s not executed: %v", req.ResellerID, err)
		} else {
			logger.ErrorLogger.Errorf("Settlement of reseller %s failed: %v", req.ResellerID, err)
		}
		return nil, err
	}

	logger.InfoLogger.Infof("Settlement %s completed for reseller %s: %d orders, total %s",
		result.Record.ID, req.ResellerID, result.Record.OrderCount, result.Record.TotalAmount)
	return result, nil
}
