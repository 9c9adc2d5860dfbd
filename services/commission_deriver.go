package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/joy095/settlement/logger"
	"github.com/joy095/settlement/models/commission_models"
	"github.com/joy095/settlement/models/settlement_models"
	"github.com/joy095/settlement/repositories"
	"github.com/shopspring/decimal"
)

var ErrRecordNotCompleted = errors.New("settlement record is not completed")

// CommissionDeriver creates the single first-level commission owed to a reseller's referrer.
type CommissionDeriver struct {
	rate decimal.Decimal
}

func NewCommissionDeriver(rate decimal.Decimal) *CommissionDeriver {
	return &CommissionDeriver{rate: rate}
}

func (d *CommissionDeriver) Rate() decimal.Decimal { return d.rate }

// Derive runs against repo, normally the executor's transaction. It returns nil, nil when
// nothing is owed. Calling it twice for one record returns the commission already stored.
func (d *CommissionDeriver) Derive(ctx context.Context, repo repositories.Repository, record *settlement_models.SettlementRecord) (*commission_models.Commission, error) {
	if record.Status != settlement_models.RecordStatusCompleted {
		return nil, fmt.Errorf("%w: %s is %s", ErrRecordNotCompleted, record.ID, record.Status)
	}

	reseller, err := repo.GetReseller(ctx, record.ResellerID)
	if errors.Is(err, repositories.ErrNotFound) {
		logger.WarnLogger.Warnf("No reseller row for %s, skipping commission of settlement %s", record.ResellerID, record.ID)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if reseller.ReferrerID == nil || *reseller.ReferrerID == reseller.ID {
		return nil, nil
	}

	commission, err := commission_models.NewPendingCommission(record.ID, *reseller.ReferrerID, reseller.ID, record.TotalAmount, d.rate)
	if err != nil {
		return nil, err
	}
	if !commission.Amount.IsPositive() {
		logger.DebugLogger.Debugf("Commission for settlement %s rounds to %s, not created", record.ID, commission.Amount)
		return nil, nil
	}

	if err := repo.InsertCommission(ctx, commission); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return repo.GetCommissionBySettlement(ctx, record.ID)
		}
		return nil, fmt.Errorf("failed to insert commission: %w", err)
	}

	logger.InfoLogger.Infof("Commission %s of %s derived for referrer %s from settlement %s",
		commission.ID, commission.Amount, commission.ReferrerID, record.ID)
	return commission, nil
}
