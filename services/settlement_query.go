package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joy095/settlement/logger"
	"github.com/joy095/settlement/models/commission_models"
	"github.com/joy095/settlement/models/order_models"
	"github.com/joy095/settlement/models/settlement_models"
	"github.com/joy095/settlement/repositories"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// SettlementQuery serves the admin read views and order cancellation.
type SettlementQuery struct {
	repo    repositories.Repository
	locker  Locker
	lockTTL time.Duration
}

func NewSettlementQuery(repo repositories.Repository, locker Locker, lockTTL time.Duration) *SettlementQuery {
	return &SettlementQuery{repo: repo, locker: locker, lockTTL: lockTTL}
}

// Orders returns the reseller's orders in the window grouped by settlement status.
func (q *SettlementQuery) Orders(ctx context.Context, resellerID uuid.UUID, start, end time.Time) (*order_models.CategorizedOrders, error) {
	if resellerID == uuid.Nil {
		return nil, newValidationError("resellerId", "is required")
	}
	if start.After(end) {
		return nil, newValidationError("startDate", "must not be after endDate")
	}
	orders, err := q.repo.ListOrders(ctx, order_models.Filter{ResellerID: &resellerID, Start: start, End: end})
	if err != nil {
		return nil, err
	}
	out := order_models.Categorize(orders)
	return &out, nil
}

func (q *SettlementQuery) Records(ctx context.Context, resellerID *uuid.UUID, limit, offset int) ([]settlement_models.SettlementRecord, error) {
	limit, offset = clampPage(limit, offset)
	records, err := q.repo.ListSettlementRecords(ctx, resellerID, limit, offset)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []settlement_models.SettlementRecord{}
	}
	return records, nil
}

// Record loads one record with its orders. A record that no longer reconciles is still
// returned; the mismatch is logged.
func (q *SettlementQuery) Record(ctx context.Context, id uuid.UUID) (*settlement_models.RecordWithOrders, error) {
	record, err := q.repo.GetSettlementRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	orders, err := q.repo.ListOrdersBySettlement(ctx, id)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []order_models.Order{}
	}
	if err := record.Reconcile(orders); err != nil {
		logger.ErrorLogger.Errorf("Reconciliation failed: %v", err)
	}
	return &settlement_models.RecordWithOrders{Record: *record, Orders: orders}, nil
}

// CancelOrder moves a waiting or calculated order to cancel. It takes the reseller lock so it
// cannot interleave with a running calculation or execution.
func (q *SettlementQuery) CancelOrder(ctx context.Context, key order_models.OrderKey, reason string) (*order_models.Order, error) {
	if strings.TrimSpace(key.OrderNumber) == "" {
		return nil, newValidationError("orderNumber", "is required")
	}
	release, err := q.locker.Acquire(ctx, resellerLockKey(key.ResellerID), q.lockTTL)
	if err != nil {
		return nil, err
	}
	defer release()

	remark := strings.TrimSpace(reason)
	if remark == "" {
		remark = "cancelled by admin"
	}
	if err := q.repo.MarkCancelled(ctx, key, remark); err != nil {
		return nil, err
	}
	logger.InfoLogger.Infof("Order %s cancelled: %s", key, remark)
	return q.repo.GetOrder(ctx, key)
}

func (q *SettlementQuery) Commissions(ctx context.Context, filter commission_models.ListFilter) ([]commission_models.Commission, error) {
	filter.Limit, filter.Offset = clampPage(filter.Limit, filter.Offset)
	filter.Search = strings.TrimSpace(filter.Search)
	out, err := q.repo.ListCommissions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list commissions: %w", err)
	}
	if out == nil {
		out = []commission_models.Commission{}
	}
	return out, nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
