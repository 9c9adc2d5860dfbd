package settlement_models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/joy095/settlement/models/order_models"
	"github.com/shopspring/decimal"
)

type RecordStatus string

const (
	RecordStatusPending   RecordStatus = "pending"
	RecordStatusCompleted RecordStatus = "completed"
	RecordStatusCancelled RecordStatus = "cancelled"
)

// SettlementRecord summarises one settlement execution. Completed records are never
// re-aggregated; a correction is a new record.
type SettlementRecord struct {
	ID          uuid.UUID       `json:"id"`
	ResellerID  uuid.UUID       `json:"reseller_id"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     time.Time       `json:"end_date"`
	TotalAmount decimal.Decimal `json:"total_settlement_amount"`
	OrderCount  int             `json:"order_count"`
	Status      RecordStatus    `json:"status"`
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NewCompletedRecord aggregates settled orders into a completed record.
func NewCompletedRecord(resellerID uuid.UUID, start, end time.Time, orders []order_models.Order, notes string) (*SettlementRecord, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for settlement record: %w", err)
	}
	total, count := Aggregate(orders)
	return &SettlementRecord{
		ID:          id,
		ResellerID:  resellerID,
		StartDate:   start,
		EndDate:     end,
		TotalAmount: total,
		OrderCount:  count,
		Status:      RecordStatusCompleted,
		Notes:       notes,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// Aggregate sums settlement amounts (missing amounts count as zero) rounded to cents.
func Aggregate(orders []order_models.Order) (decimal.Decimal, int) {
	total := decimal.Zero
	for _, o := range orders {
		if o.SettlementAmount.Valid {
			total = total.Add(o.SettlementAmount.Decimal)
		}
	}
	return total.Round(2), len(orders)
}

// Reconcile checks that the record's aggregates still match its constituent orders.
func (r *SettlementRecord) Reconcile(orders []order_models.Order) error {
	total, count := Aggregate(orders)
	if count != r.OrderCount {
		return fmt.Errorf("settlement %s: order count %d does not match %d settled orders", r.ID, r.OrderCount, count)
	}
	if !total.Equal(r.TotalAmount) {
		return fmt.Errorf("settlement %s: total %s does not match orders sum %s", r.ID, r.TotalAmount, total)
	}
	for _, o := range orders {
		if o.SettlementStatus != order_models.SettlementStatusSettled || o.SettlementID == nil || *o.SettlementID != r.ID {
			return fmt.Errorf("settlement %s: order %s is not settled under this record", r.ID, o.Key())
		}
	}
	return nil
}

// RecordWithOrders is the detail view of one record.
type RecordWithOrders struct {
	Record SettlementRecord     `json:"record"`
	Orders []order_models.Order `json:"orders"`
}
