package order_models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SettlementStatus is where an order is in the settlement lifecycle.
type SettlementStatus string

const (
	SettlementStatusWaiting    SettlementStatus = "waiting"
	SettlementStatusCalculated SettlementStatus = "calculated"
	SettlementStatusSettled    SettlementStatus = "settled"
	SettlementStatusCancel     SettlementStatus = "cancel"
)

var ErrInvalidTransition = errors.New("invalid settlement status transition")

// ParseSettlementStatus accepts the four known statuses, case-insensitively.
func ParseSettlementStatus(s string) (SettlementStatus, error) {
	status := SettlementStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", fmt.Errorf("unknown settlement status %q", s)
	}
	return status, nil
}

func (s SettlementStatus) Valid() bool {
	switch s {
	case SettlementStatusWaiting, SettlementStatusCalculated, SettlementStatusSettled, SettlementStatusCancel:
		return true
	}
	return false
}

// CanTransitionTo reports whether s may move to next. Statuses only advance; settled and
// cancel are terminal.
func (s SettlementStatus) CanTransitionTo(next SettlementStatus) bool {
	switch s {
	case SettlementStatusWaiting:
		return next == SettlementStatusCalculated || next == SettlementStatusCancel
	case SettlementStatusCalculated:
		return next == SettlementStatusSettled || next == SettlementStatusCancel
	}
	return false
}

// CheckTransition wraps ErrInvalidTransition with both statuses.
func (s SettlementStatus) CheckTransition(next SettlementStatus) error {
	if !s.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, next)
	}
	return nil
}

// OrderKey is the composite identity of an imported order.
type OrderKey struct {
	ResellerID  uuid.UUID `json:"reseller_id"`
	OrderNumber string    `json:"order_number"`
}

func (k OrderKey) String() string {
	return k.ResellerID.String() + ":" + k.OrderNumber
}

// Order is one imported marketplace sales line.
type Order struct {
	ResellerID        uuid.UUID           `json:"reseller_id"`
	OrderNumber       string              `json:"order_number"`
	CountryCode       string              `json:"country_code"`
	SKU               string              `json:"sku"`
	SPU               string              `json:"spu,omitempty"`
	Quantity          int                 `json:"quantity"`
	UnitPrice         decimal.Decimal     `json:"unit_price"`
	TotalPrice        decimal.Decimal     `json:"total_price"`
	SaleDiscount      decimal.Decimal     `json:"sale_discount"`
	BuyerName         string              `json:"buyer_name"`
	PaymentTime       time.Time           `json:"payment_time"`
	MarketplaceStatus string              `json:"marketplace_status"`
	SettlementStatus  SettlementStatus    `json:"settlement_status"`
	SettlementAmount  decimal.NullDecimal `json:"settlement_amount"`
	AppliedRate       decimal.NullDecimal `json:"applied_discount_rate"`
	SettlementRemark  string              `json:"settlement_remark,omitempty"`
	SettlementID      *uuid.UUID          `json:"settlement_id,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

func (o *Order) Key() OrderKey {
	return OrderKey{ResellerID: o.ResellerID, OrderNumber: o.OrderNumber}
}

var refundedStatuses = map[string]struct{}{
	"refunded": {},
	"refund":   {},
	"returned": {},
}

// IsRefunded reports whether the marketplace refunded this order.
func (o *Order) IsRefunded() bool {
	_, ok := refundedStatuses[strings.ToLower(strings.TrimSpace(o.MarketplaceStatus))]
	return ok
}

// GrossAmount is unit price times quantity.
func (o *Order) GrossAmount() decimal.Decimal {
	return o.UnitPrice.Mul(decimal.NewFromInt(int64(o.Quantity)))
}

// Calculation is the outcome the calculator writes onto a waiting order.
type Calculation struct {
	Amount decimal.Decimal
	Rate   decimal.NullDecimal
	Remark string
}

// Filter selects orders by reseller, payment window and settlement status.
type Filter struct {
	ResellerID *uuid.UUID
	Start      time.Time
	End        time.Time
	Statuses   []SettlementStatus
}

// Matches applies the filter to a single order. Start and End are inclusive.
func (f Filter) Matches(o *Order) bool {
	if f.ResellerID != nil && o.ResellerID != *f.ResellerID {
		return false
	}
	if !f.Start.IsZero() && o.PaymentTime.Before(f.Start) {
		return false
	}
	if !f.End.IsZero() && o.PaymentTime.After(f.End) {
		return false
	}
	if len(f.Statuses) == 0 {
		return true
	}
	for _, s := range f.Statuses {
		if o.SettlementStatus == s {
			return true
		}
	}
	return false
}

// Summary totals orders per settlement status.
type Summary struct {
	Counts  map[SettlementStatus]int             `json:"counts"`
	Amounts map[SettlementStatus]decimal.Decimal `json:"amounts"`
	Total   int                                  `json:"total"`
}

// CategorizedOrders is the admin view of a reseller's orders in a window.
type CategorizedOrders struct {
	Waiting    []Order `json:"waiting"`
	Calculated []Order `json:"calculated"`
	Settled    []Order `json:"settled"`
	Cancel     []Order `json:"cancel"`
	Summary    Summary `json:"summary"`
}

// Categorize splits orders by status and sums settlement amounts per bucket.
func Categorize(orders []Order) CategorizedOrders {
	out := CategorizedOrders{
		Waiting:    []Order{},
		Calculated: []Order{},
		Settled:    []Order{},
		Cancel:     []Order{},
		Summary: Summary{
			Counts:  map[SettlementStatus]int{},
			Amounts: map[SettlementStatus]decimal.Decimal{},
		},
	}
	for _, s := range []SettlementStatus{SettlementStatusWaiting, SettlementStatusCalculated, SettlementStatusSettled, SettlementStatusCancel} {
		out.Summary.Counts[s] = 0
		out.Summary.Amounts[s] = decimal.Zero
	}

	for _, o := range orders {
		switch o.SettlementStatus {
		case SettlementStatusWaiting:
			out.Waiting = append(out.Waiting, o)
		case SettlementStatusCalculated:
			out.Calculated = append(out.Calculated, o)
		case SettlementStatusSettled:
			out.Settled = append(out.Settled, o)
		case SettlementStatusCancel:
			out.Cancel = append(out.Cancel, o)
		default:
			continue
		}
		out.Summary.Counts[o.SettlementStatus]++
		out.Summary.Total++
		if o.SettlementAmount.Valid {
			out.Summary.Amounts[o.SettlementStatus] = out.Summary.Amounts[o.SettlementStatus].Add(o.SettlementAmount.Decimal)
		}
	}
	return out
}
