package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joy095/settlement/models/discount_models"
	"github.com/joy095/settlement/models/order_models"
	"github.com/joy095/settlement/repositories"
	"github.com/shopspring/decimal"
)

// BuyerWindow is the rolling window over which a buyer's quantity is summed.
const BuyerWindow = 24 * time.Hour

var rateNoDiscount = decimal.NewFromInt(1)

// DiscountResolution is the rate applied and how it was found.
type DiscountResolution struct {
	Rate     decimal.Decimal               `json:"rate"`
	Quantity int                           `json:"quantity"`
	Rule     *discount_models.DiscountRule `json:"rule,omitempty"`
}

type discountSource interface {
	ListDiscountRules(ctx context.Context, resellerID uuid.UUID) ([]discount_models.DiscountRule, error)
	ListBuyerOrders(ctx context.Context, resellerID uuid.UUID, buyer string, start, end time.Time) ([]order_models.Order, error)
}

// DiscountResolver maps a buyer's rolling 24h quantity onto the reseller's tier rules.
type DiscountResolver struct {
	repo discountSource
}

func NewDiscountResolver(repo repositories.Repository) *DiscountResolver {
	return &DiscountResolver{repo: repo}
}

// Resolve sums the buyer's quantity in [asOf-24h, asOf] and returns the matching rate.
// With no rules configured the rate is 1. When rules exist but none contains the quantity
// the rate is still 1 and ErrNoDiscountInfo is returned alongside it.
func (r *DiscountResolver) Resolve(ctx context.Context, resellerID uuid.UUID, buyer string, asOf time.Time) (DiscountResolution, error) {
	qty, err := r.BuyerQuantity(ctx, resellerID, buyer, asOf)
	if err != nil {
		return DiscountResolution{Rate: rateNoDiscount}, err
	}
	return r.RateForQuantity(ctx, resellerID, qty)
}

// BuyerQuantity counts units the buyer ordered from resellerID in [asOf-24h, asOf].
// Cancelled and refunded orders do not count.
func (r *DiscountResolver) BuyerQuantity(ctx context.Context, resellerID uuid.UUID, buyer string, asOf time.Time) (int, error) {
	orders, err := r.repo.ListBuyerOrders(ctx, resellerID, buyer, asOf.Add(-BuyerWindow), asOf)
	if err != nil {
		return 0, fmt.Errorf("failed to load orders of buyer %q: %w", buyer, err)
	}
	total := 0
	for i := range orders {
		if countsTowardsQuantity(&orders[i]) {
			total += orders[i].Quantity
		}
	}
	return total, nil
}

// RateForQuantity applies the reseller's rules to an already known quantity.
func (r *DiscountResolver) RateForQuantity(ctx context.Context, resellerID uuid.UUID, qty int) (DiscountResolution, error) {
	res := DiscountResolution{Rate: rateNoDiscount, Quantity: qty}

	rules, err := r.repo.ListDiscountRules(ctx, resellerID)
	if err != nil {
		return res, fmt.Errorf("failed to load discount rules: %w", err)
	}
	if len(rules) == 0 {
		return res, nil
	}

	rule := discount_models.Match(rules, qty)
	if rule == nil {
		return res, fmt.Errorf("%w: quantity %d matches no discount tier", ErrNoDiscountInfo, qty)
	}
	res.Rate = rule.DiscountRate
	res.Rule = rule
	return res, nil
}

// PeakQuantity is the largest rolling 24h quantity of the order's buyer over every window
// that contains the order. Window ends only need checking at the order itself and at the
// buyer's later orders within 24h, since the sum changes only when an order enters.
func (r *DiscountResolver) PeakQuantity(ctx context.Context, order *order_models.Order) (int, error) {
	paid := order.PaymentTime
	orders, err := r.repo.ListBuyerOrders(ctx, order.ResellerID, order.BuyerName, paid.Add(-BuyerWindow), paid.Add(BuyerWindow))
	if err != nil {
		return 0, fmt.Errorf("failed to load orders of buyer %q: %w", order.BuyerName, err)
	}

	ends := []time.Time{paid}
	for i := range orders {
		if countsTowardsQuantity(&orders[i]) && orders[i].PaymentTime.After(paid) {
			ends = append(ends, orders[i].PaymentTime)
		}
	}

	peak := 0
	for _, end := range ends {
		qty := 0
		for i := range orders {
			o := &orders[i]
			if countsTowardsQuantity(o) && !o.PaymentTime.Before(end.Add(-BuyerWindow)) && !o.PaymentTime.After(end) {
				qty += o.Quantity
			}
		}
		if qty > peak {
			peak = qty
		}
	}
	return peak, nil
}

// ResolveForOrder prices an order on the peak rolling quantity of its buyer, so a later
// purchase never lowers the tier an earlier window already reached. Orders without a buyer
// name are treated as a buyer of their own.
func (r *DiscountResolver) ResolveForOrder(ctx context.Context, order *order_models.Order) (DiscountResolution, error) {
	if strings.TrimSpace(order.BuyerName) == "" {
		return r.RateForQuantity(ctx, order.ResellerID, order.Quantity)
	}
	qty, err := r.PeakQuantity(ctx, order)
	if err != nil {
		return DiscountResolution{Rate: rateNoDiscount}, err
	}
	return r.RateForQuantity(ctx, order.ResellerID, qty)
}

func countsTowardsQuantity(o *order_models.Order) bool {
	return o.SettlementStatus != order_models.SettlementStatusCancel && !o.IsRefunded()
}
