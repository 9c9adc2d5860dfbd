package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/joy095/settlement/config"
	"github.com/joy095/settlement/logger"
	"github.com/joy095/settlement/models/order_models"
	"github.com/joy095/settlement/repositories"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const remarkRefunded = "refunded"

// CalculateRequest selects the waiting orders to price. ResellerID nil means every reseller
// with waiting orders in the window.
type CalculateRequest struct {
	StartDate  time.Time
	EndDate    time.Time
	ResellerID *uuid.UUID
}

type FailureReasons struct {
	NoPriceInfo           int `json:"noPriceInfo"`
	NoDiscountInfo        int `json:"noDiscountInfo"`
	PriceCalculationError int `json:"priceCalculationError"`
}

// CalculationReport summarises one calculator run. SettledOrders counts orders newly moved to
// calculated.
type CalculationReport struct {
	ProcessedOrders int            `json:"processedOrders"`
	SettledOrders   int            `json:"settledOrders"`
	SkippedOrders   int            `json:"skippedOrders"`
	FailureReasons  FailureReasons `json:"failureReasons"`
	Errors          []string       `json:"errors"`
	ProcessingTime  string         `json:"processingTime"`
}

func (r *CalculationReport) fail(key order_models.OrderKey, err error) {
	r.Errors = append(r.Errors, fmt.Sprintf("%s: %v", key.OrderNumber, err))
	switch {
	case errors.Is(err, ErrNoPriceInfo):
		r.FailureReasons.NoPriceInfo++
	case errors.Is(err, ErrNoDiscountInfo):
		r.FailureReasons.NoDiscountInfo++
	case errors.Is(err, ErrPriceCalculationError):
		r.FailureReasons.PriceCalculationError++
	}
}

// SettlementCalculator moves waiting orders to calculated with a settlement amount.
type SettlementCalculator struct {
	repo       repositories.Repository
	quotes     *QuoteResolver
	discounts  *DiscountResolver
	locker     Locker
	lockTTL    time.Duration
	costPolicy config.CostPolicy
}

func NewSettlementCalculator(repo repositories.Repository, quotes *QuoteResolver, discounts *DiscountResolver,
	locker Locker, lockTTL time.Duration, costPolicy config.CostPolicy) *SettlementCalculator {
	if costPolicy == "" {
		costPolicy = config.CostPolicyNone
	}
	return &SettlementCalculator{
		repo:       repo,
		quotes:     quotes,
		discounts:  discounts,
		locker:     locker,
		lockTTL:    lockTTL,
		costPolicy: costPolicy,
	}
}

// Calculate prices every waiting order in the window. Lookup failures are reported per order
// and leave the order waiting; only storage failures abort the run.
func (c *SettlementCalculator) Calculate(ctx context.Context, req CalculateRequest) (*CalculationReport, error) {
	started := time.Now()
	if req.StartDate.After(req.EndDate) {
		return nil, newValidationError("startDate", "must not be after endDate")
	}

	report := &CalculationReport{Errors: []string{}}

	if req.ResellerID != nil {
		if err := c.calculateReseller(ctx, *req.ResellerID, req.StartDate, req.EndDate, report); err != nil {
			return nil, err
		}
	} else {
		resellers, err := c.repo.ListResellersWithWaitingOrders(ctx, req.StartDate, req.EndDate)
		if err != nil {
			return nil, fmt.Errorf("failed to list resellers with waiting orders: %w", err)
		}
		for _, id := range resellers {
			err := c.calculateReseller(ctx, id, req.StartDate, req.EndDate, report)
			if errors.Is(err, ErrSettlementInProgress) {
				report.Errors = append(report.Errors, fmt.Sprintf("reseller %s: %v", id, err))
				continue
			}
			if err != nil {
				return nil, err
			}
		}
	}

	report.ProcessingTime = time.Since(started).String()
	logger.InfoLogger.WithFields(logrus.Fields{
		"processed": report.ProcessedOrders,
		"settled":   report.SettledOrders,
		"skipped":   report.SkippedOrders,
		"errors":    len(report.Errors),
	}).Info("Settlement calculation finished")
	return report, nil
}

func (c *SettlementCalculator) calculateReseller(ctx context.Context, resellerID uuid.UUID, start, end time.Time, report *CalculationReport) error {
	release, err := c.locker.Acquire(ctx, resellerLockKey(resellerID), c.lockTTL)
	if err != nil {
		return err
	}
	defer release()

	orders, err := c.repo.ListOrders(ctx, order_models.Filter{
		ResellerID: &resellerID,
		Start:      start,
		End:        end,
		Statuses:   []order_models.SettlementStatus{order_models.SettlementStatusWaiting},
	})
	if err != nil {
		return fmt.Errorf("failed to list waiting orders of reseller %s: %w", resellerID, err)
	}

	for i := range orders {
		if err := ctx.Err(); err != nil {
			return err
		}
		order := &orders[i]
		report.ProcessedOrders++

		calc, err := c.price(ctx, order)
		if err != nil {
			if !IsLookupFailure(err) {
				return err
			}
			report.fail(order.Key(), err)
			if !errors.Is(err, ErrNoDiscountInfo) {
				report.SkippedOrders++
				logger.WarnLogger.Warnf("Order %s left waiting: %v", order.Key(), err)
				continue
			}
		}

		err = c.repo.MarkCalculated(ctx, order.Key(), calc)
		switch {
		case err == nil:
			report.SettledOrders++
		case errors.Is(err, repositories.ErrPreconditionFailed), errors.Is(err, repositories.ErrNotFound):
			report.SkippedOrders++
			logger.DebugLogger.Debugf("Order %s changed status before it could be calculated", order.Key())
		default:
			return fmt.Errorf("failed to store calculation of order %s: %w", order.Key(), err)
		}
	}
	return nil
}

// price computes the calculation for one waiting order. A result returned together with
// ErrNoDiscountInfo is still usable: it is priced at rate 1 and flagged for review.
func (c *SettlementCalculator) price(ctx context.Context, order *order_models.Order) (order_models.Calculation, error) {
	if order.IsRefunded() {
		return order_models.Calculation{Amount: decimal.Zero, Remark: remarkRefunded}, nil
	}
	if !order.UnitPrice.IsPositive() {
		return order_models.Calculation{}, fmt.Errorf("%w: unit price %s is not positive", ErrPriceCalculationError, order.UnitPrice)
	}
	if order.Quantity <= 0 {
		return order_models.Calculation{}, fmt.Errorf("%w: quantity %d is not positive", ErrPriceCalculationError, order.Quantity)
	}

	quote, err := c.quotes.Resolve(ctx, QuoteQuery{
		ResellerID:  order.ResellerID,
		ProductID:   order.SKU,
		CountryCode: order.CountryCode,
		Quantity:    order.Quantity,
	})
	if err != nil {
		if IsValidationError(err) {
			return order_models.Calculation{}, fmt.Errorf("%w: %v", ErrNoPriceInfo, err)
		}
		return order_models.Calculation{}, err
	}

	discount, discountErr := c.discounts.ResolveForOrder(ctx, order)
	if discountErr != nil && !errors.Is(discountErr, ErrNoDiscountInfo) {
		return order_models.Calculation{}, discountErr
	}

	qty := decimal.NewFromInt(int64(order.Quantity))
	absorbed := decimal.Zero
	if c.costPolicy == config.CostPolicyDeductQuote {
		absorbed = quote.UnitCost().Mul(qty)
	}

	amount := order.GrossAmount().Mul(discount.Rate).Sub(absorbed).Round(2)
	if amount.IsNegative() {
		return order_models.Calculation{}, fmt.Errorf("%w: settlement amount %s is negative (gross %s, rate %s, costs %s)",
			ErrPriceCalculationError, amount, order.GrossAmount(), discount.Rate, absorbed.Round(2))
	}

	calc := order_models.Calculation{
		Amount: amount,
		Rate:   decimal.NewNullDecimal(discount.Rate),
	}
	switch {
	case discountErr != nil:
		calc.Remark = fmt.Sprintf("review: no discount tier for %d units in 24h", discount.Quantity)
	case discount.Rule != nil:
		calc.Remark = fmt.Sprintf("tier %s for %d units in 24h", discount.Rule.RangeString(), discount.Quantity)
	}
	return calc, discountErr
}
