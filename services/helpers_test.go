package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joy095/settlement/config"
	"github.com/joy095/settlement/models/commission_models"
	"github.com/joy095/settlement/models/discount_models"
	"github.com/joy095/settlement/models/order_models"
	"github.com/joy095/settlement/models/quote_models"
	"github.com/joy095/settlement/models/reseller_models"
	"github.com/joy095/settlement/repositories"
	"github.com/joy095/settlement/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testSettings() *config.Settings {
	return &config.Settings{
		FirstLevelRate:     dec("0.02"),
		SupportedCountries: []string{"US", "DE"},
		CostPolicy:         config.CostPolicyNone,
		LockTTL:            time.Minute,
	}
}

type fixture struct {
	ctx      context.Context
	repo     *memory.Store
	locker   *LocalLocker
	notifier *spyNotifier
	svc      *Services
	reseller uuid.UUID
	referrer uuid.UUID
}

// newFixture seeds a reseller R (referred by A when referred is true) and a one-unit quote
// for SKU-1 shipped to US.
func newFixture(t *testing.T, referred bool) *fixture {
	t.Helper()
	f := &fixture{
		ctx:      context.Background(),
		repo:     memory.New(),
		locker:   NewLocalLocker(),
		notifier: &spyNotifier{},
		reseller: uuid.New(),
		referrer: uuid.New(),
	}
	f.svc = New(f.repo, f.locker, testSettings(), f.notifier)

	require.NoError(t, f.repo.InsertReseller(f.ctx, &reseller_models.Reseller{ID: f.referrer, Name: "Alice Referrer", Email: "a@example.com"}))
	r := &reseller_models.Reseller{ID: f.reseller, Name: "Rita Reseller", Email: "r@example.com"}
	if referred {
		ref := f.referrer
		r.ReferrerID = &ref
	}
	require.NoError(t, f.repo.InsertReseller(f.ctx, r))
	f.addQuote(t, f.reseller, "SKU-1", "US", 1, "4.00")
	return f
}

func (f *fixture) addQuote(t *testing.T, owner uuid.UUID, sku, country string, qty int, productCost string) *quote_models.Quote {
	t.Helper()
	q, err := quote_models.NewQuote(quote_models.QuoteRequest{
		ResellerID:   owner,
		ProductID:    sku,
		CountryCode:  country,
		Quantity:     qty,
		ProductCost:  dec(productCost),
		ShippingCost: decimal.Zero,
		PackingCost:  decimal.Zero,
		VatCost:      decimal.Zero,
	})
	require.NoError(t, err)
	require.NoError(t, f.repo.InsertQuote(f.ctx, q))
	return q
}

func (f *fixture) addRule(t *testing.T, min, max int, rate string) {
	t.Helper()
	_, err := f.svc.DiscountRules.Create(f.ctx, f.reseller, discount_models.DiscountRuleRequest{
		MinQuantity: min, MaxQuantity: max, DiscountRate: dec(rate),
	})
	require.NoError(t, err)
}

func (f *fixture) addOrder(t *testing.T, number string, qty int, unitPrice string, paid time.Time, buyer string) order_models.OrderKey {
	t.Helper()
	o := &order_models.Order{
		ResellerID:        f.reseller,
		OrderNumber:       number,
		CountryCode:       "US",
		SKU:               "SKU-1",
		Quantity:          qty,
		UnitPrice:         dec(unitPrice),
		BuyerName:         buyer,
		PaymentTime:       paid,
		MarketplaceStatus: "paid",
	}
	require.NoError(t, f.repo.InsertOrder(f.ctx, o))
	return o.Key()
}

func (f *fixture) order(t *testing.T, key order_models.OrderKey) *order_models.Order {
	t.Helper()
	o, err := f.repo.GetOrder(f.ctx, key)
	require.NoError(t, err)
	return o
}

func (f *fixture) calculate(t *testing.T) *CalculationReport {
	t.Helper()
	reseller := f.reseller
	report, err := f.svc.Calculator.Calculate(f.ctx, CalculateRequest{StartDate: day, EndDate: day.Add(48 * time.Hour), ResellerID: &reseller})
	require.NoError(t, err)
	return report
}

func (f *fixture) execute() (*ExecutionResult, error) {
	return f.svc.Executor.Execute(f.ctx, ExecuteRequest{StartDate: day, EndDate: day.Add(48 * time.Hour), ResellerID: f.reseller})
}

type spyNotifier struct {
	mu    sync.Mutex
	calls []commission_models.Commission
	err   error
}

func (s *spyNotifier) CommissionReviewed(_ context.Context, _ *reseller_models.Reseller, c *commission_models.Commission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, *c)
	return s.err
}

var errSimulatedCrash = errors.New("simulated crash")

// crashingRepo fails MarkSettled once failAfter orders have been flipped.
type crashingRepo struct {
	repositories.Repository
	failAfter int
	settled   *int
}

func (c *crashingRepo) InTx(ctx context.Context, fn func(tx repositories.Repository) error) error {
	return c.Repository.InTx(ctx, func(tx repositories.Repository) error {
		return fn(&crashingRepo{Repository: tx, failAfter: c.failAfter, settled: c.settled})
	})
}

func (c *crashingRepo) MarkSettled(ctx context.Context, key order_models.OrderKey, settlementID uuid.UUID) error {
	if *c.settled >= c.failAfter {
		return errSimulatedCrash
	}
	*c.settled++
	return c.Repository.MarkSettled(ctx, key, settlementID)
}
