package services

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joy095/settlement/models/discount_models"
	"github.com/joy095/settlement/models/order_models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscountRulesStayDisjoint(t *testing.T) {
	f := newFixture(t, false)
	f.addRule(t, 5, 10, "0.9")
	f.addRule(t, 11, 20, "0.85")

	_, err := f.svc.DiscountRules.Create(f.ctx, f.reseller, discount_models.DiscountRuleRequest{MinQuantity: 8, MaxQuantity: 12, DiscountRate: dec("0.8")})
	var overlap *OverlapError
	require.True(t, errors.As(err, &overlap))
	assert.Equal(t, 5, overlap.Existing.MinQuantity)
	assert.Contains(t, err.Error(), "[5, 10]")

	rules, err := f.svc.DiscountRules.List(f.ctx, f.reseller)
	require.NoError(t, err)
	assert.Len(t, rules, 2, "rule set unchanged")

	other, err := f.svc.DiscountRules.Create(f.ctx, uuid.New(), discount_models.DiscountRuleRequest{MinQuantity: 8, MaxQuantity: 12, DiscountRate: dec("0.8")})
	require.NoError(t, err, "ranges are per reseller")
	assert.NotNil(t, other)
}

func TestDiscountRuleUpdate(t *testing.T) {
	f := newFixture(t, false)
	f.addRule(t, 1, 4, "0.95")
	f.addRule(t, 5, 10, "0.9")
	rules, err := f.svc.DiscountRules.List(f.ctx, f.reseller)
	require.NoError(t, err)
	discount_models.SortByRange(rules)
	target := rules[1]

	updated, err := f.svc.DiscountRules.Update(f.ctx, f.reseller, target.ID, discount_models.DiscountRuleRequest{MinQuantity: 5, MaxQuantity: 15, DiscountRate: dec("0.88")})
	require.NoError(t, err, "a rule may overlap its own old range")
	assert.Equal(t, 15, updated.MaxQuantity)

	_, err = f.svc.DiscountRules.Update(f.ctx, f.reseller, target.ID, discount_models.DiscountRuleRequest{MinQuantity: 3, MaxQuantity: 15, DiscountRate: dec("0.88")})
	assert.True(t, IsValidationError(err))

	_, err = f.svc.DiscountRules.Update(f.ctx, f.reseller, target.ID, discount_models.DiscountRuleRequest{MinQuantity: 5, MaxQuantity: 15, DiscountRate: dec("1.5")})
	assert.True(t, IsValidationError(err))

	_, err = f.svc.DiscountRules.Update(f.ctx, f.reseller, uuid.New(), discount_models.DiscountRuleRequest{MinQuantity: 50, MaxQuantity: 60, DiscountRate: dec("0.5")})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, f.svc.DiscountRules.Delete(f.ctx, f.reseller, target.ID))
	rules, err = f.svc.DiscountRules.List(f.ctx, f.reseller)
	require.NoError(t, err)
	assert.Len(t, rules, 1)
}

func TestDiscountRuleCreateValidation(t *testing.T) {
	f := newFixture(t, false)
	for _, req := range []discount_models.DiscountRuleRequest{
		{MinQuantity: 0, MaxQuantity: 3, DiscountRate: dec("0.9")},
		{MinQuantity: 5, MaxQuantity: 3, DiscountRate: dec("0.9")},
		{MinQuantity: 1, MaxQuantity: 3, DiscountRate: dec("0")},
		{MinQuantity: 1, MaxQuantity: 3, DiscountRate: dec("0.12345")},
	} {
		_, err := f.svc.DiscountRules.Create(f.ctx, f.reseller, req)
		assert.True(t, IsValidationError(err), "%+v", req)
	}
}

func TestDiscountResolverWindow(t *testing.T) {
	f := newFixture(t, false)
	f.addRule(t, 1, 4, "0.95")
	f.addRule(t, 5, 10, "0.9")
	f.addOrder(t, "A", 2, "10", day.Add(1*time.Hour), "Bob")
	f.addOrder(t, "B", 3, "10", day.Add(20*time.Hour), "bob")
	f.addOrder(t, "C", 3, "10", day.Add(30*time.Hour), "Bob")
	f.addOrder(t, "OTHER", 12, "10", day.Add(2*time.Hour), "Carol")

	res, err := f.svc.Discounts.Resolve(f.ctx, f.reseller, "Bob", day.Add(20*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 5, res.Quantity)
	assert.True(t, res.Rate.Equal(dec("0.9")))

	res, err = f.svc.Discounts.Resolve(f.ctx, f.reseller, "Bob", day.Add(30*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 6, res.Quantity, "order A fell out of the window")

	res, err = f.svc.Discounts.Resolve(f.ctx, f.reseller, "Bob", day.Add(72*time.Hour))
	assert.ErrorIs(t, err, ErrNoDiscountInfo, "no tier covers zero units")
	assert.Equal(t, 0, res.Quantity)
	assert.True(t, res.Rate.Equal(dec("1")))
	assert.Nil(t, res.Rule)

	res, err = f.svc.Discounts.Resolve(f.ctx, f.reseller, "Carol", day.Add(3*time.Hour))
	assert.ErrorIs(t, err, ErrNoDiscountInfo)
	assert.True(t, res.Rate.Equal(dec("1")))
}

func TestDiscountResolverWithoutRules(t *testing.T) {
	f := newFixture(t, false)
	f.addOrder(t, "A", 40, "10", day.Add(time.Hour), "Bob")

	res, err := f.svc.Discounts.Resolve(f.ctx, f.reseller, "Bob", day.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 40, res.Quantity)
	assert.True(t, res.Rate.Equal(dec("1")))
}

func TestPeakQuantityCoversBuyingBurst(t *testing.T) {
	f := newFixture(t, false)
	first := f.addOrder(t, "A", 1, "10", day.Add(1*time.Hour), "Bob")
	f.addOrder(t, "B", 1, "10", day.Add(5*time.Hour), "Bob")
	f.addOrder(t, "C", 1, "10", day.Add(40*time.Hour), "Bob")

	qty, err := f.svc.Discounts.PeakQuantity(f.ctx, f.order(t, first))
	require.NoError(t, err)
	assert.Equal(t, 2, qty)
}

func TestChainedOrdersKeepTheirOwnWindowTier(t *testing.T) {
	f := newFixture(t, false)
	f.addRule(t, 5, 10, "0.9")
	o1 := f.addOrder(t, "O1", 2, "10", day.Add(1*time.Hour), "Bob")
	o2 := f.addOrder(t, "O2", 3, "10", day.Add(21*time.Hour), "Bob")
	o3 := f.addOrder(t, "O3", 1, "10", day.Add(31*time.Hour), "Bob")

	qty, err := f.svc.Discounts.PeakQuantity(f.ctx, f.order(t, o2))
	require.NoError(t, err)
	assert.Equal(t, 5, qty, "O1 and O2 share the window ending at O2")

	report := f.calculate(t)
	assert.Equal(t, 3, report.ProcessedOrders)
	assert.Equal(t, 3, report.SettledOrders)
	assert.Equal(t, 1, report.FailureReasons.NoDiscountInfo, "only O3 sits in a gap")

	for key, amount := range map[order_models.OrderKey]string{o1: "18", o2: "27"} {
		o := f.order(t, key)
		assert.True(t, o.AppliedRate.Decimal.Equal(dec("0.9")), "%s rate %s", key.OrderNumber, o.AppliedRate.Decimal)
		assert.True(t, o.SettlementAmount.Decimal.Equal(dec(amount)), "%s amount %s", key.OrderNumber, o.SettlementAmount.Decimal)
		assert.Equal(t, "tier [5, 10] for 5 units in 24h", o.SettlementRemark)
	}

	last := f.order(t, o3)
	assert.True(t, last.AppliedRate.Decimal.Equal(dec("1")))
	assert.Equal(t, "review: no discount tier for 4 units in 24h", last.SettlementRemark)
}
