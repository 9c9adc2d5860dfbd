package order_models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettlementStatusTransitions(t *testing.T) {
	allowed := map[[2]SettlementStatus]bool{
		{SettlementStatusWaiting, SettlementStatusCalculated}: true,
		{SettlementStatusWaiting, SettlementStatusCancel}:     true,
		{SettlementStatusCalculated, SettlementStatusSettled}: true,
		{SettlementStatusCalculated, SettlementStatusCancel}:  true,
	}
	all := []SettlementStatus{SettlementStatusWaiting, SettlementStatusCalculated, SettlementStatusSettled, SettlementStatusCancel}
	for _, from := range all {
		for _, to := range all {
			ok := allowed[[2]SettlementStatus{from, to}]
			assert.Equal(t, ok, from.CanTransitionTo(to), "%s -> %s", from, to)
			if ok {
				assert.NoError(t, from.CheckTransition(to))
			} else {
				assert.ErrorIs(t, from.CheckTransition(to), ErrInvalidTransition)
			}
		}
	}
}

func TestParseSettlementStatus(t *testing.T) {
	s, err := ParseSettlementStatus(" Calculated ")
	require.NoError(t, err)
	assert.Equal(t, SettlementStatusCalculated, s)

	_, err = ParseSettlementStatus("paid")
	assert.Error(t, err)
}

func TestIsRefunded(t *testing.T) {
	for status, want := range map[string]bool{
		"Refunded": true,
		"refund":   true,
		"RETURNED": true,
		"paid":     false,
		"":         false,
	} {
		o := Order{MarketplaceStatus: status}
		assert.Equal(t, want, o.IsRefunded(), status)
	}
}

func TestFilterMatchesInclusiveBounds(t *testing.T) {
	reseller := uuid.New()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)
	f := Filter{ResellerID: &reseller, Start: start, End: end, Statuses: []SettlementStatus{SettlementStatusWaiting}}

	o := Order{ResellerID: reseller, PaymentTime: start, SettlementStatus: SettlementStatusWaiting}
	assert.True(t, f.Matches(&o))
	o.PaymentTime = end
	assert.True(t, f.Matches(&o))
	o.PaymentTime = end.Add(time.Nanosecond)
	assert.False(t, f.Matches(&o))

	o.PaymentTime = start
	o.SettlementStatus = SettlementStatusSettled
	assert.False(t, f.Matches(&o))

	o.SettlementStatus = SettlementStatusWaiting
	o.ResellerID = uuid.New()
	assert.False(t, f.Matches(&o))
}

func TestCategorize(t *testing.T) {
	amount := decimal.NewNullDecimal(decimal.RequireFromString("12.50"))
	orders := []Order{
		{OrderNumber: "a", SettlementStatus: SettlementStatusWaiting},
		{OrderNumber: "b", SettlementStatus: SettlementStatusCalculated, SettlementAmount: amount},
		{OrderNumber: "c", SettlementStatus: SettlementStatusCalculated, SettlementAmount: amount},
		{OrderNumber: "d", SettlementStatus: SettlementStatusCancel},
	}
	out := Categorize(orders)
	assert.Len(t, out.Waiting, 1)
	assert.Len(t, out.Calculated, 2)
	assert.Empty(t, out.Settled)
	assert.Len(t, out.Cancel, 1)
	assert.Equal(t, 4, out.Summary.Total)
	assert.True(t, out.Summary.Amounts[SettlementStatusCalculated].Equal(decimal.NewFromInt(25)))
	assert.True(t, out.Summary.Amounts[SettlementStatusSettled].IsZero())
}
