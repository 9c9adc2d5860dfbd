package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joy095/settlement/models/commission_models"
	"github.com/joy095/settlement/models/order_models"
	"github.com/joy095/settlement/models/reseller_models"
	"github.com/joy095/settlement/models/wallet_models"
	"github.com/joy095/settlement/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrder(reseller uuid.UUID, number string, paid time.Time) *order_models.Order {
	return &order_models.Order{
		ResellerID:  reseller,
		OrderNumber: number,
		CountryCode: "US",
		SKU:         "SKU-1",
		Quantity:    1,
		UnitPrice:   decimal.NewFromInt(10),
		BuyerName:   "Buyer",
		PaymentTime: paid,
	}
}

func TestOrderTransitionsUseStatusPrecondition(t *testing.T) {
	ctx := context.Background()
	s := New()
	reseller := uuid.New()
	order := newOrder(reseller, "A-1", time.Now())
	require.NoError(t, s.InsertOrder(ctx, order))

	err := s.MarkSettled(ctx, order.Key(), uuid.New())
	assert.ErrorIs(t, err, repositories.ErrPreconditionFailed, "waiting orders cannot be settled")

	require.NoError(t, s.MarkCalculated(ctx, order.Key(), order_models.Calculation{Amount: decimal.NewFromInt(10)}))
	err = s.MarkCalculated(ctx, order.Key(), order_models.Calculation{Amount: decimal.NewFromInt(99)})
	assert.ErrorIs(t, err, repositories.ErrPreconditionFailed, "second calculation is a no-op error")

	got, err := s.GetOrder(ctx, order.Key())
	require.NoError(t, err)
	assert.True(t, got.SettlementAmount.Decimal.Equal(decimal.NewFromInt(10)))

	settlementID := uuid.New()
	require.NoError(t, s.MarkSettled(ctx, order.Key(), settlementID))
	assert.Error(t, s.MarkCancelled(ctx, order.Key(), "late refund"), "settled is terminal")

	settled, err := s.ListOrdersBySettlement(ctx, settlementID)
	require.NoError(t, err)
	assert.Len(t, settled, 1)
}

func TestInTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	reseller := uuid.New()
	a := newOrder(reseller, "A-1", time.Now())
	b := newOrder(reseller, "A-2", time.Now())
	require.NoError(t, s.InsertOrder(ctx, a))
	require.NoError(t, s.InsertOrder(ctx, b))

	boom := errors.New("boom")
	err := s.InTx(ctx, func(tx repositories.Repository) error {
		require.NoError(t, tx.MarkCalculated(ctx, a.Key(), order_models.Calculation{Amount: decimal.NewFromInt(1)}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.GetOrder(ctx, a.Key())
	require.NoError(t, err)
	assert.Equal(t, order_models.SettlementStatusWaiting, got.SettlementStatus)

	err = s.InTx(ctx, func(tx repositories.Repository) error {
		return tx.MarkCalculated(ctx, b.Key(), order_models.Calculation{Amount: decimal.NewFromInt(1)})
	})
	require.NoError(t, err)
	got, err = s.GetOrder(ctx, b.Key())
	require.NoError(t, err)
	assert.Equal(t, order_models.SettlementStatusCalculated, got.SettlementStatus)
}

func TestListBuyerOrdersAndWaitingResellers(t *testing.T) {
	ctx := context.Background()
	s := New()
	r1, r2 := uuid.New(), uuid.New()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	o1 := newOrder(r1, "1", base)
	o2 := newOrder(r1, "2", base.Add(2*time.Hour))
	o2.BuyerName = "  buyer "
	o3 := newOrder(r1, "3", base.Add(48*time.Hour))
	o4 := newOrder(r2, "4", base)
	for _, o := range []*order_models.Order{o1, o2, o3, o4} {
		require.NoError(t, s.InsertOrder(ctx, o))
	}

	orders, err := s.ListBuyerOrders(ctx, r1, "BUYER", base.Add(-time.Hour), base.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "1", orders[0].OrderNumber)

	resellers, err := s.ListResellersWithWaitingOrders(ctx, base, base.Add(time.Hour))
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{r1, r2}, resellers)
}

func TestCommissionReviewAndWallet(t *testing.T) {
	ctx := context.Background()
	s := New()
	referrer := reseller_models.Reseller{ID: uuid.New(), Name: "Alice", Email: "alice@example.com"}
	require.NoError(t, s.InsertReseller(ctx, &referrer))

	c, err := commission_models.NewPendingCommission(uuid.New(), referrer.ID, uuid.New(), decimal.NewFromInt(100), decimal.RequireFromString("0.02"))
	require.NoError(t, err)
	require.NoError(t, s.InsertCommission(ctx, c))

	dup := *c
	dup.ID = uuid.New()
	assert.ErrorIs(t, s.InsertCommission(ctx, &dup), repositories.ErrDuplicate, "one commission per settlement")

	found, err := s.ListCommissions(ctx, commission_models.ListFilter{Search: "alice"})
	require.NoError(t, err)
	assert.Len(t, found, 1)

	require.NoError(t, c.Apply(commission_models.Decision{Status: commission_models.CommissionStatusApproved, At: time.Now()}))
	require.NoError(t, s.UpdateCommissionReview(ctx, c))
	assert.ErrorIs(t, s.UpdateCommissionReview(ctx, c), repositories.ErrPreconditionFailed)

	credit, err := wallet_models.NewCommissionCredit(referrer.ID, c.ID, c.Amount)
	require.NoError(t, err)
	balance, err := s.CreditWallet(ctx, credit)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(2)))

	ledger, err := s.ListWalletTransactions(ctx, referrer.ID)
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.True(t, ledger[0].BalanceAfter.Equal(decimal.NewFromInt(2)))
}
