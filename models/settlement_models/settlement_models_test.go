package settlement_models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joy095/settlement/models/order_models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func settled(recordID uuid.UUID, amount string) order_models.Order {
	id := recordID
	return order_models.Order{
		OrderNumber:      uuid.NewString(),
		SettlementStatus: order_models.SettlementStatusSettled,
		SettlementAmount: decimal.NewNullDecimal(decimal.RequireFromString(amount)),
		SettlementID:     &id,
	}
}

func TestAggregate(t *testing.T) {
	orders := []order_models.Order{
		{SettlementAmount: decimal.NewNullDecimal(decimal.RequireFromString("18"))},
		{SettlementAmount: decimal.NewNullDecimal(decimal.RequireFromString("45"))},
		{},
	}
	total, count := Aggregate(orders)
	assert.Equal(t, 3, count)
	assert.True(t, total.Equal(decimal.NewFromInt(63)))
}

func TestNewCompletedRecordAndReconcile(t *testing.T) {
	reseller := uuid.New()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	record, err := NewCompletedRecord(reseller, start, start.Add(time.Hour), nil, "march")
	require.NoError(t, err)
	assert.Equal(t, RecordStatusCompleted, record.Status)

	orders := []order_models.Order{settled(record.ID, "10.10"), settled(record.ID, "0.20")}
	record.TotalAmount, record.OrderCount = Aggregate(orders)
	assert.NoError(t, record.Reconcile(orders))

	assert.Error(t, record.Reconcile(orders[:1]), "count mismatch")

	tampered := append([]order_models.Order(nil), orders...)
	tampered[0].SettlementAmount = decimal.NewNullDecimal(decimal.RequireFromString("99"))
	assert.Error(t, record.Reconcile(tampered), "amount mismatch")

	foreign := append([]order_models.Order(nil), orders...)
	foreign[1] = settled(uuid.New(), "0.20")
	assert.Error(t, record.Reconcile(foreign), "order of another record")
}
