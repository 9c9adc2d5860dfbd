package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/joy095/settlement/models/commission_models"
	"github.com/joy095/settlement/models/discount_models"
	"github.com/joy095/settlement/models/order_models"
	"github.com/joy095/settlement/models/quote_models"
	"github.com/joy095/settlement/models/reseller_models"
	"github.com/joy095/settlement/models/settlement_models"
	"github.com/joy095/settlement/models/wallet_models"
	"github.com/shopspring/decimal"
)

// OrderRepository is the store of imported orders.
type OrderRepository interface {
	InsertOrder(ctx context.Context, order *order_models.Order) error
	GetOrder(ctx context.Context, key order_models.OrderKey) (*order_models.Order, error)
	ListOrders(ctx context.Context, filter order_models.Filter) ([]order_models.Order, error)
	// LockCalculatedOrders lists calculated orders and, in Postgres, locks them for the
	// surrounding transaction.
	LockCalculatedOrders(ctx context.Context, resellerID uuid.UUID, start, end time.Time) ([]order_models.Order, error)
	ListBuyerOrders(ctx context.Context, resellerID uuid.UUID, buyer string, start, end time.Time) ([]order_models.Order, error)
	ListResellersWithWaitingOrders(ctx context.Context, start, end time.Time) ([]uuid.UUID, error)
	ListOrdersBySettlement(ctx context.Context, settlementID uuid.UUID) ([]order_models.Order, error)
	// MarkCalculated applies calc only when the order is still waiting.
	MarkCalculated(ctx context.Context, key order_models.OrderKey, calc order_models.Calculation) error
	// MarkSettled flips a calculated order to settled under settlementID.
	MarkSettled(ctx context.Context, key order_models.OrderKey, settlementID uuid.UUID) error
	// MarkCancelled moves a waiting or calculated order to cancel.
	MarkCancelled(ctx context.Context, key order_models.OrderKey, remark string) error
}

type DiscountRuleRepository interface {
	ListDiscountRules(ctx context.Context, resellerID uuid.UUID) ([]discount_models.DiscountRule, error)
	GetDiscountRule(ctx context.Context, resellerID, ruleID uuid.UUID) (*discount_models.DiscountRule, error)
	// LockDiscountRules serialises rule writers of one reseller for the surrounding transaction.
	LockDiscountRules(ctx context.Context, resellerID uuid.UUID) error
	InsertDiscountRule(ctx context.Context, rule *discount_models.DiscountRule) error
	UpdateDiscountRule(ctx context.Context, rule *discount_models.DiscountRule) error
	DeleteDiscountRule(ctx context.Context, resellerID, ruleID uuid.UUID) error
}

type QuoteRepository interface {
	ListQuotes(ctx context.Context, productID, countryCode string) ([]quote_models.Quote, error)
	InsertQuote(ctx context.Context, quote *quote_models.Quote) error
}

type SettlementRepository interface {
	InsertSettlementRecord(ctx context.Context, record *settlement_models.SettlementRecord) error
	GetSettlementRecord(ctx context.Context, id uuid.UUID) (*settlement_models.SettlementRecord, error)
	ListSettlementRecords(ctx context.Context, resellerID *uuid.UUID, limit, offset int) ([]settlement_models.SettlementRecord, error)
}

type CommissionRepository interface {
	InsertCommission(ctx context.Context, c *commission_models.Commission) error
	GetCommission(ctx context.Context, id uuid.UUID) (*commission_models.Commission, error)
	GetCommissionBySettlement(ctx context.Context, settlementID uuid.UUID) (*commission_models.Commission, error)
	ListCommissions(ctx context.Context, filter commission_models.ListFilter) ([]commission_models.Commission, error)
	// UpdateCommissionReview persists a decision only when the row is still pending.
	UpdateCommissionReview(ctx context.Context, c *commission_models.Commission) error
}

type ResellerRepository interface {
	InsertReseller(ctx context.Context, r *reseller_models.Reseller) error
	GetReseller(ctx context.Context, id uuid.UUID) (*reseller_models.Reseller, error)
	// CreditWallet adds amount to the user's balance and writes the ledger row.
	CreditWallet(ctx context.Context, tx *wallet_models.WalletTransaction) (decimal.Decimal, error)
	ListWalletTransactions(ctx context.Context, userID uuid.UUID) ([]wallet_models.WalletTransaction, error)
}

// Repository is the whole store. InTx runs fn against a transactional view; fn's error
// rolls every write back.
type Repository interface {
	OrderRepository
	DiscountRuleRepository
	QuoteRepository
	SettlementRepository
	CommissionRepository
	ResellerRepository

	InTx(ctx context.Context, fn func(tx Repository) error) error
}
