package wallet_models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const TransactionTypeCommission = "commission"

// WalletTransaction is one ledger line against a user's wallet balance.
type WalletTransaction struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	Amount       decimal.Decimal `json:"amount"`
	Type         string          `json:"type"`
	ReferenceID  uuid.UUID       `json:"reference_id"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	CreatedAt    time.Time       `json:"created_at"`
}

func NewCommissionCredit(userID, commissionID uuid.UUID, amount decimal.Decimal) (*WalletTransaction, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for wallet transaction: %w", err)
	}
	return &WalletTransaction{
		ID:          id,
		UserID:      userID,
		Amount:      amount,
		Type:        TransactionTypeCommission,
		ReferenceID: commissionID,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
