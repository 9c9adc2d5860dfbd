package reseller_models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Reseller is the settled client. ReferrerID is the single hop consulted for commissions.
type Reseller struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	ReferrerID    *uuid.UUID      `json:"referrer_id,omitempty"`
	WalletBalance decimal.Decimal `json:"wallet_balance"`
	CreatedAt     time.Time       `json:"created_at"`
}
