package quote_models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Quote is the cost basis of shipping Quantity units of ProductID to CountryCode.
type Quote struct {
	ID           uuid.UUID           `json:"id"`
	ResellerID   uuid.UUID           `json:"reseller_id"`
	ProductID    string              `json:"product_id"`
	CountryCode  string              `json:"country_code"`
	Quantity     int                 `json:"quantity"`
	ProductCost  decimal.Decimal     `json:"product_cost"`
	ShippingCost decimal.Decimal     `json:"shipping_cost"`
	PackingCost  decimal.Decimal     `json:"packing_cost"`
	VatCost      decimal.Decimal     `json:"vat_cost"`
	ManualTotal  decimal.NullDecimal `json:"manual_total"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// QuoteRequest is the admin payload for creating a quote row.
type QuoteRequest struct {
	ResellerID   uuid.UUID           `json:"reseller_id" binding:"required"`
	ProductID    string              `json:"product_id" binding:"required"`
	CountryCode  string              `json:"country_code" binding:"required,len=2"`
	Quantity     int                 `json:"quantity" binding:"required,gte=1"`
	ProductCost  decimal.Decimal     `json:"product_cost"`
	ShippingCost decimal.Decimal     `json:"shipping_cost"`
	PackingCost  decimal.Decimal     `json:"packing_cost"`
	VatCost      decimal.Decimal     `json:"vat_cost"`
	ManualTotal  decimal.NullDecimal `json:"manual_total"`
}

// NewQuote builds a quote from an admin request.
func NewQuote(req QuoteRequest) (*Quote, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for quote: %w", err)
	}
	now := time.Now().UTC()
	q := &Quote{
		ID:           id,
		ResellerID:   req.ResellerID,
		ProductID:    strings.TrimSpace(req.ProductID),
		CountryCode:  strings.ToUpper(strings.TrimSpace(req.CountryCode)),
		Quantity:     req.Quantity,
		ProductCost:  req.ProductCost,
		ShippingCost: req.ShippingCost,
		PackingCost:  req.PackingCost,
		VatCost:      req.VatCost,
		ManualTotal:  req.ManualTotal,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if q.ProductID == "" {
		return nil, fmt.Errorf("product_id is required")
	}
	if q.Quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1")
	}
	for name, v := range map[string]decimal.Decimal{
		"product_cost": q.ProductCost, "shipping_cost": q.ShippingCost,
		"packing_cost": q.PackingCost, "vat_cost": q.VatCost,
	} {
		if v.IsNegative() {
			return nil, fmt.Errorf("%s must not be negative", name)
		}
		if !v.Equal(v.Round(2)) {
			return nil, fmt.Errorf("%s allows at most 2 decimal places, got %s", name, v)
		}
	}
	if q.ManualTotal.Valid && !q.ManualTotal.Decimal.Equal(q.ManualTotal.Decimal.Round(2)) {
		return nil, fmt.Errorf("manual_total allows at most 2 decimal places, got %s", q.ManualTotal.Decimal)
	}
	return q, nil
}

// TotalPrice is the manual override when present, else the sum of the four costs.
func (q *Quote) TotalPrice() decimal.Decimal {
	if q.ManualTotal.Valid {
		return q.ManualTotal.Decimal
	}
	return q.ProductCost.Add(q.ShippingCost).Add(q.PackingCost).Add(q.VatCost)
}

// UnitCost spreads the tier total over its quantity.
func (q *Quote) UnitCost() decimal.Decimal {
	if q.Quantity <= 0 {
		return decimal.Zero
	}
	return q.TotalPrice().Div(decimal.NewFromInt(int64(q.Quantity)))
}

// QuoteView adds the computed total for JSON responses.
type QuoteView struct {
	Quote
	TotalPrice decimal.Decimal `json:"total_price"`
}

func (q *Quote) View() QuoteView {
	return QuoteView{Quote: *q, TotalPrice: q.TotalPrice()}
}
