package postgres

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/joy095/settlement/models/quote_models"
)

const quoteColumns = `
	id, reseller_id, product_id, country_code, quantity, product_cost, shipping_cost,
	packing_cost, vat_cost, manual_total, created_at, updated_at`

func (s *Store) ListQuotes(ctx context.Context, productID, countryCode string) ([]quote_models.Quote, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+quoteColumns+` FROM quotes
		WHERE product_id = $1 AND country_code = $2
		ORDER BY quantity`, productID, strings.ToUpper(countryCode))
	if err != nil {
		return nil, mapError(err, "list quotes")
	}
	quotes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (quote_models.Quote, error) {
		var q quote_models.Quote
		err := row.Scan(&q.ID, &q.ResellerID, &q.ProductID, &q.CountryCode, &q.Quantity, &q.ProductCost,
			&q.ShippingCost, &q.PackingCost, &q.VatCost, &q.ManualTotal, &q.CreatedAt, &q.UpdatedAt)
		return q, err
	})
	return quotes, mapError(err, "scan quotes")
}

func (s *Store) InsertQuote(ctx context.Context, q *quote_models.Quote) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO quotes (`+quoteColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		q.ID, q.ResellerID, q.ProductID, q.CountryCode, q.Quantity, q.ProductCost, q.ShippingCost,
		q.PackingCost, q.VatCost, q.ManualTotal, q.CreatedAt, q.UpdatedAt)
	return mapError(err, "insert quote")
}
