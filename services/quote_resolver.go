package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/joy095/settlement/logger"
	"github.com/joy095/settlement/models/quote_models"
	"github.com/joy095/settlement/repositories"
)

// QuoteQuery identifies the cost basis wanted. ResellerID is optional; when set, that
// reseller's own quote rows are preferred.
type QuoteQuery struct {
	ResellerID  uuid.UUID
	ProductID   string
	CountryCode string
	Quantity    int
}

// QuoteResolver finds the cost quote for a product, destination and quantity.
//
// Tier policy: nearest-below. Among the rows for the exact (product, country) pair the row
// with the largest quantity not above the requested quantity wins; an exact tier is the
// nearest-below at distance zero.
type QuoteResolver struct {
	repo      repositories.QuoteRepository
	countries map[string]struct{}
}

func NewQuoteResolver(repo repositories.QuoteRepository, supportedCountries []string) *QuoteResolver {
	countries := make(map[string]struct{}, len(supportedCountries))
	for _, c := range supportedCountries {
		countries[strings.ToUpper(c)] = struct{}{}
	}
	return &QuoteResolver{repo: repo, countries: countries}
}

func (r *QuoteResolver) validate(q *QuoteQuery) error {
	q.ProductID = strings.TrimSpace(q.ProductID)
	q.CountryCode = strings.ToUpper(strings.TrimSpace(q.CountryCode))
	if q.ProductID == "" {
		return newValidationError("productId", "is required")
	}
	if q.Quantity <= 0 {
		return newValidationError("quantity", "must be a positive integer, got %d", q.Quantity)
	}
	if _, ok := r.countries[q.CountryCode]; !ok {
		return newValidationError("countryCode", "%q is not a supported country", q.CountryCode)
	}
	return nil
}

// Resolve returns the matching quote, or ErrNoPriceInfo / ErrPriceCalculationError.
func (r *QuoteResolver) Resolve(ctx context.Context, q QuoteQuery) (*quote_models.Quote, error) {
	if err := r.validate(&q); err != nil {
		return nil, err
	}

	rows, err := r.repo.ListQuotes(ctx, q.ProductID, q.CountryCode)
	if err != nil {
		return nil, fmt.Errorf("failed to load quotes for %s/%s: %w", q.ProductID, q.CountryCode, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no quote for product %s to %s", ErrNoPriceInfo, q.ProductID, q.CountryCode)
	}

	candidates := rows
	if q.ResellerID != uuid.Nil {
		var own []quote_models.Quote
		for _, row := range rows {
			if row.ResellerID == q.ResellerID {
				own = append(own, row)
			}
		}
		if len(own) > 0 {
			candidates = own
		}
	}

	var best *quote_models.Quote
	for i := range candidates {
		c := &candidates[i]
		if c.Quantity > q.Quantity {
			continue
		}
		if best == nil || c.Quantity > best.Quantity ||
			(c.Quantity == best.Quantity && c.CreatedAt.Before(best.CreatedAt)) {
			best = c
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: no quote tier at or below quantity %d for product %s to %s",
			ErrNoPriceInfo, q.Quantity, q.ProductID, q.CountryCode)
	}

	if total := best.TotalPrice(); !total.IsPositive() {
		return nil, fmt.Errorf("%w: quote %s has non-positive total %s", ErrPriceCalculationError, best.ID, total)
	}

	out := *best
	return &out, nil
}

// AddQuote stores a new quote row after checking its country against the configured list.
func (r *QuoteResolver) AddQuote(ctx context.Context, req quote_models.QuoteRequest) (*quote_models.Quote, error) {
	quote, err := quote_models.NewQuote(req)
	if err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}
	if _, ok := r.countries[quote.CountryCode]; !ok {
		return nil, newValidationError("country_code", "%q is not a supported country", quote.CountryCode)
	}
	if err := r.repo.InsertQuote(ctx, quote); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, newValidationError("quantity", "a quote for this product, country and quantity already exists")
		}
		return nil, err
	}
	logger.InfoLogger.Infof("Quote %s added for %s/%s tier %d", quote.ID, quote.ProductID, quote.CountryCode, quote.Quantity)
	return quote, nil
}
