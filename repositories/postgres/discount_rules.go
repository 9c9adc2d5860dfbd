package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/joy095/settlement/models/discount_models"
	"github.com/joy095/settlement/repositories"
)

const ruleColumns = `id, reseller_id, min_quantity, max_quantity, discount_rate, created_at, updated_at`

func scanRule(row pgx.Row) (discount_models.DiscountRule, error) {
	var r discount_models.DiscountRule
	err := row.Scan(&r.ID, &r.ResellerID, &r.MinQuantity, &r.MaxQuantity, &r.DiscountRate, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func (s *Store) ListDiscountRules(ctx context.Context, resellerID uuid.UUID) ([]discount_models.DiscountRule, error) {
	rows, err := s.q.Query(ctx,
		`SELECT `+ruleColumns+` FROM discount_rules WHERE reseller_id = $1 ORDER BY min_quantity`, resellerID)
	if err != nil {
		return nil, mapError(err, "list discount rules")
	}
	defer rows.Close()

	var out []discount_models.DiscountRule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, mapError(err, "scan discount rule")
		}
		out = append(out, r)
	}
	return out, mapError(rows.Err(), "iterate discount rules")
}

func (s *Store) GetDiscountRule(ctx context.Context, resellerID, ruleID uuid.UUID) (*discount_models.DiscountRule, error) {
	r, err := scanRule(s.q.QueryRow(ctx,
		`SELECT `+ruleColumns+` FROM discount_rules WHERE reseller_id = $1 AND id = $2`, resellerID, ruleID))
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("discount rule %s", ruleID))
	}
	return &r, nil
}

// LockDiscountRules takes a transaction-scoped advisory lock keyed by reseller so two
// concurrent writers cannot both pass the overlap check.
func (s *Store) LockDiscountRules(ctx context.Context, resellerID uuid.UUID) error {
	_, err := s.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('discount_rules:' || $1::text))`, resellerID)
	return mapError(err, "lock discount rules")
}

func (s *Store) InsertDiscountRule(ctx context.Context, r *discount_models.DiscountRule) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO discount_rules (`+ruleColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.ID, r.ResellerID, r.MinQuantity, r.MaxQuantity, r.DiscountRate, r.CreatedAt, r.UpdatedAt)
	return mapError(err, "insert discount rule")
}

func (s *Store) UpdateDiscountRule(ctx context.Context, r *discount_models.DiscountRule) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE discount_rules
		SET min_quantity = $3, max_quantity = $4, discount_rate = $5, updated_at = $6
		WHERE reseller_id = $1 AND id = $2`,
		r.ResellerID, r.ID, r.MinQuantity, r.MaxQuantity, r.DiscountRate, r.UpdatedAt)
	if err != nil {
		return mapError(err, "update discount rule")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("discount rule %s: %w", r.ID, repositories.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteDiscountRule(ctx context.Context, resellerID, ruleID uuid.UUID) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM discount_rules WHERE reseller_id = $1 AND id = $2`, resellerID, ruleID)
	if err != nil {
		return mapError(err, "delete discount rule")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("discount rule %s: %w", ruleID, repositories.ErrNotFound)
	}
	return nil
}
