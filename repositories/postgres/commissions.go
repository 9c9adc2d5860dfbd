package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/joy095/settlement/models/commission_models"
	"github.com/joy095/settlement/repositories"
)

const commissionColumns = `
	c.id, c.settlement_id, c.referrer_id, c.referee_id, c.settlement_amount, c.commission_amount,
	c.commission_rate, c.status, c.reject_reason, c.reviewed_by, c.reviewed_at, c.created_at, c.updated_at`

func scanCommission(row pgx.Row) (commission_models.Commission, error) {
	var c commission_models.Commission
	var status string
	err := row.Scan(&c.ID, &c.SettlementID, &c.ReferrerID, &c.RefereeID, &c.SettlementAmount, &c.Amount,
		&c.Rate, &status, &c.RejectReason, &c.ReviewedBy, &c.ReviewedAt, &c.CreatedAt, &c.UpdatedAt)
	c.Status = commission_models.CommissionStatus(status)
	return c, err
}

func (s *Store) InsertCommission(ctx context.Context, c *commission_models.Commission) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO commissions (
			id, settlement_id, referrer_id, referee_id, settlement_amount, commission_amount,
			commission_rate, status, reject_reason, reviewed_by, reviewed_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		c.ID, c.SettlementID, c.ReferrerID, c.RefereeID, c.SettlementAmount, c.Amount,
		c.Rate, string(c.Status), c.RejectReason, c.ReviewedBy, c.ReviewedAt, c.CreatedAt, c.UpdatedAt)
	return mapError(err, fmt.Sprintf("insert commission for settlement %s", c.SettlementID))
}

func (s *Store) GetCommission(ctx context.Context, id uuid.UUID) (*commission_models.Commission, error) {
	c, err := scanCommission(s.q.QueryRow(ctx, `SELECT `+commissionColumns+` FROM commissions c WHERE c.id = $1`, id))
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("commission %s", id))
	}
	return &c, nil
}

func (s *Store) GetCommissionBySettlement(ctx context.Context, settlementID uuid.UUID) (*commission_models.Commission, error) {
	c, err := scanCommission(s.q.QueryRow(ctx,
		`SELECT `+commissionColumns+` FROM commissions c WHERE c.settlement_id = $1`, settlementID))
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("commission for settlement %s", settlementID))
	}
	return &c, nil
}

func (s *Store) ListCommissions(ctx context.Context, f commission_models.ListFilter) ([]commission_models.Commission, error) {
	var status *string
	if f.Status != nil {
		v := string(*f.Status)
		status = &v
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.q.Query(ctx, `
		SELECT `+commissionColumns+`
		FROM commissions c
		LEFT JOIN resellers referrer ON referrer.id = c.referrer_id
		LEFT JOIN resellers referee ON referee.id = c.referee_id
		WHERE ($1::text IS NULL OR c.status = $1)
		  AND ($2 = '' OR c.id::text LIKE $2 || '%' OR c.settlement_id::text LIKE $2 || '%'
		       OR referrer.name ILIKE '%' || $2 || '%' OR referee.name ILIKE '%' || $2 || '%'
		       OR referrer.email ILIKE '%' || $2 || '%' OR referee.email ILIKE '%' || $2 || '%')
		ORDER BY c.created_at DESC
		LIMIT $3 OFFSET $4`, status, f.Search, limit, f.Offset)
	if err != nil {
		return nil, mapError(err, "list commissions")
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (commission_models.Commission, error) {
		return scanCommission(row)
	})
	return out, mapError(err, "scan commissions")
}

func (s *Store) UpdateCommissionReview(ctx context.Context, c *commission_models.Commission) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE commissions
		SET status = $2, reject_reason = $3, reviewed_by = $4, reviewed_at = $5, updated_at = $6
		WHERE id = $1 AND status = 'pending'`,
		c.ID, string(c.Status), c.RejectReason, c.ReviewedBy, c.ReviewedAt, c.UpdatedAt)
	if err != nil {
		return mapError(err, fmt.Sprintf("review commission %s", c.ID))
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("commission %s is no longer pending: %w", c.ID, repositories.ErrPreconditionFailed)
	}
	return nil
}
