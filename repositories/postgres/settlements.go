package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/joy095/settlement/models/settlement_models"
)

const recordColumns = `id, reseller_id, start_date, end_date, total_amount, order_count, status, notes, created_at`

func scanRecord(row pgx.Row) (settlement_models.SettlementRecord, error) {
	var r settlement_models.SettlementRecord
	var status string
	err := row.Scan(&r.ID, &r.ResellerID, &r.StartDate, &r.EndDate, &r.TotalAmount, &r.OrderCount, &status, &r.Notes, &r.CreatedAt)
	r.Status = settlement_models.RecordStatus(status)
	return r, err
}

func (s *Store) InsertSettlementRecord(ctx context.Context, r *settlement_models.SettlementRecord) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO settlement_records (`+recordColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		r.ID, r.ResellerID, r.StartDate, r.EndDate, r.TotalAmount, r.OrderCount, string(r.Status), r.Notes, r.CreatedAt)
	return mapError(err, "insert settlement record")
}

func (s *Store) GetSettlementRecord(ctx context.Context, id uuid.UUID) (*settlement_models.SettlementRecord, error) {
	r, err := scanRecord(s.q.QueryRow(ctx, `SELECT `+recordColumns+` FROM settlement_records WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("settlement record %s", id))
	}
	return &r, nil
}

func (s *Store) ListSettlementRecords(ctx context.Context, resellerID *uuid.UUID, limit, offset int) ([]settlement_models.SettlementRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.q.Query(ctx, `
		SELECT `+recordColumns+` FROM settlement_records
		WHERE ($1::uuid IS NULL OR reseller_id = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, resellerID, limit, offset)
	if err != nil {
		return nil, mapError(err, "list settlement records")
	}
	defer rows.Close()

	var out []settlement_models.SettlementRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, mapError(err, "scan settlement record")
		}
		out = append(out, r)
	}
	return out, mapError(rows.Err(), "iterate settlement records")
}
