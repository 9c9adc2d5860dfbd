package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/joy095/settlement/models/reseller_models"
	"github.com/joy095/settlement/models/wallet_models"
	"github.com/shopspring/decimal"
)

func (s *Store) InsertReseller(ctx context.Context, r *reseller_models.Reseller) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO resellers (id, name, email, referrer_id, wallet_balance, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		r.ID, r.Name, r.Email, r.ReferrerID, r.WalletBalance, r.CreatedAt)
	return mapError(err, "insert reseller")
}

func (s *Store) GetReseller(ctx context.Context, id uuid.UUID) (*reseller_models.Reseller, error) {
	var r reseller_models.Reseller
	err := s.q.QueryRow(ctx, `
		SELECT id, name, email, referrer_id, wallet_balance, created_at
		FROM resellers WHERE id = $1`, id).Scan(
		&r.ID, &r.Name, &r.Email, &r.ReferrerID, &r.WalletBalance, &r.CreatedAt)
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("reseller %s", id))
	}
	return &r, nil
}

func (s *Store) CreditWallet(ctx context.Context, tx *wallet_models.WalletTransaction) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := s.q.QueryRow(ctx, `
		UPDATE resellers SET wallet_balance = wallet_balance + $2
		WHERE id = $1
		RETURNING wallet_balance`, tx.UserID, tx.Amount).Scan(&balance)
	if err != nil {
		return decimal.Zero, mapError(err, fmt.Sprintf("credit wallet of %s", tx.UserID))
	}

	tx.BalanceAfter = balance
	_, err = s.q.Exec(ctx, `
		INSERT INTO wallet_transactions (id, user_id, amount, type, reference_id, balance_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		tx.ID, tx.UserID, tx.Amount, tx.Type, tx.ReferenceID, tx.BalanceAfter, tx.CreatedAt)
	if err != nil {
		return decimal.Zero, mapError(err, "insert wallet transaction")
	}
	return balance, nil
}

func (s *Store) ListWalletTransactions(ctx context.Context, userID uuid.UUID) ([]wallet_models.WalletTransaction, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id, user_id, amount, type, reference_id, balance_after, created_at
		FROM wallet_transactions WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, mapError(err, "list wallet transactions")
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (wallet_models.WalletTransaction, error) {
		var t wallet_models.WalletTransaction
		err := row.Scan(&t.ID, &t.UserID, &t.Amount, &t.Type, &t.ReferenceID, &t.BalanceAfter, &t.CreatedAt)
		return t, err
	})
	return out, mapError(err, "scan wallet transactions")
}
