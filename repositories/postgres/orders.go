package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/joy095/settlement/logger"
	"github.com/joy095/settlement/models/order_models"
	"github.com/joy095/settlement/repositories"
)

const orderColumns = `
	reseller_id, order_number, country_code, sku, spu, quantity, unit_price, total_price,
	sale_discount, buyer_name, payment_time, marketplace_status, settlement_status,
	settlement_amount, applied_discount_rate, settlement_remark, settlement_id, created_at, updated_at`

func scanOrder(row pgx.Row) (order_models.Order, error) {
	var o order_models.Order
	var status string
	err := row.Scan(
		&o.ResellerID, &o.OrderNumber, &o.CountryCode, &o.SKU, &o.SPU, &o.Quantity, &o.UnitPrice, &o.TotalPrice,
		&o.SaleDiscount, &o.BuyerName, &o.PaymentTime, &o.MarketplaceStatus, &status,
		&o.SettlementAmount, &o.AppliedRate, &o.SettlementRemark, &o.SettlementID, &o.CreatedAt, &o.UpdatedAt,
	)
	o.SettlementStatus = order_models.SettlementStatus(status)
	return o, err
}

func (s *Store) queryOrders(ctx context.Context, query string, args ...any) ([]order_models.Order, error) {
	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "query orders")
	}
	defer rows.Close()

	var out []order_models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, mapError(err, "scan order")
		}
		out = append(out, o)
	}
	return out, mapError(rows.Err(), "iterate orders")
}

func (s *Store) InsertOrder(ctx context.Context, o *order_models.Order) error {
	if o.SettlementStatus == "" {
		o.SettlementStatus = order_models.SettlementStatusWaiting
	}
	_, err := s.q.Exec(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, NOW(), NOW())`,
		o.ResellerID, o.OrderNumber, o.CountryCode, o.SKU, o.SPU, o.Quantity, o.UnitPrice, o.TotalPrice,
		o.SaleDiscount, o.BuyerName, o.PaymentTime, o.MarketplaceStatus, string(o.SettlementStatus),
		o.SettlementAmount, o.AppliedRate, o.SettlementRemark, o.SettlementID,
	)
	return mapError(err, fmt.Sprintf("insert order %s", o.Key()))
}

func (s *Store) GetOrder(ctx context.Context, key order_models.OrderKey) (*order_models.Order, error) {
	o, err := scanOrder(s.q.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE reseller_id = $1 AND order_number = $2`,
		key.ResellerID, key.OrderNumber))
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("order %s", key))
	}
	return &o, nil
}

func (s *Store) ListOrders(ctx context.Context, f order_models.Filter) ([]order_models.Order, error) {
	statuses := make([]string, 0, len(f.Statuses))
	for _, st := range f.Statuses {
		statuses = append(statuses, string(st))
	}
	return s.queryOrders(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE ($1::uuid IS NULL OR reseller_id = $1)
		  AND ($2::timestamptz IS NULL OR payment_time >= $2)
		  AND ($3::timestamptz IS NULL OR payment_time <= $3)
		  AND (cardinality($4::text[]) = 0 OR settlement_status = ANY($4))
		ORDER BY payment_time, order_number`,
		f.ResellerID, nullTime(f.Start), nullTime(f.End), statuses)
}

func (s *Store) LockCalculatedOrders(ctx context.Context, resellerID uuid.UUID, start, end time.Time) ([]order_models.Order, error) {
	return s.queryOrders(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE reseller_id = $1 AND settlement_status = 'calculated'
		  AND payment_time >= $2 AND payment_time <= $3
		ORDER BY payment_time, order_number
		FOR UPDATE`,
		resellerID, start, end)
}

func (s *Store) ListBuyerOrders(ctx context.Context, resellerID uuid.UUID, buyer string, start, end time.Time) ([]order_models.Order, error) {
	return s.queryOrders(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE reseller_id = $1 AND lower(btrim(buyer_name)) = lower(btrim($2))
		  AND payment_time >= $3 AND payment_time <= $4
		ORDER BY payment_time, order_number`,
		resellerID, buyer, start, end)
}

func (s *Store) ListResellersWithWaitingOrders(ctx context.Context, start, end time.Time) ([]uuid.UUID, error) {
	rows, err := s.q.Query(ctx, `
		SELECT DISTINCT reseller_id FROM orders
		WHERE settlement_status = 'waiting' AND payment_time >= $1 AND payment_time <= $2
		ORDER BY reseller_id`, start, end)
	if err != nil {
		return nil, mapError(err, "list resellers with waiting orders")
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	return ids, mapError(err, "collect reseller ids")
}

func (s *Store) ListOrdersBySettlement(ctx context.Context, settlementID uuid.UUID) ([]order_models.Order, error) {
	return s.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE settlement_id = $1 ORDER BY payment_time, order_number`,
		settlementID)
}

func (s *Store) MarkCalculated(ctx context.Context, key order_models.OrderKey, calc order_models.Calculation) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE orders
		SET settlement_status = 'calculated', settlement_amount = $3, applied_discount_rate = $4,
		    settlement_remark = $5, updated_at = NOW()
		WHERE reseller_id = $1 AND order_number = $2 AND settlement_status = 'waiting'`,
		key.ResellerID, key.OrderNumber, calc.Amount, calc.Rate, calc.Remark)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to mark order %s calculated: %v", key, err)
		return mapError(err, fmt.Sprintf("mark order %s calculated", key))
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("order %s is no longer waiting: %w", key, repositories.ErrPreconditionFailed)
	}
	return nil
}

func (s *Store) MarkSettled(ctx context.Context, key order_models.OrderKey, settlementID uuid.UUID) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE orders
		SET settlement_status = 'settled', settlement_id = $3, updated_at = NOW()
		WHERE reseller_id = $1 AND order_number = $2 AND settlement_status = 'calculated'`,
		key.ResellerID, key.OrderNumber, settlementID)
	if err != nil {
		return mapError(err, fmt.Sprintf("mark order %s settled", key))
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("order %s is no longer calculated: %w", key, repositories.ErrPreconditionFailed)
	}
	return nil
}

func (s *Store) MarkCancelled(ctx context.Context, key order_models.OrderKey, remark string) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE orders
		SET settlement_status = 'cancel', settlement_amount = NULL, settlement_remark = $3, updated_at = NOW()
		WHERE reseller_id = $1 AND order_number = $2 AND settlement_status IN ('waiting', 'calculated')`,
		key.ResellerID, key.OrderNumber, remark)
	if err != nil {
		return mapError(err, fmt.Sprintf("cancel order %s", key))
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	current, err := s.GetOrder(ctx, key)
	if err != nil {
		return err
	}
	return current.SettlementStatus.CheckTransition(order_models.SettlementStatusCancel)
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
