// Package memory is an in-process Repository used by tests and by local runs without
// DATABASE_URL.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/joy095/settlement/models/commission_models"
	"github.com/joy095/settlement/models/discount_models"
	"github.com/joy095/settlement/models/order_models"
	"github.com/joy095/settlement/models/quote_models"
	"github.com/joy095/settlement/models/reseller_models"
	"github.com/joy095/settlement/models/settlement_models"
	"github.com/joy095/settlement/models/wallet_models"
	"github.com/joy095/settlement/repositories"
	"github.com/shopspring/decimal"
)

type state struct {
	orders      map[order_models.OrderKey]order_models.Order
	rules       map[uuid.UUID]discount_models.DiscountRule
	quotes      map[uuid.UUID]quote_models.Quote
	records     map[uuid.UUID]settlement_models.SettlementRecord
	commissions map[uuid.UUID]commission_models.Commission
	resellers   map[uuid.UUID]reseller_models.Reseller
	ledger      []wallet_models.WalletTransaction
}

func newState() *state {
	return &state{
		orders:      map[order_models.OrderKey]order_models.Order{},
		rules:       map[uuid.UUID]discount_models.DiscountRule{},
		quotes:      map[uuid.UUID]quote_models.Quote{},
		records:     map[uuid.UUID]settlement_models.SettlementRecord{},
		commissions: map[uuid.UUID]commission_models.Commission{},
		resellers:   map[uuid.UUID]reseller_models.Reseller{},
	}
}

func (st *state) clone() *state {
	c := newState()
	for k, v := range st.orders {
		c.orders[k] = v
	}
	for k, v := range st.rules {
		c.rules[k] = v
	}
	for k, v := range st.quotes {
		c.quotes[k] = v
	}
	for k, v := range st.records {
		c.records[k] = v
	}
	for k, v := range st.commissions {
		c.commissions[k] = v
	}
	for k, v := range st.resellers {
		c.resellers[k] = v
	}
	c.ledger = append([]wallet_models.WalletTransaction(nil), st.ledger...)
	return c
}

// Store keeps all rows in maps behind one mutex. A transaction works on a copy of the state
// and swaps it in on success.
type Store struct {
	mu   *sync.Mutex
	st   *state
	inTx bool
}

var _ repositories.Repository = (*Store)(nil)

func New() *Store {
	return &Store{mu: &sync.Mutex{}, st: newState()}
}

func (s *Store) do(fn func(st *state) error) error {
	if !s.inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(s.st)
}

func (s *Store) InTx(ctx context.Context, fn func(tx repositories.Repository) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.st.clone()
	if err := fn(&Store{mu: s.mu, st: work, inTx: true}); err != nil {
		return err
	}
	*s.st = *work
	return nil
}

// ---- orders ----

func (s *Store) InsertOrder(_ context.Context, order *order_models.Order) error {
	return s.do(func(st *state) error {
		key := order.Key()
		if _, ok := st.orders[key]; ok {
			return fmt.Errorf("order %s: %w", key, repositories.ErrDuplicate)
		}
		o := *order
		if o.SettlementStatus == "" {
			o.SettlementStatus = order_models.SettlementStatusWaiting
		}
		now := time.Now().UTC()
		if o.CreatedAt.IsZero() {
			o.CreatedAt = now
		}
		o.UpdatedAt = now
		st.orders[key] = o
		return nil
	})
}

func (s *Store) GetOrder(_ context.Context, key order_models.OrderKey) (*order_models.Order, error) {
	var out *order_models.Order
	err := s.do(func(st *state) error {
		o, ok := st.orders[key]
		if !ok {
			return fmt.Errorf("order %s: %w", key, repositories.ErrNotFound)
		}
		out = &o
		return nil
	})
	return out, err
}

func (s *Store) ListOrders(_ context.Context, filter order_models.Filter) ([]order_models.Order, error) {
	var out []order_models.Order
	err := s.do(func(st *state) error {
		for _, o := range st.orders {
			if filter.Matches(&o) {
				out = append(out, o)
			}
		}
		return nil
	})
	sortOrders(out)
	return out, err
}

func (s *Store) LockCalculatedOrders(ctx context.Context, resellerID uuid.UUID, start, end time.Time) ([]order_models.Order, error) {
	return s.ListOrders(ctx, order_models.Filter{
		ResellerID: &resellerID,
		Start:      start,
		End:        end,
		Statuses:   []order_models.SettlementStatus{order_models.SettlementStatusCalculated},
	})
}

func (s *Store) ListBuyerOrders(_ context.Context, resellerID uuid.UUID, buyer string, start, end time.Time) ([]order_models.Order, error) {
	var out []order_models.Order
	buyer = normalizeBuyer(buyer)
	filter := order_models.Filter{ResellerID: &resellerID, Start: start, End: end}
	err := s.do(func(st *state) error {
		for _, o := range st.orders {
			if filter.Matches(&o) && normalizeBuyer(o.BuyerName) == buyer {
				out = append(out, o)
			}
		}
		return nil
	})
	sortOrders(out)
	return out, err
}

func (s *Store) ListResellersWithWaitingOrders(_ context.Context, start, end time.Time) ([]uuid.UUID, error) {
	seen := map[uuid.UUID]struct{}{}
	filter := order_models.Filter{Start: start, End: end, Statuses: []order_models.SettlementStatus{order_models.SettlementStatusWaiting}}
	err := s.do(func(st *state) error {
		for _, o := range st.orders {
			if filter.Matches(&o) {
				seen[o.ResellerID] = struct{}{}
			}
		}
		return nil
	})
	out := make([]uuid.UUID, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out, err
}

func (s *Store) ListOrdersBySettlement(_ context.Context, settlementID uuid.UUID) ([]order_models.Order, error) {
	var out []order_models.Order
	err := s.do(func(st *state) error {
		for _, o := range st.orders {
			if o.SettlementID != nil && *o.SettlementID == settlementID {
				out = append(out, o)
			}
		}
		return nil
	})
	sortOrders(out)
	return out, err
}

func (s *Store) transition(key order_models.OrderKey, from order_models.SettlementStatus, to order_models.SettlementStatus, apply func(o *order_models.Order)) error {
	return s.do(func(st *state) error {
		o, ok := st.orders[key]
		if !ok {
			return fmt.Errorf("order %s: %w", key, repositories.ErrNotFound)
		}
		if o.SettlementStatus != from {
			return fmt.Errorf("order %s is %s, expected %s: %w", key, o.SettlementStatus, from, repositories.ErrPreconditionFailed)
		}
		if err := o.SettlementStatus.CheckTransition(to); err != nil {
			return err
		}
		o.SettlementStatus = to
		o.UpdatedAt = time.Now().UTC()
		apply(&o)
		st.orders[key] = o
		return nil
	})
}

func (s *Store) MarkCalculated(_ context.Context, key order_models.OrderKey, calc order_models.Calculation) error {
	return s.transition(key, order_models.SettlementStatusWaiting, order_models.SettlementStatusCalculated, func(o *order_models.Order) {
		o.SettlementAmount = decimal.NewNullDecimal(calc.Amount)
		o.AppliedRate = calc.Rate
		o.SettlementRemark = calc.Remark
	})
}

func (s *Store) MarkSettled(_ context.Context, key order_models.OrderKey, settlementID uuid.UUID) error {
	return s.transition(key, order_models.SettlementStatusCalculated, order_models.SettlementStatusSettled, func(o *order_models.Order) {
		id := settlementID
		o.SettlementID = &id
	})
}

func (s *Store) MarkCancelled(_ context.Context, key order_models.OrderKey, remark string) error {
	return s.do(func(st *state) error {
		o, ok := st.orders[key]
		if !ok {
			return fmt.Errorf("order %s: %w", key, repositories.ErrNotFound)
		}
		if err := o.SettlementStatus.CheckTransition(order_models.SettlementStatusCancel); err != nil {
			return err
		}
		o.SettlementStatus = order_models.SettlementStatusCancel
		o.SettlementAmount = decimal.NullDecimal{}
		o.SettlementRemark = remark
		o.UpdatedAt = time.Now().UTC()
		st.orders[key] = o
		return nil
	})
}

// ---- discount rules ----

func (s *Store) ListDiscountRules(_ context.Context, resellerID uuid.UUID) ([]discount_models.DiscountRule, error) {
	var out []discount_models.DiscountRule
	err := s.do(func(st *state) error {
		for _, r := range st.rules {
			if r.ResellerID == resellerID {
				out = append(out, r)
			}
		}
		return nil
	})
	discount_models.SortByRange(out)
	return out, err
}

func (s *Store) GetDiscountRule(_ context.Context, resellerID, ruleID uuid.UUID) (*discount_models.DiscountRule, error) {
	var out *discount_models.DiscountRule
	err := s.do(func(st *state) error {
		r, ok := st.rules[ruleID]
		if !ok || r.ResellerID != resellerID {
			return fmt.Errorf("discount rule %s: %w", ruleID, repositories.ErrNotFound)
		}
		out = &r
		return nil
	})
	return out, err
}

// LockDiscountRules is a no-op: transactions already hold the store mutex.
func (s *Store) LockDiscountRules(context.Context, uuid.UUID) error { return nil }

func (s *Store) InsertDiscountRule(_ context.Context, rule *discount_models.DiscountRule) error {
	return s.do(func(st *state) error {
		if _, ok := st.rules[rule.ID]; ok {
			return fmt.Errorf("discount rule %s: %w", rule.ID, repositories.ErrDuplicate)
		}
		st.rules[rule.ID] = *rule
		return nil
	})
}

func (s *Store) UpdateDiscountRule(_ context.Context, rule *discount_models.DiscountRule) error {
	return s.do(func(st *state) error {
		cur, ok := st.rules[rule.ID]
		if !ok || cur.ResellerID != rule.ResellerID {
			return fmt.Errorf("discount rule %s: %w", rule.ID, repositories.ErrNotFound)
		}
		st.rules[rule.ID] = *rule
		return nil
	})
}

func (s *Store) DeleteDiscountRule(_ context.Context, resellerID, ruleID uuid.UUID) error {
	return s.do(func(st *state) error {
		cur, ok := st.rules[ruleID]
		if !ok || cur.ResellerID != resellerID {
			return fmt.Errorf("discount rule %s: %w", ruleID, repositories.ErrNotFound)
		}
		delete(st.rules, ruleID)
		return nil
	})
}

// ---- quotes ----

func (s *Store) ListQuotes(_ context.Context, productID, countryCode string) ([]quote_models.Quote, error) {
	var out []quote_models.Quote
	countryCode = strings.ToUpper(countryCode)
	err := s.do(func(st *state) error {
		for _, q := range st.quotes {
			if q.ProductID == productID && q.CountryCode == countryCode {
				out = append(out, q)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Quantity < out[j].Quantity })
	return out, err
}

func (s *Store) InsertQuote(_ context.Context, quote *quote_models.Quote) error {
	return s.do(func(st *state) error {
		for _, q := range st.quotes {
			if q.ResellerID == quote.ResellerID && q.ProductID == quote.ProductID &&
				q.CountryCode == quote.CountryCode && q.Quantity == quote.Quantity {
				return fmt.Errorf("quote %s/%s/%d: %w", quote.ProductID, quote.CountryCode, quote.Quantity, repositories.ErrDuplicate)
			}
		}
		st.quotes[quote.ID] = *quote
		return nil
	})
}

// ---- settlement records ----

func (s *Store) InsertSettlementRecord(_ context.Context, record *settlement_models.SettlementRecord) error {
	return s.do(func(st *state) error {
		if _, ok := st.records[record.ID]; ok {
			return fmt.Errorf("settlement record %s: %w", record.ID, repositories.ErrDuplicate)
		}
		st.records[record.ID] = *record
		return nil
	})
}

func (s *Store) GetSettlementRecord(_ context.Context, id uuid.UUID) (*settlement_models.SettlementRecord, error) {
	var out *settlement_models.SettlementRecord
	err := s.do(func(st *state) error {
		r, ok := st.records[id]
		if !ok {
			return fmt.Errorf("settlement record %s: %w", id, repositories.ErrNotFound)
		}
		out = &r
		return nil
	})
	return out, err
}

func (s *Store) ListSettlementRecords(_ context.Context, resellerID *uuid.UUID, limit, offset int) ([]settlement_models.SettlementRecord, error) {
	var out []settlement_models.SettlementRecord
	err := s.do(func(st *state) error {
		for _, r := range st.records {
			if resellerID == nil || r.ResellerID == *resellerID {
				out = append(out, r)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, limit, offset), err
}

// ---- commissions ----

func (s *Store) InsertCommission(_ context.Context, c *commission_models.Commission) error {
	return s.do(func(st *state) error {
		for _, existing := range st.commissions {
			if existing.SettlementID == c.SettlementID {
				return fmt.Errorf("commission for settlement %s: %w", c.SettlementID, repositories.ErrDuplicate)
			}
		}
		st.commissions[c.ID] = *c
		return nil
	})
}

func (s *Store) GetCommission(_ context.Context, id uuid.UUID) (*commission_models.Commission, error) {
	var out *commission_models.Commission
	err := s.do(func(st *state) error {
		c, ok := st.commissions[id]
		if !ok {
			return fmt.Errorf("commission %s: %w", id, repositories.ErrNotFound)
		}
		out = &c
		return nil
	})
	return out, err
}

func (s *Store) GetCommissionBySettlement(_ context.Context, settlementID uuid.UUID) (*commission_models.Commission, error) {
	var out *commission_models.Commission
	err := s.do(func(st *state) error {
		for _, c := range st.commissions {
			if c.SettlementID == settlementID {
				c := c
				out = &c
				return nil
			}
		}
		return fmt.Errorf("commission for settlement %s: %w", settlementID, repositories.ErrNotFound)
	})
	return out, err
}

func (s *Store) ListCommissions(_ context.Context, filter commission_models.ListFilter) ([]commission_models.Commission, error) {
	var out []commission_models.Commission
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	err := s.do(func(st *state) error {
		for _, c := range st.commissions {
			if filter.Status != nil && c.Status != *filter.Status {
				continue
			}
			if search != "" && !st.commissionMatches(c, search) {
				continue
			}
			out = append(out, c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, filter.Limit, filter.Offset), err
}

func (st *state) commissionMatches(c commission_models.Commission, search string) bool {
	for _, id := range []uuid.UUID{c.ID, c.SettlementID, c.ReferrerID, c.RefereeID} {
		if strings.HasPrefix(id.String(), search) {
			return true
		}
	}
	for _, id := range []uuid.UUID{c.ReferrerID, c.RefereeID} {
		if r, ok := st.resellers[id]; ok {
			if strings.Contains(strings.ToLower(r.Name), search) || strings.Contains(strings.ToLower(r.Email), search) {
				return true
			}
		}
	}
	return false
}

func (s *Store) UpdateCommissionReview(_ context.Context, c *commission_models.Commission) error {
	return s.do(func(st *state) error {
		cur, ok := st.commissions[c.ID]
		if !ok {
			return fmt.Errorf("commission %s: %w", c.ID, repositories.ErrNotFound)
		}
		if cur.Status != commission_models.CommissionStatusPending {
			return fmt.Errorf("commission %s is %s: %w", c.ID, cur.Status, repositories.ErrPreconditionFailed)
		}
		st.commissions[c.ID] = *c
		return nil
	})
}

// ---- resellers & wallet ----

func (s *Store) InsertReseller(_ context.Context, r *reseller_models.Reseller) error {
	return s.do(func(st *state) error {
		if _, ok := st.resellers[r.ID]; ok {
			return fmt.Errorf("reseller %s: %w", r.ID, repositories.ErrDuplicate)
		}
		st.resellers[r.ID] = *r
		return nil
	})
}

func (s *Store) GetReseller(_ context.Context, id uuid.UUID) (*reseller_models.Reseller, error) {
	var out *reseller_models.Reseller
	err := s.do(func(st *state) error {
		r, ok := st.resellers[id]
		if !ok {
			return fmt.Errorf("reseller %s: %w", id, repositories.ErrNotFound)
		}
		out = &r
		return nil
	})
	return out, err
}

func (s *Store) CreditWallet(_ context.Context, tx *wallet_models.WalletTransaction) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := s.do(func(st *state) error {
		r, ok := st.resellers[tx.UserID]
		if !ok {
			return fmt.Errorf("wallet owner %s: %w", tx.UserID, repositories.ErrNotFound)
		}
		r.WalletBalance = r.WalletBalance.Add(tx.Amount)
		st.resellers[r.ID] = r
		entry := *tx
		entry.BalanceAfter = r.WalletBalance
		st.ledger = append(st.ledger, entry)
		balance = r.WalletBalance
		return nil
	})
	return balance, err
}

func (s *Store) ListWalletTransactions(_ context.Context, userID uuid.UUID) ([]wallet_models.WalletTransaction, error) {
	var out []wallet_models.WalletTransaction
	err := s.do(func(st *state) error {
		for _, t := range st.ledger {
			if t.UserID == userID {
				out = append(out, t)
			}
		}
		return nil
	})
	return out, err
}

func sortOrders(orders []order_models.Order) {
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].PaymentTime.Equal(orders[j].PaymentTime) {
			return orders[i].PaymentTime.Before(orders[j].PaymentTime)
		}
		return orders[i].OrderNumber < orders[j].OrderNumber
	})
}

func normalizeBuyer(b string) string {
	return strings.ToLower(strings.TrimSpace(b))
}

func page[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
