package discount_models

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RateScale is the number of decimal places a stored discount rate keeps.
const RateScale = 4

// DiscountRule gives a reseller's buyers DiscountRate when their rolling quantity lies in
// [MinQuantity, MaxQuantity].
type DiscountRule struct {
	ID           uuid.UUID       `json:"id"`
	ResellerID   uuid.UUID       `json:"reseller_id"`
	MinQuantity  int             `json:"min_quantity"`
	MaxQuantity  int             `json:"max_quantity"`
	DiscountRate decimal.Decimal `json:"discount_rate"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// DiscountRuleRequest is the create/update payload.
type DiscountRuleRequest struct {
	MinQuantity  int             `json:"min_quantity" binding:"required,gte=1"`
	MaxQuantity  int             `json:"max_quantity" binding:"required,gte=1"`
	DiscountRate decimal.Decimal `json:"discount_rate"`
}

// NewDiscountRule builds and validates a rule for resellerID.
func NewDiscountRule(resellerID uuid.UUID, minQty, maxQty int, rate decimal.Decimal) (*DiscountRule, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for discount rule: %w", err)
	}
	now := time.Now().UTC()
	rule := &DiscountRule{
		ID:           id,
		ResellerID:   resellerID,
		MinQuantity:  minQty,
		MaxQuantity:  maxQty,
		DiscountRate: rate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	return rule, nil
}

// Validate checks field constraints only; overlap needs the rest of the rule set.
func (r *DiscountRule) Validate() error {
	if r.ResellerID == uuid.Nil {
		return fmt.Errorf("reseller_id is required")
	}
	if r.MinQuantity < 1 {
		return fmt.Errorf("min_quantity must be at least 1")
	}
	if r.MaxQuantity < r.MinQuantity {
		return fmt.Errorf("max_quantity (%d) must not be less than min_quantity (%d)", r.MaxQuantity, r.MinQuantity)
	}
	if !r.DiscountRate.IsPositive() || r.DiscountRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("discount_rate must be in (0, 1], got %s", r.DiscountRate)
	}
	if !r.DiscountRate.Equal(r.DiscountRate.Round(RateScale)) {
		return fmt.Errorf("discount_rate allows at most %d decimal places, got %s", RateScale, r.DiscountRate)
	}
	return nil
}

// Contains reports whether qty falls in the rule's inclusive range.
func (r *DiscountRule) Contains(qty int) bool {
	return qty >= r.MinQuantity && qty <= r.MaxQuantity
}

// Overlaps reports whether two inclusive ranges intersect.
func (r *DiscountRule) Overlaps(other *DiscountRule) bool {
	return r.MinQuantity <= other.MaxQuantity && other.MinQuantity <= r.MaxQuantity
}

func (r *DiscountRule) RangeString() string {
	return fmt.Sprintf("[%d, %d]", r.MinQuantity, r.MaxQuantity)
}

// FindOverlap returns the first rule in existing that intersects candidate, skipping the
// candidate itself so an update can keep its own range.
func FindOverlap(existing []DiscountRule, candidate *DiscountRule) *DiscountRule {
	for i := range existing {
		if existing[i].ID == candidate.ID {
			continue
		}
		if existing[i].Overlaps(candidate) {
			return &existing[i]
		}
	}
	return nil
}

// Match returns the rule containing qty, or nil.
func Match(rules []DiscountRule, qty int) *DiscountRule {
	for i := range rules {
		if rules[i].Contains(qty) {
			return &rules[i]
		}
	}
	return nil
}

// SortByRange orders rules by min_quantity.
func SortByRange(rules []DiscountRule) {
	sort.Slice(rules, func(i, j int) bool { return rules[i].MinQuantity < rules[j].MinQuantity })
}
