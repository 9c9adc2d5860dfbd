package discount_models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rule(t *testing.T, minQty, maxQty int, rate string) DiscountRule {
	t.Helper()
	r, err := NewDiscountRule(uuid.New(), minQty, maxQty, decimal.RequireFromString(rate))
	require.NoError(t, err)
	return *r
}

func TestNewDiscountRuleValidation(t *testing.T) {
	reseller := uuid.New()

	_, err := NewDiscountRule(reseller, 0, 5, decimal.RequireFromString("0.9"))
	assert.Error(t, err, "min below one")

	_, err = NewDiscountRule(reseller, 6, 5, decimal.RequireFromString("0.9"))
	assert.Error(t, err, "max below min")

	_, err = NewDiscountRule(reseller, 1, 5, decimal.Zero)
	assert.Error(t, err, "zero rate")

	_, err = NewDiscountRule(reseller, 1, 5, decimal.RequireFromString("1.01"))
	assert.Error(t, err, "rate above one")

	_, err = NewDiscountRule(uuid.Nil, 1, 5, decimal.RequireFromString("0.9"))
	assert.Error(t, err, "missing reseller")

	_, err = NewDiscountRule(reseller, 1, 5, decimal.RequireFromString("0.12345"))
	assert.Error(t, err, "more places than the column keeps")

	_, err = NewDiscountRule(reseller, 1, 5, decimal.RequireFromString("0.123400"))
	assert.NoError(t, err, "trailing zeros are not extra precision")

	r, err := NewDiscountRule(reseller, 5, 5, decimal.NewFromInt(1))
	require.NoError(t, err)
	assert.True(t, r.Contains(5))
	assert.False(t, r.Contains(4))
}

func TestFindOverlap(t *testing.T) {
	existing := []DiscountRule{rule(t, 1, 4, "0.95"), rule(t, 5, 10, "0.9")}

	cases := []struct {
		name     string
		min, max int
		want     *DiscountRule
	}{
		{"gap after", 11, 20, nil},
		{"touches upper bound", 10, 12, &existing[1]},
		{"inside", 6, 7, &existing[1]},
		{"spans both", 3, 6, &existing[0]},
		{"covers all", 1, 100, &existing[0]},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			candidate := rule(t, tc.min, tc.max, "0.8")
			got := FindOverlap(existing, &candidate)
			if tc.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tc.want.ID, got.ID)
		})
	}
}

func TestFindOverlapIgnoresSelfOnUpdate(t *testing.T) {
	existing := []DiscountRule{rule(t, 5, 10, "0.9")}
	updated := existing[0]
	updated.MaxQuantity = 12

	assert.Nil(t, FindOverlap(existing, &updated))
}

func TestMatch(t *testing.T) {
	rules := []DiscountRule{rule(t, 5, 10, "0.9"), rule(t, 1, 2, "0.99")}
	SortByRange(rules)

	assert.Equal(t, 1, rules[0].MinQuantity)
	require.NotNil(t, Match(rules, 7))
	assert.True(t, Match(rules, 7).DiscountRate.Equal(decimal.RequireFromString("0.9")))
	assert.Nil(t, Match(rules, 3))
	assert.Equal(t, "[5, 10]", rules[1].RangeString())
}
