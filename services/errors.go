package services

import (
	"errors"
	"fmt"

	"github.com/joy095/settlement/models/discount_models"
	"github.com/joy095/settlement/repositories"
)

// Lookup failures: expected, counted per order, never abort a batch.
var (
	ErrNoPriceInfo           = errors.New("no price info")
	ErrNoDiscountInfo        = errors.New("no discount info")
	ErrPriceCalculationError = errors.New("price calculation error")
)

// Concurrency conflicts: retryable by the caller.
var (
	ErrNothingToSettle      = errors.New("nothing to settle")
	ErrConcurrencyConflict  = errors.New("order changed status during settlement")
	ErrSettlementInProgress = errors.New("settlement already in progress for this reseller")
)

var (
	ErrAlreadyReviewed = errors.New("commission already reviewed")
	ErrNotFound        = repositories.ErrNotFound
)

// ValidationError rejects malformed input before anything is persisted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// OverlapError names the existing rule a new or updated discount rule collides with.
type OverlapError struct {
	Existing discount_models.DiscountRule
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("discount range overlaps existing rule %s %s (rate %s)",
		e.Existing.ID, e.Existing.RangeString(), e.Existing.DiscountRate)
}

func IsValidationError(err error) bool {
	var v *ValidationError
	var o *OverlapError
	return errors.As(err, &v) || errors.As(err, &o)
}

func IsLookupFailure(err error) bool {
	return errors.Is(err, ErrNoPriceInfo) || errors.Is(err, ErrNoDiscountInfo) || errors.Is(err, ErrPriceCalculationError)
}

// IsRetryable reports conflicts an operator can resolve by re-running the call.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrNothingToSettle) || errors.Is(err, ErrConcurrencyConflict) || errors.Is(err, ErrSettlementInProgress)
}
