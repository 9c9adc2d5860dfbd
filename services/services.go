// Package services holds the settlement pipeline: price and discount lookup, calculation,
// execution, and the referral commission that follows a settlement.
package services

import (
	"github.com/joy095/settlement/config"
	"github.com/joy095/settlement/repositories"
)

// Services wires every component against one repository and one locker.
type Services struct {
	Quotes        *QuoteResolver
	Discounts     *DiscountResolver
	DiscountRules *DiscountRuleService
	Calculator    *SettlementCalculator
	Executor      *SettlementExecutor
	Deriver       *CommissionDeriver
	Reviewer      *CommissionReviewer
	Query         *SettlementQuery
}

func New(repo repositories.Repository, locker Locker, settings *config.Settings, notifier Notifier) *Services {
	quotes := NewQuoteResolver(repo, settings.SupportedCountries)
	discounts := NewDiscountResolver(repo)
	deriver := NewCommissionDeriver(settings.FirstLevelRate)

	return &Services{
		Quotes:        quotes,
		Discounts:     discounts,
		DiscountRules: NewDiscountRuleService(repo),
		Calculator:    NewSettlementCalculator(repo, quotes, discounts, locker, settings.LockTTL, settings.CostPolicy),
		Executor:      NewSettlementExecutor(repo, deriver, locker, settings.LockTTL),
		Deriver:       deriver,
		Reviewer:      NewCommissionReviewer(repo, notifier),
		Query:         NewSettlementQuery(repo, locker, settings.LockTTL),
	}
}
