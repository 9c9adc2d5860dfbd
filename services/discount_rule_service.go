package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/joy095/settlement/logger"
	"github.com/joy095/settlement/models/discount_models"
	"github.com/joy095/settlement/repositories"
)

// DiscountRuleService is the CRUD surface for per-reseller discount tiers. Every write
// re-checks range disjointness inside a transaction.
type DiscountRuleService struct {
	repo repositories.Repository
}

func NewDiscountRuleService(repo repositories.Repository) *DiscountRuleService {
	return &DiscountRuleService{repo: repo}
}

func (s *DiscountRuleService) List(ctx context.Context, resellerID uuid.UUID) ([]discount_models.DiscountRule, error) {
	rules, err := s.repo.ListDiscountRules(ctx, resellerID)
	if err != nil {
		return nil, err
	}
	if rules == nil {
		rules = []discount_models.DiscountRule{}
	}
	return rules, nil
}

func (s *DiscountRuleService) Create(ctx context.Context, resellerID uuid.UUID, req discount_models.DiscountRuleRequest) (*discount_models.DiscountRule, error) {
	rule, err := discount_models.NewDiscountRule(resellerID, req.MinQuantity, req.MaxQuantity, req.DiscountRate)
	if err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	err = s.repo.InTx(ctx, func(tx repositories.Repository) error {
		if err := s.checkOverlap(ctx, tx, rule); err != nil {
			return err
		}
		return tx.InsertDiscountRule(ctx, rule)
	})
	if err != nil {
		return nil, err
	}

	logger.InfoLogger.Infof("Discount rule %s %s -> %s created for reseller %s", rule.ID, rule.RangeString(), rule.DiscountRate, resellerID)
	return rule, nil
}

func (s *DiscountRuleService) Update(ctx context.Context, resellerID, ruleID uuid.UUID, req discount_models.DiscountRuleRequest) (*discount_models.DiscountRule, error) {
	var updated *discount_models.DiscountRule
	err := s.repo.InTx(ctx, func(tx repositories.Repository) error {
		current, err := tx.GetDiscountRule(ctx, resellerID, ruleID)
		if err != nil {
			return err
		}
		candidate := *current
		candidate.MinQuantity = req.MinQuantity
		candidate.MaxQuantity = req.MaxQuantity
		candidate.DiscountRate = req.DiscountRate
		candidate.UpdatedAt = time.Now().UTC()
		if err := candidate.Validate(); err != nil {
			return &ValidationError{Message: err.Error()}
		}
		if err := s.checkOverlap(ctx, tx, &candidate); err != nil {
			return err
		}
		if err := tx.UpdateDiscountRule(ctx, &candidate); err != nil {
			return err
		}
		updated = &candidate
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.InfoLogger.Infof("Discount rule %s updated to %s -> %s", ruleID, updated.RangeString(), updated.DiscountRate)
	return updated, nil
}

func (s *DiscountRuleService) Delete(ctx context.Context, resellerID, ruleID uuid.UUID) error {
	if err := s.repo.DeleteDiscountRule(ctx, resellerID, ruleID); err != nil {
		return err
	}
	logger.InfoLogger.Infof("Discount rule %s deleted for reseller %s", ruleID, resellerID)
	return nil
}

func (s *DiscountRuleService) checkOverlap(ctx context.Context, tx repositories.Repository, candidate *discount_models.DiscountRule) error {
	if err := tx.LockDiscountRules(ctx, candidate.ResellerID); err != nil {
		return err
	}
	existing, err := tx.ListDiscountRules(ctx, candidate.ResellerID)
	if err != nil {
		return err
	}
	if clash := discount_models.FindOverlap(existing, candidate); clash != nil {
		logger.WarnLogger.Warnf("Rejected discount range %s for reseller %s: overlaps %s",
			candidate.RangeString(), candidate.ResellerID, clash.RangeString())
		return &OverlapError{Existing: *clash}
	}
	return nil
}
