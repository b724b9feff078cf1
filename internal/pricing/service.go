package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pramodsinghlodhi/masterprint-backend/pkg/db"
	"github.com/pramodsinghlodhi/masterprint-backend/pkg/db/models"
	pkgerrors "github.com/pramodsinghlodhi/masterprint-backend/pkg/errors"
)

// Quote is the outcome of resolving a delivery price for a distance.
type Quote struct {
	DistanceKm           float64                     `json:"distance_km"`
	BasePriceCents       int                         `json:"base_price_cents"`
	AgentCommissionCents int                         `json:"agent_commission_cents"`
	CompanyRevenueCents  int                         `json:"company_revenue_cents"`
	ApplicableRule       *models.DeliveryPricingRule `json:"applicable_rule"`
}

// RuleInput captures the fields accepted when creating or updating a rule.
type RuleInput struct {
	MaxDistanceKm      float64
	PriceCents         int
	AgentCommissionPct *int
	IsActive           *bool
}

// Service defines the pricing tier resolver plus rule management.
type Service interface {
	Resolve(ctx context.Context, distanceKm float64) (*Quote, error)
	CreateRule(ctx context.Context, input RuleInput) (*models.DeliveryPricingRule, error)
	UpdateRule(ctx context.Context, ruleID uuid.UUID, input RuleInput) (*models.DeliveryPricingRule, error)
	DeleteRule(ctx context.Context, ruleID uuid.UUID) error
	ListRules(ctx context.Context) ([]models.DeliveryPricingRule, error)
}

type service struct {
	repo Repository
}

// NewService builds a pricing service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("pricing repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Resolve(ctx context.Context, distanceKm float64) (*Quote, error) {
	if distanceKm < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "distance must not be negative")
	}

	rules, err := s.repo.ListActiveAscending(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pricing rules")
	}

	// Rules come back ascending, so the first covering tier is the narrowest.
	for i := range rules {
		rule := rules[i]
		if rule.MaxDistanceKm >= distanceKm {
			commission, revenue := SplitFee(rule.PriceCents, rule.AgentCommissionPct)
			return &Quote{
				DistanceKm:           distanceKm,
				BasePriceCents:       rule.PriceCents,
				AgentCommissionCents: commission,
				CompanyRevenueCents:  revenue,
				ApplicableRule:       &rule,
			}, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no pricing rule covers the requested distance")
}

func (s *service) CreateRule(ctx context.Context, input RuleInput) (*models.DeliveryPricingRule, error) {
	if err := validateRuleInput(input, true); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsForDistance(ctx, input.MaxDistanceKm)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check pricing tier")
	}
	if exists {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a pricing rule already exists for this distance tier")
	}

	rule := &models.DeliveryPricingRule{
		MaxDistanceKm:      input.MaxDistanceKm,
		PriceCents:         input.PriceCents,
		AgentCommissionPct: 70,
		IsActive:           true,
	}
	if input.AgentCommissionPct != nil {
		rule.AgentCommissionPct = *input.AgentCommissionPct
	}
	if input.IsActive != nil {
		rule.IsActive = *input.IsActive
	}

	if _, err := s.repo.Create(ctx, rule); err != nil {
		// the existence check can lose a race against a concurrent create
		if db.IsUniqueViolation(err, "idx_pricing_max_distance") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a pricing rule already exists for this distance tier")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create pricing rule")
	}
	return rule, nil
}

func (s *service) UpdateRule(ctx context.Context, ruleID uuid.UUID, input RuleInput) (*models.DeliveryPricingRule, error) {
	rule, err := s.loadRule(ctx, ruleID)
	if err != nil {
		return nil, err
	}
	if err := validateRuleInput(input, false); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.MaxDistanceKm > 0 && input.MaxDistanceKm != rule.MaxDistanceKm {
		exists, err := s.repo.ExistsForDistance(ctx, input.MaxDistanceKm)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check pricing tier")
		}
		if exists {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a pricing rule already exists for this distance tier")
		}
		updates["max_distance_km"] = input.MaxDistanceKm
		rule.MaxDistanceKm = input.MaxDistanceKm
	}
	if input.PriceCents > 0 {
		updates["price_cents"] = input.PriceCents
		rule.PriceCents = input.PriceCents
	}
	if input.AgentCommissionPct != nil {
		updates["agent_commission_pct"] = *input.AgentCommissionPct
		rule.AgentCommissionPct = *input.AgentCommissionPct
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
		rule.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, ruleID, updates); err != nil {
		if db.IsUniqueViolation(err, "idx_pricing_max_distance") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a pricing rule already exists for this distance tier")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update pricing rule")
	}
	return rule, nil
}

func (s *service) DeleteRule(ctx context.Context, ruleID uuid.UUID) error {
	if _, err := s.loadRule(ctx, ruleID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, ruleID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete pricing rule")
	}
	return nil
}

func (s *service) ListRules(ctx context.Context) ([]models.DeliveryPricingRule, error) {
	rules, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pricing rules")
	}
	return rules, nil
}

func (s *service) loadRule(ctx context.Context, ruleID uuid.UUID) (*models.DeliveryPricingRule, error) {
	if ruleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rule id required")
	}
	rule, err := s.repo.FindByID(ctx, ruleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pricing rule not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pricing rule")
	}
	return rule, nil
}

func validateRuleInput(input RuleInput, creating bool) error {
	if creating {
		if input.MaxDistanceKm <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "max distance must be positive")
		}
		if input.PriceCents <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
		}
	}
	if input.AgentCommissionPct != nil {
		pct := *input.AgentCommissionPct
		if pct < 0 || pct > 100 {
			return pkgerrors.New(pkgerrors.CodeValidation, "commission percentage must be within [0,100]")
		}
	}
	return nil
}
