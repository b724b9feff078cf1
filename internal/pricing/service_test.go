package pricing

import (
	"context"
	"sort"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pramodsinghlodhi/masterprint-backend/pkg/db/models"
	pkgerrors "github.com/pramodsinghlodhi/masterprint-backend/pkg/errors"
)

type stubRepo struct {
	rules map[uuid.UUID]*models.DeliveryPricingRule
}

func newStubRepo(rules ...*models.DeliveryPricingRule) *stubRepo {
	repo := &stubRepo{rules: map[uuid.UUID]*models.DeliveryPricingRule{}}
	for _, rule := range rules {
		repo.rules[rule.ID] = rule
	}
	return repo
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, rule *models.DeliveryPricingRule) (*models.DeliveryPricingRule, error) {
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	s.rules[rule.ID] = rule
	return rule, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.DeliveryPricingRule, error) {
	rule, ok := s.rules[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *rule
	return &copied, nil
}

func (s *stubRepo) ExistsForDistance(ctx context.Context, maxDistanceKm float64) (bool, error) {
	for _, rule := range s.rules {
		if rule.MaxDistanceKm == maxDistanceKm {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubRepo) ListActiveAscending(ctx context.Context) ([]models.DeliveryPricingRule, error) {
	var rows []models.DeliveryPricingRule
	for _, rule := range s.rules {
		if rule.IsActive {
			rows = append(rows, *rule)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].MaxDistanceKm < rows[j].MaxDistanceKm })
	return rows, nil
}

func (s *stubRepo) List(ctx context.Context) ([]models.DeliveryPricingRule, error) {
	var rows []models.DeliveryPricingRule
	for _, rule := range s.rules {
		rows = append(rows, *rule)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].MaxDistanceKm < rows[j].MaxDistanceKm })
	return rows, nil
}

func (s *stubRepo) Update(ctx context.Context, ruleID uuid.UUID, updates map[string]any) error {
	rule, ok := s.rules[ruleID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for key, value := range updates {
		switch key {
		case "max_distance_km":
			if v, ok := value.(float64); ok {
				rule.MaxDistanceKm = v
			}
		case "price_cents":
			if v, ok := value.(int); ok {
				rule.PriceCents = v
			}
		case "agent_commission_pct":
			if v, ok := value.(int); ok {
				rule.AgentCommissionPct = v
			}
		case "is_active":
			if v, ok := value.(bool); ok {
				rule.IsActive = v
			}
		}
	}
	return nil
}

func (s *stubRepo) Delete(ctx context.Context, ruleID uuid.UUID) error {
	if _, ok := s.rules[ruleID]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.rules, ruleID)
	return nil
}

func tierRule(maxKm float64, priceCents, pct int) *models.DeliveryPricingRule {
	return &models.DeliveryPricingRule{
		ID:                 uuid.New(),
		MaxDistanceKm:      maxKm,
		PriceCents:         priceCents,
		AgentCommissionPct: pct,
		IsActive:           true,
	}
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}
	return svc
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error")
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error got %v", err)
	}
	if typed.Code() != code {
		t.Fatalf("expected code %s got %s (%v)", code, typed.Code(), err)
	}
}

func TestResolvePicksNarrowestTier(t *testing.T) {
	five := tierRule(5, 50, 70)
	ten := tierRule(10, 90, 70)
	svc := newTestService(t, newStubRepo(five, ten))

	quote, err := svc.Resolve(context.Background(), 7)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if quote.ApplicableRule == nil || quote.ApplicableRule.ID != ten.ID {
		t.Fatal("expected the 10km tier")
	}
	if quote.BasePriceCents != 90 {
		t.Fatalf("expected price 90 got %d", quote.BasePriceCents)
	}

	quote, err = svc.Resolve(context.Background(), 4)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if quote.ApplicableRule.ID != five.ID {
		t.Fatal("expected the 5km tier")
	}
	if quote.AgentCommissionCents != 35 || quote.CompanyRevenueCents != 15 {
		t.Fatalf("expected 35/15 split got %d/%d", quote.AgentCommissionCents, quote.CompanyRevenueCents)
	}
}

func TestResolveBoundaryInclusive(t *testing.T) {
	five := tierRule(5, 50, 70)
	svc := newTestService(t, newStubRepo(five, tierRule(10, 90, 70)))

	quote, err := svc.Resolve(context.Background(), 5)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if quote.ApplicableRule.ID != five.ID {
		t.Fatal("tier bound is inclusive, expected the 5km tier")
	}
}

func TestResolveNoCoveringTier(t *testing.T) {
	svc := newTestService(t, newStubRepo(tierRule(5, 50, 70), tierRule(10, 90, 70)))

	_, err := svc.Resolve(context.Background(), 11)
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestResolveSkipsInactiveRules(t *testing.T) {
	inactive := tierRule(5, 50, 70)
	inactive.IsActive = false
	ten := tierRule(10, 90, 70)
	svc := newTestService(t, newStubRepo(inactive, ten))

	quote, err := svc.Resolve(context.Background(), 3)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if quote.ApplicableRule.ID != ten.ID {
		t.Fatal("inactive tiers must not match")
	}
}

func TestResolveNegativeDistance(t *testing.T) {
	svc := newTestService(t, newStubRepo(tierRule(5, 50, 70)))

	_, err := svc.Resolve(context.Background(), -1)
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateRuleDuplicateTier(t *testing.T) {
	svc := newTestService(t, newStubRepo(tierRule(5, 50, 70)))

	_, err := svc.CreateRule(context.Background(), RuleInput{MaxDistanceKm: 5, PriceCents: 60})
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestCreateRuleDefaults(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)

	rule, err := svc.CreateRule(context.Background(), RuleInput{MaxDistanceKm: 5, PriceCents: 50})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if rule.AgentCommissionPct != 70 {
		t.Fatalf("expected default commission 70 got %d", rule.AgentCommissionPct)
	}
	if !rule.IsActive {
		t.Fatal("expected new rules active by default")
	}
}

func TestCreateRuleInvalidInput(t *testing.T) {
	svc := newTestService(t, newStubRepo())

	_, err := svc.CreateRule(context.Background(), RuleInput{MaxDistanceKm: 0, PriceCents: 50})
	assertCode(t, err, pkgerrors.CodeValidation)

	pct := 101
	_, err = svc.CreateRule(context.Background(), RuleInput{MaxDistanceKm: 5, PriceCents: 50, AgentCommissionPct: &pct})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestUpdateRuleRetier(t *testing.T) {
	five := tierRule(5, 50, 70)
	repo := newStubRepo(five, tierRule(10, 90, 70))
	svc := newTestService(t, repo)

	// moving onto an occupied tier is rejected
	_, err := svc.UpdateRule(context.Background(), five.ID, RuleInput{MaxDistanceKm: 10})
	assertCode(t, err, pkgerrors.CodeConflict)

	updated, err := svc.UpdateRule(context.Background(), five.ID, RuleInput{MaxDistanceKm: 7, PriceCents: 65})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if updated.MaxDistanceKm != 7 || updated.PriceCents != 65 {
		t.Fatalf("unexpected rule after update: %+v", updated)
	}
	if repo.rules[five.ID].MaxDistanceKm != 7 {
		t.Fatal("expected update persisted")
	}
}

func TestDeleteRule(t *testing.T) {
	five := tierRule(5, 50, 70)
	repo := newStubRepo(five)
	svc := newTestService(t, repo)

	if err := svc.DeleteRule(context.Background(), five.ID); err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if _, ok := repo.rules[five.ID]; ok {
		t.Fatal("expected rule removed")
	}

	err := svc.DeleteRule(context.Background(), uuid.New())
	assertCode(t, err, pkgerrors.CodeNotFound)
}
