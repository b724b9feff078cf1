package agents

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pramodsinghlodhi/masterprint-backend/pkg/db/models"
	"github.com/pramodsinghlodhi/masterprint-backend/pkg/enums"
	pkgerrors "github.com/pramodsinghlodhi/masterprint-backend/pkg/errors"
	"github.com/pramodsinghlodhi/masterprint-backend/pkg/pagination"
)

type stubRepo struct {
	agents map[uuid.UUID]*models.Agent
}

func newStubRepo(rows ...*models.Agent) *stubRepo {
	repo := &stubRepo{agents: map[uuid.UUID]*models.Agent{}}
	for _, row := range rows {
		repo.agents[row.ID] = row
	}
	return repo
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, agent *models.Agent) (*models.Agent, error) {
	if agent.ID == uuid.Nil {
		agent.ID = uuid.New()
	}
	s.agents[agent.ID] = agent
	return agent, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Agent, error) {
	agent, ok := s.agents[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *agent
	return &copied, nil
}

func (s *stubRepo) List(ctx context.Context, params pagination.Params, filters Filters) (*AgentList, error) {
	panic("not implemented")
}

func (s *stubRepo) Update(ctx context.Context, agentID uuid.UUID, updates map[string]any) error {
	agent, ok := s.agents[agentID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for key, value := range updates {
		switch key {
		case "approved":
			if v, ok := value.(bool); ok {
				agent.Approved = v
			}
		case "account_standing":
			if v, ok := value.(enums.AgentStanding); ok {
				agent.AccountStanding = v
			}
		}
	}
	return nil
}

func (s *stubRepo) IncrementCounters(ctx context.Context, agentID uuid.UUID, deltas CounterDeltas) error {
	panic("not implemented")
}

func (s *stubRepo) AddOrderRef(ctx context.Context, agentID, orderID uuid.UUID) error {
	panic("not implemented")
}

func (s *stubRepo) RemoveOrderRef(ctx context.Context, orderID uuid.UUID) error {
	panic("not implemented")
}

func (s *stubRepo) FindOrderRefs(ctx context.Context, agentID uuid.UUID) ([]models.AgentOrderRef, error) {
	panic("not implemented")
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

func TestRegisterDefaults(t *testing.T) {
	svc := newTestService(t, newStubRepo())

	agent, err := svc.Register(context.Background(), RegisterInput{Name: "  Ravi Kumar ", Phone: " 9876543210 "})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if agent.Name != "Ravi Kumar" || agent.Phone != "9876543210" {
		t.Fatalf("expected trimmed fields got %q %q", agent.Name, agent.Phone)
	}
	if agent.AccountStanding != enums.AgentStandingPending {
		t.Fatalf("expected pending standing got %s", agent.AccountStanding)
	}
	if agent.WorkCapacity != enums.AgentCapacityAvailable {
		t.Fatalf("expected available capacity got %s", agent.WorkCapacity)
	}
	if agent.Approved {
		t.Fatal("new agents must not be pre-approved")
	}
	if agent.Assignable() {
		t.Fatal("unapproved agent must not be assignable")
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t, newStubRepo())

	_, err := svc.Register(context.Background(), RegisterInput{Phone: "9876543210"})
	assertCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.Register(context.Background(), RegisterInput{Name: "Ravi Kumar"})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestApproveActivates(t *testing.T) {
	agent := &models.Agent{
		ID:              uuid.New(),
		Name:            "Ravi Kumar",
		AccountStanding: enums.AgentStandingPending,
		WorkCapacity:    enums.AgentCapacityAvailable,
	}
	repo := newStubRepo(agent)
	svc := newTestService(t, repo)

	summary, err := svc.Approve(context.Background(), agent.ID)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if !summary.Approved || summary.AccountStanding != enums.AgentStandingActive {
		t.Fatalf("expected approved active agent got %+v", summary)
	}
	if !repo.agents[agent.ID].Assignable() {
		t.Fatal("approved active agent must be assignable")
	}

	// already approved, the second call is a no-op
	again, err := svc.Approve(context.Background(), agent.ID)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if again.LegacyStatus != string(enums.AgentCapacityAvailable) {
		t.Fatalf("expected legacy status available got %s", again.LegacyStatus)
	}
}

func TestSuspendAndReactivate(t *testing.T) {
	agent := &models.Agent{
		ID:              uuid.New(),
		Name:            "Ravi Kumar",
		AccountStanding: enums.AgentStandingActive,
		WorkCapacity:    enums.AgentCapacityBusy,
		Approved:        true,
	}
	repo := newStubRepo(agent)
	svc := newTestService(t, repo)

	summary, err := svc.Suspend(context.Background(), agent.ID)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if summary.AccountStanding != enums.AgentStandingSuspended {
		t.Fatalf("expected suspended got %s", summary.AccountStanding)
	}
	if repo.agents[agent.ID].Assignable() {
		t.Fatal("suspended agent must not be assignable")
	}

	summary, err = svc.Reactivate(context.Background(), agent.ID)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if summary.AccountStanding != enums.AgentStandingActive {
		t.Fatalf("expected active got %s", summary.AccountStanding)
	}
}

func TestReactivateRequiresApproval(t *testing.T) {
	agent := &models.Agent{
		ID:              uuid.New(),
		Name:            "Ravi Kumar",
		AccountStanding: enums.AgentStandingPending,
	}
	svc := newTestService(t, newStubRepo(agent))

	_, err := svc.Reactivate(context.Background(), agent.ID)
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestAgentNotFound(t *testing.T) {
	svc := newTestService(t, newStubRepo())

	_, err := svc.Get(context.Background(), uuid.New())
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestSummaryLegacyStatus(t *testing.T) {
	cases := []struct {
		name     string
		standing enums.AgentStanding
		capacity enums.AgentCapacity
		want     string
	}{
		{"active shows capacity", enums.AgentStandingActive, enums.AgentCapacityBusy, "busy"},
		{"active available", enums.AgentStandingActive, enums.AgentCapacityAvailable, "available"},
		{"suspended wins over capacity", enums.AgentStandingSuspended, enums.AgentCapacityAvailable, "suspended"},
		{"pending wins over capacity", enums.AgentStandingPending, enums.AgentCapacityBusy, "pending"},
		{"inactive wins over capacity", enums.AgentStandingInactive, enums.AgentCapacityAvailable, "inactive"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			summary := NewSummary(&models.Agent{
				ID:              uuid.New(),
				AccountStanding: tc.standing,
				WorkCapacity:    tc.capacity,
			})
			if summary.LegacyStatus != tc.want {
				t.Fatalf("expected legacy status %q got %q", tc.want, summary.LegacyStatus)
			}
		})
	}
}
