package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pramodsinghlodhi/masterprint-backend/pkg/db/models"
	"github.com/pramodsinghlodhi/masterprint-backend/pkg/enums"
	pkgerrors "github.com/pramodsinghlodhi/masterprint-backend/pkg/errors"
	"github.com/pramodsinghlodhi/masterprint-backend/pkg/pagination"
)

// Service defines agent account management operations.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.Agent, error)
	Get(ctx context.Context, agentID uuid.UUID) (Summary, error)
	List(ctx context.Context, params pagination.Params, filters Filters) (*AgentList, error)
	Approve(ctx context.Context, agentID uuid.UUID) (Summary, error)
	Suspend(ctx context.Context, agentID uuid.UUID) (Summary, error)
	Reactivate(ctx context.Context, agentID uuid.UUID) (Summary, error)
}

type service struct {
	repo Repository
}

// NewService builds an agents service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("agents repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*models.Agent, error) {
	name := strings.TrimSpace(input.Name)
	phone := strings.TrimSpace(input.Phone)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent name required")
	}
	if phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent phone required")
	}

	agent := &models.Agent{
		Name:            name,
		Phone:           phone,
		Email:           strings.TrimSpace(input.Email),
		AccountStanding: enums.AgentStandingPending,
		WorkCapacity:    enums.AgentCapacityAvailable,
		Approved:        false,
	}
	if _, err := s.repo.Create(ctx, agent); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create agent")
	}
	return agent, nil
}

func (s *service) Get(ctx context.Context, agentID uuid.UUID) (Summary, error) {
	agent, err := s.load(ctx, agentID)
	if err != nil {
		return Summary{}, err
	}
	return NewSummary(agent), nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters Filters) (*AgentList, error) {
	list, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list agents")
	}
	return list, nil
}

func (s *service) Approve(ctx context.Context, agentID uuid.UUID) (Summary, error) {
	agent, err := s.load(ctx, agentID)
	if err != nil {
		return Summary{}, err
	}
	if agent.Approved && agent.AccountStanding == enums.AgentStandingActive {
		return NewSummary(agent), nil
	}
	updates := map[string]any{
		"approved":         true,
		"account_standing": enums.AgentStandingActive,
	}
	if err := s.repo.Update(ctx, agentID, updates); err != nil {
		return Summary{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve agent")
	}
	agent.Approved = true
	agent.AccountStanding = enums.AgentStandingActive
	return NewSummary(agent), nil
}

func (s *service) Suspend(ctx context.Context, agentID uuid.UUID) (Summary, error) {
	agent, err := s.load(ctx, agentID)
	if err != nil {
		return Summary{}, err
	}
	if agent.AccountStanding == enums.AgentStandingSuspended {
		return NewSummary(agent), nil
	}
	if err := s.repo.Update(ctx, agentID, map[string]any{"account_standing": enums.AgentStandingSuspended}); err != nil {
		return Summary{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "suspend agent")
	}
	agent.AccountStanding = enums.AgentStandingSuspended
	return NewSummary(agent), nil
}

func (s *service) Reactivate(ctx context.Context, agentID uuid.UUID) (Summary, error) {
	agent, err := s.load(ctx, agentID)
	if err != nil {
		return Summary{}, err
	}
	if !agent.Approved {
		return Summary{}, pkgerrors.New(pkgerrors.CodeStateConflict, "agent has not been approved")
	}
	if agent.AccountStanding == enums.AgentStandingActive {
		return NewSummary(agent), nil
	}
	if err := s.repo.Update(ctx, agentID, map[string]any{"account_standing": enums.AgentStandingActive}); err != nil {
		return Summary{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reactivate agent")
	}
	agent.AccountStanding = enums.AgentStandingActive
	return NewSummary(agent), nil
}

func (s *service) load(ctx context.Context, agentID uuid.UUID) (*models.Agent, error) {
	if agentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent id required")
	}
	agent, err := s.repo.FindByID(ctx, agentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "agent not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load agent")
	}
	return agent, nil
}
