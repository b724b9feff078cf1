package agents

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pramodsinghlodhi/masterprint-backend/pkg/db/models"
	"github.com/pramodsinghlodhi/masterprint-backend/pkg/pagination"
)

// Repository defines persistence operations for delivery agents.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, agent *models.Agent) (*models.Agent, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Agent, error)
	List(ctx context.Context, params pagination.Params, filters Filters) (*AgentList, error)
	Update(ctx context.Context, agentID uuid.UUID, updates map[string]any) error
	// IncrementCounters applies relative deltas to the performance counters.
	// Deltas must be non-negative: the counters only ever grow.
	IncrementCounters(ctx context.Context, agentID uuid.UUID, deltas CounterDeltas) error
	AddOrderRef(ctx context.Context, agentID, orderID uuid.UUID) error
	RemoveOrderRef(ctx context.Context, orderID uuid.UUID) error
	FindOrderRefs(ctx context.Context, agentID uuid.UUID) ([]models.AgentOrderRef, error)
}

// CounterDeltas carries relative increments for agent performance counters.
type CounterDeltas struct {
	OrdersAssigned      int
	DeliveriesCompleted int
	TotalEarningsCents  int
}
