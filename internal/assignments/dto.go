package assignments

import (
	"github.com/google/uuid"

	"github.com/pramodsinghlodhi/masterprint-backend/pkg/db/models"
	"github.com/pramodsinghlodhi/masterprint-backend/pkg/enums"
)

// AssignInput captures the data required to hand an order to an agent.
type AssignInput struct {
	OrderID    uuid.UUID
	AgentID    uuid.UUID
	AssignedBy string
}

// AgentRef is the slim agent view returned on assignment results.
type AgentRef struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Phone string    `json:"phone"`
}

// AssignResult carries the post-assignment state of both documents.
type AssignResult struct {
	Order *models.Order `json:"order"`
	Agent AgentRef      `json:"agent"`
}

// BulkAssignInput captures the data for the all-or-nothing bulk assignment.
type BulkAssignInput struct {
	OrderIDs   []uuid.UUID
	AgentID    uuid.UUID
	AssignedBy string
}

// BulkAssignResult reports the orders assigned by a bulk call.
type BulkAssignResult struct {
	Policy         enums.BulkPolicy `json:"policy"`
	AssignedCount  int              `json:"assigned_orders_count"`
	AssignedOrders []uuid.UUID      `json:"assigned_orders"`
	Agent          AgentRef         `json:"agent"`
}

// UnassignInput captures the data required to take an order back from its agent.
type UnassignInput struct {
	OrderID      uuid.UUID
	Reason       string
	UnassignedBy string
}

// UnassignResult carries the released order and the agent that held it.
type UnassignResult struct {
	Order         *models.Order `json:"order"`
	PreviousAgent AgentRef      `json:"previous_agent"`
	Reason        string        `json:"reason"`
}

// BulkUnassignInput captures the data for the best-effort bulk unassignment.
type BulkUnassignInput struct {
	OrderIDs     []uuid.UUID
	Reason       string
	UnassignedBy string
}

// BulkItemError reports why one order in a bulk call was skipped.
type BulkItemError struct {
	OrderID uuid.UUID `json:"order_id"`
	Message string    `json:"message"`
}

// BulkUnassignResult reports per-order outcomes of a bulk unassignment.
type BulkUnassignResult struct {
	Policy           enums.BulkPolicy `json:"policy"`
	UnassignedCount  int              `json:"unassigned_orders_count"`
	UnassignedOrders []uuid.UUID      `json:"unassigned_orders"`
	AffectedAgents   []uuid.UUID      `json:"affected_agents"`
	Errors           []BulkItemError  `json:"errors"`
}

// UpdateStatusInput captures an admin-driven status transition.
type UpdateStatusInput struct {
	OrderID   uuid.UUID
	Status    enums.OrderStatus
	Note      string
	UpdatedBy string
}
