package assignments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pramodsinghlodhi/masterprint-backend/internal/agents"
	"github.com/pramodsinghlodhi/masterprint-backend/internal/orders"
	"github.com/pramodsinghlodhi/masterprint-backend/pkg/db/models"
	"github.com/pramodsinghlodhi/masterprint-backend/pkg/enums"
	pkgerrors "github.com/pramodsinghlodhi/masterprint-backend/pkg/errors"
	"github.com/pramodsinghlodhi/masterprint-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service is the order lifecycle engine: it owns every transition that has to
// keep an Order and an Agent mutually consistent.
type Service interface {
	Assign(ctx context.Context, input AssignInput) (*AssignResult, error)
	BulkAssign(ctx context.Context, input BulkAssignInput) (*BulkAssignResult, error)
	Unassign(ctx context.Context, input UnassignInput) (*UnassignResult, error)
	BulkUnassign(ctx context.Context, input BulkUnassignInput) (*BulkUnassignResult, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error)
}

type service struct {
	ordersRepo orders.Repository
	agentsRepo agents.Repository
	tx         txRunner
	metrics    *metrics.LifecycleMetrics
	now        func() time.Time
}

// NewService builds the lifecycle engine with the required dependencies.
// Metrics may be nil.
func NewService(ordersRepo orders.Repository, agentsRepo agents.Repository, tx txRunner, m *metrics.LifecycleMetrics) (Service, error) {
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if agentsRepo == nil {
		return nil, fmt.Errorf("agents repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		ordersRepo: ordersRepo,
		agentsRepo: agentsRepo,
		tx:         tx,
		metrics:    m,
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Assign(ctx context.Context, input AssignInput) (*AssignResult, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.AgentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent id required")
	}
	if input.AssignedBy == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assigned_by required")
	}

	var result *AssignResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.ordersRepo.WithTx(tx)
		agentsRepo := s.agentsRepo.WithTx(tx)

		order, err := s.loadOrder(ctx, ordersRepo, input.OrderID)
		if err != nil {
			return err
		}
		if err := validateAssignable(order); err != nil {
			return err
		}

		agent, err := s.loadAgent(ctx, agentsRepo, input.AgentID)
		if err != nil {
			return err
		}
		if !agent.Assignable() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "agent is not available for assignment")
		}

		now := s.now()

		// Conditional write: the claim only lands when no agent holds the
		// order, so two concurrent assigns cannot both win.
		claimed, err := ordersRepo.ClaimAssignment(ctx, order.ID, agent.ID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim assignment")
		}
		if !claimed {
			return pkgerrors.New(pkgerrors.CodeConflict, "an agent is already assigned to this order")
		}

		if order.Status == enums.OrderStatusPending {
			if err := ordersRepo.AdvanceStatus(ctx, order.ID, enums.OrderStatusPending, enums.OrderStatusProcessing); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "advance order status")
			}
			order.Status = enums.OrderStatusProcessing
		}

		entry := &models.TimelineEntry{
			OrderID:    order.ID,
			OccurredAt: now,
			Actor:      input.AssignedBy,
			Action:     enums.TimelineActionAgentAssigned,
			Note:       fmt.Sprintf("%s assigned", agent.Name),
		}
		if err := ordersRepo.AppendTimeline(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append timeline")
		}

		agentUpdates := map[string]any{
			"work_capacity":    enums.AgentCapacityBusy,
			"current_order_id": order.ID,
			"assigned_at":      now,
		}
		if err := agentsRepo.Update(ctx, agent.ID, agentUpdates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update agent")
		}
		if err := agentsRepo.IncrementCounters(ctx, agent.ID, agents.CounterDeltas{OrdersAssigned: 1}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment agent counters")
		}
		if err := agentsRepo.AddOrderRef(ctx, agent.ID, order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record assigned order")
		}

		order.AssignedAgentID = &agent.ID
		order.AssignedAt = &now
		order.UpdatedAt = now
		result = &AssignResult{
			Order: order,
			Agent: AgentRef{ID: agent.ID, Name: agent.Name, Phone: agent.Phone},
		}
		return nil
	})
	if err != nil {
		s.metrics.IncAssignment("failure")
		return nil, err
	}
	s.metrics.IncAssignment("success")
	return result, nil
}

func (s *service) BulkAssign(ctx context.Context, input BulkAssignInput) (*BulkAssignResult, error) {
	if len(input.OrderIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order ids required")
	}
	if input.AgentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent id required")
	}
	if input.AssignedBy == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assigned_by required")
	}

	orderIDs := dedupe(input.OrderIDs)
	s.metrics.ObserveBulkBatch("assign", len(orderIDs))

	var result *BulkAssignResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.ordersRepo.WithTx(tx)
		agentsRepo := s.agentsRepo.WithTx(tx)

		agent, err := s.loadAgent(ctx, agentsRepo, input.AgentID)
		if err != nil {
			return err
		}
		if !agent.Assignable() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "agent is not available for assignment")
		}

		// All-or-nothing: every order is validated before any mutation and
		// a single invalid item fails the whole call.
		loaded := make([]*models.Order, 0, len(orderIDs))
		var itemErrors []BulkItemError
		for _, orderID := range orderIDs {
			order, err := ordersRepo.FindByID(ctx, orderID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					itemErrors = append(itemErrors, BulkItemError{OrderID: orderID, Message: "order not found"})
					continue
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
			}
			if verr := validateAssignable(order); verr != nil {
				itemErrors = append(itemErrors, BulkItemError{OrderID: orderID, Message: verr.Error()})
				continue
			}
			loaded = append(loaded, order)
		}
		if len(itemErrors) > 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "one or more orders cannot be assigned").
				WithDetails(itemErrors)
		}

		now := s.now()
		assigned := make([]uuid.UUID, 0, len(loaded))
		for _, order := range loaded {
			claimed, err := ordersRepo.ClaimAssignment(ctx, order.ID, agent.ID, now)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim assignment")
			}
			if !claimed {
				return pkgerrors.New(pkgerrors.CodeConflict, "an agent is already assigned to this order").
					WithDetails(map[string]any{"order_id": order.ID})
			}
			if err := ordersRepo.AdvanceStatus(ctx, order.ID, enums.OrderStatusPending, enums.OrderStatusProcessing); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "advance order status")
			}
			entry := &models.TimelineEntry{
				OrderID:    order.ID,
				OccurredAt: now,
				Actor:      input.AssignedBy,
				Action:     enums.TimelineActionAgentAssigned,
				Note:       fmt.Sprintf("%s assigned (bulk)", agent.Name),
			}
			if err := ordersRepo.AppendTimeline(ctx, entry); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append timeline")
			}
			if err := agentsRepo.AddOrderRef(ctx, agent.ID, order.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record assigned order")
			}
			assigned = append(assigned, order.ID)
		}

		agentUpdates := map[string]any{
			"work_capacity": enums.AgentCapacityBusy,
			"assigned_at":   now,
		}
		if agent.CurrentOrderID == nil && len(loaded) > 0 {
			agentUpdates["current_order_id"] = loaded[0].ID
		}
		if err := agentsRepo.Update(ctx, agent.ID, agentUpdates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update agent")
		}
		if err := agentsRepo.IncrementCounters(ctx, agent.ID, agents.CounterDeltas{OrdersAssigned: len(loaded)}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment agent counters")
		}

		result = &BulkAssignResult{
			Policy:         enums.BulkPolicyAtomicAll,
			AssignedCount:  len(assigned),
			AssignedOrders: assigned,
			Agent:          AgentRef{ID: agent.ID, Name: agent.Name, Phone: agent.Phone},
		}
		return nil
	})
	if err != nil {
		s.metrics.IncAssignment("failure")
		return nil, err
	}
	s.metrics.IncAssignment("success")
	return result, nil
}

func (s *service) Unassign(ctx context.Context, input UnassignInput) (*UnassignResult, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	var result *UnassignResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.ordersRepo.WithTx(tx)
		agentsRepo := s.agentsRepo.WithTx(tx)

		order, err := s.loadOrder(ctx, ordersRepo, input.OrderID)
		if err != nil {
			return err
		}
		if !order.Assigned() {
			return pkgerrors.New(pkgerrors.CodeConflict, "no agent is assigned to this order")
		}
		agentID := *order.AssignedAgentID

		now := s.now()
		reason := input.Reason
		if reason == "" {
			reason = "unassigned by admin"
		}

		orderUpdates := map[string]any{
			"assigned_agent_id": nil,
			"unassigned_at":     now,
			"unassigned_reason": reason,
			"updated_at":        now,
		}
		if err := ordersRepo.Update(ctx, order.ID, orderUpdates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release order")
		}
		if order.Status == enums.OrderStatusProcessing {
			if err := ordersRepo.AdvanceStatus(ctx, order.ID, enums.OrderStatusProcessing, enums.OrderStatusPending); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revert order status")
			}
			order.Status = enums.OrderStatusPending
		}

		entry := &models.TimelineEntry{
			OrderID:    order.ID,
			OccurredAt: now,
			Actor:      input.UnassignedBy,
			Action:     enums.TimelineActionAgentUnassigned,
			Note:       fmt.Sprintf("agent unassigned: %s", reason),
		}
		if err := ordersRepo.AppendTimeline(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append timeline")
		}

		if err := agentsRepo.RemoveOrderRef(ctx, order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove assigned order")
		}

		var previous AgentRef
		agent, err := agentsRepo.FindByID(ctx, agentID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load agent")
			}
			// The referenced agent no longer exists; the order side is
			// still released.
			previous = AgentRef{ID: agentID}
		} else {
			previous = AgentRef{ID: agent.ID, Name: agent.Name, Phone: agent.Phone}
			// The agent is only reset when this order is the one it is
			// working on; an agent holding other orders keeps its state.
			if agent.CurrentOrderID != nil && *agent.CurrentOrderID == order.ID {
				agentUpdates := map[string]any{
					"work_capacity":    enums.AgentCapacityAvailable,
					"current_order_id": nil,
				}
				if err := agentsRepo.Update(ctx, agent.ID, agentUpdates); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "free agent")
				}
			} else if err := agentsRepo.Update(ctx, agent.ID, map[string]any{"updated_at": now}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "touch agent")
			}
		}

		order.AssignedAgentID = nil
		order.UnassignedAt = &now
		order.UnassignedReason = &reason
		order.UpdatedAt = now
		result = &UnassignResult{Order: order, PreviousAgent: previous, Reason: reason}
		return nil
	})
	if err != nil {
		s.metrics.IncUnassignment("failure")
		return nil, err
	}
	s.metrics.IncUnassignment("success")
	return result, nil
}

func (s *service) BulkUnassign(ctx context.Context, input BulkUnassignInput) (*BulkUnassignResult, error) {
	if len(input.OrderIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order ids required")
	}

	orderIDs := dedupe(input.OrderIDs)
	s.metrics.ObserveBulkBatch("unassign", len(orderIDs))

	result := &BulkUnassignResult{
		Policy:           enums.BulkPolicyBestEffort,
		UnassignedOrders: make([]uuid.UUID, 0, len(orderIDs)),
		AffectedAgents:   make([]uuid.UUID, 0),
		Errors:           make([]BulkItemError, 0),
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.ordersRepo.WithTx(tx)
		agentsRepo := s.agentsRepo.WithTx(tx)

		now := s.now()
		reason := input.Reason
		if reason == "" {
			reason = "unassigned by admin"
		}

		// Best-effort: invalid items are reported and skipped, the rest
		// proceed inside the same commit.
		byAgent := make(map[uuid.UUID][]uuid.UUID)
		for _, orderID := range orderIDs {
			order, err := ordersRepo.FindByID(ctx, orderID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					result.Errors = append(result.Errors, BulkItemError{OrderID: orderID, Message: "order not found"})
					continue
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
			}
			if !order.Assigned() {
				result.Errors = append(result.Errors, BulkItemError{OrderID: orderID, Message: "no agent is assigned to this order"})
				continue
			}
			agentID := *order.AssignedAgentID

			orderUpdates := map[string]any{
				"assigned_agent_id": nil,
				"unassigned_at":     now,
				"unassigned_reason": reason,
				"updated_at":        now,
			}
			if err := ordersRepo.Update(ctx, order.ID, orderUpdates); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release order")
			}
			if err := ordersRepo.AdvanceStatus(ctx, order.ID, enums.OrderStatusProcessing, enums.OrderStatusPending); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revert order status")
			}
			entry := &models.TimelineEntry{
				OrderID:    order.ID,
				OccurredAt: now,
				Actor:      input.UnassignedBy,
				Action:     enums.TimelineActionAgentUnassigned,
				Note:       fmt.Sprintf("agent unassigned: %s", reason),
			}
			if err := ordersRepo.AppendTimeline(ctx, entry); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append timeline")
			}
			if err := agentsRepo.RemoveOrderRef(ctx, order.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove assigned order")
			}

			byAgent[agentID] = append(byAgent[agentID], order.ID)
			result.UnassignedOrders = append(result.UnassignedOrders, order.ID)
		}

		for agentID, released := range byAgent {
			agent, err := agentsRepo.FindByID(ctx, agentID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load agent")
			}
			freed := false
			if agent.CurrentOrderID != nil {
				for _, orderID := range released {
					if orderID == *agent.CurrentOrderID {
						freed = true
						break
					}
				}
			}
			if freed {
				agentUpdates := map[string]any{
					"work_capacity":    enums.AgentCapacityAvailable,
					"current_order_id": nil,
				}
				if err := agentsRepo.Update(ctx, agentID, agentUpdates); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "free agent")
				}
			} else if err := agentsRepo.Update(ctx, agentID, map[string]any{"updated_at": now}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "touch agent")
			}
			result.AffectedAgents = append(result.AffectedAgents, agentID)
		}

		result.UnassignedCount = len(result.UnassignedOrders)
		return nil
	})
	if err != nil {
		s.metrics.IncUnassignment("failure")
		return nil, err
	}
	s.metrics.IncUnassignment("success")
	return result, nil
}

func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.ordersRepo.WithTx(tx)

		order, err := s.loadOrder(ctx, ordersRepo, input.OrderID)
		if err != nil {
			return err
		}

		now := s.now()
		// Transitions are deliberately unconstrained: any status may follow
		// any other. The timeline keeps the full history.
		if err := ordersRepo.Update(ctx, order.ID, map[string]any{
			"status":     input.Status,
			"updated_at": now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}

		note := input.Note
		if note == "" {
			note = fmt.Sprintf("status changed from %s to %s", order.Status, input.Status)
		}
		entry := &models.TimelineEntry{
			OrderID:    order.ID,
			OccurredAt: now,
			Actor:      input.UpdatedBy,
			Action:     enums.TimelineActionStatusChanged,
			Note:       note,
		}
		if err := ordersRepo.AppendTimeline(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append timeline")
		}

		order.Status = input.Status
		order.UpdatedAt = now
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) loadOrder(ctx context.Context, repo orders.Repository, orderID uuid.UUID) (*models.Order, error) {
	order, err := repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) loadAgent(ctx context.Context, repo agents.Repository, agentID uuid.UUID) (*models.Agent, error) {
	agent, err := repo.FindByID(ctx, agentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "agent not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load agent")
	}
	return agent, nil
}

// validateAssignable applies the per-order assignment preconditions in the
// documented order: assignment state first, then delivery type.
func validateAssignable(order *models.Order) *pkgerrors.Error {
	if order.Assigned() {
		return pkgerrors.New(pkgerrors.CodeConflict, "an agent is already assigned to this order")
	}
	if order.DeliveryType != enums.DeliveryTypeOwn {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "only own-delivery orders can be assigned to an agent")
	}
	return nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
