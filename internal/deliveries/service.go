package deliveries

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pramodsinghlodhi/masterprint-backend/internal/agents"
	"github.com/pramodsinghlodhi/masterprint-backend/internal/orders"
	"github.com/pramodsinghlodhi/masterprint-backend/internal/pricing"
	"github.com/pramodsinghlodhi/masterprint-backend/pkg/db/models"
	"github.com/pramodsinghlodhi/masterprint-backend/pkg/enums"
	pkgerrors "github.com/pramodsinghlodhi/masterprint-backend/pkg/errors"
	"github.com/pramodsinghlodhi/masterprint-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service records delivery completions and aggregates agent earnings.
type Service interface {
	RecordCompletion(ctx context.Context, input CompletionInput) (*CompletionResult, error)
	EarningsReport(ctx context.Context, query ReportQuery) (*Report, error)
}

type service struct {
	ordersRepo           orders.Repository
	agentsRepo           agents.Repository
	tx                   txRunner
	metrics              *metrics.LifecycleMetrics
	defaultCommissionPct int
	now                  func() time.Time
}

func NewService(ordersRepo orders.Repository, agentsRepo agents.Repository, tx txRunner, m *metrics.LifecycleMetrics, defaultCommissionPct int) (Service, error) {
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if agentsRepo == nil {
		return nil, fmt.Errorf("agents repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if defaultCommissionPct < 0 || defaultCommissionPct > 100 {
		return nil, fmt.Errorf("default commission percentage must be within [0,100], got %d", defaultCommissionPct)
	}
	return &service{
		ordersRepo:           ordersRepo,
		agentsRepo:           agentsRepo,
		tx:                   tx,
		metrics:              m,
		defaultCommissionPct: defaultCommissionPct,
		now:                  func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) RecordCompletion(ctx context.Context, input CompletionInput) (*CompletionResult, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.AgentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent id required")
	}
	if input.FeeCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery fee must not be negative")
	}
	if input.DistanceKm < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "distance must not be negative")
	}
	pct := s.defaultCommissionPct
	if input.CommissionPct != nil {
		pct = *input.CommissionPct
	}
	if pct < 0 || pct > 100 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "commission percentage must be within [0,100]")
	}

	var result *CompletionResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.ordersRepo.WithTx(tx)
		agentsRepo := s.agentsRepo.WithTx(tx)

		order, err := ordersRepo.FindByID(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.AssignedAgentID == nil || *order.AssignedAgentID != input.AgentID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order is not assigned to this agent")
		}
		if order.Status == enums.OrderStatusDelivered {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "delivery already recorded for this order")
		}

		commission, revenue := pricing.SplitFee(input.FeeCents, pct)
		now := s.now()

		// One commit covers both sides: an order never reads as delivered
		// while its agent's counters say otherwise.
		orderUpdates := map[string]any{
			"status":                 enums.OrderStatusDelivered,
			"delivered_at":           now,
			"delivery_distance_km":   input.DistanceKm,
			"delivery_fee_cents":     input.FeeCents,
			"agent_commission_pct":   pct,
			"agent_commission_cents": commission,
			"company_revenue_cents":  revenue,
			"updated_at":             now,
		}
		if err := ordersRepo.Update(ctx, order.ID, orderUpdates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist delivery")
		}

		entry := &models.TimelineEntry{
			OrderID:    order.ID,
			OccurredAt: now,
			Actor:      input.AgentID.String(),
			Action:     enums.TimelineActionDeliveryCompleted,
			Note:       fmt.Sprintf("delivered, commission %d of fee %d", commission, input.FeeCents),
		}
		if err := ordersRepo.AppendTimeline(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append timeline")
		}

		if err := agentsRepo.IncrementCounters(ctx, input.AgentID, agents.CounterDeltas{
			DeliveriesCompleted: 1,
			TotalEarningsCents:  commission,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "credit agent")
		}
		if err := agentsRepo.RemoveOrderRef(ctx, order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove assigned order")
		}

		agent, err := agentsRepo.FindByID(ctx, input.AgentID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load agent")
		}
		if agent.CurrentOrderID != nil && *agent.CurrentOrderID == order.ID {
			agentUpdates := map[string]any{
				"work_capacity":    enums.AgentCapacityAvailable,
				"current_order_id": nil,
			}
			if err := agentsRepo.Update(ctx, agent.ID, agentUpdates); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "free agent")
			}
		}

		order.Status = enums.OrderStatusDelivered
		order.DeliveredAt = &now
		order.DeliveryDistanceKm = input.DistanceKm
		order.DeliveryFeeCents = input.FeeCents
		order.AgentCommissionPct = pct
		order.AgentCommissionCents = commission
		order.CompanyRevenueCents = revenue
		order.UpdatedAt = now
		result = &CompletionResult{
			Order:           order,
			FeeCents:        input.FeeCents,
			CommissionCents: commission,
			RevenueCents:    revenue,
			CommissionPct:   pct,
		}
		return nil
	})
	if err != nil {
		s.metrics.IncCompletion("failure")
		return nil, err
	}
	s.metrics.IncCompletion("success")
	return result, nil
}

func (s *service) EarningsReport(ctx context.Context, query ReportQuery) (*Report, error) {
	if query.AgentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent id required")
	}

	from, to, err := s.resolveWindow(query)
	if err != nil {
		return nil, err
	}

	if _, err := s.agentsRepo.FindByID(ctx, query.AgentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "agent not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load agent")
	}

	delivered, err := s.ordersRepo.ListDeliveredByAgent(ctx, query.AgentID, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list delivered orders")
	}

	report := &Report{
		AgentID:    query.AgentID,
		From:       from,
		To:         to,
		Deliveries: make([]ReportEntry, 0, len(delivered)),
	}
	for _, order := range delivered {
		if order.DeliveredAt == nil {
			continue
		}
		report.TotalEarningsCents += order.AgentCommissionCents
		report.Deliveries = append(report.Deliveries, ReportEntry{
			OrderID:         order.ID,
			OrderNumber:     order.OrderNumber,
			DeliveredAt:     *order.DeliveredAt,
			FeeCents:        order.DeliveryFeeCents,
			CommissionCents: order.AgentCommissionCents,
			DistanceKm:      order.DeliveryDistanceKm,
		})
	}
	report.TotalDeliveries = len(report.Deliveries)
	if report.TotalDeliveries > 0 {
		report.AveragePerDelivCents = report.TotalEarningsCents / report.TotalDeliveries
	}
	return report, nil
}

// resolveWindow turns a named period or explicit range into [from, to).
func (s *service) resolveWindow(query ReportQuery) (time.Time, time.Time, error) {
	if query.From != nil || query.To != nil {
		if query.From == nil || query.To == nil {
			return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "both from and to are required for an explicit range")
		}
		if query.To.Before(*query.From) {
			return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "range end must not precede range start")
		}
		return *query.From, *query.To, nil
	}

	now := s.now()
	switch query.Period {
	case PeriodDaily:
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return midnight, now, nil
	case PeriodWeekly:
		return now.AddDate(0, 0, -7), now, nil
	case PeriodMonthly:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return first, now, nil
	case PeriodYearly:
		first := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		return first, now, nil
	case "":
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "period or explicit range required")
	default:
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown report period")
	}
}
