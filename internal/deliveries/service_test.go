package deliveries

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pramodsinghlodhi/masterprint-backend/internal/agents"
	"github.com/pramodsinghlodhi/masterprint-backend/internal/orders"
	"github.com/pramodsinghlodhi/masterprint-backend/pkg/db/models"
	"github.com/pramodsinghlodhi/masterprint-backend/pkg/enums"
	pkgerrors "github.com/pramodsinghlodhi/masterprint-backend/pkg/errors"
	"github.com/pramodsinghlodhi/masterprint-backend/pkg/pagination"
)

type stubOrdersRepo struct {
	orders    map[uuid.UUID]*models.Order
	timeline  map[uuid.UUID][]models.TimelineEntry
	delivered []models.Order
}

func newStubOrdersRepo(rows ...*models.Order) *stubOrdersRepo {
	repo := &stubOrdersRepo{
		orders:   map[uuid.UUID]*models.Order{},
		timeline: map[uuid.UUID][]models.TimelineEntry{},
	}
	for _, row := range rows {
		repo.orders[row.ID] = row
	}
	return repo
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) orders.Repository { return s }

func (s *stubOrdersRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	s.orders[order.ID] = order
	return order, nil
}

func (s *stubOrdersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	return &copied, nil
}

func (s *stubOrdersRepo) FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	panic("not implemented")
}

func (s *stubOrdersRepo) FindDetail(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.FindByID(ctx, id)
}

func (s *stubOrdersRepo) List(ctx context.Context, params pagination.Params, filters orders.Filters) (*orders.OrderList, error) {
	panic("not implemented")
}

func (s *stubOrdersRepo) Update(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	order, ok := s.orders[orderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for key, value := range updates {
		switch key {
		case "status":
			if v, ok := value.(enums.OrderStatus); ok {
				order.Status = v
			}
		case "delivered_at":
			if v, ok := value.(time.Time); ok {
				order.DeliveredAt = &v
			}
		case "delivery_distance_km":
			if v, ok := value.(float64); ok {
				order.DeliveryDistanceKm = v
			}
		case "delivery_fee_cents":
			if v, ok := value.(int); ok {
				order.DeliveryFeeCents = v
			}
		case "agent_commission_pct":
			if v, ok := value.(int); ok {
				order.AgentCommissionPct = v
			}
		case "agent_commission_cents":
			if v, ok := value.(int); ok {
				order.AgentCommissionCents = v
			}
		case "company_revenue_cents":
			if v, ok := value.(int); ok {
				order.CompanyRevenueCents = v
			}
		case "updated_at":
			if v, ok := value.(time.Time); ok {
				order.UpdatedAt = v
			}
		}
	}
	return nil
}

func (s *stubOrdersRepo) ClaimAssignment(ctx context.Context, orderID, agentID uuid.UUID, now time.Time) (bool, error) {
	panic("not implemented")
}

func (s *stubOrdersRepo) AdvanceStatus(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus) error {
	panic("not implemented")
}

func (s *stubOrdersRepo) AppendTimeline(ctx context.Context, entry *models.TimelineEntry) error {
	s.timeline[entry.OrderID] = append(s.timeline[entry.OrderID], *entry)
	return nil
}

func (s *stubOrdersRepo) ListDeliveredByAgent(ctx context.Context, agentID uuid.UUID, from, to time.Time) ([]models.Order, error) {
	var rows []models.Order
	for _, row := range s.delivered {
		if row.AssignedAgentID == nil || *row.AssignedAgentID != agentID {
			continue
		}
		if row.DeliveredAt == nil {
			continue
		}
		if !from.IsZero() && row.DeliveredAt.Before(from) {
			continue
		}
		if !to.IsZero() && row.DeliveredAt.After(to) {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

type stubAgentsRepo struct {
	agents map[uuid.UUID]*models.Agent
	refs   map[uuid.UUID]uuid.UUID
}

func newStubAgentsRepo(rows ...*models.Agent) *stubAgentsRepo {
	repo := &stubAgentsRepo{
		agents: map[uuid.UUID]*models.Agent{},
		refs:   map[uuid.UUID]uuid.UUID{},
	}
	for _, row := range rows {
		repo.agents[row.ID] = row
	}
	return repo
}

func (s *stubAgentsRepo) WithTx(tx *gorm.DB) agents.Repository { return s }

func (s *stubAgentsRepo) Create(ctx context.Context, agent *models.Agent) (*models.Agent, error) {
	s.agents[agent.ID] = agent
	return agent, nil
}

func (s *stubAgentsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Agent, error) {
	agent, ok := s.agents[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *agent
	return &copied, nil
}

func (s *stubAgentsRepo) List(ctx context.Context, params pagination.Params, filters agents.Filters) (*agents.AgentList, error) {
	panic("not implemented")
}

func (s *stubAgentsRepo) Update(ctx context.Context, agentID uuid.UUID, updates map[string]any) error {
	agent, ok := s.agents[agentID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for key, value := range updates {
		switch key {
		case "work_capacity":
			if v, ok := value.(enums.AgentCapacity); ok {
				agent.WorkCapacity = v
			}
		case "current_order_id":
			if value == nil {
				agent.CurrentOrderID = nil
			}
		}
	}
	return nil
}

func (s *stubAgentsRepo) IncrementCounters(ctx context.Context, agentID uuid.UUID, deltas agents.CounterDeltas) error {
	agent, ok := s.agents[agentID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	agent.OrdersAssigned += deltas.OrdersAssigned
	agent.DeliveriesCompleted += deltas.DeliveriesCompleted
	agent.TotalEarningsCents += deltas.TotalEarningsCents
	return nil
}

func (s *stubAgentsRepo) AddOrderRef(ctx context.Context, agentID, orderID uuid.UUID) error {
	s.refs[orderID] = agentID
	return nil
}

func (s *stubAgentsRepo) RemoveOrderRef(ctx context.Context, orderID uuid.UUID) error {
	delete(s.refs, orderID)
	return nil
}

func (s *stubAgentsRepo) FindOrderRefs(ctx context.Context, agentID uuid.UUID) ([]models.AgentOrderRef, error) {
	panic("not implemented")
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestService(t *testing.T, ordersRepo *stubOrdersRepo, agentsRepo *stubAgentsRepo) *service {
	t.Helper()
	svc, err := NewService(ordersRepo, agentsRepo, stubTxRunner{}, nil, 70)
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}
	return svc.(*service)
}

func assignedOrder(agentID uuid.UUID) *models.Order {
	return &models.Order{
		ID:              uuid.New(),
		OrderNumber:     "MP000200",
		Status:          enums.OrderStatusOutForDelivery,
		DeliveryType:    enums.DeliveryTypeOwn,
		AssignedAgentID: &agentID,
	}
}

func busyAgent() *models.Agent {
	return &models.Agent{
		ID:              uuid.New(),
		Name:            "Ravi Kumar",
		AccountStanding: enums.AgentStandingActive,
		WorkCapacity:    enums.AgentCapacityBusy,
		Approved:        true,
	}
}

func TestRecordCompletionSplitsAndCredits(t *testing.T) {
	agent := busyAgent()
	order := assignedOrder(agent.ID)
	agent.CurrentOrderID = &order.ID
	ordersRepo := newStubOrdersRepo(order)
	agentsRepo := newStubAgentsRepo(agent)
	svc := newTestService(t, ordersRepo, agentsRepo)

	result, err := svc.RecordCompletion(context.Background(), CompletionInput{
		OrderID:    order.ID,
		AgentID:    agent.ID,
		DistanceKm: 4,
		FeeCents:   50,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}

	if result.CommissionCents != 35 || result.RevenueCents != 15 {
		t.Fatalf("expected 35/15 split got %d/%d", result.CommissionCents, result.RevenueCents)
	}
	if result.CommissionCents+result.RevenueCents != result.FeeCents {
		t.Fatal("split must conserve the fee")
	}

	stored := ordersRepo.orders[order.ID]
	if stored.Status != enums.OrderStatusDelivered {
		t.Fatalf("expected delivered got %s", stored.Status)
	}
	if stored.DeliveredAt == nil {
		t.Fatal("expected delivered_at stamped")
	}
	if stored.AgentCommissionCents != 35 || stored.CompanyRevenueCents != 15 {
		t.Fatal("expected split persisted on the order")
	}

	storedAgent := agentsRepo.agents[agent.ID]
	if storedAgent.DeliveriesCompleted != 1 {
		t.Fatalf("expected deliveries_completed 1 got %d", storedAgent.DeliveriesCompleted)
	}
	if storedAgent.TotalEarningsCents != 35 {
		t.Fatalf("expected earnings 35 got %d", storedAgent.TotalEarningsCents)
	}
	if storedAgent.WorkCapacity != enums.AgentCapacityAvailable {
		t.Fatal("expected agent freed")
	}
	if storedAgent.CurrentOrderID != nil {
		t.Fatal("expected current order cleared")
	}
	if got := len(ordersRepo.timeline[order.ID]); got != 1 {
		t.Fatalf("expected 1 timeline entry got %d", got)
	}
}

func TestRecordCompletionWrongAgentForbidden(t *testing.T) {
	agent := busyAgent()
	impostor := busyAgent()
	order := assignedOrder(agent.ID)
	ordersRepo := newStubOrdersRepo(order)
	agentsRepo := newStubAgentsRepo(agent, impostor)
	svc := newTestService(t, ordersRepo, agentsRepo)

	_, err := svc.RecordCompletion(context.Background(), CompletionInput{
		OrderID:  order.ID,
		AgentID:  impostor.ID,
		FeeCents: 50,
	})
	assertCode(t, err, pkgerrors.CodeForbidden)

	// neither side may be mutated
	if ordersRepo.orders[order.ID].Status != enums.OrderStatusOutForDelivery {
		t.Fatal("order status must be untouched")
	}
	if agentsRepo.agents[impostor.ID].TotalEarningsCents != 0 {
		t.Fatal("impostor must not be credited")
	}
	if agentsRepo.agents[agent.ID].DeliveriesCompleted != 0 {
		t.Fatal("assigned agent must not be credited")
	}
}

func TestRecordCompletionAlreadyDelivered(t *testing.T) {
	agent := busyAgent()
	order := assignedOrder(agent.ID)
	order.Status = enums.OrderStatusDelivered
	svc := newTestService(t, newStubOrdersRepo(order), newStubAgentsRepo(agent))

	_, err := svc.RecordCompletion(context.Background(), CompletionInput{
		OrderID:  order.ID,
		AgentID:  agent.ID,
		FeeCents: 50,
	})
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestEarningsReportWindow(t *testing.T) {
	agent := busyAgent()
	agentsRepo := newStubAgentsRepo(agent)
	ordersRepo := newStubOrdersRepo()

	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	inside := []int{35, 70, 21}
	for i, commission := range inside {
		deliveredAt := now.AddDate(0, 0, -i)
		ordersRepo.delivered = append(ordersRepo.delivered, models.Order{
			ID:                   uuid.New(),
			OrderNumber:          "MP00030" + string(rune('0'+i)),
			Status:               enums.OrderStatusDelivered,
			AssignedAgentID:      &agent.ID,
			DeliveredAt:          &deliveredAt,
			AgentCommissionCents: commission,
		})
	}
	// outside the 7-day window
	old := now.AddDate(0, 0, -30)
	ordersRepo.delivered = append(ordersRepo.delivered, models.Order{
		ID:                   uuid.New(),
		Status:               enums.OrderStatusDelivered,
		AssignedAgentID:      &agent.ID,
		DeliveredAt:          &old,
		AgentCommissionCents: 999,
	})

	svc := newTestService(t, ordersRepo, agentsRepo)
	svc.now = func() time.Time { return now }

	report, err := svc.EarningsReport(context.Background(), ReportQuery{
		AgentID: agent.ID,
		Period:  PeriodWeekly,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if report.TotalDeliveries != 3 {
		t.Fatalf("expected 3 deliveries got %d", report.TotalDeliveries)
	}
	if report.TotalEarningsCents != 126 {
		t.Fatalf("expected 126 total got %d", report.TotalEarningsCents)
	}
	if report.AveragePerDelivCents != 42 {
		t.Fatalf("expected average 42 got %d", report.AveragePerDelivCents)
	}
}

func TestEarningsReportEmptyWindow(t *testing.T) {
	agent := busyAgent()
	svc := newTestService(t, newStubOrdersRepo(), newStubAgentsRepo(agent))

	report, err := svc.EarningsReport(context.Background(), ReportQuery{
		AgentID: agent.ID,
		Period:  PeriodDaily,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if report.TotalDeliveries != 0 || report.TotalEarningsCents != 0 || report.AveragePerDelivCents != 0 {
		t.Fatal("empty window must report zeros")
	}
}

func TestEarningsReportExplicitRangeValidation(t *testing.T) {
	agent := busyAgent()
	svc := newTestService(t, newStubOrdersRepo(), newStubAgentsRepo(agent))

	from := time.Now()
	_, err := svc.EarningsReport(context.Background(), ReportQuery{AgentID: agent.ID, From: &from})
	assertCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.EarningsReport(context.Background(), ReportQuery{AgentID: agent.ID})
	assertCode(t, err, pkgerrors.CodeValidation)
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
