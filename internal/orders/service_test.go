package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pramodsinghlodhi/masterprint-backend/pkg/db/models"
	"github.com/pramodsinghlodhi/masterprint-backend/pkg/enums"
	pkgerrors "github.com/pramodsinghlodhi/masterprint-backend/pkg/errors"
	"github.com/pramodsinghlodhi/masterprint-backend/pkg/pagination"
)

type stubRepo struct {
	orders   map[uuid.UUID]*models.Order
	timeline map[uuid.UUID][]models.TimelineEntry
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		orders:   map[uuid.UUID]*models.Order{},
		timeline: map[uuid.UUID][]models.TimelineEntry{},
	}
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.orders[order.ID] = order
	return order, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (s *stubRepo) FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	for _, order := range s.orders {
		if order.OrderNumber == orderNumber {
			return order, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) FindDetail(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.FindByID(ctx, id)
}

func (s *stubRepo) List(ctx context.Context, params pagination.Params, filters Filters) (*OrderList, error) {
	panic("not implemented")
}

func (s *stubRepo) Update(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	panic("not implemented")
}

func (s *stubRepo) ClaimAssignment(ctx context.Context, orderID, agentID uuid.UUID, now time.Time) (bool, error) {
	panic("not implemented")
}

func (s *stubRepo) AdvanceStatus(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus) error {
	panic("not implemented")
}

func (s *stubRepo) AppendTimeline(ctx context.Context, entry *models.TimelineEntry) error {
	entry.Seq = len(s.timeline[entry.OrderID]) + 1
	s.timeline[entry.OrderID] = append(s.timeline[entry.OrderID], *entry)
	return nil
}

func (s *stubRepo) ListDeliveredByAgent(ctx context.Context, agentID uuid.UUID, from, to time.Time) ([]models.Order, error) {
	panic("not implemented")
}

type stubNumbers struct {
	next int64
}

func (s *stubNumbers) Next(ctx context.Context) (int64, error) {
	s.next++
	return s.next, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestService(t *testing.T, repo Repository, numbers NumberSource) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{}, numbers)
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

func TestCreateAllocatesSequentialNumbers(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo, &stubNumbers{next: 122})

	first, err := svc.Create(context.Background(), CreateInput{
		DeliveryType: enums.DeliveryTypeOwn,
		TotalCents:   15000,
		CustomerName: "Asha Verma",
		CreatedBy:    "admin1",
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if first.OrderNumber != "MP000123" {
		t.Fatalf("expected MP000123 got %s", first.OrderNumber)
	}
	if first.Status != enums.OrderStatusPending {
		t.Fatalf("new orders start pending, got %s", first.Status)
	}

	second, err := svc.Create(context.Background(), CreateInput{DeliveryType: enums.DeliveryTypeOwn})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if second.OrderNumber != "MP000124" {
		t.Fatalf("expected MP000124 got %s", second.OrderNumber)
	}
}

func TestCreateWritesCreationTimeline(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo, &stubNumbers{})

	order, err := svc.Create(context.Background(), CreateInput{
		DeliveryType: enums.DeliveryTypeOwn,
		CreatedBy:    "admin1",
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}

	entries := repo.timeline[order.ID]
	if len(entries) != 1 {
		t.Fatalf("expected 1 timeline entry got %d", len(entries))
	}
	if entries[0].Action != enums.TimelineActionOrderCreated {
		t.Fatalf("expected order_created got %s", entries[0].Action)
	}
	if entries[0].Actor != "admin1" {
		t.Fatalf("expected actor admin1 got %s", entries[0].Actor)
	}
}

func TestCreateDefaultsActorToSystem(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo, &stubNumbers{})

	order, err := svc.Create(context.Background(), CreateInput{DeliveryType: enums.DeliveryTypeShiprocket})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if got := repo.timeline[order.ID][0].Actor; got != "system" {
		t.Fatalf("expected actor system got %s", got)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t, newStubRepo(), &stubNumbers{})

	_, err := svc.Create(context.Background(), CreateInput{DeliveryType: "drone"})
	assertCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.Create(context.Background(), CreateInput{DeliveryType: enums.DeliveryTypeOwn, TotalCents: -1})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestGetByNumberNotFound(t *testing.T) {
	svc := newTestService(t, newStubRepo(), &stubNumbers{})

	_, err := svc.GetByNumber(context.Background(), "MP999999")
	assertCode(t, err, pkgerrors.CodeNotFound)
}
