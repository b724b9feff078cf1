package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pramodsinghlodhi/masterprint-backend/pkg/db/models"
	"github.com/pramodsinghlodhi/masterprint-backend/pkg/enums"
	"github.com/pramodsinghlodhi/masterprint-backend/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL UNIQUE,
  status TEXT NOT NULL DEFAULT 'pending',
  delivery_type TEXT NOT NULL DEFAULT 'own',
  delivery_fee_cents INTEGER NOT NULL DEFAULT 0,
  delivery_distance_km REAL NOT NULL DEFAULT 0,
  agent_commission_pct INTEGER NOT NULL DEFAULT 70,
  agent_commission_cents INTEGER NOT NULL DEFAULT 0,
  company_revenue_cents INTEGER NOT NULL DEFAULT 0,
  delivered_at DATETIME,
  assigned_agent_id TEXT,
  assigned_at DATETIME,
  unassigned_at DATETIME,
  unassigned_reason TEXT,
  urgent INTEGER NOT NULL DEFAULT 0,
  total_cents INTEGER NOT NULL DEFAULT 0,
  customer_name TEXT,
  customer_phone TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	timeline := `
CREATE TABLE IF NOT EXISTS order_timeline (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  seq INTEGER NOT NULL,
  occurred_at DATETIME NOT NULL,
  actor TEXT NOT NULL,
  action TEXT NOT NULL,
  note TEXT
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(timeline).Error)
	require.NoError(t, db.Exec(`DELETE FROM orders`).Error)
	require.NoError(t, db.Exec(`DELETE FROM order_timeline`).Error)
	return db
}

func createTestOrder(t *testing.T, db *gorm.DB, number string, status enums.OrderStatus, created time.Time) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:           uuid.New(),
		OrderNumber:  number,
		Status:       status,
		DeliveryType: enums.DeliveryTypeOwn,
		TotalCents:   15000,
		CustomerName: "Asha Verma",
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestRepositoryClaimAssignment(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	order := createTestOrder(t, db, "MP000101", enums.OrderStatusPending, now)
	first := uuid.New()
	second := uuid.New()

	claimed, err := repo.ClaimAssignment(context.Background(), order.ID, first, now)
	require.NoError(t, err)
	assert.True(t, claimed)

	// the order already holds an agent, the second claim must lose
	claimed, err = repo.ClaimAssignment(context.Background(), order.ID, second, now)
	require.NoError(t, err)
	assert.False(t, claimed)

	stored, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.AssignedAgentID)
	assert.Equal(t, first, *stored.AssignedAgentID)
	require.NotNil(t, stored.AssignedAt)
}

func TestRepositoryAdvanceStatusConditional(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	order := createTestOrder(t, db, "MP000102", enums.OrderStatusPending, now)

	require.NoError(t, repo.AdvanceStatus(context.Background(), order.ID, enums.OrderStatusPending, enums.OrderStatusProcessing))

	stored, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusProcessing, stored.Status)

	// precondition no longer holds, the write is a no-op
	require.NoError(t, repo.AdvanceStatus(context.Background(), order.ID, enums.OrderStatusPending, enums.OrderStatusDelivered))

	stored, err = repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusProcessing, stored.Status)
}

func TestRepositoryAppendTimelineSequencing(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	first := createTestOrder(t, db, "MP000103", enums.OrderStatusPending, now)
	second := createTestOrder(t, db, "MP000104", enums.OrderStatusPending, now)

	for i := 0; i < 3; i++ {
		entry := &models.TimelineEntry{
			ID:      uuid.New(),
			OrderID: first.ID,
			Actor:   "admin1",
			Action:  enums.TimelineActionStatusChanged,
		}
		require.NoError(t, repo.AppendTimeline(context.Background(), entry))
		assert.Equal(t, i+1, entry.Seq)
	}

	// sequences are per order, not global
	other := &models.TimelineEntry{
		ID:      uuid.New(),
		OrderID: second.ID,
		Actor:   "admin1",
		Action:  enums.TimelineActionStatusChanged,
	}
	require.NoError(t, repo.AppendTimeline(context.Background(), other))
	assert.Equal(t, 1, other.Seq)

	detail, err := repo.FindDetail(context.Background(), first.ID)
	require.NoError(t, err)
	require.Len(t, detail.Timeline, 3)
	for i, entry := range detail.Timeline {
		assert.Equal(t, i+1, entry.Seq)
	}
}

func TestRepositoryListDeliveredByAgent(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	agentID := uuid.New()
	otherAgent := uuid.New()
	now := time.Now().UTC()

	markDelivered := func(order *models.Order, agent uuid.UUID, deliveredAt time.Time, commission int) {
		require.NoError(t, repo.Update(context.Background(), order.ID, map[string]any{
			"status":                 enums.OrderStatusDelivered,
			"assigned_agent_id":      agent,
			"delivered_at":           deliveredAt,
			"agent_commission_cents": commission,
		}))
	}

	recent := createTestOrder(t, db, "MP000105", enums.OrderStatusOutForDelivery, now)
	markDelivered(recent, agentID, now.Add(-time.Hour), 35)

	older := createTestOrder(t, db, "MP000106", enums.OrderStatusOutForDelivery, now)
	markDelivered(older, agentID, now.Add(-48*time.Hour), 70)

	ancient := createTestOrder(t, db, "MP000107", enums.OrderStatusOutForDelivery, now)
	markDelivered(ancient, agentID, now.AddDate(0, 0, -30), 21)

	foreign := createTestOrder(t, db, "MP000108", enums.OrderStatusOutForDelivery, now)
	markDelivered(foreign, otherAgent, now.Add(-time.Hour), 99)

	// still assigned but not delivered
	createTestOrder(t, db, "MP000109", enums.OrderStatusOutForDelivery, now)

	rows, err := repo.ListDeliveredByAgent(context.Background(), agentID, now.AddDate(0, 0, -7), now)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "MP000105", rows[0].OrderNumber)
	assert.Equal(t, "MP000106", rows[1].OrderNumber)

	all, err := repo.ListDeliveredByAgent(context.Background(), agentID, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRepositoryListPaginationAndFilters(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	createTestOrder(t, db, "MP000110", enums.OrderStatusPending, now.Add(-2*time.Hour))
	createTestOrder(t, db, "MP000111", enums.OrderStatusProcessing, now.Add(-time.Hour))
	createTestOrder(t, db, "MP000112", enums.OrderStatusPending, now)

	list, err := repo.List(context.Background(), pagination.Params{Limit: 2}, Filters{})
	require.NoError(t, err)
	require.Len(t, list.Orders, 2)
	assert.Equal(t, "MP000112", list.Orders[0].OrderNumber)
	assert.Equal(t, "MP000111", list.Orders[1].OrderNumber)
	assert.NotEmpty(t, list.NextCursor)

	second, err := repo.List(context.Background(), pagination.Params{Limit: 2, Cursor: list.NextCursor}, Filters{})
	require.NoError(t, err)
	require.Len(t, second.Orders, 1)
	assert.Equal(t, "MP000110", second.Orders[0].OrderNumber)
	assert.Empty(t, second.NextCursor)

	pending := enums.OrderStatusPending
	filtered, err := repo.List(context.Background(), pagination.Params{Limit: 10}, Filters{Status: &pending})
	require.NoError(t, err)
	assert.Len(t, filtered.Orders, 2)
}
