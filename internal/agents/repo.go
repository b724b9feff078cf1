package agents

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pramodsinghlodhi/masterprint-backend/pkg/db/models"
	"github.com/pramodsinghlodhi/masterprint-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an agents repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, agent *models.Agent) (*models.Agent, error) {
	if err := r.db.WithContext(ctx).Create(agent).Error; err != nil {
		return nil, err
	}
	return agent, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Agent, error) {
	var agent models.Agent
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&agent).Error
	if err != nil {
		return nil, err
	}
	return &agent, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters Filters) (*AgentList, error) {
	query := r.db.WithContext(ctx).Model(&models.Agent{})

	if filters.Standing != nil {
		query = query.Where("account_standing = ?", *filters.Standing)
	}
	if filters.Capacity != nil {
		query = query.Where("work_capacity = ?", *filters.Capacity)
	}
	if filters.Approved != nil {
		query = query.Where("approved = ?", *filters.Approved)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	limit := pagination.NormalizeLimit(params.Limit)

	var rows []models.Agent
	err = query.
		Order("created_at DESC, id DESC").
		Limit(limit + 1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &AgentList{Agents: make([]Summary, 0, len(rows))}
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	for i := range rows {
		list.Agents = append(list.Agents, NewSummary(&rows[i]))
	}
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return list, nil
}

func (r *repository) Update(ctx context.Context, agentID uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Agent{}).
		Where("id = ?", agentID).
		Updates(updates).Error
}

func (r *repository) IncrementCounters(ctx context.Context, agentID uuid.UUID, deltas CounterDeltas) error {
	if deltas.OrdersAssigned < 0 || deltas.DeliveriesCompleted < 0 || deltas.TotalEarningsCents < 0 {
		return fmt.Errorf("counter deltas must be non-negative")
	}
	updates := map[string]any{}
	if deltas.OrdersAssigned > 0 {
		updates["orders_assigned"] = gorm.Expr("orders_assigned + ?", deltas.OrdersAssigned)
	}
	if deltas.DeliveriesCompleted > 0 {
		updates["deliveries_completed"] = gorm.Expr("deliveries_completed + ?", deltas.DeliveriesCompleted)
	}
	if deltas.TotalEarningsCents > 0 {
		updates["total_earnings_cents"] = gorm.Expr("total_earnings_cents + ?", deltas.TotalEarningsCents)
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Agent{}).
		Where("id = ?", agentID).
		Updates(updates).Error
}

func (r *repository) AddOrderRef(ctx context.Context, agentID, orderID uuid.UUID) error {
	ref := models.AgentOrderRef{AgentID: agentID, OrderID: orderID}
	return r.db.WithContext(ctx).Create(&ref).Error
}

func (r *repository) RemoveOrderRef(ctx context.Context, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Delete(&models.AgentOrderRef{}).Error
}

func (r *repository) FindOrderRefs(ctx context.Context, agentID uuid.UUID) ([]models.AgentOrderRef, error) {
	var refs []models.AgentOrderRef
	err := r.db.WithContext(ctx).
		Where("agent_id = ?", agentID).
		Order("assigned_at ASC").
		Find(&refs).Error
	if err != nil {
		return nil, err
	}
	return refs, nil
}
