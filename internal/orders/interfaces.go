package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pramodsinghlodhi/masterprint-backend/pkg/db/models"
	"github.com/pramodsinghlodhi/masterprint-backend/pkg/enums"
	"github.com/pramodsinghlodhi/masterprint-backend/pkg/pagination"
)

// Repository defines persistence operations for orders and their timelines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	FindDetail(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, params pagination.Params, filters Filters) (*OrderList, error)
	Update(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
	// ClaimAssignment performs the conditional assignment write: it succeeds
	// only when the order holds no agent. Returns false when another caller won.
	ClaimAssignment(ctx context.Context, orderID, agentID uuid.UUID, now time.Time) (bool, error)
	// AdvanceStatus updates the status only when the order currently holds
	// the expected one. Used for the Pending<->Processing linkage.
	AdvanceStatus(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus) error
	AppendTimeline(ctx context.Context, entry *models.TimelineEntry) error
	ListDeliveredByAgent(ctx context.Context, agentID uuid.UUID, from, to time.Time) ([]models.Order, error)
}

// NumberSource allocates monotonically increasing order numbers.
type NumberSource interface {
	Next(ctx context.Context) (int64, error)
}
