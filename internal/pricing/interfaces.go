package pricing

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pramodsinghlodhi/masterprint-backend/pkg/db/models"
)

// Repository defines persistence operations for delivery pricing rules.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, rule *models.DeliveryPricingRule) (*models.DeliveryPricingRule, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.DeliveryPricingRule, error)
	// ExistsForDistance reports whether any rule, active or not, already uses
	// the given tier bound.
	ExistsForDistance(ctx context.Context, maxDistanceKm float64) (bool, error)
	// ListActiveAscending returns active rules ordered by ascending
	// max_distance_km, the order tier matching depends on.
	ListActiveAscending(ctx context.Context) ([]models.DeliveryPricingRule, error)
	List(ctx context.Context) ([]models.DeliveryPricingRule, error)
	Update(ctx context.Context, ruleID uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, ruleID uuid.UUID) error
}
