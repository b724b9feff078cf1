package pricing

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pramodsinghlodhi/masterprint-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a pricing repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, rule *models.DeliveryPricingRule) (*models.DeliveryPricingRule, error) {
	if err := r.db.WithContext(ctx).Create(rule).Error; err != nil {
		return nil, err
	}
	return rule, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.DeliveryPricingRule, error) {
	var rule models.DeliveryPricingRule
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&rule).Error
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *repository) ExistsForDistance(ctx context.Context, maxDistanceKm float64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.DeliveryPricingRule{}).
		Where("max_distance_km = ?", maxDistanceKm).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) ListActiveAscending(ctx context.Context) ([]models.DeliveryPricingRule, error) {
	var rules []models.DeliveryPricingRule
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("max_distance_km ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *repository) List(ctx context.Context) ([]models.DeliveryPricingRule, error) {
	var rules []models.DeliveryPricingRule
	err := r.db.WithContext(ctx).
		Order("max_distance_km ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *repository) Update(ctx context.Context, ruleID uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.DeliveryPricingRule{}).
		Where("id = ?", ruleID).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, ruleID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", ruleID).
		Delete(&models.DeliveryPricingRule{}).Error
}
