package models

import (
	"time"

	"github.com/google/uuid"
)

// DeliveryPricingRule is one distance tier. Tiers are nested: a distance is
// priced by the smallest MaxDistanceKm that still covers it.
type DeliveryPricingRule struct {
	ID                 uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MaxDistanceKm      float64   `gorm:"column:max_distance_km;not null;uniqueIndex:idx_pricing_max_distance"`
	PriceCents         int       `gorm:"column:price_cents;not null"`
	AgentCommissionPct int       `gorm:"column:agent_commission_pct;not null;default:70"`
	IsActive           bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the legacy collection name.
func (DeliveryPricingRule) TableName() string {
	return "delivery_pricing_rules"
}
