package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/pramodsinghlodhi/masterprint-backend/pkg/enums"
)

// Order is a print order moving through the delivery lifecycle. The delivery
// sub-record of the legacy document model is flattened into columns; the
// timeline is a child table ordered by seq and is append-only.
type Order struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber string            `gorm:"column:order_number;not null;uniqueIndex"`
	Status      enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`

	DeliveryType        enums.DeliveryType `gorm:"column:delivery_type;type:text;not null;default:'own'"`
	DeliveryFeeCents    int                `gorm:"column:delivery_fee_cents;not null;default:0"`
	DeliveryDistanceKm  float64            `gorm:"column:delivery_distance_km;not null;default:0"`
	AgentCommissionPct  int                `gorm:"column:agent_commission_pct;not null;default:70"`
	AgentCommissionCents int               `gorm:"column:agent_commission_cents;not null;default:0"`
	CompanyRevenueCents int                `gorm:"column:company_revenue_cents;not null;default:0"`
	DeliveredAt         *time.Time         `gorm:"column:delivered_at"`

	AssignedAgentID  *uuid.UUID `gorm:"column:assigned_agent_id;type:uuid;index"`
	AssignedAt       *time.Time `gorm:"column:assigned_at"`
	UnassignedAt     *time.Time `gorm:"column:unassigned_at"`
	UnassignedReason *string    `gorm:"column:unassigned_reason"`

	Urgent     bool `gorm:"column:urgent;not null;default:false"`
	TotalCents int  `gorm:"column:total_cents;not null;default:0"`

	CustomerName  string `gorm:"column:customer_name"`
	CustomerPhone string `gorm:"column:customer_phone"`

	Timeline []TimelineEntry `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Assigned reports whether an agent currently holds the order.
func (o *Order) Assigned() bool {
	return o != nil && o.AssignedAgentID != nil && *o.AssignedAgentID != uuid.Nil
}
