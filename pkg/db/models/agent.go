package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/pramodsinghlodhi/masterprint-backend/pkg/enums"
)

// Agent is a delivery agent. The legacy single status field mixed account
// standing with work capacity; the two axes are stored separately here and a
// combined view is derived at the API boundary.
type Agent struct {
	ID    uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name  string    `gorm:"column:name;not null"`
	Phone string    `gorm:"column:phone;not null"`
	Email string    `gorm:"column:email"`

	AccountStanding enums.AgentStanding `gorm:"column:account_standing;type:text;not null;default:'pending'"`
	WorkCapacity    enums.AgentCapacity `gorm:"column:work_capacity;type:text;not null;default:'available'"`
	Approved        bool                `gorm:"column:approved;not null;default:false"`

	CurrentOrderID *uuid.UUID `gorm:"column:current_order_id;type:uuid"`
	AssignedAt     *time.Time `gorm:"column:assigned_at"`

	// Performance counters, mutated only by the lifecycle and earnings
	// services. Monotonically non-decreasing.
	OrdersAssigned      int     `gorm:"column:orders_assigned;not null;default:0"`
	DeliveriesCompleted int     `gorm:"column:deliveries_completed;not null;default:0"`
	TotalEarningsCents  int     `gorm:"column:total_earnings_cents;not null;default:0"`
	AverageRating       float64 `gorm:"column:average_rating;not null;default:0"`

	AssignedOrders []AgentOrderRef `gorm:"foreignKey:AgentID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Assignable reports whether the agent may receive new orders.
func (a *Agent) Assignable() bool {
	if a == nil || !a.Approved {
		return false
	}
	switch a.AccountStanding {
	case enums.AgentStandingInactive, enums.AgentStandingSuspended:
		return false
	default:
		return true
	}
}
