package models

import (
	"time"

	"github.com/google/uuid"
)

// AgentOrderRef is one row of an agent's assigned-orders set, the bulk
// counterpart to Agent.CurrentOrderID. Both views are maintained together.
type AgentOrderRef struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AgentID    uuid.UUID `gorm:"column:agent_id;type:uuid;not null;index"`
	OrderID    uuid.UUID `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	AssignedAt time.Time `gorm:"column:assigned_at;autoCreateTime"`
}

// TableName keeps the legacy collection name.
func (AgentOrderRef) TableName() string {
	return "agent_order_refs"
}
