package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/pramodsinghlodhi/masterprint-backend/pkg/enums"
)

// TimelineEntry is one row of an order's append-only audit log. Seq preserves
// insertion order; entries are never updated, reordered or pruned.
type TimelineEntry struct {
	ID         uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID    uuid.UUID            `gorm:"column:order_id;type:uuid;not null;index"`
	Seq        int                  `gorm:"column:seq;not null"`
	OccurredAt time.Time            `gorm:"column:occurred_at;not null"`
	Actor      string               `gorm:"column:actor;not null"`
	Action     enums.TimelineAction `gorm:"column:action;type:text;not null"`
	Note       string               `gorm:"column:note"`
}

// TableName keeps the legacy collection name.
func (TimelineEntry) TableName() string {
	return "order_timeline"
}
