package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/pramodsinghlodhi/masterprint-backend/pkg/enums"
)

// Filters describe the inputs supported by the admin orders list.
type Filters struct {
	Status       *enums.OrderStatus
	DeliveryType *enums.DeliveryType
	AgentID      *uuid.UUID
	Urgent       *bool
	DateFrom     *time.Time
	DateTo       *time.Time
}

// Summary exposes the aggregated fields returned in the orders list.
type Summary struct {
	ID              uuid.UUID          `json:"id"`
	OrderNumber     string             `json:"order_number"`
	Status          enums.OrderStatus  `json:"status"`
	DeliveryType    enums.DeliveryType `json:"delivery_type"`
	AssignedAgentID *uuid.UUID         `json:"assigned_agent_id,omitempty"`
	Urgent          bool               `json:"urgent"`
	TotalCents      int                `json:"total_cents"`
	CustomerName    string             `json:"customer_name,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
}

// OrderList wraps the paginated orders plus the next page cursor.
type OrderList struct {
	Orders     []Summary `json:"orders"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

// CreateInput captures the fields accepted when an admin records a new order.
type CreateInput struct {
	DeliveryType  enums.DeliveryType
	Urgent        bool
	TotalCents    int
	CustomerName  string
	CustomerPhone string
	CreatedBy     string
}
