package agents

import (
	"time"

	"github.com/google/uuid"

	"github.com/pramodsinghlodhi/masterprint-backend/pkg/db/models"
	"github.com/pramodsinghlodhi/masterprint-backend/pkg/enums"
)

// Filters describe the inputs supported by the agent list.
type Filters struct {
	Standing *enums.AgentStanding
	Capacity *enums.AgentCapacity
	Approved *bool
}

// Performance is the read-side snapshot of an agent's counters.
type Performance struct {
	OrdersAssigned      int     `json:"orders_assigned"`
	DeliveriesCompleted int     `json:"deliveries_completed"`
	TotalEarningsCents  int     `json:"total_earnings_cents"`
	AverageRating       float64 `json:"average_rating"`
}

// Summary exposes the fields returned in the agent list and detail views.
// LegacyStatus is the combined single-field status older clients expect.
type Summary struct {
	ID              uuid.UUID           `json:"id"`
	Name            string              `json:"name"`
	Phone           string              `json:"phone"`
	Email           string              `json:"email,omitempty"`
	AccountStanding enums.AgentStanding `json:"account_standing"`
	WorkCapacity    enums.AgentCapacity `json:"work_capacity"`
	LegacyStatus    string              `json:"status"`
	Approved        bool                `json:"approved"`
	CurrentOrderID  *uuid.UUID          `json:"current_order_id,omitempty"`
	Performance     Performance         `json:"performance"`
	CreatedAt       time.Time           `json:"created_at"`
}

// AgentList wraps the paginated agents plus the next page cursor.
type AgentList struct {
	Agents     []Summary `json:"agents"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

// RegisterInput captures the fields accepted when onboarding an agent.
type RegisterInput struct {
	Name  string
	Phone string
	Email string
}

// NewSummary maps a model row to the API view, deriving the legacy combined
// status: standing wins unless the account is active, in which case the
// capacity shows through (matching the old single-enum behavior).
func NewSummary(agent *models.Agent) Summary {
	legacy := string(agent.AccountStanding)
	if agent.AccountStanding == enums.AgentStandingActive {
		legacy = string(agent.WorkCapacity)
	}
	return Summary{
		ID:              agent.ID,
		Name:            agent.Name,
		Phone:           agent.Phone,
		Email:           agent.Email,
		AccountStanding: agent.AccountStanding,
		WorkCapacity:    agent.WorkCapacity,
		LegacyStatus:    legacy,
		Approved:        agent.Approved,
		CurrentOrderID:  agent.CurrentOrderID,
		Performance: Performance{
			OrdersAssigned:      agent.OrdersAssigned,
			DeliveriesCompleted: agent.DeliveriesCompleted,
			TotalEarningsCents:  agent.TotalEarningsCents,
			AverageRating:       agent.AverageRating,
		},
		CreatedAt: agent.CreatedAt,
	}
}
