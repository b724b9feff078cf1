package deliveries

import (
	"time"

	"github.com/google/uuid"

	"github.com/pramodsinghlodhi/masterprint-backend/pkg/db/models"
)

// ReportPeriod names a predefined earnings window.
type ReportPeriod string

const (
	PeriodDaily   ReportPeriod = "daily"
	PeriodWeekly  ReportPeriod = "weekly"
	PeriodMonthly ReportPeriod = "monthly"
	PeriodYearly  ReportPeriod = "yearly"
)

func (p ReportPeriod) IsValid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly:
		return true
	}
	return false
}

// CompletionInput carries everything needed to record a finished delivery.
type CompletionInput struct {
	OrderID       uuid.UUID `json:"order_id" validate:"required"`
	AgentID       uuid.UUID `json:"agent_id" validate:"required"`
	DistanceKm    float64   `json:"distance_km" validate:"gte=0"`
	FeeCents      int       `json:"fee_cents" validate:"gte=0"`
	CommissionPct *int      `json:"commission_pct,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// CompletionResult reports the persisted split for a completed delivery.
type CompletionResult struct {
	Order           *models.Order `json:"order"`
	FeeCents        int           `json:"fee_cents"`
	CommissionCents int           `json:"commission_cents"`
	RevenueCents    int           `json:"revenue_cents"`
	CommissionPct   int           `json:"commission_pct"`
}

// ReportQuery selects the agent and window for an earnings report. Either
// Period or the explicit From/To pair must be set.
type ReportQuery struct {
	AgentID uuid.UUID    `json:"agent_id" validate:"required"`
	Period  ReportPeriod `json:"period,omitempty"`
	From    *time.Time   `json:"from,omitempty"`
	To      *time.Time   `json:"to,omitempty"`
}

// ReportEntry is one delivered order inside a report window.
type ReportEntry struct {
	OrderID         uuid.UUID `json:"order_id"`
	OrderNumber     string    `json:"order_number"`
	DeliveredAt     time.Time `json:"delivered_at"`
	FeeCents        int       `json:"fee_cents"`
	CommissionCents int       `json:"commission_cents"`
	DistanceKm      float64   `json:"distance_km"`
}

// Report aggregates an agent's earnings over a window.
type Report struct {
	AgentID              uuid.UUID     `json:"agent_id"`
	From                 time.Time     `json:"from"`
	To                   time.Time     `json:"to"`
	TotalEarningsCents   int           `json:"total_earnings_cents"`
	TotalDeliveries      int           `json:"total_deliveries"`
	AveragePerDelivCents int           `json:"average_per_delivery_cents"`
	Deliveries           []ReportEntry `json:"deliveries"`
}
