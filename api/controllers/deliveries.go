package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pramodsinghlodhi/masterprint-backend/api/middleware"
	"github.com/pramodsinghlodhi/masterprint-backend/api/responses"
	"github.com/pramodsinghlodhi/masterprint-backend/api/validators"
	"github.com/pramodsinghlodhi/masterprint-backend/internal/deliveries"
	pkgerrors "github.com/pramodsinghlodhi/masterprint-backend/pkg/errors"
	"github.com/pramodsinghlodhi/masterprint-backend/pkg/logger"
)

type completeDeliveryRequest struct {
	DistanceKm    float64 `json:"distance_km" validate:"gte=0"`
	FeeCents      int     `json:"fee_cents" validate:"gte=0"`
	CommissionPct *int    `json:"commission_pct,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// CompleteDelivery records a finished delivery for the calling agent.
func CompleteDelivery(svc deliveries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		agentID, err := callerAgentID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req completeDeliveryRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.RecordCompletion(r.Context(), deliveries.CompletionInput{
			OrderID:       orderID,
			AgentID:       agentID,
			DistanceKm:    req.DistanceKm,
			FeeCents:      req.FeeCents,
			CommissionPct: req.CommissionPct,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AgentEarnings returns the calling agent's earnings report for a window.
func AgentEarnings(svc deliveries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agentID, err := callerAgentID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		earningsReport(svc, logg, agentID, w, r)
	}
}

// AdminAgentEarnings returns any agent's earnings report for back-office use.
func AdminAgentEarnings(svc deliveries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agentID, err := agentIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		earningsReport(svc, logg, agentID, w, r)
	}
}

func earningsReport(svc deliveries.Service, logg *logger.Logger, agentID uuid.UUID, w http.ResponseWriter, r *http.Request) {
	query := deliveries.ReportQuery{AgentID: agentID}

	if raw := strings.TrimSpace(r.URL.Query().Get("period")); raw != "" {
		query.Period = deliveries.ReportPeriod(strings.ToLower(raw))
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid from"))
			return
		}
		query.From = &from
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid to"))
			return
		}
		query.To = &to
	}

	report, err := svc.EarningsReport(r.Context(), query)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	responses.WriteSuccess(w, report)
}

func callerAgentID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.AgentIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "agent credentials required")
	}
	agentID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid agent credentials")
	}
	return agentID, nil
}
