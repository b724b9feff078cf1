package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pramodsinghlodhi/masterprint-backend/api/responses"
	"github.com/pramodsinghlodhi/masterprint-backend/api/validators"
	internalagents "github.com/pramodsinghlodhi/masterprint-backend/internal/agents"
	"github.com/pramodsinghlodhi/masterprint-backend/pkg/enums"
	pkgerrors "github.com/pramodsinghlodhi/masterprint-backend/pkg/errors"
	"github.com/pramodsinghlodhi/masterprint-backend/pkg/logger"
	"github.com/pramodsinghlodhi/masterprint-backend/pkg/pagination"
)

type registerAgentRequest struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
}

// RegisterAgent onboards a delivery agent in the pending, unapproved state.
func RegisterAgent(svc internalagents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerAgentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		agent, err := svc.Register(r.Context(), internalagents.RegisterInput{
			Name:  req.Name,
			Phone: req.Phone,
			Email: req.Email,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, agent)
	}
}

// ListAgents returns the paginated agents list with optional filters.
func ListAgents(svc internalagents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cursor := strings.TrimSpace(r.URL.Query().Get("cursor"))

		var filters internalagents.Filters
		if raw := strings.TrimSpace(r.URL.Query().Get("standing")); raw != "" {
			standing, err := enums.ParseAgentStanding(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid standing filter"))
				return
			}
			filters.Standing = &standing
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("capacity")); raw != "" {
			capacity, err := enums.ParseAgentCapacity(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid capacity filter"))
				return
			}
			filters.Capacity = &capacity
		}
		approved, err := validators.ParseQueryBool(r, "approved")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters.Approved = approved

		list, err := svc.List(r.Context(), pagination.Params{Limit: limit, Cursor: cursor}, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AgentDetail returns a single agent summary.
func AgentDetail(svc internalagents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agentID, err := agentIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Get(r.Context(), agentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// ApproveAgent marks an agent approved and active.
func ApproveAgent(svc internalagents.Service, logg *logger.Logger) http.HandlerFunc {
	return agentTransition(svc.Approve, logg)
}

// SuspendAgent suspends an agent's account standing.
func SuspendAgent(svc internalagents.Service, logg *logger.Logger) http.HandlerFunc {
	return agentTransition(svc.Suspend, logg)
}

// ReactivateAgent restores a previously approved agent to active standing.
func ReactivateAgent(svc internalagents.Service, logg *logger.Logger) http.HandlerFunc {
	return agentTransition(svc.Reactivate, logg)
}

func agentTransition(op func(ctx context.Context, agentID uuid.UUID) (internalagents.Summary, error), logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agentID, err := agentIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := op(r.Context(), agentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

func agentIDParam(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "agentId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "agent id is required")
	}
	agentID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid agent id")
	}
	return agentID, nil
}
