package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/pramodsinghlodhi/masterprint-backend/api/middleware"
	"github.com/pramodsinghlodhi/masterprint-backend/api/responses"
	"github.com/pramodsinghlodhi/masterprint-backend/api/validators"
	"github.com/pramodsinghlodhi/masterprint-backend/internal/assignments"
	"github.com/pramodsinghlodhi/masterprint-backend/pkg/enums"
	pkgerrors "github.com/pramodsinghlodhi/masterprint-backend/pkg/errors"
	"github.com/pramodsinghlodhi/masterprint-backend/pkg/logger"
)

type assignAgentRequest struct {
	AgentID uuid.UUID `json:"agent_id" validate:"required"`
}

// AssignAgent attaches an available agent to an own-delivery order.
func AssignAgent(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req assignAgentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Assign(r.Context(), assignments.AssignInput{
			OrderID:    orderID,
			AgentID:    req.AgentID,
			AssignedBy: middleware.UserIDFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type bulkAssignRequest struct {
	OrderIDs []uuid.UUID `json:"order_ids" validate:"required,min=1"`
	AgentID  uuid.UUID   `json:"agent_id" validate:"required"`
}

// BulkAssignAgent assigns one agent to a batch of orders atomically.
func BulkAssignAgent(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bulkAssignRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.BulkAssign(r.Context(), assignments.BulkAssignInput{
			OrderIDs:   req.OrderIDs,
			AgentID:    req.AgentID,
			AssignedBy: middleware.UserIDFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type unassignAgentRequest struct {
	Reason string `json:"reason"`
}

// UnassignAgent releases the agent currently holding an order.
func UnassignAgent(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req unassignAgentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Unassign(r.Context(), assignments.UnassignInput{
			OrderID:      orderID,
			Reason:       req.Reason,
			UnassignedBy: middleware.UserIDFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type bulkUnassignRequest struct {
	OrderIDs []uuid.UUID `json:"order_ids" validate:"required,min=1"`
	Reason   string      `json:"reason"`
}

// BulkUnassignAgent releases agents from a batch of orders, best effort.
func BulkUnassignAgent(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bulkUnassignRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.BulkUnassign(r.Context(), assignments.BulkUnassignInput{
			OrderIDs:     req.OrderIDs,
			Reason:       req.Reason,
			UnassignedBy: middleware.UserIDFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Note   string `json:"note"`
}

// UpdateOrderStatus applies an admin status transition with a timeline entry.
func UpdateOrderStatus(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseOrderStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		order, err := svc.UpdateStatus(r.Context(), assignments.UpdateStatusInput{
			OrderID:   orderID,
			Status:    status,
			Note:      req.Note,
			UpdatedBy: middleware.UserIDFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
