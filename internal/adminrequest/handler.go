package adminrequest

import (
	"context"
	"net/http"

	"github.com/frahmantamala/task-tracker/internal/role"
	"github.com/frahmantamala/task-tracker/internal/transport"
)

type ServiceAPI interface {
	Submit(ctx context.Context, dto SubmitDTO) (*AdminRequest, error)
	List(ctx context.Context, actor role.Actor, status *string) ([]*AdminRequest, error)
	Review(ctx context.Context, actor role.Actor, id int64, dto ReviewDTO) (*AdminRequest, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// SubmitRequest handles the public POST /admin/request.
func (h *Handler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	var dto SubmitDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	req, err := h.Service.Submit(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Admin access request submitted successfully",
		"request": req,
	})
}

func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	actor, ok := role.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var status *string
	if raw := r.URL.Query().Get("status"); raw != "" {
		status = &raw
	}

	requests, err := h.Service.List(r.Context(), actor, status)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, requests)
}

func (h *Handler) ReviewRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := role.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto ReviewDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	req, err := h.Service.Review(r.Context(), actor, id, dto)
	if err != nil {
		h.Logger.Error("ReviewRequest: service error", "error", err, "request_id", id, "user_id", actor.UserID)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, req)
}
