package milestone

import (
	"context"
	"net/http"

	"github.com/frahmantamala/task-tracker/internal/role"
	"github.com/frahmantamala/task-tracker/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, actor role.Actor, taskID int64) ([]*Milestone, error)
	Add(ctx context.Context, actor role.Actor, taskID int64, dto CreateMilestoneDTO) (*Milestone, error)
	ApplyOrder(ctx context.Context, actor role.Actor, taskID int64, dto OrderDTO) ([]*Milestone, error)
	Move(ctx context.Context, actor role.Actor, milestoneID int64, dto MoveDTO) ([]*Milestone, error)
	Update(ctx context.Context, actor role.Actor, id int64, dto UpdateMilestoneDTO) (*Milestone, error)
	Delete(ctx context.Context, actor role.Actor, id int64) error
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

// ListMilestones handles GET /tasks/{id}/milestones.
func (h *Handler) ListMilestones(w http.ResponseWriter, r *http.Request) {
	actor, ok := role.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	taskID, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	milestones, err := h.Service.List(r.Context(), actor, taskID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, milestones)
}

// AddMilestone handles POST /tasks/{id}/milestones.
func (h *Handler) AddMilestone(w http.ResponseWriter, r *http.Request) {
	actor, ok := role.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	taskID, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto CreateMilestoneDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	created, err := h.Service.Add(r.Context(), actor, taskID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, created)
}

// ReorderMilestones handles PUT /tasks/{id}/milestones/order.
func (h *Handler) ReorderMilestones(w http.ResponseWriter, r *http.Request) {
	actor, ok := role.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	taskID, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto OrderDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	milestones, err := h.Service.ApplyOrder(r.Context(), actor, taskID, dto)
	if err != nil {
		h.Logger.Error("ReorderMilestones: service error", "error", err, "task_id", taskID)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, milestones)
}

// MoveMilestone handles POST /milestones/{id}/move.
func (h *Handler) MoveMilestone(w http.ResponseWriter, r *http.Request) {
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

	var dto MoveDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	milestones, err := h.Service.Move(r.Context(), actor, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, milestones)
}

func (h *Handler) UpdateMilestone(w http.ResponseWriter, r *http.Request) {
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

	var dto UpdateMilestoneDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	updated, err := h.Service.Update(r.Context(), actor, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteMilestone(w http.ResponseWriter, r *http.Request) {
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

	if err := h.Service.Delete(r.Context(), actor, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
