package comment

import (
	"context"
	"net/http"

	"github.com/frahmantamala/task-tracker/internal/role"
	"github.com/frahmantamala/task-tracker/internal/transport"
)

type ServiceAPI interface {
	Add(ctx context.Context, actor role.Actor, taskID int64, dto CreateCommentDTO) (*Comment, error)
	List(ctx context.Context, actor role.Actor, taskID int64) ([]*Comment, error)
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

// ListComments handles GET /tasks/{id}/comments.
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
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

	comments, err := h.Service.List(r.Context(), actor, taskID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, comments)
}

// AddComment handles POST /tasks/{id}/comments.
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
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

	var dto CreateCommentDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	created, err := h.Service.Add(r.Context(), actor, taskID, dto)
	if err != nil {
		h.Logger.Error("AddComment: service error", "error", err, "task_id", taskID, "user_id", actor.UserID)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, created)
}
