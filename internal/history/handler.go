package history

import (
	"context"
	"net/http"

	"github.com/frahmantamala/task-tracker/internal/role"
	"github.com/frahmantamala/task-tracker/internal/transport"
)

type ServiceAPI interface {
	ListByTask(ctx context.Context, taskID int64) ([]*Entry, error)
}

// TaskAccess decides who may read a task's trail, including after the task is deleted.
type TaskAccess interface {
	AuthorizeHistory(ctx context.Context, actor role.Actor, taskID int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Access  TaskAccess
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI, access TaskAccess) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
		Access:      access,
	}
}

// ListTaskHistory handles GET /tasks/{id}/history.
func (h *Handler) ListTaskHistory(w http.ResponseWriter, r *http.Request) {
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

	if err := h.Access.AuthorizeHistory(r.Context(), actor, taskID); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	entries, err := h.Service.ListByTask(r.Context(), taskID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, entries)
}
