package analytics

import (
	"context"
	"net/http"

	"github.com/frahmantamala/task-tracker/internal/transport"
)

type ServiceAPI interface {
	TaskAnalytics(ctx context.Context, scope Scope) (*TaskAnalytics, error)
	TeamAnalytics(ctx context.Context) ([]TeamAnalytics, error)
	UserAnalytics(ctx context.Context, teamID *int64) ([]UserAnalytics, error)
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

// GetTaskAnalytics handles GET /analytics/tasks with optional ?team_id= or ?user_id=.
func (h *Handler) GetTaskAnalytics(w http.ResponseWriter, r *http.Request) {
	teamID, err := h.queryID(r, "team_id", "teamId")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	userID, err := h.queryID(r, "user_id", "userId")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	result, err := h.Service.TaskAnalytics(r.Context(), Scope{TeamID: teamID, UserID: userID})
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) GetTeamAnalytics(w http.ResponseWriter, r *http.Request) {
	result, err := h.Service.TeamAnalytics(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) GetUserAnalytics(w http.ResponseWriter, r *http.Request) {
	teamID, err := h.queryID(r, "team_id", "teamId")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	result, err := h.Service.UserAnalytics(r.Context(), teamID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, result)
}

// queryID accepts the snake_case name and the camelCase name the dashboard sends.
func (h *Handler) queryID(r *http.Request, name, alias string) (*int64, error) {
	if r.URL.Query().Has(name) {
		return h.QueryID(r, name)
	}
	return h.QueryID(r, alias)
}
