package auth

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/task-tracker/internal/core/permission"
	"github.com/frahmantamala/task-tracker/internal/role"
)

// RBACAuthorization guards routes with role level and capability checks.
// Services repeat the checks; these only fail fast at the edge.
type RBACAuthorization struct {
	logger *slog.Logger
}

func NewRBACAuthorization(logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{
		logger: logger,
	}
}

func (ra *RBACAuthorization) RequireAdminEligible() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := role.ActorFromContext(r.Context())
			if !ok {
				ra.logger.WarnContext(r.Context(), "authorization check failed: user not found in context")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !actor.IsAdminEligible() {
				ra.logger.WarnContext(r.Context(), "access denied: admin panel level required", "user_id", actor.UserID)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (ra *RBACAuthorization) RequireCapability(resource permission.Resource, action permission.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := role.ActorFromContext(r.Context())
			if !ok {
				ra.logger.WarnContext(r.Context(), "authorization check failed: user not found in context")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !actor.Can(resource, action) {
				ra.logger.WarnContext(r.Context(), "access denied: insufficient permissions",
					"user_id", actor.UserID,
					"resource", resource,
					"action", action)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
