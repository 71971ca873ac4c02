package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/task-tracker/internal/adminrequest"
	"github.com/frahmantamala/task-tracker/internal/analytics"
	"github.com/frahmantamala/task-tracker/internal/auth"
	"github.com/frahmantamala/task-tracker/internal/comment"
	"github.com/frahmantamala/task-tracker/internal/core/permission"
	"github.com/frahmantamala/task-tracker/internal/history"
	"github.com/frahmantamala/task-tracker/internal/milestone"
	"github.com/frahmantamala/task-tracker/internal/role"
	"github.com/frahmantamala/task-tracker/internal/task"
	"github.com/frahmantamala/task-tracker/internal/team"
	"github.com/frahmantamala/task-tracker/internal/transport/middleware"
	"github.com/frahmantamala/task-tracker/internal/transport/swagger"
	"github.com/frahmantamala/task-tracker/internal/user"
	"github.com/go-chi/chi"
)

// Handlers groups the domain handlers mounted under /api/v1.
type Handlers struct {
	Auth         *auth.Handler
	User         *user.Handler
	Role         *role.Handler
	Team         *team.Handler
	AdminRequest *adminrequest.Handler
	Task         *task.Handler
	History      *history.Handler
	Milestone    *milestone.Handler
	Comment      *comment.Handler
	Analytics    *analytics.Handler
}

type RouterConfig struct {
	AllowedOrigins string
	// OpenAPI is served at /openapi.yml when set.
	OpenAPI http.Handler
}

func RegisterAllRoutes(router chi.Router, health *HealthHandler, h Handlers, rbac *auth.RBACAuthorization, cfg RouterConfig, logger *slog.Logger) {
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	router.Get("/health", health.Health)
	router.Get("/ping", health.Ping)

	if cfg.OpenAPI != nil {
		router.Method(http.MethodGet, swagger.SpecRoute, cfg.OpenAPI)
		router.Handle("/swagger/*", swagger.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(ar chi.Router) {
			ar.Post("/register", h.Auth.Register)
			ar.Post("/login", h.Auth.Login)
			ar.Post("/admin-login", h.Auth.AdminLogin)
			ar.Post("/refresh", h.Auth.RefreshToken)
			ar.Post("/logout", h.Auth.Logout)
		})

		// Anyone may ask for admin access.
		r.Post("/admin/request", h.AdminRequest.SubmitRequest)

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Get("/users/me", h.User.GetCurrentUser)
			pr.Get("/users/me/teams", h.Team.ListMyTeams)

			pr.Route("/teams", func(tr chi.Router) {
				tr.Get("/", h.Team.ListTeams)
				tr.Post("/", h.Team.CreateTeam)
				tr.Get("/{id}", h.Team.GetTeam)
				tr.Get("/{id}/members", h.Team.ListMembers)
				tr.Post("/{id}/members", h.Team.AddMember)
				tr.Delete("/{id}/members/{userId}", h.Team.RemoveMember)
			})

			pr.Route("/tasks", func(tr chi.Router) {
				tr.Get("/", h.Task.ListTasks)
				tr.Post("/", h.Task.CreateTask)
				tr.Get("/{id}", h.Task.GetTask)
				tr.Put("/{id}", h.Task.UpdateTask)
				tr.Delete("/{id}", h.Task.DeleteTask)
				tr.Get("/{id}/history", h.History.ListTaskHistory)
				tr.Get("/{id}/milestones", h.Milestone.ListMilestones)
				tr.Post("/{id}/milestones", h.Milestone.AddMilestone)
				tr.Put("/{id}/milestones/order", h.Milestone.ReorderMilestones)
				tr.Get("/{id}/comments", h.Comment.ListComments)
				tr.Post("/{id}/comments", h.Comment.AddComment)
			})

			pr.Route("/milestones", func(mr chi.Router) {
				mr.Patch("/{id}", h.Milestone.UpdateMilestone)
				mr.Delete("/{id}", h.Milestone.DeleteMilestone)
				mr.Post("/{id}/move", h.Milestone.MoveMilestone)
			})

			pr.Route("/analytics", func(ar chi.Router) {
				ar.Use(rbac.RequireCapability(permission.ResourceAnalytics, permission.ActionRead))
				ar.Get("/tasks", h.Analytics.GetTaskAnalytics)
				ar.Get("/teams", h.Analytics.GetTeamAnalytics)
				ar.Get("/users", h.Analytics.GetUserAnalytics)
			})

			pr.Route("/admin", func(ar chi.Router) {
				ar.Use(rbac.RequireAdminEligible())

				ar.Get("/roles", h.Role.ListRoles)
				ar.Post("/roles", h.Role.CreateRole)
				ar.Patch("/roles/{id}", h.Role.UpdateRole)
				ar.Delete("/roles/{id}", h.Role.DeleteRole)

				ar.Get("/users", h.User.ListUsers)
				ar.Put("/users/{id}/role", h.User.UpdateUserRole)

				ar.Get("/requests", h.AdminRequest.ListRequests)
				ar.Put("/requests/{id}", h.AdminRequest.ReviewRequest)
			})
		})
	})
}
