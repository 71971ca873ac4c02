package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/task-tracker/internal"
	"github.com/frahmantamala/task-tracker/internal/adminrequest"
	adminrequestPostgres "github.com/frahmantamala/task-tracker/internal/adminrequest/postgres"
	"github.com/frahmantamala/task-tracker/internal/analytics"
	analyticsPostgres "github.com/frahmantamala/task-tracker/internal/analytics/postgres"
	"github.com/frahmantamala/task-tracker/internal/auth"
	authPostgres "github.com/frahmantamala/task-tracker/internal/auth/postgres"
	"github.com/frahmantamala/task-tracker/internal/comment"
	commentPostgres "github.com/frahmantamala/task-tracker/internal/comment/postgres"
	"github.com/frahmantamala/task-tracker/internal/core/events"
	"github.com/frahmantamala/task-tracker/internal/history"
	historyPostgres "github.com/frahmantamala/task-tracker/internal/history/postgres"
	"github.com/frahmantamala/task-tracker/internal/milestone"
	milestonePostgres "github.com/frahmantamala/task-tracker/internal/milestone/postgres"
	"github.com/frahmantamala/task-tracker/internal/notification"
	"github.com/frahmantamala/task-tracker/internal/role"
	rolePostgres "github.com/frahmantamala/task-tracker/internal/role/postgres"
	"github.com/frahmantamala/task-tracker/internal/task"
	taskPostgres "github.com/frahmantamala/task-tracker/internal/task/postgres"
	"github.com/frahmantamala/task-tracker/internal/team"
	teamPostgres "github.com/frahmantamala/task-tracker/internal/team/postgres"
	"github.com/frahmantamala/task-tracker/internal/transport"
	"github.com/frahmantamala/task-tracker/internal/transport/rest"
	"github.com/frahmantamala/task-tracker/internal/transport/swagger"
	"github.com/frahmantamala/task-tracker/internal/user"
	userPostgres "github.com/frahmantamala/task-tracker/internal/user/postgres"
	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const shutdownTimeout = 30 * time.Second

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config     *internal.Config
	DB         *sqlx.DB
	Gorm       *gorm.DB
	Router     *chi.Mux
	EventBus   *events.EventBus
	Dispatcher *notification.Dispatcher
	Logger     *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "env", deps.Config.Server.Env)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		deps.close(ctx)
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

// close drains in-flight event handlers before the notification queue and the pool go away.
func (d *Dependencies) close(ctx context.Context) {
	if err := d.EventBus.Wait(ctx); err != nil {
		d.Logger.Warn("event handlers still running at shutdown", "error", err)
	}
	d.Dispatcher.Shutdown(ctx)
	if err := d.DB.Close(); err != nil {
		d.Logger.Error("Database close error", "error", err)
	}
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log := initLogger(config)

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	gdb, err := openGorm(db, config.Server.Env)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	bus := events.NewEventBus(log)
	dispatcher, err := initNotifications(config, bus, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	handlers := buildHandlers(config, db, gdb, bus, log)

	var spec http.Handler
	if config.Server.OpenAPIPath != "" {
		doc, err := swagger.Load(context.Background(), config.Server.OpenAPIPath)
		if err != nil {
			// the API still serves without its document
			log.Warn("openapi document not loaded", "path", config.Server.OpenAPIPath, "error", err)
		} else {
			spec = doc
		}
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, rest.NewHealthHandler(db), handlers,
		auth.NewRBACAuthorization(log),
		rest.RouterConfig{AllowedOrigins: config.Server.AllowedOrigins, OpenAPI: spec},
		log)

	return &Dependencies{
		Config:     config,
		DB:         db,
		Gorm:       gdb,
		Router:     router,
		EventBus:   bus,
		Dispatcher: dispatcher,
		Logger:     log,
	}, nil
}

func buildHandlers(cfg *internal.Config, db *sqlx.DB, gdb *gorm.DB, bus *events.EventBus, log *slog.Logger) rest.Handlers {
	base := transport.NewBaseHandler(log)

	roleService := role.NewService(rolePostgres.NewRoleRepository(gdb), log)
	userService := user.NewService(userPostgres.NewUserRepository(gdb), roleService, log)

	tokens := auth.NewJWTTokenGenerator(
		cfg.Security.JWTSecret,
		cfg.Security.RefreshSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authPostgres.NewRepository(gdb), userService, roleService, tokens, cfg.Security.BCryptCost, log)

	teamService := team.NewService(teamPostgres.NewTeamRepository(gdb), log)
	taskService := task.NewService(taskPostgres.NewTaskRepository(gdb), teamService, bus, log)

	historyService := history.NewService(historyPostgres.NewHistoryRepository(gdb), log)
	history.NewEventHandler(historyService, log).RegisterEventHandlers(bus)

	milestoneService := milestone.NewService(milestonePostgres.NewMilestoneRepository(gdb), taskService, log)
	commentService := comment.NewService(commentPostgres.NewCommentRepository(gdb), taskService, log)
	analyticsService := analytics.NewService(analyticsPostgres.NewAnalyticsReader(db), log)
	adminRequestService := adminrequest.NewService(adminrequestPostgres.NewAdminRequestRepository(gdb), bus, log)

	return rest.Handlers{
		Auth:         auth.NewHandler(base, authService),
		User:         user.NewHandler(base, userService),
		Role:         role.NewHandler(base, roleService),
		Team:         team.NewHandler(base, teamService),
		AdminRequest: adminrequest.NewHandler(base, adminRequestService),
		Task:         task.NewHandler(base, taskService),
		History:      history.NewHandler(base, historyService, taskService),
		Milestone:    milestone.NewHandler(base, milestoneService),
		Comment:      comment.NewHandler(base, commentService),
		Analytics:    analytics.NewHandler(base, analyticsService),
	}
}

// initNotifications starts the delivery pool and subscribes the admin request emails.
// With notifications disabled messages are rendered and logged instead of sent.
func initNotifications(cfg *internal.Config, bus *events.EventBus, log *slog.Logger) (*notification.Dispatcher, error) {
	renderer, err := notification.NewRenderer(cfg.Server.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to load notification templates: %w", err)
	}

	dispatcher := notification.NewDispatcher(newSender(cfg, log), notification.DispatcherConfig{
		MaxWorkers:  cfg.Notification.WorkerCount(),
		QueueSize:   cfg.Notification.QueueSize,
		SendTimeout: cfg.Notification.Timeout,
	}, log)

	notification.NewEventHandler(renderer, dispatcher, cfg.Notification.From, cfg.Notification.AdminMailbox, log).
		RegisterEventHandlers(bus)

	return dispatcher, nil
}

func newSender(cfg *internal.Config, log *slog.Logger) notification.Sender {
	if !cfg.Notification.Enabled {
		return notification.NewLogSender(log)
	}
	return notification.NewHTTPSender(cfg.Notification.APIURL, cfg.Notification.APIKey, cfg.Notification.Timeout, log)
}
