package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/frahmantamala/task-tracker/internal"
	"github.com/frahmantamala/task-tracker/internal/auth"
	"github.com/frahmantamala/task-tracker/internal/core/events"
	"github.com/frahmantamala/task-tracker/internal/core/testdb"
	"github.com/frahmantamala/task-tracker/internal/notification"
	"github.com/frahmantamala/task-tracker/internal/seed"
	"github.com/frahmantamala/task-tracker/internal/transport/rest"
	"github.com/frahmantamala/task-tracker/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

var _ = Describe("HTTP server wiring", func() {
	var (
		ctx    context.Context
		server *httptest.Server
		bus    *events.EventBus
		logs   *syncBuffer
		drain  func()
	)

	cfg := &internal.Config{
		Server: internal.ServerConfig{Env: "development", Port: 8080, BaseURL: "http://tracker.test", AllowedOrigins: "*"},
		Security: internal.SecurityConfig{
			JWTSecret:            strings.Repeat("a", 32),
			RefreshSecret:        strings.Repeat("b", 32),
			AccessTokenDuration:  15 * time.Minute,
			RefreshTokenDuration: 24 * time.Hour,
			BCryptCost:           10,
		},
		Notification: internal.NotificationConfig{
			From:         "noreply@tracker.test",
			AdminMailbox: "admins@tracker.test",
			MaxWorkers:   1,
			QueueSize:    10,
			Timeout:      time.Second,
		},
	}

	call := func(method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
		var payload bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&payload).Encode(body)).To(Succeed())
		}
		req, err := http.NewRequest(method, server.URL+path, &payload)
		Expect(err).NotTo(HaveOccurred())
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := http.DefaultClient.Do(req)
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()

		var out map[string]interface{}
		raw := new(bytes.Buffer)
		_, _ = raw.ReadFrom(resp.Body)
		if raw.Len() > 0 && raw.Bytes()[0] == '{' {
			Expect(json.Unmarshal(raw.Bytes(), &out)).To(Succeed())
		}
		return resp, out
	}

	callList := func(path, token string) []map[string]interface{} {
		req, err := http.NewRequest(http.MethodGet, server.URL+path, nil)
		Expect(err).NotTo(HaveOccurred())
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := http.DefaultClient.Do(req)
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		var out []map[string]interface{}
		Expect(json.NewDecoder(resp.Body).Decode(&out)).To(Succeed())
		return out
	}

	login := func(path, email, password string) string {
		resp, body := call(http.MethodPost, "/api/v1/auth/"+path, "", map[string]string{"email": email, "password": password})
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		return body["access_token"].(string)
	}

	BeforeEach(func() {
		ctx = context.Background()
		logs = &syncBuffer{}
		log := logger.New(logs, "development", "text", "info")

		gdb, err := testdb.Open()
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(testdb.Close, gdb)

		sqlDB, err := gdb.DB()
		Expect(err).NotTo(HaveOccurred())
		db := sqlx.NewDb(sqlDB, "sqlite3")

		fixtures, err := seed.LoadFixtures("../db/seed/roles.yml")
		Expect(err).NotTo(HaveOccurred())
		seeder := seed.NewSeeder(gdb, cfg.Security.BCryptCost, log)
		Expect(seeder.Roles(ctx, fixtures.Roles)).To(Succeed())
		created, err := seeder.Admin(ctx, seed.AdminAccount{Email: "root@tracker.test", Name: "Root", Password: "supersecret"})
		Expect(err).NotTo(HaveOccurred())
		Expect(created).To(BeTrue())

		bus = events.NewEventBus(log)
		dispatcher, err := initNotifications(cfg, bus, log)
		Expect(err).NotTo(HaveOccurred())

		router := chi.NewRouter()
		rest.RegisterAllRoutes(router, rest.NewHealthHandler(db), buildHandlers(cfg, db, gdb, bus, log),
			auth.NewRBACAuthorization(log), rest.RouterConfig{AllowedOrigins: "*"}, log)
		server = httptest.NewServer(router)
		DeferCleanup(server.Close)

		drain = func() {
			Expect(bus.Wait(ctx)).To(Succeed())
			dispatcher.Shutdown(ctx)
		}
		DeferCleanup(dispatcher.Shutdown, ctx)
		DeferCleanup(func() { _ = bus.Wait(ctx) })
	})

	It("reports a healthy database", func() {
		resp, body := call(http.MethodGet, "/health", "", nil)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(body).To(HaveKey("status"))
		Expect(resp.Header.Get("X-Request-ID")).NotTo(BeEmpty())
	})

	It("runs a task through its lifecycle and records history", func() {
		admin := login("admin-login", "root@tracker.test", "supersecret")

		resp, team := call(http.MethodPost, "/api/v1/teams", admin, map[string]string{"name": "Platform"})
		Expect(resp.StatusCode).To(Equal(http.StatusCreated))
		teamID := int64(team["id"].(float64))

		resp, created := call(http.MethodPost, "/api/v1/tasks", admin, map[string]interface{}{
			"title":    "Ship the release",
			"team_id":  teamID,
			"due_date": "2030-01-31",
		})
		Expect(resp.StatusCode).To(Equal(http.StatusCreated))
		Expect(created["status"]).To(Equal("Not Started"))
		taskPath := fmt.Sprintf("/api/v1/tasks/%d", int64(created["id"].(float64)))

		resp, updated := call(http.MethodPut, taskPath, admin, map[string]string{"status": "Completed"})
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(updated["completed_at"]).NotTo(BeNil())

		Expect(bus.Wait(ctx)).To(Succeed())
		entries := callList(taskPath+"/history", admin)
		actions := make([]string, 0, len(entries))
		for _, e := range entries {
			actions = append(actions, e["action"].(string))
		}
		Expect(actions).To(ConsistOf("created", "updated_status"))

		resp, stats := call(http.MethodGet, fmt.Sprintf("/api/v1/analytics/tasks?team_id=%d", teamID), admin, nil)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(stats["totalTasks"]).To(BeNumerically("==", 1))
		Expect(stats["completionRate"]).To(BeNumerically("==", 100))
	})

	It("keeps members out of the admin surface", func() {
		resp, _ := call(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
			"email": "ada@tracker.test", "name": "Ada", "password": "supersecret",
		})
		Expect(resp.StatusCode).To(Equal(http.StatusCreated))
		member := login("login", "ada@tracker.test", "supersecret")

		resp, me := call(http.MethodGet, "/api/v1/users/me", member, nil)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(me["email"]).To(Equal("ada@tracker.test"))
		Expect(me["role"]).To(Equal("member"))

		resp, _ = call(http.MethodGet, "/api/v1/admin/roles", member, nil)
		Expect(resp.StatusCode).To(Equal(http.StatusForbidden))

		resp, _ = call(http.MethodGet, "/api/v1/analytics/tasks", member, nil)
		Expect(resp.StatusCode).To(Equal(http.StatusForbidden))

		resp, _ = call(http.MethodGet, "/api/v1/users/me", "", nil)
		Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
	})

	It("notifies the admin mailbox about access requests", func() {
		resp, _ := call(http.MethodPost, "/api/v1/admin/request", "", map[string]string{
			"email": "ada@tracker.test", "name": "Ada", "reason": "I run the team",
		})
		Expect(resp.StatusCode).To(Equal(http.StatusCreated))

		drain()
		Expect(logs.String()).To(ContainSubstring("New Admin Access Request - Ada"))
		Expect(logs.String()).To(ContainSubstring("admins@tracker.test"))
	})
})

var _ = Describe("newSender", func() {
	It("logs messages when delivery is disabled", func() {
		cfg := &internal.Config{}
		Expect(newSender(cfg, slog.Default())).To(BeAssignableToTypeOf(&notification.LogSender{}))
	})

	It("delivers over HTTP when enabled", func() {
		cfg := &internal.Config{Notification: internal.NotificationConfig{Enabled: true, APIURL: "http://mail.test", Timeout: time.Second}}
		Expect(newSender(cfg, slog.Default())).To(BeAssignableToTypeOf(&notification.HTTPSender{}))
	})
})
