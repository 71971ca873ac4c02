package analytics_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"time"

	"github.com/frahmantamala/task-tracker/internal/analytics"
	analyticsPostgres "github.com/frahmantamala/task-tracker/internal/analytics/postgres"
	taskDatamodel "github.com/frahmantamala/task-tracker/internal/core/datamodel/task"
	teamDatamodel "github.com/frahmantamala/task-tracker/internal/core/datamodel/team"
	userDatamodel "github.com/frahmantamala/task-tracker/internal/core/datamodel/user"
	"github.com/frahmantamala/task-tracker/internal/core/testdb"
	"github.com/frahmantamala/task-tracker/internal/task"
	"github.com/frahmantamala/task-tracker/internal/transport"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("Analytics Service", func() {
	var (
		ctx     context.Context
		db      *gorm.DB
		service *analytics.Service
		grace   int64
		linus   int64
		eng     int64
		ops     int64
	)

	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	newUser := func(name string) int64 {
		u := &userDatamodel.User{Email: name + "@example.com", Name: name, PasswordHash: "x", RoleName: "member"}
		Expect(db.Create(u).Error).To(Succeed())
		return u.ID
	}

	newTeam := func(name string, members ...int64) int64 {
		t := &teamDatamodel.Team{Name: name, CreatedBy: members[0]}
		Expect(db.Create(t).Error).To(Succeed())
		for _, m := range members {
			Expect(db.Create(&teamDatamodel.TeamMember{TeamID: t.ID, UserID: m}).Error).To(Succeed())
		}
		return t.ID
	}

	newTask := func(teamID int64, assignee *int64, status string, due *time.Time) {
		t := &taskDatamodel.Task{Title: "t", TeamID: teamID, CreatedBy: grace, AssignedTo: assignee, Status: status, Priority: task.PriorityMedium, DueDate: due}
		if status == task.StatusCompleted {
			done := time.Now().UTC()
			t.CompletedAt = &done
		}
		Expect(db.Omit("AssignedUser", "CreatedUser").Create(t).Error).To(Succeed())
	}

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		slogger := slog.New(slog.NewTextHandler(io.Discard, nil))

		db, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(testdb.Close, db)

		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		reader := analyticsPostgres.NewAnalyticsReader(sqlx.NewDb(sqlDB, "sqlite3"))
		service = analytics.NewService(reader, slogger).WithClock(func() time.Time { return now })

		grace = newUser("grace")
		linus = newUser("linus")
		eng = newTeam("Eng", grace, linus)
		ops = newTeam("Ops", linus)

		past := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
		newTask(eng, &linus, task.StatusCompleted, nil)
		newTask(eng, &linus, task.StatusInProgress, &past)
		newTask(eng, &grace, task.StatusNotStarted, nil)
		newTask(ops, nil, task.StatusNotStarted, nil)
	})

	It("summarizes every task", func() {
		got, err := service.TaskAnalytics(ctx, analytics.Scope{})

		Expect(err).NotTo(HaveOccurred())
		Expect(got.TotalTasks).To(Equal(4))
		Expect(got.CompletedTasks).To(Equal(1))
		Expect(got.OverdueTasks).To(Equal(1))
		Expect(got.CompletionRate).To(Equal(25))
	})

	It("scopes to a team with bound parameters", func() {
		got, err := service.TaskAnalytics(ctx, analytics.Scope{TeamID: &eng})

		Expect(err).NotTo(HaveOccurred())
		Expect(got.TotalTasks).To(Equal(3))
		Expect(got.CompletionRate).To(Equal(33))
	})

	It("scopes to a user's created or assigned tasks", func() {
		got, err := service.TaskAnalytics(ctx, analytics.Scope{UserID: &linus})

		Expect(err).NotTo(HaveOccurred())
		Expect(got.TotalTasks).To(Equal(2))
	})

	It("reports teams by task count", func() {
		got, err := service.TeamAnalytics(ctx)

		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(HaveLen(2))
		Expect(got[0].TeamName).To(Equal("Eng"))
		Expect(got[0].MemberCount).To(Equal(2))
		Expect(got[0].TaskCount).To(Equal(3))
		Expect(got[0].MostActiveUser).To(Equal("linus"))
		Expect(got[1].TeamName).To(Equal("Ops"))
		Expect(got[1].MostActiveUser).To(Equal("N/A"))
	})

	It("reports users with assigned tasks", func() {
		got, err := service.UserAnalytics(ctx, nil)

		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(HaveLen(2))
		Expect(got[0].UserName).To(Equal("linus"))
		Expect(got[0].AssignedTasks).To(Equal(2))
		Expect(got[0].CompletionRate).To(Equal(50))

		scoped, err := service.UserAnalytics(ctx, &ops)
		Expect(err).NotTo(HaveOccurred())
		Expect(scoped).To(BeEmpty())
	})

	Describe("Handler", func() {
		var h *analytics.Handler

		BeforeEach(func() {
			h = analytics.NewHandler(transport.NewBaseHandler(slog.New(slog.NewTextHandler(io.Discard, nil))), service)
		})

		It("serves camelCase task analytics and accepts the dashboard's teamId", func() {
			req := httptest.NewRequest(http.MethodGet, "/analytics/tasks?teamId="+strconv.FormatInt(eng, 10), nil)
			rec := httptest.NewRecorder()

			h.GetTaskAnalytics(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			var body map[string]int
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body["totalTasks"]).To(Equal(3))
			Expect(body).To(HaveKey("averageCompletionTime"))
		})

		It("rejects a malformed team id", func() {
			req := httptest.NewRequest(http.MethodGet, "/analytics/users?team_id=abc", nil)
			rec := httptest.NewRecorder()

			h.GetUserAnalytics(rec, req)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})
})
