package task_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"time"

	apperrors "github.com/frahmantamala/task-tracker/internal"
	"github.com/frahmantamala/task-tracker/internal/core/common/patch"
	taskDatamodel "github.com/frahmantamala/task-tracker/internal/core/datamodel/task"
	userDatamodel "github.com/frahmantamala/task-tracker/internal/core/datamodel/user"
	"github.com/frahmantamala/task-tracker/internal/core/events"
	"github.com/frahmantamala/task-tracker/internal/core/permission"
	"github.com/frahmantamala/task-tracker/internal/core/testdb"
	"github.com/frahmantamala/task-tracker/internal/history"
	historyPostgres "github.com/frahmantamala/task-tracker/internal/history/postgres"
	"github.com/frahmantamala/task-tracker/internal/role"
	"github.com/frahmantamala/task-tracker/internal/task"
	taskPostgres "github.com/frahmantamala/task-tracker/internal/task/postgres"
	"github.com/frahmantamala/task-tracker/internal/team"
	teamPostgres "github.com/frahmantamala/task-tracker/internal/team/postgres"
	"github.com/frahmantamala/task-tracker/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

type failingPublisher struct{}

func (failingPublisher) Publish(ctx context.Context, event events.Event) error {
	return errors.New("bus unavailable")
}

func strPtr(s string) *string { return &s }

var _ = Describe("Task Service", func() {
	var (
		ctx      context.Context
		db       *gorm.DB
		slogger  *slog.Logger
		bus      *events.EventBus
		tasks    *task.Service
		trail    *history.Service
		teams    *team.Service
		eng      *team.Team
		alice    role.Actor
		bob      role.Actor
		carol    role.Actor
		reviewer role.Actor
	)

	newUser := func(name string) int64 {
		u := &userDatamodel.User{Email: name + "@example.com", Name: name, PasswordHash: "x", RoleName: role.NameMember}
		Expect(db.Create(u).Error).To(Succeed())
		return u.ID
	}

	historyOf := func(taskID int64) []*history.Entry {
		Expect(bus.Wait(ctx)).To(Succeed())
		entries, err := trail.ListByTask(ctx, taskID)
		Expect(err).NotTo(HaveOccurred())
		return entries
	}

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		slogger = slog.New(slog.NewTextHandler(io.Discard, nil))

		db, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(testdb.Close, db)

		memberRole := &role.Role{Name: role.NameMember, Level: 3}
		alice = role.Actor{UserID: newUser("alice"), Role: &role.Role{Name: "team_lead", Level: 6}}
		bob = role.Actor{UserID: newUser("bob"), Role: memberRole}
		carol = role.Actor{UserID: newUser("carol"), Role: memberRole}
		reviewer = role.Actor{UserID: newUser("rita"), Role: &role.Role{
			Name:        "reviewer",
			Level:       5,
			Permissions: permission.Set{}.With(permission.ResourceTasks, permission.ActionRead, permission.ActionUpdate),
		}}

		bus = events.NewEventBus(slogger)
		trail = history.NewService(historyPostgres.NewHistoryRepository(db), slogger)
		history.NewEventHandler(trail, slogger).RegisterEventHandlers(bus)

		teams = team.NewService(teamPostgres.NewTeamRepository(db), slogger)
		tasks = task.NewService(taskPostgres.NewTaskRepository(db), teams, bus, slogger)

		eng, err = teams.Create(ctx, alice, team.CreateTeamDTO{Name: "Eng"})
		Expect(err).NotTo(HaveOccurred())
		_, err = teams.AddMember(ctx, alice, eng.ID, team.AddMemberDTO{UserID: bob.UserID})
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Create", func() {
		It("applies defaults and leaves an unassigned task without assigned_user", func() {
			created, err := tasks.Create(ctx, bob, task.CreateTaskDTO{Title: "Write docs", TeamID: eng.ID})
			Expect(err).NotTo(HaveOccurred())

			Expect(created.Status).To(Equal(task.StatusNotStarted))
			Expect(created.Priority).To(Equal(task.PriorityMedium))
			Expect(created.CreatedBy).To(Equal(bob.UserID))
			Expect(created.AssignedTo).To(BeNil())
			Expect(created.AssignedUser).To(BeNil())
			Expect(created.CreatedUser.Name).To(Equal("bob"))
			Expect(created.CompletedAt).To(BeNil())

			b, err := json.Marshal(created)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(b)).To(ContainSubstring(`"assigned_user":null`))
		})

		It("writes one created history entry", func() {
			created, err := tasks.Create(ctx, bob, task.CreateTaskDTO{Title: "Write docs", TeamID: eng.ID})
			Expect(err).NotTo(HaveOccurred())

			entries := historyOf(created.ID)
			Expect(entries).To(HaveLen(1))
			Expect(entries[0].Action).To(Equal(history.ActionCreated))
			Expect(*entries[0].NewValue).To(Equal(`Task "Write docs" created`))
			Expect(entries[0].UserID).To(Equal(bob.UserID))
		})

		It("stamps completed_at for a task created as Completed", func() {
			created, err := tasks.Create(ctx, bob, task.CreateTaskDTO{Title: "Done already", TeamID: eng.ID, Status: task.StatusCompleted, DueDate: strPtr("2024-06-30")})
			Expect(err).NotTo(HaveOccurred())
			Expect(created.CompletedAt).NotTo(BeNil())
			Expect(*created.DueDate).To(Equal("2024-06-30"))
		})

		It("requires a title and a team", func() {
			_, err := tasks.Create(ctx, bob, task.CreateTaskDTO{Title: "  ", TeamID: eng.ID})
			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(apperrors.ErrorTypeValidation))

			_, err = tasks.Create(ctx, bob, task.CreateTaskDTO{Title: "x"})
			appErr, ok = apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(apperrors.ErrorTypeValidation))
		})

		It("rejects callers outside the team", func() {
			_, err := tasks.Create(ctx, carol, task.CreateTaskDTO{Title: "Sneaky", TeamID: eng.ID})
			Expect(errors.Is(err, apperrors.ErrInsufficientPrivilege)).To(BeTrue())
		})

		It("reports an assignee that does not exist", func() {
			missing := int64(9999)
			_, err := tasks.Create(ctx, bob, task.CreateTaskDTO{Title: "Ghost work", TeamID: eng.ID, AssignedTo: &missing})
			Expect(errors.Is(err, apperrors.ErrUserNotFound)).To(BeTrue())

			listed, err := tasks.List(ctx, task.Filter{TeamID: &eng.ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(listed).To(BeEmpty())
		})

		It("reports a missing team", func() {
			_, err := tasks.Create(ctx, bob, task.CreateTaskDTO{Title: "Orphan", TeamID: 9999})
			Expect(errors.Is(err, apperrors.ErrTeamNotFound)).To(BeTrue())
		})
	})

	Describe("Update", func() {
		var current *task.Task

		BeforeEach(func() {
			var err error
			current, err = tasks.Create(ctx, bob, task.CreateTaskDTO{Title: "Ship", TeamID: eng.ID, AssignedTo: &alice.UserID})
			Expect(err).NotTo(HaveOccurred())
			Expect(bus.Wait(ctx)).To(Succeed())
		})

		It("sets completed_at on Completed and clears it when reopened", func() {
			done, err := tasks.Update(ctx, alice, current.ID, task.UpdateTaskDTO{Status: patch.Value(task.StatusCompleted)})
			Expect(err).NotTo(HaveOccurred())
			Expect(done.Status).To(Equal(task.StatusCompleted))
			Expect(done.CompletedAt).NotTo(BeNil())

			reopened, err := tasks.Update(ctx, alice, current.ID, task.UpdateTaskDTO{Status: patch.Value(task.StatusInProgress)})
			Expect(err).NotTo(HaveOccurred())
			Expect(reopened.CompletedAt).To(BeNil())
		})

		It("logs one history row per changed field", func() {
			_, err := tasks.Update(ctx, bob, current.ID, task.UpdateTaskDTO{
				Title:    patch.Value("Ship it"),
				Priority: patch.Value(task.PriorityMedium),
				Status:   patch.Value(task.StatusInProgress),
			})
			Expect(err).NotTo(HaveOccurred())

			actions := []string{}
			for _, e := range historyOf(current.ID) {
				actions = append(actions, e.Action)
			}
			Expect(actions).To(ConsistOf("created", "updated_title", "updated_status"))
		})

		It("writes nothing for a no-op update", func() {
			time.Sleep(10 * time.Millisecond)
			same, err := tasks.Update(ctx, bob, current.ID, task.UpdateTaskDTO{
				Title:    patch.Value("Ship"),
				Priority: patch.Value(task.PriorityMedium),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(same.UpdatedAt).To(BeTemporally("==", current.UpdatedAt))
			Expect(historyOf(current.ID)).To(HaveLen(1))
		})

		It("returns the stored task for an empty body and still checks access", func() {
			same, err := tasks.Update(ctx, bob, current.ID, task.UpdateTaskDTO{})
			Expect(err).NotTo(HaveOccurred())
			Expect(same.ID).To(Equal(current.ID))
			Expect(historyOf(current.ID)).To(HaveLen(1))

			_, err = tasks.Update(ctx, carol, current.ID, task.UpdateTaskDTO{})
			Expect(errors.Is(err, apperrors.ErrInsufficientPrivilege)).To(BeTrue())
		})

		It("unassigns with an explicit null", func() {
			updated, err := tasks.Update(ctx, bob, current.ID, task.UpdateTaskDTO{AssignedTo: patch.Null[int64]()})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.AssignedTo).To(BeNil())
			Expect(updated.AssignedUser).To(BeNil())

			entries := historyOf(current.ID)
			Expect(entries[0].Action).To(Equal("updated_assigned_to"))
			Expect(*entries[0].OldValue).To(Equal(strconv.FormatInt(alice.UserID, 10)))
			Expect(entries[0].NewValue).To(BeNil())
		})

		It("reports a reassignment to a user that does not exist", func() {
			_, err := tasks.Update(ctx, bob, current.ID, task.UpdateTaskDTO{AssignedTo: patch.Value(int64(9999))})
			Expect(errors.Is(err, apperrors.ErrUserNotFound)).To(BeTrue())

			stored, err := tasks.Get(ctx, current.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(*stored.AssignedTo).To(Equal(alice.UserID))
		})

		It("blocks team members who neither created nor own the task", func() {
			other, err := tasks.Create(ctx, alice, task.CreateTaskDTO{Title: "Alice only", TeamID: eng.ID})
			Expect(err).NotTo(HaveOccurred())

			_, err = tasks.Update(ctx, bob, other.ID, task.UpdateTaskDTO{Title: patch.Value("mine now")})
			Expect(errors.Is(err, apperrors.ErrInsufficientPrivilege)).To(BeTrue())

			stored, err := tasks.Get(ctx, other.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Title).To(Equal("Alice only"))
		})

		It("admits a role granting tasks.update", func() {
			updated, err := tasks.Update(ctx, reviewer, current.ID, task.UpdateTaskDTO{Priority: patch.Value(task.PriorityHigh)})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Priority).To(Equal(task.PriorityHigh))
		})

		It("returns NotFound for a missing task", func() {
			_, err := tasks.Update(ctx, bob, 9999, task.UpdateTaskDTO{Title: patch.Value("x")})
			Expect(errors.Is(err, apperrors.ErrTaskNotFound)).To(BeTrue())
		})

		It("commits even when history cannot be recorded", func() {
			detached := task.NewService(taskPostgres.NewTaskRepository(db), teams, failingPublisher{}, slogger)

			updated, err := detached.Update(ctx, bob, current.ID, task.UpdateTaskDTO{Status: patch.Value(task.StatusCompleted)})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Status).To(Equal(task.StatusCompleted))
		})
	})

	Describe("Delete", func() {
		It("removes milestones and comments and keeps the audit trail", func() {
			// Given a task with two milestones and one comment
			created, err := tasks.Create(ctx, bob, task.CreateTaskDTO{Title: "Cleanup", TeamID: eng.ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(db.Create(&taskDatamodel.Milestone{TaskID: created.ID, Title: "a", OrderIndex: 0}).Error).To(Succeed())
			Expect(db.Create(&taskDatamodel.Milestone{TaskID: created.ID, Title: "b", OrderIndex: 1}).Error).To(Succeed())
			Expect(db.Create(&taskDatamodel.Comment{TaskID: created.ID, UserID: bob.UserID, Content: "hi"}).Error).To(Succeed())
			Expect(bus.Wait(ctx)).To(Succeed())

			// When it is deleted
			Expect(tasks.Delete(ctx, bob, created.ID)).To(Succeed())

			// Then no dependent rows remain and the history shows the deletion
			var milestones, comments int64
			Expect(db.Model(&taskDatamodel.Milestone{}).Where("task_id = ?", created.ID).Count(&milestones).Error).To(Succeed())
			Expect(db.Model(&taskDatamodel.Comment{}).Where("task_id = ?", created.ID).Count(&comments).Error).To(Succeed())
			Expect(milestones + comments).To(BeZero())

			_, err = tasks.Get(ctx, created.ID)
			Expect(errors.Is(err, apperrors.ErrTaskNotFound)).To(BeTrue())

			entries := historyOf(created.ID)
			Expect(entries).To(HaveLen(2))
			Expect(entries[0].Action).To(Equal(history.ActionDeleted))
			Expect(*entries[0].NewValue).To(Equal("Task deleted"))
		})

		It("refuses outsiders", func() {
			created, err := tasks.Create(ctx, bob, task.CreateTaskDTO{Title: "Keep", TeamID: eng.ID})
			Expect(err).NotTo(HaveOccurred())

			err = tasks.Delete(ctx, carol, created.ID)
			Expect(errors.Is(err, apperrors.ErrInsufficientPrivilege)).To(BeTrue())
		})
	})

	Describe("List and read access", func() {
		BeforeEach(func() {
			_, err := tasks.Create(ctx, bob, task.CreateTaskDTO{Title: "Bob's", TeamID: eng.ID})
			Expect(err).NotTo(HaveOccurred())
			_, err = tasks.Create(ctx, alice, task.CreateTaskDTO{Title: "Assigned to bob", TeamID: eng.ID, AssignedTo: &bob.UserID})
			Expect(err).NotTo(HaveOccurred())
			_, err = tasks.Create(ctx, alice, task.CreateTaskDTO{Title: "Alice's", TeamID: eng.ID})
			Expect(err).NotTo(HaveOccurred())
		})

		It("filters by team and by creator or assignee", func() {
			all, err := tasks.List(ctx, task.Filter{TeamID: &eng.ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(3))
			Expect(all[0].Title).To(Equal("Alice's"))

			mine, err := tasks.List(ctx, task.Filter{TeamID: &eng.ID, UserID: &bob.UserID})
			Expect(err).NotTo(HaveOccurred())
			Expect(mine).To(HaveLen(2))
			Expect(mine[0].AssignedUser.Name).To(Equal("bob"))
		})

		It("lets team members read but not outsiders", func() {
			all, err := tasks.List(ctx, task.Filter{TeamID: &eng.ID})
			Expect(err).NotTo(HaveOccurred())
			alicesTask := all[0]

			_, err = tasks.View(ctx, bob, alicesTask.ID)
			Expect(err).NotTo(HaveOccurred())

			_, err = tasks.View(ctx, carol, alicesTask.ID)
			Expect(errors.Is(err, apperrors.ErrInsufficientPrivilege)).To(BeTrue())

			_, err = tasks.View(ctx, reviewer, alicesTask.ID)
			Expect(err).NotTo(HaveOccurred())
		})

		It("scopes lists to the caller's teams", func() {
			_, err := tasks.ListFor(ctx, carol, task.Filter{TeamID: &eng.ID})
			Expect(errors.Is(err, apperrors.ErrInsufficientPrivilege)).To(BeTrue())

			visible, err := tasks.ListFor(ctx, carol, task.Filter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(visible).To(BeEmpty())

			visible, err = tasks.ListFor(ctx, bob, task.Filter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(visible).To(HaveLen(3))

			visible, err = tasks.ListFor(ctx, reviewer, task.Filter{TeamID: &eng.ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(visible).To(HaveLen(3))

			missing := int64(9999)
			_, err = tasks.ListFor(ctx, carol, task.Filter{TeamID: &missing})
			Expect(errors.Is(err, apperrors.ErrTeamNotFound)).To(BeTrue())
		})

		It("shows tasks outside the caller's teams when they are the assignee", func() {
			ops, err := teams.Create(ctx, alice, team.CreateTeamDTO{Name: "Ops"})
			Expect(err).NotTo(HaveOccurred())
			_, err = tasks.Create(ctx, alice, task.CreateTaskDTO{Title: "For carol", TeamID: ops.ID, AssignedTo: &carol.UserID})
			Expect(err).NotTo(HaveOccurred())

			visible, err := tasks.ListFor(ctx, carol, task.Filter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(visible).To(HaveLen(1))
			Expect(visible[0].Title).To(Equal("For carol"))
		})

		It("guards the audit trail, including after deletion", func() {
			created, err := tasks.Create(ctx, bob, task.CreateTaskDTO{Title: "Audited", TeamID: eng.ID})
			Expect(err).NotTo(HaveOccurred())

			Expect(tasks.AuthorizeHistory(ctx, bob, created.ID)).To(Succeed())
			err = tasks.AuthorizeHistory(ctx, carol, created.ID)
			Expect(errors.Is(err, apperrors.ErrInsufficientPrivilege)).To(BeTrue())

			Expect(tasks.Delete(ctx, bob, created.ID)).To(Succeed())

			err = tasks.AuthorizeHistory(ctx, bob, created.ID)
			Expect(errors.Is(err, apperrors.ErrInsufficientPrivilege)).To(BeTrue())
			Expect(tasks.AuthorizeHistory(ctx, reviewer, created.ID)).To(Succeed())
		})
	})

	Describe("Handler", func() {
		var router *chi.Mux

		do := func(method, path string, body interface{}, actor role.Actor) *httptest.ResponseRecorder {
			var reader io.Reader
			if body != nil {
				b, err := json.Marshal(body)
				Expect(err).NotTo(HaveOccurred())
				reader = bytes.NewReader(b)
			}
			req := httptest.NewRequest(method, path, reader)
			req = req.WithContext(role.ContextWithActor(req.Context(), actor))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			return w
		}

		BeforeEach(func() {
			handler := task.NewHandler(transport.NewBaseHandler(slogger), tasks)
			router = chi.NewRouter()
			router.Get("/tasks", handler.ListTasks)
			router.Post("/tasks", handler.CreateTask)
			router.Get("/tasks/{id}", handler.GetTask)
			router.Put("/tasks/{id}", handler.UpdateTask)
			router.Delete("/tasks/{id}", handler.DeleteTask)
		})

		It("runs a task through its lifecycle", func() {
			w := do(http.MethodPost, "/tasks", map[string]interface{}{"title": "API task", "team_id": eng.ID}, bob)
			Expect(w.Code).To(Equal(http.StatusCreated))
			var created task.Task
			Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())
			path := "/tasks/" + strconv.FormatInt(created.ID, 10)

			w = do(http.MethodPut, path, map[string]interface{}{"status": "Completed", "due_date": nil}, bob)
			Expect(w.Code).To(Equal(http.StatusOK))
			var updated task.Task
			Expect(json.NewDecoder(w.Body).Decode(&updated)).To(Succeed())
			Expect(updated.CompletedAt).NotTo(BeNil())

			Expect(do(http.MethodPut, path, map[string]interface{}{"status": "Done"}, bob).Code).To(Equal(http.StatusBadRequest))
			Expect(do(http.MethodPut, path, map[string]interface{}{"title": "x"}, carol).Code).To(Equal(http.StatusForbidden))
			Expect(do(http.MethodGet, path, nil, carol).Code).To(Equal(http.StatusForbidden))
			Expect(do(http.MethodDelete, path, nil, bob).Code).To(Equal(http.StatusNoContent))
			Expect(do(http.MethodGet, path, nil, bob).Code).To(Equal(http.StatusNotFound))
		})

		It("validates list filters", func() {
			Expect(do(http.MethodGet, "/tasks?team_id=abc", nil, bob).Code).To(Equal(http.StatusBadRequest))
			Expect(do(http.MethodGet, "/tasks?team_id="+strconv.FormatInt(eng.ID, 10), nil, bob).Code).To(Equal(http.StatusOK))
		})

		It("keeps outsiders out of a team's task list", func() {
			_, err := tasks.Create(ctx, bob, task.CreateTaskDTO{Title: "Internal", TeamID: eng.ID})
			Expect(err).NotTo(HaveOccurred())

			Expect(do(http.MethodGet, "/tasks?team_id="+strconv.FormatInt(eng.ID, 10), nil, carol).Code).To(Equal(http.StatusForbidden))

			w := do(http.MethodGet, "/tasks", nil, carol)
			Expect(w.Code).To(Equal(http.StatusOK))
			var listed []task.Task
			Expect(json.NewDecoder(w.Body).Decode(&listed)).To(Succeed())
			Expect(listed).To(BeEmpty())
		})
	})
})
