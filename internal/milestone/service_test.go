package milestone_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"

	apperrors "github.com/frahmantamala/task-tracker/internal"
	"github.com/frahmantamala/task-tracker/internal/core/common/patch"
	taskDatamodel "github.com/frahmantamala/task-tracker/internal/core/datamodel/task"
	userDatamodel "github.com/frahmantamala/task-tracker/internal/core/datamodel/user"
	"github.com/frahmantamala/task-tracker/internal/core/events"
	"github.com/frahmantamala/task-tracker/internal/core/testdb"
	"github.com/frahmantamala/task-tracker/internal/milestone"
	milestonePostgres "github.com/frahmantamala/task-tracker/internal/milestone/postgres"
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

var _ = Describe("Milestone Service", func() {
	var (
		ctx        context.Context
		db         *gorm.DB
		slogger    *slog.Logger
		bus        *events.EventBus
		milestones *milestone.Service
		tasks      *task.Service
		owner      role.Actor
		outsider   role.Actor
		parent     *task.Task
	)

	newUser := func(name string) int64 {
		u := &userDatamodel.User{Email: name + "@example.com", Name: name, PasswordHash: "x", RoleName: role.NameMember}
		Expect(db.Create(u).Error).To(Succeed())
		return u.ID
	}

	add := func(title string) *milestone.Milestone {
		m, err := milestones.Add(ctx, owner, parent.ID, milestone.CreateMilestoneDTO{Title: title})
		Expect(err).NotTo(HaveOccurred())
		return m
	}

	titles := func(ms []*milestone.Milestone) []string {
		out := make([]string, 0, len(ms))
		for _, m := range ms {
			out = append(out, m.Title)
		}
		return out
	}

	indices := func(ms []*milestone.Milestone) []int {
		out := make([]int, 0, len(ms))
		for _, m := range ms {
			out = append(out, m.OrderIndex)
		}
		return out
	}

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		slogger = slog.New(slog.NewTextHandler(io.Discard, nil))

		db, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(testdb.Close, db)

		memberRole := &role.Role{Name: role.NameMember, Level: 3}
		owner = role.Actor{UserID: newUser("olivia"), Role: &role.Role{Name: "team_lead", Level: 6}}
		outsider = role.Actor{UserID: newUser("oscar"), Role: memberRole}

		bus = events.NewEventBus(slogger)
		teams := team.NewService(teamPostgres.NewTeamRepository(db), slogger)
		tasks = task.NewService(taskPostgres.NewTaskRepository(db), teams, bus, slogger)
		milestones = milestone.NewService(milestonePostgres.NewMilestoneRepository(db), tasks, slogger)

		eng, err := teams.Create(ctx, owner, team.CreateTeamDTO{Name: "Eng"})
		Expect(err).NotTo(HaveOccurred())
		parent, err = tasks.Create(ctx, owner, task.CreateTaskDTO{Title: "Launch", TeamID: eng.ID})
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(bus.Wait, ctx)
	})

	Describe("Add", func() {
		It("appends at the current count", func() {
			a := add("Design")
			b := add("Build")
			c := add("Ship")

			Expect([]int{a.OrderIndex, b.OrderIndex, c.OrderIndex}).To(Equal([]int{0, 1, 2}))
			Expect(a.Completed).To(BeFalse())
		})

		It("stores an optional due date", func() {
			due := "2024-09-01"
			m, err := milestones.Add(ctx, owner, parent.ID, milestone.CreateMilestoneDTO{Title: "Beta", DueDate: &due})
			Expect(err).NotTo(HaveOccurred())
			Expect(*m.DueDate).To(Equal("2024-09-01"))
		})

		It("requires a title", func() {
			_, err := milestones.Add(ctx, owner, parent.ID, milestone.CreateMilestoneDTO{Title: " "})
			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(apperrors.ErrorTypeValidation))
		})

		It("requires write access on the task", func() {
			_, err := milestones.Add(ctx, outsider, parent.ID, milestone.CreateMilestoneDTO{Title: "Nope"})
			Expect(errors.Is(err, apperrors.ErrInsufficientPrivilege)).To(BeTrue())
		})

		It("reports a missing task", func() {
			_, err := milestones.Add(ctx, owner, 9999, milestone.CreateMilestoneDTO{Title: "Orphan"})
			Expect(errors.Is(err, apperrors.ErrTaskNotFound)).To(BeTrue())
		})
	})

	Describe("ApplyOrder", func() {
		var a, b, c *milestone.Milestone

		BeforeEach(func() {
			a, b, c = add("A"), add("B"), add("C")
		})

		It("renumbers to the requested order", func() {
			ordered, err := milestones.ApplyOrder(ctx, owner, parent.ID, milestone.OrderDTO{MilestoneIDs: []int64{c.ID, a.ID, b.ID}})

			Expect(err).NotTo(HaveOccurred())
			Expect(titles(ordered)).To(Equal([]string{"C", "A", "B"}))
			Expect(indices(ordered)).To(Equal([]int{0, 1, 2}))
		})

		It("places unmentioned milestones after the listed ones", func() {
			ordered, err := milestones.ApplyOrder(ctx, owner, parent.ID, milestone.OrderDTO{MilestoneIDs: []int64{b.ID}})

			Expect(err).NotTo(HaveOccurred())
			Expect(titles(ordered)).To(Equal([]string{"B", "A", "C"}))
		})

		It("rejects a milestone from another task and changes nothing", func() {
			other, err := tasks.Create(ctx, owner, task.CreateTaskDTO{Title: "Other", TeamID: parent.TeamID})
			Expect(err).NotTo(HaveOccurred())
			stray, err := milestones.Add(ctx, owner, other.ID, milestone.CreateMilestoneDTO{Title: "Stray"})
			Expect(err).NotTo(HaveOccurred())

			_, err = milestones.ApplyOrder(ctx, owner, parent.ID, milestone.OrderDTO{MilestoneIDs: []int64{stray.ID, a.ID}})
			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(apperrors.ErrCodeInvalidOrder))

			listed, err := milestones.List(ctx, owner, parent.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(titles(listed)).To(Equal([]string{"A", "B", "C"}))
		})

		It("requires a non-empty list", func() {
			_, err := milestones.ApplyOrder(ctx, owner, parent.ID, milestone.OrderDTO{})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Move", func() {
		It("drops the moved milestone onto the target position", func() {
			a, _, c := add("A"), add("B"), add("C")

			ordered, err := milestones.Move(ctx, owner, c.ID, milestone.MoveDTO{TargetID: a.ID})

			Expect(err).NotTo(HaveOccurred())
			Expect(titles(ordered)).To(Equal([]string{"C", "A", "B"}))
			Expect(indices(ordered)).To(Equal([]int{0, 1, 2}))
		})

		It("rejects a target outside the task", func() {
			a := add("A")
			_, err := milestones.Move(ctx, owner, a.ID, milestone.MoveDTO{TargetID: 9999})
			Expect(err).To(HaveOccurred())
		})

		It("reports a missing milestone", func() {
			_, err := milestones.Move(ctx, owner, 9999, milestone.MoveDTO{TargetID: 1})
			Expect(errors.Is(err, apperrors.ErrMilestoneNotFound)).To(BeTrue())
		})
	})

	Describe("Toggle and Update", func() {
		It("keeps the position when completed", func() {
			add("A")
			b := add("B")

			done, err := milestones.Toggle(ctx, owner, b.ID, true)

			Expect(err).NotTo(HaveOccurred())
			Expect(done.Completed).To(BeTrue())
			Expect(done.OrderIndex).To(Equal(1))
		})

		It("changes the title and clears the due date", func() {
			due := "2024-09-01"
			m, err := milestones.Add(ctx, owner, parent.ID, milestone.CreateMilestoneDTO{Title: "Beta", DueDate: &due})
			Expect(err).NotTo(HaveOccurred())

			updated, err := milestones.Update(ctx, owner, m.ID, milestone.UpdateMilestoneDTO{
				Title:   patch.Value("Beta 2"),
				DueDate: patch.Null[string](),
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Title).To(Equal("Beta 2"))
			Expect(updated.DueDate).To(BeNil())
		})

		It("rejects callers without write access", func() {
			m := add("A")
			_, err := milestones.Toggle(ctx, outsider, m.ID, true)
			Expect(errors.Is(err, apperrors.ErrInsufficientPrivilege)).To(BeTrue())
		})
	})

	Describe("Delete", func() {
		It("leaves a gap in the remaining indices", func() {
			add("A")
			b := add("B")
			add("C")

			Expect(milestones.Delete(ctx, owner, b.ID)).To(Succeed())

			listed, err := milestones.List(ctx, owner, parent.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(titles(listed)).To(Equal([]string{"A", "C"}))
			Expect(indices(listed)).To(Equal([]int{0, 2}))
		})

		It("reports a missing milestone", func() {
			err := milestones.Delete(ctx, owner, 9999)
			Expect(errors.Is(err, apperrors.ErrMilestoneNotFound)).To(BeTrue())
		})

		It("goes away with its task", func() {
			add("A")
			Expect(tasks.Delete(ctx, owner, parent.ID)).To(Succeed())

			var count int64
			Expect(db.Model(&taskDatamodel.Milestone{}).Where("task_id = ?", parent.ID).Count(&count).Error).To(Succeed())
			Expect(count).To(BeZero())
		})
	})

	Describe("Handler", func() {
		var router chi.Router

		BeforeEach(func() {
			h := milestone.NewHandler(transport.NewBaseHandler(slogger), milestones)
			router = chi.NewRouter()
			router.Use(func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					if r.Header.Get("X-Test-Anonymous") == "" {
						r = r.WithContext(role.ContextWithActor(r.Context(), owner))
					}
					next.ServeHTTP(w, r)
				})
			})
			router.Get("/tasks/{id}/milestones", h.ListMilestones)
			router.Post("/tasks/{id}/milestones", h.AddMilestone)
			router.Put("/tasks/{id}/milestones/order", h.ReorderMilestones)
			router.Post("/milestones/{id}/move", h.MoveMilestone)
			router.Patch("/milestones/{id}", h.UpdateMilestone)
			router.Delete("/milestones/{id}", h.DeleteMilestone)
		})

		do := func(method, path, body string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			return rec
		}

		taskPath := func() string {
			return "/tasks/" + strconv.FormatInt(parent.ID, 10) + "/milestones"
		}

		It("creates with 201 and lists in order", func() {
			Expect(do(http.MethodPost, taskPath(), `{"title":"A"}`).Code).To(Equal(http.StatusCreated))
			Expect(do(http.MethodPost, taskPath(), `{"title":"B"}`).Code).To(Equal(http.StatusCreated))

			rec := do(http.MethodGet, taskPath(), "")
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring(`"order_index":1`))
		})

		It("returns 400 for an unknown id in the order", func() {
			add("A")
			rec := do(http.MethodPut, taskPath()+"/order", `{"milestone_ids":[424242]}`)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 204 on delete and 404 afterwards", func() {
			m := add("A")
			path := "/milestones/" + strconv.FormatInt(m.ID, 10)

			Expect(do(http.MethodDelete, path, "").Code).To(Equal(http.StatusNoContent))
			Expect(do(http.MethodPatch, path, `{"completed":true}`).Code).To(Equal(http.StatusNotFound))
		})

		It("returns 401 without an actor", func() {
			req := httptest.NewRequest(http.MethodGet, taskPath(), nil)
			req.Header.Set("X-Test-Anonymous", "1")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})
	})
})
