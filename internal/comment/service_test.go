package comment_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	apperrors "github.com/frahmantamala/task-tracker/internal"
	"github.com/frahmantamala/task-tracker/internal/comment"
	commentPostgres "github.com/frahmantamala/task-tracker/internal/comment/postgres"
	taskDatamodel "github.com/frahmantamala/task-tracker/internal/core/datamodel/task"
	userDatamodel "github.com/frahmantamala/task-tracker/internal/core/datamodel/user"
	"github.com/frahmantamala/task-tracker/internal/core/events"
	"github.com/frahmantamala/task-tracker/internal/core/permission"
	"github.com/frahmantamala/task-tracker/internal/core/testdb"
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

func TestComment(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Comment Suite")
}

var _ = Describe("Comment Service", func() {
	var (
		ctx      context.Context
		db       *gorm.DB
		slogger  *slog.Logger
		comments *comment.Service
		tasks    *task.Service
		lead     role.Actor
		member   role.Actor
		auditor  role.Actor
		stranger role.Actor
		parent   *task.Task
	)

	newUser := func(name string) int64 {
		u := &userDatamodel.User{Email: name + "@example.com", Name: name, PasswordHash: "x", RoleName: role.NameMember}
		Expect(db.Create(u).Error).To(Succeed())
		return u.ID
	}

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		slogger = slog.New(slog.NewTextHandler(io.Discard, nil))

		db, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(testdb.Close, db)

		memberRole := &role.Role{Name: role.NameMember, Level: 3}
		lead = role.Actor{UserID: newUser("lena"), Role: &role.Role{Name: "team_lead", Level: 6}}
		member = role.Actor{UserID: newUser("milo"), Role: memberRole}
		stranger = role.Actor{UserID: newUser("sam"), Role: memberRole}
		auditor = role.Actor{UserID: newUser("ada"), Role: &role.Role{
			Name:        "auditor",
			Level:       4,
			Permissions: permission.Set{}.With(permission.ResourceTasks, permission.ActionRead),
		}}

		bus := events.NewEventBus(slogger)
		teams := team.NewService(teamPostgres.NewTeamRepository(db), slogger)
		tasks = task.NewService(taskPostgres.NewTaskRepository(db), teams, bus, slogger)
		comments = comment.NewService(commentPostgres.NewCommentRepository(db), tasks, slogger)

		eng, err := teams.Create(ctx, lead, team.CreateTeamDTO{Name: "Eng"})
		Expect(err).NotTo(HaveOccurred())
		_, err = teams.AddMember(ctx, lead, eng.ID, team.AddMemberDTO{UserID: member.UserID})
		Expect(err).NotTo(HaveOccurred())
		parent, err = tasks.Create(ctx, lead, task.CreateTaskDTO{Title: "Launch", TeamID: eng.ID})
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(bus.Wait, ctx)
	})

	Describe("Add", func() {
		It("stores the trimmed content with the author", func() {
			c, err := comments.Add(ctx, member, parent.ID, comment.CreateCommentDTO{Content: "  looks good  "})

			Expect(err).NotTo(HaveOccurred())
			Expect(c.Content).To(Equal("looks good"))
			Expect(c.UserID).To(Equal(member.UserID))
			Expect(c.User).NotTo(BeNil())
			Expect(c.User.Name).To(Equal("milo"))
		})

		It("lets a role with tasks.read comment outside the team", func() {
			_, err := comments.Add(ctx, auditor, parent.ID, comment.CreateCommentDTO{Content: "checked"})
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects empty content", func() {
			_, err := comments.Add(ctx, member, parent.ID, comment.CreateCommentDTO{Content: "   "})
			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(apperrors.ErrorTypeValidation))
		})

		It("rejects callers who cannot read the task", func() {
			_, err := comments.Add(ctx, stranger, parent.ID, comment.CreateCommentDTO{Content: "hi"})
			Expect(errors.Is(err, apperrors.ErrInsufficientPrivilege)).To(BeTrue())
		})

		It("reports a missing task", func() {
			_, err := comments.Add(ctx, member, 9999, comment.CreateCommentDTO{Content: "hi"})
			Expect(errors.Is(err, apperrors.ErrTaskNotFound)).To(BeTrue())
		})
	})

	Describe("List", func() {
		It("returns the newest comment first", func() {
			_, err := comments.Add(ctx, member, parent.ID, comment.CreateCommentDTO{Content: "first"})
			Expect(err).NotTo(HaveOccurred())
			_, err = comments.Add(ctx, lead, parent.ID, comment.CreateCommentDTO{Content: "second"})
			Expect(err).NotTo(HaveOccurred())

			listed, err := comments.List(ctx, member, parent.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(listed).To(HaveLen(2))
			Expect(listed[0].Content).To(Equal("second"))
			Expect(listed[0].User.Name).To(Equal("lena"))
		})

		It("is emptied by deleting the task", func() {
			_, err := comments.Add(ctx, member, parent.ID, comment.CreateCommentDTO{Content: "bye"})
			Expect(err).NotTo(HaveOccurred())

			Expect(tasks.Delete(ctx, lead, parent.ID)).To(Succeed())

			var count int64
			Expect(db.Model(&taskDatamodel.Comment{}).Where("task_id = ?", parent.ID).Count(&count).Error).To(Succeed())
			Expect(count).To(BeZero())
		})
	})

	Describe("Handler", func() {
		var (
			router chi.Router
			caller role.Actor
		)

		BeforeEach(func() {
			caller = member
			h := comment.NewHandler(transport.NewBaseHandler(slogger), comments)
			router = chi.NewRouter()
			router.Use(func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					next.ServeHTTP(w, r.WithContext(role.ContextWithActor(r.Context(), caller)))
				})
			})
			router.Get("/tasks/{id}/comments", h.ListComments)
			router.Post("/tasks/{id}/comments", h.AddComment)
		})

		do := func(method, body string) *httptest.ResponseRecorder {
			path := "/tasks/" + strconv.FormatInt(parent.ID, 10) + "/comments"
			req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			return rec
		}

		It("creates with 201 and lists with 200", func() {
			Expect(do(http.MethodPost, `{"content":"ship it"}`).Code).To(Equal(http.StatusCreated))

			rec := do(http.MethodGet, "")
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring(`"content":"ship it"`))
		})

		It("returns 400 for empty content", func() {
			Expect(do(http.MethodPost, `{"content":""}`).Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 403 for a stranger", func() {
			caller = stranger
			Expect(do(http.MethodGet, "").Code).To(Equal(http.StatusForbidden))
		})
	})
})
