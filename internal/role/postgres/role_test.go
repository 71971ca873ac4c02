package postgres_test

import (
	"context"
	"testing"

	roleDatamodel "github.com/frahmantamala/task-tracker/internal/core/datamodel/role"
	"github.com/frahmantamala/task-tracker/internal/core/permission"
	"github.com/frahmantamala/task-tracker/internal/role"
	rolePostgres "github.com/frahmantamala/task-tracker/internal/role/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestRolePostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Role Postgres Suite")
}

var _ = Describe("Role Repository", func() {
	var (
		ctx  context.Context
		db   *gorm.DB
		repo role.RepositoryAPI
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&roleDatamodel.Role{})).To(Succeed())

		repo = rolePostgres.NewRoleRepository(db)
	})

	It("round trips the permission map", func() {
		in := &roleDatamodel.Role{
			Name:        "reviewer",
			Level:       4,
			Permissions: permission.Set{}.With(permission.ResourceTasks, permission.ActionRead),
		}
		Expect(repo.Create(ctx, in)).To(Succeed())

		out, err := repo.GetByID(ctx, in.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Permissions.Allows(permission.ResourceTasks, permission.ActionRead)).To(BeTrue())
		Expect(out.Permissions.Allows(permission.ResourceTasks, permission.ActionUpdate)).To(BeFalse())
	})

	It("lists by level descending then name", func() {
		for _, r := range []*roleDatamodel.Role{
			{Name: "member", Level: 3},
			{Name: "admin", Level: 10},
			{Name: "b_lead", Level: 6},
			{Name: "a_lead", Level: 6},
		} {
			Expect(repo.Create(ctx, r)).To(Succeed())
		}

		roles, err := repo.List(ctx)
		Expect(err).NotTo(HaveOccurred())

		names := make([]string, len(roles))
		for i, r := range roles {
			names[i] = r.Name
		}
		Expect(names).To(Equal([]string{"admin", "a_lead", "b_lead", "member"}))
	})

	It("returns nil for unknown names", func() {
		out, err := repo.GetByName(ctx, "ghost")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(BeNil())
	})

	It("never deletes system roles", func() {
		admin := &roleDatamodel.Role{Name: "admin", Level: 10, Permissions: permission.FullAccess()}
		custom := &roleDatamodel.Role{Name: "team_lead", Level: 6}
		Expect(repo.Create(ctx, admin)).To(Succeed())
		Expect(repo.Create(ctx, custom)).To(Succeed())

		Expect(repo.Delete(ctx, admin.ID)).To(Succeed())
		Expect(repo.Delete(ctx, custom.ID)).To(Succeed())

		stillThere, err := repo.GetByID(ctx, admin.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(stillThere).NotTo(BeNil())

		gone, err := repo.GetByID(ctx, custom.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(gone).To(BeNil())
	})
})
