// Package seed loads the system roles fixture and bootstraps the first admin.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/frahmantamala/task-tracker/internal/auth"
	roleDatamodel "github.com/frahmantamala/task-tracker/internal/core/datamodel/role"
	userDatamodel "github.com/frahmantamala/task-tracker/internal/core/datamodel/user"
	"github.com/frahmantamala/task-tracker/internal/core/permission"
	"github.com/frahmantamala/task-tracker/internal/role"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

type RoleFixture struct {
	Name        string                 `yaml:"name"`
	Description string                 `yaml:"description"`
	Level       int                    `yaml:"level"`
	Permissions map[string]interface{} `yaml:"permissions"`
}

type Fixtures struct {
	Roles []RoleFixture `yaml:"roles"`
}

// AdminAccount is the bootstrap administrator created by the seed command.
type AdminAccount struct {
	Email    string
	Name     string
	Password string
}

// LoadFixtures reads a roles YAML file.
func LoadFixtures(path string) (*Fixtures, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	return ParseFixtures(raw)
}

func ParseFixtures(raw []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	for i, r := range f.Roles {
		if strings.TrimSpace(r.Name) == "" {
			return nil, fmt.Errorf("role #%d has no name", i+1)
		}
		if r.Level < role.MinLevel || r.Level > role.MaxLevel {
			return nil, fmt.Errorf("role %q: level must be between %d and %d", r.Name, role.MinLevel, role.MaxLevel)
		}
		if _, err := r.permissionSet(); err != nil {
			return nil, fmt.Errorf("role %q: %w", r.Name, err)
		}
	}
	return &f, nil
}

func (r RoleFixture) permissionSet() (permission.Set, error) {
	raw, err := json.Marshal(r.Permissions)
	if err != nil {
		return permission.Set{}, err
	}
	return permission.Parse(raw)
}

type Seeder struct {
	db         *gorm.DB
	bcryptCost int
	logger     *slog.Logger
}

func NewSeeder(db *gorm.DB, bcryptCost int, logger *slog.Logger) *Seeder {
	return &Seeder{db: db, bcryptCost: bcryptCost, logger: logger}
}

// Roles inserts missing roles and refreshes level, description and
// permissions of existing ones, matched by name.
func (s *Seeder) Roles(ctx context.Context, fixtures []RoleFixture) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, f := range fixtures {
			perms, err := f.permissionSet()
			if err != nil {
				return fmt.Errorf("role %q: %w", f.Name, err)
			}

			var existing roleDatamodel.Role
			err = tx.Where("name = ?", f.Name).First(&existing).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				desc := f.Description
				row := &roleDatamodel.Role{Name: f.Name, Description: &desc, Level: f.Level, Permissions: perms}
				if err := tx.Create(row).Error; err != nil {
					return fmt.Errorf("insert role %q: %w", f.Name, err)
				}
				s.logger.InfoContext(ctx, "role seeded", "role", f.Name, "level", f.Level)
			case err != nil:
				return fmt.Errorf("lookup role %q: %w", f.Name, err)
			default:
				err := tx.Model(&existing).Updates(map[string]interface{}{
					"description": f.Description,
					"level":       f.Level,
					"permissions": perms,
				}).Error
				if err != nil {
					return fmt.Errorf("update role %q: %w", f.Name, err)
				}
				s.logger.InfoContext(ctx, "role refreshed", "role", f.Name, "level", f.Level)
			}
		}
		return nil
	})
}

// Admin creates the bootstrap admin unless the email is taken. It reports
// whether a user was created.
func (s *Seeder) Admin(ctx context.Context, account AdminAccount) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(account.Email))
	if email == "" || account.Password == "" {
		return false, errors.New("admin email and password are required")
	}

	var adminRole roleDatamodel.Role
	if err := s.db.WithContext(ctx).Where("name = ?", role.NameAdmin).First(&adminRole).Error; err != nil {
		return false, fmt.Errorf("admin role must be seeded first: %w", err)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&userDatamodel.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, fmt.Errorf("lookup admin: %w", err)
	}
	if count > 0 {
		s.logger.InfoContext(ctx, "admin already exists", "email", email)
		return false, nil
	}

	hash, err := auth.HashPassword(account.Password, s.bcryptCost)
	if err != nil {
		return false, err
	}

	name := strings.TrimSpace(account.Name)
	if name == "" {
		name = "Administrator"
	}
	u := &userDatamodel.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		RoleName:     adminRole.Name,
		RoleID:       &adminRole.ID,
	}
	if err := s.db.WithContext(ctx).Omit("Role").Create(u).Error; err != nil {
		return false, fmt.Errorf("insert admin: %w", err)
	}

	s.logger.InfoContext(ctx, "admin seeded", "email", email, "user_id", u.ID)
	return true, nil
}
