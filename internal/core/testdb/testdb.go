// Package testdb opens a migrated in-memory SQLite database for repository tests.
package testdb

import (
	"fmt"
	"sync/atomic"

	adminRequestDatamodel "github.com/frahmantamala/task-tracker/internal/core/datamodel/adminrequest"
	roleDatamodel "github.com/frahmantamala/task-tracker/internal/core/datamodel/role"
	taskDatamodel "github.com/frahmantamala/task-tracker/internal/core/datamodel/task"
	teamDatamodel "github.com/frahmantamala/task-tracker/internal/core/datamodel/team"
	userDatamodel "github.com/frahmantamala/task-tracker/internal/core/datamodel/user"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var seq atomic.Int64

// Open returns a fresh database. Each call gets its own shared-cache name so
// pooled connections and goroutines see the same data.
func Open() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", seq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&roleDatamodel.Role{},
		&userDatamodel.User{},
		&teamDatamodel.Team{},
		&teamDatamodel.TeamMember{},
		&adminRequestDatamodel.AdminRequest{},
		&taskDatamodel.Task{},
		&taskDatamodel.Milestone{},
		&taskDatamodel.Comment{},
		&taskDatamodel.History{},
	)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
