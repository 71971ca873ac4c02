package cmd

import (
	"context"
	"log"
	"os"

	"github.com/frahmantamala/task-tracker/internal/seed"
	"github.com/spf13/cobra"
)

var (
	seedFixtures      string
	seedAdminEmail    string
	seedAdminName     string
	seedAdminPassword string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the default roles and the first administrator",
	Long:  `Upsert the role fixtures and, when credentials are given, create the first admin account.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		logger := initLogger(cfg)

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		gdb, err := openGorm(db, cfg.Server.Env)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		fixtures, err := seed.LoadFixtures(seedFixtures)
		if err != nil {
			log.Fatalf("failed to load fixtures: %v", err)
		}

		seeder := seed.NewSeeder(gdb, cfg.Security.BCryptCost, logger)
		if err := seeder.Roles(ctx, fixtures.Roles); err != nil {
			log.Fatalf("failed to seed roles: %v", err)
		}

		if seedAdminEmail == "" || seedAdminPassword == "" {
			logger.Info("no admin credentials given; skipping admin account")
			return
		}

		created, err := seeder.Admin(ctx, seed.AdminAccount{
			Email:    seedAdminEmail,
			Name:     seedAdminName,
			Password: seedAdminPassword,
		})
		if err != nil {
			log.Fatalf("failed to seed admin: %v", err)
		}
		if !created {
			logger.Info("admin account already exists", "email", seedAdminEmail)
		}
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedFixtures, "fixtures", "db/seed/roles.yml", "role fixtures file")
	seedCmd.Flags().StringVar(&seedAdminEmail, "admin-email", os.Getenv("SEED_ADMIN_EMAIL"), "email of the first admin")
	seedCmd.Flags().StringVar(&seedAdminName, "admin-name", "Administrator", "display name of the first admin")
	seedCmd.Flags().StringVar(&seedAdminPassword, "admin-password", os.Getenv("SEED_ADMIN_PASSWORD"), "password of the first admin")
}
