package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GTDGit/pricelist_api/internal/database"
	"github.com/GTDGit/pricelist_api/internal/repository"
	"github.com/GTDGit/pricelist_api/internal/service"
	"github.com/GTDGit/pricelist_api/internal/utils"
)

var (
	seedUsername string
	seedPassword string
)

// pricelist seed-admin --username admin --password ...
var seedAdminCmd = &cobra.Command{
	Use:   "seed-admin",
	Short: "Create the admin account or reset its password",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		username := seedUsername
		if username == "" {
			username = cfg.Admin.Username
		}
		password := seedPassword
		if password == "" {
			password = cfg.Admin.Password
		}

		db, err := database.Connect(&cfg.DB)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		defer db.Close()

		if err := database.MigrateUp(db.DB); err != nil {
			return err
		}

		tokens, err := utils.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
		if err != nil {
			return err
		}
		svc := service.NewAdminAuthService(repository.NewAdminUserRepository(db), tokens)
		user, err := svc.SeedAdmin(context.Background(), username, password)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "admin %q ready (id %d)\n", user.Username, user.ID)
		return nil
	},
}

func init() {
	seedAdminCmd.Flags().StringVar(&seedUsername, "username", "", "admin username (default ADMIN_USERNAME)")
	seedAdminCmd.Flags().StringVar(&seedPassword, "password", "", "admin password (default ADMIN_PASSWORD)")
}
