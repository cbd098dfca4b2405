package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/event-service/internal/domain"
	"github.com/spec-kit/event-service/internal/service"
)

var (
	adminName  string
	adminEmail string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administrative account tasks",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an ADMIN account (password read from ADMIN_PASSWORD)",
	RunE: func(cmd *cobra.Command, args []string) error {
		password := os.Getenv("ADMIN_PASSWORD")
		if len(password) < 8 {
			return errors.New("ADMIN_PASSWORD must be set to at least 8 characters")
		}

		cfg, logger, err := bootstrap()
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck
		if cfg.Postgres.DSN == "" {
			return errors.New("admin create requires POSTGRES_DSN")
		}

		store, pg, err := openStore(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer pg.Close()

		authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{Store: store, Logger: logger})
		user, _, err := authService.RegisterAccount(cmd.Context(), service.RegisterInput{
			Name:     adminName,
			Email:    adminEmail,
			Password: password,
			Role:     domain.RoleAdmin,
		})
		if err != nil {
			return err
		}
		logger.Info("admin account created", zap.String("user_id", user.ID), zap.String("email", user.Email))
		return nil
	},
}

func init() {
	adminCreateCmd.Flags().StringVar(&adminName, "name", "Administrator", "display name")
	adminCreateCmd.Flags().StringVar(&adminEmail, "email", "", "login email")
	_ = adminCreateCmd.MarkFlagRequired("email")
	adminCmd.AddCommand(adminCreateCmd)
}
