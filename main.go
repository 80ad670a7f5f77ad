// @title Training Tracker API
// @version 1.0
// @description Corporate training tracker: courses, assignments, progress and compliance reports.

// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"context"
	"fmt"
	"os"

	"training_tracker/internal/app"
	"training_tracker/internal/config"
	"training_tracker/internal/model"
	"training_tracker/internal/repository"
	"training_tracker/internal/service"
	"training_tracker/pkg/database"
	"training_tracker/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configDir string
		migrate   bool
	)

	serve := func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configDir)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg.ForceMigrate = migrate

		application, err := app.NewApp(cfg)
		if err != nil {
			return err
		}
		defer logger.Log.Sync()
		return application.Run()
	}

	cmd := &cobra.Command{
		Use:          "training-tracker",
		Short:        "Corporate training tracker API server",
		SilenceUsage: true,
		RunE:         serve,
	}
	cmd.PersistentFlags().StringVarP(&configDir, "config", "c", "configs", "Directory containing config.yaml")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE:  serve,
	}
	serveCmd.Flags().BoolVar(&migrate, "migrate", false, "Run database migrations on start, even in release mode")
	cmd.Flags().AddFlagSet(serveCmd.Flags())

	cmd.AddCommand(serveCmd, migrateCmd(&configDir), promoteCmd(&configDir))
	return cmd
}

func migrateCmd(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(*configDir)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger.InitLogger(cfg)
			defer logger.Log.Sync()

			if _, err := database.InitDB(&cfg.Database, cfg.Server.Mode, true); err != nil {
				return err
			}
			logger.Log.Info("Migration finished")
			return nil
		},
	}
}

func promoteCmd(configDir *string) *cobra.Command {
	var email, role string

	cmd := &cobra.Command{
		Use:   "promote",
		Short: "Set the role of an existing user",
		Long:  "Set the role of an existing user. This is how the first administrator is created.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(*configDir)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger.InitLogger(cfg)
			defer logger.Log.Sync()

			db, err := database.InitDB(&cfg.Database, cfg.Server.Mode, false)
			if err != nil {
				return err
			}

			users := service.NewUserService(repository.NewUserRepository(db))
			user, err := users.Promote(context.Background(), email, model.UserRole(role))
			if err != nil {
				return err
			}
			logger.Log.Info("User role updated", zap.String("email", user.Email), zap.String("role", string(user.Role)))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email of the user to change")
	cmd.Flags().StringVar(&role, "role", string(model.RoleAdmin), "New role (ADMIN or EMPLOYEE)")
	cmd.MarkFlagRequired("email")
	return cmd
}
