package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/easishift/clinic-scheduler-go/pkg/auth"
	"github.com/easishift/clinic-scheduler-go/pkg/database"
	"github.com/easishift/clinic-scheduler-go/pkg/jobs"
	"github.com/easishift/clinic-scheduler-go/pkg/models"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "schedctl",
		Short: "Clinic scheduler operations tool",
	}

	rootCmd.AddCommand(seedCmd(), sweepCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// seedCmd bootstraps a tenant with its admin user, for fresh deployments.
func seedCmd() *cobra.Command {
	var (
		tenantName string
		email      string
		password   string
		adminName  string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a tenant and its admin user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if tenantName == "" || email == "" || password == "" {
				return fmt.Errorf("--tenant, --email and --password are required")
			}
			if adminName == "" {
				adminName = "Admin"
			}

			db := database.InitDB()

			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}

			tenant := models.Tenant{Name: tenantName, Email: email}
			if err := db.Create(&tenant).Error; err != nil {
				return err
			}

			admin := models.User{
				TenantID:     tenant.ID,
				Name:         adminName,
				Email:        email,
				PasswordHash: hash,
				Role:         models.RoleAdmin,
			}
			if err := db.Create(&admin).Error; err != nil {
				return err
			}

			fmt.Printf("Created tenant %d with admin user %d (%s)\n", tenant.ID, admin.ID, email)
			return nil
		},
	}

	cmd.Flags().StringVar(&tenantName, "tenant", "", "clinic name")
	cmd.Flags().StringVar(&email, "email", "", "admin email (also the tenant contact)")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	cmd.Flags().StringVar(&adminName, "admin-name", "", "admin display name")
	return cmd
}

// sweepCmd runs the shift completion sweep once and exits.
func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Mark past scheduled shifts as completed",
		RunE: func(cmd *cobra.Command, args []string) error {
			db := database.InitDB()
			logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

			sweeper := jobs.NewCompletionSweeper(db, logger, 0)
			count, err := sweeper.RunOnce(context.Background())
			if err != nil {
				return err
			}

			fmt.Printf("Marked %d shift(s) completed\n", count)
			return nil
		},
	}
}
