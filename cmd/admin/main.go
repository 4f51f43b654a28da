// Command admin runs one-off maintenance tasks against the TCW1 database.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"tcw1/internal/app"
	"tcw1/internal/config"
	"tcw1/internal/logger"
	"tcw1/internal/metrics"
	"tcw1/internal/models"
	"tcw1/internal/repositories"
	"tcw1/internal/repositories/cache"
	"tcw1/internal/scheduler"
	"tcw1/internal/services/admin"
	"tcw1/internal/services/auth"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "tcw1-admin",
		Short:         "TCW1 maintenance commands",
		Version:       app.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(promoteCmd())
	rootCmd.AddCommand(jobCmd("renew", "Charge memberships due for renewal", scheduler.JobMembershipRenewal))
	rootCmd.AddCommand(jobCmd("expire-listings", "Expire marketplace listings past their expiry date", scheduler.JobListingExpiry))
	rootCmd.AddCommand(jobCmd("expire-approvals", "Expire login approvals older than 24 hours", scheduler.JobApprovalExpiry))
	rootCmd.AddCommand(resetDBCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withServices connects the database, builds the service graph and runs fn.
func withServices(fn func(ctx context.Context, cfg *config.Config, s *app.Services) error) error {
	config.LoadEnv()
	cfg := config.Load()
	if _, err := logger.Init(config.IsProduction()); err != nil {
		return err
	}
	defer logger.Sync()

	if err := repositories.InitDB(cfg); err != nil {
		return err
	}
	defer repositories.Close()

	services, err := app.NewServices(cfg, repositories.DB, repositories.CacheService, metrics.New())
	if err != nil {
		return err
	}
	defer func() {
		_ = services.Blockchain.Shutdown(context.Background())
	}()
	return fn(context.Background(), cfg, services)
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the admin account from ADMIN_EMAIL and ADMIN_PASSWORD if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(func(ctx context.Context, _ *config.Config, s *app.Services) error {
				email := config.GetEnv("ADMIN_EMAIL", "")
				password := config.GetEnv("ADMIN_PASSWORD", "")
				created, err := seedAdmin(ctx, s.Auth, s.Admin, email, password)
				if err != nil {
					return err
				}
				if created {
					fmt.Fprintf(cmd.OutOrStdout(), "✅ Admin account %s created\n", email)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Admin account %s already exists\n", email)
				}
				return nil
			})
		},
	}
}

type signupper interface {
	Signup(ctx context.Context, input auth.SignupInput) (*auth.Result, error)
}

type promoter interface {
	PromoteByEmail(ctx context.Context, email string) (*models.User, error)
}

// seedAdmin creates the account when missing and makes sure it is an admin.
// It reports whether a new account was created.
func seedAdmin(ctx context.Context, accounts signupper, admins promoter, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set")
	}

	created := true
	_, err := accounts.Signup(ctx, auth.SignupInput{
		Email:     email,
		Password:  password,
		FirstName: "Admin",
		LastName:  "User",
	})
	if errors.Is(err, auth.ErrEmailTaken) {
		created = false
	} else if err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}

	if _, err := admins.PromoteByEmail(ctx, email); err != nil && !errors.Is(err, admin.ErrAlreadyAdmin) {
		return created, fmt.Errorf("promote admin: %w", err)
	}
	return created, nil
}

func promoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "promote [email]",
		Short: "Grant the admin role to an existing user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(func(ctx context.Context, _ *config.Config, s *app.Services) error {
				user, err := s.Admin.PromoteByEmail(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✅ %s is now an admin (id %d)\n", user.Email, user.ID)
				return nil
			})
		},
	}
}

func jobCmd(use, short, job string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(func(ctx context.Context, cfg *config.Config, s *app.Services) error {
				sched, err := s.Scheduler(cfg, scheduler.NoopMetricsCollector{})
				if err != nil {
					return err
				}
				if err := sched.RunOnce(ctx, job); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✅ %s finished\n", job)
				return nil
			})
		},
	}
}

func resetDBCmd() *cobra.Command {
	var confirmed bool
	cmd := &cobra.Command{
		Use:   "reset-db",
		Short: "Drop and re-create every table (development only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkReset(confirmed, config.IsProduction()); err != nil {
				return err
			}
			return withServices(func(ctx context.Context, _ *config.Config, _ *app.Services) error {
				db := repositories.DB.WithContext(ctx)
				if err := repositories.DropAllTables(db); err != nil {
					return fmt.Errorf("drop tables: %w", err)
				}
				if err := db.AutoMigrate(repositories.Models...); err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
				if repositories.CacheService != nil {
					n, err := repositories.CacheService.Purge(ctx, cache.UserPrefix, cache.PricePrefix, cache.WalletPrefix)
					if err != nil {
						logger.Log.Warnw("⚠️ Failed to purge Redis cache", "error", err)
					} else {
						logger.Log.Infow("Purged cached entries", "keys", n)
					}
				}
				fmt.Fprintln(cmd.OutOrStdout(), "✅ Database reset")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&confirmed, "yes", false, "Confirm that all data will be deleted")
	return cmd
}

func checkReset(confirmed, production bool) error {
	if production {
		return errors.New("reset-db is disabled in production")
	}
	if !confirmed {
		return errors.New("reset-db deletes all data; re-run with --yes")
	}
	return nil
}
