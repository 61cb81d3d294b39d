package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/cmlabs-hris/hris-payroll-go/internal/app"
	"github.com/cmlabs-hris/hris-payroll-go/internal/config"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-go/migrations"
	"github.com/spf13/cobra"
)

// env resolves configuration and the assembled application lazily so that
// commands which never touch the database do not need one.
type env struct {
	loadConfig func() (*config.Config, error)
	connect    func(ctx context.Context, cfg *config.Config) (*app.App, func(), error)
}

func defaultEnv() env {
	return env{
		loadConfig: config.Load,
		connect: func(ctx context.Context, cfg *config.Config) (*app.App, func(), error) {
			db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
			if err != nil {
				return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
			}
			return app.New(cfg, db), db.Close, nil
		},
	}
}

type rootOptions struct {
	organizationID string
	userID         string
	asJSON         bool
}

func newRootCmd(e env) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "payrollctl",
		Short:         "Operate payroll periods, runs and registers",
		Version:       app.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.organizationID, "org", "", "organization id")
	root.PersistentFlags().StringVar(&opts.userID, "user", "payrollctl", "acting user id recorded on transitions")
	root.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "print results as JSON")

	root.AddCommand(
		newMigrateCmd(e),
		newPeriodCmd(e, opts),
		newRunCmd(e, opts),
		newRegisterCmd(e, opts),
		newTokenCmd(e, opts),
	)
	return root
}

// withApp loads configuration, connects, and hands the application to fn.
func withApp(cmd *cobra.Command, e env, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := e.loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, closeFn, err := e.connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	return fn(ctx, a)
}

func requireOrg(opts *rootOptions) error {
	if opts.organizationID == "" {
		return fmt.Errorf("--org is required")
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newMigrateCmd(e env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, e, func(ctx context.Context, a *app.App) error {
				if err := migrations.Up(ctx, a.DB); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			})
		},
	}
}
