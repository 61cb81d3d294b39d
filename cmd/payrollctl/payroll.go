package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/cmlabs-hris/hris-payroll-go/internal/app"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/export"
	"github.com/spf13/cobra"
)

// ========== PERIODS ==========

func newPeriodCmd(e env, opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "period",
		Short: "Create and transition payroll periods",
	}

	var month, year int
	create := &cobra.Command{
		Use:   "create",
		Short: "Open a draft period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireOrg(opts); err != nil {
				return err
			}
			return withApp(cmd, e, func(ctx context.Context, a *app.App) error {
				period, err := a.Payroll.CreatePeriod(ctx, payroll.CreatePeriodRequest{
					OrganizationID: opts.organizationID,
					Month:          month,
					Year:           year,
				})
				if err != nil {
					return err
				}
				return printPeriod(cmd, opts, period)
			})
		},
	}
	create.Flags().IntVar(&month, "month", 0, "calendar month (1-12)")
	create.Flags().IntVar(&year, "year", 0, "calendar year")
	_ = create.MarkFlagRequired("month")
	_ = create.MarkFlagRequired("year")

	list := &cobra.Command{
		Use:   "list",
		Short: "List periods of the organization",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireOrg(opts); err != nil {
				return err
			}
			return withApp(cmd, e, func(ctx context.Context, a *app.App) error {
				periods, err := a.Payroll.ListPeriods(ctx, opts.organizationID)
				if err != nil {
					return err
				}
				if opts.asJSON {
					return printJSON(cmd.OutOrStdout(), periods)
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tMONTH\tYEAR\tSTATUS")
				for _, p := range periods {
					fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", p.ID, p.Month, p.Year, p.Status)
				}
				return tw.Flush()
			})
		},
	}

	cmd.AddCommand(
		create,
		list,
		periodTransitionCmd(e, opts, "lock", "Lock a draft period for run finalization", func(ctx context.Context, a *app.App, id string) (payroll.Period, error) {
			return a.Payroll.LockPeriod(ctx, opts.organizationID, id, opts.userID)
		}),
		periodTransitionCmd(e, opts, "finalize", "Finalize a locked period", func(ctx context.Context, a *app.App, id string) (payroll.Period, error) {
			return a.Payroll.FinalizePeriod(ctx, opts.organizationID, id, opts.userID)
		}),
	)
	return cmd
}

func periodTransitionCmd(e env, opts *rootOptions, use, short string, fn func(ctx context.Context, a *app.App, id string) (payroll.Period, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <period-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireOrg(opts); err != nil {
				return err
			}
			return withApp(cmd, e, func(ctx context.Context, a *app.App) error {
				period, err := fn(ctx, a, args[0])
				if err != nil {
					return err
				}
				return printPeriod(cmd, opts, period)
			})
		},
	}
}

func printPeriod(cmd *cobra.Command, opts *rootOptions, period payroll.Period) error {
	if opts.asJSON {
		return printJSON(cmd.OutOrStdout(), period)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "period %s %02d/%d is %s\n", period.ID, period.Month, period.Year, period.Status)
	return nil
}

// ========== RUNS ==========

func newRunCmd(e env, opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Finalize payroll runs",
	}

	var state string
	finalize := &cobra.Command{
		Use:   "finalize <period-id> <employee-id>",
		Short: "Compute and store one employee's run",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireOrg(opts); err != nil {
				return err
			}
			return withApp(cmd, e, func(ctx context.Context, a *app.App) error {
				if _, err := a.Payroll.GetPeriod(ctx, opts.organizationID, args[0]); err != nil {
					return err
				}
				if _, err := a.Employees.GetInOrganization(ctx, opts.organizationID, args[1]); err != nil {
					return err
				}

				run, err := a.Payroll.FinalizeRun(ctx, args[0], args[1], state)
				if err != nil {
					return err
				}
				if opts.asJSON {
					return printJSON(cmd.OutOrStdout(), run)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "employee %s: gross %s, deductions %s, net %s\n",
					args[1],
					export.FormatAmount(run.GrossEarnings),
					export.FormatAmount(run.TotalDeductions),
					export.FormatAmount(run.NetPay),
				)
				return nil
			})
		},
	}
	finalize.Flags().StringVar(&state, "state", "", "statutory state code; defaults to the employee's work state")

	finalizeAll := &cobra.Command{
		Use:   "finalize-all <period-id>",
		Short: "Finalize every active employee of the period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireOrg(opts); err != nil {
				return err
			}
			return withApp(cmd, e, func(ctx context.Context, a *app.App) error {
				result, err := a.Payroll.FinalizeAll(ctx, opts.organizationID, args[0])
				if err != nil {
					return err
				}
				if opts.asJSON {
					return printJSON(cmd.OutOrStdout(), result)
				}
				printBatch(cmd, result)
				if len(result.Failed) > 0 {
					return fmt.Errorf("%d of %d runs failed", len(result.Failed), len(result.Failed)+len(result.Succeeded))
				}
				return nil
			})
		},
	}

	cmd.AddCommand(finalize, finalizeAll)
	return cmd
}

func printBatch(cmd *cobra.Command, result payroll.BatchResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "finalized %d runs for period %s\n", len(result.Succeeded), result.PeriodID)

	failed := make([]string, 0, len(result.Failed))
	for id := range result.Failed {
		failed = append(failed, id)
	}
	sort.Strings(failed)
	for _, id := range failed {
		fmt.Fprintf(out, "  failed %s: %s\n", id, result.Failed[id])
	}
}

// ========== REGISTER ==========

func newRegisterCmd(e env, opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Export payroll registers",
	}

	var out string
	exportCmd := &cobra.Command{
		Use:   "export <period-id>",
		Short: "Write the period's register as an XLSX workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireOrg(opts); err != nil {
				return err
			}
			return withApp(cmd, e, func(ctx context.Context, a *app.App) error {
				body, err := a.Payroll.ExportRegister(ctx, opts.organizationID, args[0])
				if err != nil {
					return err
				}

				path := out
				if path == "" {
					path = fmt.Sprintf("payroll-register-%s.xlsx", args[0])
				}
				if err := os.WriteFile(path, body, 0o644); err != nil {
					return fmt.Errorf("failed to write register: %w", err)
				}

				runs, err := a.Payroll.ListRuns(ctx, opts.organizationID, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s)\n", path, export.Summarize(runs))
				return nil
			})
		},
	}
	exportCmd.Flags().StringVarP(&out, "out", "o", "", "output file path")

	cmd.AddCommand(exportCmd)
	return cmd
}
