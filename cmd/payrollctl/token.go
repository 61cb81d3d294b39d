package main

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/spf13/cobra"
)

func newTokenCmd(e env, opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage API access tokens",
	}

	var role string
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Mint an access token for --user in --org, signed with JWT_SECRET_KEY",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireOrg(opts); err != nil {
				return err
			}
			cfg, err := e.loadConfig()
			if err != nil {
				return err
			}

			token, expiresAt, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration).
				GenerateAccessToken(opts.userID, opts.organizationID, auth.Role(role))
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", time.Unix(expiresAt, 0).UTC().Format(time.RFC3339))
			return nil
		},
	}
	issue.Flags().StringVar(&role, "role", string(auth.RoleEmployee), "one of admin, payroll_admin, reviewer, employee")

	cmd.AddCommand(issue)
	return cmd
}
