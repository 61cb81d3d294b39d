package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cmlabs-hris/hris-payroll-go/internal/app"
	"github.com/cmlabs-hris/hris-payroll-go/internal/config"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	jwxjwt "github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNoDatabase = errors.New("no database in tests")

func testEnv() env {
	return env{
		loadConfig: func() (*config.Config, error) {
			return &config.Config{JWT: config.JWTConfig{Secret: "cli-secret", AccessExpiration: "1h"}}, nil
		},
		connect: func(ctx context.Context, cfg *config.Config) (*app.App, func(), error) {
			return nil, nil, errNoDatabase
		},
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(testEnv())
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTokenIssue(t *testing.T) {
	out, err := execute(t, "token", "issue", "--org", "org-1", "--user", "user-1", "--role", "payroll_admin")
	require.NoError(t, err)

	token := strings.TrimSpace(out)
	require.Len(t, strings.Split(token, "."), 3)

	parsed, err := jwt.NewJWTService("cli-secret", "1h").JWTAuth().Decode(token)
	require.NoError(t, err)
	claims, err := jwt.ClaimsFromMap(mustPrivateClaims(t, parsed))
	require.NoError(t, err)
	assert.Equal(t, auth.Claims{UserID: "user-1", OrganizationID: "org-1", Role: auth.RolePayrollAdmin}, claims)
}

func TestTokenIssue_RejectsUnknownRole(t *testing.T) {
	_, err := execute(t, "token", "issue", "--org", "org-1", "--role", "superuser")
	assert.ErrorIs(t, err, auth.ErrInvalidRole)
}

func TestCommandsRequireOrganization(t *testing.T) {
	for _, args := range [][]string{
		{"period", "list"},
		{"period", "lock", "period-1"},
		{"run", "finalize-all", "period-1"},
		{"register", "export", "period-1"},
		{"token", "issue"},
	} {
		_, err := execute(t, args...)
		assert.EqualError(t, err, "--org is required", strings.Join(args, " "))
	}
}

func TestCommandsSurfaceConnectionErrors(t *testing.T) {
	_, err := execute(t, "--org", "org-1", "period", "create", "--month", "6", "--year", "2026")
	assert.ErrorIs(t, err, errNoDatabase)

	_, err = execute(t, "migrate")
	assert.ErrorIs(t, err, errNoDatabase)
}

func TestPeriodCreate_RequiresFlags(t *testing.T) {
	_, err := execute(t, "--org", "org-1", "period", "create", "--month", "6")
	assert.Error(t, err)
}

func mustPrivateClaims(t *testing.T, token jwxjwt.Token) map[string]interface{} {
	t.Helper()
	claims, err := token.AsMap(context.Background())
	require.NoError(t, err)
	return claims
}
