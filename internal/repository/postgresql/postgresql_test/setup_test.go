package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-go/migrations"
	"github.com/stretchr/testify/require"
)

// TestDatabaseSetup holds the shared integration database.
type TestDatabaseSetup struct {
	DB *database.DB
}

var (
	setupOnce sync.Once
	shared    *TestDatabaseSetup
	setupErr  error
)

// NewTestDatabase connects to TEST_DATABASE_URL and applies the schema once
// per test binary. Tests are skipped when the variable is unset.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	setupOnce.Do(func() {
		db, err := database.NewPostgreSQLDB(dsn)
		if err != nil {
			setupErr = fmt.Errorf("failed to connect to test database: %w", err)
			return
		}
		if err := migrations.Up(context.Background(), db); err != nil {
			setupErr = err
			return
		}
		shared = &TestDatabaseSetup{DB: db}
	})
	require.NoError(t, setupErr)

	require.NoError(t, shared.TruncateAllTables(context.Background()))
	return shared
}

// TruncateAllTables removes all rows from the schema's tables.
func (s *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := s.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"ai_decisions",
		"ai_runs",
		"ai_policies",
		"payroll_runs",
		"payroll_periods",
		"employee_compensations",
		"pay_component_definitions",
		"monthly_overrides",
		"attendance_records",
		"holidays",
		"shift_assignments",
		"shifts",
		"employees",
	}

	for _, table := range tables {
		if _, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

// createEmployee inserts an active employee and returns its id.
func (s *TestDatabaseSetup) createEmployee(t *testing.T, orgID, code, state string) string {
	t.Helper()

	var id string
	err := s.DB.QueryRow(context.Background(), `
		INSERT INTO employees (organization_id, employee_code, full_name, work_state)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, orgID, code, "Employee "+code, state).Scan(&id)
	require.NoError(t, err)
	return id
}
