package payroll

import (
	"context"
	"time"
)

// PayrollRepository defines data access methods for periods and runs.
type PayrollRepository interface {
	// Periods
	CreatePeriod(ctx context.Context, period Period) (Period, error)
	GetPeriodByID(ctx context.Context, id string, organizationID string) (Period, error)
	// GetPeriodForShare reads a period and, inside a transaction, holds a share
	// lock on it so its status cannot change until the transaction ends
	GetPeriodForShare(ctx context.Context, id string) (Period, error)
	ListPeriods(ctx context.Context, organizationID string) ([]Period, error)
	// TransitionPeriod moves a period from -> to. It returns ErrInvalidPeriodState
	// when the period is no longer in from.
	TransitionPeriod(ctx context.Context, id string, organizationID string, from, to PeriodStatus, by string, at time.Time) (Period, error)

	// Runs
	CreateRun(ctx context.Context, run Run) (Run, error)
	DeleteRun(ctx context.Context, periodID string, employeeID string) error
	GetRun(ctx context.Context, periodID string, employeeID string) (Run, error)
	ListRuns(ctx context.Context, periodID string) ([]Run, error)
}
