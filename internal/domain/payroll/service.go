package payroll

import "context"

type PayrollService interface {
	CreatePeriod(ctx context.Context, req CreatePeriodRequest) (Period, error)
	GetPeriod(ctx context.Context, organizationID, id string) (Period, error)
	ListPeriods(ctx context.Context, organizationID string) ([]Period, error)
	LockPeriod(ctx context.Context, organizationID, id, userID string) (Period, error)
	FinalizePeriod(ctx context.Context, organizationID, id, userID string) (Period, error)

	// FinalizeRun computes and replaces the run of one employee in a locked
	// period. An empty state falls back to the employee's work state.
	FinalizeRun(ctx context.Context, periodID, employeeID, state string) (Run, error)

	// FinalizeAll finalizes every active employee of the period's organization
	FinalizeAll(ctx context.Context, organizationID, periodID string) (BatchResult, error)

	GetRun(ctx context.Context, organizationID, periodID, employeeID string) (Run, error)
	ListRuns(ctx context.Context, organizationID, periodID string) ([]Run, error)

	// ExportRegister renders the period's runs as an XLSX workbook
	ExportRegister(ctx context.Context, organizationID, periodID string) ([]byte, error)
}
