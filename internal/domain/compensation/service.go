package compensation

import "context"

type CompensationService interface {
	// GetActiveCompensation returns the plan effective on the 15th of the month
	GetActiveCompensation(ctx context.Context, employeeID string, month, year int) (EmployeeCompensation, error)

	// EvalComponents prorates the declared non-statutory components by the
	// employee's attendance basis for the month
	EvalComponents(ctx context.Context, employeeID string, month, year int) (Evaluation, error)

	CreateCompensation(ctx context.Context, req CreateCompensationRequest) (EmployeeCompensation, error)
	ListCompensations(ctx context.Context, organizationID, employeeID string) ([]EmployeeCompensation, error)
}
