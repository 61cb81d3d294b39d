package employee

import "context"

// EmployeeService exposes the read-only employee view to the HTTP and CLI
// surfaces, scoped to the caller's organization.
type EmployeeService interface {
	// GetInOrganization returns ErrEmployeeNotFound for employees of other organizations
	GetInOrganization(ctx context.Context, organizationID, employeeID string) (Employee, error)
	ListActive(ctx context.Context, organizationID string) ([]Employee, error)
}
