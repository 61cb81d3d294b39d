package employee

import "context"

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	GetActiveByOrganizationID(ctx context.Context, organizationID string) ([]Employee, error)
}
