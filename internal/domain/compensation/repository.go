package compensation

import (
	"context"
	"time"
)

// CompensationRepository defines data access methods for compensation plans.
type CompensationRepository interface {
	Create(ctx context.Context, compensation EmployeeCompensation) (EmployeeCompensation, error)

	// GetEffectiveOn returns the plan whose range contains date. When several
	// overlap, the most recent EffectiveFrom wins. Nil when none matches.
	GetEffectiveOn(ctx context.Context, employeeID string, date time.Time) (*EmployeeCompensation, error)

	ListByEmployee(ctx context.Context, employeeID string, organizationID string) ([]EmployeeCompensation, error)

	// ListDefinitions returns the component definitions keyed by normalized code
	ListDefinitions(ctx context.Context) (map[string]ComponentDefinition, error)
}
