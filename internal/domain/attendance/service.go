package attendance

import (
	"context"
	"time"
)

// BasisResolver resolves the payable-days basis of one employee-month.
// It must be safe to call whether or not any AI decisions exist.
type BasisResolver interface {
	ResolveBasis(ctx context.Context, employeeID string, month, year int) (Basis, error)
}

// Service defines business logic for attendance capture and resolution
type Service interface {
	BasisResolver

	// PunchIn opens the day record for an employee
	PunchIn(ctx context.Context, req PunchInRequest) (Record, error)

	// PunchOut closes the day record and derives its flags
	PunchOut(ctx context.Context, req PunchOutRequest) (Record, error)

	// Regularize corrects a record, honouring source precedence
	Regularize(ctx context.Context, req RegularizeRequest) (Record, error)

	// CleanupStaleSessions deletes open sessions older than olderThan
	CleanupStaleSessions(ctx context.Context, olderThan time.Duration) (int64, error)

	UpsertOverride(ctx context.Context, req UpsertOverrideRequest) (MonthlyOverride, error)
	GetOverride(ctx context.Context, organizationID, employeeID string, month, year int) (MonthlyOverride, error)
	DeleteOverride(ctx context.Context, organizationID, employeeID string, month, year int) error
}
