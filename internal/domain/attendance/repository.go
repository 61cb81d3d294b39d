package attendance

import (
	"context"
	"time"
)

// RecordRepository defines data access methods for attendance records.
type RecordRepository interface {
	// Create creates a new attendance record
	Create(ctx context.Context, record Record) (Record, error)

	// GetByID retrieves a record by ID with organization isolation
	GetByID(ctx context.Context, id string, organizationID string) (Record, error)

	// GetByEmployeeAndDate returns nil when the employee has no record for date
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Record, error)

	// Update overwrites punches, derived facts and source of an existing record
	Update(ctx context.Context, record Record) error

	// ListByEmployeeAndRange returns records with from <= date <= to ordered by date
	ListByEmployeeAndRange(ctx context.Context, employeeID string, from, to time.Time) ([]Record, error)

	// DeleteStaleOpenSessions removes open sessions punched in before the cutoff
	DeleteStaleOpenSessions(ctx context.Context, before time.Time) (int64, error)
}

// OverrideRepository stores MonthlyOverride rows, unique per (employee, month, year).
type OverrideRepository interface {
	// Get returns nil when no override exists for the employee-month
	Get(ctx context.Context, employeeID string, month, year int) (*MonthlyOverride, error)
	Upsert(ctx context.Context, override MonthlyOverride) (MonthlyOverride, error)
	Delete(ctx context.Context, employeeID string, month, year int) error
}
