package shift

import (
	"context"
	"time"
)

// ShiftRepository reads shift configuration owned by the scheduling subsystem.
type ShiftRepository interface {
	GetByID(ctx context.Context, id string) (Shift, error)

	// GetAssignmentForDate returns the assignment covering date, falling back to
	// the assignment with the most recent start on or before date. Nil when the
	// employee has never been assigned.
	GetAssignmentForDate(ctx context.Context, employeeID string, date time.Time) (*Assignment, error)

	// ListHolidays returns holidays with from <= date <= to ordered by date
	ListHolidays(ctx context.Context, organizationID string, from, to time.Time) ([]Holiday, error)
}
