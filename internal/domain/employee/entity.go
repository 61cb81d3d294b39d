package employee

import "time"

// Employee is the read-only view of an employee needed by the payroll pipeline.
// Employees are administered elsewhere.
type Employee struct {
	ID               string
	OrganizationID   string
	EmployeeCode     string
	FullName         string
	WorkState        string // statutory jurisdiction, e.g. "GJ"
	EmploymentStatus EmploymentStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type EmploymentStatus string

const (
	EmploymentStatusActive   EmploymentStatus = "active"
	EmploymentStatusInactive EmploymentStatus = "inactive"
)

func (e Employee) IsActive() bool {
	return e.EmploymentStatus == EmploymentStatusActive
}
