package employee

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
)

type EmployeeServiceImpl struct {
	employeeRepo employee.EmployeeRepository
}

func NewEmployeeService(employeeRepo employee.EmployeeRepository) employee.EmployeeService {
	return &EmployeeServiceImpl{employeeRepo: employeeRepo}
}

// GetInOrganization implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetInOrganization(ctx context.Context, organizationID, employeeID string) (employee.Employee, error) {
	if validator.IsEmpty(employeeID) {
		return employee.Employee{}, validator.ValidationErrors{{Field: "employee_id", Message: "employee_id is required"}}
	}

	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return employee.Employee{}, err
	}
	if emp.OrganizationID != organizationID {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

// ListActive implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ListActive(ctx context.Context, organizationID string) ([]employee.Employee, error) {
	employees, err := s.employeeRepo.GetActiveByOrganizationID(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}
	return employees, nil
}
