package compliance

import (
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/compensation"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
)

type ApplyComplianceRequest struct {
	EmployeeID string                            `json:"employee_id"`
	Month      int                               `json:"month"`
	Year       int                               `json:"year"`
	State      string                            `json:"state"`
	Components []compensation.EvaluatedComponent `json:"components"`
}

func (r *ApplyComplianceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	errs = append(errs, validator.ValidateMonthYear(r.Month, r.Year)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}
