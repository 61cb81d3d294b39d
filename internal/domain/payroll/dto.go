package payroll

import (
	"strings"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
)

type CreatePeriodRequest struct {
	OrganizationID string `json:"-"`
	Month          int    `json:"month"`
	Year           int    `json:"year"`
}

func (r *CreatePeriodRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.OrganizationID) {
		errs = append(errs, validator.ValidationError{Field: "organization_id", Message: "organization is required"})
	}
	errs = append(errs, validator.ValidateMonthYear(r.Month, r.Year)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type FinalizeRunRequest struct {
	State string `json:"state,omitempty"` // defaults to the employee's work state
}

func (r *FinalizeRunRequest) Validate() error {
	r.State = strings.ToUpper(strings.TrimSpace(r.State))
	if len(r.State) > 3 {
		return validator.ValidationErrors{{Field: "state", Message: "state must be a 2-3 letter jurisdiction code"}}
	}
	return nil
}
