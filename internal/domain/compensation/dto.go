package compensation

import (
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateCompensationRequest struct {
	OrganizationID string          `json:"-"`
	EmployeeID     string          `json:"employee_id"`
	EffectiveFrom  string          `json:"effective_from"`         // YYYY-MM-DD
	EffectiveTo    *string         `json:"effective_to,omitempty"` // YYYY-MM-DD
	AnnualCTC      decimal.Decimal `json:"annual_ctc"`
	Components     []PayComponent  `json:"components"`
}

func (r *CreateCompensationRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}

	from, fromOK := validator.IsValidDate(r.EffectiveFrom)
	if !fromOK {
		errs = append(errs, validator.ValidationError{Field: "effective_from", Message: "effective_from must be in YYYY-MM-DD format"})
	}
	if r.EffectiveTo != nil {
		to, ok := validator.IsValidDate(*r.EffectiveTo)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "effective_to", Message: "effective_to must be in YYYY-MM-DD format"})
		} else if fromOK && to.Before(from) {
			errs = append(errs, validator.ValidationError{Field: "effective_to", Message: ErrInvalidEffectiveRange.Error()})
		}
	}

	if r.AnnualCTC.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "annual_ctc", Message: "must be non-negative"})
	}

	if len(r.Components) == 0 {
		errs = append(errs, validator.ValidationError{Field: "components", Message: "at least one component is required"})
	}
	seen := make(map[string]bool, len(r.Components))
	for i, c := range r.Components {
		field := fmt.Sprintf("components[%d]", i)
		code := NormalizeCode(c.Code)
		if code == "" {
			errs = append(errs, validator.ValidationError{Field: field + ".code", Message: "code is required"})
			continue
		}
		if seen[code] {
			errs = append(errs, validator.ValidationError{Field: field + ".code", Message: "duplicate component code"})
		}
		seen[code] = true
		if c.Type != nil && !c.Type.IsValid() {
			errs = append(errs, validator.ValidationError{
				Field:   field + ".type",
				Message: "type must be one of earning, deduction, statutory_deduction, employer_cost",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
