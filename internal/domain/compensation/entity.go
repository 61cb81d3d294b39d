package compensation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/shopspring/decimal"
)

// ComponentType enum
type ComponentType string

const (
	ComponentTypeEarning            ComponentType = "earning"
	ComponentTypeDeduction          ComponentType = "deduction"
	ComponentTypeStatutoryDeduction ComponentType = "statutory_deduction"
	ComponentTypeEmployerCost       ComponentType = "employer_cost"
)

var ComponentTypeValues = []string{
	string(ComponentTypeEarning),
	string(ComponentTypeDeduction),
	string(ComponentTypeStatutoryDeduction),
	string(ComponentTypeEmployerCost),
}

func (t ComponentType) IsValid() bool {
	switch t {
	case ComponentTypeEarning, ComponentTypeDeduction, ComponentTypeStatutoryDeduction, ComponentTypeEmployerCost:
		return true
	}
	return false
}

// IsDeduction reports types that reduce net pay.
func (t ComponentType) IsDeduction() bool {
	return t == ComponentTypeDeduction || t == ComponentTypeStatutoryDeduction
}

// PayComponent is one declared line of a compensation plan. AnnualAmount is
// signed: negative amounts are deductions when no type is given.
type PayComponent struct {
	Code         string          `json:"code"`
	Name         *string         `json:"name,omitempty"`
	AnnualAmount decimal.Decimal `json:"annual_amount"`
	Type         *ComponentType  `json:"type,omitempty"`
}

// ComponentDefinition classifies component codes that do not carry a type.
type ComponentDefinition struct {
	Code string
	Name string
	Type ComponentType
}

// EmployeeCompensation is an effective-dated compensation plan.
type EmployeeCompensation struct {
	ID             string          `json:"id"`
	OrganizationID string          `json:"organization_id"`
	EmployeeID     string          `json:"employee_id"`
	EffectiveFrom  time.Time       `json:"effective_from"`
	EffectiveTo    *time.Time      `json:"effective_to,omitempty"`
	AnnualCTC      decimal.Decimal `json:"annual_ctc"`
	Components     json.RawMessage `json:"components"` // stored as declared
	CreatedAt      time.Time       `json:"created_at"`
}

// Covers reports whether date falls inside the effective range (both ends inclusive).
func (c EmployeeCompensation) Covers(date time.Time) bool {
	if date.Before(c.EffectiveFrom) {
		return false
	}
	return c.EffectiveTo == nil || !date.After(*c.EffectiveTo)
}

// PayComponents decodes the declared component list. An absent payload or one
// that is not a JSON list yields ErrMalformedComponentPayload.
func (c EmployeeCompensation) PayComponents() ([]PayComponent, error) {
	raw := bytes.TrimSpace(c.Components)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, ErrMalformedComponentPayload
	}
	if raw[0] != '[' {
		return nil, ErrMalformedComponentPayload
	}

	var components []PayComponent
	if err := json.Unmarshal(raw, &components); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedComponentPayload, err)
	}
	return components, nil
}

// EvaluatedComponent is a declared component after classification and proration.
type EvaluatedComponent struct {
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Type           ComponentType   `json:"type"`
	AnnualAmount   decimal.Decimal `json:"annual_amount"`
	MonthlyAmount  decimal.Decimal `json:"monthly_amount"`
	ProratedAmount decimal.Decimal `json:"prorated_amount"`
}

// Evaluation is the outcome of evaluating one employee-month.
type Evaluation struct {
	CompensationID    string               `json:"compensation_id"`
	Components        []EvaluatedComponent `json:"components"`
	GrossEarnings     decimal.Decimal      `json:"gross_earnings"`
	DeclaresStatutory bool                 `json:"declares_statutory"`
	Basis             attendance.Basis     `json:"basis"`
}

// ProratedByCode sums prorated amounts of the given codes.
func (e Evaluation) ProratedByCode(codes ...string) decimal.Decimal {
	total := decimal.Zero
	for _, c := range e.Components {
		for _, code := range codes {
			if NormalizeCode(c.Code) == code {
				total = total.Add(c.ProratedAmount)
			}
		}
	}
	return total
}
