package compliance

import (
	"context"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/compensation"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/compliance"
	"github.com/shopspring/decimal"
)

type ComplianceServiceImpl struct{}

func NewComplianceService() compliance.ComplianceService {
	return &ComplianceServiceImpl{}
}

// ApplyCompliance implements compliance.ComplianceService.
func (s *ComplianceServiceImpl) ApplyCompliance(ctx context.Context, employeeID string, month, year int, components []compensation.EvaluatedComponent, state string) (compliance.Result, error) {
	req := compliance.ApplyComplianceRequest{
		EmployeeID: employeeID,
		Month:      month,
		Year:       year,
		State:      state,
		Components: components,
	}
	if err := req.Validate(); err != nil {
		return compliance.Result{}, err
	}

	result := Compute(components, state)

	if _, known := compliance.ProfessionalTaxSlabs[result.State]; !known && result.State != "" {
		slog.Debug("no professional tax slabs for state", "employee_id", employeeID, "state", result.State)
	}
	return result, nil
}

// Compute derives PF, ESIC, PT and TDS from prorated component amounts.
func Compute(components []compensation.EvaluatedComponent, state string) compliance.Result {
	gross := decimal.Zero
	basicDA := decimal.Zero
	for _, c := range components {
		if c.Type != compensation.ComponentTypeEarning {
			continue
		}
		gross = gross.Add(c.ProratedAmount)
		switch compensation.NormalizeCode(c.Code) {
		case compensation.CodeBasic, compensation.CodeDA:
			basicDA = basicDA.Add(c.ProratedAmount)
		}
	}

	result := compliance.Result{
		GrossEarnings: gross,
		PFWageBase:    decimal.Min(basicDA, compliance.PFWageCeiling),
		ESICEmployee:  decimal.Zero,
		ESICEmployer:  decimal.Zero,
		TDSAmount:     decimal.Zero,
		State:         strings.ToUpper(strings.TrimSpace(state)),
	}
	result.PFEmployee = result.PFWageBase.Mul(compliance.PFEmployeeRate).Round(2)
	result.PFEmployer = result.PFWageBase.Mul(compliance.PFEmployerRate).Round(2)

	if gross.IsPositive() && gross.LessThanOrEqual(compliance.ESICGrossLimit) {
		result.ESICEmployee = gross.Mul(compliance.ESICEmployeeRate).Round(2)
		result.ESICEmployer = gross.Mul(compliance.ESICEmployerRate).Round(2)
	}

	result.PTAmount = compliance.CalculatePT(gross, result.State)
	return result
}

// CalculatePT implements compliance.ComplianceService.
func (s *ComplianceServiceImpl) CalculatePT(gross decimal.Decimal, state string) decimal.Decimal {
	return compliance.CalculatePT(gross, state)
}
