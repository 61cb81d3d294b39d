package compliance

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/compensation"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func earning(code, prorated string) compensation.EvaluatedComponent {
	return compensation.EvaluatedComponent{
		Code:           code,
		Type:           compensation.ComponentTypeEarning,
		ProratedAmount: decimal.RequireFromString(prorated),
	}
}

func assertAmount(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "%s: want %s, got %s", field, want, got)
}

func TestApplyCompliance_BelowESICLimit(t *testing.T) {
	svc := NewComplianceService()

	result, err := svc.ApplyCompliance(context.Background(), "emp-1", 6, 2026, []compensation.EvaluatedComponent{
		earning("BASIC", "10000"),
		earning("DA", "2000"),
		earning("HRA", "5000"),
		{Code: "LOAN", Type: compensation.ComponentTypeDeduction, ProratedAmount: decimal.NewFromInt(500)},
	}, "gj")
	require.NoError(t, err)

	assertAmount(t, "17000", result.GrossEarnings, "gross")
	assertAmount(t, "12000", result.PFWageBase, "pf base")
	assertAmount(t, "1440", result.PFEmployee, "pf ee")
	assertAmount(t, "1440", result.PFEmployer, "pf er")
	assertAmount(t, "127.5", result.ESICEmployee, "esic ee")
	assertAmount(t, "552.5", result.ESICEmployer, "esic er")
	assertAmount(t, "200", result.PTAmount, "pt")
	assertAmount(t, "0", result.TDSAmount, "tds")
	assert.Equal(t, "GJ", result.State)
	assertAmount(t, "1767.5", result.EmployeeDeductions(), "employee deductions")
	assertAmount(t, "1992.5", result.EmployerContributions(), "employer contributions")
}

func TestApplyCompliance_AboveCeilings(t *testing.T) {
	svc := NewComplianceService()

	result, err := svc.ApplyCompliance(context.Background(), "emp-1", 6, 2026, []compensation.EvaluatedComponent{
		earning("BASIC", "20000"),
		earning("HRA", "10000"),
	}, "MH")
	require.NoError(t, err)

	assertAmount(t, "15000", result.PFWageBase, "pf base")
	assertAmount(t, "1800", result.PFEmployee, "pf ee")
	assertAmount(t, "0", result.ESICEmployee, "esic ee")
	assertAmount(t, "0", result.ESICEmployer, "esic er")
	assertAmount(t, "200", result.PTAmount, "pt")
}

func TestApplyCompliance_ESICBoundary(t *testing.T) {
	result := Compute([]compensation.EvaluatedComponent{earning("BASIC", "21000")}, "")
	assertAmount(t, "157.5", result.ESICEmployee, "esic ee at limit")

	result = Compute([]compensation.EvaluatedComponent{earning("BASIC", "21000.01")}, "")
	assertAmount(t, "0", result.ESICEmployee, "esic ee above limit")
}

func TestApplyCompliance_RoundsHalfUp(t *testing.T) {
	result := Compute([]compensation.EvaluatedComponent{earning("BASIC", "1234.56")}, "")

	// 1234.56 * 0.12 = 148.1472, 1234.56 * 0.0075 = 9.2592
	assertAmount(t, "148.15", result.PFEmployee, "pf ee")
	assertAmount(t, "9.26", result.ESICEmployee, "esic ee")
	assertAmount(t, "40.12", result.ESICEmployer, "esic er")
}

func TestApplyCompliance_Validation(t *testing.T) {
	svc := NewComplianceService()

	_, err := svc.ApplyCompliance(context.Background(), "", 0, 2026, nil, "GJ")
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 2)
}

func TestCalculatePT(t *testing.T) {
	svc := NewComplianceService()

	cases := []struct {
		gross string
		state string
		want  string
	}{
		{"5999", "GJ", "0"},
		{"5999.99", "GJ", "0"},
		{"6000", "GJ", "80"},
		{"8999", "GJ", "80"},
		{"9000", "GJ", "150"},
		{"11999", "GJ", "150"},
		{"12000", "GJ", "200"},
		{"250000", "GJ", "200"},
		{"7500", "MH", "0"},
		{"7501", "MH", "175"},
		{"10001", "MH", "200"},
		{"24999", "KA", "0"},
		{"25000", "KA", "200"},
		{"50000", " ka ", "200"},
		{"50000", "ZZ", "0"},
		{"50000", "", "0"},
	}
	for _, c := range cases {
		got := svc.CalculatePT(decimal.RequireFromString(c.gross), c.state)
		assertAmount(t, c.want, got, "PT("+c.gross+", "+c.state+")")
	}
}
