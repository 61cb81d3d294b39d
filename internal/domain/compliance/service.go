package compliance

import (
	"context"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/compensation"
	"github.com/shopspring/decimal"
)

type ComplianceService interface {
	// ApplyCompliance computes statutory deductions and contributions from
	// evaluated components. Callers gate it on the plan declaring statutory codes.
	ApplyCompliance(ctx context.Context, employeeID string, month, year int, components []compensation.EvaluatedComponent, state string) (Result, error)

	CalculatePT(gross decimal.Decimal, state string) decimal.Decimal
}
