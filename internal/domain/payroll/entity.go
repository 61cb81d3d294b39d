package payroll

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/shopspring/decimal"
)

// PeriodStatus enum
type PeriodStatus string

const (
	PeriodStatusDraft     PeriodStatus = "draft"
	PeriodStatusLocked    PeriodStatus = "locked"
	PeriodStatusFinalized PeriodStatus = "finalized"
)

// CanTransitionTo allows draft -> locked -> finalized only.
func (s PeriodStatus) CanTransitionTo(next PeriodStatus) bool {
	switch s {
	case PeriodStatusDraft:
		return next == PeriodStatusLocked
	case PeriodStatusLocked:
		return next == PeriodStatusFinalized
	default:
		return false
	}
}

// Period is one organization's payroll month.
type Period struct {
	ID             string       `json:"id"`
	OrganizationID string       `json:"organization_id"`
	Month          int          `json:"month"`
	Year           int          `json:"year"`
	Status         PeriodStatus `json:"status"`
	LockedAt       *time.Time   `json:"locked_at,omitempty"`
	LockedBy       *string      `json:"locked_by,omitempty"`
	FinalizedAt    *time.Time   `json:"finalized_at,omitempty"`
	FinalizedBy    *string      `json:"finalized_by,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// LineItemKind enum
type LineItemKind string

const (
	LineItemEarning              LineItemKind = "earning"
	LineItemDeduction            LineItemKind = "deduction"
	LineItemStatutoryDeduction   LineItemKind = "statutory_deduction"
	LineItemEmployerContribution LineItemKind = "employer_contribution"
	LineItemEmployerCost         LineItemKind = "employer_cost"
)

// Statutory line item codes
const (
	CodePFEmployee   = "PF_EE"
	CodePFEmployer   = "PF_ER"
	CodeESICEmployee = "ESIC_EE"
	CodeESICEmployer = "ESIC_ER"
	CodePT           = "PT"
	CodeTDS          = "TDS"
)

// LineItem is one entry of a run's snapshot.
type LineItem struct {
	Code          string           `json:"code"`
	Name          string           `json:"name"`
	Kind          LineItemKind     `json:"kind"`
	MonthlyAmount *decimal.Decimal `json:"monthly_amount,omitempty"`
	Amount        decimal.Decimal  `json:"amount"`
}

// Run is the finalized pay computation of one employee in one period.
// Re-finalizing replaces the run as a whole.
type Run struct {
	ID              string           `json:"id"`
	PeriodID        string           `json:"period_id"`
	OrganizationID  string           `json:"organization_id"`
	EmployeeID      string           `json:"employee_id"`
	CompensationID  string           `json:"compensation_id"`
	WorkState       string           `json:"work_state"`
	LineItems       []LineItem       `json:"line_items"`
	GrossEarnings   decimal.Decimal  `json:"gross_earnings"`
	TotalDeductions decimal.Decimal  `json:"total_deductions"`
	NetPay          decimal.Decimal  `json:"net_pay"`
	EmployerCost    decimal.Decimal  `json:"employer_cost"`
	Basis           attendance.Basis `json:"basis"`
	ComputedAt      time.Time        `json:"computed_at"`

	// Joined fields
	EmployeeCode *string `json:"employee_code,omitempty"`
	EmployeeName *string `json:"employee_name,omitempty"`
}

// LineItem returns the snapshot entry with code, if any.
func (r Run) LineItem(code string) (LineItem, bool) {
	for _, li := range r.LineItems {
		if li.Code == code {
			return li, true
		}
	}
	return LineItem{}, false
}

// BatchResult reports a FinalizeAll pass. Failures never abort siblings.
type BatchResult struct {
	PeriodID  string            `json:"period_id"`
	Succeeded []string          `json:"succeeded"`
	Failed    map[string]string `json:"failed"`
}
