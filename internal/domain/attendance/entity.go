package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

// Source tags who last wrote an attendance fact. Higher priority wins.
type Source string

const (
	SourceDefault    Source = "default"
	SourceAI         Source = "ai"
	SourceManual     Source = "manual"
	SourceCompliance Source = "compliance"
)

var SourceValues = []string{
	string(SourceDefault),
	string(SourceAI),
	string(SourceManual),
	string(SourceCompliance),
}

// Priority orders sources as compliance > manual > ai > default.
// Unknown sources rank below default.
func (s Source) Priority() int {
	switch s {
	case SourceCompliance:
		return 4
	case SourceManual:
		return 3
	case SourceAI:
		return 2
	case SourceDefault:
		return 1
	default:
		return 0
	}
}

func (s Source) IsValid() bool {
	return s.Priority() > 0
}

// Record is the per (employee, calendar date) attendance fact.
type Record struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organization_id"`
	EmployeeID     string     `json:"employee_id"`
	ShiftID        *string    `json:"shift_id,omitempty"`
	Date           time.Time  `json:"date"`
	PunchIn        *time.Time `json:"punch_in,omitempty"`
	PunchOut       *time.Time `json:"punch_out,omitempty"`
	TotalHours     float64    `json:"total_hours"`
	EffectiveHours float64    `json:"effective_hours"`
	IsLate         bool       `json:"is_late"`
	IsEarlyLeave   bool       `json:"is_early_leave"`
	IsHalfDay      bool       `json:"is_half_day"`
	IsAbsent       bool       `json:"is_absent"`
	IsHoliday      bool       `json:"is_holiday"`
	IsWeekend      bool       `json:"is_weekend"`
	OnLeave        bool       `json:"on_leave"`
	Source         Source     `json:"source"`
	Latitude       *float64   `json:"latitude,omitempty"`
	Longitude      *float64   `json:"longitude,omitempty"`
	DistanceMeters *float64   `json:"distance_meters,omitempty"`
	Remarks        *string    `json:"remarks,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// IsOpen reports a punch-in without a matching punch-out.
func (r Record) IsOpen() bool {
	return r.PunchIn != nil && r.PunchOut == nil
}

// OverrideSource tags the origin of a MonthlyOverride.
type OverrideSource string

const (
	OverrideSourceAISuggested OverrideSource = "ai_suggested"
	OverrideSourceAIApproved  OverrideSource = "ai_approved"
	OverrideSourceManual      OverrideSource = "manual"
)

var OverrideSourceValues = []string{
	string(OverrideSourceAISuggested),
	string(OverrideSourceAIApproved),
	string(OverrideSourceManual),
}

// Priority orders override sources as manual > ai_approved > ai_suggested.
func (s OverrideSource) Priority() int {
	switch s {
	case OverrideSourceManual:
		return 3
	case OverrideSourceAIApproved:
		return 2
	case OverrideSourceAISuggested:
		return 1
	default:
		return 0
	}
}

func (s OverrideSource) IsValid() bool {
	return s.Priority() > 0
}

// MonthlyOverride replaces the aggregated attendance of one employee-month
// as a whole. It is never merged field by field with the computed values.
type MonthlyOverride struct {
	ID             string           `json:"id"`
	OrganizationID string           `json:"organization_id"`
	EmployeeID     string           `json:"employee_id"`
	Month          int              `json:"month"`
	Year           int              `json:"year"`
	PresentDays    decimal.Decimal  `json:"present_days"`
	HalfDays       decimal.Decimal  `json:"half_days"`
	AbsentDays     *decimal.Decimal `json:"absent_days,omitempty"`
	LeaveDays      decimal.Decimal  `json:"leave_days"`
	LateCount      int              `json:"late_count"`
	Source         OverrideSource   `json:"source"`
	ApprovedBy     *string          `json:"approved_by,omitempty"`
	DecisionID     *string          `json:"decision_id,omitempty"`
	Reason         *string          `json:"reason,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// Basis is the resolved attendance of one employee-month, used for proration
// and kept as a snapshot on every payroll run.
type Basis struct {
	Month           int             `json:"month"`
	Year            int             `json:"year"`
	WorkingDays     decimal.Decimal `json:"working_days"`
	PresentDays     decimal.Decimal `json:"present_days"`
	HalfDays        decimal.Decimal `json:"half_days"`
	PaidLeaveDays   decimal.Decimal `json:"paid_leave_days"`
	LOPDays         decimal.Decimal `json:"lop_days"`
	PayableDays     decimal.Decimal `json:"payable_days"`
	LateCount       int             `json:"late_count"`
	TotalHours      decimal.Decimal `json:"total_hours"`
	OverrideApplied bool            `json:"override_applied"`
	OverrideSource  *OverrideSource `json:"override_source,omitempty"`
}

// ProrationFactor returns payable/working days, or zero for a month without
// working days.
func (b Basis) ProrationFactor() decimal.Decimal {
	if !b.WorkingDays.IsPositive() {
		return decimal.Zero
	}
	return b.PayableDays.Div(b.WorkingDays)
}
