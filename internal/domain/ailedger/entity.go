package ailedger

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PolicyStatus enum
type PolicyStatus string

const (
	PolicyStatusDraft    PolicyStatus = "draft"
	PolicyStatusApproved PolicyStatus = "approved"
	PolicyStatusActive   PolicyStatus = "active"
	PolicyStatusRetired  PolicyStatus = "retired"
)

// CanTransitionTo allows draft -> approved -> active -> retired, and retiring
// an approved policy that was never activated.
func (s PolicyStatus) CanTransitionTo(next PolicyStatus) bool {
	switch s {
	case PolicyStatusDraft:
		return next == PolicyStatusApproved
	case PolicyStatusApproved:
		return next == PolicyStatusActive || next == PolicyStatusRetired
	case PolicyStatusActive:
		return next == PolicyStatusRetired
	default:
		return false
	}
}

// Policy is a versioned instruction set for attendance hydration. An
// organization has at most one active policy.
type Policy struct {
	ID                  string       `json:"id"`
	OrganizationID      string       `json:"organization_id"`
	Version             int          `json:"version"`
	Name                string       `json:"name"`
	Instructions        string       `json:"instructions"`
	ConfidenceThreshold *float64     `json:"confidence_threshold,omitempty"`
	Status              PolicyStatus `json:"status"`
	CreatedBy           *string      `json:"created_by,omitempty"`
	ApprovedBy          *string      `json:"approved_by,omitempty"`
	ApprovedAt          *time.Time   `json:"approved_at,omitempty"`
	ActivatedAt         *time.Time   `json:"activated_at,omitempty"`
	RetiredAt           *time.Time   `json:"retired_at,omitempty"`
	CreatedAt           time.Time    `json:"created_at"`
}

// Threshold returns the policy's review threshold or fallback when unset.
func (p Policy) Threshold(fallback float64) float64 {
	if p.ConfidenceThreshold != nil {
		return *p.ConfidenceThreshold
	}
	return fallback
}

// RunKind enum
type RunKind string

const (
	RunKindWeeklyHydration RunKind = "weekly_hydration"
	RunKindShiftCompile    RunKind = "shift_compile"
	RunKindPayrollPreview  RunKind = "payroll_preview"
)

var RunKindValues = []string{
	string(RunKindWeeklyHydration),
	string(RunKindShiftCompile),
	string(RunKindPayrollPreview),
}

// RunStatus enum
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one execution of a policy over a date window.
type Run struct {
	ID             string          `json:"id"`
	OrganizationID string          `json:"organization_id"`
	PolicyID       string          `json:"policy_id"`
	PolicyVersion  int             `json:"policy_version"`
	Kind           RunKind         `json:"kind"`
	WindowStart    time.Time       `json:"window_start"`
	WindowEnd      time.Time       `json:"window_end"`
	InputSnapshot  json.RawMessage `json:"input_snapshot"`
	InputHash      string          `json:"input_hash"`
	OutputSummary  json.RawMessage `json:"output_summary,omitempty"`
	Status         RunStatus       `json:"status"`
	FailureReason  *string         `json:"failure_reason,omitempty"`
	StartedAt      time.Time       `json:"started_at"`
	FinishedAt     *time.Time      `json:"finished_at,omitempty"`
}

// DecisionType enum
type DecisionType string

const (
	DecisionTypeMonthlySummary  DecisionType = "monthly_summary"
	DecisionTypePunchCorrection DecisionType = "punch_correction"
	DecisionTypeAbsence         DecisionType = "absence"
	DecisionTypeShiftAssignment DecisionType = "shift_assignment"
)

var DecisionTypeValues = []string{
	string(DecisionTypeMonthlySummary),
	string(DecisionTypePunchCorrection),
	string(DecisionTypeAbsence),
	string(DecisionTypeShiftAssignment),
}

// Decision is an advisory AI suggestion. It never changes attendance on its
// own; only a reviewed and approved monthly summary can back an override.
type Decision struct {
	ID                  string          `json:"id"`
	RunID               string          `json:"run_id"`
	OrganizationID      string          `json:"organization_id"`
	EmployeeID          string          `json:"employee_id"`
	AttendanceRecordID  *string         `json:"attendance_record_id,omitempty"`
	DecisionType        DecisionType    `json:"decision_type"`
	Payload             json.RawMessage `json:"payload"`
	Confidence          float64         `json:"confidence"`
	Flagged             bool            `json:"flagged"`
	HumanReviewRequired bool            `json:"human_review_required"`
	ReviewedBy          *string         `json:"reviewed_by,omitempty"`
	ReviewedAt          *time.Time      `json:"reviewed_at,omitempty"`
	Approved            bool            `json:"approved"`
	ReviewNote          *string         `json:"review_note,omitempty"`
	PromotedAt          *time.Time      `json:"promoted_at,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
}

func (d Decision) IsReviewed() bool {
	return d.ReviewedAt != nil
}

// MonthlySummaryPayload is the payload of a monthly_summary decision.
type MonthlySummaryPayload struct {
	Month       int              `json:"month"`
	Year        int              `json:"year"`
	PresentDays decimal.Decimal  `json:"present_days"`
	HalfDays    decimal.Decimal  `json:"half_days"`
	LeaveDays   decimal.Decimal  `json:"leave_days"`
	AbsentDays  *decimal.Decimal `json:"absent_days,omitempty"`
	LateCount   int              `json:"late_count"`
	Reason      *string          `json:"reason,omitempty"`
}

// MonthlySummary decodes the payload of a monthly_summary decision.
func (d Decision) MonthlySummary() (MonthlySummaryPayload, error) {
	if d.DecisionType != DecisionTypeMonthlySummary {
		return MonthlySummaryPayload{}, ErrDecisionNotPromotable
	}
	var p MonthlySummaryPayload
	if err := json.Unmarshal(d.Payload, &p); err != nil {
		return MonthlySummaryPayload{}, fmt.Errorf("%w: %v", ErrInvalidDecisionPayload, err)
	}
	return p, nil
}
