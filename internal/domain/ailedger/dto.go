package ailedger

import (
	"encoding/json"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
)

type CreatePolicyRequest struct {
	OrganizationID      string   `json:"-"`
	CreatedBy           string   `json:"-"`
	Name                string   `json:"name"`
	Instructions        string   `json:"instructions"`
	ConfidenceThreshold *float64 `json:"confidence_threshold,omitempty"`
}

func (r *CreatePolicyRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name is required"})
	}
	if validator.IsEmpty(r.Instructions) {
		errs = append(errs, validator.ValidationError{Field: "instructions", Message: "instructions are required"})
	}
	if r.ConfidenceThreshold != nil && (*r.ConfidenceThreshold < 0 || *r.ConfidenceThreshold > 1) {
		errs = append(errs, validator.ValidationError{Field: "confidence_threshold", Message: "must be between 0 and 1"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type StartRunRequest struct {
	OrganizationID string          `json:"-"`
	Kind           RunKind         `json:"kind"`
	WindowStart    string          `json:"window_start"` // YYYY-MM-DD
	WindowEnd      string          `json:"window_end"`   // YYYY-MM-DD
	InputSnapshot  json.RawMessage `json:"input_snapshot"`
}

func (r *StartRunRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsInSlice(string(r.Kind), RunKindValues) {
		errs = append(errs, validator.ValidationError{Field: "kind", Message: "kind must be one of weekly_hydration, shift_compile, payroll_preview"})
	}
	start, startOK := validator.IsValidDate(r.WindowStart)
	if !startOK {
		errs = append(errs, validator.ValidationError{Field: "window_start", Message: "window_start must be in YYYY-MM-DD format"})
	}
	end, endOK := validator.IsValidDate(r.WindowEnd)
	if !endOK {
		errs = append(errs, validator.ValidationError{Field: "window_end", Message: "window_end must be in YYYY-MM-DD format"})
	}
	if startOK && endOK && end.Before(start) {
		errs = append(errs, validator.ValidationError{Field: "window_end", Message: "window_end must not be before window_start"})
	}
	if len(r.InputSnapshot) == 0 || !json.Valid(r.InputSnapshot) {
		errs = append(errs, validator.ValidationError{Field: "input_snapshot", Message: "input_snapshot must be valid JSON"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type DecisionInput struct {
	EmployeeID         string          `json:"employee_id"`
	AttendanceRecordID *string         `json:"attendance_record_id,omitempty"`
	DecisionType       DecisionType    `json:"decision_type"`
	Payload            json.RawMessage `json:"payload"`
	Confidence         float64         `json:"confidence"`
	Flagged            bool            `json:"flagged"`
}

type RecordDecisionsRequest struct {
	OrganizationID string          `json:"-"`
	RunID          string          `json:"-"`
	Decisions      []DecisionInput `json:"decisions"`
}

func (r *RecordDecisionsRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.Decisions) == 0 {
		errs = append(errs, validator.ValidationError{Field: "decisions", Message: "at least one decision is required"})
	}
	for i, d := range r.Decisions {
		field := fmt.Sprintf("decisions[%d]", i)
		if validator.IsEmpty(d.EmployeeID) {
			errs = append(errs, validator.ValidationError{Field: field + ".employee_id", Message: "employee_id is required"})
		}
		if !validator.IsInSlice(string(d.DecisionType), DecisionTypeValues) {
			errs = append(errs, validator.ValidationError{Field: field + ".decision_type", Message: "unknown decision type"})
		}
		if d.Confidence < 0 || d.Confidence > 1 {
			errs = append(errs, validator.ValidationError{Field: field + ".confidence", Message: "must be between 0 and 1"})
		}
		if len(d.Payload) == 0 || !json.Valid(d.Payload) {
			errs = append(errs, validator.ValidationError{Field: field + ".payload", Message: "payload must be valid JSON"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CompleteRunRequest struct {
	OrganizationID string          `json:"-"`
	RunID          string          `json:"-"`
	OutputSummary  json.RawMessage `json:"output_summary"`
}

func (r *CompleteRunRequest) Validate() error {
	if len(r.OutputSummary) > 0 && !json.Valid(r.OutputSummary) {
		return validator.ValidationErrors{{Field: "output_summary", Message: "output_summary must be valid JSON"}}
	}
	return nil
}

type FailRunRequest struct {
	OrganizationID string `json:"-"`
	RunID          string `json:"-"`
	Reason         string `json:"reason"`
}

func (r *FailRunRequest) Validate() error {
	if validator.IsEmpty(r.Reason) {
		return validator.ValidationErrors{{Field: "reason", Message: "reason is required"}}
	}
	return nil
}

type ReviewDecisionRequest struct {
	OrganizationID string  `json:"-"`
	DecisionID     string  `json:"-"`
	ReviewerID     string  `json:"-"`
	Approve        *bool   `json:"approve"`
	Note           *string `json:"note,omitempty"`
}

func (r *ReviewDecisionRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Approve == nil {
		errs = append(errs, validator.ValidationError{Field: "approve", Message: "approve is required"})
	}
	if validator.IsEmpty(r.ReviewerID) {
		errs = append(errs, validator.ValidationError{Field: "reviewer", Message: "reviewer is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
