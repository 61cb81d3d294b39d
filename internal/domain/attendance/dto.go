package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========================================
// PUNCH DTOs
// ========================================

type PunchInRequest struct {
	OrganizationID string     `json:"-"`
	EmployeeID     string     `json:"employee_id"`
	At             *time.Time `json:"at,omitempty"` // defaults to now
	Latitude       *float64   `json:"latitude,omitempty"`
	Longitude      *float64   `json:"longitude,omitempty"`
}

func (r *PunchInRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	errs = append(errs, validateCoordinates(r.Latitude, r.Longitude)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type PunchOutRequest struct {
	OrganizationID string     `json:"-"`
	RecordID       string     `json:"-"`
	At             *time.Time `json:"at,omitempty"` // defaults to now
}

func (r *PunchOutRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.RecordID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "attendance id is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// RegularizeRequest corrects an existing record (RecordID set) or creates a
// manual one for EmployeeID on Date.
type RegularizeRequest struct {
	OrganizationID string     `json:"-"`
	RecordID       *string    `json:"-"`
	EmployeeID     string     `json:"employee_id"`
	Date           *string    `json:"date,omitempty"` // YYYY-MM-DD, required without RecordID
	PunchIn        *time.Time `json:"punch_in,omitempty"`
	PunchOut       *time.Time `json:"punch_out,omitempty"`
	Absent         *bool      `json:"absent,omitempty"`
	OnLeave        *bool      `json:"on_leave,omitempty"`
	Source         Source     `json:"source"`
	Remarks        *string    `json:"remarks,omitempty"`
}

func (r *RegularizeRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.RecordID == nil {
		if validator.IsEmpty(r.EmployeeID) {
			errs = append(errs, validator.ValidationError{
				Field:   "employee_id",
				Message: "employee_id is required when no attendance id is given",
			})
		}
		if r.Date == nil {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date is required when no attendance id is given",
			})
		} else if _, ok := validator.IsValidDate(*r.Date); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			})
		}
	}

	if !r.Source.IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "source",
			Message: "source must be one of default, ai, manual, compliance",
		})
	}

	if r.PunchIn != nil && r.PunchOut != nil && !r.PunchOut.After(*r.PunchIn) {
		errs = append(errs, validator.ValidationError{
			Field:   "punch_out",
			Message: "punch_out must be after punch_in",
		})
	}

	if r.Absent != nil && r.OnLeave != nil && *r.Absent && *r.OnLeave {
		errs = append(errs, validator.ValidationError{
			Field:   "on_leave",
			Message: "a record cannot be both absent and on leave",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========================================
// OVERRIDE DTOs
// ========================================

type UpsertOverrideRequest struct {
	OrganizationID string           `json:"-"`
	EmployeeID     string           `json:"employee_id"`
	Month          int              `json:"month"`
	Year           int              `json:"year"`
	PresentDays    decimal.Decimal  `json:"present_days"`
	HalfDays       decimal.Decimal  `json:"half_days"`
	AbsentDays     *decimal.Decimal `json:"absent_days,omitempty"`
	LeaveDays      decimal.Decimal  `json:"leave_days"`
	LateCount      int              `json:"late_count"`
	Source         OverrideSource   `json:"source"`
	ApprovedBy     *string          `json:"-"`
	DecisionID     *string          `json:"-"`
	Reason         *string          `json:"reason,omitempty"`
}

func (r *UpsertOverrideRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	errs = append(errs, validator.ValidateMonthYear(r.Month, r.Year)...)

	if !r.Source.IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "source",
			Message: "source must be one of manual, ai_suggested, ai_approved",
		})
	}

	for field, v := range map[string]decimal.Decimal{
		"present_days": r.PresentDays,
		"half_days":    r.HalfDays,
		"leave_days":   r.LeaveDays,
	} {
		if v.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: field, Message: "must be non-negative"})
		}
	}
	if r.AbsentDays != nil && r.AbsentDays.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "absent_days", Message: "must be non-negative"})
	}
	if r.LateCount < 0 {
		errs = append(errs, validator.ValidationError{Field: "late_count", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func validateCoordinates(lat, lng *float64) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if (lat == nil) != (lng == nil) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude and longitude must be provided together",
		})
		return errs
	}
	if lat != nil && (*lat < -90 || *lat > 90) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}
	if lng != nil && (*lng < -180 || *lng > 180) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	return errs
}
