package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/ailedger"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/compensation"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/shift"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingOrganization),
		errors.Is(err, auth.ErrInvalidRole):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrForbidden):
		Forbidden(w, err.Error())

	// Employee and shift domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeInactive):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, shift.ErrShiftNotFound):
		NotFound(w, "Shift not found")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrOverrideNotFound):
		NotFound(w, "Monthly override not found")
	case errors.Is(err, attendance.ErrAlreadyPunchedIn),
		errors.Is(err, attendance.ErrAlreadyPunchedOut),
		errors.Is(err, attendance.ErrLowerPrioritySource):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrNotPunchedIn),
		errors.Is(err, attendance.ErrPunchOutBeforePunchIn),
		errors.Is(err, attendance.ErrInvalidMonth):
		BadRequest(w, err.Error(), nil)

	// Compensation domain errors
	case errors.Is(err, compensation.ErrMissingCompensation),
		errors.Is(err, compensation.ErrCompensationNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, compensation.ErrMalformedComponentPayload):
		BadRequest(w, err.Error(), nil)

	// Payroll domain errors
	case errors.Is(err, payroll.ErrPeriodNotFound):
		NotFound(w, "Payroll period not found")
	case errors.Is(err, payroll.ErrRunNotFound):
		NotFound(w, "Payroll run not found")
	case errors.Is(err, payroll.ErrPeriodAlreadyExists),
		errors.Is(err, payroll.ErrRunAlreadyExists),
		errors.Is(err, payroll.ErrInvalidPeriodState):
		Conflict(w, err.Error())

	// AI ledger domain errors
	case errors.Is(err, ailedger.ErrPolicyNotFound):
		NotFound(w, "AI policy not found")
	case errors.Is(err, ailedger.ErrRunNotFound):
		NotFound(w, "AI run not found")
	case errors.Is(err, ailedger.ErrDecisionNotFound):
		NotFound(w, "AI decision not found")
	case errors.Is(err, ailedger.ErrNoActivePolicy),
		errors.Is(err, ailedger.ErrInvalidPolicyTransition),
		errors.Is(err, ailedger.ErrRunNotRunning),
		errors.Is(err, ailedger.ErrDecisionAlreadyReviewed),
		errors.Is(err, ailedger.ErrDecisionAlreadyPromoted),
		errors.Is(err, ailedger.ErrDecisionNotApproved):
		Conflict(w, err.Error())
	case errors.Is(err, ailedger.ErrDecisionNotPromotable),
		errors.Is(err, ailedger.ErrInvalidDecisionPayload):
		BadRequest(w, err.Error(), nil)

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
