package attendance

import "errors"

// Attendance domain errors
var (
	// Punch errors
	ErrAlreadyPunchedIn      = errors.New("employee has already punched in for this date")
	ErrNotPunchedIn          = errors.New("attendance record has no punch-in")
	ErrAlreadyPunchedOut     = errors.New("attendance record is already punched out")
	ErrPunchOutBeforePunchIn = errors.New("punch-out must be after punch-in")

	// Precedence errors
	ErrLowerPrioritySource = errors.New("a higher priority source already owns this record")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrOverrideNotFound   = errors.New("monthly override not found")
	ErrInvalidMonth       = errors.New("invalid month or year")
)
