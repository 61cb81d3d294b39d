package payroll

import "errors"

var (
	ErrPeriodNotFound      = errors.New("payroll period not found")
	ErrPeriodAlreadyExists = errors.New("payroll period already exists for this month")
	ErrInvalidPeriodState  = errors.New("payroll period is not in a valid state for this operation")
	ErrRunNotFound         = errors.New("payroll run not found")
	ErrRunAlreadyExists    = errors.New("payroll run already exists for this employee and period")
)
