package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/shift"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/utils"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
)

type AttendanceServiceImpl struct {
	db           database.Transactor
	recordRepo   attendance.RecordRepository
	overrideRepo attendance.OverrideRepository
	shiftRepo    shift.ShiftRepository
	employeeRepo employee.EmployeeRepository
}

func NewAttendanceService(
	db database.Transactor,
	recordRepo attendance.RecordRepository,
	overrideRepo attendance.OverrideRepository,
	shiftRepo shift.ShiftRepository,
	employeeRepo employee.EmployeeRepository,
) attendance.Service {
	return &AttendanceServiceImpl{
		db:           db,
		recordRepo:   recordRepo,
		overrideRepo: overrideRepo,
		shiftRepo:    shiftRepo,
		employeeRepo: employeeRepo,
	}
}

// PunchIn implements attendance.Service.
func (s *AttendanceServiceImpl) PunchIn(ctx context.Context, req attendance.PunchInRequest) (attendance.Record, error) {
	if err := req.Validate(); err != nil {
		return attendance.Record{}, err
	}

	emp, err := s.getEmployee(ctx, req.OrganizationID, req.EmployeeID)
	if err != nil {
		return attendance.Record{}, err
	}
	if !emp.IsActive() {
		return attendance.Record{}, employee.ErrEmployeeInactive
	}

	at := time.Now().UTC()
	if req.At != nil {
		at = req.At.UTC()
	}

	sh, err := s.shiftOn(ctx, emp.ID, utils.DateOf(at))
	if err != nil {
		return attendance.Record{}, err
	}
	loc := time.UTC
	if sh != nil {
		loc = sh.Location()
	}
	date := utils.DateOf(at.In(loc))

	var created attendance.Record
	err = s.db.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.recordRepo.GetByEmployeeAndDate(ctx, emp.ID, date)
		if err != nil {
			return fmt.Errorf("failed to check existing attendance: %w", err)
		}
		if existing != nil {
			return attendance.ErrAlreadyPunchedIn
		}

		holidays, err := s.shiftRepo.ListHolidays(ctx, emp.OrganizationID, date, date)
		if err != nil {
			return fmt.Errorf("failed to list holidays: %w", err)
		}

		record := attendance.Record{
			OrganizationID: emp.OrganizationID,
			EmployeeID:     emp.ID,
			Date:           date,
			PunchIn:        &at,
			Source:         attendance.SourceDefault,
			Latitude:       req.Latitude,
			Longitude:      req.Longitude,
		}
		if sh != nil {
			record.ShiftID = &sh.ID
			if sh.Site != nil && req.Latitude != nil && req.Longitude != nil {
				distance := utils.RoundTo(utils.HaversineDistance(*req.Latitude, *req.Longitude, sh.Site.Latitude, sh.Site.Longitude), 2)
				record.DistanceMeters = &distance
			}
		}
		applyFacts(&record, ComputePunch(PunchInput{Date: date, PunchIn: &at, Shift: sh, Holidays: holidays}))

		created, err = s.recordRepo.Create(ctx, record)
		if err != nil {
			return fmt.Errorf("failed to create attendance record: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.Record{}, err
	}

	return created, nil
}

// PunchOut implements attendance.Service.
func (s *AttendanceServiceImpl) PunchOut(ctx context.Context, req attendance.PunchOutRequest) (attendance.Record, error) {
	if err := req.Validate(); err != nil {
		return attendance.Record{}, err
	}

	at := time.Now().UTC()
	if req.At != nil {
		at = req.At.UTC()
	}

	var updated attendance.Record
	err := s.db.WithinTransaction(ctx, func(ctx context.Context) error {
		record, err := s.recordRepo.GetByID(ctx, req.RecordID, req.OrganizationID)
		if err != nil {
			return err
		}
		if record.PunchIn == nil {
			return attendance.ErrNotPunchedIn
		}
		if record.PunchOut != nil {
			return attendance.ErrAlreadyPunchedOut
		}
		if !at.After(*record.PunchIn) {
			return attendance.ErrPunchOutBeforePunchIn
		}

		record.PunchOut = &at
		if err := s.recompute(ctx, &record); err != nil {
			return err
		}
		if err := s.recordRepo.Update(ctx, record); err != nil {
			return fmt.Errorf("failed to update attendance record: %w", err)
		}
		updated = record
		return nil
	})
	if err != nil {
		return attendance.Record{}, err
	}

	return updated, nil
}

// Regularize implements attendance.Service.
func (s *AttendanceServiceImpl) Regularize(ctx context.Context, req attendance.RegularizeRequest) (attendance.Record, error) {
	if err := req.Validate(); err != nil {
		return attendance.Record{}, err
	}

	var result attendance.Record
	err := s.db.WithinTransaction(ctx, func(ctx context.Context) error {
		record, exists, err := s.loadForRegularize(ctx, req)
		if err != nil {
			return err
		}

		if exists && req.Source.Priority() < record.Source.Priority() {
			return attendance.ErrLowerPrioritySource
		}

		if req.PunchIn != nil {
			in := req.PunchIn.UTC()
			record.PunchIn = &in
		}
		if req.PunchOut != nil {
			out := req.PunchOut.UTC()
			record.PunchOut = &out
		}
		if record.PunchIn == nil && record.PunchOut != nil {
			return attendance.ErrNotPunchedIn
		}
		if record.PunchIn != nil && record.PunchOut != nil && !record.PunchOut.After(*record.PunchIn) {
			return attendance.ErrPunchOutBeforePunchIn
		}
		if req.Absent != nil {
			record.IsAbsent = *req.Absent
			if record.IsAbsent {
				record.OnLeave = false
			}
		}
		if req.OnLeave != nil {
			record.OnLeave = *req.OnLeave
			if record.OnLeave {
				record.IsAbsent = false
			}
		}
		if req.Remarks != nil {
			record.Remarks = req.Remarks
		}
		record.Source = req.Source

		if err := s.recompute(ctx, &record); err != nil {
			return err
		}

		if exists {
			if err := s.recordRepo.Update(ctx, record); err != nil {
				return fmt.Errorf("failed to update attendance record: %w", err)
			}
			result = record
			return nil
		}

		created, err := s.recordRepo.Create(ctx, record)
		if err != nil {
			return fmt.Errorf("failed to create attendance record: %w", err)
		}
		result = created
		return nil
	})
	if err != nil {
		return attendance.Record{}, err
	}

	return result, nil
}

// loadForRegularize returns the record a regularization applies to, or a new
// unsaved one for the employee and date.
func (s *AttendanceServiceImpl) loadForRegularize(ctx context.Context, req attendance.RegularizeRequest) (attendance.Record, bool, error) {
	if req.RecordID != nil {
		record, err := s.recordRepo.GetByID(ctx, *req.RecordID, req.OrganizationID)
		if err != nil {
			return attendance.Record{}, false, err
		}
		return record, true, nil
	}

	emp, err := s.getEmployee(ctx, req.OrganizationID, req.EmployeeID)
	if err != nil {
		return attendance.Record{}, false, err
	}
	date, _ := time.Parse("2006-01-02", *req.Date)

	existing, err := s.recordRepo.GetByEmployeeAndDate(ctx, emp.ID, date)
	if err != nil {
		return attendance.Record{}, false, fmt.Errorf("failed to check existing attendance: %w", err)
	}
	if existing != nil {
		return *existing, true, nil
	}

	record := attendance.Record{
		OrganizationID: emp.OrganizationID,
		EmployeeID:     emp.ID,
		Date:           date,
		Source:         attendance.SourceDefault,
	}
	sh, err := s.shiftOn(ctx, emp.ID, date)
	if err != nil {
		return attendance.Record{}, false, err
	}
	if sh != nil {
		record.ShiftID = &sh.ID
	}
	return record, false, nil
}

// recompute rederives every computed fact of the record.
func (s *AttendanceServiceImpl) recompute(ctx context.Context, record *attendance.Record) error {
	var sh *shift.Shift
	if record.ShiftID != nil {
		found, err := s.shiftRepo.GetByID(ctx, *record.ShiftID)
		if err != nil {
			return fmt.Errorf("failed to get shift: %w", err)
		}
		sh = &found
	}

	holidays, err := s.shiftRepo.ListHolidays(ctx, record.OrganizationID, record.Date, record.Date)
	if err != nil {
		return fmt.Errorf("failed to list holidays: %w", err)
	}

	applyFacts(record, ComputePunch(PunchInput{
		Date:     record.Date,
		PunchIn:  record.PunchIn,
		PunchOut: record.PunchOut,
		Shift:    sh,
		Holidays: holidays,
	}))
	return nil
}

// CleanupStaleSessions implements attendance.Service.
func (s *AttendanceServiceImpl) CleanupStaleSessions(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)

	deleted, err := s.recordRepo.DeleteStaleOpenSessions(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale sessions: %w", err)
	}

	if deleted > 0 {
		slog.Info("deleted stale attendance sessions", "count", deleted, "cutoff", cutoff)
	}
	return deleted, nil
}

// ResolveBasis implements attendance.BasisResolver.
func (s *AttendanceServiceImpl) ResolveBasis(ctx context.Context, employeeID string, month, year int) (attendance.Basis, error) {
	if errs := validator.ValidateMonthYear(month, year); len(errs) > 0 {
		return attendance.Basis{}, errs
	}

	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return attendance.Basis{}, err
	}

	first, last := utils.MonthRange(month, year)

	sh, err := s.shiftOn(ctx, emp.ID, utils.MonthAnchor(month, year))
	if err != nil {
		return attendance.Basis{}, err
	}

	holidays, err := s.shiftRepo.ListHolidays(ctx, emp.OrganizationID, first, last)
	if err != nil {
		return attendance.Basis{}, fmt.Errorf("failed to list holidays: %w", err)
	}

	records, err := s.recordRepo.ListByEmployeeAndRange(ctx, emp.ID, first, last)
	if err != nil {
		return attendance.Basis{}, fmt.Errorf("failed to list attendance records: %w", err)
	}

	override, err := s.overrideRepo.Get(ctx, emp.ID, month, year)
	if err != nil {
		return attendance.Basis{}, fmt.Errorf("failed to get monthly override: %w", err)
	}

	return ComputeBasis(BasisInput{
		Month:    month,
		Year:     year,
		Shift:    sh,
		Holidays: holidays,
		Records:  records,
		Override: override,
	}), nil
}

// UpsertOverride implements attendance.Service.
func (s *AttendanceServiceImpl) UpsertOverride(ctx context.Context, req attendance.UpsertOverrideRequest) (attendance.MonthlyOverride, error) {
	if err := req.Validate(); err != nil {
		return attendance.MonthlyOverride{}, err
	}

	emp, err := s.getEmployee(ctx, req.OrganizationID, req.EmployeeID)
	if err != nil {
		return attendance.MonthlyOverride{}, err
	}

	var saved attendance.MonthlyOverride
	err = s.db.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.overrideRepo.Get(ctx, emp.ID, req.Month, req.Year)
		if err != nil {
			return fmt.Errorf("failed to get monthly override: %w", err)
		}
		if existing != nil && req.Source.Priority() < existing.Source.Priority() {
			return attendance.ErrLowerPrioritySource
		}

		saved, err = s.overrideRepo.Upsert(ctx, attendance.MonthlyOverride{
			OrganizationID: emp.OrganizationID,
			EmployeeID:     emp.ID,
			Month:          req.Month,
			Year:           req.Year,
			PresentDays:    req.PresentDays,
			HalfDays:       req.HalfDays,
			AbsentDays:     req.AbsentDays,
			LeaveDays:      req.LeaveDays,
			LateCount:      req.LateCount,
			Source:         req.Source,
			ApprovedBy:     req.ApprovedBy,
			DecisionID:     req.DecisionID,
			Reason:         req.Reason,
		})
		if err != nil {
			return fmt.Errorf("failed to upsert monthly override: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.MonthlyOverride{}, err
	}

	return saved, nil
}

// GetOverride implements attendance.Service.
func (s *AttendanceServiceImpl) GetOverride(ctx context.Context, organizationID, employeeID string, month, year int) (attendance.MonthlyOverride, error) {
	if errs := validator.ValidateMonthYear(month, year); len(errs) > 0 {
		return attendance.MonthlyOverride{}, errs
	}
	if _, err := s.getEmployee(ctx, organizationID, employeeID); err != nil {
		return attendance.MonthlyOverride{}, err
	}

	override, err := s.overrideRepo.Get(ctx, employeeID, month, year)
	if err != nil {
		return attendance.MonthlyOverride{}, fmt.Errorf("failed to get monthly override: %w", err)
	}
	if override == nil {
		return attendance.MonthlyOverride{}, attendance.ErrOverrideNotFound
	}
	return *override, nil
}

// DeleteOverride implements attendance.Service.
func (s *AttendanceServiceImpl) DeleteOverride(ctx context.Context, organizationID, employeeID string, month, year int) error {
	if errs := validator.ValidateMonthYear(month, year); len(errs) > 0 {
		return errs
	}
	if _, err := s.getEmployee(ctx, organizationID, employeeID); err != nil {
		return err
	}

	return s.overrideRepo.Delete(ctx, employeeID, month, year)
}

// getEmployee loads an employee and hides employees of other organizations.
func (s *AttendanceServiceImpl) getEmployee(ctx context.Context, organizationID, employeeID string) (employee.Employee, error) {
	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return employee.Employee{}, err
	}
	if emp.OrganizationID != organizationID {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

// shiftOn returns the employee's shift on date, nil when never assigned.
func (s *AttendanceServiceImpl) shiftOn(ctx context.Context, employeeID string, date time.Time) (*shift.Shift, error) {
	assignment, err := s.shiftRepo.GetAssignmentForDate(ctx, employeeID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get shift assignment: %w", err)
	}
	if assignment == nil {
		return nil, nil
	}

	sh, err := s.shiftRepo.GetByID(ctx, assignment.ShiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to get shift: %w", err)
	}
	return &sh, nil
}
