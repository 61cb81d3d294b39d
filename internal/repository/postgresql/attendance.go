package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/utils"
	"github.com/jackc/pgx/v5"
)

const recordColumns = `
	id, organization_id, employee_id, shift_id, date, punch_in, punch_out,
	total_hours, effective_hours, is_late, is_early_leave, is_half_day,
	is_absent, is_holiday, is_weekend, on_leave, source,
	latitude, longitude, distance_meters, remarks, created_at, updated_at`

type recordRepository struct {
	db *database.DB
}

func NewRecordRepository(db *database.DB) attendance.RecordRepository {
	return &recordRepository{db: db}
}

func scanRecord(row pgx.Row) (attendance.Record, error) {
	var r attendance.Record
	err := row.Scan(
		&r.ID, &r.OrganizationID, &r.EmployeeID, &r.ShiftID, &r.Date, &r.PunchIn, &r.PunchOut,
		&r.TotalHours, &r.EffectiveHours, &r.IsLate, &r.IsEarlyLeave, &r.IsHalfDay,
		&r.IsAbsent, &r.IsHoliday, &r.IsWeekend, &r.OnLeave, &r.Source,
		&r.Latitude, &r.Longitude, &r.DistanceMeters, &r.Remarks, &r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

// Create implements attendance.RecordRepository.
func (r *recordRepository) Create(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_records (
			organization_id, employee_id, shift_id, date, punch_in, punch_out,
			total_hours, effective_hours, is_late, is_early_leave, is_half_day,
			is_absent, is_holiday, is_weekend, on_leave, source,
			latitude, longitude, distance_meters, remarks
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20
		) RETURNING id, created_at, updated_at
	`

	record.Date = utils.DateOf(record.Date)
	err := q.QueryRow(ctx, query,
		record.OrganizationID, record.EmployeeID, record.ShiftID, record.Date, record.PunchIn, record.PunchOut,
		record.TotalHours, record.EffectiveHours, record.IsLate, record.IsEarlyLeave, record.IsHalfDay,
		record.IsAbsent, record.IsHoliday, record.IsWeekend, record.OnLeave, record.Source,
		record.Latitude, record.Longitude, record.DistanceMeters, record.Remarks,
	).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "uk_attendance_employee_date") {
			return attendance.Record{}, attendance.ErrAlreadyPunchedIn
		}
		return attendance.Record{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	return record, nil
}

// GetByID implements attendance.RecordRepository.
func (r *recordRepository) GetByID(ctx context.Context, id string, organizationID string) (attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + recordColumns + `
		FROM attendance_records
		WHERE id = $1 AND organization_id = $2
	`

	record, err := scanRecord(q.QueryRow(ctx, query, id, organizationID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return attendance.Record{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to get attendance record: %w", err)
	}

	return record, nil
}

// GetByEmployeeAndDate implements attendance.RecordRepository.
func (r *recordRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + recordColumns + `
		FROM attendance_records
		WHERE employee_id = $1 AND date = $2
		FOR UPDATE
	`

	record, err := scanRecord(q.QueryRow(ctx, query, employeeID, utils.DateOf(date)))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance record by date: %w", err)
	}

	return &record, nil
}

// Update implements attendance.RecordRepository.
func (r *recordRepository) Update(ctx context.Context, record attendance.Record) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_records SET
			shift_id = $3, punch_in = $4, punch_out = $5,
			total_hours = $6, effective_hours = $7, is_late = $8, is_early_leave = $9,
			is_half_day = $10, is_absent = $11, is_holiday = $12, is_weekend = $13,
			on_leave = $14, source = $15, latitude = $16, longitude = $17,
			distance_meters = $18, remarks = $19, updated_at = NOW()
		WHERE id = $1 AND organization_id = $2
	`

	tag, err := q.Exec(ctx, query,
		record.ID, record.OrganizationID,
		record.ShiftID, record.PunchIn, record.PunchOut,
		record.TotalHours, record.EffectiveHours, record.IsLate, record.IsEarlyLeave,
		record.IsHalfDay, record.IsAbsent, record.IsHoliday, record.IsWeekend,
		record.OnLeave, record.Source, record.Latitude, record.Longitude,
		record.DistanceMeters, record.Remarks,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}

	return nil
}

// ListByEmployeeAndRange implements attendance.RecordRepository.
func (r *recordRepository) ListByEmployeeAndRange(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + recordColumns + `
		FROM attendance_records
		WHERE employee_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date ASC
	`

	rows, err := q.Query(ctx, query, employeeID, utils.DateOf(from), utils.DateOf(to))
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendance records: %w", err)
	}

	return records, nil
}

// DeleteStaleOpenSessions implements attendance.RecordRepository.
func (r *recordRepository) DeleteStaleOpenSessions(ctx context.Context, before time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		DELETE FROM attendance_records
		WHERE punch_in IS NOT NULL
		  AND punch_out IS NULL
		  AND punch_in < $1
	`

	tag, err := q.Exec(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale open sessions: %w", err)
	}

	return tag.RowsAffected(), nil
}

type overrideRepository struct {
	db *database.DB
}

func NewOverrideRepository(db *database.DB) attendance.OverrideRepository {
	return &overrideRepository{db: db}
}

// Get implements attendance.OverrideRepository.
func (r *overrideRepository) Get(ctx context.Context, employeeID string, month, year int) (*attendance.MonthlyOverride, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, organization_id, employee_id, month, year,
			   present_days, half_days, absent_days, leave_days, late_count,
			   source, approved_by, decision_id, reason, created_at, updated_at
		FROM monthly_overrides
		WHERE employee_id = $1 AND month = $2 AND year = $3
	`

	var o attendance.MonthlyOverride
	err := q.QueryRow(ctx, query, employeeID, month, year).Scan(
		&o.ID, &o.OrganizationID, &o.EmployeeID, &o.Month, &o.Year,
		&o.PresentDays, &o.HalfDays, &o.AbsentDays, &o.LeaveDays, &o.LateCount,
		&o.Source, &o.ApprovedBy, &o.DecisionID, &o.Reason, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get monthly override: %w", err)
	}

	return &o, nil
}

// Upsert implements attendance.OverrideRepository.
func (r *overrideRepository) Upsert(ctx context.Context, o attendance.MonthlyOverride) (attendance.MonthlyOverride, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO monthly_overrides (
			organization_id, employee_id, month, year,
			present_days, half_days, absent_days, leave_days, late_count,
			source, approved_by, decision_id, reason
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (employee_id, month, year) DO UPDATE SET
			present_days = EXCLUDED.present_days,
			half_days    = EXCLUDED.half_days,
			absent_days  = EXCLUDED.absent_days,
			leave_days   = EXCLUDED.leave_days,
			late_count   = EXCLUDED.late_count,
			source       = EXCLUDED.source,
			approved_by  = EXCLUDED.approved_by,
			decision_id  = EXCLUDED.decision_id,
			reason       = EXCLUDED.reason,
			updated_at   = NOW()
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		o.OrganizationID, o.EmployeeID, o.Month, o.Year,
		o.PresentDays, o.HalfDays, o.AbsentDays, o.LeaveDays, o.LateCount,
		o.Source, o.ApprovedBy, o.DecisionID, o.Reason,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return attendance.MonthlyOverride{}, fmt.Errorf("failed to upsert monthly override: %w", err)
	}

	return o, nil
}

// Delete implements attendance.OverrideRepository.
func (r *overrideRepository) Delete(ctx context.Context, employeeID string, month, year int) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		DELETE FROM monthly_overrides
		WHERE employee_id = $1 AND month = $2 AND year = $3
	`, employeeID, month, year)
	if err != nil {
		return fmt.Errorf("failed to delete monthly override: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrOverrideNotFound
	}

	return nil
}
