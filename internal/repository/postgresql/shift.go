package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/shift"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/utils"
	"github.com/jackc/pgx/v5"
)

type shiftRepository struct {
	db *database.DB
}

func NewShiftRepository(db *database.DB) shift.ShiftRepository {
	return &shiftRepository{db: db}
}

// GetByID implements shift.ShiftRepository.
func (r *shiftRepository) GetByID(ctx context.Context, id string) (shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, organization_id, name, start_time, end_time, break_hours,
			   late_threshold_minutes, early_threshold_minutes, duration_hours,
			   weekly_offs, timezone,
			   site_name, site_latitude, site_longitude, site_radius_meters,
			   created_at, updated_at
		FROM shifts
		WHERE id = $1
	`

	var (
		s                  shift.Shift
		siteName           *string
		siteLat, siteLng   *float64
		siteRadiusInMeters *int
	)
	err := q.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.OrganizationID, &s.Name, &s.StartTime, &s.EndTime, &s.BreakHours,
		&s.LateThresholdMinutes, &s.EarlyThresholdMinutes, &s.DurationHours,
		&s.WeeklyOffs, &s.Timezone,
		&siteName, &siteLat, &siteLng, &siteRadiusInMeters,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return shift.Shift{}, shift.ErrShiftNotFound
		}
		return shift.Shift{}, fmt.Errorf("failed to get shift: %w", err)
	}

	if siteLat != nil && siteLng != nil {
		s.Site = &shift.Site{Latitude: *siteLat, Longitude: *siteLng}
		if siteName != nil {
			s.Site.Name = *siteName
		}
		if siteRadiusInMeters != nil {
			s.Site.RadiusMeters = *siteRadiusInMeters
		}
	}

	return s, nil
}

// GetAssignmentForDate implements shift.ShiftRepository.
func (r *shiftRepository) GetAssignmentForDate(ctx context.Context, employeeID string, date time.Time) (*shift.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	// Covering assignments sort first, then the latest start.
	query := `
		SELECT id, employee_id, shift_id, start_date, end_date
		FROM shift_assignments
		WHERE employee_id = $1 AND start_date <= $2
		ORDER BY (end_date IS NULL OR end_date >= $2) DESC, start_date DESC
		LIMIT 1
	`

	var a shift.Assignment
	err := q.QueryRow(ctx, query, employeeID, utils.DateOf(date)).Scan(
		&a.ID, &a.EmployeeID, &a.ShiftID, &a.StartDate, &a.EndDate,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get shift assignment: %w", err)
	}

	return &a, nil
}

// ListHolidays implements shift.ShiftRepository.
func (r *shiftRepository) ListHolidays(ctx context.Context, organizationID string, from, to time.Time) ([]shift.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, organization_id, date, name, shift_ids::text[], is_optional
		FROM holidays
		WHERE organization_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date ASC
	`

	rows, err := q.Query(ctx, query, organizationID, utils.DateOf(from), utils.DateOf(to))
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	defer rows.Close()

	var holidays []shift.Holiday
	for rows.Next() {
		var h shift.Holiday
		if err := rows.Scan(&h.ID, &h.OrganizationID, &h.Date, &h.Name, &h.ShiftIDs, &h.IsOptional); err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		holidays = append(holidays, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holidays: %w", err)
	}

	return holidays, nil
}
