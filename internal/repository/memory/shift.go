package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/shift"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/utils"
)

type shiftRepository struct{ s *Store }

func NewShiftRepository(s *Store) shift.ShiftRepository {
	return &shiftRepository{s: s}
}

func (r *shiftRepository) GetByID(ctx context.Context, id string) (shift.Shift, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sh, ok := r.s.shifts[id]
	if !ok {
		return shift.Shift{}, shift.ErrShiftNotFound
	}
	return sh, nil
}

func (r *shiftRepository) GetAssignmentForDate(ctx context.Context, employeeID string, date time.Time) (*shift.Assignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	day := utils.DateOf(date)
	var best *shift.Assignment
	bestCovers := false
	for i := range r.s.assignments {
		a := r.s.assignments[i]
		if a.EmployeeID != employeeID || a.StartDate.After(day) {
			continue
		}
		covers := a.Covers(day)
		switch {
		case best == nil,
			covers && !bestCovers,
			covers == bestCovers && a.StartDate.After(best.StartDate):
			found := a
			best = &found
			bestCovers = covers
		}
	}
	return best, nil
}

func (r *shiftRepository) ListHolidays(ctx context.Context, organizationID string, from, to time.Time) ([]shift.Holiday, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	from, to = utils.DateOf(from), utils.DateOf(to)
	var out []shift.Holiday
	for _, h := range r.s.holidays {
		d := utils.DateOf(h.Date)
		if h.OrganizationID != organizationID || d.Before(from) || d.After(to) {
			continue
		}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
