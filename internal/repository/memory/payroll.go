package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/google/uuid"
)

type payrollRepository struct{ s *Store }

func NewPayrollRepository(s *Store) payroll.PayrollRepository {
	return &payrollRepository{s: s}
}

func (r *payrollRepository) CreatePeriod(ctx context.Context, period payroll.Period) (payroll.Period, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, p := range r.s.periods {
		if p.OrganizationID == period.OrganizationID && p.Month == period.Month && p.Year == period.Year {
			return payroll.Period{}, payroll.ErrPeriodAlreadyExists
		}
	}

	period.ID = uuid.NewString()
	if period.Status == "" {
		period.Status = payroll.PeriodStatusDraft
	}
	period.CreatedAt = now()
	period.UpdatedAt = period.CreatedAt
	setEntry(ctx, r.s.periods, period.ID, period)
	return period, nil
}

func (r *payrollRepository) GetPeriodByID(ctx context.Context, id string, organizationID string) (payroll.Period, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.periods[id]
	if !ok || p.OrganizationID != organizationID {
		return payroll.Period{}, payroll.ErrPeriodNotFound
	}
	return p, nil
}

func (r *payrollRepository) GetPeriodForShare(ctx context.Context, id string) (payroll.Period, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.periods[id]
	if !ok {
		return payroll.Period{}, payroll.ErrPeriodNotFound
	}
	return p, nil
}

func (r *payrollRepository) ListPeriods(ctx context.Context, organizationID string) ([]payroll.Period, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []payroll.Period
	for _, p := range r.s.periods {
		if p.OrganizationID == organizationID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].Month > out[j].Month
	})
	return out, nil
}

func (r *payrollRepository) TransitionPeriod(ctx context.Context, id string, organizationID string, from, to payroll.PeriodStatus, by string, at time.Time) (payroll.Period, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.periods[id]
	if !ok || p.OrganizationID != organizationID {
		return payroll.Period{}, payroll.ErrPeriodNotFound
	}
	if p.Status != from {
		return payroll.Period{}, payroll.ErrInvalidPeriodState
	}

	p.Status = to
	switch to {
	case payroll.PeriodStatusLocked:
		p.LockedAt, p.LockedBy = &at, &by
	case payroll.PeriodStatusFinalized:
		p.FinalizedAt, p.FinalizedBy = &at, &by
	}
	p.UpdatedAt = at
	setEntry(ctx, r.s.periods, id, p)
	return p, nil
}

func (r *payrollRepository) CreateRun(ctx context.Context, run payroll.Run) (payroll.Run, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := runKey{run.PeriodID, run.EmployeeID}
	if _, ok := r.s.runs[key]; ok {
		return payroll.Run{}, payroll.ErrRunAlreadyExists
	}
	run.ID = uuid.NewString()
	if run.ComputedAt.IsZero() {
		run.ComputedAt = now()
	}
	setEntry(ctx, r.s.runs, key, run)
	return r.s.withEmployee(run), nil
}

func (r *payrollRepository) DeleteRun(ctx context.Context, periodID string, employeeID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	deleteEntry(ctx, r.s.runs, runKey{periodID, employeeID})
	return nil
}

func (r *payrollRepository) GetRun(ctx context.Context, periodID string, employeeID string) (payroll.Run, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	run, ok := r.s.runs[runKey{periodID, employeeID}]
	if !ok {
		return payroll.Run{}, payroll.ErrRunNotFound
	}
	return r.s.withEmployee(run), nil
}

func (r *payrollRepository) ListRuns(ctx context.Context, periodID string) ([]payroll.Run, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []payroll.Run
	for key, run := range r.s.runs {
		if key.periodID == periodID {
			out = append(out, r.s.withEmployee(run))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		var a, b string
		if out[i].EmployeeCode != nil {
			a = *out[i].EmployeeCode
		}
		if out[j].EmployeeCode != nil {
			b = *out[j].EmployeeCode
		}
		return a < b
	})
	return out, nil
}

// withEmployee fills the joined employee fields. Callers hold s.mu.
func (s *Store) withEmployee(run payroll.Run) payroll.Run {
	if e, ok := s.employees[run.EmployeeID]; ok {
		code, name := e.EmployeeCode, e.FullName
		run.EmployeeCode, run.EmployeeName = &code, &name
	}
	return run
}
