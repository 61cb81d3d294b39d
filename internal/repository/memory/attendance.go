package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/utils"
	"github.com/google/uuid"
)

type recordRepository struct{ s *Store }

func NewRecordRepository(s *Store) attendance.RecordRepository {
	return &recordRepository{s: s}
}

func (r *recordRepository) Create(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.records {
		if existing.EmployeeID == record.EmployeeID && existing.Date.Equal(record.Date) {
			return attendance.Record{}, attendance.ErrAlreadyPunchedIn
		}
	}

	record.ID = uuid.NewString()
	record.Date = utils.DateOf(record.Date)
	record.CreatedAt = now()
	record.UpdatedAt = record.CreatedAt
	setEntry(ctx, r.s.records, record.ID, record)
	return record, nil
}

func (r *recordRepository) GetByID(ctx context.Context, id string, organizationID string) (attendance.Record, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	record, ok := r.s.records[id]
	if !ok || record.OrganizationID != organizationID {
		return attendance.Record{}, attendance.ErrAttendanceNotFound
	}
	return record, nil
}

func (r *recordRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	day := utils.DateOf(date)
	for _, record := range r.s.records {
		if record.EmployeeID == employeeID && record.Date.Equal(day) {
			found := record
			return &found, nil
		}
	}
	return nil, nil
}

func (r *recordRepository) Update(ctx context.Context, record attendance.Record) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.records[record.ID]
	if !ok || existing.OrganizationID != record.OrganizationID {
		return attendance.ErrAttendanceNotFound
	}
	record.CreatedAt = existing.CreatedAt
	record.UpdatedAt = now()
	setEntry(ctx, r.s.records, record.ID, record)
	return nil
}

func (r *recordRepository) ListByEmployeeAndRange(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Record, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	from, to = utils.DateOf(from), utils.DateOf(to)
	var out []attendance.Record
	for _, record := range r.s.records {
		if record.EmployeeID != employeeID || record.Date.Before(from) || record.Date.After(to) {
			continue
		}
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *recordRepository) DeleteStaleOpenSessions(ctx context.Context, before time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var deleted int64
	for id, record := range r.s.records {
		if record.IsOpen() && record.PunchIn.Before(before) {
			deleteEntry(ctx, r.s.records, id)
			deleted++
		}
	}
	return deleted, nil
}

type overrideRepository struct{ s *Store }

func NewOverrideRepository(s *Store) attendance.OverrideRepository {
	return &overrideRepository{s: s}
}

func (r *overrideRepository) Get(ctx context.Context, employeeID string, month, year int) (*attendance.MonthlyOverride, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	o, ok := r.s.overrides[monthKey{employeeID, month, year}]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (r *overrideRepository) Upsert(ctx context.Context, override attendance.MonthlyOverride) (attendance.MonthlyOverride, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := monthKey{override.EmployeeID, override.Month, override.Year}
	ts := now()
	if existing, ok := r.s.overrides[key]; ok {
		override.ID = existing.ID
		override.CreatedAt = existing.CreatedAt
	} else {
		override.ID = uuid.NewString()
		override.CreatedAt = ts
	}
	override.UpdatedAt = ts
	setEntry(ctx, r.s.overrides, key, override)
	return override, nil
}

func (r *overrideRepository) Delete(ctx context.Context, employeeID string, month, year int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := monthKey{employeeID, month, year}
	if _, ok := r.s.overrides[key]; !ok {
		return attendance.ErrOverrideNotFound
	}
	deleteEntry(ctx, r.s.overrides, key)
	return nil
}
