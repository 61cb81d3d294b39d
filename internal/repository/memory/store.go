// Package memory holds map-backed repositories sharing one Store. They mirror
// the PostgreSQL repositories' contracts and back service tests and dry runs.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/ailedger"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/compensation"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/shift"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/google/uuid"
)

type monthKey struct {
	employeeID  string
	month, year int
}

type runKey struct {
	periodID, employeeID string
}

type Store struct {
	mu sync.RWMutex

	employees   map[string]employee.Employee
	shifts      map[string]shift.Shift
	assignments []shift.Assignment
	holidays    []shift.Holiday

	records   map[string]attendance.Record
	overrides map[monthKey]attendance.MonthlyOverride

	compensations map[string]compensation.EmployeeCompensation
	definitions   map[string]compensation.ComponentDefinition

	periods map[string]payroll.Period
	runs    map[runKey]payroll.Run

	policies  map[string]ailedger.Policy
	aiRuns    map[string]ailedger.Run
	decisions map[string]ailedger.Decision
}

func NewStore() *Store {
	return &Store{
		employees:     make(map[string]employee.Employee),
		shifts:        make(map[string]shift.Shift),
		records:       make(map[string]attendance.Record),
		overrides:     make(map[monthKey]attendance.MonthlyOverride),
		compensations: make(map[string]compensation.EmployeeCompensation),
		definitions:   make(map[string]compensation.ComponentDefinition),
		periods:       make(map[string]payroll.Period),
		runs:          make(map[runKey]payroll.Run),
		policies:      make(map[string]ailedger.Policy),
		aiRuns:        make(map[string]ailedger.Run),
		decisions:     make(map[string]ailedger.Decision),
	}
}

// AddEmployee seeds an employee, generating an ID when empty.
func (s *Store) AddEmployee(e employee.Employee) employee.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.EmploymentStatus == "" {
		e.EmploymentStatus = employee.EmploymentStatusActive
	}
	s.employees[e.ID] = e
	return e
}

func (s *Store) AddShift(sh shift.Shift) shift.Shift {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sh.ID == "" {
		sh.ID = uuid.NewString()
	}
	s.shifts[sh.ID] = sh
	return sh
}

func (s *Store) AddAssignment(a shift.Assignment) shift.Assignment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	s.assignments = append(s.assignments, a)
	return a
}

func (s *Store) AddHoliday(h shift.Holiday) shift.Holiday {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	s.holidays = append(s.holidays, h)
	return h
}

func (s *Store) AddDefinition(d compensation.ComponentDefinition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.definitions[compensation.NormalizeCode(d.Code)] = d
}

// Transactor runs fn as one unit of work. Writes made through the ctx passed
// to fn are undone when fn returns an error. Nested calls join the outer one.
func (s *Store) Transactor() database.Transactor {
	return transactor{s: s}
}

type transactor struct{ s *Store }

type journalKey struct{}

// journal collects undo steps in write order. It is only touched while the
// store mutex is held.
type journal struct {
	undo []func()
}

func (t transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(journalKey{}).(*journal); ok {
		return fn(ctx)
	}

	j := &journal{}
	if err := fn(context.WithValue(ctx, journalKey{}, j)); err != nil {
		t.s.mu.Lock()
		for i := len(j.undo) - 1; i >= 0; i-- {
			j.undo[i]()
		}
		t.s.mu.Unlock()
		return err
	}
	return nil
}

// setEntry writes m[key] and, inside a transaction, remembers how to restore
// the previous value. Callers hold the store mutex.
func setEntry[K comparable, V any](ctx context.Context, m map[K]V, key K, v V) {
	remember(ctx, m, key)
	m[key] = v
}

// deleteEntry removes m[key] with the same undo bookkeeping as setEntry.
func deleteEntry[K comparable, V any](ctx context.Context, m map[K]V, key K) {
	remember(ctx, m, key)
	delete(m, key)
}

func remember[K comparable, V any](ctx context.Context, m map[K]V, key K) {
	j, ok := ctx.Value(journalKey{}).(*journal)
	if !ok {
		return
	}
	prev, existed := m[key]
	j.undo = append(j.undo, func() {
		if existed {
			m[key] = prev
		} else {
			delete(m, key)
		}
	})
}

func now() time.Time {
	return time.Now().UTC()
}
