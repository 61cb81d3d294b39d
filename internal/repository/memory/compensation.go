package memory

import (
	"context"
	"maps"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/compensation"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/utils"
	"github.com/google/uuid"
)

type compensationRepository struct{ s *Store }

func NewCompensationRepository(s *Store) compensation.CompensationRepository {
	return &compensationRepository{s: s}
}

func (r *compensationRepository) Create(ctx context.Context, c compensation.EmployeeCompensation) (compensation.EmployeeCompensation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c.ID = uuid.NewString()
	c.CreatedAt = now()
	setEntry(ctx, r.s.compensations, c.ID, c)
	return c, nil
}

func (r *compensationRepository) GetEffectiveOn(ctx context.Context, employeeID string, date time.Time) (*compensation.EmployeeCompensation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	day := utils.DateOf(date)
	var best *compensation.EmployeeCompensation
	for _, c := range r.s.compensations {
		if c.EmployeeID != employeeID || !c.Covers(day) {
			continue
		}
		if best == nil || c.EffectiveFrom.After(best.EffectiveFrom) ||
			(c.EffectiveFrom.Equal(best.EffectiveFrom) && c.CreatedAt.After(best.CreatedAt)) {
			found := c
			best = &found
		}
	}
	return best, nil
}

func (r *compensationRepository) ListByEmployee(ctx context.Context, employeeID string, organizationID string) ([]compensation.EmployeeCompensation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []compensation.EmployeeCompensation
	for _, c := range r.s.compensations {
		if c.EmployeeID == employeeID && c.OrganizationID == organizationID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EffectiveFrom.After(out[j].EffectiveFrom) })
	return out, nil
}

func (r *compensationRepository) ListDefinitions(ctx context.Context) (map[string]compensation.ComponentDefinition, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return maps.Clone(r.s.definitions), nil
}
