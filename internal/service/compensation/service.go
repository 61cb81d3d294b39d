package compensation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/compensation"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/utils"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CompensationServiceImpl struct {
	compensationRepo compensation.CompensationRepository
	employeeRepo     employee.EmployeeRepository
	basisResolver    attendance.BasisResolver
}

func NewCompensationService(
	compensationRepo compensation.CompensationRepository,
	employeeRepo employee.EmployeeRepository,
	basisResolver attendance.BasisResolver,
) compensation.CompensationService {
	return &CompensationServiceImpl{
		compensationRepo: compensationRepo,
		employeeRepo:     employeeRepo,
		basisResolver:    basisResolver,
	}
}

// GetActiveCompensation implements compensation.CompensationService.
func (s *CompensationServiceImpl) GetActiveCompensation(ctx context.Context, employeeID string, month, year int) (compensation.EmployeeCompensation, error) {
	if errs := validator.ValidateMonthYear(month, year); len(errs) > 0 {
		return compensation.EmployeeCompensation{}, errs
	}

	active, err := s.compensationRepo.GetEffectiveOn(ctx, employeeID, utils.MonthAnchor(month, year))
	if err != nil {
		return compensation.EmployeeCompensation{}, fmt.Errorf("failed to get effective compensation: %w", err)
	}
	if active == nil {
		return compensation.EmployeeCompensation{}, compensation.ErrMissingCompensation
	}
	return *active, nil
}

// EvalComponents implements compensation.CompensationService.
func (s *CompensationServiceImpl) EvalComponents(ctx context.Context, employeeID string, month, year int) (compensation.Evaluation, error) {
	active, err := s.GetActiveCompensation(ctx, employeeID, month, year)
	if err != nil {
		return compensation.Evaluation{}, err
	}

	declared, err := active.PayComponents()
	if err != nil {
		return compensation.Evaluation{}, err
	}

	basis, err := s.basisResolver.ResolveBasis(ctx, employeeID, month, year)
	if err != nil {
		return compensation.Evaluation{}, fmt.Errorf("failed to resolve attendance basis: %w", err)
	}

	definitions, err := s.compensationRepo.ListDefinitions(ctx)
	if err != nil {
		return compensation.Evaluation{}, fmt.Errorf("failed to list component definitions: %w", err)
	}

	return Evaluate(active.ID, declared, definitions, basis), nil
}

// Evaluate classifies and prorates declared components. Reserved statutory
// codes are left out; the compliance calculator owns them.
func Evaluate(compensationID string, declared []compensation.PayComponent, definitions map[string]compensation.ComponentDefinition, basis attendance.Basis) compensation.Evaluation {
	eval := compensation.Evaluation{
		CompensationID:    compensationID,
		Components:        make([]compensation.EvaluatedComponent, 0, len(declared)),
		GrossEarnings:     decimal.Zero,
		DeclaresStatutory: compensation.DeclaresStatutory(declared),
		Basis:             basis,
	}

	for _, pc := range declared {
		if compensation.IsStatutoryCode(pc.Code) {
			continue
		}

		monthly := compensation.MonthlyAmount(pc.AnnualAmount)
		ec := compensation.EvaluatedComponent{
			Code:           compensation.NormalizeCode(pc.Code),
			Name:           compensation.DisplayName(pc, definitions),
			Type:           compensation.Classify(pc, definitions),
			AnnualAmount:   pc.AnnualAmount,
			MonthlyAmount:  monthly,
			ProratedAmount: compensation.Prorate(monthly, basis.PayableDays, basis.WorkingDays),
		}
		if ec.Type == compensation.ComponentTypeEarning {
			eval.GrossEarnings = eval.GrossEarnings.Add(ec.ProratedAmount)
		}
		eval.Components = append(eval.Components, ec)
	}

	return eval
}

// CreateCompensation implements compensation.CompensationService.
func (s *CompensationServiceImpl) CreateCompensation(ctx context.Context, req compensation.CreateCompensationRequest) (compensation.EmployeeCompensation, error) {
	if err := req.Validate(); err != nil {
		return compensation.EmployeeCompensation{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return compensation.EmployeeCompensation{}, err
	}
	if emp.OrganizationID != req.OrganizationID {
		return compensation.EmployeeCompensation{}, employee.ErrEmployeeNotFound
	}

	from, _ := time.Parse("2006-01-02", req.EffectiveFrom)
	var to *time.Time
	if req.EffectiveTo != nil {
		parsed, _ := time.Parse("2006-01-02", *req.EffectiveTo)
		to = &parsed
	}

	payload, err := json.Marshal(req.Components)
	if err != nil {
		return compensation.EmployeeCompensation{}, fmt.Errorf("failed to encode components: %w", err)
	}

	created, err := s.compensationRepo.Create(ctx, compensation.EmployeeCompensation{
		OrganizationID: emp.OrganizationID,
		EmployeeID:     emp.ID,
		EffectiveFrom:  from,
		EffectiveTo:    to,
		AnnualCTC:      req.AnnualCTC,
		Components:     payload,
	})
	if err != nil {
		return compensation.EmployeeCompensation{}, fmt.Errorf("failed to create compensation: %w", err)
	}
	return created, nil
}

// ListCompensations implements compensation.CompensationService.
func (s *CompensationServiceImpl) ListCompensations(ctx context.Context, organizationID, employeeID string) ([]compensation.EmployeeCompensation, error) {
	list, err := s.compensationRepo.ListByEmployee(ctx, employeeID, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list compensations: %w", err)
	}
	return list, nil
}
