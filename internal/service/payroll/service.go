package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/compensation"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/compliance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/export"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const DefaultFinalizeConcurrency = 4

type PayrollServiceImpl struct {
	db              database.Transactor
	payrollRepo     payroll.PayrollRepository
	employeeRepo    employee.EmployeeRepository
	compensationSvc compensation.CompensationService
	complianceSvc   compliance.ComplianceService
	concurrency     int
}

func NewPayrollService(
	db database.Transactor,
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	compensationSvc compensation.CompensationService,
	complianceSvc compliance.ComplianceService,
	concurrency int,
) payroll.PayrollService {
	if concurrency <= 0 {
		concurrency = DefaultFinalizeConcurrency
	}
	return &PayrollServiceImpl{
		db:              db,
		payrollRepo:     payrollRepo,
		employeeRepo:    employeeRepo,
		compensationSvc: compensationSvc,
		complianceSvc:   complianceSvc,
		concurrency:     concurrency,
	}
}

// ========== PERIODS ==========

// CreatePeriod implements payroll.PayrollService.
func (s *PayrollServiceImpl) CreatePeriod(ctx context.Context, req payroll.CreatePeriodRequest) (payroll.Period, error) {
	if err := req.Validate(); err != nil {
		return payroll.Period{}, err
	}

	period, err := s.payrollRepo.CreatePeriod(ctx, payroll.Period{
		OrganizationID: req.OrganizationID,
		Month:          req.Month,
		Year:           req.Year,
		Status:         payroll.PeriodStatusDraft,
	})
	if err != nil {
		return payroll.Period{}, err
	}
	return period, nil
}

// GetPeriod implements payroll.PayrollService.
func (s *PayrollServiceImpl) GetPeriod(ctx context.Context, organizationID, id string) (payroll.Period, error) {
	return s.payrollRepo.GetPeriodByID(ctx, id, organizationID)
}

// ListPeriods implements payroll.PayrollService.
func (s *PayrollServiceImpl) ListPeriods(ctx context.Context, organizationID string) ([]payroll.Period, error) {
	periods, err := s.payrollRepo.ListPeriods(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll periods: %w", err)
	}
	return periods, nil
}

// LockPeriod implements payroll.PayrollService.
func (s *PayrollServiceImpl) LockPeriod(ctx context.Context, organizationID, id, userID string) (payroll.Period, error) {
	return s.transition(ctx, organizationID, id, userID, payroll.PeriodStatusLocked)
}

// FinalizePeriod implements payroll.PayrollService.
func (s *PayrollServiceImpl) FinalizePeriod(ctx context.Context, organizationID, id, userID string) (payroll.Period, error) {
	return s.transition(ctx, organizationID, id, userID, payroll.PeriodStatusFinalized)
}

func (s *PayrollServiceImpl) transition(ctx context.Context, organizationID, id, userID string, to payroll.PeriodStatus) (payroll.Period, error) {
	period, err := s.payrollRepo.GetPeriodByID(ctx, id, organizationID)
	if err != nil {
		return payroll.Period{}, err
	}
	if !period.Status.CanTransitionTo(to) {
		return payroll.Period{}, fmt.Errorf("%w: cannot move from %s to %s", payroll.ErrInvalidPeriodState, period.Status, to)
	}

	updated, err := s.payrollRepo.TransitionPeriod(ctx, id, organizationID, period.Status, to, userID, time.Now().UTC())
	if err != nil {
		return payroll.Period{}, err
	}

	slog.Info("payroll period transitioned", "period_id", id, "from", period.Status, "to", to, "by", userID)
	return updated, nil
}

// ========== RUNS ==========

// FinalizeRun implements payroll.PayrollService.
func (s *PayrollServiceImpl) FinalizeRun(ctx context.Context, periodID, employeeID, state string) (payroll.Run, error) {
	var saved payroll.Run
	err := s.db.WithinTransaction(ctx, func(ctx context.Context) error {
		period, err := s.payrollRepo.GetPeriodForShare(ctx, periodID)
		if err != nil {
			return err
		}
		if period.Status != payroll.PeriodStatusLocked {
			return fmt.Errorf("%w: period is %s, runs require locked", payroll.ErrInvalidPeriodState, period.Status)
		}

		emp, err := s.employeeRepo.GetByID(ctx, employeeID)
		if err != nil {
			return err
		}
		if emp.OrganizationID != period.OrganizationID {
			return employee.ErrEmployeeNotFound
		}
		state = strings.ToUpper(strings.TrimSpace(state))
		if state == "" {
			state = strings.ToUpper(emp.WorkState)
		}

		if err := s.payrollRepo.DeleteRun(ctx, period.ID, emp.ID); err != nil {
			return fmt.Errorf("failed to delete previous run: %w", err)
		}

		eval, err := s.compensationSvc.EvalComponents(ctx, emp.ID, period.Month, period.Year)
		if err != nil {
			return err
		}

		var statutory *compliance.Result
		if eval.DeclaresStatutory {
			result, err := s.complianceSvc.ApplyCompliance(ctx, emp.ID, period.Month, period.Year, eval.Components, state)
			if err != nil {
				return fmt.Errorf("failed to apply compliance: %w", err)
			}
			statutory = &result
		}

		run := BuildRun(eval, statutory)
		run.PeriodID = period.ID
		run.OrganizationID = period.OrganizationID
		run.EmployeeID = emp.ID
		run.WorkState = state
		run.ComputedAt = time.Now().UTC()

		saved, err = s.payrollRepo.CreateRun(ctx, run)
		if err != nil {
			return fmt.Errorf("failed to create payroll run: %w", err)
		}
		return nil
	})
	if err != nil {
		return payroll.Run{}, err
	}

	return saved, nil
}

// BuildRun assembles line items and totals from an evaluation and, when the
// plan declares statutory codes, its compliance result. Statutory line items
// are only kept when non-zero.
func BuildRun(eval compensation.Evaluation, statutory *compliance.Result) payroll.Run {
	run := payroll.Run{
		CompensationID:  eval.CompensationID,
		Basis:           eval.Basis,
		LineItems:       make([]payroll.LineItem, 0, len(eval.Components)+6),
		GrossEarnings:   eval.GrossEarnings,
		TotalDeductions: decimal.Zero,
	}

	declaredEmployerCost := decimal.Zero
	for _, c := range eval.Components {
		monthly := c.MonthlyAmount
		li := payroll.LineItem{
			Code:          c.Code,
			Name:          c.Name,
			MonthlyAmount: &monthly,
			Amount:        c.ProratedAmount,
		}
		switch c.Type {
		case compensation.ComponentTypeEarning:
			li.Kind = payroll.LineItemEarning
		case compensation.ComponentTypeDeduction:
			li.Kind = payroll.LineItemDeduction
			run.TotalDeductions = run.TotalDeductions.Add(c.ProratedAmount)
		case compensation.ComponentTypeStatutoryDeduction:
			li.Kind = payroll.LineItemStatutoryDeduction
			run.TotalDeductions = run.TotalDeductions.Add(c.ProratedAmount)
		case compensation.ComponentTypeEmployerCost:
			li.Kind = payroll.LineItemEmployerCost
			declaredEmployerCost = declaredEmployerCost.Add(c.ProratedAmount)
		}
		run.LineItems = append(run.LineItems, li)
	}

	employerContributions := decimal.Zero
	if statutory != nil {
		for _, item := range []struct {
			code, name string
			kind       payroll.LineItemKind
			amount     decimal.Decimal
		}{
			{payroll.CodePFEmployee, "Provident Fund (Employee)", payroll.LineItemStatutoryDeduction, statutory.PFEmployee},
			{payroll.CodeESICEmployee, "ESIC (Employee)", payroll.LineItemStatutoryDeduction, statutory.ESICEmployee},
			{payroll.CodePT, "Professional Tax", payroll.LineItemStatutoryDeduction, statutory.PTAmount},
			{payroll.CodeTDS, "Tax Deducted at Source", payroll.LineItemStatutoryDeduction, statutory.TDSAmount},
			{payroll.CodePFEmployer, "Provident Fund (Employer)", payroll.LineItemEmployerContribution, statutory.PFEmployer},
			{payroll.CodeESICEmployer, "ESIC (Employer)", payroll.LineItemEmployerContribution, statutory.ESICEmployer},
		} {
			if item.amount.IsZero() {
				continue
			}
			run.LineItems = append(run.LineItems, payroll.LineItem{Code: item.code, Name: item.name, Kind: item.kind, Amount: item.amount})
		}
		run.TotalDeductions = run.TotalDeductions.Add(statutory.EmployeeDeductions())
		employerContributions = statutory.EmployerContributions()
	}

	run.NetPay = run.GrossEarnings.Sub(run.TotalDeductions)
	run.EmployerCost = run.GrossEarnings.Add(employerContributions).Add(declaredEmployerCost)
	return run
}

// FinalizeAll implements payroll.PayrollService.
func (s *PayrollServiceImpl) FinalizeAll(ctx context.Context, organizationID, periodID string) (payroll.BatchResult, error) {
	period, err := s.payrollRepo.GetPeriodByID(ctx, periodID, organizationID)
	if err != nil {
		return payroll.BatchResult{}, err
	}
	if period.Status != payroll.PeriodStatusLocked {
		return payroll.BatchResult{}, fmt.Errorf("%w: period is %s, runs require locked", payroll.ErrInvalidPeriodState, period.Status)
	}

	employees, err := s.employeeRepo.GetActiveByOrganizationID(ctx, organizationID)
	if err != nil {
		return payroll.BatchResult{}, fmt.Errorf("failed to list active employees: %w", err)
	}

	result := payroll.BatchResult{
		PeriodID:  period.ID,
		Succeeded: []string{},
		Failed:    map[string]string{},
	}
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for _, emp := range employees {
		g.Go(func() error {
			_, err := s.FinalizeRun(ctx, period.ID, emp.ID, emp.WorkState)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				slog.Warn("payroll run failed", "period_id", period.ID, "employee_id", emp.ID, "error", err)
				result.Failed[emp.ID] = err.Error()
				return nil
			}
			result.Succeeded = append(result.Succeeded, emp.ID)
			return nil
		})
	}
	_ = g.Wait()

	sort.Strings(result.Succeeded)
	slog.Info("payroll batch finalized", "period_id", period.ID, "succeeded", len(result.Succeeded), "failed", len(result.Failed))
	return result, nil
}

// GetRun implements payroll.PayrollService.
func (s *PayrollServiceImpl) GetRun(ctx context.Context, organizationID, periodID, employeeID string) (payroll.Run, error) {
	if _, err := s.payrollRepo.GetPeriodByID(ctx, periodID, organizationID); err != nil {
		return payroll.Run{}, err
	}
	return s.payrollRepo.GetRun(ctx, periodID, employeeID)
}

// ListRuns implements payroll.PayrollService.
func (s *PayrollServiceImpl) ListRuns(ctx context.Context, organizationID, periodID string) ([]payroll.Run, error) {
	if _, err := s.payrollRepo.GetPeriodByID(ctx, periodID, organizationID); err != nil {
		return nil, err
	}
	runs, err := s.payrollRepo.ListRuns(ctx, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll runs: %w", err)
	}
	return runs, nil
}

// ExportRegister implements payroll.PayrollService.
func (s *PayrollServiceImpl) ExportRegister(ctx context.Context, organizationID, periodID string) ([]byte, error) {
	period, err := s.payrollRepo.GetPeriodByID(ctx, periodID, organizationID)
	if err != nil {
		return nil, err
	}
	runs, err := s.payrollRepo.ListRuns(ctx, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll runs: %w", err)
	}
	return export.Register(period, runs)
}
