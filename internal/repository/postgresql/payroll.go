package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const periodColumns = `
	id, organization_id, month, year, status,
	locked_at, locked_by, finalized_at, finalized_by, created_at, updated_at`

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

func scanPeriod(row pgx.Row) (payroll.Period, error) {
	var p payroll.Period
	err := row.Scan(
		&p.ID, &p.OrganizationID, &p.Month, &p.Year, &p.Status,
		&p.LockedAt, &p.LockedBy, &p.FinalizedAt, &p.FinalizedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// ========================================
// PERIODS
// ========================================

// CreatePeriod implements payroll.PayrollRepository.
func (r *payrollRepository) CreatePeriod(ctx context.Context, period payroll.Period) (payroll.Period, error) {
	q := GetQuerier(ctx, r.db)

	if period.Status == "" {
		period.Status = payroll.PeriodStatusDraft
	}

	query := `
		INSERT INTO payroll_periods (organization_id, month, year, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query, period.OrganizationID, period.Month, period.Year, period.Status).
		Scan(&period.ID, &period.CreatedAt, &period.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "uk_payroll_period") {
			return payroll.Period{}, payroll.ErrPeriodAlreadyExists
		}
		return payroll.Period{}, fmt.Errorf("failed to create payroll period: %w", err)
	}

	return period, nil
}

// GetPeriodByID implements payroll.PayrollRepository.
func (r *payrollRepository) GetPeriodByID(ctx context.Context, id string, organizationID string) (payroll.Period, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + periodColumns + `
		FROM payroll_periods
		WHERE id = $1 AND organization_id = $2
	`

	p, err := scanPeriod(q.QueryRow(ctx, query, id, organizationID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.Period{}, payroll.ErrPeriodNotFound
		}
		return payroll.Period{}, fmt.Errorf("failed to get payroll period: %w", err)
	}

	return p, nil
}

// GetPeriodForShare implements payroll.PayrollRepository.
func (r *payrollRepository) GetPeriodForShare(ctx context.Context, id string) (payroll.Period, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + periodColumns + `
		FROM payroll_periods
		WHERE id = $1
		FOR SHARE
	`

	p, err := scanPeriod(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.Period{}, payroll.ErrPeriodNotFound
		}
		return payroll.Period{}, fmt.Errorf("failed to lock payroll period: %w", err)
	}

	return p, nil
}

// ListPeriods implements payroll.PayrollRepository.
func (r *payrollRepository) ListPeriods(ctx context.Context, organizationID string) ([]payroll.Period, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + periodColumns + `
		FROM payroll_periods
		WHERE organization_id = $1
		ORDER BY year DESC, month DESC
	`

	rows, err := q.Query(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll periods: %w", err)
	}
	defer rows.Close()

	var periods []payroll.Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll period: %w", err)
		}
		periods = append(periods, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payroll periods: %w", err)
	}

	return periods, nil
}

// TransitionPeriod implements payroll.PayrollRepository.
func (r *payrollRepository) TransitionPeriod(ctx context.Context, id string, organizationID string, from, to payroll.PeriodStatus, by string, at time.Time) (payroll.Period, error) {
	q := GetQuerier(ctx, r.db)

	var stamp string
	switch to {
	case payroll.PeriodStatusLocked:
		stamp = "locked_at = $5, locked_by = $6"
	case payroll.PeriodStatusFinalized:
		stamp = "finalized_at = $5, finalized_by = $6"
	default:
		return payroll.Period{}, payroll.ErrInvalidPeriodState
	}

	query := `
		UPDATE payroll_periods
		SET status = $4, ` + stamp + `, updated_at = $5
		WHERE id = $1 AND organization_id = $2 AND status = $3
		RETURNING ` + periodColumns

	p, err := scanPeriod(q.QueryRow(ctx, query, id, organizationID, from, to, at, by))
	if err != nil {
		if err == pgx.ErrNoRows {
			// Distinguish a missing period from one that already moved on.
			if _, getErr := r.GetPeriodByID(ctx, id, organizationID); getErr != nil {
				return payroll.Period{}, getErr
			}
			return payroll.Period{}, payroll.ErrInvalidPeriodState
		}
		return payroll.Period{}, fmt.Errorf("failed to transition payroll period: %w", err)
	}

	return p, nil
}

// ========================================
// RUNS
// ========================================

// CreateRun implements payroll.PayrollRepository.
func (r *payrollRepository) CreateRun(ctx context.Context, run payroll.Run) (payroll.Run, error) {
	q := GetQuerier(ctx, r.db)

	if run.ComputedAt.IsZero() {
		run.ComputedAt = time.Now()
	}

	query := `
		INSERT INTO payroll_runs (
			period_id, organization_id, employee_id, compensation_id, work_state,
			line_items, gross_earnings, total_deductions, net_pay, employer_cost,
			basis, computed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`

	err := q.QueryRow(ctx, query,
		run.PeriodID, run.OrganizationID, run.EmployeeID, run.CompensationID, run.WorkState,
		run.LineItems, run.GrossEarnings, run.TotalDeductions, run.NetPay, run.EmployerCost,
		run.Basis, run.ComputedAt,
	).Scan(&run.ID)
	if err != nil {
		if isUniqueViolation(err, "uk_payroll_run") {
			return payroll.Run{}, payroll.ErrRunAlreadyExists
		}
		return payroll.Run{}, fmt.Errorf("failed to create payroll run: %w", err)
	}

	return run, nil
}

// DeleteRun implements payroll.PayrollRepository.
func (r *payrollRepository) DeleteRun(ctx context.Context, periodID string, employeeID string) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `DELETE FROM payroll_runs WHERE period_id = $1 AND employee_id = $2`, periodID, employeeID)
	if err != nil {
		return fmt.Errorf("failed to delete payroll run: %w", err)
	}

	return nil
}

const runSelect = `
	SELECT pr.id, pr.period_id, pr.organization_id, pr.employee_id, pr.compensation_id,
		   pr.work_state, pr.line_items, pr.gross_earnings, pr.total_deductions,
		   pr.net_pay, pr.employer_cost, pr.basis, pr.computed_at,
		   e.employee_code, e.full_name
	FROM payroll_runs pr
	JOIN employees e ON e.id = pr.employee_id`

func scanRun(row pgx.Row) (payroll.Run, error) {
	var run payroll.Run
	err := row.Scan(
		&run.ID, &run.PeriodID, &run.OrganizationID, &run.EmployeeID, &run.CompensationID,
		&run.WorkState, &run.LineItems, &run.GrossEarnings, &run.TotalDeductions,
		&run.NetPay, &run.EmployerCost, &run.Basis, &run.ComputedAt,
		&run.EmployeeCode, &run.EmployeeName,
	)
	return run, err
}

// GetRun implements payroll.PayrollRepository.
func (r *payrollRepository) GetRun(ctx context.Context, periodID string, employeeID string) (payroll.Run, error) {
	q := GetQuerier(ctx, r.db)

	run, err := scanRun(q.QueryRow(ctx, runSelect+`
		WHERE pr.period_id = $1 AND pr.employee_id = $2
	`, periodID, employeeID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.Run{}, payroll.ErrRunNotFound
		}
		return payroll.Run{}, fmt.Errorf("failed to get payroll run: %w", err)
	}

	return run, nil
}

// ListRuns implements payroll.PayrollRepository.
func (r *payrollRepository) ListRuns(ctx context.Context, periodID string) ([]payroll.Run, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, runSelect+`
		WHERE pr.period_id = $1
		ORDER BY e.employee_code ASC
	`, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll runs: %w", err)
	}
	defer rows.Close()

	var runs []payroll.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payroll runs: %w", err)
	}

	return runs, nil
}
