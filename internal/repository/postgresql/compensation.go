package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/compensation"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/utils"
	"github.com/jackc/pgx/v5"
)

type compensationRepository struct {
	db *database.DB
}

func NewCompensationRepository(db *database.DB) compensation.CompensationRepository {
	return &compensationRepository{db: db}
}

// Create implements compensation.CompensationRepository.
func (r *compensationRepository) Create(ctx context.Context, c compensation.EmployeeCompensation) (compensation.EmployeeCompensation, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO employee_compensations (
			organization_id, employee_id, effective_from, effective_to, annual_ctc, components
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		c.OrganizationID, c.EmployeeID, utils.DateOf(c.EffectiveFrom), c.EffectiveTo, c.AnnualCTC, c.Components,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return compensation.EmployeeCompensation{}, fmt.Errorf("failed to create compensation: %w", err)
	}

	return c, nil
}

// GetEffectiveOn implements compensation.CompensationRepository.
func (r *compensationRepository) GetEffectiveOn(ctx context.Context, employeeID string, date time.Time) (*compensation.EmployeeCompensation, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, organization_id, employee_id, effective_from, effective_to,
			   annual_ctc, components, created_at
		FROM employee_compensations
		WHERE employee_id = $1
		  AND effective_from <= $2
		  AND (effective_to IS NULL OR effective_to >= $2)
		ORDER BY effective_from DESC, created_at DESC
		LIMIT 1
	`

	var c compensation.EmployeeCompensation
	err := q.QueryRow(ctx, query, employeeID, utils.DateOf(date)).Scan(
		&c.ID, &c.OrganizationID, &c.EmployeeID, &c.EffectiveFrom, &c.EffectiveTo,
		&c.AnnualCTC, &c.Components, &c.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get effective compensation: %w", err)
	}

	return &c, nil
}

// ListByEmployee implements compensation.CompensationRepository.
func (r *compensationRepository) ListByEmployee(ctx context.Context, employeeID string, organizationID string) ([]compensation.EmployeeCompensation, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, organization_id, employee_id, effective_from, effective_to,
			   annual_ctc, components, created_at
		FROM employee_compensations
		WHERE employee_id = $1 AND organization_id = $2
		ORDER BY effective_from DESC, created_at DESC
	`

	rows, err := q.Query(ctx, query, employeeID, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list compensations: %w", err)
	}
	defer rows.Close()

	var out []compensation.EmployeeCompensation
	for rows.Next() {
		var c compensation.EmployeeCompensation
		if err := rows.Scan(
			&c.ID, &c.OrganizationID, &c.EmployeeID, &c.EffectiveFrom, &c.EffectiveTo,
			&c.AnnualCTC, &c.Components, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan compensation: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating compensations: %w", err)
	}

	return out, nil
}

// ListDefinitions implements compensation.CompensationRepository.
func (r *compensationRepository) ListDefinitions(ctx context.Context) (map[string]compensation.ComponentDefinition, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT code, name, type FROM pay_component_definitions`)
	if err != nil {
		return nil, fmt.Errorf("failed to list component definitions: %w", err)
	}
	defer rows.Close()

	definitions := make(map[string]compensation.ComponentDefinition)
	for rows.Next() {
		var d compensation.ComponentDefinition
		if err := rows.Scan(&d.Code, &d.Name, &d.Type); err != nil {
			return nil, fmt.Errorf("failed to scan component definition: %w", err)
		}
		definitions[compensation.NormalizeCode(d.Code)] = d
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating component definitions: %w", err)
	}

	return definitions, nil
}
