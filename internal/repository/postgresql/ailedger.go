package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/ailedger"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const (
	policyColumns = `
		id, organization_id, version, name, instructions, confidence_threshold, status,
		created_by, approved_by, approved_at, activated_at, retired_at, created_at`
	aiRunColumns = `
		id, organization_id, policy_id, policy_version, kind, window_start, window_end,
		input_snapshot, input_hash, output_summary, status, failure_reason, started_at, finished_at`
	decisionColumns = `
		id, run_id, organization_id, employee_id, attendance_record_id, decision_type,
		payload, confidence, flagged, human_review_required,
		reviewed_by, reviewed_at, approved, review_note, promoted_at, created_at`
)

type ledgerRepository struct {
	db *database.DB
}

func NewLedgerRepository(db *database.DB) ailedger.LedgerRepository {
	return &ledgerRepository{db: db}
}

func scanPolicy(row pgx.Row) (ailedger.Policy, error) {
	var p ailedger.Policy
	err := row.Scan(
		&p.ID, &p.OrganizationID, &p.Version, &p.Name, &p.Instructions, &p.ConfidenceThreshold, &p.Status,
		&p.CreatedBy, &p.ApprovedBy, &p.ApprovedAt, &p.ActivatedAt, &p.RetiredAt, &p.CreatedAt,
	)
	return p, err
}

func scanAIRun(row pgx.Row) (ailedger.Run, error) {
	var r ailedger.Run
	err := row.Scan(
		&r.ID, &r.OrganizationID, &r.PolicyID, &r.PolicyVersion, &r.Kind, &r.WindowStart, &r.WindowEnd,
		&r.InputSnapshot, &r.InputHash, &r.OutputSummary, &r.Status, &r.FailureReason, &r.StartedAt, &r.FinishedAt,
	)
	return r, err
}

func scanDecision(row pgx.Row) (ailedger.Decision, error) {
	var d ailedger.Decision
	err := row.Scan(
		&d.ID, &d.RunID, &d.OrganizationID, &d.EmployeeID, &d.AttendanceRecordID, &d.DecisionType,
		&d.Payload, &d.Confidence, &d.Flagged, &d.HumanReviewRequired,
		&d.ReviewedBy, &d.ReviewedAt, &d.Approved, &d.ReviewNote, &d.PromotedAt, &d.CreatedAt,
	)
	return d, err
}

// ========================================
// POLICIES
// ========================================

// CreatePolicy implements ailedger.LedgerRepository.
func (r *ledgerRepository) CreatePolicy(ctx context.Context, policy ailedger.Policy) (ailedger.Policy, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO ai_policies (
			organization_id, version, name, instructions, confidence_threshold, status, created_by
		)
		SELECT $1, COALESCE(MAX(version), 0) + 1, $2, $3, $4, 'draft', $5
		FROM ai_policies
		WHERE organization_id = $1
		RETURNING ` + policyColumns

	p, err := scanPolicy(q.QueryRow(ctx, query,
		policy.OrganizationID, policy.Name, policy.Instructions, policy.ConfidenceThreshold, policy.CreatedBy,
	))
	if err != nil {
		if isUniqueViolation(err, "uk_ai_policy_version") {
			return ailedger.Policy{}, fmt.Errorf("concurrent policy version allocation, retry: %w", err)
		}
		return ailedger.Policy{}, fmt.Errorf("failed to create ai policy: %w", err)
	}

	return p, nil
}

// GetPolicyByID implements ailedger.LedgerRepository.
func (r *ledgerRepository) GetPolicyByID(ctx context.Context, id string, organizationID string) (ailedger.Policy, error) {
	q := GetQuerier(ctx, r.db)

	p, err := scanPolicy(q.QueryRow(ctx, `SELECT `+policyColumns+`
		FROM ai_policies
		WHERE id = $1 AND organization_id = $2
	`, id, organizationID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return ailedger.Policy{}, ailedger.ErrPolicyNotFound
		}
		return ailedger.Policy{}, fmt.Errorf("failed to get ai policy: %w", err)
	}

	return p, nil
}

// GetActivePolicy implements ailedger.LedgerRepository.
func (r *ledgerRepository) GetActivePolicy(ctx context.Context, organizationID string) (ailedger.Policy, error) {
	q := GetQuerier(ctx, r.db)

	p, err := scanPolicy(q.QueryRow(ctx, `SELECT `+policyColumns+`
		FROM ai_policies
		WHERE organization_id = $1 AND status = 'active'
	`, organizationID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return ailedger.Policy{}, ailedger.ErrNoActivePolicy
		}
		return ailedger.Policy{}, fmt.Errorf("failed to get active ai policy: %w", err)
	}

	return p, nil
}

// ListPolicies implements ailedger.LedgerRepository.
func (r *ledgerRepository) ListPolicies(ctx context.Context, organizationID string) ([]ailedger.Policy, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+policyColumns+`
		FROM ai_policies
		WHERE organization_id = $1
		ORDER BY version DESC
	`, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ai policies: %w", err)
	}
	defer rows.Close()

	var policies []ailedger.Policy
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ai policy: %w", err)
		}
		policies = append(policies, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ai policies: %w", err)
	}

	return policies, nil
}

// UpdatePolicyStatus implements ailedger.LedgerRepository.
func (r *ledgerRepository) UpdatePolicyStatus(ctx context.Context, id string, organizationID string, from, to ailedger.PolicyStatus, by *string, at time.Time) (ailedger.Policy, error) {
	q := GetQuerier(ctx, r.db)

	args := []any{id, organizationID, from, to, at}
	var stamp string
	switch to {
	case ailedger.PolicyStatusApproved:
		stamp = "approved_at = $5, approved_by = $6"
		args = append(args, by)
	case ailedger.PolicyStatusActive:
		stamp = "activated_at = $5"
	case ailedger.PolicyStatusRetired:
		stamp = "retired_at = $5"
	default:
		return ailedger.Policy{}, ailedger.ErrInvalidPolicyTransition
	}

	query := `
		UPDATE ai_policies
		SET status = $4, ` + stamp + `
		WHERE id = $1 AND organization_id = $2 AND status = $3
		RETURNING ` + policyColumns

	p, err := scanPolicy(q.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			if _, getErr := r.GetPolicyByID(ctx, id, organizationID); getErr != nil {
				return ailedger.Policy{}, getErr
			}
			return ailedger.Policy{}, ailedger.ErrInvalidPolicyTransition
		}
		if isUniqueViolation(err, "uk_ai_policy_active") {
			return ailedger.Policy{}, ailedger.ErrInvalidPolicyTransition
		}
		return ailedger.Policy{}, fmt.Errorf("failed to update ai policy status: %w", err)
	}

	return p, nil
}

// RetireActivePolicies implements ailedger.LedgerRepository.
func (r *ledgerRepository) RetireActivePolicies(ctx context.Context, organizationID string, at time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE ai_policies
		SET status = 'retired', retired_at = $2
		WHERE organization_id = $1 AND status = 'active'
	`, organizationID, at)
	if err != nil {
		return 0, fmt.Errorf("failed to retire active ai policies: %w", err)
	}

	return tag.RowsAffected(), nil
}

// ========================================
// RUNS
// ========================================

// CreateRun implements ailedger.LedgerRepository.
func (r *ledgerRepository) CreateRun(ctx context.Context, run ailedger.Run) (ailedger.Run, error) {
	q := GetQuerier(ctx, r.db)

	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	query := `
		INSERT INTO ai_runs (
			organization_id, policy_id, policy_version, kind, window_start, window_end,
			input_snapshot, input_hash, status, started_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'running', $9)
		RETURNING ` + aiRunColumns

	created, err := scanAIRun(q.QueryRow(ctx, query,
		run.OrganizationID, run.PolicyID, run.PolicyVersion, run.Kind, run.WindowStart, run.WindowEnd,
		run.InputSnapshot, run.InputHash, run.StartedAt,
	))
	if err != nil {
		return ailedger.Run{}, fmt.Errorf("failed to create ai run: %w", err)
	}

	return created, nil
}

// GetRunByID implements ailedger.LedgerRepository.
func (r *ledgerRepository) GetRunByID(ctx context.Context, id string, organizationID string) (ailedger.Run, error) {
	q := GetQuerier(ctx, r.db)

	run, err := scanAIRun(q.QueryRow(ctx, `SELECT `+aiRunColumns+`
		FROM ai_runs
		WHERE id = $1 AND organization_id = $2
	`, id, organizationID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return ailedger.Run{}, ailedger.ErrRunNotFound
		}
		return ailedger.Run{}, fmt.Errorf("failed to get ai run: %w", err)
	}

	return run, nil
}

// FinishRun implements ailedger.LedgerRepository.
func (r *ledgerRepository) FinishRun(ctx context.Context, id string, organizationID string, status ailedger.RunStatus, summary json.RawMessage, reason *string, at time.Time) (ailedger.Run, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE ai_runs
		SET status = $3, output_summary = $4, failure_reason = $5, finished_at = $6
		WHERE id = $1 AND organization_id = $2 AND status = 'running'
		RETURNING ` + aiRunColumns

	run, err := scanAIRun(q.QueryRow(ctx, query, id, organizationID, status, summary, reason, at))
	if err != nil {
		if err == pgx.ErrNoRows {
			if _, getErr := r.GetRunByID(ctx, id, organizationID); getErr != nil {
				return ailedger.Run{}, getErr
			}
			return ailedger.Run{}, ailedger.ErrRunNotRunning
		}
		return ailedger.Run{}, fmt.Errorf("failed to finish ai run: %w", err)
	}

	return run, nil
}

// FailRunsStartedBefore implements ailedger.LedgerRepository.
func (r *ledgerRepository) FailRunsStartedBefore(ctx context.Context, before time.Time, reason string, at time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE ai_runs
		SET status = 'failed', failure_reason = $2, finished_at = $3
		WHERE status = 'running' AND started_at < $1
	`, before, reason, at)
	if err != nil {
		return 0, fmt.Errorf("failed to expire stale ai runs: %w", err)
	}

	return tag.RowsAffected(), nil
}

// ========================================
// DECISIONS
// ========================================

// CreateDecisions implements ailedger.LedgerRepository.
func (r *ledgerRepository) CreateDecisions(ctx context.Context, decisions []ailedger.Decision) ([]ailedger.Decision, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO ai_decisions (
			run_id, organization_id, employee_id, attendance_record_id, decision_type,
			payload, confidence, flagged, human_review_required
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + decisionColumns

	created := make([]ailedger.Decision, 0, len(decisions))
	for _, d := range decisions {
		out, err := scanDecision(q.QueryRow(ctx, query,
			d.RunID, d.OrganizationID, d.EmployeeID, d.AttendanceRecordID, d.DecisionType,
			d.Payload, d.Confidence, d.Flagged, d.HumanReviewRequired,
		))
		if err != nil {
			return nil, fmt.Errorf("failed to create ai decision: %w", err)
		}
		created = append(created, out)
	}

	return created, nil
}

// GetDecisionByID implements ailedger.LedgerRepository.
func (r *ledgerRepository) GetDecisionByID(ctx context.Context, id string, organizationID string) (ailedger.Decision, error) {
	q := GetQuerier(ctx, r.db)

	d, err := scanDecision(q.QueryRow(ctx, `SELECT `+decisionColumns+`
		FROM ai_decisions
		WHERE id = $1 AND organization_id = $2
	`, id, organizationID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return ailedger.Decision{}, ailedger.ErrDecisionNotFound
		}
		return ailedger.Decision{}, fmt.Errorf("failed to get ai decision: %w", err)
	}

	return d, nil
}

// ListDecisionsByRun implements ailedger.LedgerRepository.
func (r *ledgerRepository) ListDecisionsByRun(ctx context.Context, runID string, organizationID string) ([]ailedger.Decision, error) {
	return r.listDecisions(ctx, `SELECT `+decisionColumns+`
		FROM ai_decisions
		WHERE run_id = $1 AND organization_id = $2
		ORDER BY created_at ASC
	`, runID, organizationID)
}

// ListReviewQueue implements ailedger.LedgerRepository.
func (r *ledgerRepository) ListReviewQueue(ctx context.Context, organizationID string) ([]ailedger.Decision, error) {
	return r.listDecisions(ctx, `SELECT `+decisionColumns+`
		FROM ai_decisions
		WHERE organization_id = $1
		  AND human_review_required
		  AND reviewed_at IS NULL
		ORDER BY created_at ASC
	`, organizationID)
}

func (r *ledgerRepository) listDecisions(ctx context.Context, query string, args ...any) ([]ailedger.Decision, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list ai decisions: %w", err)
	}
	defer rows.Close()

	var decisions []ailedger.Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ai decision: %w", err)
		}
		decisions = append(decisions, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ai decisions: %w", err)
	}

	return decisions, nil
}

// MarkReviewed implements ailedger.LedgerRepository.
func (r *ledgerRepository) MarkReviewed(ctx context.Context, decision ailedger.Decision) (ailedger.Decision, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE ai_decisions
		SET reviewed_by = $3, reviewed_at = $4, approved = $5, review_note = $6
		WHERE id = $1 AND organization_id = $2 AND reviewed_at IS NULL
		RETURNING ` + decisionColumns

	d, err := scanDecision(q.QueryRow(ctx, query,
		decision.ID, decision.OrganizationID,
		decision.ReviewedBy, decision.ReviewedAt, decision.Approved, decision.ReviewNote,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			if _, getErr := r.GetDecisionByID(ctx, decision.ID, decision.OrganizationID); getErr != nil {
				return ailedger.Decision{}, getErr
			}
			return ailedger.Decision{}, ailedger.ErrDecisionAlreadyReviewed
		}
		return ailedger.Decision{}, fmt.Errorf("failed to review ai decision: %w", err)
	}

	return d, nil
}

// MarkPromoted implements ailedger.LedgerRepository.
func (r *ledgerRepository) MarkPromoted(ctx context.Context, id string, organizationID string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE ai_decisions
		SET promoted_at = $3
		WHERE id = $1 AND organization_id = $2 AND promoted_at IS NULL
	`, id, organizationID, at)
	if err != nil {
		return fmt.Errorf("failed to mark ai decision promoted: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, getErr := r.GetDecisionByID(ctx, id, organizationID); getErr != nil {
			return getErr
		}
		return ailedger.ErrDecisionAlreadyPromoted
	}

	return nil
}
