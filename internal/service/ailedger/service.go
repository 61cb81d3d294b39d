package ailedger

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/ailedger"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"golang.org/x/crypto/blake2b"
)

const DefaultConfidenceThreshold = 0.8

type LedgerServiceImpl struct {
	db                  database.Transactor
	ledgerRepo          ailedger.LedgerRepository
	employeeRepo        employee.EmployeeRepository
	attendanceService   attendance.Service
	confidenceThreshold float64
}

func NewLedgerService(
	db database.Transactor,
	ledgerRepo ailedger.LedgerRepository,
	employeeRepo employee.EmployeeRepository,
	attendanceService attendance.Service,
	confidenceThreshold float64,
) ailedger.LedgerService {
	if confidenceThreshold <= 0 || confidenceThreshold > 1 {
		confidenceThreshold = DefaultConfidenceThreshold
	}
	return &LedgerServiceImpl{
		db:                  db,
		ledgerRepo:          ledgerRepo,
		employeeRepo:        employeeRepo,
		attendanceService:   attendanceService,
		confidenceThreshold: confidenceThreshold,
	}
}

// ========== POLICIES ==========

// CreatePolicy implements ailedger.LedgerService.
func (s *LedgerServiceImpl) CreatePolicy(ctx context.Context, req ailedger.CreatePolicyRequest) (ailedger.Policy, error) {
	if err := req.Validate(); err != nil {
		return ailedger.Policy{}, err
	}

	var createdBy *string
	if req.CreatedBy != "" {
		createdBy = &req.CreatedBy
	}

	policy, err := s.ledgerRepo.CreatePolicy(ctx, ailedger.Policy{
		OrganizationID:      req.OrganizationID,
		Name:                req.Name,
		Instructions:        req.Instructions,
		ConfidenceThreshold: req.ConfidenceThreshold,
		Status:              ailedger.PolicyStatusDraft,
		CreatedBy:           createdBy,
	})
	if err != nil {
		return ailedger.Policy{}, fmt.Errorf("failed to create ai policy: %w", err)
	}
	return policy, nil
}

// ApprovePolicy implements ailedger.LedgerService.
func (s *LedgerServiceImpl) ApprovePolicy(ctx context.Context, organizationID, id, userID string) (ailedger.Policy, error) {
	return s.transitionPolicy(ctx, organizationID, id, userID, ailedger.PolicyStatusApproved)
}

// ActivatePolicy implements ailedger.LedgerService.
func (s *LedgerServiceImpl) ActivatePolicy(ctx context.Context, organizationID, id, userID string) (ailedger.Policy, error) {
	var activated ailedger.Policy
	err := s.db.WithinTransaction(ctx, func(ctx context.Context) error {
		policy, err := s.ledgerRepo.GetPolicyByID(ctx, id, organizationID)
		if err != nil {
			return err
		}
		if !policy.Status.CanTransitionTo(ailedger.PolicyStatusActive) {
			return fmt.Errorf("%w: %s to %s", ailedger.ErrInvalidPolicyTransition, policy.Status, ailedger.PolicyStatusActive)
		}

		now := time.Now().UTC()
		retired, err := s.ledgerRepo.RetireActivePolicies(ctx, organizationID, now)
		if err != nil {
			return fmt.Errorf("failed to retire active ai policy: %w", err)
		}

		activated, err = s.ledgerRepo.UpdatePolicyStatus(ctx, id, organizationID, policy.Status, ailedger.PolicyStatusActive, &userID, now)
		if err != nil {
			return err
		}

		slog.Info("ai policy activated", "organization_id", organizationID, "policy_id", id, "version", activated.Version, "retired", retired)
		return nil
	})
	if err != nil {
		return ailedger.Policy{}, err
	}
	return activated, nil
}

// RetirePolicy implements ailedger.LedgerService.
func (s *LedgerServiceImpl) RetirePolicy(ctx context.Context, organizationID, id, userID string) (ailedger.Policy, error) {
	return s.transitionPolicy(ctx, organizationID, id, userID, ailedger.PolicyStatusRetired)
}

func (s *LedgerServiceImpl) transitionPolicy(ctx context.Context, organizationID, id, userID string, to ailedger.PolicyStatus) (ailedger.Policy, error) {
	policy, err := s.ledgerRepo.GetPolicyByID(ctx, id, organizationID)
	if err != nil {
		return ailedger.Policy{}, err
	}
	if !policy.Status.CanTransitionTo(to) {
		return ailedger.Policy{}, fmt.Errorf("%w: %s to %s", ailedger.ErrInvalidPolicyTransition, policy.Status, to)
	}
	return s.ledgerRepo.UpdatePolicyStatus(ctx, id, organizationID, policy.Status, to, &userID, time.Now().UTC())
}

// GetActivePolicy implements ailedger.LedgerService.
func (s *LedgerServiceImpl) GetActivePolicy(ctx context.Context, organizationID string) (ailedger.Policy, error) {
	return s.ledgerRepo.GetActivePolicy(ctx, organizationID)
}

// ListPolicies implements ailedger.LedgerService.
func (s *LedgerServiceImpl) ListPolicies(ctx context.Context, organizationID string) ([]ailedger.Policy, error) {
	policies, err := s.ledgerRepo.ListPolicies(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ai policies: %w", err)
	}
	return policies, nil
}

// ========== RUNS ==========

// StartRun implements ailedger.LedgerService.
func (s *LedgerServiceImpl) StartRun(ctx context.Context, req ailedger.StartRunRequest) (ailedger.Run, error) {
	if err := req.Validate(); err != nil {
		return ailedger.Run{}, err
	}

	policy, err := s.ledgerRepo.GetActivePolicy(ctx, req.OrganizationID)
	if err != nil {
		return ailedger.Run{}, err
	}

	snapshot, hash, err := HashSnapshot(req.InputSnapshot)
	if err != nil {
		return ailedger.Run{}, err
	}

	start, _ := time.Parse("2006-01-02", req.WindowStart)
	end, _ := time.Parse("2006-01-02", req.WindowEnd)

	run, err := s.ledgerRepo.CreateRun(ctx, ailedger.Run{
		OrganizationID: req.OrganizationID,
		PolicyID:       policy.ID,
		PolicyVersion:  policy.Version,
		Kind:           req.Kind,
		WindowStart:    start,
		WindowEnd:      end,
		InputSnapshot:  snapshot,
		InputHash:      hash,
		Status:         ailedger.RunStatusRunning,
		StartedAt:      time.Now().UTC(),
	})
	if err != nil {
		return ailedger.Run{}, fmt.Errorf("failed to create ai run: %w", err)
	}
	return run, nil
}

// HashSnapshot compacts a JSON snapshot and returns it with its hex BLAKE2b-256
// digest, so equal inputs hash equally regardless of formatting.
func HashSnapshot(raw json.RawMessage) (json.RawMessage, string, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, "", fmt.Errorf("failed to compact input snapshot: %w", err)
	}
	sum := blake2b.Sum256(buf.Bytes())
	return json.RawMessage(buf.Bytes()), hex.EncodeToString(sum[:]), nil
}

// RecordDecisions implements ailedger.LedgerService.
func (s *LedgerServiceImpl) RecordDecisions(ctx context.Context, req ailedger.RecordDecisionsRequest) ([]ailedger.Decision, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var created []ailedger.Decision
	err := s.db.WithinTransaction(ctx, func(ctx context.Context) error {
		run, err := s.ledgerRepo.GetRunByID(ctx, req.RunID, req.OrganizationID)
		if err != nil {
			return err
		}
		if run.Status != ailedger.RunStatusRunning {
			return ailedger.ErrRunNotRunning
		}

		policy, err := s.ledgerRepo.GetPolicyByID(ctx, run.PolicyID, req.OrganizationID)
		if err != nil {
			return fmt.Errorf("failed to get run policy: %w", err)
		}
		threshold := policy.Threshold(s.confidenceThreshold)

		decisions := make([]ailedger.Decision, 0, len(req.Decisions))
		for _, in := range req.Decisions {
			emp, err := s.employeeRepo.GetByID(ctx, in.EmployeeID)
			if err != nil {
				return err
			}
			if emp.OrganizationID != req.OrganizationID {
				return employee.ErrEmployeeNotFound
			}

			decisions = append(decisions, ailedger.Decision{
				RunID:               run.ID,
				OrganizationID:      run.OrganizationID,
				EmployeeID:          emp.ID,
				AttendanceRecordID:  in.AttendanceRecordID,
				DecisionType:        in.DecisionType,
				Payload:             in.Payload,
				Confidence:          in.Confidence,
				Flagged:             in.Flagged,
				HumanReviewRequired: RequiresReview(in.Flagged, in.Confidence, threshold),
			})
		}

		created, err = s.ledgerRepo.CreateDecisions(ctx, decisions)
		if err != nil {
			return fmt.Errorf("failed to create ai decisions: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// RequiresReview reports whether a decision must go through the review queue.
func RequiresReview(flagged bool, confidence, threshold float64) bool {
	return flagged || confidence < threshold
}

// CompleteRun implements ailedger.LedgerService.
func (s *LedgerServiceImpl) CompleteRun(ctx context.Context, req ailedger.CompleteRunRequest) (ailedger.Run, error) {
	if err := req.Validate(); err != nil {
		return ailedger.Run{}, err
	}

	run, err := s.ledgerRepo.FinishRun(ctx, req.RunID, req.OrganizationID, ailedger.RunStatusCompleted, req.OutputSummary, nil, time.Now().UTC())
	if err != nil {
		return ailedger.Run{}, err
	}
	return run, nil
}

// FailRun implements ailedger.LedgerService.
func (s *LedgerServiceImpl) FailRun(ctx context.Context, req ailedger.FailRunRequest) (ailedger.Run, error) {
	if err := req.Validate(); err != nil {
		return ailedger.Run{}, err
	}

	run, err := s.ledgerRepo.FinishRun(ctx, req.RunID, req.OrganizationID, ailedger.RunStatusFailed, nil, &req.Reason, time.Now().UTC())
	if err != nil {
		return ailedger.Run{}, err
	}
	slog.Warn("ai run failed", "run_id", run.ID, "reason", req.Reason)
	return run, nil
}

// ExpireStaleRuns implements ailedger.LedgerService.
func (s *LedgerServiceImpl) ExpireStaleRuns(ctx context.Context, timeout time.Duration) (int64, error) {
	now := time.Now().UTC()
	reason := fmt.Sprintf("run exceeded timeout of %s", timeout)

	expired, err := s.ledgerRepo.FailRunsStartedBefore(ctx, now.Add(-timeout), reason, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire stale ai runs: %w", err)
	}
	if expired > 0 {
		slog.Info("expired stale ai runs", "count", expired, "timeout", timeout)
	}
	return expired, nil
}

// ========== REVIEW ==========

// ListReviewQueue implements ailedger.LedgerService.
func (s *LedgerServiceImpl) ListReviewQueue(ctx context.Context, organizationID string) ([]ailedger.Decision, error) {
	queue, err := s.ledgerRepo.ListReviewQueue(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list review queue: %w", err)
	}
	return queue, nil
}

// ReviewDecision implements ailedger.LedgerService.
func (s *LedgerServiceImpl) ReviewDecision(ctx context.Context, req ailedger.ReviewDecisionRequest) (ailedger.Decision, error) {
	if err := req.Validate(); err != nil {
		return ailedger.Decision{}, err
	}

	decision, err := s.ledgerRepo.GetDecisionByID(ctx, req.DecisionID, req.OrganizationID)
	if err != nil {
		return ailedger.Decision{}, err
	}
	if decision.IsReviewed() {
		return ailedger.Decision{}, ailedger.ErrDecisionAlreadyReviewed
	}

	now := time.Now().UTC()
	decision.ReviewedBy = &req.ReviewerID
	decision.ReviewedAt = &now
	decision.Approved = *req.Approve
	decision.ReviewNote = req.Note

	return s.ledgerRepo.MarkReviewed(ctx, decision)
}

// PromoteDecision implements ailedger.LedgerService.
func (s *LedgerServiceImpl) PromoteDecision(ctx context.Context, organizationID, decisionID, userID string) (attendance.MonthlyOverride, error) {
	var override attendance.MonthlyOverride
	err := s.db.WithinTransaction(ctx, func(ctx context.Context) error {
		decision, err := s.ledgerRepo.GetDecisionByID(ctx, decisionID, organizationID)
		if err != nil {
			return err
		}
		if !decision.IsReviewed() || !decision.Approved {
			return ailedger.ErrDecisionNotApproved
		}
		if decision.PromotedAt != nil {
			return ailedger.ErrDecisionAlreadyPromoted
		}

		summary, err := decision.MonthlySummary()
		if err != nil {
			return err
		}

		approvedBy := userID
		if decision.ReviewedBy != nil {
			approvedBy = *decision.ReviewedBy
		}
		override, err = s.attendanceService.UpsertOverride(ctx, attendance.UpsertOverrideRequest{
			OrganizationID: organizationID,
			EmployeeID:     decision.EmployeeID,
			Month:          summary.Month,
			Year:           summary.Year,
			PresentDays:    summary.PresentDays,
			HalfDays:       summary.HalfDays,
			AbsentDays:     summary.AbsentDays,
			LeaveDays:      summary.LeaveDays,
			LateCount:      summary.LateCount,
			Source:         attendance.OverrideSourceAIApproved,
			ApprovedBy:     &approvedBy,
			DecisionID:     &decision.ID,
			Reason:         summary.Reason,
		})
		if err != nil {
			return err
		}

		if err := s.ledgerRepo.MarkPromoted(ctx, decision.ID, organizationID, time.Now().UTC()); err != nil {
			return err
		}

		slog.Info("ai decision promoted", "decision_id", decision.ID, "employee_id", decision.EmployeeID, "promoted_by", userID)
		return nil
	})
	if err != nil {
		return attendance.MonthlyOverride{}, err
	}
	return override, nil
}
