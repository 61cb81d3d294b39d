package ailedger

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
)

type LedgerService interface {
	// Policy lifecycle
	CreatePolicy(ctx context.Context, req CreatePolicyRequest) (Policy, error)
	ApprovePolicy(ctx context.Context, organizationID, id, userID string) (Policy, error)
	// ActivatePolicy retires the current active policy in the same transaction
	ActivatePolicy(ctx context.Context, organizationID, id, userID string) (Policy, error)
	RetirePolicy(ctx context.Context, organizationID, id, userID string) (Policy, error)
	GetActivePolicy(ctx context.Context, organizationID string) (Policy, error)
	ListPolicies(ctx context.Context, organizationID string) ([]Policy, error)

	// Runs
	StartRun(ctx context.Context, req StartRunRequest) (Run, error)
	RecordDecisions(ctx context.Context, req RecordDecisionsRequest) ([]Decision, error)
	CompleteRun(ctx context.Context, req CompleteRunRequest) (Run, error)
	FailRun(ctx context.Context, req FailRunRequest) (Run, error)
	// ExpireStaleRuns fails runs that have been running longer than timeout
	ExpireStaleRuns(ctx context.Context, timeout time.Duration) (int64, error)

	// Review
	ListReviewQueue(ctx context.Context, organizationID string) ([]Decision, error)
	ReviewDecision(ctx context.Context, req ReviewDecisionRequest) (Decision, error)
	// PromoteDecision turns a reviewed and approved monthly summary into an
	// ai_approved monthly override
	PromoteDecision(ctx context.Context, organizationID, decisionID, userID string) (attendance.MonthlyOverride, error)
}
