package ailedger

import (
	"context"
	"encoding/json"
	"time"
)

// LedgerRepository defines data access methods for policies, runs and decisions.
// All lookups are scoped by organization.
type LedgerRepository interface {
	// Policies
	// CreatePolicy stores a draft with the organization's next version number
	CreatePolicy(ctx context.Context, policy Policy) (Policy, error)
	GetPolicyByID(ctx context.Context, id string, organizationID string) (Policy, error)
	// GetActivePolicy returns ErrNoActivePolicy when none is active
	GetActivePolicy(ctx context.Context, organizationID string) (Policy, error)
	ListPolicies(ctx context.Context, organizationID string) ([]Policy, error)
	// UpdatePolicyStatus moves a policy from -> to, returning
	// ErrInvalidPolicyTransition when it is no longer in from
	UpdatePolicyStatus(ctx context.Context, id string, organizationID string, from, to PolicyStatus, by *string, at time.Time) (Policy, error)
	RetireActivePolicies(ctx context.Context, organizationID string, at time.Time) (int64, error)

	// Runs
	CreateRun(ctx context.Context, run Run) (Run, error)
	GetRunByID(ctx context.Context, id string, organizationID string) (Run, error)
	// FinishRun closes a running run, returning ErrRunNotRunning otherwise
	FinishRun(ctx context.Context, id string, organizationID string, status RunStatus, summary json.RawMessage, reason *string, at time.Time) (Run, error)
	FailRunsStartedBefore(ctx context.Context, before time.Time, reason string, at time.Time) (int64, error)

	// Decisions
	CreateDecisions(ctx context.Context, decisions []Decision) ([]Decision, error)
	GetDecisionByID(ctx context.Context, id string, organizationID string) (Decision, error)
	ListDecisionsByRun(ctx context.Context, runID string, organizationID string) ([]Decision, error)
	// ListReviewQueue returns unreviewed decisions requiring review, oldest first
	ListReviewQueue(ctx context.Context, organizationID string) ([]Decision, error)
	// MarkReviewed stores the review, returning ErrDecisionAlreadyReviewed when
	// the decision was reviewed concurrently
	MarkReviewed(ctx context.Context, decision Decision) (Decision, error)
	MarkPromoted(ctx context.Context, id string, organizationID string, at time.Time) error
}
