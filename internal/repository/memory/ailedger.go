package memory

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/ailedger"
	"github.com/google/uuid"
)

type ledgerRepository struct{ s *Store }

func NewLedgerRepository(s *Store) ailedger.LedgerRepository {
	return &ledgerRepository{s: s}
}

func (r *ledgerRepository) CreatePolicy(ctx context.Context, policy ailedger.Policy) (ailedger.Policy, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	version := 0
	for _, p := range r.s.policies {
		if p.OrganizationID == policy.OrganizationID && p.Version > version {
			version = p.Version
		}
	}
	policy.ID = uuid.NewString()
	policy.Version = version + 1
	policy.Status = ailedger.PolicyStatusDraft
	policy.CreatedAt = now()
	setEntry(ctx, r.s.policies, policy.ID, policy)
	return policy, nil
}

func (r *ledgerRepository) GetPolicyByID(ctx context.Context, id string, organizationID string) (ailedger.Policy, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.policies[id]
	if !ok || p.OrganizationID != organizationID {
		return ailedger.Policy{}, ailedger.ErrPolicyNotFound
	}
	return p, nil
}

func (r *ledgerRepository) GetActivePolicy(ctx context.Context, organizationID string) (ailedger.Policy, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.policies {
		if p.OrganizationID == organizationID && p.Status == ailedger.PolicyStatusActive {
			return p, nil
		}
	}
	return ailedger.Policy{}, ailedger.ErrNoActivePolicy
}

func (r *ledgerRepository) ListPolicies(ctx context.Context, organizationID string) ([]ailedger.Policy, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []ailedger.Policy
	for _, p := range r.s.policies {
		if p.OrganizationID == organizationID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version > out[j].Version })
	return out, nil
}

func (r *ledgerRepository) UpdatePolicyStatus(ctx context.Context, id string, organizationID string, from, to ailedger.PolicyStatus, by *string, at time.Time) (ailedger.Policy, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.policies[id]
	if !ok || p.OrganizationID != organizationID {
		return ailedger.Policy{}, ailedger.ErrPolicyNotFound
	}
	if p.Status != from {
		return ailedger.Policy{}, ailedger.ErrInvalidPolicyTransition
	}
	if to == ailedger.PolicyStatusActive {
		for otherID, other := range r.s.policies {
			if otherID != id && other.OrganizationID == organizationID && other.Status == ailedger.PolicyStatusActive {
				return ailedger.Policy{}, ailedger.ErrInvalidPolicyTransition
			}
		}
	}

	p.Status = to
	switch to {
	case ailedger.PolicyStatusApproved:
		p.ApprovedBy, p.ApprovedAt = by, &at
	case ailedger.PolicyStatusActive:
		p.ActivatedAt = &at
	case ailedger.PolicyStatusRetired:
		p.RetiredAt = &at
	}
	setEntry(ctx, r.s.policies, id, p)
	return p, nil
}

func (r *ledgerRepository) RetireActivePolicies(ctx context.Context, organizationID string, at time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, p := range r.s.policies {
		if p.OrganizationID == organizationID && p.Status == ailedger.PolicyStatusActive {
			p.Status = ailedger.PolicyStatusRetired
			p.RetiredAt = &at
			setEntry(ctx, r.s.policies, id, p)
			n++
		}
	}
	return n, nil
}

func (r *ledgerRepository) CreateRun(ctx context.Context, run ailedger.Run) (ailedger.Run, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	run.ID = uuid.NewString()
	run.Status = ailedger.RunStatusRunning
	if run.StartedAt.IsZero() {
		run.StartedAt = now()
	}
	setEntry(ctx, r.s.aiRuns, run.ID, run)
	return run, nil
}

func (r *ledgerRepository) GetRunByID(ctx context.Context, id string, organizationID string) (ailedger.Run, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	run, ok := r.s.aiRuns[id]
	if !ok || run.OrganizationID != organizationID {
		return ailedger.Run{}, ailedger.ErrRunNotFound
	}
	return run, nil
}

func (r *ledgerRepository) FinishRun(ctx context.Context, id string, organizationID string, status ailedger.RunStatus, summary json.RawMessage, reason *string, at time.Time) (ailedger.Run, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	run, ok := r.s.aiRuns[id]
	if !ok || run.OrganizationID != organizationID {
		return ailedger.Run{}, ailedger.ErrRunNotFound
	}
	if run.Status != ailedger.RunStatusRunning {
		return ailedger.Run{}, ailedger.ErrRunNotRunning
	}
	run.Status = status
	run.OutputSummary = summary
	run.FailureReason = reason
	run.FinishedAt = &at
	setEntry(ctx, r.s.aiRuns, id, run)
	return run, nil
}

func (r *ledgerRepository) FailRunsStartedBefore(ctx context.Context, before time.Time, reason string, at time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, run := range r.s.aiRuns {
		if run.Status == ailedger.RunStatusRunning && run.StartedAt.Before(before) {
			msg := reason
			run.Status = ailedger.RunStatusFailed
			run.FailureReason = &msg
			run.FinishedAt = &at
			setEntry(ctx, r.s.aiRuns, id, run)
			n++
		}
	}
	return n, nil
}

func (r *ledgerRepository) CreateDecisions(ctx context.Context, decisions []ailedger.Decision) ([]ailedger.Decision, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]ailedger.Decision, 0, len(decisions))
	ts := now()
	for i, d := range decisions {
		d.ID = uuid.NewString()
		// keeps insertion order stable for the review queue
		d.CreatedAt = ts.Add(time.Duration(i) * time.Microsecond)
		setEntry(ctx, r.s.decisions, d.ID, d)
		out = append(out, d)
	}
	return out, nil
}

func (r *ledgerRepository) GetDecisionByID(ctx context.Context, id string, organizationID string) (ailedger.Decision, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	d, ok := r.s.decisions[id]
	if !ok || d.OrganizationID != organizationID {
		return ailedger.Decision{}, ailedger.ErrDecisionNotFound
	}
	return d, nil
}

func (r *ledgerRepository) ListDecisionsByRun(ctx context.Context, runID string, organizationID string) ([]ailedger.Decision, error) {
	return r.listDecisions(func(d ailedger.Decision) bool {
		return d.RunID == runID && d.OrganizationID == organizationID
	}), nil
}

func (r *ledgerRepository) ListReviewQueue(ctx context.Context, organizationID string) ([]ailedger.Decision, error) {
	return r.listDecisions(func(d ailedger.Decision) bool {
		return d.OrganizationID == organizationID && d.HumanReviewRequired && !d.IsReviewed()
	}), nil
}

func (r *ledgerRepository) listDecisions(match func(ailedger.Decision) bool) []ailedger.Decision {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []ailedger.Decision
	for _, d := range r.s.decisions {
		if match(d) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r *ledgerRepository) MarkReviewed(ctx context.Context, decision ailedger.Decision) (ailedger.Decision, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	d, ok := r.s.decisions[decision.ID]
	if !ok || d.OrganizationID != decision.OrganizationID {
		return ailedger.Decision{}, ailedger.ErrDecisionNotFound
	}
	if d.IsReviewed() {
		return ailedger.Decision{}, ailedger.ErrDecisionAlreadyReviewed
	}
	d.ReviewedBy = decision.ReviewedBy
	d.ReviewedAt = decision.ReviewedAt
	d.Approved = decision.Approved
	d.ReviewNote = decision.ReviewNote
	setEntry(ctx, r.s.decisions, d.ID, d)
	return d, nil
}

func (r *ledgerRepository) MarkPromoted(ctx context.Context, id string, organizationID string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	d, ok := r.s.decisions[id]
	if !ok || d.OrganizationID != organizationID {
		return ailedger.ErrDecisionNotFound
	}
	if d.PromotedAt != nil {
		return ailedger.ErrDecisionAlreadyPromoted
	}
	d.PromotedAt = &at
	setEntry(ctx, r.s.decisions, id, d)
	return nil
}
