package ailedger

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/ailedger"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/memory"
	attendancesvc "github.com/cmlabs-hris/hris-payroll-go/internal/service/attendance"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testOrgID    = "0190a000-0000-7000-8000-000000000001"
	testAdminID  = "0190a000-0000-7000-8000-0000000000aa"
	testReviewer = "0190a000-0000-7000-8000-0000000000bb"
)

type fixture struct {
	store      *memory.Store
	service    ailedger.LedgerService
	attendance attendance.Service
	employee   employee.Employee
}

func setupService(t *testing.T) fixture {
	t.Helper()

	store := memory.NewStore()
	emp := store.AddEmployee(employee.Employee{OrganizationID: testOrgID, EmployeeCode: "EMP-001", FullName: "Meera Iyer", WorkState: "KA"})

	employeeRepo := memory.NewEmployeeRepository(store)
	attSvc := attendancesvc.NewAttendanceService(
		store.Transactor(),
		memory.NewRecordRepository(store),
		memory.NewOverrideRepository(store),
		memory.NewShiftRepository(store),
		employeeRepo,
	)
	svc := NewLedgerService(store.Transactor(), memory.NewLedgerRepository(store), employeeRepo, attSvc, 0.8)

	return fixture{store: store, service: svc, attendance: attSvc, employee: emp}
}

func (f fixture) activePolicy(t *testing.T, threshold *float64) ailedger.Policy {
	t.Helper()
	ctx := context.Background()

	policy, err := f.service.CreatePolicy(ctx, ailedger.CreatePolicyRequest{
		OrganizationID:      testOrgID,
		CreatedBy:           testAdminID,
		Name:                "Weekly hydration",
		Instructions:        "Summarize attendance for the month.",
		ConfidenceThreshold: threshold,
	})
	require.NoError(t, err)
	_, err = f.service.ApprovePolicy(ctx, testOrgID, policy.ID, testAdminID)
	require.NoError(t, err)
	policy, err = f.service.ActivatePolicy(ctx, testOrgID, policy.ID, testAdminID)
	require.NoError(t, err)
	return policy
}

func (f fixture) startRun(t *testing.T) ailedger.Run {
	t.Helper()
	run, err := f.service.StartRun(context.Background(), ailedger.StartRunRequest{
		OrganizationID: testOrgID,
		Kind:           ailedger.RunKindWeeklyHydration,
		WindowStart:    "2026-06-01",
		WindowEnd:      "2026-06-30",
		InputSnapshot:  json.RawMessage(`{"employees": ["EMP-001"]}`),
	})
	require.NoError(t, err)
	return run
}

func summaryPayload(t *testing.T, present string) json.RawMessage {
	t.Helper()
	payload, err := json.Marshal(ailedger.MonthlySummaryPayload{
		Month:       6,
		Year:        2026,
		PresentDays: decimal.RequireFromString(present),
	})
	require.NoError(t, err)
	return payload
}

func TestPolicyLifecycle(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)

	_, err := f.service.GetActivePolicy(ctx, testOrgID)
	assert.ErrorIs(t, err, ailedger.ErrNoActivePolicy)

	first := f.activePolicy(t, nil)
	assert.Equal(t, 1, first.Version)
	assert.Equal(t, ailedger.PolicyStatusActive, first.Status)

	draft, err := f.service.CreatePolicy(ctx, ailedger.CreatePolicyRequest{OrganizationID: testOrgID, Name: "v2", Instructions: "x"})
	require.NoError(t, err)
	assert.Equal(t, 2, draft.Version)

	_, err = f.service.ActivatePolicy(ctx, testOrgID, draft.ID, testAdminID)
	assert.ErrorIs(t, err, ailedger.ErrInvalidPolicyTransition)

	_, err = f.service.ApprovePolicy(ctx, testOrgID, draft.ID, testAdminID)
	require.NoError(t, err)
	second, err := f.service.ActivatePolicy(ctx, testOrgID, draft.ID, testAdminID)
	require.NoError(t, err)

	active, err := f.service.GetActivePolicy(ctx, testOrgID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)

	policies, err := f.service.ListPolicies(ctx, testOrgID)
	require.NoError(t, err)
	require.Len(t, policies, 2)
	activeCount := 0
	for _, p := range policies {
		if p.Status == ailedger.PolicyStatusActive {
			activeCount++
		}
		if p.ID == first.ID {
			assert.Equal(t, ailedger.PolicyStatusRetired, p.Status)
			assert.NotNil(t, p.RetiredAt)
		}
	}
	assert.Equal(t, 1, activeCount)

	_, err = f.service.RetirePolicy(ctx, testOrgID, first.ID, testAdminID)
	assert.ErrorIs(t, err, ailedger.ErrInvalidPolicyTransition)
}

func TestStartRun_RequiresActivePolicy(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)

	_, err := f.service.StartRun(ctx, ailedger.StartRunRequest{
		OrganizationID: testOrgID,
		Kind:           ailedger.RunKindWeeklyHydration,
		WindowStart:    "2026-06-01",
		WindowEnd:      "2026-06-30",
		InputSnapshot:  json.RawMessage(`{}`),
	})
	assert.ErrorIs(t, err, ailedger.ErrNoActivePolicy)
}

func TestHashSnapshot_IgnoresFormatting(t *testing.T) {
	_, a, err := HashSnapshot(json.RawMessage(`{"a": 1, "b": [1, 2]}`))
	require.NoError(t, err)
	compact, b, err := HashSnapshot(json.RawMessage(`{"a":1,"b":[1,2]}`))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
	assert.Equal(t, `{"a":1,"b":[1,2]}`, string(compact))

	_, c, err := HashSnapshot(json.RawMessage(`{"a":2,"b":[1,2]}`))
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestRequiresReview(t *testing.T) {
	assert.True(t, RequiresReview(true, 0.99, 0.8))
	assert.True(t, RequiresReview(false, 0.79, 0.8))
	assert.False(t, RequiresReview(false, 0.8, 0.8))
	assert.False(t, RequiresReview(false, 0.95, 0.8))
}

func TestRunLifecycle(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)
	threshold := 0.9
	policy := f.activePolicy(t, &threshold)
	run := f.startRun(t)

	assert.Equal(t, ailedger.RunStatusRunning, run.Status)
	assert.Equal(t, policy.Version, run.PolicyVersion)
	assert.Len(t, run.InputHash, 64)

	decisions, err := f.service.RecordDecisions(ctx, ailedger.RecordDecisionsRequest{
		OrganizationID: testOrgID,
		RunID:          run.ID,
		Decisions: []ailedger.DecisionInput{
			{EmployeeID: f.employee.ID, DecisionType: ailedger.DecisionTypeMonthlySummary, Payload: summaryPayload(t, "20"), Confidence: 0.95},
			{EmployeeID: f.employee.ID, DecisionType: ailedger.DecisionTypeAbsence, Payload: json.RawMessage(`{}`), Confidence: 0.85},
			{EmployeeID: f.employee.ID, DecisionType: ailedger.DecisionTypePunchCorrection, Payload: json.RawMessage(`{}`), Confidence: 0.99, Flagged: true},
		},
	})
	require.NoError(t, err)
	require.Len(t, decisions, 3)
	assert.False(t, decisions[0].HumanReviewRequired)
	assert.True(t, decisions[1].HumanReviewRequired, "below the policy threshold")
	assert.True(t, decisions[2].HumanReviewRequired, "flagged")

	queue, err := f.service.ListReviewQueue(ctx, testOrgID)
	require.NoError(t, err)
	assert.Len(t, queue, 2)

	completed, err := f.service.CompleteRun(ctx, ailedger.CompleteRunRequest{OrganizationID: testOrgID, RunID: run.ID, OutputSummary: json.RawMessage(`{"decisions":3}`)})
	require.NoError(t, err)
	assert.Equal(t, ailedger.RunStatusCompleted, completed.Status)
	assert.NotNil(t, completed.FinishedAt)

	_, err = f.service.RecordDecisions(ctx, ailedger.RecordDecisionsRequest{
		OrganizationID: testOrgID,
		RunID:          run.ID,
		Decisions:      []ailedger.DecisionInput{{EmployeeID: f.employee.ID, DecisionType: ailedger.DecisionTypeAbsence, Payload: json.RawMessage(`{}`)}},
	})
	assert.ErrorIs(t, err, ailedger.ErrRunNotRunning)

	_, err = f.service.FailRun(ctx, ailedger.FailRunRequest{OrganizationID: testOrgID, RunID: run.ID, Reason: "late failure"})
	assert.ErrorIs(t, err, ailedger.ErrRunNotRunning)
}

func TestRecordDecisions_RejectsForeignEmployee(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)
	f.activePolicy(t, nil)
	run := f.startRun(t)
	outsider := f.store.AddEmployee(employee.Employee{OrganizationID: "another-org", EmployeeCode: "X-1"})

	_, err := f.service.RecordDecisions(ctx, ailedger.RecordDecisionsRequest{
		OrganizationID: testOrgID,
		RunID:          run.ID,
		Decisions:      []ailedger.DecisionInput{{EmployeeID: outsider.ID, DecisionType: ailedger.DecisionTypeAbsence, Payload: json.RawMessage(`{}`)}},
	})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestExpireStaleRuns(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)
	f.activePolicy(t, nil)
	run := f.startRun(t)

	expired, err := f.service.ExpireStaleRuns(ctx, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, expired)

	expired, err = f.service.ExpireStaleRuns(ctx, -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), expired)

	_, err = f.service.CompleteRun(ctx, ailedger.CompleteRunRequest{OrganizationID: testOrgID, RunID: run.ID})
	assert.ErrorIs(t, err, ailedger.ErrRunNotRunning)
}

func TestReviewAndPromote(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)
	f.activePolicy(t, nil)
	run := f.startRun(t)

	decisions, err := f.service.RecordDecisions(ctx, ailedger.RecordDecisionsRequest{
		OrganizationID: testOrgID,
		RunID:          run.ID,
		Decisions: []ailedger.DecisionInput{
			{EmployeeID: f.employee.ID, DecisionType: ailedger.DecisionTypeMonthlySummary, Payload: summaryPayload(t, "18"), Confidence: 0.5},
			{EmployeeID: f.employee.ID, DecisionType: ailedger.DecisionTypeAbsence, Payload: json.RawMessage(`{}`), Confidence: 0.5},
		},
	})
	require.NoError(t, err)
	summary, absence := decisions[0], decisions[1]

	_, err = f.service.PromoteDecision(ctx, testOrgID, summary.ID, testAdminID)
	assert.ErrorIs(t, err, ailedger.ErrDecisionNotApproved)

	approve := true
	reviewed, err := f.service.ReviewDecision(ctx, ailedger.ReviewDecisionRequest{
		OrganizationID: testOrgID,
		DecisionID:     summary.ID,
		ReviewerID:     testReviewer,
		Approve:        &approve,
	})
	require.NoError(t, err)
	assert.True(t, reviewed.Approved)
	assert.NotNil(t, reviewed.ReviewedAt)

	_, err = f.service.ReviewDecision(ctx, ailedger.ReviewDecisionRequest{
		OrganizationID: testOrgID,
		DecisionID:     summary.ID,
		ReviewerID:     testReviewer,
		Approve:        &approve,
	})
	assert.ErrorIs(t, err, ailedger.ErrDecisionAlreadyReviewed)

	queue, err := f.service.ListReviewQueue(ctx, testOrgID)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, absence.ID, queue[0].ID)

	override, err := f.service.PromoteDecision(ctx, testOrgID, summary.ID, testAdminID)
	require.NoError(t, err)
	assert.Equal(t, attendance.OverrideSourceAIApproved, override.Source)
	require.NotNil(t, override.DecisionID)
	assert.Equal(t, summary.ID, *override.DecisionID)
	require.NotNil(t, override.ApprovedBy)
	assert.Equal(t, testReviewer, *override.ApprovedBy)

	basis, err := f.attendance.ResolveBasis(ctx, f.employee.ID, 6, 2026)
	require.NoError(t, err)
	assert.True(t, basis.OverrideApplied)
	assert.True(t, basis.PresentDays.Equal(decimal.NewFromInt(18)))

	_, err = f.service.PromoteDecision(ctx, testOrgID, summary.ID, testAdminID)
	assert.ErrorIs(t, err, ailedger.ErrDecisionAlreadyPromoted)

	_, err = f.service.ReviewDecision(ctx, ailedger.ReviewDecisionRequest{
		OrganizationID: testOrgID,
		DecisionID:     absence.ID,
		ReviewerID:     testReviewer,
		Approve:        &approve,
	})
	require.NoError(t, err)
	_, err = f.service.PromoteDecision(ctx, testOrgID, absence.ID, testAdminID)
	assert.ErrorIs(t, err, ailedger.ErrDecisionNotPromotable)
}

func TestPromote_ManualOverrideWins(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)
	f.activePolicy(t, nil)
	run := f.startRun(t)

	_, err := f.attendance.UpsertOverride(ctx, attendance.UpsertOverrideRequest{
		OrganizationID: testOrgID,
		EmployeeID:     f.employee.ID,
		Month:          6,
		Year:           2026,
		PresentDays:    decimal.NewFromInt(22),
		Source:         attendance.OverrideSourceManual,
	})
	require.NoError(t, err)

	decisions, err := f.service.RecordDecisions(ctx, ailedger.RecordDecisionsRequest{
		OrganizationID: testOrgID,
		RunID:          run.ID,
		Decisions: []ailedger.DecisionInput{
			{EmployeeID: f.employee.ID, DecisionType: ailedger.DecisionTypeMonthlySummary, Payload: summaryPayload(t, "10"), Confidence: 0.99},
		},
	})
	require.NoError(t, err)

	approve := true
	_, err = f.service.ReviewDecision(ctx, ailedger.ReviewDecisionRequest{
		OrganizationID: testOrgID,
		DecisionID:     decisions[0].ID,
		ReviewerID:     testReviewer,
		Approve:        &approve,
	})
	require.NoError(t, err)

	_, err = f.service.PromoteDecision(ctx, testOrgID, decisions[0].ID, testAdminID)
	assert.ErrorIs(t, err, attendance.ErrLowerPrioritySource)
}
