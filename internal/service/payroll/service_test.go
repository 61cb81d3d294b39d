package payroll

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/compensation"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/shift"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/memory"
	attendancesvc "github.com/cmlabs-hris/hris-payroll-go/internal/service/attendance"
	compensationsvc "github.com/cmlabs-hris/hris-payroll-go/internal/service/compensation"
	compliancesvc "github.com/cmlabs-hris/hris-payroll-go/internal/service/compliance"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testOrgID  = "0190a000-0000-7000-8000-000000000001"
	testUserID = "0190a000-0000-7000-8000-0000000000aa"
)

type fixture struct {
	store   *memory.Store
	service payroll.PayrollService
	shift   shift.Shift
}

func setupService(t *testing.T) fixture {
	t.Helper()

	store := memory.NewStore()
	sh := store.AddShift(shift.Shift{
		OrganizationID: testOrgID,
		Name:           "General",
		StartTime:      "09:00",
		EndTime:        "18:00",
		BreakHours:     1,
		DurationHours:  8,
		WeeklyOffs:     []string{"Saturday", "Sunday"},
		Timezone:       "UTC",
	})

	employeeRepo := memory.NewEmployeeRepository(store)
	attSvc := attendancesvc.NewAttendanceService(
		store.Transactor(),
		memory.NewRecordRepository(store),
		memory.NewOverrideRepository(store),
		memory.NewShiftRepository(store),
		employeeRepo,
	)
	compSvc := compensationsvc.NewCompensationService(memory.NewCompensationRepository(store), employeeRepo, attSvc)
	svc := NewPayrollService(
		store.Transactor(),
		memory.NewPayrollRepository(store),
		employeeRepo,
		compSvc,
		compliancesvc.NewComplianceService(),
		2,
	)
	return fixture{store: store, service: svc, shift: sh}
}

func (f fixture) addEmployee(t *testing.T, code, state string, components ...compensation.PayComponent) employee.Employee {
	t.Helper()

	emp := f.store.AddEmployee(employee.Employee{OrganizationID: testOrgID, EmployeeCode: code, FullName: "Employee " + code, WorkState: state})
	f.store.AddAssignment(shift.Assignment{EmployeeID: emp.ID, ShiftID: f.shift.ID, StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)})

	if len(components) > 0 {
		payload, err := json.Marshal(components)
		require.NoError(t, err)
		_, err = memory.NewCompensationRepository(f.store).Create(context.Background(), compensation.EmployeeCompensation{
			OrganizationID: testOrgID,
			EmployeeID:     emp.ID,
			EffectiveFrom:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			Components:     payload,
		})
		require.NoError(t, err)
	}
	return emp
}

func (f fixture) lockedPeriod(t *testing.T) payroll.Period {
	t.Helper()
	ctx := context.Background()

	period, err := f.service.CreatePeriod(ctx, payroll.CreatePeriodRequest{OrganizationID: testOrgID, Month: 6, Year: 2026})
	require.NoError(t, err)
	period, err = f.service.LockPeriod(ctx, testOrgID, period.ID, testUserID)
	require.NoError(t, err)
	return period
}

func component(code, annual string) compensation.PayComponent {
	return compensation.PayComponent{Code: code, AnnualAmount: decimal.RequireFromString(annual)}
}

func assertAmount(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "%s: want %s, got %s", field, want, got)
}

func TestPeriodStateMachine(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)

	period, err := f.service.CreatePeriod(ctx, payroll.CreatePeriodRequest{OrganizationID: testOrgID, Month: 6, Year: 2026})
	require.NoError(t, err)
	assert.Equal(t, payroll.PeriodStatusDraft, period.Status)

	_, err = f.service.CreatePeriod(ctx, payroll.CreatePeriodRequest{OrganizationID: testOrgID, Month: 6, Year: 2026})
	assert.ErrorIs(t, err, payroll.ErrPeriodAlreadyExists)

	_, err = f.service.FinalizePeriod(ctx, testOrgID, period.ID, testUserID)
	assert.ErrorIs(t, err, payroll.ErrInvalidPeriodState)

	locked, err := f.service.LockPeriod(ctx, testOrgID, period.ID, testUserID)
	require.NoError(t, err)
	assert.Equal(t, payroll.PeriodStatusLocked, locked.Status)
	require.NotNil(t, locked.LockedBy)
	assert.Equal(t, testUserID, *locked.LockedBy)

	_, err = f.service.LockPeriod(ctx, testOrgID, period.ID, testUserID)
	assert.ErrorIs(t, err, payroll.ErrInvalidPeriodState)

	finalized, err := f.service.FinalizePeriod(ctx, testOrgID, period.ID, testUserID)
	require.NoError(t, err)
	assert.Equal(t, payroll.PeriodStatusFinalized, finalized.Status)
	assert.NotNil(t, finalized.FinalizedAt)

	_, err = f.service.GetPeriod(ctx, "another-org", period.ID)
	assert.ErrorIs(t, err, payroll.ErrPeriodNotFound)
}

func TestFinalizeRun_RequiresLockedPeriod(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)
	emp := f.addEmployee(t, "EMP-001", "GJ", component("BASIC", "120000"))

	period, err := f.service.CreatePeriod(ctx, payroll.CreatePeriodRequest{OrganizationID: testOrgID, Month: 6, Year: 2026})
	require.NoError(t, err)

	_, err = f.service.FinalizeRun(ctx, period.ID, emp.ID, "")
	assert.ErrorIs(t, err, payroll.ErrInvalidPeriodState)

	_, err = f.service.LockPeriod(ctx, testOrgID, period.ID, testUserID)
	require.NoError(t, err)
	_, err = f.service.FinalizeRun(ctx, period.ID, emp.ID, "")
	require.NoError(t, err)

	_, err = f.service.FinalizePeriod(ctx, testOrgID, period.ID, testUserID)
	require.NoError(t, err)
	_, err = f.service.FinalizeRun(ctx, period.ID, emp.ID, "")
	assert.ErrorIs(t, err, payroll.ErrInvalidPeriodState)
}

func TestFinalizeRun_WithStatutory(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)
	emp := f.addEmployee(t, "EMP-001", "GJ",
		component("BASIC", "180000"),
		component("HRA", "60000"),
		component("PF", "21600"),
	)
	period := f.lockedPeriod(t)

	run, err := f.service.FinalizeRun(ctx, period.ID, emp.ID, "")
	require.NoError(t, err)

	assert.Equal(t, "GJ", run.WorkState)
	assertAmount(t, "20000", run.GrossEarnings, "gross")
	assertAmount(t, "2150", run.TotalDeductions, "deductions")
	assertAmount(t, "17850", run.NetPay, "net")
	assertAmount(t, "22450", run.EmployerCost, "employer cost")

	pf, ok := run.LineItem(payroll.CodePFEmployee)
	require.True(t, ok)
	assertAmount(t, "1800", pf.Amount, "pf ee")
	esic, ok := run.LineItem(payroll.CodeESICEmployer)
	require.True(t, ok)
	assertAmount(t, "650", esic.Amount, "esic er")
	pt, ok := run.LineItem(payroll.CodePT)
	require.True(t, ok)
	assertAmount(t, "200", pt.Amount, "pt")

	_, ok = run.LineItem(payroll.CodeTDS)
	assert.False(t, ok, "zero TDS is not kept")
	_, ok = run.LineItem("PF")
	assert.False(t, ok, "declared statutory amount is never used")
}

func TestFinalizeRun_StatutoryGating(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)
	emp := f.addEmployee(t, "EMP-001", "GJ", component("BASIC", "120000"))
	period := f.lockedPeriod(t)

	run, err := f.service.FinalizeRun(ctx, period.ID, emp.ID, "")
	require.NoError(t, err)

	assertAmount(t, "10000", run.GrossEarnings, "gross")
	assertAmount(t, "0", run.TotalDeductions, "deductions")
	assertAmount(t, "10000", run.NetPay, "net")
	assertAmount(t, "10000", run.EmployerCost, "employer cost")
	require.Len(t, run.LineItems, 1)
	assert.Equal(t, "BASIC", run.LineItems[0].Code)
	for _, code := range []string{payroll.CodePFEmployee, payroll.CodeESICEmployee, payroll.CodePT} {
		_, ok := run.LineItem(code)
		assert.False(t, ok, code)
	}
}

func TestFinalizeRun_StateOverride(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)
	emp := f.addEmployee(t, "EMP-001", "GJ", component("BASIC", "360000"), component("PT", "2400"))
	period := f.lockedPeriod(t)

	run, err := f.service.FinalizeRun(ctx, period.ID, emp.ID, "zz")
	require.NoError(t, err)
	assert.Equal(t, "ZZ", run.WorkState)
	_, ok := run.LineItem(payroll.CodePT)
	assert.False(t, ok)
}

func TestFinalizeRun_Idempotent(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)
	emp := f.addEmployee(t, "EMP-001", "MH",
		component("BASIC", "150000"),
		component("DA", "30000"),
		component("LOAN", "-6000"),
		component("ESIC", "0"),
	)
	period := f.lockedPeriod(t)

	first, err := f.service.FinalizeRun(ctx, period.ID, emp.ID, "")
	require.NoError(t, err)
	second, err := f.service.FinalizeRun(ctx, period.ID, emp.ID, "")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.True(t, first.GrossEarnings.Equal(second.GrossEarnings))
	assert.True(t, first.TotalDeductions.Equal(second.TotalDeductions))
	assert.True(t, first.NetPay.Equal(second.NetPay))

	firstItems, err := json.Marshal(first.LineItems)
	require.NoError(t, err)
	secondItems, err := json.Marshal(second.LineItems)
	require.NoError(t, err)
	assert.JSONEq(t, string(firstItems), string(secondItems))

	runs, err := f.service.ListRuns(ctx, testOrgID, period.ID)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, second.ID, runs[0].ID)
}

func TestFinalizeRun_FailureKeepsPreviousRun(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)
	emp := f.addEmployee(t, "EMP-001", "MH", component("BASIC", "120000"))
	period := f.lockedPeriod(t)

	first, err := f.service.FinalizeRun(ctx, period.ID, emp.ID, "")
	require.NoError(t, err)

	_, err = memory.NewCompensationRepository(f.store).Create(ctx, compensation.EmployeeCompensation{
		OrganizationID: testOrgID,
		EmployeeID:     emp.ID,
		EffectiveFrom:  time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		Components:     json.RawMessage(`{}`),
	})
	require.NoError(t, err)

	_, err = f.service.FinalizeRun(ctx, period.ID, emp.ID, "")
	assert.ErrorIs(t, err, compensation.ErrMalformedComponentPayload)

	runs, err := f.service.ListRuns(ctx, testOrgID, period.ID)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, first.ID, runs[0].ID)
	assertAmount(t, first.NetPay.String(), runs[0].NetPay, "net")
}

func TestFinalizeRun_OtherOrganizationEmployee(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)
	outsider := f.store.AddEmployee(employee.Employee{OrganizationID: "another-org", EmployeeCode: "X-1"})
	period := f.lockedPeriod(t)

	_, err := f.service.FinalizeRun(ctx, period.ID, outsider.ID, "")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestFinalizeAll_CollectsFailures(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)
	paid := f.addEmployee(t, "EMP-001", "GJ", component("BASIC", "120000"))
	alsoPaid := f.addEmployee(t, "EMP-002", "KA", component("BASIC", "240000"))
	unpaid := f.addEmployee(t, "EMP-003", "GJ")
	period := f.lockedPeriod(t)

	result, err := f.service.FinalizeAll(ctx, testOrgID, period.ID)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{paid.ID, alsoPaid.ID}, result.Succeeded)
	require.Contains(t, result.Failed, unpaid.ID)
	assert.Contains(t, result.Failed[unpaid.ID], compensation.ErrMissingCompensation.Error())

	runs, err := f.service.ListRuns(ctx, testOrgID, period.ID)
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	run, err := f.service.GetRun(ctx, testOrgID, period.ID, alsoPaid.ID)
	require.NoError(t, err)
	assert.Equal(t, "KA", run.WorkState)
	require.NotNil(t, run.EmployeeCode)
	assert.Equal(t, "EMP-002", *run.EmployeeCode)

	_, err = f.service.GetRun(ctx, testOrgID, period.ID, unpaid.ID)
	assert.ErrorIs(t, err, payroll.ErrRunNotFound)
}

func TestFinalizeAll_RequiresLockedPeriod(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)

	period, err := f.service.CreatePeriod(ctx, payroll.CreatePeriodRequest{OrganizationID: testOrgID, Month: 7, Year: 2026})
	require.NoError(t, err)

	_, err = f.service.FinalizeAll(ctx, testOrgID, period.ID)
	assert.ErrorIs(t, err, payroll.ErrInvalidPeriodState)
}

func TestExportRegister(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)
	emp := f.addEmployee(t, "EMP-001", "GJ", component("BASIC", "120000"))
	period := f.lockedPeriod(t)

	_, err := f.service.FinalizeRun(ctx, period.ID, emp.ID, "")
	require.NoError(t, err)

	data, err := f.service.ExportRegister(ctx, testOrgID, period.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	_, err = f.service.ExportRegister(ctx, "another-org", period.ID)
	assert.ErrorIs(t, err, payroll.ErrPeriodNotFound)
}

func TestBuildRun_EmployerCostComponents(t *testing.T) {
	employerCost := compensation.ComponentTypeEmployerCost
	eval := compensation.Evaluation{
		CompensationID: "comp-1",
		GrossEarnings:  decimal.NewFromInt(10000),
		Components: []compensation.EvaluatedComponent{
			{Code: "BASIC", Type: compensation.ComponentTypeEarning, ProratedAmount: decimal.NewFromInt(10000)},
			{Code: "GRATUITY", Type: employerCost, ProratedAmount: decimal.NewFromInt(481)},
			{Code: "CANTEEN", Type: compensation.ComponentTypeDeduction, ProratedAmount: decimal.NewFromInt(300)},
		},
	}

	run := BuildRun(eval, nil)

	assertAmount(t, "300", run.TotalDeductions, "deductions")
	assertAmount(t, "9700", run.NetPay, "net")
	assertAmount(t, "10481", run.EmployerCost, "employer cost")
	li, ok := run.LineItem("GRATUITY")
	require.True(t, ok)
	assert.Equal(t, payroll.LineItemEmployerCost, li.Kind)
}
