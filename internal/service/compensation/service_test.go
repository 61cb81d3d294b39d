package compensation

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/compensation"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/shift"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/memory"
	attendancesvc "github.com/cmlabs-hris/hris-payroll-go/internal/service/attendance"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOrgID = "0190a000-0000-7000-8000-000000000001"

type fixture struct {
	store      *memory.Store
	attendance attendance.Service
	service    compensation.CompensationService
	employee   employee.Employee
}

func setupService(t *testing.T) fixture {
	t.Helper()

	store := memory.NewStore()
	emp := store.AddEmployee(employee.Employee{OrganizationID: testOrgID, EmployeeCode: "EMP-001", FullName: "Ravi Shah", WorkState: "GJ"})
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
	store.AddAssignment(shift.Assignment{EmployeeID: emp.ID, ShiftID: sh.ID, StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)})
	store.AddDefinition(compensation.ComponentDefinition{Code: "GRATUITY", Name: "Gratuity", Type: compensation.ComponentTypeEmployerCost})

	attSvc := attendancesvc.NewAttendanceService(
		store.Transactor(),
		memory.NewRecordRepository(store),
		memory.NewOverrideRepository(store),
		memory.NewShiftRepository(store),
		memory.NewEmployeeRepository(store),
	)
	svc := NewCompensationService(memory.NewCompensationRepository(store), memory.NewEmployeeRepository(store), attSvc)

	return fixture{store: store, attendance: attSvc, service: svc, employee: emp}
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertAmount(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.True(t, amount(want).Equal(got), "%s: want %s, got %s", field, want, got)
}

func standardComponents() []compensation.PayComponent {
	return []compensation.PayComponent{
		{Code: "BASIC", AnnualAmount: amount("360000")},
		{Code: "hra", AnnualAmount: amount("180000")},
		{Code: "PF_EE", AnnualAmount: amount("21600")},
		{Code: "LOAN", AnnualAmount: amount("-12000")},
		{Code: "GRATUITY", AnnualAmount: amount("17316")},
	}
}

func (f fixture) createPlan(t *testing.T, from string, to *string, components []compensation.PayComponent) compensation.EmployeeCompensation {
	t.Helper()
	c, err := f.service.CreateCompensation(context.Background(), compensation.CreateCompensationRequest{
		OrganizationID: testOrgID,
		EmployeeID:     f.employee.ID,
		EffectiveFrom:  from,
		EffectiveTo:    to,
		AnnualCTC:      amount("600000"),
		Components:     components,
	})
	require.NoError(t, err)
	return c
}

func TestGetActiveCompensation_MidMonthAnchor(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)

	_, err := f.service.GetActiveCompensation(ctx, f.employee.ID, 6, 2026)
	assert.ErrorIs(t, err, compensation.ErrMissingCompensation)

	f.createPlan(t, "2026-06-16", nil, standardComponents())
	_, err = f.service.GetActiveCompensation(ctx, f.employee.ID, 6, 2026)
	assert.ErrorIs(t, err, compensation.ErrMissingCompensation)

	end := "2026-06-15"
	older := f.createPlan(t, "2026-01-01", &end, standardComponents())
	active, err := f.service.GetActiveCompensation(ctx, f.employee.ID, 6, 2026)
	require.NoError(t, err)
	assert.Equal(t, older.ID, active.ID)

	active, err = f.service.GetActiveCompensation(ctx, f.employee.ID, 7, 2026)
	require.NoError(t, err)
	assert.NotEqual(t, older.ID, active.ID)
}

func TestGetActiveCompensation_OverlapPrefersLatestStart(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)

	f.createPlan(t, "2026-01-01", nil, standardComponents())
	newer := f.createPlan(t, "2026-04-01", nil, standardComponents())

	active, err := f.service.GetActiveCompensation(ctx, f.employee.ID, 6, 2026)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, active.ID)
}

func TestEvalComponents_FullMonth(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)
	f.createPlan(t, "2026-01-01", nil, standardComponents())

	eval, err := f.service.EvalComponents(ctx, f.employee.ID, 6, 2026)
	require.NoError(t, err)

	assert.True(t, eval.DeclaresStatutory)
	require.Len(t, eval.Components, 4)
	for _, c := range eval.Components {
		assert.False(t, compensation.IsStatutoryCode(c.Code), c.Code)
	}

	byCode := make(map[string]compensation.EvaluatedComponent)
	for _, c := range eval.Components {
		byCode[c.Code] = c
	}
	assertAmount(t, "30000", byCode["BASIC"].ProratedAmount, "basic")
	assertAmount(t, "15000", byCode["HRA"].ProratedAmount, "hra")
	assert.Equal(t, compensation.ComponentTypeDeduction, byCode["LOAN"].Type)
	assertAmount(t, "1000", byCode["LOAN"].MonthlyAmount, "loan")
	assert.Equal(t, compensation.ComponentTypeEmployerCost, byCode["GRATUITY"].Type)
	assert.Equal(t, "Gratuity", byCode["GRATUITY"].Name)
	assertAmount(t, "1443", byCode["GRATUITY"].ProratedAmount, "gratuity")

	assertAmount(t, "45000", eval.GrossEarnings, "gross")
	assertAmount(t, "22", eval.Basis.PayableDays, "payable")
}

func TestEvalComponents_Prorated(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)
	f.createPlan(t, "2026-01-01", nil, standardComponents())

	_, err := f.attendance.UpsertOverride(ctx, attendance.UpsertOverrideRequest{
		OrganizationID: testOrgID,
		EmployeeID:     f.employee.ID,
		Month:          6,
		Year:           2026,
		PresentDays:    amount("21"),
		Source:         attendance.OverrideSourceManual,
	})
	require.NoError(t, err)

	eval, err := f.service.EvalComponents(ctx, f.employee.ID, 6, 2026)
	require.NoError(t, err)

	assertAmount(t, "28636.36", eval.ProratedByCode(compensation.CodeBasic), "basic")
	assertAmount(t, "14318.18", eval.ProratedByCode("HRA"), "hra")
	assertAmount(t, "42954.54", eval.GrossEarnings, "gross")
}

func TestEvalComponents_NoStatutoryDeclared(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)
	f.createPlan(t, "2026-01-01", nil, []compensation.PayComponent{{Code: "BASIC", AnnualAmount: amount("120000")}})

	eval, err := f.service.EvalComponents(ctx, f.employee.ID, 6, 2026)
	require.NoError(t, err)
	assert.False(t, eval.DeclaresStatutory)
	assertAmount(t, "10000", eval.GrossEarnings, "gross")
}

func TestEvalComponents_MalformedPayload(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)
	repo := memory.NewCompensationRepository(f.store)

	for i, payload := range []string{`{"code":"BASIC"}`, `null`, ``, `[{"code": 1}]`} {
		_, err := repo.Create(ctx, compensation.EmployeeCompensation{
			OrganizationID: testOrgID,
			EmployeeID:     f.employee.ID,
			EffectiveFrom:  time.Date(2026, 6, 1+i, 0, 0, 0, 0, time.UTC),
			Components:     json.RawMessage(payload),
		})
		require.NoError(t, err)

		_, err = f.service.EvalComponents(ctx, f.employee.ID, 6, 2026)
		assert.ErrorIs(t, err, compensation.ErrMalformedComponentPayload, payload)
	}
}

func TestEvalComponents_EmptyList(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)
	repo := memory.NewCompensationRepository(f.store)

	_, err := repo.Create(ctx, compensation.EmployeeCompensation{
		OrganizationID: testOrgID,
		EmployeeID:     f.employee.ID,
		EffectiveFrom:  time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		Components:     json.RawMessage(`[]`),
	})
	require.NoError(t, err)

	eval, err := f.service.EvalComponents(ctx, f.employee.ID, 6, 2026)
	require.NoError(t, err)
	assert.Empty(t, eval.Components)
	assert.True(t, eval.GrossEarnings.IsZero())
}

func TestCreateCompensation_Isolation(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)

	_, err := f.service.CreateCompensation(ctx, compensation.CreateCompensationRequest{
		OrganizationID: "another-org",
		EmployeeID:     f.employee.ID,
		EffectiveFrom:  "2026-01-01",
		AnnualCTC:      amount("1"),
		Components:     []compensation.PayComponent{{Code: "BASIC", AnnualAmount: amount("1")}},
	})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	f.createPlan(t, "2026-01-01", nil, standardComponents())
	list, err := f.service.ListCompensations(ctx, testOrgID, f.employee.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = f.service.ListCompensations(ctx, "another-org", f.employee.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
