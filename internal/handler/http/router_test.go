package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/compensation"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/shift"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/memory"
	ailedgersvc "github.com/cmlabs-hris/hris-payroll-go/internal/service/ailedger"
	attendancesvc "github.com/cmlabs-hris/hris-payroll-go/internal/service/attendance"
	compensationsvc "github.com/cmlabs-hris/hris-payroll-go/internal/service/compensation"
	compliancesvc "github.com/cmlabs-hris/hris-payroll-go/internal/service/compliance"
	employeesvc "github.com/cmlabs-hris/hris-payroll-go/internal/service/employee"
	payrollsvc "github.com/cmlabs-hris/hris-payroll-go/internal/service/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	handlerTestSecret = "test-secret-key-for-jwt"
	handlerTestOrgID  = "org-handler"
	handlerTestUserID = "user-handler"
)

type handlerFixture struct {
	server *httptest.Server
	store  *memory.Store
	jwt    jwt.Service
	emp    employee.Employee
}

func setupRouter(t *testing.T) handlerFixture {
	t.Helper()

	store := memory.NewStore()
	sh := store.AddShift(shift.Shift{
		OrganizationID: handlerTestOrgID,
		Name:           "General",
		StartTime:      "09:00",
		EndTime:        "18:00",
		BreakHours:     1,
		DurationHours:  8,
		WeeklyOffs:     []string{"Saturday", "Sunday"},
		Timezone:       "UTC",
	})
	emp := store.AddEmployee(employee.Employee{
		OrganizationID: handlerTestOrgID,
		EmployeeCode:   "E001",
		FullName:       "Asha Patel",
		WorkState:      "GJ",
	})
	store.AddAssignment(shift.Assignment{EmployeeID: emp.ID, ShiftID: sh.ID, StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)})

	employeeRepo := memory.NewEmployeeRepository(store)
	attSvc := attendancesvc.NewAttendanceService(
		store.Transactor(),
		memory.NewRecordRepository(store),
		memory.NewOverrideRepository(store),
		memory.NewShiftRepository(store),
		employeeRepo,
	)
	compSvc := compensationsvc.NewCompensationService(memory.NewCompensationRepository(store), employeeRepo, attSvc)
	complianceSvc := compliancesvc.NewComplianceService()
	paySvc := payrollsvc.NewPayrollService(store.Transactor(), memory.NewPayrollRepository(store), employeeRepo, compSvc, complianceSvc, 2)
	ledgerSvc := ailedgersvc.NewLedgerService(store.Transactor(), memory.NewLedgerRepository(store), employeeRepo, attSvc, ailedgersvc.DefaultConfidenceThreshold)
	empSvc := employeesvc.NewEmployeeService(employeeRepo)

	jwtService := jwt.NewJWTService(handlerTestSecret, "1h")
	router := NewRouter(
		RouterOptions{Env: "test", Version: "test", AllowedOrigins: []string{"*"}, LogLevel: slog.LevelError},
		jwtService,
		NewAttendanceHandler(attSvc, empSvc),
		NewCompensationHandler(compSvc, empSvc),
		NewComplianceHandler(complianceSvc, empSvc),
		NewPayrollHandler(paySvc, empSvc),
		NewAIHandler(ledgerSvc),
	)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return handlerFixture{server: server, store: store, jwt: jwtService, emp: emp}
}

func (f handlerFixture) token(t *testing.T, role auth.Role) string {
	t.Helper()
	token, _, err := f.jwt.GenerateAccessToken(handlerTestUserID, handlerTestOrgID, role)
	require.NoError(t, err)
	return token
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func (f handlerFixture) do(t *testing.T, method, path, token string, body any) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, f.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var env envelope
	if resp.Header.Get("Content-Type") == "application/json" {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	}
	return resp, env
}

func TestRouter_RequiresToken(t *testing.T) {
	f := setupRouter(t)

	resp, _ := f.do(t, http.MethodGet, "/api/v1/payroll/periods", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_RoleGate(t *testing.T) {
	f := setupRouter(t)

	resp, env := f.do(t, http.MethodPost, "/api/v1/payroll/periods", f.token(t, auth.RoleEmployee), map[string]int{"month": 6, "year": 2026})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	resp, _ = f.do(t, http.MethodGet, "/api/v1/ai/review-queue", f.token(t, auth.RoleReviewer), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_ValidationError(t *testing.T) {
	f := setupRouter(t)

	resp, env := f.do(t, http.MethodPost, "/api/v1/payroll/periods", f.token(t, auth.RolePayrollAdmin), map[string]int{"month": 13, "year": 2026})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Details, "month")
}

func TestRouter_BasisHidesOtherOrganizations(t *testing.T) {
	f := setupRouter(t)
	outsider := f.store.AddEmployee(employee.Employee{OrganizationID: "org-other", EmployeeCode: "X001"})
	token := f.token(t, auth.RolePayrollAdmin)

	resp, _ := f.do(t, http.MethodGet, "/api/v1/attendance/basis?employee_id="+outsider.ID+"&month=6&year=2026", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, env := f.do(t, http.MethodGet, "/api/v1/attendance/basis?employee_id="+f.emp.ID+"&month=6&year=2026", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var basis struct {
		WorkingDays string `json:"working_days"`
		PayableDays string `json:"payable_days"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &basis))
	assert.Equal(t, "22", basis.WorkingDays)
	assert.Equal(t, "22", basis.PayableDays)
}

func TestRouter_CalculatePT(t *testing.T) {
	f := setupRouter(t)

	resp, env := f.do(t, http.MethodGet, "/api/v1/compliance/pt?gross=15000&state=gj", f.token(t, auth.RoleEmployee), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var pt struct {
		State string `json:"state"`
		PT    string `json:"pt"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &pt))
	assert.Equal(t, "GJ", pt.State)
	assert.Equal(t, "200", pt.PT)
}

func TestRouter_PayrollFlow(t *testing.T) {
	f := setupRouter(t)
	token := f.token(t, auth.RolePayrollAdmin)

	resp, _ := f.do(t, http.MethodPost, "/api/v1/compensations", token, compensation.CreateCompensationRequest{
		EmployeeID:    f.emp.ID,
		EffectiveFrom: "2026-01-01",
		Components: []compensation.PayComponent{
			{Code: "BASIC", AnnualAmount: mustDecimal(t, "180000")},
			{Code: "HRA", AnnualAmount: mustDecimal(t, "60000")},
			{Code: "PF", AnnualAmount: mustDecimal(t, "21600")},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, env := f.do(t, http.MethodPost, "/api/v1/payroll/periods", token, map[string]int{"month": 6, "year": 2026})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var period struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &period))
	assert.Equal(t, "draft", period.Status)

	// Runs can only be finalized once the period is locked.
	resp, _ = f.do(t, http.MethodPost, "/api/v1/payroll/periods/"+period.ID+"/runs/"+f.emp.ID, token, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, "/api/v1/payroll/periods/"+period.ID+"/lock", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env = f.do(t, http.MethodPost, "/api/v1/payroll/periods/"+period.ID+"/runs/"+f.emp.ID, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var run struct {
		NetPay    string `json:"net_pay"`
		WorkState string `json:"work_state"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &run))
	assert.Equal(t, "17850", run.NetPay)
	assert.Equal(t, "GJ", run.WorkState)

	resp, _ = f.do(t, http.MethodGet, "/api/v1/payroll/periods/"+period.ID+"/register.xlsx", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, xlsxContentType, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "payroll-register-")

	resp, _ = f.do(t, http.MethodPost, "/api/v1/payroll/periods/"+period.ID+"/finalize", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env = f.do(t, http.MethodPost, "/api/v1/payroll/periods/"+period.ID+"/lock", token, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "CONFLICT", env.Error.Code)
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}
