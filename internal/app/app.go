// Package app assembles repositories, services and handlers for the binaries.
package app

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/hris-payroll-go/internal/config"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/ailedger"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/compensation"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/compliance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	appHTTP "github.com/cmlabs-hris/hris-payroll-go/internal/handler/http"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/postgresql"
	ailedgerService "github.com/cmlabs-hris/hris-payroll-go/internal/service/ailedger"
	attendanceService "github.com/cmlabs-hris/hris-payroll-go/internal/service/attendance"
	compensationService "github.com/cmlabs-hris/hris-payroll-go/internal/service/compensation"
	complianceService "github.com/cmlabs-hris/hris-payroll-go/internal/service/compliance"
	employeeService "github.com/cmlabs-hris/hris-payroll-go/internal/service/employee"
	payrollService "github.com/cmlabs-hris/hris-payroll-go/internal/service/payroll"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

type App struct {
	Config *config.Config
	DB     *database.DB

	JWT          jwt.Service
	Employees    employee.EmployeeService
	Attendance   attendance.Service
	Compensation compensation.CompensationService
	Compliance   compliance.ComplianceService
	Payroll      payroll.PayrollService
	Ledger       ailedger.LedgerService
}

func New(cfg *config.Config, db *database.DB) *App {
	transactor := postgresql.NewTransactor(db)

	recordRepo := postgresql.NewRecordRepository(db)
	overrideRepo := postgresql.NewOverrideRepository(db)
	shiftRepo := postgresql.NewShiftRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	compensationRepo := postgresql.NewCompensationRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)
	ledgerRepo := postgresql.NewLedgerRepository(db)

	attendanceSvc := attendanceService.NewAttendanceService(transactor, recordRepo, overrideRepo, shiftRepo, employeeRepo)
	compensationSvc := compensationService.NewCompensationService(compensationRepo, employeeRepo, attendanceSvc)
	complianceSvc := complianceService.NewComplianceService()
	payrollSvc := payrollService.NewPayrollService(
		transactor,
		payrollRepo,
		employeeRepo,
		compensationSvc,
		complianceSvc,
		cfg.Payroll.FinalizeConcurrency,
	)
	ledgerSvc := ailedgerService.NewLedgerService(
		transactor,
		ledgerRepo,
		employeeRepo,
		attendanceSvc,
		cfg.AI.ReviewConfidenceThreshold,
	)

	return &App{
		Config:       cfg,
		DB:           db,
		JWT:          jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration),
		Employees:    employeeService.NewEmployeeService(employeeRepo),
		Attendance:   attendanceSvc,
		Compensation: compensationSvc,
		Compliance:   complianceSvc,
		Payroll:      payrollSvc,
		Ledger:       ledgerSvc,
	}
}

// Router builds the HTTP surface over the assembled services.
func (a *App) Router() http.Handler {
	return appHTTP.NewRouter(
		appHTTP.RouterOptions{
			Env:            a.Config.App.Env,
			Version:        Version,
			AllowedOrigins: a.Config.App.AllowedOrigins,
			LogLevel:       a.Config.SlogLevel(),
		},
		a.JWT,
		appHTTP.NewAttendanceHandler(a.Attendance, a.Employees),
		appHTTP.NewCompensationHandler(a.Compensation, a.Employees),
		appHTTP.NewComplianceHandler(a.Compliance, a.Employees),
		appHTTP.NewPayrollHandler(a.Payroll, a.Employees),
		appHTTP.NewAIHandler(a.Ledger),
	)
}

// Scheduler registers the maintenance jobs. The caller starts and stops it.
func (a *App) Scheduler() *cron.Scheduler {
	scheduler := cron.NewScheduler()
	cron.NewAttendanceJobs(a.Attendance, a.Config.Attendance.StaleSessionAge).RegisterJobs(scheduler)
	cron.NewLedgerJobs(a.Ledger, a.Config.AI.RunTimeout).RegisterJobs(scheduler)
	return scheduler
}

// NewLogger returns the process-wide JSON logger at the configured level.
func NewLogger(cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
}
