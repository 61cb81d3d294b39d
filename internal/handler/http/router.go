package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/hris-payroll-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// RouterOptions carries the ambient settings of the HTTP surface.
type RouterOptions struct {
	Env            string
	Version        string
	AllowedOrigins []string
	LogLevel       slog.Level
}

func NewRouter(
	opts RouterOptions,
	JWTService jwt.Service,
	attendanceHandler AttendanceHandler,
	compensationHandler CompensationHandler,
	complianceHandler ComplianceHandler,
	payrollHandler PayrollHandler,
	aiHandler AIHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(opts.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hris-payroll"),
		slog.String("version", opts.Version),
		slog.String("env", opts.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chiMiddleware.AllowContentType("application/json"))
		r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
		r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

		r.Route("/attendance", func(r chi.Router) {
			r.Post("/punch-in", attendanceHandler.PunchIn)
			r.Post("/{id}/punch-out", attendanceHandler.PunchOut)
			r.Get("/basis", attendanceHandler.GetBasis)

			// Payroll admin only
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePayrollAdmin)
				r.Post("/regularize", attendanceHandler.Regularize)
				r.Put("/{id}/regularize", attendanceHandler.Regularize)
				r.Put("/overrides", attendanceHandler.UpsertOverride)
				r.Get("/overrides/{employeeID}/{year}/{month}", attendanceHandler.GetOverride)
				r.Delete("/overrides/{employeeID}/{year}/{month}", attendanceHandler.DeleteOverride)
			})
		})

		r.Route("/compensations", func(r chi.Router) {
			r.Use(middleware.RequirePayrollAdmin)
			r.Get("/", compensationHandler.List)
			r.Post("/", compensationHandler.Create)
			r.Get("/active", compensationHandler.GetActive)
			r.Get("/evaluate", compensationHandler.Evaluate)
		})

		r.Route("/compliance", func(r chi.Router) {
			r.Get("/pt", complianceHandler.CalculatePT)
			r.With(middleware.RequirePayrollAdmin).Post("/apply", complianceHandler.Apply)
		})

		r.Route("/payroll/periods", func(r chi.Router) {
			r.Use(middleware.RequirePayrollAdmin)
			r.Get("/", payrollHandler.ListPeriods)
			r.Post("/", payrollHandler.CreatePeriod)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", payrollHandler.GetPeriod)
				r.Post("/lock", payrollHandler.LockPeriod)
				r.Post("/finalize", payrollHandler.FinalizePeriod)
				r.Get("/register.xlsx", payrollHandler.ExportRegister)

				r.Route("/runs", func(r chi.Router) {
					r.Get("/", payrollHandler.ListRuns)
					r.Post("/", payrollHandler.FinalizeAll)
					r.Get("/{employeeID}", payrollHandler.GetRun)
					r.Post("/{employeeID}", payrollHandler.FinalizeRun)
				})
			})
		})

		r.Route("/ai", func(r chi.Router) {
			r.Route("/policies", func(r chi.Router) {
				r.Get("/active", aiHandler.GetActivePolicy)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePayrollAdmin)
					r.Get("/", aiHandler.ListPolicies)
					r.Post("/", aiHandler.CreatePolicy)
					r.Post("/{id}/approve", aiHandler.ApprovePolicy)
					r.Post("/{id}/activate", aiHandler.ActivatePolicy)
					r.Post("/{id}/retire", aiHandler.RetirePolicy)
				})
			})

			r.Route("/runs", func(r chi.Router) {
				r.Use(middleware.RequirePayrollAdmin)
				r.Post("/", aiHandler.StartRun)
				r.Post("/{id}/decisions", aiHandler.RecordDecisions)
				r.Post("/{id}/complete", aiHandler.CompleteRun)
				r.Post("/{id}/fail", aiHandler.FailRun)
			})

			// Reviewers and payroll admins
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireReviewer)
				r.Get("/review-queue", aiHandler.ListReviewQueue)
				r.Post("/decisions/{id}/review", aiHandler.ReviewDecision)
				r.Post("/decisions/{id}/promote", aiHandler.PromoteDecision)
			})
		})
	})

	return r
}
