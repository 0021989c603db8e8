package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterOptions struct {
	AllowedOrigins []string
	Env            string
	Version        string
	LogLevel       slog.Level
}

type Handlers struct {
	Auth       AuthHandler
	Employee   EmployeeHandler
	Attendance AttendanceHandler
	Dashboard  DashboardHandler
	Payroll    PayrollHandler
	Settings   SettingsHandler
}

func NewRouter(opts RouterOptions, JWTService jwt.Service, employees middleware.EmployeeLookup, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(opts.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hrpulse"),
		slog.String("version", opts.Version),
		slog.String("env", opts.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", h.Auth.Login)

		// EventSource streams authenticate with ?token=
		r.Group(func(r chi.Router) {
			r.Use(middleware.StreamAuth(JWTService, employees))
			r.With(middleware.RequireScreen(user.ScreenAttendanceQR)).Get("/attendance/tokens/stream", h.Attendance.StreamTokens)
			r.With(middleware.RequireScreen(user.ScreenDashboard)).Get("/dashboard/stream", h.Dashboard.Stream)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService))

			r.Post("/auth/logout", h.Auth.Logout)
			r.Get("/auth/me", h.Auth.Me)
			r.Post("/auth/sse-token", h.Auth.SSEToken)

			r.Route("/employees", func(r chi.Router) {
				// Self service
				r.Get("/{id}", h.Employee.GetEmployee)
				r.Put("/me/password", h.Employee.ChangePassword)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireScreen(user.ScreenEmployees))
					r.Get("/", h.Employee.ListEmployees)
					r.Post("/", h.Employee.CreateEmployee)
					r.Put("/{id}", h.Employee.UpdateEmployee)
					r.Delete("/{id}", h.Employee.DeleteEmployee)
					r.Post("/{id}/reset-device", h.Employee.ResetDevice)
				})
			})

			r.Route("/attendance", func(r chi.Router) {
				r.Get("/me", h.Attendance.GetMyAttendance)
				r.With(middleware.RequireScreen(user.ScreenScan)).Post("/scan", h.Attendance.Scan)
				r.With(middleware.RequireScreen(user.ScreenAttendanceQR)).Post("/tokens", h.Attendance.IssueToken)
				r.With(middleware.RequireScreen(user.ScreenSettings)).Delete("/tokens/stale", h.Attendance.PurgeStaleTokens)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireScreen(user.ScreenAttendance))
					r.Get("/", h.Attendance.List)
					r.Get("/export", h.Attendance.Export)
					r.Get("/{id}", h.Attendance.Get)
				})
			})

			r.With(middleware.RequireScreen(user.ScreenDashboard)).Get("/dashboard/today", h.Dashboard.GetToday)

			r.Route("/payrolls", func(r chi.Router) {
				r.Use(middleware.RequireScreen(user.ScreenPayroll))
				r.Get("/", h.Payroll.ListPayrolls)
				r.Get("/{id}", h.Payroll.GetPayroll)
				r.Post("/{id}/pay", h.Payroll.MarkPaid)
			})

			r.Get("/settings/attendance", h.Settings.GetAttendanceSettings)
			r.With(middleware.RequireScreen(user.ScreenSettings)).Put("/settings/attendance", h.Settings.UpdateAttendanceSettings)
		})
	})
	return r
}
