package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hrpulse-backend-go/internal/config"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/attendance"
	appHTTP "github.com/cmlabs-hris/hrpulse-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/pkg/qr"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/repository/firestore"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hrpulse-backend-go/internal/service/attendance"
	serviceAuth "github.com/cmlabs-hris/hrpulse-backend-go/internal/service/auth"
	dashboardService "github.com/cmlabs-hris/hrpulse-backend-go/internal/service/dashboard"
	employeeService "github.com/cmlabs-hris/hrpulse-backend-go/internal/service/employee"
	payrollService "github.com/cmlabs-hris/hrpulse-backend-go/internal/service/payroll"
	settingsService "github.com/cmlabs-hris/hrpulse-backend-go/internal/service/settings"
)

const version = "v1.0.0"

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	employeeRepo := postgresql.NewEmployeeRepository(db)
	settingsRepo := postgresql.NewSettingsRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)
	revocationRepo := postgresql.NewRevocationRepository(db)

	var (
		tokenRepo   attendance.TokenRepository
		workDayRepo attendance.WorkDayRepository
	)
	switch cfg.Attendance.Store {
	case config.StoreFirestore:
		client, err := firestore.NewClient(ctx, cfg.Firestore.ProjectID, cfg.Firestore.CredentialsFile)
		if err != nil {
			return err
		}
		defer client.Close()
		tokenRepo = firestore.NewAttendanceTokenRepository(client)
		workDayRepo = firestore.NewWorkDayRepository(client)
	default:
		tokenRepo = postgresql.NewAttendanceTokenRepository(db)
		workDayRepo = postgresql.NewWorkDayRepository(db)
	}
	slog.Info("attendance store selected", "store", cfg.Attendance.Store)

	loc := cfg.Location()
	hub := sse.NewHub()
	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.SSEExpiration)
	if err := serviceAuth.RestoreRevocations(ctx, revocationRepo, JWTService); err != nil {
		return err
	}

	issuer := attendanceService.NewIssuer(tokenRepo, settingsRepo, qr.NewPNGEncoder(cfg.Attendance.QRCodeSize), cfg.Attendance.StoreTimeout)
	verifier := attendanceService.NewVerifier(tokenRepo, cfg.Attendance.StoreTimeout)
	recorder := attendanceService.NewRecorder(employeeRepo, settingsRepo, workDayRepo, loc, cfg.Attendance.StoreTimeout)

	attendanceSvc := attendanceService.NewAttendanceService(
		tokenRepo,
		workDayRepo,
		employeeRepo,
		issuer,
		verifier,
		recorder,
		hub,
		attendanceService.Config{
			Location:        loc,
			StoreTimeout:    cfg.Attendance.StoreTimeout,
			DefaultRotation: cfg.Attendance.DefaultRotation,
		},
	)
	authSvc := serviceAuth.NewAuthService(employeeRepo, revocationRepo, JWTService)
	employeeSvc := employeeService.NewEmployeeService(employeeRepo)
	settingsSvc := settingsService.NewSettingsService(settingsRepo)
	payrollSvc := payrollService.NewPayrollService(payrollRepo)
	dashboardSvc := dashboardService.NewDashboardService(employeeRepo, workDayRepo, hub, loc)

	scheduler := cron.NewScheduler()
	cron.NewMaintenanceJobs(attendanceSvc, JWTService, revocationRepo, cfg.Attendance.PurgeInterval).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			AllowedOrigins: cfg.App.AllowedOrigins,
			Env:            cfg.App.Env,
			Version:        version,
			LogLevel:       cfg.SlogLevel(),
		},
		JWTService,
		employeeRepo,
		appHTTP.Handlers{
			Auth:       appHTTP.NewAuthHandler(authSvc),
			Employee:   appHTTP.NewEmployeeHandler(employeeSvc),
			Attendance: appHTTP.NewAttendanceHandler(attendanceSvc),
			Dashboard:  appHTTP.NewDashboardHandler(dashboardSvc),
			Payroll:    appHTTP.NewPayrollHandler(payrollSvc),
			Settings:   appHTTP.NewSettingsHandler(settingsSvc),
		},
	)

	// Request contexts derive from ctx so open SSE streams end on shutdown.
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
