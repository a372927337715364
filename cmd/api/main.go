package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/attendance-gateway/internal/config"
	"github.com/cmlabs-hris/attendance-gateway/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-gateway/internal/domain/session"
	appHTTP "github.com/cmlabs-hris/attendance-gateway/internal/handler/http"
	"github.com/cmlabs-hris/attendance-gateway/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-gateway/internal/pkg/apiclient"
	"github.com/cmlabs-hris/attendance-gateway/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-gateway/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-gateway/internal/pkg/inflight"
	"github.com/cmlabs-hris/attendance-gateway/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-gateway/internal/pkg/sealer"
	"github.com/cmlabs-hris/attendance-gateway/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-gateway/internal/repository/memory"
	"github.com/cmlabs-hris/attendance-gateway/internal/repository/postgresql"
	"github.com/cmlabs-hris/attendance-gateway/internal/repository/sqlite"
	attendanceService "github.com/cmlabs-hris/attendance-gateway/internal/service/attendance"
	serviceAuth "github.com/cmlabs-hris/attendance-gateway/internal/service/auth"
	dashboardService "github.com/cmlabs-hris/attendance-gateway/internal/service/dashboard"
	"github.com/cmlabs-hris/attendance-gateway/internal/service/evaluator"
	regularizationService "github.com/cmlabs-hris/attendance-gateway/internal/service/regularization"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cutoff, err := attendance.ParseCutoff(cfg.Attendance.Cutoff, cfg.Attendance.Timezone)
	if err != nil {
		slog.Error("Invalid attendance cutoff", "error", err)
		os.Exit(1)
	}
	rules := evaluator.NewRules(cutoff, cfg.Attendance.MinimumDailyHours)

	sessionRepo, closeStore, err := newSessionStore(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize session store", "store", cfg.Session.Store, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	JWTService := jwt.NewJWTService(cfg.JWT.Secret)
	hub := sse.NewHub()
	guard := inflight.New()

	client := apiclient.New(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, apiclient.WithLocation(cutoff.Location))

	authService := serviceAuth.NewAuthService(client, sessionRepo, JWTService, cfg.Session.TTL)
	client.SetUnauthorizedHook(authService.ExpireSession)

	attendanceSvc := attendanceService.NewAttendanceService(client, rules, guard, hub)
	regularizationSvc := regularizationService.NewRegularizationService(client, guard, hub)
	dashboardSvc := dashboardService.NewDashboardService(client, attendanceSvc, regularizationSvc, cutoff.String())

	scheduler := cron.NewScheduler()
	cron.NewSessionJobs(sessionRepo, JWTService).RegisterJobs(scheduler, cfg.Session.PruneInterval)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			FrontendURL: cfg.App.FrontendURL,
			Env:         cfg.App.Env,
			LogLevel:    cfg.SlogLevel(),
		},
		JWTService,
		middleware.NewSessionMiddleware(JWTService, sessionRepo),
		appHTTP.NewAuthHandler(authService),
		appHTTP.NewAttendanceHandler(attendanceSvc),
		appHTTP.NewRegularizationHandler(regularizationSvc),
		appHTTP.NewDashboardHandler(dashboardSvc),
		appHTTP.NewEventsHandler(JWTService, sessionRepo, hub),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr, "upstream", cfg.Upstream.BaseURL, "session_store", cfg.Session.Store, "cutoff", cutoff.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", "error", err)
	}
}

// newSessionStore opens the configured session store. Persistent stores seal
// the upstream tokens at rest.
func newSessionStore(ctx context.Context, cfg *config.Config) (session.SessionRepository, func(), error) {
	switch cfg.Session.Store {
	case config.SessionStorePostgres:
		box, err := sealer.New(cfg.Session.SealKey)
		if err != nil {
			return nil, nil, err
		}
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := postgresql.EnsureSessionSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return postgresql.NewSessionRepository(db, box), db.Close, nil

	case config.SessionStoreSQLite:
		box, err := sealer.New(cfg.Session.SealKey)
		if err != nil {
			return nil, nil, err
		}
		db, err := database.NewSQLiteDB(ctx, cfg.Database.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		if err := sqlite.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return sqlite.NewSessionStore(db, box), func() { db.Close() }, nil

	default:
		return memory.NewSessionStore(), func() {}, nil
	}
}
