package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/attendance-gateway/internal/domain/user"
	"github.com/cmlabs-hris/attendance-gateway/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-gateway/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-gateway/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// RouterOptions carries the deployment settings the router needs.
type RouterOptions struct {
	FrontendURL string
	Env         string
	LogLevel    slog.Level
}

func NewRouter(
	opts RouterOptions,
	JWTService jwt.Service,
	sessionMiddleware *middleware.SessionMiddleware,
	authHandler AuthHandler,
	attendanceHandler AttendanceHandler,
	regularizationHandler RegularizationHandler,
	dashboardHandler DashboardHandler,
	eventsHandler EventsHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(opts.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "attendance-gateway"),
		slog.String("version", "v1.0.0"),
		slog.String("env", opts.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{opts.FrontendURL},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
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

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Get("/managers", authHandler.Managers)

			r.Group(func(r chi.Router) {
				r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
				r.Use(sessionMiddleware.AuthRequired)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// Authenticated by its own short-lived token
		r.Get("/events", eventsHandler.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(sessionMiddleware.AuthRequired)

			r.Get("/me", authHandler.Me)
			r.Get("/dashboard", dashboardHandler.GetDashboard)
			r.Get("/events/token", eventsHandler.GetSSEToken)

			r.Route("/attendance", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireCapability(user.CapabilityCheckIn))
					r.Get("/timeliness", attendanceHandler.Timeliness)
					r.Post("/check-in", attendanceHandler.CheckIn)
					r.Post("/check-out", attendanceHandler.CheckOut)
				})

				r.With(middleware.RequireCapability(user.CapabilityAttendanceViewOwn)).
					Get("/me", attendanceHandler.GetMyAttendance)
				r.With(middleware.RequireCapability(user.CapabilityAttendanceViewTeam)).
					Get("/team", attendanceHandler.GetTeamAttendance)
				r.With(middleware.RequireCapability(user.CapabilityAttendanceViewAll)).
					Get("/lookup", attendanceHandler.Lookup)
			})

			r.Route("/regularizations", func(r chi.Router) {
				r.With(middleware.RequireCapability(user.CapabilityRegularizationSubmit)).
					Post("/", regularizationHandler.Submit)
				r.With(middleware.RequireCapability(user.CapabilityRegularizationViewOwn)).
					Get("/me", regularizationHandler.GetMyRequests)

				// Approvers only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireCapability(user.CapabilityRegularizationApprove))
					r.Get("/", regularizationHandler.List)
					r.Post("/{id}/approve", regularizationHandler.Approve)
					r.Post("/{id}/reject", regularizationHandler.Reject)
				})
			})

			r.With(middleware.RequireCapability(user.CapabilityUserViewAll)).
				Get("/users", dashboardHandler.ListUsers)
			r.With(middleware.RequireCapability(user.CapabilitySummaryView)).
				Get("/summary", dashboardHandler.GetSummary)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found")
	})

	return r
}
