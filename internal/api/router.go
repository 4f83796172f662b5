package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	swagger "github.com/go-swagno/swagno-fiber/swagger"
	"github.com/saturnino-fabrica-de-software/chamada/internal/api/docs"
	"github.com/saturnino-fabrica-de-software/chamada/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/chamada/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/chamada/internal/audit"
	"github.com/saturnino-fabrica-de-software/chamada/internal/matcher"
	"github.com/saturnino-fabrica-de-software/chamada/internal/provider"
	"github.com/saturnino-fabrica-de-software/chamada/internal/service"
	"github.com/saturnino-fabrica-de-software/chamada/internal/ws"
)

type Dependencies struct {
	ClassroomRepo  service.ClassroomRepositoryInterface
	StudentRepo    service.StudentRepositoryInterface
	AttendanceRepo service.AttendanceRepositoryInterface
	Roster         service.RosterSource
	Trainer        service.Trainer
	Provider       provider.EmbeddingProvider
	FaceCounter    provider.FaceCounter
	Authenticator  middleware.TokenAuthenticator

	Policy             matcher.Policy
	Location           *time.Location
	RateLimitPerMinute int

	// ReadinessChecks are probed by GET /ready
	ReadinessChecks map[string]handler.ReadinessCheck
}

type Router struct {
	app         *fiber.App
	logger      *slog.Logger
	deps        *Dependencies
	version     string
	rateLimiter *middleware.RateLimiter
	wsHub       *ws.Hub
	cancelHub   context.CancelFunc
}

func NewRouter(logger *slog.Logger, version string, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Chamada API",
		BodyLimit:    12 * 1024 * 1024,
	})

	return &Router{
		app:     app,
		logger:  logger,
		deps:    deps,
		version: version,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Swagger documentation (no auth required)
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	// Health, readiness and metrics (no auth required)
	var checks map[string]handler.ReadinessCheck
	if r.deps != nil {
		checks = r.deps.ReadinessChecks
	}
	healthHandler := handler.NewHealthHandler(r.version, checks)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)
	r.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Only configure authenticated routes if dependencies were provided
	if r.deps == nil {
		return
	}

	// Live attendance feed
	r.wsHub = ws.NewHub()
	hubCtx, hubCancel := context.WithCancel(context.Background())
	r.cancelHub = hubCancel
	go r.wsHub.Run(hubCtx)

	// Every event reaches live subscribers and the audit trail
	publisher := service.Publishers{r.wsHub, audit.NewTrail(r.logger)}

	classroomService := service.NewClassroomService(r.deps.ClassroomRepo)

	attendanceService := service.NewAttendanceService(
		r.deps.ClassroomRepo,
		r.deps.StudentRepo,
		r.deps.Roster,
		r.deps.AttendanceRepo,
		r.deps.Trainer,
		r.deps.Provider,
		r.logger,
	).WithPolicy(r.deps.Policy).
		WithLocation(r.deps.Location).
		WithPublisher(publisher)

	enrollmentService := service.NewEnrollmentService(
		r.deps.ClassroomRepo,
		r.deps.StudentRepo,
		r.deps.Roster,
		r.deps.Trainer,
		r.deps.Provider,
		r.logger,
	).WithFaceCounter(r.deps.FaceCounter).
		WithPolicy(r.deps.Policy).
		WithPublisher(publisher)

	classroomHandler := handler.NewClassroomHandler(classroomService, r.logger)
	detectionHandler := handler.NewDetectionHandler(attendanceService, r.logger)
	attendanceHandler := handler.NewAttendanceHandler(attendanceService, r.logger)
	studentHandler := handler.NewStudentHandler(enrollmentService, r.logger)

	// API v1 group with teacher authentication
	v1 := r.app.Group("/v1")
	v1.Use(middleware.Auth(r.deps.Authenticator, r.logger))

	// Rate limiting (per teacher) - must come after auth to have teacher context
	limiterConfig := middleware.DefaultRateLimiterConfig()
	if r.deps.RateLimitPerMinute > 0 {
		limiterConfig.Max = r.deps.RateLimitPerMinute
	}
	r.rateLimiter = middleware.NewRateLimiter(limiterConfig)
	v1.Use(r.rateLimiter.Handler())

	// Classrooms
	v1.Post("/classrooms", classroomHandler.Create)
	v1.Get("/classrooms", classroomHandler.List)

	// Detection and review
	v1.Post("/classrooms/:classroom_id/detections", detectionHandler.Detect)
	v1.Post("/classrooms/:classroom_id/diagnose", detectionHandler.Diagnose)
	v1.Post("/sessions/review", detectionHandler.Review)

	// Attendance ledger
	v1.Post("/classrooms/:classroom_id/attendance/confirm", attendanceHandler.Confirm)
	v1.Post("/classrooms/:classroom_id/attendance", attendanceHandler.Mark)
	v1.Get("/classrooms/:classroom_id/attendance", attendanceHandler.List)
	v1.Delete("/classrooms/:classroom_id/attendance/:student_id", attendanceHandler.Unmark)

	// Enrollment and training samples
	v1.Post("/classrooms/:classroom_id/students", studentHandler.Enroll)
	v1.Post("/students/:student_id/photos", studentHandler.AddPhoto)
	v1.Post("/students/:student_id/verify", studentHandler.Verify)
	v1.Post("/students/:student_id/samples", studentHandler.AddSample)
	v1.Delete("/students/:student_id/samples", studentHandler.ResetSamples)

	// WebSocket endpoint
	v1.Get("/classrooms/:classroom_id/ws",
		ws.UpgradeMiddleware(),
		classroomHandler.AuthorizeFeed,
		ws.Handler(r.wsHub),
	)
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	// Stop WebSocket hub
	if r.cancelHub != nil {
		r.cancelHub()
	}

	// Stop rate limiter cleanup goroutine
	if r.rateLimiter != nil {
		r.rateLimiter.Stop()
	}

	return r.app.Shutdown()
}
