package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	_ "github.com/doctorsportal/appointments-system/docs"
	"github.com/doctorsportal/appointments-system/internal/api/handler"
	"github.com/doctorsportal/appointments-system/internal/api/metrics"
	"github.com/doctorsportal/appointments-system/internal/api/middleware"
	"github.com/doctorsportal/appointments-system/internal/core/ports"
	"github.com/doctorsportal/appointments-system/internal/core/service"
	mongostore "github.com/doctorsportal/appointments-system/internal/infrastructure/db/mongo"
	redisstore "github.com/doctorsportal/appointments-system/internal/infrastructure/db/redis"
	"github.com/doctorsportal/appointments-system/pkg/logger"
)

// RouterDeps are the shared handles built once in main.
type RouterDeps struct {
	DB       *mongo.Database
	Redis    *redis.Client
	Verifier ports.IdentityVerifier
	Gateway  ports.PaymentGateway
	Currency string
	Options  Options
	Log      zerolog.Logger
}

// Options tunes the HTTP surface.
type Options struct {
	CORSOrigins []string
	// Registerer receives the HTTP metrics; nil means the default registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// Services is everything the routes call into.
type Services struct {
	Verifier     ports.IdentityVerifier
	Authorizer   ports.AdminAuthorizer
	Users        ports.UserService
	Appointments ports.AppointmentService
	Doctors      ports.DoctorService
	Payments     ports.PaymentService
	Health       map[string]handler.DependencyCheck
}

// NewRouter builds the repositories and services over the given handles and
// returns the Echo instance with all routes registered.
func NewRouter(deps RouterDeps) *echo.Echo {
	users := mongostore.NewUserRepository(deps.DB)
	audit := mongostore.NewRoleAuditRepository(deps.DB)
	appointments := mongostore.NewAppointmentRepository(deps.DB)
	doctors := mongostore.NewDoctorRepository(deps.DB)
	intents := redisstore.NewIntentCache(deps.Redis)

	authorizer := service.NewAuthorizer(users, logger.Component(deps.Log, "authorizer"))

	return NewEcho(Services{
		Verifier:     deps.Verifier,
		Authorizer:   authorizer,
		Users:        service.NewUserService(users, audit, authorizer, logger.Component(deps.Log, "users")),
		Appointments: service.NewAppointmentService(appointments, authorizer, logger.Component(deps.Log, "appointments")),
		Doctors:      service.NewDoctorService(doctors, logger.Component(deps.Log, "doctors")),
		Payments:     service.NewPaymentService(deps.Gateway, intents, deps.Currency, logger.Component(deps.Log, "payments")),
		Health: map[string]handler.DependencyCheck{
			"mongodb": func(ctx context.Context) error { return deps.DB.Client().Ping(ctx, readpref.Primary()) },
			"redis":   func(ctx context.Context) error { return deps.Redis.Ping(ctx).Err() },
		},
	}, deps.Options, deps.Log)
}

// NewEcho registers middleware and routes over already-built services.
func NewEcho(s Services, opts Options, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	registerer := opts.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(requestLogger(log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
			handler.HeaderIdempotencyKey,
		},
	}))
	e.Use(echomiddleware.BodyLimit("6M"))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  metrics.Namespace,
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
	e.Use(middleware.Authenticate(s.Verifier, logger.Component(log, "auth")))

	// --- Handlers ---
	users := handler.NewUserHandler(s.Users)
	appointments := handler.NewAppointmentHandler(s.Appointments)
	doctors := handler.NewDoctorHandler(s.Doctors)
	payments := handler.NewPaymentHandler(s.Payments)
	health := handler.NewHealthHandler(s.Health)

	// --- Public ---
	e.GET("/", handler.Root)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Users ---
	e.GET("/users/:email", users.IsAdmin)
	e.POST("/users", users.Register)
	e.PUT("/users", users.SaveProfile)
	e.PUT("/users/admin", users.GrantAdmin)

	// --- Appointments (reads and payment updates: owner or admin) ---
	e.GET("/appointments", appointments.List)
	e.GET("/appointments/:id", appointments.Get)
	e.POST("/appointments", appointments.Book)
	e.PUT("/appointments/:id", appointments.RecordPayment)

	// --- Doctors ---
	e.GET("/doctors", doctors.List)
	e.POST("/doctors", doctors.Add, middleware.RequireAdmin(s.Authorizer, "add_doctor"))

	// --- Payments ---
	e.POST("/create-payment-intent", payments.CreateIntent)

	return e
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
