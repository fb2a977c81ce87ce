package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/articlehub/content-service/docs" // registers the swagger document
	"github.com/articlehub/content-service/internal/api/handler"
	"github.com/articlehub/content-service/internal/api/middleware"
	"github.com/articlehub/content-service/internal/api/session"
	"github.com/articlehub/content-service/internal/core/domain"
	"github.com/articlehub/content-service/internal/core/ports"
)

// Deps groups everything the router needs. Services are built in main.
type Deps struct {
	Auth     ports.AuthService
	Users    ports.UserService
	Articles ports.ArticleService
	Session  session.Config
	Health   map[string]handler.Pinger
	Log      zerolog.Logger

	// Registry receives the HTTP metrics. Nil means the default Prometheus
	// registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(deps.Log))
	e.Use(metricsMiddleware(deps.Registry))

	// --- Dependencies ---
	transport := session.NewTransport(deps.Session)
	authHandler := handler.NewAuthHandler(deps.Auth, transport)
	userHandler := handler.NewUserHandler(deps.Users)
	articleHandler := handler.NewArticleHandler(deps.Articles)
	requireUser := middleware.Auth(deps.Auth)

	// --- Session routes ---
	e.POST("/login", authHandler.Login)
	e.POST("/refresh", authHandler.Refresh)
	e.POST("/logout", authHandler.Logout, requireUser)
	e.GET("/users/me", authHandler.Me, requireUser)

	// --- Accounts ---
	e.POST("/user", userHandler.Register)
	e.GET("/user", userHandler.Get)
	e.PUT("/user", userHandler.UpdateProfile, requireUser)
	e.DELETE("/user", userHandler.Delete, requireUser)

	admin := e.Group("/admin_privilege", requireUser, middleware.RBAC(domain.RoleSuperadmin))
	admin.PUT("", userHandler.PromoteToAdmin)
	admin.DELETE("", userHandler.RevokeAdmin)

	// --- Articles ---
	e.GET("/article", articleHandler.List)
	e.GET("/article/:id", articleHandler.Get)
	e.POST("/article", articleHandler.Create, requireUser)
	e.PUT("/article/:id", articleHandler.Update, requireUser)
	e.DELETE("/article/:id", articleHandler.Delete, requireUser)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Health)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Operations ---
	e.GET("/metrics", metricsHandler(deps.Registry))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}

func metricsMiddleware(reg *prometheus.Registry) echo.MiddlewareFunc {
	cfg := echoprometheus.MiddlewareConfig{
		Namespace: "content",
		Subsystem: "http",
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}
	if reg != nil {
		cfg.Registerer = reg
	}
	return echoprometheus.NewMiddlewareWithConfig(cfg)
}

func metricsHandler(reg *prometheus.Registry) echo.HandlerFunc {
	if reg == nil {
		return echoprometheus.NewHandler()
	}
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg})
}
