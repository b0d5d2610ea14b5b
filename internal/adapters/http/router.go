package http

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotation-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotation-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotation-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quotation-service/internal/platform/config"
	"github.com/jsamuelsen/quotation-service/internal/platform/telemetry"
)

// RouterConfig carries what SetupRouter mounts. Nil handlers are skipped.
type RouterConfig struct {
	App    *config.AppConfig
	Server *config.ServerConfig
	Auth   *config.AuthConfig

	HealthHandler    *handlers.HealthHandler
	QuotationHandler *handlers.QuotationHandler
}

// NewRouterConfig picks the router settings out of the loaded config.
func NewRouterConfig(cfg *config.Config, health *handlers.HealthHandler, quotations *handlers.QuotationHandler) RouterConfig {
	return RouterConfig{
		App:              &cfg.App,
		Server:           &cfg.Server,
		Auth:             &cfg.Auth,
		HealthHandler:    health,
		QuotationHandler: quotations,
	}
}

// SetupRouter installs global middleware and mounts the route groups:
//
//	/-/       probes, build info and metrics; no auth, no deadline
//	/api/v1/  the quotation API
//
// Global middleware runs in this order: recovery, request id,
// correlation id, CORS when origins are configured, tracing and metrics,
// then the access log.
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		middleware.Recovery(nil),
		middleware.RequestID(),
		middleware.CorrelationID(),
	)

	if cfg.Server != nil && len(cfg.Server.CORS.AllowedOrigins) > 0 {
		engine.Use(cors.New(corsConfig(cfg.Server.CORS)))
	}

	if cfg.App != nil {
		engine.Use(telemetry.Middleware(cfg.App.Name)...)
	}

	engine.Use(middleware.AccessLog())

	engine.NoRoute(func(c *gin.Context) {
		dto.AbortWithCode(c, dto.ErrorCodeNotFound, "no route for "+c.Request.Method+" "+c.Request.URL.Path)
	})

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutesOnEngine(engine)
	}

	api := engine.Group("/api/v1")
	if cfg.Server != nil {
		api.Use(middleware.Deadline(cfg.Server.RequestTimeout))
	}

	if cfg.Auth != nil && cfg.Auth.Enabled {
		api.Use(middleware.RequireAuth(cfg.Auth), middleware.AuthorizeQuotations(cfg.Auth))
	}

	if cfg.QuotationHandler != nil {
		cfg.QuotationHandler.RegisterQuotationRoutes(api)
	}
}

func corsConfig(c config.CORSConfig) cors.Config {
	cc := cors.DefaultConfig()
	cc.AllowOrigins = c.AllowedOrigins
	cc.AllowCredentials = c.AllowCredentials
	cc.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	cc.AllowHeaders = append(cc.AllowHeaders,
		"Authorization",
		middleware.HeaderRequestID,
		middleware.HeaderCorrelationID,
	)
	cc.ExposeHeaders = []string{
		"Content-Disposition",
		middleware.HeaderRequestID,
		middleware.HeaderCorrelationID,
		telemetry.HeaderTraceID,
	}

	if c.MaxAge > 0 {
		cc.MaxAge = c.MaxAge
	}

	return cc
}
