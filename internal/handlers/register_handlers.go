package handlers

import (
	"net/http"

	"github.com/SscSPs/ledger_engine/cmd/docs"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/SscSPs/ledger_engine/internal/platform/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
)

// RegisterRoutes sets up all application routes. rateLimiter may be nil to
// disable rate limiting.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	rateLimiter *limiter.Limiter,
) {
	r.Use(cors.New(corsConfig(cfg)))

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	setupAPIV1Routes(r, services, rateLimiter)

	// Swagger routes (typically public or conditionally available)
	setupSwaggerRoutes(r, cfg)
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.DefaultConfig()
	if len(cfg.CORSAllowedOrigins) == 0 || (len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORSAllowedOrigins
	}
	corsCfg.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsCfg.AddAllowHeaders(middleware.UserIDHeader, middleware.RequestIDHeader)
	corsCfg.AddExposeHeaders(middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After")
	return corsCfg
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(r *gin.Engine, services *portssvc.ServiceContainer, rateLimiter *limiter.Limiter) {
	v1 := r.Group("/api/v1")
	if rateLimiter != nil {
		v1.Use(middleware.RateLimit(rateLimiter))
	}
	v1.Use(middleware.CallerMiddleware())

	registerCurrencyRoutes(v1, services.Currency)
	registerAuditRoutes(v1, services.Audit, false)

	business := v1.Group("/businesses/:businessID", businessScope())
	registerSettingsRoutes(business, services.Settings)
	registerAccountGroupRoutes(business, services.Chart)
	registerLedgerRoutes(business, services.Chart)
	registerFinancialYearRoutes(business, services.FinancialYear)
	registerVoucherRoutes(business, services.Voucher)
	registerRatioRoutes(business, services.Ratio)
	registerReportingRoutes(business, services.Reporting)
	registerAuditRoutes(business, services.Audit, true)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
