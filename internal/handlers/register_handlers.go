package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/bp848/mqdriven-sub001/cmd/docs"
	portssvc "github.com/bp848/mqdriven-sub001/internal/core/ports/services"
	"github.com/bp848/mqdriven-sub001/internal/middleware"
	"github.com/bp848/mqdriven-sub001/internal/platform/config"
	"github.com/bp848/mqdriven-sub001/internal/platform/metrics"
	"github.com/bp848/mqdriven-sub001/internal/repositories/backend"
)

// HealthReporter exposes the backend's degradation state.
type HealthReporter interface {
	HasPrimary() bool
	Degradations() []backend.Degradation
}

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	health HealthReporter,
) {
	r.GET("/health", healthHandler(health))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Apply AuthMiddleware to the entire v1 group
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))
	RegisterAPIRoutes(v1, services)

	setupSwaggerRoutes(r, cfg)
}

// RegisterAPIRoutes delegates route registration to the entity handlers.
func RegisterAPIRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	registerApplicationRoutes(rg, services.Application, services.Journal, services.Intake)
	registerJournalRoutes(rg, services.Journal)
	registerAccountingRoutes(rg, services.Accounting)
}

// healthHandler reports "degraded" while any table is served from the fallback store.
// It answers 200 in both states.
func healthHandler(health HealthReporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "ok"
		degradations := health.Degradations()
		if !health.HasPrimary() || len(degradations) > 0 {
			status = "degraded"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":       status,
			"primary":      health.HasPrimary(),
			"degradations": degradations,
		})
	}
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
