// Package api exposes the simulation over HTTP.
package api

import (
	"net/http"

	"marketshare/internal/api/handlers"
	"marketshare/internal/api/middleware"
	"marketshare/internal/api/models"
	"marketshare/internal/config"
	"marketshare/internal/data"
	"marketshare/internal/diag"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Deps are the collaborators the router is built from.
type Deps struct {
	Settings config.ServerSettings
	Logger   *zap.Logger
	Cache    *data.RunCache
	// Registry receives the HTTP and diagnostic metrics and backs /metrics.
	Registry *prometheus.Registry
}

func NewRouter(deps Deps) (*gin.Engine, error) {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	cache := deps.Cache
	if cache == nil {
		cache = data.NewRunCache(deps.Settings.RunTTL)
	}

	httpMetrics, err := middleware.NewHTTPMetrics(reg)
	if err != nil {
		return nil, err
	}
	diagMetrics, err := diag.NewMetrics(reg)
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(middleware.ErrorHandler(log))
	router.Use(middleware.Logger(log))
	router.Use(middleware.CORS(deps.Settings.CORSOrigins))
	router.Use(httpMetrics.Handler())

	store := handlers.NewScenarioStore(deps.Settings.ScenarioDir)
	scenarioHandler := handlers.NewScenarioHandler(store, log)
	runHandler := handlers.NewRunHandler(store, cache, diagMetrics, log)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "runs": cache.Len()})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/scenarios", scenarioHandler.ListScenarios)
		v1.GET("/kinds", handlers.ListKinds)
		v1.GET("/transform", handlers.Transform)

		v1.POST("/runs", runHandler.CreateRun)
		v1.POST("/runs/compare", runHandler.CompareRuns)
		v1.GET("/runs/:id", runHandler.GetRun)
		v1.GET("/runs/:id/ledger", runHandler.GetLedger)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: models.ErrorDetail{Code: "NOT_FOUND", Message: "Not found"},
		})
	})

	log.Info("router ready", zap.String("scenario_dir", store.Dir()))
	return router, nil
}
