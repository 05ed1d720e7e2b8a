package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/mapscrape/api/handler"
	"github.com/use-agent/mapscrape/api/middleware"
	"github.com/use-agent/mapscrape/cache"
	"github.com/use-agent/mapscrape/config"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring checks always work.
func NewRouter(sc handler.Scraper, cfg *config.Config, cc *cache.Cache, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health, no auth required.
	v1.GET("/health", handler.Health(sc, startTime))

	// Protected group: auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Single query
	protected.POST("/scrape", handler.Scrape(sc, cfg.Export))

	// Batch
	protected.POST("/batch", handler.PostBatch(sc, cc, cfg.Export))
	protected.GET("/batch/:id", handler.GetBatch())
	protected.GET("/batch/:id/csv", handler.GetBatchCSV())

	return r
}
