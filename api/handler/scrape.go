package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/mapscrape/config"
	"github.com/use-agent/mapscrape/export"
	"github.com/use-agent/mapscrape/models"
	"github.com/use-agent/mapscrape/pipeline"
)

// Scraper is the browser-backed side of the API. *scraper.Scraper
// implements it.
type Scraper interface {
	DoScrape(ctx context.Context, req *models.ScrapeRequest, emit pipeline.RecordFunc) ([]models.Record, models.TimingInfo, error)
	DoBatch(ctx context.Context, req *models.BatchRequest, onRecord pipeline.RecordFunc, progress pipeline.ProgressFunc) (*models.ScrapeBatch, error)
	Stats() models.PoolStats
}

// Scrape returns a handler for POST /api/v1/scrape.
//
// Orchestration flow:
//  1. Parse request.
//  2. Scraper.DoScrape → records   (validation, navigation, pagination, extraction)
//  3. Resolve export filename, fill Timing, return 200.
//
// Structural absence (no feed, no entries) is reported with 404 and an
// empty record list.
func Scrape(sc Scraper, exportCfg config.ExportConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		// ── 1. Parse request ────────────────────────────────────────
		var req models.ScrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ScrapeResponse{
				Success: false,
				Records: []models.Record{},
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}

		// ── 2. Scrape ───────────────────────────────────────────────
		records, timing, err := sc.DoScrape(c.Request.Context(), &req, nil)
		timing.TotalMs = time.Since(totalStart).Milliseconds()
		if err != nil {
			respondError(c, err, timing)
			return
		}

		// ── 3. Respond ──────────────────────────────────────────────
		c.JSON(http.StatusOK, models.ScrapeResponse{
			Success:  true,
			Records:  records,
			Total:    len(records),
			Filename: export.Filename(req.Filename, exportCfg.FilenamePrefix, "", time.Now()),
			Timing:   timing,
		})
	}
}

// respondError maps a ScrapeError to the correct HTTP status code and writes
// a structured JSON error response.
func respondError(c *gin.Context, err error, timing models.TimingInfo) {
	var scrapeErr *models.ScrapeError
	if !errors.As(err, &scrapeErr) {
		scrapeErr = models.NewScrapeError(models.ErrCodeInternal, err.Error(), err)
	}

	c.JSON(mapErrorToStatus(scrapeErr), models.ScrapeResponse{
		Success: false,
		Records: []models.Record{},
		Error:   scrapeErr.ToDetail(),
		Timing:  timing,
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.ScrapeError) int {
	switch e.Code {
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeNavigation:
		return http.StatusBadGateway // 502
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	case models.ErrCodeFeedNotFound, models.ErrCodeNoEntries, models.ErrCodeNotFound:
		return http.StatusNotFound // 404
	case models.ErrCodeBrowserCrash:
		return http.StatusServiceUnavailable // 503
	default:
		return http.StatusInternalServerError // 500
	}
}
