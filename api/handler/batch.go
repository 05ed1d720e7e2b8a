package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/use-agent/mapscrape/cache"
	"github.com/use-agent/mapscrape/config"
	"github.com/use-agent/mapscrape/export"
	"github.com/use-agent/mapscrape/models"
	"github.com/use-agent/mapscrape/pipeline"
	"github.com/use-agent/mapscrape/webhook"
)

// batchJob is one submitted batch. While it runs, batch.Records mirrors
// every record as it is produced; on completion it is replaced by the
// orchestrator's result.
type batchJob struct {
	mu       sync.RWMutex
	batch    *models.ScrapeBatch
	filename string
}

// batchStore holds all in-flight and completed batch jobs.
var batchStore sync.Map

func init() {
	// Background goroutine to expire batch jobs older than 1 hour.
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			cutoff := time.Now().Add(-1 * time.Hour)
			batchStore.Range(func(key, value any) bool {
				job := value.(*batchJob)
				job.mu.RLock()
				expired := job.batch.Done() && job.batch.DoneAt.Before(cutoff)
				job.mu.RUnlock()
				if expired {
					batchStore.Delete(key)
				}
				return true
			})
		}
	}()
}

func loadJob(id string) (*batchJob, bool) {
	val, ok := batchStore.Load(id)
	if !ok {
		return nil, false
	}
	return val.(*batchJob), true
}

// snapshot copies the job's state for a response.
func (j *batchJob) snapshot() models.BatchStatusResponse {
	j.mu.RLock()
	defer j.mu.RUnlock()

	b := j.batch
	records := make([]models.Record, len(b.Records))
	copy(records, b.Records)
	failures := make([]models.VariantFailure, len(b.Failures))
	copy(failures, b.Failures)

	return models.BatchStatusResponse{
		ID:        b.ID,
		Status:    b.Status,
		Progress:  fmt.Sprintf("%d/%d", b.Completed, b.Total),
		Completed: b.Completed,
		Total:     b.Total,
		Count:     len(records),
		Records:   records,
		Failures:  failures,
		Filename:  j.filename,
	}
}

// PostBatch returns a handler for POST /api/v1/batch.
// It validates the request, registers a job and runs the batch in the
// background. A cached batch younger than max_age is served immediately.
func PostBatch(sc Scraper, cc *cache.Cache, exportCfg config.ExportConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.BatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}

		term, variants, err := pipeline.Validate(req.Term, req.Variants)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": toDetail(err)})
			return
		}
		req.Term, req.Variants = term, variants

		now := time.Now()
		jobID := "batch-" + uuid.NewString()
		job := &batchJob{
			filename: export.Filename(req.Filename, exportCfg.FilenamePrefix, term, now),
		}

		// ── Cache lookup ───────────────────────────────────────────
		cacheKey := cache.Key(term, variants)
		if cc != nil && req.MaxAge > 0 {
			if cached, hit := cc.Get(cacheKey, req.MaxAge); hit {
				b := *cached
				b.ID = jobID
				job.batch = &b
				batchStore.Store(jobID, job)

				c.JSON(http.StatusOK, models.BatchResponse{
					ID:          jobID,
					Status:      b.Status,
					Total:       b.Total,
					CacheStatus: "hit",
				})
				return
			}
		}

		job.batch = &models.ScrapeBatch{
			ID:        jobID,
			Term:      term,
			Variants:  variants,
			Records:   []models.Record{},
			Status:    models.StatusProcessing,
			Total:     len(variants),
			CreatedAt: now,
		}
		batchStore.Store(jobID, job)

		go runBatch(sc, cc, job, req, cacheKey)

		resp := models.BatchResponse{
			ID:     jobID,
			Status: models.StatusProcessing,
			Total:  len(variants),
		}
		if cc != nil && req.MaxAge > 0 {
			resp.CacheStatus = "miss"
		}
		c.JSON(http.StatusOK, resp)
	}
}

// GetBatch returns a handler for GET /api/v1/batch/:id.
func GetBatch() gin.HandlerFunc {
	return func(c *gin.Context) {
		job, ok := loadJob(c.Param("id"))
		if !ok {
			batchNotFound(c)
			return
		}
		c.JSON(http.StatusOK, job.snapshot())
	}
}

// GetBatchCSV returns a handler for GET /api/v1/batch/:id/csv. The export is
// only available once the batch has finished with at least one record.
func GetBatchCSV() gin.HandlerFunc {
	return func(c *gin.Context) {
		job, ok := loadJob(c.Param("id"))
		if !ok {
			batchNotFound(c)
			return
		}

		snap := job.snapshot()
		switch {
		case snap.Status == models.StatusProcessing:
			c.JSON(http.StatusConflict, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "batch is still processing (" + snap.Progress + ")",
				},
			})
			return
		case snap.Count == 0:
			c.JSON(http.StatusNotFound, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeNotFound,
					Message: "batch produced no records",
				},
			})
			return
		}

		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, snap.Filename))
		c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(export.CSV(snap.Records, true)))
	}
}

// runBatch drives one batch to completion, mirroring progress into job.
func runBatch(sc Scraper, cc *cache.Cache, job *batchJob, req models.BatchRequest, cacheKey string) {
	onRecord := func(r models.Record) {
		job.mu.Lock()
		job.batch.Records = append(job.batch.Records, r)
		job.mu.Unlock()
	}
	progress := func(done, total int, variant string, failure *models.VariantFailure) {
		job.mu.Lock()
		job.batch.Completed = done
		if failure != nil {
			job.batch.Failures = append(job.batch.Failures, *failure)
		}
		job.mu.Unlock()
		slog.Info("batch progress", "id", job.batch.ID, "progress", fmt.Sprintf("%d/%d", done, total), "variant", variant)
	}

	result, err := sc.DoBatch(context.Background(), &req, onRecord, progress)

	job.mu.RLock()
	id, createdAt := job.batch.ID, job.batch.CreatedAt
	job.mu.RUnlock()

	// Cache before publishing, so a client that sees the batch finish also
	// sees it cached.
	if err == nil && result != nil {
		result.ID = id
		result.CreatedAt = createdAt
		if cc != nil {
			cc.Set(cacheKey, result)
		}
	}

	job.mu.Lock()
	if err != nil || result == nil {
		// Only reachable when the batch could not start at all.
		job.batch.Records = []models.Record{}
		job.batch.Failures = []models.VariantFailure{{
			Code:    models.CodeOf(err),
			Message: fmt.Sprint(err),
		}}
		job.batch.Status = models.StatusFailed
		job.batch.DoneAt = time.Now()
	} else {
		job.batch = result
	}
	final := job.batch
	job.mu.Unlock()

	slog.Info("batch job finished",
		"id", id,
		"status", final.Status,
		"records", len(final.Records),
		"failures", len(final.Failures),
		"total", final.Total,
	)

	if req.WebhookURL != "" {
		webhook.DeliverAsync(req.WebhookURL, req.WebhookSecret,
			webhook.NewEvent(webhook.EventBatchCompleted, id, job.snapshot()))
	}
}

func batchNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"error": models.ErrorDetail{
			Code:    models.ErrCodeNotFound,
			Message: "batch job not found",
		},
	})
}

func toDetail(err error) *models.ErrorDetail {
	return &models.ErrorDetail{Code: models.CodeOf(err), Message: err.Error()}
}
