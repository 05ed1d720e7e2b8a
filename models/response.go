package models

// ScrapeResponse is the response for POST /api/v1/scrape.
type ScrapeResponse struct {
	Success bool     `json:"success"`
	Records []Record `json:"records"`
	Total   int      `json:"total"`

	// Filename is the resolved export filename for these records.
	Filename string `json:"filename,omitempty"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// BatchResponse is the immediate response for POST /api/v1/batch.
type BatchResponse struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Total       int    `json:"total"`
	CacheStatus string `json:"cache_status,omitempty"`
}

// BatchStatusResponse is the response for GET /api/v1/batch/:id.
// Records are mirrored while the batch is still processing.
type BatchStatusResponse struct {
	ID        string           `json:"id"`
	Status    string           `json:"status"`
	Progress  string           `json:"progress"` // "i/total"
	Completed int              `json:"completed"`
	Total     int              `json:"total"`
	Count     int              `json:"count"`
	Records   []Record         `json:"records"`
	Failures  []VariantFailure `json:"failures,omitempty"`
	Filename  string           `json:"filename,omitempty"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`

	// NavigationMs is the time spent opening the page and submitting the query.
	NavigationMs int64 `json:"navigation_ms"`

	// ExtractionMs is the time spent paginating and extracting entries.
	ExtractionMs int64 `json:"extraction_ms"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status    string    `json:"status"` // "healthy" or "degraded"
	Uptime    string    `json:"uptime"`
	PoolStats PoolStats `json:"pool_stats"`
	Version   string    `json:"version"`
}

// PoolStats reports the state of the browser page pool.
type PoolStats struct {
	MaxPages    int `json:"max_pages"`
	ActivePages int `json:"active_pages"`
	QueuedJobs  int `json:"queued_jobs"`
}
