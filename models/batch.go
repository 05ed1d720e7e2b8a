package models

import "time"

// Batch statuses.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusPartial    = "partial"
	StatusFailed     = "failed"
)

// VariantFailure records a variant whose submission or scrape failed.
// No records are kept for a failed variant.
type VariantFailure struct {
	Variant string `json:"variant"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ScrapeBatch is the ordered set of records produced across all variants of
// one batch run, plus its progress metadata.
type ScrapeBatch struct {
	ID        string           `json:"id,omitempty"`
	Term      string           `json:"term"`
	Variants  []string         `json:"variants"`
	Records   []Record         `json:"records"`
	Failures  []VariantFailure `json:"failures,omitempty"`
	Status    string           `json:"status"`
	Completed int              `json:"completed"` // variants processed so far
	Total     int              `json:"total"`     // variant count
	CreatedAt time.Time        `json:"created_at"`
	DoneAt    time.Time        `json:"done_at,omitzero"`
}

// Done reports whether the batch has reached a terminal status.
func (b *ScrapeBatch) Done() bool {
	return b.Status != "" && b.Status != StatusProcessing
}

// Finish derives the terminal status from the failure count.
func (b *ScrapeBatch) Finish(now time.Time) {
	switch {
	case b.Total > 0 && len(b.Failures) == b.Total:
		b.Status = StatusFailed
	case len(b.Failures) > 0:
		b.Status = StatusPartial
	default:
		b.Status = StatusCompleted
	}
	b.DoneAt = now
}
