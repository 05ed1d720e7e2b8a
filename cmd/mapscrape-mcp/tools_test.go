package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/use-agent/mapscrape/models"
)

func TestFormatBatch(t *testing.T) {
	st := models.BatchStatusResponse{
		ID:       "batch-1",
		Status:   models.StatusPartial,
		Progress: "2/2",
		Count:    1,
		Records:  []models.Record{{Title: "Le Procope", Rating: "4.2", Variant: "Paris"}},
		Failures: []models.VariantFailure{{Variant: "Lyon", Code: models.ErrCodeFeedNotFound, Message: "results feed not found"}},
	}

	got := formatBatch(st)
	for _, want := range []string{
		"Batch batch-1: partial (2/2 variants, 1 records)",
		"Lyon failed: [FEED_NOT_FOUND] results feed not found",
		"--- [1] Le Procope (Paris) ---",
		"Rating: 4.2",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Phone:") {
		t.Errorf("empty fields should be omitted:\n%s", got)
	}
}

func TestPollBatch(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != "k" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		status := models.StatusProcessing
		if calls.Add(1) >= 3 {
			status = models.StatusCompleted
		}
		json.NewEncoder(w).Encode(models.BatchStatusResponse{ID: "batch-1", Status: status})
	}))
	defer srv.Close()

	c := newAPIClient(srv.URL, "k")
	c.pollInterval = time.Millisecond

	body, err := c.pollBatch(context.Background(), "batch-1")
	if err != nil {
		t.Fatalf("pollBatch: %v", err)
	}
	var st models.BatchStatusResponse
	if err := json.Unmarshal(body, &st); err != nil {
		t.Fatal(err)
	}
	if st.Status != models.StatusCompleted || calls.Load() != 3 {
		t.Errorf("status %q after %d polls", st.Status, calls.Load())
	}
}
