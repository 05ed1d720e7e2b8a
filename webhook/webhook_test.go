package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestDeliver_SignsBody(t *testing.T) {
	var gotSig string
	var gotEvent Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotSig = r.Header.Get(SignatureHeader)
		if gotSig != Sign("s3cret", body) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.Unmarshal(body, &gotEvent)
	}))
	defer srv.Close()

	ev := NewEvent(EventBatchCompleted, "b-1", map[string]int{"count": 3})
	if err := Deliver(context.Background(), srv.URL, "s3cret", ev); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if gotSig == "" {
		t.Error("signature header missing")
	}
	if gotEvent.Type != EventBatchCompleted || gotEvent.JobID != "b-1" {
		t.Errorf("event = %+v", gotEvent)
	}
}

func TestDeliver_NoSecretNoSignature(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(SignatureHeader) != "" {
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer srv.Close()

	if err := Deliver(context.Background(), srv.URL, "", NewEvent(EventBatchCompleted, "b-2", nil)); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
}

func TestDeliver_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if err := Deliver(context.Background(), srv.URL, "", NewEvent(EventBatchCompleted, "b-3", nil)); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestDeliverWithRetry(t *testing.T) {
	orig := retryDelays
	retryDelays = []time.Duration{0, time.Millisecond, time.Millisecond}
	defer func() { retryDelays = orig }()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	if !deliverWithRetry(srv.URL, "", NewEvent(EventBatchCompleted, "b-4", nil)) {
		t.Fatal("expected delivery to succeed on third attempt")
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("calls = %d, want 3", n)
	}
}
