package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/mapscrape/config"
)

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(APIKeyContextKey)) })
	return r
}

func TestAuth(t *testing.T) {
	r := newEngine(Auth([]string{"k1", "", "k2"}))

	tests := []struct {
		name   string
		header string
		value  string
		want   int
	}{
		{"x-api-key", "X-API-Key", "k1", http.StatusOK},
		{"bearer", "Authorization", "Bearer k2", http.StatusOK},
		{"wrong key", "X-API-Key", "nope", http.StatusUnauthorized},
		{"missing", "", "", http.StatusUnauthorized},
		{"basic scheme", "Authorization", "Basic k1", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body)
			}
		})
	}
}

func TestAuth_NoKeysIsOpen(t *testing.T) {
	r := newEngine(Auth(nil))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestRateLimit_PerKey(t *testing.T) {
	r := newEngine(Auth([]string{"a", "b"}), RateLimit(config.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 2}))

	do := func(key string) int {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-API-Key", key)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 2; i++ {
		if code := do("a"); code != http.StatusOK {
			t.Fatalf("request %d for a: status %d", i, code)
		}
	}
	if code := do("a"); code != http.StatusTooManyRequests {
		t.Errorf("third request for a: status %d, want 429", code)
	}
	if code := do("b"); code != http.StatusOK {
		t.Errorf("first request for b: status %d, want 200", code)
	}
}

func TestLimiters_EvictIdle(t *testing.T) {
	l := newLimiters(config.RateLimitConfig{RequestsPerSecond: 1, Burst: 1})
	now := time.Now()
	l.allow("old", now.Add(-2*time.Hour))
	l.allow("new", now)

	l.evictIdle(now.Add(-time.Hour))
	if _, ok := l.entries["old"]; ok {
		t.Error("idle identity not evicted")
	}
	if _, ok := l.entries["new"]; !ok {
		t.Error("active identity evicted")
	}
}
