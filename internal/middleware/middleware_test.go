package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/user/giftgenius/internal/logger"
)

func newEngine(t *testing.T, handlers ...gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	r.GET("/api/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	return r
}

func TestCORSAllowList(t *testing.T) {
	h, err := CORS([]string{"http://localhost:3000"}, []string{`^https://[a-z0-9-]+\.preview\.giftgenius\.app$`})
	if err != nil {
		t.Fatalf("cors: %v", err)
	}
	r := newEngine(t, h)

	cases := []struct {
		origin  string
		allowed bool
	}{
		{"http://localhost:3000", true},
		{"https://pr-42.preview.giftgenius.app", true},
		{"https://evil.example.com", false},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
		req.Header.Set("Origin", tc.origin)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		got := w.Header().Get("Access-Control-Allow-Origin")
		if tc.allowed {
			if got != tc.origin || w.Header().Get("Access-Control-Allow-Credentials") != "true" {
				t.Fatalf("%s: expected origin reflected with credentials, got %q", tc.origin, got)
			}
		} else if got != "" || w.Code != http.StatusForbidden {
			t.Fatalf("%s: expected rejection, got status=%d origin=%q", tc.origin, w.Code, got)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	h, err := CORS([]string{"http://localhost:5173"}, nil)
	if err != nil {
		t.Fatalf("cors: %v", err)
	}
	r := newEngine(t, h)

	req := httptest.NewRequest(http.MethodOptions, "/api/ping", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 preflight, got %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost) {
		t.Fatalf("expected POST in allowed methods, got %q", w.Header().Get("Access-Control-Allow-Methods"))
	}
}

func TestCORSInvalidPattern(t *testing.T) {
	if _, err := CORS(nil, []string{"("}); err == nil {
		t.Fatalf("expected invalid pattern error")
	}
}

func TestTimeoutSetsDeadline(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Timeout(50 * time.Millisecond))
	var remaining time.Duration
	r.GET("/slow", func(c *gin.Context) {
		deadline, ok := c.Request.Context().Deadline()
		if !ok {
			t.Errorf("expected request deadline")
		}
		remaining = time.Until(deadline)
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/slow", nil))
	if remaining <= 0 || remaining > 50*time.Millisecond {
		t.Fatalf("unexpected remaining time %v", remaining)
	}
}

func TestMetricsAndLogger(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	r := newEngine(t, Logger(logger.Nop()), m.Handler())

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

	if got := testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/api/ping", "200")); got != 3 {
		t.Fatalf("expected 3 ping requests, got %v", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "unmatched", "404")); got != 1 {
		t.Fatalf("expected 1 unmatched request, got %v", got)
	}
}
