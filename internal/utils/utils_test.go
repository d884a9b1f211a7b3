package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/user/giftgenius/internal/apperr"
)

func TestSearchCacheExpiry(t *testing.T) {
	c := NewSearchCache[int](2, 20*time.Millisecond)
	c.Set("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("expected hit, got %v %v", v, ok)
	}
	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected expired entry")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry should be removed, len=%d", c.Len())
	}

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected LRU eviction of a")
	}
	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("expected empty cache after clear")
	}
}

func TestGlobalCache(t *testing.T) {
	InitCache(time.Minute)
	CacheSet("k", "v", 0)
	if v, ok := CacheGet("k"); !ok || v.(string) != "v" {
		t.Fatalf("expected cached value, got %v", v)
	}
	CacheClear()
	if _, ok := CacheGet("k"); ok {
		t.Fatalf("expected cache to be flushed")
	}
}

func TestErrorResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		err    error
		status int
		code   string
		retry  bool
	}{
		{apperr.Validation("VALIDATION_ERROR", "bad", []string{"x"}), http.StatusBadRequest, "VALIDATION_ERROR", false},
		{apperr.NotFound("GIFT_NOT_FOUND", "missing"), http.StatusNotFound, "GIFT_NOT_FOUND", false},
		{apperr.FromStore(errors.New("database is locked")), http.StatusServiceUnavailable, "STORE_UNAVAILABLE", true},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR", false},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Set(StartTimeKey, time.Now().Add(-15*time.Millisecond))
		Error(c, tc.err)

		if w.Code != tc.status {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.status, w.Code)
		}
		var body ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Error != tc.code || body.Retry != tc.retry || body.Timestamp == "" || body.ProcessingTimeMs < 15 {
			t.Fatalf("%v: unexpected body %+v", tc.err, body)
		}
	}
}
