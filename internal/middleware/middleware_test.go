package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMemoryLimiter_SlidingWindow(t *testing.T) {
	l := NewMemoryLimiter()
	ctx := context.Background()
	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		d, err := l.Allow(ctx, "k", 3, t0.Add(time.Duration(i)*time.Second))
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Equal(t, int64(2-i), d.Remaining)
	}

	d, err := l.Allow(ctx, "k", 3, t0.Add(10*time.Second))
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, t0.Add(time.Minute).UnixMilli(), d.ResetAt)

	d, err = l.Allow(ctx, "other", 3, t0.Add(10*time.Second))
	require.NoError(t, err)
	assert.True(t, d.Allowed, "keys are independent")

	d, err = l.Allow(ctx, "k", 3, t0.Add(61*time.Second))
	require.NoError(t, err)
	assert.True(t, d.Allowed, "oldest hit left the window")
}

func TestMemoryLimiter_ForgetsIdleClients(t *testing.T) {
	l := NewMemoryLimiter().(*memoryLimiter)
	ctx := context.Background()
	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		_, err := l.Allow(ctx, ip, 3, t0)
		require.NoError(t, err)
	}
	assert.Len(t, l.hits, 3)

	_, err := l.Allow(ctx, "10.0.0.4", 3, t0.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Len(t, l.hits, 1)
	assert.Contains(t, l.hits, "10.0.0.4")
}

func newLimitedRouter(l Limiter, perMinute int) *gin.Engine {
	r := gin.New()
	cfg := DefaultRateLimitConfig()
	cfg.RequestsPerMinute = perMinute
	r.POST("/api/gemini", RateLimit(l, cfg), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestRateLimit_Returns429(t *testing.T) {
	r := newLimitedRouter(NewMemoryLimiter(), 1)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/gemini", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/gemini", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "RATE_LIMITED")
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string, int, time.Time) (Decision, error) {
	return Decision{}, errors.New("redis down")
}

func TestRateLimit_FailsOpen(t *testing.T) {
	for name, l := range map[string]Limiter{"nil": nil, "error": failingLimiter{}} {
		t.Run(name, func(t *testing.T) {
			r := newLimitedRouter(l, 1)
			for i := 0; i < 3; i++ {
				w := httptest.NewRecorder()
				r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/gemini", nil))
				assert.Equal(t, http.StatusOK, w.Code)
			}
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders(), NoStore())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "https://www.youtube.com")
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(), Metrics())
	r.GET("/story/:slug", func(c *gin.Context) {
		id, _ := c.Get(RequestIDKey)
		c.String(http.StatusOK, id.(string))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/story/barish", nil))
	assert.Len(t, w.Header().Get("X-Request-ID"), 8)
	assert.Equal(t, w.Header().Get("X-Request-ID"), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/story/barish", nil)
	req.Header.Set("X-Request-ID", "upstream-id")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "upstream-id", w.Body.String())
}
