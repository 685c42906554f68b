package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/pkg/ratelimit"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type erroringLimiter struct{}

func (erroringLimiter) Allow(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies(nil)
	r.Use(Recovery(), RequestID(), ClientIPMiddleware())
	handlers = append(handlers, func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.POST("/recommend", handlers...)
	return r
}

func post(r http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/recommend", nil)
	req.RemoteAddr = ip + ":5555"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit_RejectsAfterBudget(t *testing.T) {
	r := newRouter(RateLimit("recommend", ratelimit.NewMemory("recommend", 2, time.Minute)))

	assert.Equal(t, http.StatusOK, post(r, "203.0.113.7").Code)
	assert.Equal(t, http.StatusOK, post(r, "203.0.113.7").Code)

	w := post(r, "203.0.113.7")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMITED")

	assert.Equal(t, http.StatusOK, post(r, "198.51.100.1").Code, "other clients keep their own budget")
}

func TestRateLimit_IgnoresSpoofedForwardedFor(t *testing.T) {
	r := newRouter(RateLimit("recommend", ratelimit.NewMemory("recommend", 3, time.Minute)))

	allowed := 0
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodPost, "/recommend", nil)
		req.RemoteAddr = "203.0.113.7:5555"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.9.9.%d", i))
		req.Header.Set("X-Real-IP", fmt.Sprintf("10.8.8.%d", i))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code == http.StatusOK {
			allowed++
		}
	}
	assert.Equal(t, 3, allowed)
}

func TestRateLimit_FailsOpen(t *testing.T) {
	r := newRouter(RateLimit("recommend", erroringLimiter{}))
	assert.Equal(t, http.StatusOK, post(r, "203.0.113.7").Code)
}

func TestRequestID(t *testing.T) {
	r := newRouter()

	w := post(r, "203.0.113.7")
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)

	req := httptest.NewRequest(http.MethodPost, "/recommend", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		trusted []string
		remote  string
		want    string
	}{
		{"direct client", nil, "198.51.100.4:5555", "198.51.100.4"},
		{"behind trusted proxy", []string{"10.0.0.0/8"}, "10.0.0.1:80", "203.0.113.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			require.NoError(t, r.SetTrustedProxies(tt.trusted))
			r.Use(ClientIPMiddleware())
			var fromCtx, fromGin string
			r.GET("/", func(c *gin.Context) {
				fromCtx = GetClientIPFromContext(c.Request.Context())
				fromGin = ClientIP(c)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.2")
			r.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.want, fromCtx)
			assert.Equal(t, tt.want, fromGin)
		})
	}
	assert.Empty(t, GetClientIPFromContext(context.Background()))
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/panic", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "An unexpected error occurred.")
}
