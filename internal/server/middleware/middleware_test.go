package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/agentstation/fieldeval/pkg/logging"
)

func TestIsAllowedOrigin(t *testing.T) {
	tests := []struct {
		name    string
		origin  string
		allowed []string
		want    bool
	}{
		{"exact match", "https://a.example.com", []string{"https://a.example.com"}, true},
		{"wildcard match", "chrome-extension://abc", []string{"chrome-extension://*"}, true},
		{"no match", "http://evil.com", []string{"chrome-extension://*"}, false},
		{"empty list allows all", "http://any.com", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isAllowedOrigin(tt.origin, tt.allowed))
		})
	}
}

func TestRateLimiterPerIP(t *testing.T) {
	rl := NewRateLimiter(1)
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"))
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(logging.NewNopLogger()))
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}

func TestRequestIDAndLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tl := logging.NewTestLogger(t)
	r := gin.New()
	r.Use(RequestID(), Logger(tl.Logger))
	r.GET("/ping", func(c *gin.Context) {
		logging.FromContext(c.Request.Context()).Info().Msg("inside handler")
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
	tl.AssertContains(t, `"request_id":"req-123"`)
	tl.AssertContains(t, "inside handler")
	tl.AssertContains(t, `"path":"/ping"`)
	tl.AssertContains(t, `"status":200`)
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := DefaultAuthConfig()
	cfg.APIKey = "k"
	r := gin.New()
	r.Use(Auth(cfg, logging.NewNopLogger()))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/private", func(c *gin.Context) { c.Status(http.StatusOK) })

	get := func(path, key string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if key != "" {
			req.Header.Set("X-API-Key", key)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}
	assert.Equal(t, http.StatusOK, get("/health", ""))
	assert.Equal(t, http.StatusUnauthorized, get("/private", ""))
	assert.Equal(t, http.StatusUnauthorized, get("/private", "wrong"))
	assert.Equal(t, http.StatusOK, get("/private", "k"))
}
