package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gateline/gateline/pkg/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func adminRouter(secret string) *gin.Engine {
	r := gin.New()
	r.Use(AdminAuth(secret, zap.NewNop()))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"subject": c.GetString(SubjectKey)})
	})
	return r
}

func get(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAdminAuthValidToken(t *testing.T) {
	token, err := MintAdminToken("secret", "gateline", "ops", time.Hour)
	require.NoError(t, err)

	rec := get(adminRouter("secret"), "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"subject":"ops"`)
}

func TestAdminAuthRejections(t *testing.T) {
	expired, err := MintAdminToken("secret", "gateline", "ops", -time.Hour)
	require.NoError(t, err)
	wrongKey, err := MintAdminToken("other", "gateline", "ops", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"not bearer", "Basic abc"},
		{"empty token", "Bearer "},
		{"garbage token", "Bearer notajwt"},
		{"expired", "Bearer " + expired},
		{"wrong secret", "Bearer " + wrongKey},
	}
	r := adminRouter("secret")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(r, tt.header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRateLimiterAllows(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 2}, zap.NewNop())

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))
	// Other clients have their own bucket.
	assert.True(t, rl.Allow("5.6.7.8"))
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{Enabled: false, RPS: 0, Burst: 0}, zap.NewNop())
	for i := 0; i < 10; i++ {
		assert.True(t, rl.Allow("1.2.3.4"))
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 1}, zap.NewNop())
	r := gin.New()
	r.Use(RateLimit(rl))
	r.GET("/x", func(c *gin.Context) { c.Status(200) })

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestRequestIDGeneratedAndEchoed(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.Status(200) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "given-id")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "given-id", rec.Header().Get(RequestIDHeader))
}

func TestRequestLoggerPassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(zap.NewNop()))
	r.GET("/x", func(c *gin.Context) {
		c.Set(RequestedKey, "echo.say")
		c.Status(204)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
