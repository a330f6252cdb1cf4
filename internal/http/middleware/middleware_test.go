package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/nurpe/fleet-rental/internal/model"
)

type stubParser struct {
	principal model.Principal
	err       error
}

func (s stubParser) Parse(string) (model.Principal, error) {
	return s.principal, s.err
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		p, _ := MustPrincipal(c)
		c.String(http.StatusOK, string(p.Role))
	})
	r.GET("/", handlers...)
	return r
}

func perform(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	user := model.Principal{UserID: uuid.New(), Role: model.RoleUser}

	t.Run("Success", func(t *testing.T) {
		w := perform(newEngine(Auth(stubParser{principal: user})), "Bearer abc")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "user", w.Body.String())
	})

	t.Run("Missing Header", func(t *testing.T) {
		w := perform(newEngine(Auth(stubParser{principal: user})), "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Wrong Scheme", func(t *testing.T) {
		w := perform(newEngine(Auth(stubParser{principal: user})), "Basic abc")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Invalid Token", func(t *testing.T) {
		w := perform(newEngine(Auth(stubParser{err: errors.New("invalid token")})), "Bearer abc")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireRole(t *testing.T) {
	admin := model.Principal{UserID: uuid.New(), Role: model.RoleAdmin}
	user := model.Principal{UserID: uuid.New(), Role: model.RoleUser}

	w := perform(newEngine(Auth(stubParser{principal: admin}), RequireRole(model.RoleAdmin)), "Bearer abc")
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(newEngine(Auth(stubParser{principal: user}), RequireRole(model.RoleAdmin)), "Bearer abc")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "PERMISSION_DENIED")
}

func TestRateLimit(t *testing.T) {
	limiter := NewRateLimiter(1, 2)
	r := newEngine(RateLimit(limiter))

	assert.Equal(t, http.StatusOK, perform(r, "").Code)
	assert.Equal(t, http.StatusOK, perform(r, "").Code)

	w := perform(r, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestRateLimiterEviction(t *testing.T) {
	clock := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(5, 5)
	limiter.now = func() time.Time { return clock }

	assert.True(t, limiter.Allow("10.0.0.1"))

	clock = clock.Add(11 * time.Minute)
	assert.True(t, limiter.Allow("10.0.0.2"))
	assert.Len(t, limiter.clients, 1, "idle client swept")

	clock = clock.Add(10 * time.Second)
	assert.True(t, limiter.Allow("10.0.0.3"))
	clock = clock.Add(11 * time.Minute)
	limiter.lastSweep = clock.Add(-30 * time.Second)
	assert.True(t, limiter.Allow("10.0.0.4"))
	assert.Len(t, limiter.clients, 3, "no sweep inside the interval")
}
