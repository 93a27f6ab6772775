package http

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/screening/internal/auth/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newUserRateLimitRouter injects the principal the way the authentication middleware would.
func newUserRateLimitRouter(rps float64, burst int) *gin.Engine {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		userID, err := uuid.Parse(c.GetHeader("X-Test-User"))
		if err == nil {
			user := authDomain.UserContext{ID: userID, Role: authDomain.RoleProcessor}
			c.Request = c.Request.WithContext(WithUser(c.Request.Context(), user))
		}
		c.Next()
	})
	router.Use(RateLimitMiddleware(rps, burst, discardLogger()))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func sendAs(router *gin.Engine, userID uuid.UUID) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Test-User", userID.String())
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("Success_WithinLimit", func(t *testing.T) {
		router := newUserRateLimitRouter(10, 20)
		userID := uuid.Must(uuid.NewV7())

		for i := 0; i < 5; i++ {
			assert.Equal(t, http.StatusOK, sendAs(router, userID).Code)
		}
	})

	t.Run("Error_ExceedsBurst", func(t *testing.T) {
		router := newUserRateLimitRouter(1, 2)
		userID := uuid.Must(uuid.NewV7())

		assert.Equal(t, http.StatusOK, sendAs(router, userID).Code)
		assert.Equal(t, http.StatusOK, sendAs(router, userID).Code)

		w := sendAs(router, userID)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "rate_limit_exceeded")

		retryAfter, err := strconv.Atoi(w.Header().Get("Retry-After"))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, retryAfter, 0)
	})

	t.Run("Success_IndependentLimitsPerUser", func(t *testing.T) {
		router := newUserRateLimitRouter(1, 1)
		first := uuid.Must(uuid.NewV7())
		second := uuid.Must(uuid.NewV7())

		assert.Equal(t, http.StatusOK, sendAs(router, first).Code)
		assert.Equal(t, http.StatusTooManyRequests, sendAs(router, first).Code)
		assert.Equal(t, http.StatusOK, sendAs(router, second).Code)
	})

	t.Run("Error_NoUserInContext", func(t *testing.T) {
		router := newUserRateLimitRouter(10, 20)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), authDomain.CodeUnauthorized)
	})
}

func TestLoginRateLimitMiddleware(t *testing.T) {
	newRouter := func(rps float64, burst int) *gin.Engine {
		router := gin.New()
		router.Use(LoginRateLimitMiddleware(rps, burst, discardLogger()))
		router.POST("/v1/auth/login", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
		return router
	}
	sendFrom := func(router *gin.Engine, ip string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
		req.Header.Set("X-Forwarded-For", ip)
		router.ServeHTTP(w, req)
		return w.Code
	}

	t.Run("Success_IndependentLimitsPerIP", func(t *testing.T) {
		router := newRouter(1, 1)

		assert.Equal(t, http.StatusOK, sendFrom(router, "203.0.113.1"))
		assert.Equal(t, http.StatusTooManyRequests, sendFrom(router, "203.0.113.1"))
		assert.Equal(t, http.StatusOK, sendFrom(router, "203.0.113.2"))
	})

	t.Run("Success_RespectsBurst", func(t *testing.T) {
		router := newRouter(2, 5)

		successes := 0
		for i := 0; i < 10; i++ {
			if sendFrom(router, "198.51.100.7") == http.StatusOK {
				successes++
			}
		}
		assert.Equal(t, 5, successes)
	})
}

func TestLimiterStore_RemoveStale(t *testing.T) {
	store := &limiterStore[string]{rps: 1, burst: 1}

	store.getLimiter("203.0.113.1")
	store.getLimiter("203.0.113.2")

	val, ok := store.limiters.Load("203.0.113.1")
	require.True(t, ok)
	entry := val.(*limiterEntry)
	entry.mu.Lock()
	entry.lastAccess = time.Now().Add(-2 * time.Hour)
	entry.mu.Unlock()

	store.removeStale(time.Now().Add(-time.Hour))

	_, ok = store.limiters.Load("203.0.113.1")
	assert.False(t, ok)
	_, ok = store.limiters.Load("203.0.113.2")
	assert.True(t, ok)
}

func TestLimiterStore_SameLimiterForKey(t *testing.T) {
	store := &limiterStore[uuid.UUID]{rps: 1, burst: 1}
	userID := uuid.Must(uuid.NewV7())

	assert.Same(t, store.getLimiter(userID), store.getLimiter(userID))
}
