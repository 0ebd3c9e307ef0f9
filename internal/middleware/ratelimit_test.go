package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newLimitedRouter(store RateStore, limit int) *gin.Engine {
	r := gin.New()
	r.GET("/rsvp", RateLimit(store, limit, time.Minute), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func TestRateLimitBlocksAfterThreshold(t *testing.T) {
	r := newLimitedRouter(NewMemoryRateStore(), 2)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/rsvp", nil)
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/rsvp", nil)
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimitDisabledWithoutStore(t *testing.T) {
	r := newLimitedRouter(nil, 1)

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/rsvp", nil)
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestMemoryRateStoreWindowReset(t *testing.T) {
	store := &memoryRateStore{data: make(map[string]*memoryCounter)}
	current := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	store.clock = func() time.Time { return current }

	count, _, err := store.Increment(nil, "k", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	count, _, err = store.Increment(nil, "k", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	current = current.Add(2 * time.Minute)
	count, _, err = store.Increment(nil, "k", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}
