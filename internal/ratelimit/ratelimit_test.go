package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(window time.Duration, max int) (*Limiter, *time.Time) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewLimiter(window, max)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestLimiterAllow(t *testing.T) {
	l, now := newTestLimiter(time.Second, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("test-key"), "request %d", i+1)
	}
	assert.False(t, l.Allow("test-key"))
	assert.True(t, l.Allow("other-key"))

	*now = now.Add(1100 * time.Millisecond)
	assert.True(t, l.Allow("test-key"))
}

func TestLimiterRemaining(t *testing.T) {
	l, _ := newTestLimiter(time.Second, 5)

	assert.Equal(t, 5, l.Remaining("test-key"))
	l.Allow("test-key")
	l.Allow("test-key")
	assert.Equal(t, 3, l.Remaining("test-key"))
}

func TestLimiterSweepsExpired(t *testing.T) {
	l, now := newTestLimiter(time.Second, 1)
	l.Allow("stale")
	*now = now.Add(2 * time.Second)

	for i := 0; i < sweepEvery; i++ {
		l.Allow("fresh")
	}
	l.mu.Lock()
	_, ok := l.counters["stale"]
	l.mu.Unlock()
	assert.False(t, ok)
}

func TestFromConfig(t *testing.T) {
	assert.Nil(t, FromConfig(Config{}))
	l := FromConfig(Config{Max: 2})
	require.NotNil(t, l)
	assert.Equal(t, time.Hour, l.window)
}

func TestPerIP(t *testing.T) {
	l, _ := newTestLimiter(time.Minute, 1)
	h := l.PerIP(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	do := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr
	}

	assert.Equal(t, http.StatusCreated, do("10.0.0.1:1234").Code)
	rr := do("10.0.0.1:5678")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusCreated, do("10.0.0.2:1234").Code)
}

func TestPerIPNilLimiter(t *testing.T) {
	var l *Limiter
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	assert.NotNil(t, l.PerIP(next))
}
