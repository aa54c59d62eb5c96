package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func alwaysOK(context.Context) error { return nil }

func alwaysFail(msg string) CheckFunc {
	return func(context.Context) error { return errors.New(msg) }
}

// hitLive serves a /livez request and decodes the body.
func hitLive(t *testing.T, h *Health) (int, statusResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	h.LiveEndpoint(w, httptest.NewRequest(http.MethodGet, "/livez", nil))
	var body statusResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return w.Code, body
}

func hitReady(t *testing.T, h *Health) (int, statusResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	h.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	var body statusResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return w.Code, body
}

func TestLiveEndpoint_AllPassing(t *testing.T) {
	h := New()
	h.AddLivenessCheck("one", time.Second, alwaysOK)
	h.AddLivenessCheck("two", time.Second, alwaysOK)

	code, body := hitLive(t, h)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body.Status)
}

func TestLiveEndpoint_FailingCheck(t *testing.T) {
	h := New()
	h.AddLivenessCheck("db", time.Second, alwaysFail("connection refused"))

	ctx := context.Background()
	for range failureThreshold {
		h.checks[0].run(ctx)
	}

	code, body := hitLive(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "connection refused", body.Checks["db"])
}

func TestLiveEndpoint_FailureBelowThreshold(t *testing.T) {
	h := New()
	h.AddLivenessCheck("flaky", time.Second, alwaysFail("temporary"))

	// One failure short of the threshold keeps the check healthy.
	ctx := context.Background()
	for range failureThreshold - 1 {
		h.checks[0].run(ctx)
	}

	code, _ := hitLive(t, h)
	assert.Equal(t, http.StatusOK, code)
}

func TestReadyEndpoint_ReadyAndPassing(t *testing.T) {
	h := New()
	h.AddReadinessCheck("db", time.Second, alwaysOK)
	h.SetReady(true)

	code, body := hitReady(t, h)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body.Status)
}

func TestReadyEndpoint_NotReady(t *testing.T) {
	h := New()
	h.AddReadinessCheck("db", time.Second, alwaysOK)

	code, body := hitReady(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", body.Status)
	assert.Contains(t, body.Checks, "_readiness")
}

func TestReadyEndpoint_SetReadyFalse(t *testing.T) {
	h := New()
	h.AddReadinessCheck("db", time.Second, alwaysOK)
	h.SetReady(true)

	code, _ := hitReady(t, h)
	assert.Equal(t, http.StatusOK, code)

	h.SetReady(false)

	code, _ = hitReady(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestReadyEndpoint_OneOfManyFailing(t *testing.T) {
	h := New()
	h.AddReadinessCheck("db", time.Second, alwaysOK)
	h.AddReadinessCheck("cache", time.Second, alwaysFail("cache down"))
	h.SetReady(true)

	ctx := context.Background()
	for range failureThreshold {
		h.checks[1].run(ctx)
	}

	code, body := hitReady(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Contains(t, body.Checks, "cache")
	assert.NotContains(t, body.Checks, "db")
}

func TestIsReady(t *testing.T) {
	h := New()
	h.AddReadinessCheck("db", time.Second, alwaysOK)

	assert.False(t, h.IsReady(), "not ready before SetReady")
	h.SetReady(true)
	assert.True(t, h.IsReady())
	h.SetReady(false)
	assert.False(t, h.IsReady())
}

func TestLiveEndpoint_NoChecks(t *testing.T) {
	h := New()

	code, body := hitLive(t, h)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body.Status)
}

func TestCheckRecovery(t *testing.T) {
	var mu sync.Mutex
	failing := true
	h := New()
	h.AddLivenessCheck("flaky", time.Second, func(context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		if failing {
			return errors.New("down")
		}
		return nil
	})
	c := h.checks[0]
	ctx := context.Background()

	for range failureThreshold {
		c.run(ctx)
	}
	healthy, _ := c.state()
	assert.False(t, healthy)

	// One success recovers the check.
	mu.Lock()
	failing = false
	mu.Unlock()
	c.run(ctx)
	healthy, _ = c.state()
	assert.True(t, healthy)
}

func TestCheckLastError(t *testing.T) {
	h := New()
	h.AddLivenessCheck("db", time.Second, alwaysFail("timeout"))
	c := h.checks[0]

	_, err := c.state()
	assert.Nil(t, err)

	c.run(context.Background())
	_, err = c.state()
	assert.EqualError(t, err, "timeout")
}

func TestStopIsIdempotent(t *testing.T) {
	h := New()
	h.AddLivenessCheck("noop", time.Second, alwaysOK)

	h.Start(context.Background(), 100*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	h.Stop()
	h.Stop()
}

func TestConcurrentAccess(t *testing.T) {
	h := New()
	h.AddLivenessCheck("a", time.Second, alwaysFail("err"))
	h.AddReadinessCheck("b", time.Second, alwaysOK)
	h.SetReady(true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.Start(ctx, 10*time.Millisecond)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				h.IsReady()
				hitLive(t, h)
				hitReady(t, h)
			}
		}()
	}
	wg.Wait()
	h.Stop()
}

func TestGoroutineCountCheck(t *testing.T) {
	assert.NoError(t, GoroutineCountCheck(100000)(context.Background()))

	err := GoroutineCountCheck(0)(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit")
}

func TestGCMaxPauseCheck(t *testing.T) {
	assert.NoError(t, GCMaxPauseCheck(time.Hour)(context.Background()))
}
