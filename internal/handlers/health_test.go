package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"IMA_BACK-END/internal/health"
)

type envelope struct {
	Code      int    `json:"code"`
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Data      *struct {
		Status  string            `json:"status"`
		Details map[string]string `json:"details"`
	} `json:"data"`
	Details *struct {
		Error   string            `json:"error"`
		Details map[string]string `json:"details"`
	} `json:"details"`
}

type probeState struct {
	ok    bool
	err   error
	delay time.Duration
}

func probeFor(name string, s probeState) health.Probe {
	return health.NewProbeFunc(name, func(ctx context.Context) (bool, error) {
		if s.delay > 0 {
			select {
			case <-time.After(s.delay):
			case <-ctx.Done():
				return false, ctx.Err()
			}
		}
		return s.ok, s.err
	})
}

func newTestHandler(db, cache probeState) *HealthHandler {
	agg := health.NewAggregator(health.WithTimeout(time.Second))
	agg.Register(
		health.NewServerProbe(),
		probeFor(health.DatabaseProbeName, db),
		probeFor(health.RedisProbeName, cache),
	)
	return NewHealthHandler(agg, nil)
}

func serve(t *testing.T, h http.HandlerFunc, method, path string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	h(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

var healthy = probeState{ok: true}

func TestFullHealth_AllHealthy(t *testing.T) {
	h := newTestHandler(healthy, healthy)

	rec, env := serve(t, h.FullHealth, http.MethodGet, "/api/v1/health/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", env.Status)
	assert.Equal(t, "Full system health check completed", env.Message)
	require.NotNil(t, env.Data)
	assert.Equal(t, "ok", env.Data.Status)
	assert.Equal(t, map[string]string{"server": "ok", "database": "ok", "redis": "ok"}, env.Data.Details)
	assert.Nil(t, env.Details)
}

func TestFullHealth_CacheUnhealthy(t *testing.T) {
	h := newTestHandler(healthy, probeState{ok: false})

	rec, env := serve(t, h.FullHealth, http.MethodGet, "/api/v1/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", env.Status)
	assert.Equal(t, "fail", env.Data.Status)
	assert.Equal(t, map[string]string{"server": "ok", "database": "ok", "redis": "fail"}, env.Data.Details)
}

func TestDatabaseFailure_SingleVersusAggregate(t *testing.T) {
	h := newTestHandler(probeState{err: errors.New("connection refused")}, healthy)

	rec, env := serve(t, h.DatabaseHealth, http.MethodGet, "/api/v1/health/database")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, http.StatusInternalServerError, env.Code)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "Database health check failed", env.Message)
	assert.Nil(t, env.Data)
	require.NotNil(t, env.Details)
	assert.Contains(t, env.Details.Error, "connection refused")
	assert.Equal(t, map[string]string{"database": "fail"}, env.Details.Details)

	rec, env = serve(t, h.FullHealth, http.MethodGet, "/api/v1/health/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", env.Status)
	assert.Equal(t, "fail", env.Data.Status)
	assert.Equal(t, "fail", env.Data.Details["database"])
	assert.Equal(t, "ok", env.Data.Details["redis"])
}

func TestSingleHealth_ConfirmedUnhealthyIsNotAnError(t *testing.T) {
	h := newTestHandler(healthy, probeState{ok: false})

	rec, env := serve(t, h.RedisHealth, http.MethodGet, "/api/v1/health/redis")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", env.Status)
	assert.Equal(t, "Redis health check failed", env.Message)
	assert.Equal(t, "fail", env.Data.Status)
	assert.Equal(t, map[string]string{"redis": "fail"}, env.Data.Details)
}

func TestSingleHealth_Passed(t *testing.T) {
	h := newTestHandler(healthy, healthy)

	_, env := serve(t, h.DatabaseHealth, http.MethodGet, "/api/v1/health/database")

	assert.Equal(t, "Database health check passed", env.Message)
	assert.Equal(t, "ok", env.Data.Status)
	assert.Equal(t, map[string]string{"database": "ok"}, env.Data.Details)
}

func TestServerHealth_IndependentOfDependencies(t *testing.T) {
	broken := probeState{err: errors.New("down")}
	h := newTestHandler(broken, broken)

	rec, env := serve(t, h.ServerHealth, http.MethodGet, "/api/v1/health/server")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Server health check passed", env.Message)
	assert.Equal(t, "ok", env.Data.Status)
	assert.Equal(t, map[string]string{"server": "ok"}, env.Data.Details)
}

func TestCheckHealth_WithoutDetailsKey(t *testing.T) {
	h := newTestHandler(healthy, healthy)

	env := h.checkHealth(context.Background(), "Server", health.NewServerProbe(), "")

	body, err := json.Marshal(env)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"data":{"status":"ok","details":null}`)
}

func TestHealth_IdempotentApartFromTimestamp(t *testing.T) {
	h := newTestHandler(healthy, probeState{ok: false})

	_, first := serve(t, h.FullHealth, http.MethodGet, "/api/v1/health/")
	_, second := serve(t, h.FullHealth, http.MethodGet, "/api/v1/health/")

	first.Timestamp, second.Timestamp = "", ""
	assert.Equal(t, first, second)
}

func TestFullHealth_ConcurrentRequestsWithSlowCache(t *testing.T) {
	const (
		delay    = 200 * time.Millisecond
		requests = 8
	)
	h := newTestHandler(probeState{ok: true, delay: delay / 2}, probeState{ok: true, delay: delay})

	var wg sync.WaitGroup
	codes := make([]int, requests)
	start := time.Now()
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := httptest.NewRecorder()
			h.FullHealth(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/", nil))
			codes[i] = rec.Code
		}(i)
	}
	wg.Wait()
	elapsed := time.Since(start)

	for _, code := range codes {
		assert.Equal(t, http.StatusOK, code)
	}
	assert.Less(t, elapsed, delay+delay/2, "took %s", elapsed)
}

func TestFullHealth_RequestCancellationReachesProbes(t *testing.T) {
	cancelled := make(chan struct{})
	agg := health.NewAggregator(health.WithTimeout(time.Minute))
	agg.Register(health.NewProbeFunc(health.RedisProbeName, func(ctx context.Context) (bool, error) {
		<-ctx.Done()
		close(cancelled)
		return false, ctx.Err()
	}))
	h := NewHealthHandler(agg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health/", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		h.FullHealth(rec, req)
		close(done)
	}()
	cancel()

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("probe context was not cancelled")
	}
	<-done
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealth_MethodNotAllowed(t *testing.T) {
	h := newTestHandler(healthy, healthy)

	rec, env := serve(t, h.DatabaseHealth, http.MethodPost, "/api/v1/health/database")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "GET, HEAD", rec.Header().Get("Allow"))
}

func TestFullHealth_UnknownSubpath(t *testing.T) {
	h := newTestHandler(healthy, healthy)

	rec, env := serve(t, h.FullHealth, http.MethodGet, "/api/v1/health/queue")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "error", env.Status)
}

func TestSingleHealth_ProbeNotRegistered(t *testing.T) {
	h := NewHealthHandler(health.NewAggregator(), nil)

	rec, env := serve(t, h.RedisHealth, http.MethodGet, "/api/v1/health/redis")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, map[string]string{"redis": "fail"}, env.Details.Details)
}

func TestRoot(t *testing.T) {
	rec := httptest.NewRecorder()
	Root(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Hello World!"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	Root(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
