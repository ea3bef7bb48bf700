package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SuyashBhavalkar3/posturecoach/config"
	pcerrors "github.com/SuyashBhavalkar3/posturecoach/errors"
	"github.com/SuyashBhavalkar3/posturecoach/metric"
	"github.com/SuyashBhavalkar3/posturecoach/pose"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func noDetectionEstimator() pose.Estimator {
	return pose.EstimatorFunc(func(ctx context.Context, frame image.Image) ([]pose.Landmark, error) {
		return nil, nil
	})
}

func newTestServer(t *testing.T, cfg config.ServerConfig) (*Server, *httptest.Server) {
	t.Helper()
	if cfg.Path == "" {
		cfg.Path = "/ws/posture"
	}

	registry := metric.NewMetricsRegistry()
	srv, err := New(Options{
		Config:    cfg,
		Pipeline:  config.PipelineConfig{SkeletonDefault: true},
		Estimator: noDetectionEstimator(),
		Metrics:   registry.Metrics,
		Registry:  registry,
		Logger:    discardLogger(),
	})
	require.NoError(t, err)
	srv.started.Store(true)
	srv.startTime = time.Now()

	ts := httptest.NewServer(srv.Handler(context.Background()))
	t.Cleanup(ts.Close)
	return srv, ts
}

func wsURL(ts *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + path
}

func TestNewRequiresEstimator(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestWebSocketRoundTrip(t *testing.T) {
	_, ts := newTestServer(t, config.ServerConfig{})

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, "/ws/posture"), nil)
	require.NoError(t, err)
	defer conn.Close()
	defer resp.Body.Close()

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "meta", "exercise": "squat"}))

	var ack map[string]any
	require.NoError(t, conn.ReadJSON(&ack))
	assert.Equal(t, true, ack["meta_ack"])

	require.NoError(t, conn.WriteJSON(map[string]any{"exercise": "squat"}))
	var reply map[string]any
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, []any{"No frame received."}, reply["feedback"])
}

func TestHealthEndpoint(t *testing.T) {
	srv, ts := newTestServer(t, config.ServerConfig{})

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var status struct {
		Healthy        bool `json:"healthy"`
		ActiveSessions int  `json:"active_sessions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.True(t, status.Healthy)
	assert.Equal(t, 0, status.ActiveSessions)

	srv.started.Store(false)
	resp2, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp2.StatusCode)
}

func TestAcceptRateLimit(t *testing.T) {
	// One token, no refill inside the test window.
	srv, ts := newTestServer(t, config.ServerConfig{AcceptRate: 0.001, AcceptBurst: 1})

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, "/ws/posture"), nil)
	require.NoError(t, err)
	defer conn.Close()
	defer resp.Body.Close()

	_, resp2, err := websocket.DefaultDialer.Dial(wsURL(ts, "/ws/posture"), nil)
	require.Error(t, err)
	require.NotNil(t, resp2)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp2.StatusCode)

	rejected := testutil.ToFloat64(srv.rejected.WithLabelValues("rate_limited"))
	assert.Equal(t, float64(1), rejected)
}

func TestOriginAllowlist(t *testing.T) {
	_, ts := newTestServer(t, config.ServerConfig{
		AllowedOrigins: []string{"https://app.example.com"},
	})

	headers := http.Header{"Origin": []string{"https://evil.example.com"}}
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, "/ws/posture"), headers)
	require.Error(t, err)
	if resp != nil {
		defer resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	}

	headers = http.Header{"Origin": []string{"https://app.example.com"}}
	conn, resp2, err := websocket.DefaultDialer.Dial(wsURL(ts, "/ws/posture"), headers)
	require.NoError(t, err)
	defer conn.Close()
	defer resp2.Body.Close()
}

func TestCORSPreflight(t *testing.T) {
	_, ts := newTestServer(t, config.ServerConfig{
		AllowedOrigins: []string{"https://app.example.com"},
	})

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.example.com")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "https://app.example.com", resp.Header.Get("Access-Control-Allow-Origin"))

	// Preflight from an origin outside the allowlist is refused and
	// carries no allow headers.
	req2, err := http.NewRequest(http.MethodOptions, ts.URL+"/healthz", nil)
	require.NoError(t, err)
	req2.Header.Set("Origin", "https://evil.example.com")

	resp2, err := http.DefaultClient.Do(req2)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp2.StatusCode)
	assert.Empty(t, resp2.Header.Get("Access-Control-Allow-Origin"))
}

func TestSessionEndLevel(t *testing.T) {
	transient := pcerrors.WrapTransient(fmt.Errorf("connection reset"), "session", "run", "read message")
	assert.Equal(t, slog.LevelWarn, sessionEndLevel(transient))

	fatal := pcerrors.WrapFatal(fmt.Errorf("marshal response"), "session", "writeJSON", "marshal response")
	assert.Equal(t, slog.LevelError, sessionEndLevel(fatal))
}

func TestSessionTracking(t *testing.T) {
	srv, ts := newTestServer(t, config.ServerConfig{})

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, "/ws/posture"), nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Eventually(t, func() bool {
		return srv.clientCount() == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool {
		return srv.clientCount() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestStartStop(t *testing.T) {
	srv, err := New(Options{
		Config:    config.ServerConfig{Port: 0, Path: "/ws/posture"},
		Estimator: noDetectionEstimator(),
		Logger:    discardLogger(),
	})
	require.NoError(t, err)

	require.NoError(t, srv.Start(context.Background()))
	assert.ErrorIs(t, srv.Start(context.Background()), pcerrors.ErrAlreadyStarted)
	require.NoError(t, srv.Stop(2*time.Second))
	// Stop is idempotent.
	require.NoError(t, srv.Stop(2*time.Second))
}
