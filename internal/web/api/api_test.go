package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/podreg/internal/web/auth"
	"github.com/conduit-lang/podreg/internal/web/metrics"
	"github.com/conduit-lang/podreg/internal/web/profiling"
	"github.com/conduit-lang/podreg/internal/web/ratelimit"
	"github.com/conduit-lang/podreg/internal/web/response"
	"github.com/conduit-lang/podreg/runtime/pod"
)

func setupRegistry(t *testing.T) *pod.Registry {
	t.Helper()
	reg := pod.NewRegistry()
	geom, err := reg.Add("geom")
	require.NoError(t, err)
	_, err = geom.AddType("Point", "")
	require.NoError(t, err)
	_, err = geom.AddType("Circle", "geom::Point")
	require.NoError(t, err)
	_, err = reg.Add("empty")
	require.NoError(t, err)
	return reg
}

func get(t *testing.T, h http.Handler, path string, out interface{}) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

func TestListPods(t *testing.T) {
	h := NewRouter(setupRegistry(t), Options{})

	var pods []PodSummary
	rec := get(t, h, "/pods", &pods)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.ElementsMatch(t, []PodSummary{{Name: "geom", Types: 2}, {Name: "empty", Types: 0}}, pods)
}

func TestGetPod(t *testing.T) {
	h := NewRouter(setupRegistry(t), Options{})

	var detail PodDetail
	rec := get(t, h, "/pods/geom", &detail)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "geom", detail.Name)
	require.Len(t, detail.Types, 2)
	assert.Equal(t, TypeInfo{Name: "Circle", QName: "geom::Circle", Pod: "geom", Base: "geom::Point"}, detail.Types[1])

	var errResp response.ErrorResponse
	rec = get(t, h, "/pods/missing", &errResp)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, pod.CodeUnknownPod, errResp.Code)
}

func TestGetPodType(t *testing.T) {
	h := NewRouter(setupRegistry(t), Options{})

	var info TypeInfo
	rec := get(t, h, "/pods/geom/types/Point", &info)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "geom::Point", info.QName)
	assert.Empty(t, info.Base)

	var errResp response.ErrorResponse
	rec = get(t, h, "/pods/geom/types/Square", &errResp)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, pod.CodeUnknownType, errResp.Code)

	rec = get(t, h, "/pods/nope/types/Point", &errResp)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, pod.CodeUnknownPod, errResp.Code)
}

func TestGetType(t *testing.T) {
	h := NewRouter(setupRegistry(t), Options{})

	var info TypeInfo
	rec := get(t, h, "/types/geom::Circle", &info)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "geom::Point", info.Base)

	var errResp response.ErrorResponse
	rec = get(t, h, "/types/Circle", &errResp)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, pod.CodeInvalidName, errResp.Code)
}

func TestSnapshot(t *testing.T) {
	h := NewRouter(setupRegistry(t), Options{})

	var snap pod.Snapshot
	rec := get(t, h, "/snapshot", &snap)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, snap.Pods, 2)
	assert.Equal(t, 2, snap.TypeCount())
}

func TestHealth(t *testing.T) {
	h := NewRouter(setupRegistry(t), Options{})

	var body map[string]interface{}
	rec := get(t, h, "/healthz", &body)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 2, body["pods"])
}

func TestAuthEnabled(t *testing.T) {
	tokens := auth.NewTokenService("secret", time.Hour)
	h := NewRouter(setupRegistry(t), Options{Tokens: tokens})

	rec := get(t, h, "/pods", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = get(t, h, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	token, err := tokens.GenerateToken("ci")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/pods", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimited(t *testing.T) {
	limiter, err := ratelimit.NewTokenBucket(ratelimit.TokenBucketConfig{Capacity: 1, RefillRate: time.Hour})
	require.NoError(t, err)
	defer limiter.Close()
	h := NewRouter(setupRegistry(t), Options{Limiter: limiter})

	assert.Equal(t, http.StatusOK, get(t, h, "/pods", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, get(t, h, "/pods", nil).Code)
	assert.Equal(t, http.StatusOK, get(t, h, "/healthz", nil).Code)
}

func TestProfiling(t *testing.T) {
	h := NewRouter(setupRegistry(t), Options{})
	assert.Equal(t, http.StatusNotFound, get(t, h, "/debug/stats", nil).Code)

	h = NewRouter(setupRegistry(t), Options{Profiling: true})
	var stats profiling.Stats
	rec := get(t, h, "/debug/stats", &stats)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, stats.Types)
}

func TestMetrics(t *testing.T) {
	reg := setupRegistry(t)
	tokens := auth.NewTokenService("secret", time.Hour)
	h := NewRouter(reg, Options{Tokens: tokens, Metrics: metrics.New(reg)})

	token, err := tokens.GenerateToken("ci")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/pods/missing", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, http.StatusOK, get(t, h, "/healthz", nil).Code)

	// scraping needs no token
	rec := get(t, h, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `podreg_requests_total{method="GET",route="/healthz",status="2xx"} 1`)
	assert.Contains(t, string(body), `podreg_requests_total{method="GET",route="/pods/{pod}",status="4xx"} 1`)
	assert.Contains(t, string(body), "podreg_pods 2")
	assert.Contains(t, string(body), "podreg_types 2")
}
