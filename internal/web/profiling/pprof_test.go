package profiling

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/podreg/runtime/pod"
)

func TestRegister(t *testing.T) {
	reg := pod.NewRegistry()
	geom, err := reg.Add("geom")
	require.NoError(t, err)
	_, err = geom.AddType("Point", "")
	require.NoError(t, err)
	_, err = reg.Add("text")
	require.NoError(t, err)

	r := chi.NewRouter()
	Register(r, "", reg)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var stats Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.Pods)
	assert.Equal(t, 1, stats.Types)
	assert.Positive(t, stats.Goroutines)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/pprof/goroutine?debug=1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "goroutine profile")
}

func TestRuntimeStatsWithoutRegistry(t *testing.T) {
	stats := RuntimeStats(nil)
	assert.Zero(t, stats.Pods)
	assert.NotZero(t, stats.HeapAlloc)
}
