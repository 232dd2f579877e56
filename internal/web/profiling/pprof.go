// Package profiling mounts pprof and runtime statistics endpoints.
//
// These endpoints expose goroutine stacks and heap contents. They are only
// mounted when server.pprof is enabled and sit behind the API's auth
// middleware when auth.jwt_secret is set.
package profiling

import (
	"net/http"
	"net/http/pprof"
	"runtime"

	"github.com/go-chi/chi/v5"

	"github.com/conduit-lang/podreg/internal/web/response"
	"github.com/conduit-lang/podreg/runtime/pod"
)

// DefaultPath is where Register mounts the endpoints
const DefaultPath = "/debug"

// Register mounts pprof under path+"/pprof" and runtime statistics, including
// registry sizes, under path+"/stats"
func Register(router chi.Router, path string, reg *pod.Registry) {
	if path == "" {
		path = DefaultPath
	}

	router.Route(path, func(r chi.Router) {
		r.Get("/stats", StatsHandler(reg))

		r.HandleFunc("/pprof/", pprof.Index)
		r.HandleFunc("/pprof/cmdline", pprof.Cmdline)
		r.HandleFunc("/pprof/profile", pprof.Profile)
		r.HandleFunc("/pprof/symbol", pprof.Symbol)
		r.HandleFunc("/pprof/trace", pprof.Trace)
		for _, name := range []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"} {
			r.Handle("/pprof/"+name, pprof.Handler(name))
		}
	})
}

// Stats is the body of the stats endpoint
type Stats struct {
	Goroutines int    `json:"goroutines"`
	HeapAlloc  uint64 `json:"heap_alloc"`
	HeapInuse  uint64 `json:"heap_inuse"`
	NumGC      uint32 `json:"num_gc"`
	Pods       int    `json:"pods"`
	Types      int    `json:"types"`
}

// RuntimeStats samples the Go runtime and, when reg is not nil, the registry
func RuntimeStats(reg *pod.Registry) Stats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	s := Stats{
		Goroutines: runtime.NumGoroutine(),
		HeapAlloc:  m.HeapAlloc,
		HeapInuse:  m.HeapInuse,
		NumGC:      m.NumGC,
	}
	if reg != nil {
		for _, p := range reg.List() {
			s.Pods++
			s.Types += p.Len()
		}
	}
	return s
}

// StatsHandler serves RuntimeStats as JSON
func StatsHandler(reg *pod.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.RenderJSON(w, http.StatusOK, RuntimeStats(reg))
	}
}
