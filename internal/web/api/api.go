// Package api serves read-only registry lookups over HTTP.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/conduit-lang/podreg/internal/web/auth"
	"github.com/conduit-lang/podreg/internal/web/metrics"
	"github.com/conduit-lang/podreg/internal/web/middleware"
	"github.com/conduit-lang/podreg/internal/web/profiling"
	"github.com/conduit-lang/podreg/internal/web/ratelimit"
	"github.com/conduit-lang/podreg/internal/web/response"
	"github.com/conduit-lang/podreg/internal/web/websocket"
	"github.com/conduit-lang/podreg/runtime/pod"
)

// Options configures the router
type Options struct {
	Logger *zap.Logger
	// Tokens enables bearer authentication when set; /healthz stays open
	Tokens *auth.TokenService
	// Feed is mounted at /events when set
	Feed *websocket.Feed
	// Limiter throttles every route except /healthz when set
	Limiter ratelimit.Limiter
	// Profiling mounts /debug/stats and /debug/pprof
	Profiling bool
	// Metrics records every request and serves /metrics when set
	Metrics *metrics.Collector
}

// PodSummary is a pod in the /pods listing
type PodSummary struct {
	Name  string `json:"name"`
	Types int    `json:"types"`
}

// PodDetail is a pod with its types
type PodDetail struct {
	Name  string     `json:"name"`
	Types []TypeInfo `json:"types"`
}

// TypeInfo describes one type
type TypeInfo struct {
	Name  string `json:"name"`
	QName string `json:"qname"`
	Pod   string `json:"pod"`
	Base  string `json:"base,omitempty"`
}

func newTypeInfo(t pod.Type) TypeInfo {
	return TypeInfo{
		Name:  t.Name(),
		QName: t.QName(),
		Pod:   t.Pod(),
		Base:  t.Base(),
	}
}

type handler struct {
	reg *pod.Registry
}

// NewRouter builds the HTTP handler for reg
func NewRouter(reg *pod.Registry, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &handler{reg: reg}

	public := []string{"/healthz"}
	if opts.Metrics != nil {
		public = append(public, metrics.DefaultPath)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	if opts.Metrics != nil {
		r.Use(middleware.Metrics(opts.Metrics))
	}
	r.Use(middleware.Recovery(logger))
	if opts.Tokens != nil {
		r.Use(middleware.Auth(opts.Tokens, public...))
	}
	if opts.Limiter != nil {
		r.Use(middleware.RateLimit(opts.Limiter, logger, public...))
	}

	r.Get("/healthz", h.health)
	r.Get("/pods", h.listPods)
	r.Get("/pods/{pod}", h.getPod)
	r.Get("/pods/{pod}/types/{type}", h.getPodType)
	r.Get("/types/{qname}", h.getType)
	r.Get("/snapshot", h.snapshot)
	if opts.Feed != nil {
		r.Handle("/events", opts.Feed)
	}
	if opts.Profiling {
		profiling.Register(r, profiling.DefaultPath, reg)
	}
	if opts.Metrics != nil {
		r.Method(http.MethodGet, metrics.DefaultPath, opts.Metrics.Handler())
	}

	return r
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	response.RenderJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"pods":   h.reg.Len(),
	})
}

func (h *handler) listPods(w http.ResponseWriter, r *http.Request) {
	pods := h.reg.List()
	result := make([]PodSummary, 0, len(pods))
	for _, p := range pods {
		result = append(result, PodSummary{Name: p.Name(), Types: p.Len()})
	}
	response.RenderJSON(w, http.StatusOK, result)
}

func (h *handler) getPod(w http.ResponseWriter, r *http.Request) {
	p, err := h.reg.Find(chi.URLParam(r, "pod"), true)
	if err != nil {
		response.RenderError(w, err)
		return
	}

	types := p.Types()
	detail := PodDetail{Name: p.Name(), Types: make([]TypeInfo, 0, len(types))}
	for _, t := range types {
		detail.Types = append(detail.Types, newTypeInfo(t))
	}
	response.RenderJSON(w, http.StatusOK, detail)
}

func (h *handler) getPodType(w http.ResponseWriter, r *http.Request) {
	p, err := h.reg.Find(chi.URLParam(r, "pod"), true)
	if err != nil {
		response.RenderError(w, err)
		return
	}

	t, err := p.FindType(chi.URLParam(r, "type"), true)
	if err != nil {
		response.RenderError(w, err)
		return
	}
	response.RenderJSON(w, http.StatusOK, newTypeInfo(t))
}

func (h *handler) getType(w http.ResponseWriter, r *http.Request) {
	t, err := h.reg.FindType(chi.URLParam(r, "qname"), true)
	if err != nil {
		response.RenderError(w, err)
		return
	}
	response.RenderJSON(w, http.StatusOK, newTypeInfo(t))
}

func (h *handler) snapshot(w http.ResponseWriter, r *http.Request) {
	response.RenderJSON(w, http.StatusOK, h.reg.Snapshot())
}
