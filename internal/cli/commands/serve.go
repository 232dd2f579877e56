package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/podreg/internal/manifest"
	"github.com/conduit-lang/podreg/internal/store"
	"github.com/conduit-lang/podreg/internal/watch"
	"github.com/conduit-lang/podreg/internal/web/api"
	"github.com/conduit-lang/podreg/internal/web/auth"
	"github.com/conduit-lang/podreg/internal/web/metrics"
	"github.com/conduit-lang/podreg/internal/web/ratelimit"
	"github.com/conduit-lang/podreg/internal/web/server"
	"github.com/conduit-lang/podreg/internal/web/websocket"
	"github.com/conduit-lang/podreg/runtime/pod"
)

var (
	servePort      int
	serveFromStore bool
	serveWatch     bool
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the registry over HTTP",
		Long: `Build the registry from the manifest (or from the snapshot store with
--from-store) and serve read-only lookups over HTTP. Registration events are
streamed on /events as websocket messages.

Routes:
  GET /healthz
  GET /pods
  GET /pods/{pod}
  GET /pods/{pod}/types/{type}
  GET /types/{qname}
  GET /snapshot
  GET /events
  GET /metrics        (server.metrics)
  GET /debug/stats    (server.pprof)
  GET /debug/pprof/*  (server.pprof)

With --watch, pods and types added to the manifest are registered while the
server runs. The registry is append-only: removed or changed declarations
are logged and ignored.

When auth.jwt_secret is set every route except /healthz requires a bearer
token (see "podreg token"). /metrics stays open for scrapers. Browser
websocket clients must be same-origin or listed in server.allowed_origins.

Examples:
  podreg serve
  podreg serve --port 8080 --from-store`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (overrides server.port)")
	cmd.Flags().BoolVar(&serveFromStore, "from-store", false, "Restore the registry from the snapshot store instead of the manifest")
	cmd.Flags().BoolVarP(&serveWatch, "watch", "w", false, "Register pods and types added to the manifest while serving")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	if serveWatch && serveFromStore {
		return fmt.Errorf("--watch needs a manifest and cannot be combined with --from-store")
	}
	if servePort != 0 {
		a.cfg.Server.Port = servePort
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	feed := websocket.NewFeed(a.logger, a.cfg.Server.AllowedOrigins...)
	reg, err := a.buildServedRegistry(ctx, feed)
	if err != nil {
		return err
	}

	limiter, err := a.newLimiter()
	if err != nil {
		return err
	}
	if limiter != nil {
		// runs after Run has shut the server down, and on every early return
		defer func() {
			if err := limiter.Close(); err != nil {
				a.logger.Warn("failed to close rate limiter", zap.Error(err))
			}
		}()
	}

	opts := api.Options{
		Logger:    a.logger,
		Feed:      feed,
		Limiter:   limiter,
		Profiling: a.cfg.Server.Pprof,
	}
	if a.cfg.Server.Metrics {
		opts.Metrics = metrics.New(reg)
		unsubscribe := reg.Subscribe(opts.Metrics)
		defer unsubscribe()
	}
	if a.cfg.Auth.JWTSecret != "" {
		opts.Tokens = auth.NewTokenService(a.cfg.Auth.JWTSecret, defaultTokenTTL)
	}

	srvConfig := server.DefaultConfig(api.NewRouter(reg, opts))
	srvConfig.Address = a.cfg.Server.Address()
	srvConfig.Logger = a.logger
	srv, err := server.New(srvConfig)
	if err != nil {
		return err
	}
	srv.RegisterHook(func(ctx context.Context) error {
		feed.Close()
		return nil
	})

	if serveWatch {
		fw, err := a.watchManifest(reg)
		if err != nil {
			return err
		}
		defer fw.Stop()
		srv.RegisterHook(func(ctx context.Context) error {
			return fw.Stop()
		})
	}

	if err := srv.Listen(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Serving %d pods on http://%s\n", reg.Len(), srv.Addr())

	return srv.Run(ctx)
}

// buildServedRegistry loads the registry and subscribes feed to it
func (a *app) buildServedRegistry(ctx context.Context, feed *websocket.Feed) (*pod.Registry, error) {
	if !serveFromStore {
		reg, _, err := a.loadRegistry(pod.WithListener(feed))
		return reg, err
	}

	s, err := store.Open(ctx, a.cfg.Store, a.logger)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	snap, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	reg := pod.NewRegistry(pod.WithLogger(a.logger), pod.WithListener(feed))
	if err := reg.Restore(snap); err != nil {
		return nil, err
	}
	a.logger.Info("registry restored from store",
		zap.String("snapshot", snap.ID),
		zap.Int("pods", reg.Len()),
		zap.Int("types", snap.TypeCount()),
	)
	return reg, nil
}

// newLimiter builds the API rate limiter, or nil when limiting is off.
// The redis backend shares the store's Redis settings.
func (a *app) newLimiter() (ratelimit.Limiter, error) {
	rl := a.cfg.Server.RateLimit
	var client *redis.Client
	if rl.Requests > 0 && rl.Backend == "redis" {
		client = redis.NewClient(&redis.Options{
			Addr:     a.cfg.Store.Redis.Addr,
			Password: a.cfg.Store.Redis.Password,
			DB:       a.cfg.Store.Redis.DB,
		})
	}

	limiter, err := ratelimit.New(ratelimit.Config{
		Requests: rl.Requests,
		Window:   rl.Window,
		Backend:  rl.Backend,
	}, client, a.cfg.Store.Redis.Prefix+"ratelimit:")
	if err != nil {
		if client != nil {
			client.Close()
		}
		return nil, err
	}
	if limiter != nil {
		a.logger.Info("rate limiting enabled",
			zap.String("backend", rl.Backend),
			zap.Int("requests", rl.Requests),
			zap.Duration("window", rl.Window),
		)
	}
	return limiter, nil
}

// watchManifest merges manifest changes into reg until the watcher stops
func (a *app) watchManifest(reg *pod.Registry) (*watch.FileWatcher, error) {
	fw, err := watch.NewFileWatcher(a.cfg.Manifest, watch.DefaultDelay, a.logger, func() error {
		m, err := manifest.LoadFile(a.cfg.Manifest)
		if err != nil {
			return err
		}
		res, err := manifest.Merge(reg, m, a.localizer)
		for _, c := range res.Conflicts {
			a.logger.Warn("manifest conflict ignored", zap.String("detail", c))
		}
		if res.Changed() {
			a.logger.Info("manifest merged",
				zap.Strings("pods", res.PodsAdded),
				zap.Strings("types", res.TypesAdded),
			)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := fw.Start(); err != nil {
		fw.Stop()
		return nil, err
	}
	return fw, nil
}
