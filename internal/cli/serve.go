package cli

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/daygrid/daygrid/pkg/cache"
	"github.com/daygrid/daygrid/pkg/engine"
	"github.com/daygrid/daygrid/pkg/feed"
	"github.com/daygrid/daygrid/pkg/server"
)

// serveCommand creates the "serve" command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long:  `Serve exposes the layout engine over HTTP: POST /v1/compute takes the request envelope, and /v1/layout, /v1/conflicts, /v1/optimize take the bare payload. Feeds listed in the config are refreshed on their cron schedules and kept warm in the result cache.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configPath, cmd.Flags().Changed("config"))
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}

			store, err := c.openCache(cmd.Context(), cfg.Cache)
			if err != nil {
				return err
			}
			defer store.Close()

			srv := server.New(server.Config{
				Addr:      cfg.Server.Addr,
				Workers:   cfg.Server.Workers,
				Cache:     store,
				Namespace: cfg.Cache.Namespace,
				Logger:    c.Logger,
				Engine: engine.Config{
					Geometry:   cfg.Geometry,
					Thresholds: cfg.Thresholds,
					Logger:     c.Logger,
				},
			})

			sched, err := c.startFeedRefresh(cmd.Context(), cfg.Feeds, cfg.Cache.Namespace, store)
			if err != nil {
				return err
			}
			if sched != nil {
				defer sched.Stop()
			}

			printInfo("Serving on %s with %d worker(s)", cfg.Server.Addr, cfg.Server.Workers)
			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "daygrid.toml", "config file path")
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	return cmd
}

// openCache builds the configured result cache backend, wrapped so the
// observability hooks see every hit, miss, and set, labelled by backend.
func (c *CLI) openCache(ctx context.Context, cfg CacheConfig) (cache.Cache, error) {
	var (
		store cache.Cache
		err   error
	)
	switch cfg.Backend {
	case "memory":
		store = cache.NewMemoryCache()
	case "file":
		dir := cfg.Dir
		if dir == "" {
			if dir, err = cacheDir(); err != nil {
				return nil, err
			}
		}
		store, err = cache.NewFileCache(dir)
	case "redis":
		store, err = cache.NewRedisCache(ctx, cfg.Redis)
	default:
		store = cache.NewNullCache()
	}
	if err != nil {
		return nil, err
	}
	return cache.NewInstrumented(store, cfg.Backend), nil
}

// startFeedRefresh schedules materialization of each configured feed.
// A refreshed feed is stored under its feed key so readers get the
// latest batch without touching the filesystem on every request. Feed
// keys share the server's cache namespace.
func (c *CLI) startFeedRefresh(ctx context.Context, feeds []FeedConfig, namespace string, store cache.Cache) (*cron.Cron, error) {
	var scheduled []FeedConfig
	for _, f := range feeds {
		if f.Refresh != "" {
			scheduled = append(scheduled, f)
		}
	}
	if len(scheduled) == 0 {
		return nil, nil
	}

	keyer := cache.NewDefaultKeyer()
	if namespace != "" {
		keyer = cache.NewScopedKeyer(keyer, namespace+":")
	}
	sched := cron.New()
	for _, f := range scheduled {
		f := f
		job := func() { c.refreshFeed(ctx, f.Path, keyer, store) }
		if _, err := sched.AddFunc(f.Refresh, job); err != nil {
			return nil, err
		}
		// Warm once at startup rather than waiting for the first tick.
		go job()
	}
	sched.Start()
	c.Logger.Info("feed refresh scheduled", "feeds", len(scheduled))
	return sched, nil
}

func (c *CLI) refreshFeed(ctx context.Context, path string, keyer cache.Keyer, store cache.Cache) {
	events, err := feed.Load(path, feed.MonthOf(time.Now()))
	if err != nil {
		c.Logger.Error("feed refresh failed", "feed", path, "err", err)
		return
	}
	data, err := feed.MarshalJSON(events)
	if err != nil {
		c.Logger.Error("feed refresh failed", "feed", path, "err", err)
		return
	}
	if err := store.Set(ctx, keyer.FeedKey(path), data, cache.DefaultFeedTTL); err != nil {
		c.Logger.Error("feed cache write failed", "feed", path, "err", err)
		return
	}
	c.Logger.Debug("feed refreshed", "feed", path, "events", len(events))
}
