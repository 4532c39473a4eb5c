package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mysterygraph/internal/api"
	"github.com/matzehuels/mysterygraph/internal/config"
	"github.com/matzehuels/mysterygraph/pkg/cache"
	"github.com/matzehuels/mysterygraph/pkg/notify"
	"github.com/matzehuels/mysterygraph/pkg/observability"
	"github.com/matzehuels/mysterygraph/pkg/pipeline"
	"github.com/matzehuels/mysterygraph/pkg/storage"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Backends are chosen in the config file ([cache], [storage], [mqtt]) or by
MYSTERYGRAPH_* environment variables. With --verbose every pipeline stage,
cache lookup and request is logged.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides [server] addr)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg *config.Config) error {
	if c.Logger.GetLevel() <= log.DebugLevel {
		hooks := observability.NewLogHooks(c.Logger)
		observability.SetPipelineHooks(hooks)
		observability.SetCacheHooks(hooks)
		observability.SetHTTPHooks(hooks)
		defer observability.Reset()
	}

	renderCache, keyer, err := openServerCache(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(renderCache, keyer, c.Logger)
	defer runner.Close()

	store, err := storage.Open(ctx, cfg.Storage.Options())
	if err != nil {
		return fmt.Errorf("open %s storage: %w", cfg.Storage.Backend, err)
	}
	defer store.Close()

	var publisher notify.Publisher = notify.NoopPublisher{}
	if cfg.MQTT.Enabled() {
		mqttPub, err := notify.NewMQTTPublisher(cfg.MQTT.Options())
		if err != nil {
			return fmt.Errorf("connect mqtt: %w", err)
		}
		publisher = mqttPub
	}
	defer publisher.Close()

	c.Logger.Info("starting server",
		"cache", cfg.Cache.Backend,
		"storage", cfg.Storage.Backend,
		"mqtt", cfg.MQTT.Enabled())

	srv, err := api.New(api.Options{
		Runner:       runner,
		Store:        store,
		Publisher:    publisher,
		Logger:       c.Logger,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
	})
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx, cfg.Server.Addr, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)
}

// openServerCache opens the configured render cache. Redis keys are scoped
// so a CLI sharing the instance never reads API entries.
func openServerCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, cache.Keyer, error) {
	switch cfg.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil, nil
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cfg.RedisOptions())
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		return rc, cache.NewScopedKeyer(cache.NewDefaultKeyer(), "api:"), nil
	default:
		dir := cfg.Dir
		if dir == "" {
			d, err := cacheDir()
			if err != nil {
				return nil, nil, err
			}
			dir = d
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, nil, err
		}
		return fc, nil, nil
	}
}
