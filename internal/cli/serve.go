package cli

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/hillchart/pkg/cache"
	"github.com/matzehuels/hillchart/pkg/config"
	"github.com/matzehuels/hillchart/pkg/server"
)

// redisArtifactPrefix keeps rendered artifacts apart from stored charts
// when both share one Redis database.
const redisArtifactPrefix = "hillchart:artifact:"

func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chart over an HTTP API",
		Long: `Serve the selected chart over a JSON HTTP API. All clients share one chart;
changes are saved to the configured store on every drop.`,
		Example: `  hillchart serve
  hillchart serve --addr :9000 --chart roadmap`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}

	ch, done, err := c.openChart(ctx)
	if err != nil {
		return err
	}
	defer done()

	artifacts, err := openServerCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer artifacts.Close()

	srv := server.New(ch,
		server.WithLogger(c.Logger),
		server.WithSVGOptions(c.svgOptions(cfg, &renderOpts{})...),
		server.WithTimeouts(cfg.Server.ReadTimeout.Duration, cfg.Server.WriteTimeout.Duration),
		server.WithArtifactCache(artifacts, cache.NewScopedKeyer(cache.NewDefaultKeyer(), "chart:"+ch.Name()+":")),
	)

	printSuccess("Serving %s on %s", ch.Name(), StyleHighlight.Render("http://"+addr))
	printDetail("store: %s, markers: %d", cfg.Store.Backend, len(ch.Markers()))

	err = srv.ListenAndServe(ctx, addr)
	if stderrors.Is(err, context.Canceled) {
		printInfo("Server stopped")
		return nil
	}
	return err
}

// openServerCache opens the artifact cache named by server.artifact_cache.
func openServerCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	switch cfg.Server.ArtifactCache {
	case "redis":
		rc, err := cache.DialRedisCache(ctx, cfg.Store.RedisURL, redisArtifactPrefix)
		if err != nil {
			return nil, fmt.Errorf("artifact cache: %w", err)
		}
		return rc, nil
	case "none":
		return cache.NewNullCache(), nil
	default:
		return newArtifactCache(false)
	}
}
