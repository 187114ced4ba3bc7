package cli

import (
	"context"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cancerflow/pkg/server"
)

type serveOpts struct {
	data        string
	addr        string
	cache       string
	title       string
	noCache     bool
	allowOrigin bool
}

// serveCommand creates the serve command that runs the dashboard.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the interactive dashboard",
		Long: `Serve the flow-diagram dashboard for one participants CSV.

The dashboard redraws the diagram on every control change over a websocket
and exposes the same data as JSON under /api. Settings come from the config
file, a .env file and the environment; flags override them.`,
		Example: `  cancerflow serve --data participants.csv
  cancerflow serve --data participants.csv --addr :9000 --cache redis`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.data, "data", "d", "", dataUsage)
	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default: config or :8050)")
	cmd.Flags().StringVar(&opts.cache, "cache", "", "cache backend: none, memory, file, redis, mongo")
	cmd.Flags().StringVar(&opts.title, "title", "", "dashboard title")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.allowOrigin, "allow-any-origin", false, "accept websocket connections from any origin")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig(opts.data)
	if err != nil {
		return err
	}
	if opts.addr != "" {
		cfg.Addr = opts.addr
	}
	if opts.cache != "" {
		cfg.Cache.Backend = opts.cache
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ds, err := loadDataset(ctx, cfg)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, cfg.Cache, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	var serverOpts []server.Option
	if opts.title != "" {
		serverOpts = append(serverOpts, server.WithTitle(opts.title))
	}
	if opts.allowOrigin {
		serverOpts = append(serverOpts, server.WithCheckOrigin(func(*http.Request) bool { return true }))
	}

	backend := cfg.Cache.Backend
	if opts.noCache {
		backend = "none"
	}
	printSuccess("Serving %s", StyleValue.Render(cfg.Data))
	printKeyValue("Dashboard", StyleLink.Render(dashboardURL(cfg.Addr)))
	printKeyValue("Cache", backend)
	printNewline()

	return server.New(ds, runner, logger, serverOpts...).ListenAndServe(ctx, cfg.Addr)
}

// dashboardURL turns a listen address into a browsable URL.
func dashboardURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}
