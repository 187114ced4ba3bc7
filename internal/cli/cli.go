// Package cli implements the cancerflow command-line interface.
package cli

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cancerflow/pkg/buildinfo"
	"github.com/matzehuels/cancerflow/pkg/cache"
	"github.com/matzehuels/cancerflow/pkg/config"
	"github.com/matzehuels/cancerflow/pkg/dataset"
	cferrors "github.com/matzehuels/cancerflow/pkg/errors"
	"github.com/matzehuels/cancerflow/pkg/observability"
	"github.com/matzehuels/cancerflow/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "cancerflow"

	// dataUsage is the help text of every --data flag.
	dataUsage = "participants CSV (default: config file or $" + config.EnvData + ")"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is the --config flag. Empty means the per-user default.
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Cancerflow links diagnoses to therapies in flow diagrams",
		Long:         `Cancerflow groups clinical participant records by diagnosis, patient attributes and first therapy, and draws the result as a Sankey diagram, either written to files or served as an interactive dashboard.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.Logger.GetLevel() <= log.DebugLevel {
				observability.NewLogHooks(c.Logger).Register()
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: "+appName+"/config.toml in the user config dir)")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.sankeyCommand())
	root.AddCommand(c.describeCommand())
	root.AddCommand(c.valuesCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config, Dataset and Runner Factories
// =============================================================================

// loadConfig reads settings and overrides the data path when dataFlag is set.
func (c *CLI) loadConfig(dataFlag string) (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if dataFlag != "" {
		cfg.Data = dataFlag
	}
	return cfg, nil
}

// loadDataset reads and prepares the participants CSV named by cfg.
func loadDataset(ctx context.Context, cfg config.Config) (*dataset.Dataset, error) {
	if cfg.Data == "" {
		return nil, cferrors.New(cferrors.ErrCodeInvalidPath,
			"no dataset given: pass --data or set %s", config.EnvData)
	}
	if err := cferrors.ValidateDataPath(cfg.Data); err != nil {
		return nil, err
	}

	logger := loggerFromContext(ctx)
	prog := newProgress(logger)
	ds, err := dataset.Load(cfg.Data)
	if err != nil {
		return nil, err
	}
	prog.done("Loaded " + cfg.Data)
	logger.Debug("dataset ready", "rows", ds.Table.Len(), "columns", len(ds.Table.Columns), "checksum", ds.Checksum()[:12])
	return ds, nil
}

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, cfg cache.Config, noCache bool) (*pipeline.Runner, error) {
	cc, err := newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, nil, c.Logger), nil
}

func newCache(ctx context.Context, cfg cache.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	return cache.Open(ctx, cfg)
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}
