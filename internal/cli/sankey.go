package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cancerflow/pkg/dataset"
	"github.com/matzehuels/cancerflow/pkg/flow"
	"github.com/matzehuels/cancerflow/pkg/pipeline"
)

// sankeyOpts holds the flags of the sankey command.
type sankeyOpts struct {
	data         string
	middle       string
	layers       string
	minCount     int
	width        int
	height       int
	filterColumn string
	filterValue  string
	formats      string
	output       string
	title        string
	detailed     bool
	noCache      bool
	refresh      bool
	pick         bool
}

// sankeyCommand creates the sankey command for writing diagram files.
func (c *CLI) sankeyCommand() *cobra.Command {
	opts := sankeyOpts{}

	cmd := &cobra.Command{
		Use:   "sankey",
		Short: "Write a diagnosis-to-therapy flow diagram",
		Long: `Group participants by diagnosis, optional middle layers and first therapy,
and write the resulting flow diagram in one or more formats.

By default the diagram has the layers Diagnosis → Therapy. Use --middle to
insert Age, Gender or Race between them, --layers to name every layer
yourself, or --pick to choose middle layers interactively.

Formats: json (Plotly figure), html (standalone page), dot, svg, png, pdf.`,
		Example: `  cancerflow sankey --data participants.csv --middle Age -f html
  cancerflow sankey --data participants.csv --layers Diagnosis,Gender,Therapy --min-count 2 -f svg,png
  cancerflow sankey --data participants.csv --filter-column Gender --filter-value Female -o female`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSankey(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.data, "data", "d", "", dataUsage)
	cmd.Flags().StringVarP(&opts.middle, "middle", "m", "", "comma-separated middle layers between Diagnosis and Therapy")
	cmd.Flags().StringVar(&opts.layers, "layers", "", "comma-separated layers, overriding --middle")
	cmd.Flags().IntVar(&opts.minCount, "min-count", pipeline.DefaultMinCount, "drop combinations seen fewer times")
	cmd.Flags().IntVar(&opts.width, "width", pipeline.DefaultWidth, "diagram width in pixels")
	cmd.Flags().IntVar(&opts.height, "height", pipeline.DefaultHeight, "diagram height in pixels")
	cmd.Flags().StringVar(&opts.filterColumn, "filter-column", "", "keep only rows whose column equals --filter-value")
	cmd.Flags().StringVar(&opts.filterValue, "filter-value", "", "value for --filter-column")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output formats: "+strings.Join(pipeline.FormatNames, ",")+" (default: svg)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output path without extension (default: sankey)")
	cmd.Flags().StringVar(&opts.title, "title", "", "title for html output")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show layer and patient totals in dot/svg/png/pdf node labels")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute cached results")
	cmd.Flags().BoolVar(&opts.pick, "pick", false, "choose middle layers interactively")

	return cmd
}

func (c *CLI) runSankey(ctx context.Context, opts sankeyOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig(opts.data)
	if err != nil {
		return err
	}
	ds, err := loadDataset(ctx, cfg)
	if err != nil {
		return err
	}

	layers, err := resolveLayers(ds.Table, opts)
	if err != nil || layers == nil {
		return err
	}

	runner, err := c.newRunner(ctx, cfg.Cache, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := pipeline.Options{
		Layers:       layers,
		MinCount:     opts.minCount,
		FilterColumn: opts.filterColumn,
		FilterValue:  opts.filterValue,
		Width:        opts.width,
		Height:       opts.height,
		Formats:      parseFormats(opts.formats),
		Detailed:     opts.detailed,
		Title:        opts.title,
		Refresh:      opts.refresh,
		Logger:       logger,
	}

	spinner := newSpinner(ctx, os.Stderr, "Building "+flow.LayerSpec(layers).String()+"...")
	spinner.Start()
	result, err := runner.Execute(ctx, ds, popts)
	spinner.Stop()
	if err != nil {
		return err
	}

	if result.Diagram.Empty() {
		printWarning("No combination reaches a minimum count of %d", max(opts.minCount, pipeline.DefaultMinCount))
	}

	base := opts.output
	if base == "" {
		base = "sankey"
	}
	paths, err := writeArtifacts(base, popts.Formats, result.Artifacts)
	if err != nil {
		return err
	}

	printSuccess("Diagram %s", StyleHighlight.Render(flow.LayerSpec(layers).String()))
	printStats(result.Stats.Patients, result.Stats.NodeCount, result.Stats.EdgeCount,
		result.CacheInfo.GroupHit && result.CacheInfo.RenderHit)
	for _, p := range paths {
		printFile(p)
	}
	if len(paths) > 0 && !strings.HasSuffix(paths[0], "."+pipeline.FormatHTML) {
		printNewline()
		printNextStep("Explore interactively", appName+" serve --data "+cfg.Data)
	}
	return nil
}

// resolveLayers picks the layer list from --layers, --pick or --middle, in
// that order. It returns nil layers and no error when the picker was
// cancelled.
func resolveLayers(t *dataset.Table, opts sankeyOpts) ([]string, error) {
	if opts.layers != "" {
		return flow.ParseLayerSpec(opts.layers), nil
	}
	if opts.pick {
		middle, ok, err := pickLayers(t)
		if err != nil || !ok {
			if err == nil {
				printInfo("Cancelled")
			}
			return nil, err
		}
		return pipeline.DefaultLayers(middle...), nil
	}
	return pipeline.DefaultLayers(flow.ParseLayerSpec(opts.middle)...), nil
}

// writeArtifacts writes one file per format next to base and returns the
// paths in format order.
func writeArtifacts(base string, formats []string, artifacts map[string][]byte) ([]string, error) {
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}
	var paths []string
	for _, f := range formats {
		data, ok := artifacts[f]
		if !ok {
			continue
		}
		p := base + "." + f
		if err := os.WriteFile(p, data, 0644); err != nil {
			return paths, fmt.Errorf("write %s: %w", p, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}
