package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cancerflow/pkg/cache"
	"github.com/matzehuels/cancerflow/pkg/dataset"
	cferrors "github.com/matzehuels/cancerflow/pkg/errors"
	"github.com/matzehuels/cancerflow/pkg/flow"
	"github.com/matzehuels/cancerflow/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner holds no per-request state, so one Runner may serve
// concurrent requests with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil keyer means [cache.DefaultKeyer], a nil
// cache disables caching and a nil logger uses the default logger.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs filter → group → build → render. Options are validated
// before any computation, so a bad request never produces partial output.
func (r *Runner) Execute(ctx context.Context, ds *dataset.Dataset, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	result := &Result{}

	groupStart := time.Now()
	grouped, rows, hit, err := r.GroupWithCacheInfo(ctx, ds, opts)
	if err != nil {
		return nil, err
	}
	result.Grouped = grouped
	result.GroupHash = hashGrouped(opts.Layers, grouped)
	result.Stats.Rows = rows
	result.Stats.Groups = len(grouped)
	result.Stats.Patients = flow.TotalCount(grouped)
	result.Stats.GroupTime = time.Since(groupStart)
	result.CacheInfo.GroupHit = hit

	opts.Logger.Debug("grouped rows",
		"layers", opts.LayerSpec().String(),
		"groups", len(grouped),
		"duration", result.Stats.GroupTime)

	buildStart := time.Now()
	d, err := r.Build(ctx, grouped, opts)
	if err != nil {
		return nil, err
	}
	result.Diagram = d
	result.Stats.NodeCount = len(d.Labels)
	result.Stats.EdgeCount = len(d.Edges)
	result.Stats.BuildTime = time.Since(buildStart)

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, d, result.GroupHash, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Debug("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// GroupWithCacheInfo filters the dataset and groups it, consulting the
// cache first. It returns the grouped counts, the number of rows that were
// grouped and whether the result came from the cache.
func (r *Runner) GroupWithCacheInfo(ctx context.Context, ds *dataset.Dataset, opts Options) ([]flow.GroupedCount, int, bool, error) {
	if err := opts.Validate(); err != nil {
		return nil, 0, false, err
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, false, err
	}

	t := ds.Table
	if opts.HasFilter() {
		filtered, err := t.Filter(opts.FilterColumn, opts.FilterValue)
		if err != nil {
			return nil, 0, false, err
		}
		t = filtered
	}
	for _, col := range opts.Layers {
		if _, err := t.Column(col); err != nil {
			return nil, 0, false, err
		}
	}

	key := r.Keyer.GroupKey(ds.Checksum(), opts.GroupKeyOpts())
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var grouped []flow.GroupedCount
			if err := json.Unmarshal(data, &grouped); err == nil {
				observability.Cache().OnCacheHit(ctx, "group")
				return grouped, t.Len(), true, nil
			}
		} else if err != nil {
			r.Logger.Warn("cache read failed", "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, "group")
	}

	hooks := observability.Pipeline()
	hooks.OnGroupStart(ctx, opts.Layers, t.Len())
	start := time.Now()
	grouped, err := flow.Group(t, opts.LayerSpec(), opts.MinCount)
	hooks.OnGroupComplete(ctx, opts.Layers, len(grouped), time.Since(start), err)
	if err != nil {
		return nil, 0, false, err
	}

	if data, err := json.Marshal(grouped); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLGroup); err != nil {
			r.Logger.Warn("cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "group", len(data))
		}
	}
	return grouped, t.Len(), false, nil
}

// Group is [Runner.GroupWithCacheInfo] without the cache and row info.
func (r *Runner) Group(ctx context.Context, ds *dataset.Dataset, opts Options) ([]flow.GroupedCount, error) {
	grouped, _, _, err := r.GroupWithCacheInfo(ctx, ds, opts)
	return grouped, err
}

// Build converts grouped counts into a diagram sized by opts.
func (r *Runner) Build(ctx context.Context, grouped []flow.GroupedCount, opts Options) (*flow.Diagram, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	d, err := flow.Build(grouped, opts.LayerSpec(), flow.WithSize(opts.Width, opts.Height))
	if err == nil {
		err = d.Validate()
	}
	if err != nil {
		observability.Pipeline().OnBuildComplete(ctx, 0, 0, time.Since(start), err)
		return nil, err
	}
	observability.Pipeline().OnBuildComplete(ctx, len(d.Labels), len(d.Edges), time.Since(start), nil)
	return d, nil
}

// RenderWithCacheInfo renders every requested format. When all formats are
// cached the stored artifacts are returned and the second result is true.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, d *flow.Diagram, groupHash string, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.Validate(); err != nil {
		return nil, false, err
	}

	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(groupHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := Render(ctx, d, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, cferrors.Wrap(cferrors.ErrCodeInternal, err, "render")
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(groupHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			r.Logger.Warn("cache write failed", "format", format, "err", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}
	return rendered, false, nil
}

// Render is [Runner.RenderWithCacheInfo] without the cache info.
func (r *Runner) Render(ctx context.Context, d *flow.Diagram, groupHash string, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, d, groupHash, opts)
	return artifacts, err
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// hashGrouped identifies a grouping result. Layer names are included since
// they appear in detailed node-link labels.
func hashGrouped(layers []string, grouped []flow.GroupedCount) string {
	data, _ := json.Marshal(struct {
		Layers  []string            `json:"layers"`
		Grouped []flow.GroupedCount `json:"grouped"`
	}{layers, grouped})
	return cache.Hash(data)
}
