// Package pipeline runs the filter → group → build → render flow that turns
// a prepared dataset into diagram artifacts.
//
// The CLI and the dashboard server share this package so that both apply the
// same defaults, validation and caching.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, ds, pipeline.Options{
//	    Layers:   pipeline.DefaultLayers(dataset.ColAge),
//	    MinCount: 2,
//	    Formats:  []string{pipeline.FormatJSON},
//	})
//	figure := result.Artifacts[pipeline.FormatJSON]
//
// Stages can also be run on their own with [Runner.Group], [Runner.Build]
// and [Runner.Render].
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cancerflow/pkg/cache"
	"github.com/matzehuels/cancerflow/pkg/dataset"
	cferrors "github.com/matzehuels/cancerflow/pkg/errors"
	"github.com/matzehuels/cancerflow/pkg/flow"
)

// =============================================================================
// Default Values - Shared by the CLI and the Server
// =============================================================================

const (
	// DefaultMinCount keeps every observed combination.
	DefaultMinCount = 1

	// DefaultWidth is the default diagram width in pixels.
	DefaultWidth = flow.DefaultWidth

	// DefaultHeight is the default diagram height in pixels.
	DefaultHeight = flow.DefaultHeight

	// DefaultTitle is used for HTML pages.
	DefaultTitle = "The Diagnosis & Therapy Linkage Dashboard"

	// RemoveFilter is the filter column that disables filtering.
	RemoveFilter = "Remove Filter"
)

// Format constants for output formats.
const (
	FormatJSON = "json" // Plotly figure
	FormatHTML = "html" // standalone Plotly page
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatHTML: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
}

// FormatNames lists the supported formats in display order.
var FormatNames = []string{FormatJSON, FormatHTML, FormatDOT, FormatSVG, FormatPNG, FormatPDF}

// DefaultMiddleLayers are the middle layers the dashboard starts with.
var DefaultMiddleLayers = []string{dataset.ColAge, dataset.ColGender}

// DefaultLayers returns Diagnosis, the given middle layers, then Therapy.
func DefaultLayers(middle ...string) []string {
	layers := make([]string, 0, len(middle)+2)
	layers = append(layers, dataset.ColDiagnosis)
	layers = append(layers, middle...)
	return append(layers, dataset.ColTherapy)
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one diagram request.
// Zero values of MinCount, Width and Height select the defaults.
type Options struct {
	// Group options
	Layers       []string `json:"layers"`
	MinCount     int      `json:"min_count,omitempty"`
	FilterColumn string   `json:"filter_column,omitempty"`
	FilterValue  string   `json:"filter_value,omitempty"`

	// Build options
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"` // node-link labels show layer and patient total
	Title    string   `json:"title,omitempty"`

	// Refresh bypasses cached results.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Grouped are the grouped counts the diagram was built from.
	Grouped []flow.GroupedCount

	// GroupHash is the content hash of Grouped.
	GroupHash string

	Diagram *flow.Diagram

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Rows       int // rows after filtering
	Groups     int
	Patients   int // rows represented in the diagram
	NodeCount  int
	EdgeCount  int
	GroupTime  time.Duration
	BuildTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	GroupHit  bool
	RenderHit bool // all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return cferrors.New(cferrors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: %s)", format, strings.Join(FormatNames, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are supported.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// SetDefaults fills zero-valued fields.
func (o *Options) SetDefaults() {
	if o.MinCount == 0 {
		o.MinCount = DefaultMinCount
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.Title == "" {
		o.Title = DefaultTitle
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate applies defaults and checks every option that can be checked
// without the dataset. Column existence is checked by [Runner.Group].
func (o *Options) Validate() error {
	o.SetDefaults()
	if err := o.LayerSpec().Validate(); err != nil {
		return err
	}
	if o.MinCount < 1 {
		return cferrors.New(cferrors.ErrCodeInvalidThreshold, "minimum count must be at least 1, got %d", o.MinCount)
	}
	if o.Width < 0 || o.Height < 0 {
		return cferrors.New(cferrors.ErrCodeInvalidDimension,
			"diagram size must be positive, got %dx%d", o.Width, o.Height)
	}
	return ValidateFormats(o.Formats)
}

// LayerSpec returns the layers as a [flow.LayerSpec].
func (o *Options) LayerSpec() flow.LayerSpec {
	return flow.LayerSpec(o.Layers)
}

// HasFilter reports whether the request restricts rows to one value.
func (o *Options) HasFilter() bool {
	return o.FilterColumn != "" && o.FilterColumn != RemoveFilter && o.FilterValue != ""
}

// NeedsDOT reports whether any requested format is produced from DOT.
func (o *Options) NeedsDOT() bool {
	return slices.ContainsFunc(o.Formats, func(f string) bool {
		return f == FormatDOT || f == FormatSVG || f == FormatPNG || f == FormatPDF
	})
}

// GroupKeyOpts returns cache key options for grouping.
func (o *Options) GroupKeyOpts() cache.GroupKeyOpts {
	opts := cache.GroupKeyOpts{Layers: o.Layers, MinCount: o.MinCount}
	if o.HasFilter() {
		opts.FilterColumn, opts.FilterValue = o.FilterColumn, o.FilterValue
	}
	return opts
}

// ArtifactKeyOpts returns cache key options for rendering one format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: format, Width: o.Width, Height: o.Height}
	switch format {
	case FormatDOT, FormatSVG, FormatPNG, FormatPDF:
		opts.Detailed = o.Detailed
	case FormatHTML:
		opts.Title = o.Title
	}
	return opts
}
