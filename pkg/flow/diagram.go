package flow

import (
	cferrors "github.com/matzehuels/cancerflow/pkg/errors"
)

const (
	// DefaultWidth is the default diagram width in pixels.
	DefaultWidth = 1500

	// DefaultHeight is the default diagram height in pixels.
	DefaultHeight = 800
)

// Edge links two labels with a weight equal to a patient count.
// Source and Target are indices into [Diagram.Labels].
type Edge struct {
	Source int `json:"source"`
	Target int `json:"target"`
	Value  int `json:"value"`
}

// Diagram is a renderable flow diagram: a label list and weighted edges
// between label indices.
type Diagram struct {
	Labels []string  `json:"labels"`
	Edges  []Edge    `json:"edges"`
	Layers LayerSpec `json:"layers"`

	// NodeLayers holds, for each label, the first layer it occurs in.
	NodeLayers []int `json:"node_layers"`

	Width  int `json:"width"`
	Height int `json:"height"`
}

// Option configures [Build].
type Option func(*buildConfig) error

type buildConfig struct {
	width, height int
}

// WithSize sets the diagram dimensions in pixels. Both must be positive.
func WithSize(width, height int) Option {
	return func(c *buildConfig) error {
		if width <= 0 || height <= 0 {
			return cferrors.New(cferrors.ErrCodeInvalidDimension,
				"diagram size must be positive, got %dx%d", width, height)
		}
		c.width, c.height = width, height
		return nil
	}
}

// Build converts grouped counts into a flow diagram.
//
// Labels are the distinct values of every layer pooled in layer order and
// deduplicated across layers. For every adjacent layer pair (i, i+1) and
// every grouped row, Build emits an edge from the row's layer-i label to its
// layer-(i+1) label weighted by the row's count. Edges are ordered by layer
// pair, then by row, so len(Edges) == len(grouped) * (len(layers) - 1).
func Build(grouped []GroupedCount, layers LayerSpec, opts ...Option) (*Diagram, error) {
	if len(layers) < MinLayers {
		return nil, cferrors.New(cferrors.ErrCodeInsufficientLayers,
			"at least %d layers (source and target) are required, got %d", MinLayers, len(layers))
	}
	cfg := buildConfig{width: DefaultWidth, height: DefaultHeight}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	for i, g := range grouped {
		if len(g.Values) != len(layers) {
			return nil, cferrors.New(cferrors.ErrCodeInvalidInput,
				"grouped row %d has %d values, want %d", i, len(g.Values), len(layers))
		}
		if g.Count < 0 {
			return nil, cferrors.New(cferrors.ErrCodeInvalidInput, "grouped row %d has negative count %d", i, g.Count)
		}
	}

	d := &Diagram{
		Labels:     []string{},
		Edges:      make([]Edge, 0, len(grouped)*(len(layers)-1)),
		Layers:     append(LayerSpec(nil), layers...),
		NodeLayers: []int{},
		Width:      cfg.width,
		Height:     cfg.height,
	}

	index := make(map[string]int)
	for layer := range layers {
		for _, g := range grouped {
			v := g.Values[layer]
			if _, ok := index[v]; ok {
				continue
			}
			index[v] = len(d.Labels)
			d.Labels = append(d.Labels, v)
			d.NodeLayers = append(d.NodeLayers, layer)
		}
	}

	for layer := 0; layer < len(layers)-1; layer++ {
		for _, g := range grouped {
			d.Edges = append(d.Edges, Edge{
				Source: index[g.Values[layer]],
				Target: index[g.Values[layer+1]],
				Value:  g.Count,
			})
		}
	}
	return d, nil
}

// Empty reports whether the diagram has no edges.
func (d *Diagram) Empty() bool { return len(d.Edges) == 0 }

// PairEdges returns the edges between layer i and layer i+1.
func (d *Diagram) PairEdges(i int) []Edge {
	pairs := d.Layers.Pairs()
	if pairs == 0 || i < 0 || i >= pairs {
		return nil
	}
	per := len(d.Edges) / pairs
	return d.Edges[i*per : (i+1)*per]
}

// TotalFlow returns the number of patients shown, which is the summed weight
// of the edges leaving the first layer.
func (d *Diagram) TotalFlow() int {
	total := 0
	for _, e := range d.PairEdges(0) {
		total += e.Value
	}
	return total
}

// Validate checks that every edge references an existing label.
func (d *Diagram) Validate() error {
	for i, e := range d.Edges {
		if e.Source < 0 || e.Source >= len(d.Labels) || e.Target < 0 || e.Target >= len(d.Labels) {
			return cferrors.New(cferrors.ErrCodeInternal,
				"edge %d (%d -> %d) references a label outside [0, %d)", i, e.Source, e.Target, len(d.Labels))
		}
	}
	if len(d.NodeLayers) != len(d.Labels) {
		return cferrors.New(cferrors.ErrCodeInternal,
			"diagram has %d labels but %d node layers", len(d.Labels), len(d.NodeLayers))
	}
	return nil
}
