package sankey

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/matzehuels/cancerflow/pkg/flow"
)

const (
	// NodePad is the vertical gap between nodes in a layer, in pixels.
	NodePad = 50

	// NodeThickness is the width of a node bar, in pixels.
	NodeThickness = 50
)

// Figure is a Plotly figure holding a single Sankey trace.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is a Plotly Sankey trace.
type Trace struct {
	Type string `json:"type"`
	Node Node   `json:"node"`
	Link Link   `json:"link"`
}

// Node holds node style attributes and labels.
type Node struct {
	Pad       int      `json:"pad"`
	Thickness int      `json:"thickness"`
	Label     []string `json:"label"`
}

// Link holds links as parallel arrays.
type Link struct {
	Source []int `json:"source"`
	Target []int `json:"target"`
	Value  []int `json:"value"`
}

// Layout fixes the figure size.
type Layout struct {
	Autosize bool   `json:"autosize"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Title    string `json:"title,omitempty"`
}

// ToFigure converts a diagram into a Plotly figure.
// Empty diagrams produce a figure with empty arrays, which plotly.js draws
// as a blank canvas.
func ToFigure(d *flow.Diagram) Figure {
	link := Link{
		Source: make([]int, len(d.Edges)),
		Target: make([]int, len(d.Edges)),
		Value:  make([]int, len(d.Edges)),
	}
	for i, e := range d.Edges {
		link.Source[i] = e.Source
		link.Target[i] = e.Target
		link.Value[i] = e.Value
	}
	labels := make([]string, len(d.Labels))
	copy(labels, d.Labels)

	return Figure{
		Data: []Trace{{
			Type: "sankey",
			Node: Node{Pad: NodePad, Thickness: NodeThickness, Label: labels},
			Link: link,
		}},
		Layout: Layout{Autosize: false, Width: d.Width, Height: d.Height},
	}
}

// MarshalFigure encodes a figure as JSON.
func MarshalFigure(fig Figure) ([]byte, error) {
	data, err := json.Marshal(fig)
	if err != nil {
		return nil, fmt.Errorf("encode figure: %w", err)
	}
	return data, nil
}

// UnmarshalFigure decodes a figure from JSON.
func UnmarshalFigure(data []byte) (Figure, error) {
	var fig Figure
	if err := json.Unmarshal(data, &fig); err != nil {
		return Figure{}, fmt.Errorf("decode figure: %w", err)
	}
	return fig, nil
}

// WriteJSON writes the figure for d to w as indented JSON.
func WriteJSON(d *flow.Diagram, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ToFigure(d)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
