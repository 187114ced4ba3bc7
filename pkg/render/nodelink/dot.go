package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/cancerflow/pkg/flow"
	"github.com/matzehuels/cancerflow/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes the layer name and patient total in node labels.
	// When false, only the label text is shown.
	Detailed bool
}

const (
	minPenWidth = 1.0
	maxPenWidth = 10.0
)

// ToDOT converts a flow diagram to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
func ToDOT(d *flow.Diagram, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [color=\"#a9322680\", arrowsize=0.6];\n")
	buf.WriteString("  ranksep=1.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for layer := range d.Layers {
		var ids []string
		for i, l := range d.NodeLayers {
			if l == layer {
				ids = append(ids, strconv.Quote(nodeID(i)))
			}
		}
		if len(ids) > 0 {
			fmt.Fprintf(&buf, "  { rank=same; %s; }\n", strings.Join(ids, "; "))
		}
	}
	buf.WriteString("\n")

	totals := nodeTotals(d)
	for i, label := range d.Labels {
		text := label
		if opts.Detailed {
			text = fmtDetailed(d, i, totals[i])
		}
		fmt.Fprintf(&buf, "  %q [label=%q];\n", nodeID(i), text)
	}

	buf.WriteString("\n")
	links := mergeEdges(d.Edges)
	maxValue := 0
	for _, l := range links {
		maxValue = max(maxValue, l.Value)
	}
	for _, l := range links {
		fmt.Fprintf(&buf, "  %q -> %q [label=\"%d\", penwidth=%.2f];\n",
			nodeID(l.Source), nodeID(l.Target), l.Value, penWidth(l.Value, maxValue))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(i int) string {
	return "n" + strconv.Itoa(i)
}

func fmtDetailed(d *flow.Diagram, i, total int) string {
	layer := ""
	if i < len(d.NodeLayers) && d.NodeLayers[i] < len(d.Layers) {
		layer = d.Layers[d.NodeLayers[i]]
	}
	return fmt.Sprintf("%s\nlayer: %s\npatients: %d", d.Labels[i], layer, total)
}

// nodeTotals returns, per label, the larger of its incoming and outgoing
// weight. Labels in the first layer only have outgoing edges and labels in
// the last layer only incoming ones.
func nodeTotals(d *flow.Diagram) []int {
	in := make([]int, len(d.Labels))
	out := make([]int, len(d.Labels))
	for _, e := range d.Edges {
		out[e.Source] += e.Value
		in[e.Target] += e.Value
	}
	totals := make([]int, len(d.Labels))
	for i := range totals {
		totals[i] = max(in[i], out[i])
	}
	return totals
}

// mergeEdges sums the weights of edges with the same endpoints, keeping the
// order in which each endpoint pair first occurs.
func mergeEdges(edges []flow.Edge) []flow.Edge {
	pos := make(map[[2]int]int)
	var out []flow.Edge
	for _, e := range edges {
		k := [2]int{e.Source, e.Target}
		if i, ok := pos[k]; ok {
			out[i].Value += e.Value
			continue
		}
		pos[k] = len(out)
		out = append(out, e)
	}
	return out
}

func penWidth(value, maxValue int) float64 {
	if maxValue <= 0 {
		return minPenWidth
	}
	return minPenWidth + (maxPenWidth-minPenWidth)*float64(value)/float64(maxValue)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPDF].
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPNG].
//
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
