// Package nodelink renders flow diagrams as layered node-link graphs.
//
// # Overview
//
// This package produces a static Graphviz rendering of a [flow.Diagram],
// where labels appear as boxes arranged in one column per layer and edges
// are arrows whose pen width grows with the patient count. It complements
// the interactive Sankey output for reports and print.
//
// # Usage
//
// Convert a diagram to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(d, nodelink.Options{Detailed: false})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: When true, node labels include the layer name and patient total
//
// # DOT Format
//
// The generated DOT uses left-to-right layout (rankdir=LR) with one rank per
// layer, matching the Sankey diagram's orientation. A label shared by several
// layers is drawn once, in the first layer it occurs in. Parallel edges
// between the same two labels are merged and their weights summed.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
