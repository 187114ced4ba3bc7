// Package render provides visualization rendering for flow diagrams.
//
// # Overview
//
// This package contains the rendering side of the pipeline, which turns a
// [flow.Diagram] into visual outputs. It provides:
//
//   - Generic format conversion (SVG to PDF/PNG)
//   - Interactive Sankey figures (in [sankey] subpackage)
//   - Static node-link diagrams (in [nodelink] subpackage)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg). Without it they return
// [ErrNoConverter]; JSON, HTML, DOT and SVG output need no external tools.
//
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// # Sankey Figures
//
// The [sankey] subpackage converts a diagram into a Plotly figure: nodes
// carry padding, thickness and label attributes, and links are
// source-index/target-index/value triples. The figure can be written as JSON
// for the dashboard or wrapped in a standalone HTML page.
//
//	fig := sankey.ToFigure(d)
//	page, err := sankey.RenderHTML(d, "Diagnosis → Therapy")
//
// # Node-Link Diagrams
//
// The [nodelink] subpackage renders the same diagram through Graphviz, one
// column per layer.
//
//	dot := nodelink.ToDOT(d, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
package render
