package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/cancerflow/pkg/flow"
	"github.com/matzehuels/cancerflow/pkg/render/nodelink"
	"github.com/matzehuels/cancerflow/pkg/render/sankey"
)

// PNGScale is the resolution multiplier for PNG output.
const PNGScale = 2.0

// Render generates output artifacts in the requested formats.
// Graphviz formats share one DOT document.
func Render(ctx context.Context, d *flow.Diagram, opts Options) (map[string][]byte, error) {
	var dot string
	if opts.NeedsDOT() {
		dot = nodelink.ToDOT(d, nodelink.Options{Detailed: opts.Detailed})
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatJSON:
			data, err = sankey.MarshalFigure(sankey.ToFigure(d))
		case FormatHTML:
			data, err = sankey.RenderHTML(d, opts.Title)
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			data, err = nodelink.RenderSVG(ctx, dot)
		case FormatPNG:
			data, err = nodelink.RenderPNG(ctx, dot, PNGScale)
		case FormatPDF:
			data, err = nodelink.RenderPDF(ctx, dot)
		default:
			return nil, ValidateFormat(format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
