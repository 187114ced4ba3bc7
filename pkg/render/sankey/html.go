package sankey

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/matzehuels/cancerflow/pkg/flow"
)

// PlotlyCDN is the plotly.js bundle loaded by rendered pages.
const PlotlyCDN = "https://cdn.plot.ly/plotly-2.35.2.min.js"

var pageTemplate = template.Must(template.New("sankey").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="{{.PlotlyURL}}"></script>
</head>
<body>
<h1 style="font-family: sans-serif">{{.Title}}</h1>
<div id="sankey"></div>
<script>
const figure = {{.Figure}};
Plotly.newPlot("sankey", figure.data, figure.layout);
</script>
</body>
</html>
`))

// RenderHTML renders d as a standalone HTML page with the given title.
func RenderHTML(d *flow.Diagram, title string) ([]byte, error) {
	fig := ToFigure(d)
	fig.Layout.Title = title
	data, err := MarshalFigure(fig)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	err = pageTemplate.Execute(&buf, struct {
		Title     string
		PlotlyURL string
		Figure    template.JS
	}{
		Title:     title,
		PlotlyURL: PlotlyCDN,
		Figure:    template.JS(data),
	})
	if err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return buf.Bytes(), nil
}
