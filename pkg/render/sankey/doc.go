// Package sankey converts flow diagrams into Plotly Sankey figures.
//
// A [Figure] is the JSON document plotly.js expects: one trace of type
// "sankey" whose nodes carry padding, thickness and labels and whose links
// are parallel source, target and value arrays, plus a fixed-size layout.
//
//	fig := sankey.ToFigure(d)
//	data, err := sankey.MarshalFigure(fig)
//
// [RenderHTML] wraps a figure in a standalone page that loads plotly.js
// from its CDN.
package sankey
