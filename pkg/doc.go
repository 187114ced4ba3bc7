// Package pkg provides the libraries behind Cancerflow, which links cancer
// diagnoses to first therapies in multi-layer flow (Sankey) diagrams.
//
// # Overview
//
// A participants export lists one patient per row. Cancerflow cleans it,
// buckets ages into four ranges, groups patients by the values of the chosen
// layer columns, and draws one band per adjacent layer pair whose width is
// the number of patients taking that path.
//
// # Architecture
//
// The typical data flow:
//
//	participants CSV
//	         ↓
//	    [dataset] (clean columns, first therapy, age ranges)
//	         ↓
//	    [flow] Group (count rows per layer-value combination)
//	         ↓
//	    [flow] Build (labels + weighted edges)
//	         ↓
//	    [render/sankey] Plotly JSON/HTML, [render/nodelink] DOT/SVG/PNG/PDF
//
// [pipeline] runs these stages with validation and caching; the CLI and the
// dashboard [server] both go through it.
//
// # Quick Start
//
//	ds, _ := dataset.Load("participants.csv")
//	layers := flow.LayerSpec{dataset.ColDiagnosis, dataset.ColAge, dataset.ColTherapy}
//	grouped, _ := flow.Group(ds.Table, layers, 1)
//	d, _ := flow.Build(grouped, layers)
//	fig := sankey.ToFigure(d)
//
// # Main Packages
//
// ## Domain
//
// [dataset] - Table loading, cleaning and age bucketing.
//
// [flow] - Grouping and diagram construction for any number of layers.
//
// [summary] - Value frequencies and age statistics.
//
// ## Rendering
//
// [render/sankey] - Plotly Sankey figures and standalone HTML pages.
//
// [render/nodelink] - Graphviz node-link diagrams.
//
// [render] - SVG to PDF/PNG conversion.
//
// ## Infrastructure
//
// [pipeline] - Filter → group → build → render with shared defaults.
//
// [cache] - Result caches: none, memory (LRU), file, Redis and MongoDB.
//
// [config] - Settings from TOML, .env and the environment.
//
// [server] - Dashboard HTTP routes, JSON API and websocket.
//
// [observability] - Pipeline, cache and HTTP hooks with a logging
// implementation.
//
// [errors] - Error codes shared by every layer.
//
// # Testing
//
//	go test ./...                        # All tests
//	go test ./pkg/flow/...               # Specific package
//	go test -run Example ./pkg/...       # Examples only
//	REDIS_URL=redis://localhost:6379 go test ./pkg/cache/...
//
// [dataset]: https://pkg.go.dev/github.com/matzehuels/cancerflow/pkg/dataset
// [flow]: https://pkg.go.dev/github.com/matzehuels/cancerflow/pkg/flow
// [summary]: https://pkg.go.dev/github.com/matzehuels/cancerflow/pkg/summary
// [render]: https://pkg.go.dev/github.com/matzehuels/cancerflow/pkg/render
// [render/sankey]: https://pkg.go.dev/github.com/matzehuels/cancerflow/pkg/render/sankey
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/cancerflow/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/cancerflow/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/cancerflow/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/cancerflow/pkg/config
// [server]: https://pkg.go.dev/github.com/matzehuels/cancerflow/pkg/server
// [observability]: https://pkg.go.dev/github.com/matzehuels/cancerflow/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/cancerflow/pkg/errors
package pkg
