package server

import (
	"bytes"
	_ "embed"
	"html/template"
	"net/http"
	"slices"

	"github.com/matzehuels/cancerflow/pkg/dataset"
	"github.com/matzehuels/cancerflow/pkg/pipeline"
	"github.com/matzehuels/cancerflow/pkg/render/sankey"
)

// HeaderColor is the dashboard banner color.
const HeaderColor = "#a93226"

//go:embed dashboard.html
var dashboardHTML string

var dashboardTemplate = template.Must(template.New("dashboard").Parse(dashboardHTML))

// pageConfig is handed to the page script.
type pageConfig struct {
	Columns      []string `json:"columns"`
	MiddleLayers []string `json:"middleLayers"`
	Checked      []string `json:"checked"`
	RemoveFilter string   `json:"removeFilter"`
	PageSize     int      `json:"pageSize"`
	MinCount     [2]int   `json:"minCount"`
	Width        [3]int   `json:"width"`  // min, max, step
	Height       [3]int   `json:"height"` // min, max, step
	DefaultSize  [2]int   `json:"defaultSize"`
}

type pageData struct {
	Title       string
	HeaderColor string
	PlotlyURL   string
	Config      pageConfig
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	middle := dataset.MiddleLayers(s.ds.Table)
	data := pageData{
		Title:       s.title,
		HeaderColor: HeaderColor,
		PlotlyURL:   sankey.PlotlyCDN,
		Config: pageConfig{
			Columns:      s.ds.Table.Columns,
			MiddleLayers: middle,
			Checked:      checkedLayers(middle),
			RemoveFilter: pipeline.RemoveFilter,
			PageSize:     dataset.DefaultPageSize,
			MinCount:     [2]int{MinCountMin, MinCountMax},
			Width:        [3]int{WidthMin, WidthMax, WidthStep},
			Height:       [3]int{HeightMin, HeightMax, HeightStep},
			DefaultSize:  [2]int{pipeline.DefaultWidth, pipeline.DefaultHeight},
		},
	}
	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, data); err != nil {
		s.logger.Error("render dashboard", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeRaw(w, http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// checkedLayers returns the default middle layers that the table offers.
func checkedLayers(middle []string) []string {
	out := []string{}
	for _, l := range pipeline.DefaultMiddleLayers {
		if slices.Contains(middle, l) {
			out = append(out, l)
		}
	}
	return out
}
