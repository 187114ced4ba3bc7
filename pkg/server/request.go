package server

import (
	"net/url"
	"strconv"
	"strings"

	cferrors "github.com/matzehuels/cancerflow/pkg/errors"
	"github.com/matzehuels/cancerflow/pkg/flow"
	"github.com/matzehuels/cancerflow/pkg/pipeline"
)

// Dashboard control ranges.
const (
	MinCountMin = 1
	MinCountMax = 5

	WidthMin  = 250
	WidthMax  = 2000
	WidthStep = 125

	HeightMin  = 200
	HeightMax  = 2500
	HeightStep = 100
)

// SankeyRequest describes one diagram. Layers, when set, is used as is;
// otherwise the layers are Diagnosis, Middle, then Therapy.
type SankeyRequest struct {
	Layers       []string `json:"layers,omitempty"`
	Middle       []string `json:"middle,omitempty"`
	MinCount     int      `json:"min_count,omitempty"`
	Width        int      `json:"width,omitempty"`
	Height       int      `json:"height,omitempty"`
	FilterColumn string   `json:"filter_column,omitempty"`
	FilterValue  string   `json:"filter_value,omitempty"`
	Detailed     bool     `json:"detailed,omitempty"`
}

// Options converts the request into pipeline options producing format.
func (req SankeyRequest) Options(format string) pipeline.Options {
	layers := req.Layers
	if len(layers) == 0 {
		layers = pipeline.DefaultLayers(req.Middle...)
	}
	return pipeline.Options{
		Layers:       layers,
		MinCount:     req.MinCount,
		Width:        req.Width,
		Height:       req.Height,
		FilterColumn: req.FilterColumn,
		FilterValue:  req.FilterValue,
		Detailed:     req.Detailed,
		Formats:      []string{format},
	}
}

// parseSankeyQuery reads a request from URL query parameters. Repeated
// and comma-separated values are both accepted for layers and middle.
func parseSankeyQuery(q url.Values) (SankeyRequest, error) {
	req := SankeyRequest{
		Layers:       splitList(q["layers"]),
		Middle:       splitList(q["middle"]),
		FilterColumn: q.Get("filter_column"),
		FilterValue:  q.Get("filter_value"),
	}
	var err error
	if req.MinCount, err = intParam(q, "min_count", cferrors.ErrCodeInvalidThreshold); err != nil {
		return SankeyRequest{}, err
	}
	if req.Width, err = intParam(q, "width", cferrors.ErrCodeInvalidDimension); err != nil {
		return SankeyRequest{}, err
	}
	if req.Height, err = intParam(q, "height", cferrors.ErrCodeInvalidDimension); err != nil {
		return SankeyRequest{}, err
	}
	if v := q.Get("detailed"); v != "" {
		if req.Detailed, err = strconv.ParseBool(v); err != nil {
			return SankeyRequest{}, cferrors.New(cferrors.ErrCodeInvalidInput, "detailed must be a boolean, got %q", v)
		}
	}
	return req, nil
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		out = append(out, flow.ParseLayerSpec(v)...)
	}
	return out
}

// intParam parses an optional integer parameter. Absent means zero.
func intParam(q url.Values, name string, code cferrors.Code) (int, error) {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, cferrors.New(code, "%s must be an integer, got %q", name, v)
	}
	return n, nil
}
