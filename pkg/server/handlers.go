package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/matzehuels/cancerflow/pkg/cache"
	"github.com/matzehuels/cancerflow/pkg/dataset"
	cferrors "github.com/matzehuels/cancerflow/pkg/errors"
	"github.com/matzehuels/cancerflow/pkg/pipeline"
	"github.com/matzehuels/cancerflow/pkg/summary"
)

var contentTypes = map[string]string{
	pipeline.FormatJSON: "application/json",
	pipeline.FormatHTML: "text/html; charset=utf-8",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
}

// errorBody is the JSON form of an error.
type errorBody struct {
	Code    cferrors.Code `json:"code"`
	Message string        `json:"message"`
}

func newErrorBody(err error) *errorBody {
	code := cferrors.GetCode(err)
	if code == "" {
		code = cferrors.ErrCodeInternal
	}
	return &errorBody{Code: code, Message: cferrors.UserMessage(err)}
}

// statsView is the client-facing part of [pipeline.Stats].
type statsView struct {
	Rows     int  `json:"rows"`
	Groups   int  `json:"groups"`
	Patients int  `json:"patients"`
	Nodes    int  `json:"nodes"`
	Edges    int  `json:"edges"`
	Cached   bool `json:"cached"`
}

func newStatsView(res *pipeline.Result) *statsView {
	return &statsView{
		Rows:     res.Stats.Rows,
		Groups:   res.Stats.Groups,
		Patients: res.Stats.Patients,
		Nodes:    res.Stats.NodeCount,
		Edges:    res.Stats.EdgeCount,
		Cached:   res.CacheInfo.GroupHit && res.CacheInfo.RenderHit,
	}
}

type sankeyResponse struct {
	Figure json.RawMessage `json:"figure"`
	Stats  *statsView      `json:"stats"`
}

type columnsResponse struct {
	Columns      []string `json:"columns"`
	MiddleLayers []string `json:"middle_layers"`
	RemoveFilter string   `json:"remove_filter"`
}

type valuesResponse struct {
	Column string   `json:"column"`
	Values []string `json:"values"`
}

type rowsResponse struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Page    int        `json:"page"`
	Pages   int        `json:"pages"`
	Size    int        `json:"size"`
	Total   int        `json:"total"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "rows": s.ds.Table.Len()})
}

func (s *Server) handleColumns(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, columnsResponse{
		Columns:      s.ds.Table.Columns,
		MiddleLayers: dataset.MiddleLayers(s.ds.Table),
		RemoveFilter: pipeline.RemoveFilter,
	})
}

func (s *Server) handleValues(w http.ResponseWriter, r *http.Request) {
	col := r.URL.Query().Get("column")
	if col == "" || col == pipeline.RemoveFilter {
		writeJSON(w, http.StatusOK, valuesResponse{Column: col, Values: []string{}})
		return
	}
	values, err := s.ds.Table.UniqueValues(col)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if values == nil {
		values = []string{}
	}
	writeJSON(w, http.StatusOK, valuesResponse{Column: col, Values: values})
}

func (s *Server) handleRows(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := intParam(q, "page", cferrors.ErrCodeInvalidInput)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	size, err := intParam(q, "size", cferrors.ErrCodeInvalidInput)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = dataset.DefaultPageSize
	}
	size = min(size, dataset.MaxPageSize)
	rows, pages := s.ds.Table.Page(page, size)
	writeJSON(w, http.StatusOK, rowsResponse{
		Columns: s.ds.Table.Columns,
		Rows:    rows,
		Page:    page,
		Pages:   pages,
		Size:    size,
		Total:   s.ds.Table.Len(),
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := s.runner.Keyer.SummaryKey(s.ds.Checksum())
	if data, hit, err := s.runner.Cache.Get(ctx, key); err == nil && hit {
		writeRaw(w, http.StatusOK, contentTypes[pipeline.FormatJSON], data)
		return
	}

	sum, err := summary.Summarize(s.ds)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := json.Marshal(sum)
	if err != nil {
		s.writeError(w, r, cferrors.Wrap(cferrors.ErrCodeInternal, err, "encode summary"))
		return
	}
	if err := s.runner.Cache.Set(ctx, key, data, cache.TTLSummary); err != nil {
		s.logger.Warn("cache write failed", "err", err)
	}
	writeRaw(w, http.StatusOK, contentTypes[pipeline.FormatJSON], data)
}

func (s *Server) handleSankey(w http.ResponseWriter, r *http.Request) {
	req, err := parseSankeyQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatJSON
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := req.Options(format)
	opts.Title = s.title
	res, err := s.runner.Execute(r.Context(), s.ds, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	data := res.Artifacts[format]
	if format != pipeline.FormatJSON {
		writeRaw(w, http.StatusOK, contentTypes[format], data)
		return
	}
	writeJSON(w, http.StatusOK, sankeyResponse{Figure: data, Stats: newStatsView(res)})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	} else {
		s.logger.Debug("rejected request", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, newErrorBody(err))
}

func statusFor(err error) int {
	switch {
	case cferrors.IsValidation(err):
		return http.StatusBadRequest
	case cferrors.Is(err, cferrors.ErrCodeFileNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeRaw(w, status, contentTypes[pipeline.FormatJSON], data)
}

func writeRaw(w http.ResponseWriter, status int, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
