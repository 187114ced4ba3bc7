package observability

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level. It implements
// [PipelineHooks], [CacheHooks] and [HTTPHooks].
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log through logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{logger: logger}
}

// Register installs h for all hook categories.
func (h *LogHooks) Register() {
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func (h *LogHooks) OnGroupStart(_ context.Context, layers []string, rows int) {
	h.logger.Debug("group start", "layers", strings.Join(layers, ","), "rows", rows)
}

func (h *LogHooks) OnGroupComplete(_ context.Context, layers []string, groups int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("group failed", "layers", strings.Join(layers, ","), "err", err)
		return
	}
	h.logger.Debug("group done", "groups", groups, "took", d)
}

func (h *LogHooks) OnBuildComplete(_ context.Context, nodes, edges int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("build failed", "err", err)
		return
	}
	h.logger.Debug("build done", "nodes", nodes, "edges", edges, "took", d)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render start", "formats", strings.Join(formats, ","))
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("render failed", "formats", strings.Join(formats, ","), "err", err)
		return
	}
	h.logger.Debug("render done", "formats", strings.Join(formats, ","), "took", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, path string) {
	h.logger.Debug("request", "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "path", path, "status", status, "took", d)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
