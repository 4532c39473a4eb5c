package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug-level log
// lines. The serve command registers it when running with --verbose.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks that log through logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{Logger: logger}
}

func (h *LogHooks) OnParseStart(_ context.Context, format string) {
	h.Logger.Debug("parse start", "format", format)
}

func (h *LogHooks) OnParseComplete(_ context.Context, format string, d time.Duration, err error) {
	h.Logger.Debug("parse done", "format", format, "took", d, "err", err)
}

func (h *LogHooks) OnValidateStart(context.Context) {}

func (h *LogHooks) OnValidateComplete(_ context.Context, findings int, d time.Duration) {
	h.Logger.Debug("validate done", "findings", findings, "took", d)
}

func (h *LogHooks) OnDeriveComplete(_ context.Context, nodes, edges int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("derive failed", "err", err)
		return
	}
	h.Logger.Debug("derive done", "nodes", nodes, "edges", edges, "took", d)
}

func (h *LogHooks) OnLayoutStart(_ context.Context, engine string, nodeCount int) {
	h.Logger.Debug("layout start", "engine", engine, "nodes", nodeCount)
}

func (h *LogHooks) OnLayoutComplete(_ context.Context, engine string, d time.Duration, err error) {
	h.Logger.Debug("layout done", "engine", engine, "took", d, "err", err)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.Logger.Debug("render start", "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.Logger.Debug("render done", "formats", formats, "took", d, "err", err)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(context.Context, string, string) {}

func (h *LogHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.Logger.Info("request", "method", method, "route", route, "status", status, "took", d)
}

func (h *LogHooks) OnError(_ context.Context, method, route string, err error) {
	h.Logger.Error("request failed", "method", method, "route", route, "err", err)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
