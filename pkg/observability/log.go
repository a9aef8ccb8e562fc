package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug lines to a
// logger. Register it with [RegisterLogHooks].
type LogHooks struct {
	Logger *log.Logger
}

// RegisterLogHooks installs a LogHooks for all hook categories.
func RegisterLogHooks(l *log.Logger) {
	h := &LogHooks{Logger: l}
	SetLoadHooks(h)
	SetViewHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func (h *LogHooks) OnLoad(_ context.Context, nodes, edges int, d time.Duration) {
	h.Logger.Debug("tree loaded", "nodes", nodes, "edges", edges, "duration", d)
}

func (h *LogHooks) OnLoadFailure(_ context.Context, err error) {
	h.Logger.Debug("tree load failed", "err", err)
}

func (h *LogHooks) OnRender(_ context.Context, nodes, edges int) {
	h.Logger.Debug("view rendering", "nodes", nodes, "edges", edges)
}

func (h *LogHooks) OnTeardown(context.Context) {
	h.Logger.Debug("view torn down")
}

func (h *LogHooks) OnSelect(_ context.Context, id string) {
	h.Logger.Debug("node selected", "id", id)
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

func (h *LogHooks) OnRequest(_ context.Context, method, path string) {
	h.Logger.Debug("request", "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.Logger.Debug("response", "method", method, "path", path, "status", status, "duration", d)
}
