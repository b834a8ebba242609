package mcp

import (
	"context"
	"log/slog"
	"time"

	"github.com/dshills/filescout-mcp/pkg/types"
)

// Notification methods sent while a search runs
const (
	NotifySearchResult = "search-result"
	NotifyProcessInfo  = "process-info"
	NotifySearchTime   = "search-time"
	NotifySearchError  = "search-error"
)

// notificationSink forwards the events of one run to the MCP client that
// started it
type notificationSink struct {
	ctx    context.Context
	notify notifyFunc
	logger *slog.Logger
	id     string
}

// newNotificationSink binds a sink to the session carried by ctx. The run
// outlives the tool call, so only the values of ctx are kept.
func newNotificationSink(ctx context.Context, notify notifyFunc, logger *slog.Logger) *notificationSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &notificationSink{
		ctx:    context.WithoutCancel(ctx),
		notify: notify,
		logger: logger,
	}
}

func (n *notificationSink) send(method string, params map[string]any) {
	if err := n.notify(n.ctx, method, params); err != nil {
		n.logger.Debug("notification dropped", "method", method, "error", err)
	}
}

func (n *notificationSink) Result(item types.FileItem) {
	n.send(NotifySearchResult, map[string]any{
		"file_name": item.Name,
		"file_path": item.Path,
	})
}

func (n *notificationSink) ProcessInfo(info types.ProcessInfo) {
	n.id = info.ID
	n.send(NotifyProcessInfo, map[string]any{
		"id":           info.ID,
		"is_cancelled": info.IsCancelled,
	})
}

func (n *notificationSink) Elapsed(d time.Duration) {
	n.send(NotifySearchTime, map[string]any{
		"id":      n.id,
		"seconds": d.Seconds(),
	})
}

func (n *notificationSink) Failed(err error) {
	n.send(NotifySearchError, map[string]any{
		"id":    n.id,
		"error": err.Error(),
	})
}
