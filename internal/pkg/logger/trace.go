package logger

import (
	"context"
	log "log/slog"
)

// TraceIDKey 请求链路 ID 在 Context 与日志中的键名
const TraceIDKey = "trace_id"

// ContextHandler 把 ctx 中的 trace_id 附加到每条日志
type ContextHandler struct {
	log.Handler
}

func (s *ContextHandler) Handle(ctx context.Context, r log.Record) error {
	if ctx != nil {
		if traceID, ok := ctx.Value(TraceIDKey).(string); ok && traceID != "" {
			r.AddAttrs(log.String(TraceIDKey, traceID))
		}
	}
	return s.Handler.Handle(ctx, r)
}
