package logger

import (
	"context"
	log "log/slog"
)

// TeeHandler 把一条日志同时交给本地与远端 Handler，远端失败不拖累本地
type TeeHandler struct {
	local  log.Handler
	remote log.Handler
}

func NewTeeHandler(local, remote log.Handler) *TeeHandler {
	return &TeeHandler{local: local, remote: remote}
}

func (s *TeeHandler) Enabled(ctx context.Context, level log.Level) bool {
	return s.local.Enabled(ctx, level) || s.remote.Enabled(ctx, level)
}

func (s *TeeHandler) Handle(ctx context.Context, r log.Record) error {
	err := s.local.Handle(ctx, r)
	// 远端投递尽力而为，错误不向上传播
	_ = s.remote.Handle(ctx, r)
	return err
}

func (s *TeeHandler) WithAttrs(attrs []log.Attr) log.Handler {
	return &TeeHandler{local: s.local.WithAttrs(attrs), remote: s.remote.WithAttrs(attrs)}
}

func (s *TeeHandler) WithGroup(name string) log.Handler {
	return &TeeHandler{local: s.local.WithGroup(name), remote: s.remote.WithGroup(name)}
}

// RemoteFilterHandler 远端只收带 trace_id 的请求内日志，启动与后台日志留在本地
type RemoteFilterHandler struct {
	next log.Handler
}

func NewRemoteFilterHandler(next log.Handler) *RemoteFilterHandler {
	return &RemoteFilterHandler{next: next}
}

func (s *RemoteFilterHandler) Enabled(ctx context.Context, level log.Level) bool {
	return s.next.Enabled(ctx, level)
}

func (s *RemoteFilterHandler) Handle(ctx context.Context, r log.Record) error {
	hasTraceID := false
	r.Attrs(func(a log.Attr) bool {
		if a.Key == TraceIDKey && a.Value.String() != "" {
			hasTraceID = true
			return false
		}
		return true
	})
	if !hasTraceID {
		return nil
	}
	return s.next.Handle(ctx, r)
}

func (s *RemoteFilterHandler) WithAttrs(attrs []log.Attr) log.Handler {
	return &RemoteFilterHandler{next: s.next.WithAttrs(attrs)}
}

func (s *RemoteFilterHandler) WithGroup(name string) log.Handler {
	return &RemoteFilterHandler{next: s.next.WithGroup(name)}
}
