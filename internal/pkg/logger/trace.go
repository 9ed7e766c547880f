package logger

import (
	"context"
	log "log/slog"

	"github.com/google/uuid"
)

// TraceIDKey Context 与 gin.Context 中 trace_id 的 Key
const TraceIDKey = "trace_id"

type traceKey string

// ContextHandler 从 ctx 中提取 trace_id 附加到日志记录
type ContextHandler struct {
	log.Handler
}

func (h *ContextHandler) Handle(ctx context.Context, r log.Record) error {
	if traceID := TraceID(ctx); traceID != "" {
		r.AddAttrs(log.String(TraceIDKey, traceID))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []log.Attr) log.Handler {
	return &ContextHandler{h.Handler.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) log.Handler {
	return &ContextHandler{h.Handler.WithGroup(name)}
}

// WithTraceID 写入 trace_id，prefix 用于区分来源（job- / cli-）
func WithTraceID(ctx context.Context, prefix string) context.Context {
	return context.WithValue(ctx, traceKey(TraceIDKey), prefix+uuid.New().String())
}

// ContextWithTrace 使用已有的 trace_id
func ContextWithTrace(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceKey(TraceIDKey), traceID)
}

func TraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(traceKey(TraceIDKey)).(string); ok {
		return id
	}
	// gin.Context 的 Keys
	if id, ok := ctx.Value(TraceIDKey).(string); ok {
		return id
	}
	return ""
}
