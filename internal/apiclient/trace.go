package apiclient

import "context"

// Тип для ключа в контексте (избегаем коллизий)
type ctxKey string

const traceIDKey ctxKey = "trace_id"

// TraceHeader — заголовок, в котором Trace-ID уходит на бэкенд
const TraceHeader = "X-Trace-ID"

// ContextWithTraceID кладет Trace-ID входящего запроса в контекст исходящих вызовов
func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// TraceID безопасно достает ID; пустая строка, если его нет
func TraceID(ctx context.Context) string {
	if id, ok := ctx.Value(traceIDKey).(string); ok {
		return id
	}
	return ""
}
