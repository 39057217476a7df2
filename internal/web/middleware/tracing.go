package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/xela07ax/guia-juridico-web/internal/apiclient"
)

// Tracing инициализирует Trace-ID для каждого запроса и передает его в вызовы бэкенда
func Tracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 1. Пытаемся достать ID из заголовка (если пришел от прокси)
		traceID := r.Header.Get(apiclient.TraceHeader)

		// 2. Если его нет — генерируем новый
		if traceID == "" {
			traceID = uuid.New().String()
		}

		// 3. Добавляем в ответ, чтобы клиент тоже знал ID своего запроса
		w.Header().Set(apiclient.TraceHeader, traceID)

		next.ServeHTTP(w, r.WithContext(apiclient.ContextWithTraceID(r.Context(), traceID)))
	})
}
