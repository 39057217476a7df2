package apiclient

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// Latency: сколько заняли вызовы бэкенда
	RequestDuration *prometheus.HistogramVec

	// Traffic: общее кол-во вызовов по операциям
	TotalRequests *prometheus.CounterVec

	// Errors: классификация отказов
	ErrorTotal *prometheus.CounterVec

	// Saturation: состояние Circuit Breaker (0 - closed, 1 - half-open, 2 - open)
	CircuitBreakerState prometheus.Gauge

	// Кол-во браузерных клиентов с живым кэшем в памяти
	ActiveClients prometheus.Gauge

	// Сколько раз кэш избранного был заменен целиком
	FavoritesReloads prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	// Null Object Pattern - Если рег не передан, используем локальный, который никуда не подключен
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		RequestDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "guiajuridico_api_request_duration_seconds",
			Help:    "Histogram of backend API call latencies.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"operation", "status"}),

		TotalRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "guiajuridico_api_requests_total",
			Help: "Total number of backend API calls.",
		}, []string{"operation"}),

		ErrorTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "guiajuridico_api_errors_total",
			Help: "Total number of failed backend API calls by kind.",
		}, []string{"kind"}), // типы: connection, client, server, breaker_open, rate_limit

		CircuitBreakerState: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "guiajuridico_api_circuit_breaker_state",
			Help: "Current state of the backend circuit breaker (0=closed, 1=half-open, 2=open).",
		}),

		ActiveClients: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "guiajuridico_active_clients",
			Help: "Number of browser clients with in-memory state.",
		}),

		FavoritesReloads: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "guiajuridico_favorites_reloads_total",
			Help: "Total number of per-client favorites collection replacements.",
		}),
	}
}
