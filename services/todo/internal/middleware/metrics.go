package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	sharedmw "github.com/sun1tar/todo-backend/shared/middleware"
)

// Metrics метрики HTTP запросов сервиса
type Metrics struct {
	// Счётчик запросов по методу, маршруту и статусу
	requestsTotal *prometheus.CounterVec

	// Гистограмма длительности запросов
	requestDuration *prometheus.HistogramVec

	// Текущее количество активных запросов
	inFlight prometheus.Gauge
}

// NewMetrics регистрирует метрики в reg (в тестах свой prometheus.NewRegistry())
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todo_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "todo_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.3, 1, 3},
			},
			[]string{"method", "route"},
		),
		inFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "todo_http_in_flight_requests",
				Help: "Current number of in-flight HTTP requests",
			},
		),
	}
}

// Middleware собирает метрики для каждого HTTP запроса
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.inFlight.Inc()
		defer m.inFlight.Dec()

		route := routeLabel(r)
		start := time.Now()
		wrapped := sharedmw.NewStatusRecorder(w)

		next.ServeHTTP(wrapped, r)

		status := strconv.Itoa(wrapped.StatusCode)
		m.requestsTotal.WithLabelValues(r.Method, route, status).Inc()
		m.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// routeLabel шаблон маршрута mux ("/tasks/{id}"), иначе нормализованный путь
func routeLabel(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return normalizeRoute(r.URL.Path)
}

// normalizeRoute заменяет сегменты после /tasks/ и /performers/ на {id},
// чтобы у метрик не было неограниченного числа меток
func normalizeRoute(path string) string {
	parts := strings.Split(path, "/")
	for i := 1; i < len(parts)-1; i++ {
		if (parts[i] == "tasks" || parts[i] == "performers") && parts[i+1] != "" {
			parts[i+1] = "{id}"
		}
	}
	return strings.Join(parts, "/")
}

// Handler отдаёт метрики из gatherer для /metrics
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
