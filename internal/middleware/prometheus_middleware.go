package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// unmatchedRoute подставляется вместо пути для запросов мимо маршрутов,
// чтобы произвольные URL не раздували число серий
const unmatchedRoute = "unmatched"

// PrometheusMiddleware считает запросы отладочного REST API.
//
//	<ns>_http_requests_total{route,code}
//	<ns>_http_request_duration_seconds{route}
//	<ns>_http_response_bytes_total{route}
//	<ns>_http_requests_inflight
type PrometheusMiddleware struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	bytes    *prometheus.CounterVec
	inflight prometheus.Gauge
	gatherer prometheus.Gatherer
}

// NewPrometheusMiddleware регистрирует метрики в reg; gatherer отдаётся на /metrics
func NewPrometheusMiddleware(namespace string, reg prometheus.Registerer, gatherer prometheus.Gatherer) *PrometheusMiddleware {
	pm := &PrometheusMiddleware{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Запросы к REST API по маршруту и коду ответа.",
		}, []string{"route", "code"}),
		// кадр 320x200 собирается за миллисекунды, длинный хвост не нужен
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Время обработки запроса.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"route"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "response_bytes_total",
			Help:      "Объём тел ответов до сжатия.",
		}, []string{"route"}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_inflight",
			Help:      "Запросы в обработке.",
		}),
		gatherer: gatherer,
	}
	reg.MustRegister(pm.requests, pm.duration, pm.bytes, pm.inflight)
	return pm
}

// Handler возвращает middleware для router.Use()
func (pm *PrometheusMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		pm.inflight.Inc()
		started := time.Now()

		c.Next()

		pm.inflight.Dec()
		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		pm.requests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		pm.duration.WithLabelValues(route).Observe(time.Since(started).Seconds())
		if size := c.Writer.Size(); size > 0 {
			pm.bytes.WithLabelValues(route).Add(float64(size))
		}
	}
}

// RegisterMetricsEndpoint вешает GET /metrics на r
func (pm *PrometheusMiddleware) RegisterMetricsEndpoint(r gin.IRoutes) {
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(pm.gatherer, promhttp.HandlerOpts{})))
}
