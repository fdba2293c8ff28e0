package eventbus

import (
	"github.com/prometheus/client_golang/prometheus"
)

// RegisterMetrics публикует Stats шины как Prometheus-метрики.
// Значения читаются из bus.Stats() в момент сбора.
func RegisterMetrics(reg prometheus.Registerer, namespace string, bus EventBus) {
	stat := func(pick func(Stats) float64) func() float64 {
		return func() float64 { return pick(bus.Stats()) }
	}

	reg.MustRegister(
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "eventbus",
			Name:      "messages_published_total",
			Help:      "Общее число опубликованных сообщений.",
		}, stat(func(s Stats) float64 { return float64(s.Published) })),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "eventbus",
			Name:      "messages_consumed_total",
			Help:      "Общее число доставленных сообщений подписчикам.",
		}, stat(func(s Stats) float64 { return float64(s.Consumed) })),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "eventbus",
			Name:      "messages_dropped_total",
			Help:      "Сообщений, отброшенных из-за ошибок или ограничения back-pressure.",
		}, stat(func(s Stats) float64 { return float64(s.Dropped) })),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "eventbus",
			Name:      "messages_inflight",
			Help:      "Количество сообщений, находящихся в очереди (не доставленных).",
		}, stat(func(s Stats) float64 { return float64(s.InFlight) })),
	)
}
