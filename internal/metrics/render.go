// Package metrics содержит Prometheus-метрики рендера.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace — общий префикс метрик сервиса
const Namespace = "tilecaster"

// RenderMetrics собирает счетчики одного кадра: лучи, клетки, попадания и тела.
//
// Метрики:
// * frames_total — counter
// * rays_total — counter
// * cells_visited_total — counter
// * hits_total{kind} — counter (tile/floor)
// * bodies_culled_total — counter (тела позади камеры)
// * frame_duration_seconds — histogram
// * column_hits — histogram (число попаданий в столбце)
type RenderMetrics struct {
	frames        prometheus.Counter
	rays          prometheus.Counter
	cellsVisited  prometheus.Counter
	hits          *prometheus.CounterVec
	bodiesCulled  prometheus.Counter
	frameDuration prometheus.Histogram
	columnHits    prometheus.Histogram
}

// FrameSample — сводка одного кадра для записи в метрики
type FrameSample struct {
	Duration     time.Duration
	Rays         int
	CellsVisited int
	TileHits     int
	FloorHits    int
	BodiesCulled int
	ColumnHits   []int
}

// NewRenderMetrics создаёт метрики и регистрирует их в reg.
// Повторная регистрация в том же реестре приводит к panic.
func NewRenderMetrics(reg prometheus.Registerer) *RenderMetrics {
	m := &RenderMetrics{
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "frames_total",
			Help:      "Количество обработанных кадров.",
		}),
		rays: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "rays_total",
			Help:      "Количество выпущенных лучей.",
		}),
		cellsVisited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "cells_visited_total",
			Help:      "Количество клеток, пройденных DDA.",
		}),
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "hits_total",
			Help:      "Количество попаданий лучей по типу.",
		}, []string{"kind"}),
		bodiesCulled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "bodies_culled_total",
			Help:      "Тела, отброшенные проектором (позади камеры).",
		}),
		frameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "frame_duration_seconds",
			Help:      "Длительность обновления кадра.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),
		columnHits: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "column_hits",
			Help:      "Число попаданий в одном столбце экрана.",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 32, 64},
		}),
	}

	reg.MustRegister(m.frames, m.rays, m.cellsVisited, m.hits, m.bodiesCulled, m.frameDuration, m.columnHits)
	return m
}

// Observe записывает сводку кадра
func (m *RenderMetrics) Observe(s FrameSample) {
	m.frames.Inc()
	m.rays.Add(float64(s.Rays))
	m.cellsVisited.Add(float64(s.CellsVisited))
	m.hits.WithLabelValues("tile").Add(float64(s.TileHits))
	m.hits.WithLabelValues("floor").Add(float64(s.FloorHits))
	m.bodiesCulled.Add(float64(s.BodiesCulled))
	m.frameDuration.Observe(s.Duration.Seconds())
	for _, n := range s.ColumnHits {
		m.columnHits.Observe(float64(n))
	}
}
