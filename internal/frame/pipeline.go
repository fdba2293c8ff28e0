// Package frame связывает ядро рендера в один шаг кадра:
// поворот камеры, размещение тел, выпуск лучей и проекция тел.
package frame

import (
	"context"
	"time"

	"github.com/annel0/tilecaster/internal/camera"
	"github.com/annel0/tilecaster/internal/metrics"
	"github.com/annel0/tilecaster/internal/projection"
	"github.com/annel0/tilecaster/internal/raycast"
	"github.com/annel0/tilecaster/internal/world"
	"github.com/annel0/tilecaster/internal/world/entity"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/annel0/tilecaster/internal/frame"

// Input — ввод пользователя за кадр
type Input struct {
	YawDelta   float64
	PitchDelta float64
}

// Sprite — спроецированное тело
type Sprite struct {
	ID     uint64
	Type   entity.EntityType
	Sprite uint16
	Rect   projection.Rect
	Depth  float64 // Глубина вдоль взгляда, для отсечения по стенам
}

// Frame — результат одного обновления.
// Columns принадлежит Pipeline и действителен до следующего Update.
type Frame struct {
	Number   uint64
	Viewport projection.Viewport
	Columns  []raycast.HitList
	Sprites  []Sprite
	Stats    raycast.Stats
	Culled   int
	Unplaced int // Тела, не попавшие в чанк (вне мира или чанк заполнен)
	Duration time.Duration
}

// Pipeline выполняет кадры над одним миром. Не безопасен для конкурентного использования.
type Pipeline struct {
	world     *world.World
	viewport  projection.Viewport
	caster    *raycast.Caster
	projector projection.Projector
	metrics   *metrics.RenderMetrics
	tracer    trace.Tracer
	frames    uint64
}

// Option настраивает Pipeline
type Option func(*Pipeline)

// WithMaxSteps задает предел шагов DDA
func WithMaxSteps(steps int) Option {
	return func(p *Pipeline) { p.caster = raycast.NewCaster(steps) }
}

// WithProjector задает проектор
func WithProjector(proj projection.Projector) Option {
	return func(p *Pipeline) { p.projector = proj }
}

// WithMetrics включает запись Prometheus-метрик
func WithMetrics(m *metrics.RenderMetrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithTracer задает трассировщик вместо глобального
func WithTracer(t trace.Tracer) Option {
	return func(p *Pipeline) { p.tracer = t }
}

// NewPipeline создаёт конвейер для мира w и экрана vp
func NewPipeline(w *world.World, vp projection.Viewport, opts ...Option) *Pipeline {
	p := &Pipeline{
		world:     w,
		viewport:  vp,
		caster:    raycast.NewCaster(raycast.DefaultMaxSteps),
		projector: projection.NewProjector(projection.DefaultRatio),
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Viewport возвращает размер экрана
func (p *Pipeline) Viewport() projection.Viewport {
	return p.viewport
}

// Projector возвращает проектор конвейера
func (p *Pipeline) Projector() projection.Projector {
	return p.projector
}

// Update применяет ввод к камере и строит кадр.
// Неактивные тела пропускаются; порядок Sprites совпадает с порядком bodies.
func (p *Pipeline) Update(ctx context.Context, cam *camera.Camera, in Input, bodies []entity.Entity) *Frame {
	_, span := p.tracer.Start(ctx, "frame.update")
	defer span.End()

	start := time.Now()
	p.frames++

	cam.Rotate(in.YawDelta, in.PitchDelta)

	f := &Frame{Number: p.frames, Viewport: p.viewport}

	p.world.ClearEntities()
	for i := range bodies {
		b := &bodies[i]
		if !b.Active {
			continue
		}
		if !p.world.PlaceEntity(b.ID, b.Position.XY()) {
			f.Unplaced++
		}
	}

	f.Columns = p.caster.Cast(cam, p.world, p.viewport.Width)
	f.Stats = p.caster.Stats()

	f.Sprites = make([]Sprite, 0, len(bodies))
	for i := range bodies {
		b := &bodies[i]
		if !b.Active {
			continue
		}
		rect, depth := p.projector.ProjectBody(cam, b.Position, b.Size, p.viewport)
		if rect.Empty() {
			f.Culled++
			continue
		}
		f.Sprites = append(f.Sprites, Sprite{
			ID:     b.ID,
			Type:   b.Type,
			Sprite: b.Sprite,
			Rect:   rect,
			Depth:  depth,
		})
	}

	f.Duration = time.Since(start)

	span.SetAttributes(
		attribute.Int64("frame.number", int64(f.Number)),
		attribute.Int("frame.rays", f.Stats.Rays),
		attribute.Int("frame.cells_visited", f.Stats.CellsVisited),
		attribute.Int("frame.hits", f.Stats.Hits),
		attribute.Int("frame.sprites", len(f.Sprites)),
	)

	if p.metrics != nil {
		columnHits := make([]int, len(f.Columns))
		for i := range f.Columns {
			columnHits[i] = f.Columns[i].Count
		}
		p.metrics.Observe(metrics.FrameSample{
			Duration:     f.Duration,
			Rays:         f.Stats.Rays,
			CellsVisited: f.Stats.CellsVisited,
			TileHits:     f.Stats.Hits,
			FloorHits:    f.Stats.FloorHits,
			BodiesCulled: f.Culled,
			ColumnHits:   columnHits,
		})
	}

	return f
}
