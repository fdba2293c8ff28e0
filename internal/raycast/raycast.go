// Package raycast строит для каждого столбца экрана луч камеры,
// ведет его по сетке мира и собирает упорядоченный список попаданий.
package raycast

import (
	"fmt"

	"github.com/annel0/tilecaster/internal/camera"
	"github.com/annel0/tilecaster/internal/dda"
	"github.com/annel0/tilecaster/internal/vec"
	"github.com/annel0/tilecaster/internal/world"
)

// DefaultMaxSteps — предел шагов DDA на один луч
const DefaultMaxSteps = 64

// Stats — счетчики последнего прохода
type Stats struct {
	Rays         int
	CellsVisited int
	Hits         int
	FloorHits    int
}

// Caster выпускает лучи и переиспользует выходной буфер между кадрами.
// Не безопасен для конкурентного использования.
type Caster struct {
	MaxSteps int

	columns []HitList
	stats   Stats
}

// NewCaster создаёт Caster с пределом шагов maxSteps (<= 0 — DefaultMaxSteps)
func NewCaster(maxSteps int) *Caster {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	return &Caster{MaxSteps: maxSteps}
}

// CastRays — разовый вызов с собственным буфером
func CastRays(cam *camera.Camera, w *world.World, rayCount int) []HitList {
	return NewCaster(DefaultMaxSteps).Cast(cam, w, rayCount)
}

// Stats возвращает счетчики последнего вызова Cast
func (c *Caster) Stats() Stats {
	return c.stats
}

// Cast выпускает rayCount лучей и возвращает списки попаданий по столбцам.
// Возвращаемый срез принадлежит Caster и полностью перезаписывается
// следующим вызовом.
func (c *Caster) Cast(cam *camera.Camera, w *world.World, rayCount int) []HitList {
	if cam == nil || w == nil {
		panic(fmt.Errorf("raycast: nil camera or world"))
	}
	if rayCount <= 0 {
		panic(fmt.Errorf("raycast: ray count must be positive, got %d", rayCount))
	}

	if cap(c.columns) < rayCount {
		c.columns = make([]HitList, rayCount)
	}
	c.columns = c.columns[:rayCount]
	c.stats = Stats{Rays: rayCount}

	start := cam.Position.XY()

	// Тайл под камерой проверяется один раз на кадр
	floor := w.TileAt(start)
	if floor != nil && cam.Position.Z <= floor.Top() {
		floor = nil
	}

	for x := 0; x < rayCount; x++ {
		c.castColumn(&c.columns[x], w, dda.New(start, RayDirection(cam, x, rayCount)), floor)
	}
	return c.columns
}

// ColumnOffset переводит столбец в нормированное смещение: столбец 0 — +1,
// последний — -1. Левая сторона экрана соответствует +Plane.
func ColumnOffset(x, rayCount int) float64 {
	if rayCount <= 1 {
		return 0
	}
	return 1 - 2*float64(x)/float64(rayCount-1)
}

func (c *Caster) castColumn(list *HitList, w *world.World, tr dda.Traversal, floor *world.Tile) {
	list.Reset()

	if floor != nil {
		_, backDist, _ := tr.Peek()
		list.Push(Hit{
			Tile:  floor,
			Cell:  tr.Cell(),
			Front: HitPoint{Point: tr.Start()},
			Back:  HitPoint{Point: tr.PointAt(backDist), Dist: backDist},
			Floor: true,
		})
		c.stats.FloorHits++
	}

	for step := 0; step < c.MaxSteps && !list.Full(); step++ {
		frontDist := tr.Step()
		c.stats.CellsVisited++

		tile := w.TileAtCell(tr.Cell())
		if tile == nil {
			continue
		}

		// Луч через угол сетки только касается диагональной ячейки:
		// отрезок нулевой длины не рисуется и нарушил бы строгий порядок
		_, backDist, _ := tr.Peek()
		if backDist <= frontDist {
			continue
		}
		list.Push(Hit{
			Tile:  tile,
			Cell:  tr.Cell(),
			Front: HitPoint{Point: tr.PointAt(frontDist), Dist: frontDist},
			Back:  HitPoint{Point: tr.PointAt(backDist), Dist: backDist},
			Face:  tr.Face(),
		})
		c.stats.Hits++
	}
}

// RayDirection возвращает направление луча столбца x: смесь Direction и Plane
func RayDirection(cam *camera.Camera, x, rayCount int) vec.Vec2Float {
	return cam.Direction.XY().Add(cam.Plane.XY().Mul(ColumnOffset(x, rayCount)))
}
