// Package dda реализует пошаговый обход целочисленной сетки вдоль луча
// (digital differential analyzer).
//
// Traversal — значение: его можно копировать, чтобы заглянуть на шаг вперед,
// не меняя исходное состояние.
package dda

import (
	"fmt"
	"math"

	"github.com/annel0/tilecaster/internal/vec"
)

// Face — грань вошедшей ячейки, через которую прошел луч
type Face uint8

const (
	FaceNone  Face = iota // Шагов еще не было
	FaceWest              // Шаг по +X: вход через западную грань (x = min)
	FaceEast              // Шаг по -X: вход через восточную грань
	FaceSouth             // Шаг по +Y: вход через южную грань (y = min)
	FaceNorth             // Шаг по -Y: вход через северную грань
)

// String возвращает строковое представление грани
func (f Face) String() string {
	switch f {
	case FaceNone:
		return "none"
	case FaceWest:
		return "west"
	case FaceEast:
		return "east"
	case FaceSouth:
		return "south"
	case FaceNorth:
		return "north"
	default:
		return "unknown"
	}
}

// Vertical сообщает, что грань перпендикулярна оси X
func (f Face) Vertical() bool {
	return f == FaceWest || f == FaceEast
}

// Traversal — состояние обхода сетки для одного луча
type Traversal struct {
	start vec.Vec2Float // Начальная точка
	dir   vec.Vec2Float // Исходное (ненормализованное) направление
	cell  vec.Vec2      // Текущая ячейка
	step  vec.Vec2      // Знак шага по осям: -1, 0 или +1
	delta vec.Vec2Float // Параметр луча на пересечение одной ячейки по оси
	side  vec.Vec2Float // Параметр луча до следующей границы по оси
	face  Face          // Последняя пересеченная грань
}

// New инициализирует обход из точки start по направлению dir.
// Нулевая компонента направления отключает шаги по этой оси.
// Нулевое направление целиком — нарушение предусловия: panic.
func New(start, dir vec.Vec2Float) Traversal {
	if dir.IsZero() {
		panic(fmt.Errorf("dda: zero ray direction from (%g,%g)", start.X, start.Y))
	}

	t := Traversal{
		start: start,
		dir:   dir,
		cell:  start.Floor(),
	}
	t.step.X, t.delta.X, t.side.X = axisInit(start.X, dir.X, t.cell.X)
	t.step.Y, t.delta.Y, t.side.Y = axisInit(start.Y, dir.Y, t.cell.Y)
	return t
}

// axisInit считает шаг, дельту и расстояние до первой границы по одной оси
func axisInit(pos, dir float64, cell int) (step int, delta, side float64) {
	switch {
	case dir > 0:
		delta = 1 / dir
		return 1, delta, (float64(cell) + 1 - pos) * delta
	case dir < 0:
		delta = -1 / dir
		return -1, delta, (pos - float64(cell)) * delta
	default:
		return 0, math.Inf(1), math.Inf(1)
	}
}

// Step продвигает обход ровно на одну ячейку и возвращает параметр луча
// (по исходному направлению), на котором пересечена входная грань новой ячейки.
// При равенстве расстояний шаг делается по оси с меньшим знаком шага.
func (t *Traversal) Step() float64 {
	if t.side.X < t.side.Y || (t.side.X == t.side.Y && t.step.X < t.step.Y) {
		t.side.X += t.delta.X
		t.cell.X += t.step.X
		if t.step.X > 0 {
			t.face = FaceWest
		} else {
			t.face = FaceEast
		}
		return (float64(t.cell.X) - t.start.X + float64(1-t.step.X)/2) / t.dir.X
	}

	t.side.Y += t.delta.Y
	t.cell.Y += t.step.Y
	if t.step.Y > 0 {
		t.face = FaceSouth
	} else {
		t.face = FaceNorth
	}
	return (float64(t.cell.Y) - t.start.Y + float64(1-t.step.Y)/2) / t.dir.Y
}

// Peek возвращает результат следующего шага, не меняя состояние обхода
func (t Traversal) Peek() (cell vec.Vec2, dist float64, face Face) {
	dist = t.Step()
	return t.cell, dist, t.face
}

// Cell возвращает текущую ячейку
func (t *Traversal) Cell() vec.Vec2 { return t.cell }

// Face возвращает последнюю пересеченную грань
func (t *Traversal) Face() Face { return t.face }

// Start возвращает начальную точку луча
func (t *Traversal) Start() vec.Vec2Float { return t.start }

// Direction возвращает исходное направление луча
func (t *Traversal) Direction() vec.Vec2Float { return t.dir }

// PointAt возвращает точку луча для параметра dist
func (t *Traversal) PointAt(dist float64) vec.Vec2Float {
	return t.start.Add(t.dir.Mul(dist))
}
