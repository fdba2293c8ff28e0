// Package projection переводит мировые отрезки тайлов и билборды сущностей
// в прямоугольники экрана по модели подобных треугольников.
package projection

import (
	"github.com/annel0/tilecaster/internal/camera"
	"github.com/annel0/tilecaster/internal/vec"
)

// DefaultRatio — коэффициент проекции по умолчанию
const DefaultRatio = 1.0

// Viewport описывает размеры экрана в пикселях
type Viewport struct {
	Width  int
	Height int
}

// Rect — прямоугольник экрана (Y растет вниз)
type Rect struct {
	X, Y float64
	W, H float64
}

// Empty сообщает, что прямоугольник нулевой площади и не рисуется
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Bottom возвращает нижнюю границу прямоугольника
func (r Rect) Bottom() float64 {
	return r.Y + r.H
}

// Projector хранит постоянный коэффициент проекции
type Projector struct {
	Ratio float64
}

// NewProjector создаёт проектор с коэффициентом ratio (<= 0 — DefaultRatio)
func NewProjector(ratio float64) Projector {
	if ratio <= 0 {
		ratio = DefaultRatio
	}
	return Projector{Ratio: ratio}
}

// scale возвращает пикселей на мировую единицу на расстоянии dist
func (p Projector) scale(dist float64, vp Viewport) float64 {
	return float64(vp.Height) / dist * p.Ratio
}

// Horizon возвращает строку экрана, на которую проецируется высота камеры.
// Положительный наклон (взгляд вверх) опускает горизонт.
func Horizon(cam *camera.Camera, vp Viewport) float64 {
	return float64(vp.Height)/2 + cam.Plane.Z*float64(vp.Height)
}

// ProjectTileSpan проецирует вертикальный отрезок [offset, offset+extent]
// на расстоянии perpDist (перпендикулярно плоскости камеры).
// Прямоугольник шириной в один столбец с X = 0: горизонтальное положение
// определяется столбцом, выпустившим луч.
func (p Projector) ProjectTileSpan(cam *camera.Camera, offset, extent, perpDist float64, vp Viewport) Rect {
	if perpDist <= 0 || extent <= 0 {
		return Rect{}
	}
	s := p.scale(perpDist, vp)
	top := offset + extent - cam.Position.Z
	return Rect{
		Y: Horizon(cam, vp) - top*s,
		W: 1,
		H: extent * s,
	}
}

// ProjectBody проецирует квадратный билборд размера size с основанием в pos.
// Возвращает прямоугольник и глубину вдоль взгляда для отсечения по стенам.
// Сущности за плоскостью камеры (глубина <= 0) дают пустой прямоугольник.
func (p Projector) ProjectBody(cam *camera.Camera, pos vec.Vec3Float, size float64, vp Viewport) (Rect, float64) {
	lateral, depth := ToCameraSpace(cam, pos.XY())
	if depth <= 0 || size <= 0 {
		return Rect{}, depth
	}

	s := p.scale(depth, vp)
	side := size * s
	centerX := float64(vp.Width-1) / 2 * (1 - lateral/depth)
	top := pos.Z + size - cam.Position.Z

	return Rect{
		X: centerX - side/2,
		Y: Horizon(cam, vp) - top*s,
		W: side,
		H: side,
	}, depth
}

// ToCameraSpace раскладывает смещение точки от камеры по базису
// (плоскость камеры, направление). lateral > 0 — левее центра экрана.
func ToCameraSpace(cam *camera.Camera, point vec.Vec2Float) (lateral, depth float64) {
	rel := point.Sub(cam.Position.XY())
	dir, plane := cam.Direction, cam.Plane

	invDet := 1.0 / (plane.X*dir.Y - dir.X*plane.Y)
	lateral = invDet * (dir.Y*rel.X - dir.X*rel.Y)
	depth = invDet * (-plane.Y*rel.X + plane.X*rel.Y)
	return lateral, depth
}
