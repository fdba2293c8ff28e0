package camera

import (
	"math"

	"github.com/annel0/tilecaster/internal/vec"
)

// Пределы наклона камеры (компонента Z плоскости камеры)
const (
	MinPitch = -1.0
	MaxPitch = 1.0
)

// DefaultFOV — горизонтальный угол обзора по умолчанию, в градусах
const DefaultFOV = 66.0

// Camera хранит положение и ориентацию наблюдателя.
//
// Direction — вектор взгляда (вращаются только X/Y). Plane — вектор плоскости
// камеры: X/Y перпендикулярны Direction, смотрят влево и задают половину
// ширины обзора, Z хранит наклон в диапазоне [MinPitch, MaxPitch].
type Camera struct {
	Position  vec.Vec3Float
	Direction vec.Vec3Float
	Plane     vec.Vec3Float
}

// New создаёт камеру в точке pos, повернутую на yaw радиан от оси +X,
// с горизонтальным углом обзора fovDegrees
func New(pos vec.Vec3Float, yaw, fovDegrees float64) *Camera {
	halfWidth := math.Tan(fovDegrees * math.Pi / 360)
	sin, cos := math.Sincos(yaw)
	return &Camera{
		Position:  pos,
		Direction: vec.Vec3Float{X: cos, Y: sin},
		Plane:     vec.Vec3Float{X: -sin * halfWidth, Y: cos * halfWidth},
	}
}

// Rotate поворачивает камеру на yawDelta радиан (против часовой стрелки)
// и меняет наклон на pitchDelta. Направление и плоскость поворачиваются
// одним и тем же углом, поэтому геометрия обзора сохраняется.
func (c *Camera) Rotate(yawDelta, pitchDelta float64) {
	sin, cos := math.Sincos(yawDelta)

	c.Direction = c.Direction.WithXY(c.Direction.XY().Rotate(cos, sin))
	c.Plane = c.Plane.WithXY(c.Plane.XY().Rotate(cos, sin))
	c.Plane.Z = clamp(c.Plane.Z+pitchDelta, MinPitch, MaxPitch)
}

// MoveTo переносит камеру в новую позицию (ориентация не меняется)
func (c *Camera) MoveTo(pos vec.Vec3Float) {
	c.Position = pos
}

// Pitch возвращает текущий наклон
func (c *Camera) Pitch() float64 {
	return c.Plane.Z
}

// Yaw возвращает курс в радианах от оси +X
func (c *Camera) Yaw() float64 {
	return math.Atan2(c.Direction.Y, c.Direction.X)
}

// FOV возвращает горизонтальный угол обзора в градусах
func (c *Camera) FOV() float64 {
	ratio := c.Plane.XY().Length() / c.Direction.XY().Length()
	return math.Atan(ratio) * 360 / math.Pi
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
