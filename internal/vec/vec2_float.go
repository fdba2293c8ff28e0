package vec

import "math"

// Vec2Float представляет 2D координаты с плавающей точкой.
// Это единственный тип позиции на границе пространственного индекса.
type Vec2Float struct {
	X, Y float64
}

// Floor возвращает ячейку сетки, содержащую точку (округление к -∞)
func (v Vec2Float) Floor() Vec2 {
	return Vec2{X: int(math.Floor(v.X)), Y: int(math.Floor(v.Y))}
}

// Add складывает два вектора
func (v Vec2Float) Add(other Vec2Float) Vec2Float {
	return Vec2Float{X: v.X + other.X, Y: v.Y + other.Y}
}

// Sub вычитает вектор
func (v Vec2Float) Sub(other Vec2Float) Vec2Float {
	return Vec2Float{X: v.X - other.X, Y: v.Y - other.Y}
}

// Mul умножает вектор на скаляр
func (v Vec2Float) Mul(scalar float64) Vec2Float {
	return Vec2Float{X: v.X * scalar, Y: v.Y * scalar}
}

// Dot возвращает скалярное произведение
func (v Vec2Float) Dot(other Vec2Float) float64 {
	return v.X*other.X + v.Y*other.Y
}

// Rotate поворачивает вектор на угол, заданный косинусом и синусом.
// Принимает уже посчитанные cos/sin, чтобы несколько векторов поворачивались одинаково.
func (v Vec2Float) Rotate(cos, sin float64) Vec2Float {
	return Vec2Float{
		X: v.X*cos - v.Y*sin,
		Y: v.X*sin + v.Y*cos,
	}
}

// Normalized возвращает нормализованный вектор
func (v Vec2Float) Normalized() Vec2Float {
	length := v.Length()
	if length == 0 {
		return Vec2Float{X: 0, Y: 0}
	}
	return Vec2Float{X: v.X / length, Y: v.Y / length}
}

// Length возвращает длину вектора
func (v Vec2Float) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// DistanceTo вычисляет расстояние до другой точки
func (v Vec2Float) DistanceTo(other Vec2Float) float64 {
	dx := v.X - other.X
	dy := v.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// IsZero сообщает, что обе компоненты равны нулю
func (v Vec2Float) IsZero() bool {
	return v.X == 0 && v.Y == 0
}
