package vec

import "math"

// Vec2 представляет целочисленные 2D координаты (ячейка сетки тайлов)
type Vec2 struct {
	X, Y int
}

// Add складывает два вектора
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{X: v.X + other.X, Y: v.Y + other.Y}
}

// Float преобразует ячейку в координаты с плавающей точкой (левый нижний угол ячейки)
func (v Vec2) Float() Vec2Float {
	return Vec2Float{X: float64(v.X), Y: float64(v.Y)}
}

// Center возвращает центр ячейки
func (v Vec2) Center() Vec2Float {
	return Vec2Float{X: float64(v.X) + 0.5, Y: float64(v.Y) + 0.5}
}

// DistanceTo вычисляет расстояние до другой точки
func (v Vec2) DistanceTo(other Vec2) float64 {
	dx := float64(v.X - other.X)
	dy := float64(v.Y - other.Y)
	return math.Sqrt(dx*dx + dy*dy)
}
