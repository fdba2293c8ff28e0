package vec

// Vec3Float представляет трехмерный вектор с плавающими координатами.
// Z — высота над полом мира.
type Vec3Float struct {
	X float64
	Y float64
	Z float64
}

// XY отбрасывает координату Z. Явное преобразование перед обращением к индексу.
func (v Vec3Float) XY() Vec2Float {
	return Vec2Float{X: v.X, Y: v.Y}
}

// WithXY возвращает копию вектора с замененными X/Y
func (v Vec3Float) WithXY(xy Vec2Float) Vec3Float {
	return Vec3Float{X: xy.X, Y: xy.Y, Z: v.Z}
}

// Add складывает два вектора
func (v Vec3Float) Add(other Vec3Float) Vec3Float {
	return Vec3Float{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// Sub вычитает вектор
func (v Vec3Float) Sub(other Vec3Float) Vec3Float {
	return Vec3Float{
		X: v.X - other.X,
		Y: v.Y - other.Y,
		Z: v.Z - other.Z,
	}
}
