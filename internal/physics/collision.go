package physics

import (
	"math"

	"github.com/annel0/tilecaster/internal/vec"
	"github.com/annel0/tilecaster/internal/world"
)

const (
	MaxStepHeight = 0.3  // Высота уступа, на который тело заходит без блокировки
	MaxMoveStep   = 0.25 // Длина подшага движения, меньше половины клетки
)

// TileSource — узкий интерфейс мира, общий для физики и рендера
type TileSource interface {
	TileAt(pos vec.Vec2Float) *world.Tile
}

// BoxCollider представляет простой коллайдер: квадрат в плане и высота
type BoxCollider struct {
	Width  float64 // Сторона квадрата в плане
	Height float64 // Вертикальная протяженность от основания
}

// NewBoxCollider создаёт новый коллайдер с указанными размерами
func NewBoxCollider(width, height float64) *BoxCollider {
	return &BoxCollider{
		Width:  width,
		Height: height,
	}
}

// CheckBoxCollision проверяет пересечение двух коллайдеров в плане
func CheckBoxCollision(pos1 vec.Vec2Float, collider1 *BoxCollider, pos2 vec.Vec2Float, collider2 *BoxCollider) bool {
	half1 := collider1.Width / 2
	half2 := collider2.Width / 2

	return pos1.X+half1 > pos2.X-half2 &&
		pos1.X-half1 < pos2.X+half2 &&
		pos1.Y+half1 > pos2.Y-half2 &&
		pos1.Y-half1 < pos2.Y+half2
}

// GetCollisionPoints возвращает точки для проверки коллизий с тайлами:
// четыре угла и центр. Углы сдвинуты внутрь, чтобы тело, стоящее вплотную
// к стене, не считалось застрявшим в ней.
func GetCollisionPoints(pos vec.Vec2Float, collider *BoxCollider) []vec.Vec2Float {
	const epsilon = 1e-6
	half := collider.Width/2 - epsilon
	if half <= 0 {
		return []vec.Vec2Float{pos}
	}

	return []vec.Vec2Float{
		{X: pos.X - half, Y: pos.Y - half}, // Левый нижний
		{X: pos.X + half, Y: pos.Y - half}, // Правый нижний
		{X: pos.X - half, Y: pos.Y + half}, // Левый верхний
		{X: pos.X + half, Y: pos.Y + half}, // Правый верхний
		pos,                                // Центр
	}
}

// blocks проверяет, мешает ли тайл телу с основанием на высоте z
func blocks(tile *world.Tile, z float64, collider *BoxCollider) bool {
	if tile == nil {
		return false
	}
	// Тело выше тайла или тайл парит над головой
	if tile.Top() <= z+MaxStepHeight || tile.Offset >= z+collider.Height {
		return false
	}
	return true
}

// Blocked проверяет, пересекается ли тело с основанием base с тайлами мира
func Blocked(tiles TileSource, base vec.Vec3Float, collider *BoxCollider) bool {
	for _, point := range GetCollisionPoints(base.XY(), collider) {
		if blocks(tiles.TileAt(point), base.Z, collider) {
			return true
		}
	}
	return false
}

// CanMoveToPosition проверяет, может ли тело переместиться в указанную позицию.
// Выход за пределы мира запрещен.
func CanMoveToPosition(tiles TileSource, newBase vec.Vec3Float, collider *BoxCollider) bool {
	for _, point := range GetCollisionPoints(newBase.XY(), collider) {
		if !world.InBounds(point) {
			return false
		}
	}
	return !Blocked(tiles, newBase, collider)
}

// Slide перемещает тело на delta по плоскости подшагами не длиннее MaxMoveStep,
// чтобы тело не проскакивало сквозь тонкие стены. Если подшаг заблокирован,
// пробует сдвиг только по X, затем только по Y (скольжение вдоль стены).
// Возвращает новую позицию и признак того, что тело сдвинулось.
func Slide(tiles TileSource, base vec.Vec3Float, delta vec.Vec2Float, collider *BoxCollider) (vec.Vec3Float, bool) {
	steps := int(math.Ceil(delta.Length() / MaxMoveStep))
	if steps == 0 {
		return base, false
	}
	step := delta.Mul(1 / float64(steps))

	moved := false
	for i := 0; i < steps; i++ {
		next, ok := slideOnce(tiles, base, step, collider)
		if !ok {
			break
		}
		base, moved = next, true
	}
	return base, moved
}

func slideOnce(tiles TileSource, base vec.Vec3Float, delta vec.Vec2Float, collider *BoxCollider) (vec.Vec3Float, bool) {
	candidates := []vec.Vec2Float{
		delta,
		{X: delta.X},
		{Y: delta.Y},
	}
	for _, d := range candidates {
		if d.IsZero() {
			continue
		}
		next := base.WithXY(base.XY().Add(d))
		if CanMoveToPosition(tiles, next, collider) {
			return next, true
		}
	}
	return base, false
}

// GroundHeight возвращает высоту опоры под точкой: верх тайла или 0
func GroundHeight(tiles TileSource, pos vec.Vec2Float) float64 {
	if tile := tiles.TileAt(pos); tile != nil && tile.Offset == 0 {
		return tile.Top()
	}
	return 0
}
