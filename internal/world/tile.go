package world

// TileType определяет вид тайла
type TileType uint8

const (
	TileNone        TileType = iota // Пустая ячейка: нет коллизии, не проецируется
	TileSolid                       // Непрозрачная стена
	TileTranslucent                 // Стекло, решетки, вода: луч проходит дальше
)

// String возвращает строковое представление типа тайла
func (t TileType) String() string {
	switch t {
	case TileNone:
		return "none"
	case TileSolid:
		return "solid"
	case TileTranslucent:
		return "translucent"
	default:
		return "unknown"
	}
}

// Tile — единица геометрии мира. Горизонтально занимает всю ячейку сетки,
// по вертикали — отрезок [Offset, Offset+Height].
type Tile struct {
	Type    TileType
	Offset  float64 // Высота основания над полом мира
	Height  float64 // Вертикальная протяженность
	Texture uint16  // Ссылка на текстуру стены для компоновщика
}

// Top возвращает высоту верхней поверхности тайла
func (t *Tile) Top() float64 {
	return t.Offset + t.Height
}

// Span возвращает вертикальный отрезок тайла для проекции (основание, высота)
func (t *Tile) Span() (offset, extent float64) {
	return t.Offset, t.Height
}

// Empty сообщает, что тайл отсутствует
func (t *Tile) Empty() bool {
	return t.Type == TileNone
}

// Contains проверяет, попадает ли высота z внутрь тайла
func (t *Tile) Contains(z float64) bool {
	return !t.Empty() && z >= t.Offset && z < t.Top()
}
