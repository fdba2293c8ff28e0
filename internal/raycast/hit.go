package raycast

import (
	"github.com/annel0/tilecaster/internal/dda"
	"github.com/annel0/tilecaster/internal/vec"
	"github.com/annel0/tilecaster/internal/world"
)

// MaxHits — емкость списка попаданий одного столбца
const MaxHits = 64

// HitPoint — точка луча и параметр, на котором она достигнута
type HitPoint struct {
	Point vec.Vec2Float
	Dist  float64
}

// Hit — пересечение луча с тайлом
type Hit struct {
	Tile  *world.Tile
	Cell  vec.Vec2
	Front HitPoint // Вход в ячейку
	Back  HitPoint // Выход из ячейки
	Face  dda.Face // Грань входа
	Floor bool     // Синтетическое попадание в тайл под камерой: заполнен только Back
}

// HitList — упорядоченные попадания одного столбца экрана.
// Попадания отсортированы строго по возрастанию Front.Dist, отрезки нулевой длины
// (касание ячейки в углу сетки) не попадают в список; слоты после Count не читаются.
type HitList struct {
	Hits  [MaxHits]Hit
	Count int
}

// Reset очищает список без освобождения памяти
func (l *HitList) Reset() {
	l.Count = 0
}

// Full сообщает, что список заполнен
func (l *HitList) Full() bool {
	return l.Count >= MaxHits
}

// Push добавляет попадание. Возвращает false, если список заполнен.
func (l *HitList) Push(h Hit) bool {
	if l.Full() {
		return false
	}
	l.Hits[l.Count] = h
	l.Count++
	return true
}

// Slice возвращает занятую часть списка
func (l *HitList) Slice() []Hit {
	return l.Hits[:l.Count]
}

// Nearest возвращает ближайшее попадание, не считая пола
func (l *HitList) Nearest() (Hit, bool) {
	for i := 0; i < l.Count; i++ {
		if !l.Hits[i].Floor {
			return l.Hits[i], true
		}
	}
	return Hit{}, false
}
