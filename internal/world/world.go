package world

import (
	"fmt"

	"github.com/annel0/tilecaster/internal/vec"
)

// World — резидентная сетка чанков фиксированной емкости.
// Все чанки выделяются при создании; подгрузки чанков нет.
// World не синхронизирован: вызывающий код не должен менять геометрию
// параллельно с трассировкой лучей.
type World struct {
	chunks     [ChunkCount]Chunk
	legacyWrap bool
}

// Option настраивает World при создании
type Option func(*World)

// WithLegacyTileWrap включает остаток от деления прежнего рендерера
// для отрицательных координат (см. legacyTileOffset). Нужен только
// для попиксельного совпадения со старыми кадрами.
func WithLegacyTileWrap() Option {
	return func(w *World) {
		w.legacyWrap = true
	}
}

// NewWorld создаёт пустой мир
func NewWorld(opts ...Option) *World {
	w := &World{}
	for slot := range w.chunks {
		x, y := ChunkCoords(slot)
		w.chunks[slot].Coords = vec.Vec2{X: x, Y: y}
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// LegacyTileWrap сообщает, включен ли старый остаток от деления
func (w *World) LegacyTileWrap() bool {
	return w.legacyWrap
}

// ChunkAt возвращает чанк по его координатам.
// Координаты вне [ChunkMin, ChunkMax] — нарушение предусловия: panic.
func (w *World) ChunkAt(x, y int) *Chunk {
	if !ChunkInRange(x, y) {
		panic(fmt.Errorf("world: chunk (%d,%d): %w", x, y, ErrChunkOutOfRange))
	}
	return &w.chunks[ChunkIndex(x, y)]
}

// LookupChunk — проверяемый вариант ChunkAt для непроверенного ввода
func (w *World) LookupChunk(x, y int) (*Chunk, error) {
	if !ChunkInRange(x, y) {
		return nil, fmt.Errorf("chunk (%d,%d): %w", x, y, ErrChunkOutOfRange)
	}
	return &w.chunks[ChunkIndex(x, y)], nil
}

// ChunkAtPos возвращает чанк, содержащий мировую позицию
func (w *World) ChunkAtPos(pos vec.Vec2Float) *Chunk {
	return w.ChunkAt(chunkCoord(pos.X), chunkCoord(pos.Y))
}

// ChunkBySlot возвращает чанк по слоту плоского массива
func (w *World) ChunkBySlot(slot int) *Chunk {
	return &w.chunks[slot]
}

// TileAt возвращает тайл в мировой позиции или nil, если тайла нет.
// Позиции за пределами сетки чанков тоже дают nil: луч или тело,
// покинувшие мир, видят пустоту, а не ошибку.
func (w *World) TileAt(pos vec.Vec2Float) *Tile {
	cx, cy := chunkCoord(pos.X), chunkCoord(pos.Y)
	if !ChunkInRange(cx, cy) {
		return nil
	}

	var tx, ty int
	if w.legacyWrap {
		tx, ty = legacyTileOffset(pos.X), legacyTileOffset(pos.Y)
	} else {
		tx, ty = tileOffset(pos.X, cx), tileOffset(pos.Y, cy)
	}

	tile := &w.chunks[ChunkIndex(cx, cy)].Tiles[tx][ty]
	if tile.Empty() {
		return nil
	}
	return tile
}

// TileAtCell возвращает тайл целочисленной ячейки
func (w *World) TileAtCell(cell vec.Vec2) *Tile {
	return w.TileAt(cell.Float())
}

// SetTile записывает тайл в ячейку. Всегда использует точный остаток
// от деления, даже если включен WithLegacyTileWrap.
func (w *World) SetTile(cell vec.Vec2, t Tile) {
	pos := cell.Float()
	cx, cy := chunkCoord(pos.X), chunkCoord(pos.Y)
	chunk := w.ChunkAt(cx, cy)
	chunk.Tiles[tileOffset(pos.X, cx)][tileOffset(pos.Y, cy)] = t
}

// ClearTile удаляет тайл из ячейки
func (w *World) ClearTile(cell vec.Vec2) {
	w.SetTile(cell, Tile{})
}

// PlaceEntity добавляет сущность в список чанка, содержащего pos.
// Возвращает false, если позиция вне мира или список чанка заполнен.
func (w *World) PlaceEntity(id uint64, pos vec.Vec2Float) bool {
	cx, cy := chunkCoord(pos.X), chunkCoord(pos.Y)
	if !ChunkInRange(cx, cy) {
		return false
	}
	return w.chunks[ChunkIndex(cx, cy)].AddEntity(id)
}

// ClearEntities сбрасывает покадровые списки сущностей всех чанков
func (w *World) ClearEntities() {
	for i := range w.chunks {
		w.chunks[i].ClearEntities()
	}
}

// InBounds сообщает, лежит ли позиция внутри сетки чанков
func InBounds(pos vec.Vec2Float) bool {
	return ChunkInRange(chunkCoord(pos.X), chunkCoord(pos.Y))
}
