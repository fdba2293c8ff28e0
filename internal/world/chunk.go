package world

import "github.com/annel0/tilecaster/internal/vec"

// MaxChunkEntities — емкость покадрового списка сущностей чанка
const MaxChunkEntities = 32

// Chunk представляет участок мира размером 16x16 тайлов
type Chunk struct {
	Coords       vec.Vec2                   // Координаты чанка в мире
	Tiles        [ChunkSize][ChunkSize]Tile // Tiles[x][y]
	FloorTexture uint16                     // Текстура пола для компоновщика
	Entities     [MaxChunkEntities]uint64   // ID сущностей, находящихся в чанке в этом кадре
	EntityCount  int                        // Число занятых слотов Entities
}

// Tile возвращает тайл по локальным координатам (без фильтрации пустых)
func (c *Chunk) Tile(local vec.Vec2) *Tile {
	return &c.Tiles[local.X][local.Y]
}

// Origin возвращает мировую координату левого нижнего тайла чанка
func (c *Chunk) Origin() vec.Vec2 {
	return vec.Vec2{X: c.Coords.X * ChunkSize, Y: c.Coords.Y * ChunkSize}
}

// AddEntity добавляет ID сущности в список кадра.
// Возвращает false, если список заполнен.
func (c *Chunk) AddEntity(id uint64) bool {
	if c.EntityCount >= MaxChunkEntities {
		return false
	}
	c.Entities[c.EntityCount] = id
	c.EntityCount++
	return true
}

// EntityIDs возвращает занятую часть списка сущностей
func (c *Chunk) EntityIDs() []uint64 {
	return c.Entities[:c.EntityCount]
}

// ClearEntities сбрасывает список сущностей кадра
func (c *Chunk) ClearEntities() {
	c.EntityCount = 0
}

// CountTiles возвращает число непустых тайлов
func (c *Chunk) CountTiles() int {
	n := 0
	for x := range c.Tiles {
		for y := range c.Tiles[x] {
			if !c.Tiles[x][y].Empty() {
				n++
			}
		}
	}
	return n
}
