package world

import (
	"errors"
	"testing"

	"github.com/annel0/tilecaster/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorld_ChunkCoordsAssigned(t *testing.T) {
	w := NewWorld()

	c := w.ChunkAt(-5, 7)
	assert.Equal(t, vec.Vec2{X: -5, Y: 7}, c.Coords)
	assert.Same(t, c, w.ChunkBySlot(ChunkIndex(-5, 7)))
}

func TestWorld_ChunkAtPanicsOutOfRange(t *testing.T) {
	w := NewWorld()

	assert.Panics(t, func() { w.ChunkAt(ChunkMax+1, 0) })
	assert.Panics(t, func() { w.ChunkAt(0, ChunkMin-1) })

	_, err := w.LookupChunk(ChunkMin-1, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrChunkOutOfRange))

	c, err := w.LookupChunk(ChunkMin, ChunkMax)
	require.NoError(t, err)
	assert.Equal(t, vec.Vec2{X: ChunkMin, Y: ChunkMax}, c.Coords)
}

func TestWorld_TileAtMatchesDirectIndexing(t *testing.T) {
	w := NewWorld()

	// Чанк (-1,0) построен вручную: стена в его последнем столбце
	chunk := w.ChunkAt(-1, 0)
	chunk.Tiles[15][3] = Tile{Type: TileSolid, Height: 1, Texture: 7}
	chunk.Tiles[0][0] = Tile{Type: TileTranslucent, Offset: 1, Height: 0.5}

	// Соседний чанк (0,0): стена в первом столбце
	w.ChunkAt(0, 0).Tiles[0][3] = Tile{Type: TileSolid, Height: 2}

	got := w.TileAt(vec.Vec2Float{X: -0.5, Y: 3.5})
	require.NotNil(t, got)
	assert.Same(t, &chunk.Tiles[15][3], got)
	assert.Equal(t, uint16(7), got.Texture)

	got = w.TileAt(vec.Vec2Float{X: -15.9, Y: 0.1})
	require.NotNil(t, got)
	assert.Same(t, &chunk.Tiles[0][0], got)

	// Переход через границу чанка на x=0
	got = w.TileAt(vec.Vec2Float{X: 0.25, Y: 3.9})
	require.NotNil(t, got)
	assert.Equal(t, 2.0, got.Height)

	assert.Nil(t, w.TileAt(vec.Vec2Float{X: -1.5, Y: 3.5}), "пустой тайл даёт nil")
	assert.Nil(t, w.TileAt(vec.Vec2Float{X: float64(WorldMax) + 1, Y: 0}), "за пределами мира nil")
}

func TestWorld_SetTileAndCellLookup(t *testing.T) {
	w := NewWorld()
	cell := vec.Vec2{X: -17, Y: -1}

	w.SetTile(cell, Tile{Type: TileSolid, Height: 1})
	require.NotNil(t, w.TileAtCell(cell))
	assert.Equal(t, TileSolid, w.ChunkAt(-2, -1).Tiles[15][15].Type)

	w.ClearTile(cell)
	assert.Nil(t, w.TileAtCell(cell))

	assert.Panics(t, func() { w.SetTile(vec.Vec2{X: WorldMax, Y: 0}, Tile{Type: TileSolid}) })
}

func TestWorld_LegacyTileWrap(t *testing.T) {
	w := NewWorld(WithLegacyTileWrap())
	require.True(t, w.LegacyTileWrap())

	// Ячейка -1 записана точно, в слот 15 чанка -1
	w.SetTile(vec.Vec2{X: -1, Y: 2}, Tile{Type: TileSolid, Height: 1})
	// ...а старый остаток ищет ее в слоте 14
	assert.Nil(t, w.TileAt(vec.Vec2Float{X: -1, Y: 2}))

	// Положительные координаты не затронуты
	w.SetTile(vec.Vec2{X: 5, Y: 2}, Tile{Type: TileSolid, Height: 1})
	assert.NotNil(t, w.TileAt(vec.Vec2Float{X: 5.5, Y: 2.5}))
}

func TestWorld_LegacyTileWrapNegativeBands(t *testing.T) {
	legacy := NewWorld(WithLegacyTileWrap())
	exact := NewWorld()
	for _, w := range []*World{legacy, exact} {
		w.SetTile(vec.Vec2{X: -16, Y: 2}, Tile{Type: TileSolid, Height: 1, Texture: 16})
		w.SetTile(vec.Vec2{X: -2, Y: 2}, Tile{Type: TileSolid, Height: 1, Texture: 2})
		w.SetTile(vec.Vec2{X: -32, Y: 2}, Tile{Type: TileSolid, Height: 1, Texture: 32})
	}

	// f в (-1, 0): слот 0 чанка -1, то есть ячейка -16, а не -1
	for _, x := range []float64{-0.01, -0.5, -0.99} {
		tile := legacy.TileAt(vec.Vec2Float{X: x, Y: 2.5})
		require.NotNil(t, tile, "x=%g", x)
		assert.Equal(t, uint16(16), tile.Texture, "x=%g", x)
		assert.Nil(t, exact.TileAt(vec.Vec2Float{X: x, Y: 2.5}), "x=%g", x)
	}

	// Та же полоса у следующего чанка: (-17, -16) уходит в ячейку -32
	tile := legacy.TileAt(vec.Vec2Float{X: -16.5, Y: 2.5})
	require.NotNil(t, tile)
	assert.Equal(t, uint16(32), tile.Texture)

	// Целое значение смещается на одну ячейку вниз: -1 читает ячейку -2
	tile = legacy.TileAt(vec.Vec2Float{X: -1, Y: 2.5})
	require.NotNil(t, tile)
	assert.Equal(t, uint16(2), tile.Texture)

	// Прочие дробные координаты совпадают с точным остатком
	for x, texture := range map[float64]uint16{-1.5: 2, -15.5: 16} {
		pos := vec.Vec2Float{X: x, Y: 2.5}
		require.NotNil(t, exact.TileAt(pos), "x=%g", x)
		require.NotNil(t, legacy.TileAt(pos), "x=%g", x)
		assert.Equal(t, texture, exact.TileAt(pos).Texture, "x=%g", x)
		assert.Equal(t, texture, legacy.TileAt(pos).Texture, "x=%g", x)
	}
}

func TestWorld_PlaceEntities(t *testing.T) {
	w := NewWorld()

	assert.True(t, w.PlaceEntity(10, vec.Vec2Float{X: 1, Y: 1}))
	assert.True(t, w.PlaceEntity(11, vec.Vec2Float{X: -1, Y: 1}))
	assert.False(t, w.PlaceEntity(12, vec.Vec2Float{X: float64(WorldMin) - 1, Y: 0}))

	assert.Equal(t, []uint64{10}, w.ChunkAt(0, 0).EntityIDs())
	assert.Equal(t, []uint64{11}, w.ChunkAtPos(vec.Vec2Float{X: -3, Y: 2}).EntityIDs())

	w.ClearEntities()
	assert.Empty(t, w.ChunkAt(0, 0).EntityIDs())
	assert.Empty(t, w.ChunkAt(-1, 0).EntityIDs())
}
