package world

import (
	"math/rand"

	"github.com/annel0/tilecaster/internal/util"
	"github.com/annel0/tilecaster/internal/vec"
)

// Константы генерации
const (
	TranslucentChance = 0.03 // Доля стен, которые становятся прозрачными
	LedgeChance       = 0.02 // Доля пустых ячеек с парящим уступом
	TextureCount      = 8    // Число текстур стен
	FloorTextureCount = 4    // Число текстур пола
)

// WorldGenerator заполняет мир тайлами по карте высот из шума Перлина.
// Это вспомогательный инструмент авторинга для демо и тестов.
type WorldGenerator struct {
	Seed          int64   // Сид для генерации шума
	NoiseScale    float64 // Масштаб шума высот
	FillThreshold float64 // Значение шума, выше которого ставится стена
	MaxHeight     float64 // Максимальная высота стены
	ClearRadius   int     // Радиус свободной площадки вокруг (0,0) в тайлах

	heights *util.Noise
	floors  *util.Noise
}

// NewWorldGenerator создаёт новый генератор мира
func NewWorldGenerator(seed int64) *WorldGenerator {
	return &WorldGenerator{
		Seed:          seed,
		NoiseScale:    0.15, // Настройка сглаженности лабиринта
		FillThreshold: 0.58,
		MaxHeight:     3,
		ClearRadius:   2,
		heights:       util.NewNoise(seed),
		floors:        util.NewNoise(seed + 42),
	}
}

// Generate заполняет все чанки мира
func (wg *WorldGenerator) Generate(w *World) {
	for slot := 0; slot < ChunkCount; slot++ {
		wg.GenerateChunk(w.ChunkBySlot(slot))
	}
}

// GenerateChunk заполняет один чанк. Результат зависит только от сида и координат чанка.
func (wg *WorldGenerator) GenerateChunk(chunk *Chunk) {
	// Для каждого чанка создаем уникальный сид на основе глобального сида и координат
	chunkSeed := wg.Seed + int64(chunk.Coords.X*31) + int64(chunk.Coords.Y*17)
	rng := rand.New(rand.NewSource(chunkSeed))

	origin := chunk.Origin()
	floorValue := wg.floors.At(float64(chunk.Coords.X)*0.3, float64(chunk.Coords.Y)*0.3)
	chunk.FloorTexture = uint16(floorValue * FloorTextureCount)
	if chunk.FloorTexture >= FloorTextureCount {
		chunk.FloorTexture = FloorTextureCount - 1
	}

	for x := 0; x < ChunkSize; x++ {
		for y := 0; y < ChunkSize; y++ {
			global := origin.Add(vec.Vec2{X: x, Y: y})
			chunk.Tiles[x][y] = wg.tileFor(global, rng)
		}
	}
}

// tileFor выбирает тайл для глобальной ячейки
func (wg *WorldGenerator) tileFor(global vec.Vec2, rng *rand.Rand) Tile {
	// rng расходуется одинаково для всех ячеек, чтобы площадка не влияла на соседей
	texture := uint16(rng.Intn(TextureCount))
	roll := rng.Float64()

	if wg.inClearing(global) {
		return Tile{}
	}

	h := wg.heights.At(float64(global.X)*wg.NoiseScale, float64(global.Y)*wg.NoiseScale)
	if h < wg.FillThreshold {
		if roll < LedgeChance {
			return Tile{Type: TileTranslucent, Offset: 1, Height: 0.25, Texture: texture}
		}
		return Tile{}
	}

	// Высота растет от 1 до MaxHeight по мере удаления от порога
	k := (h - wg.FillThreshold) / (1 - wg.FillThreshold)
	tile := Tile{
		Type:    TileSolid,
		Height:  1 + k*(wg.MaxHeight-1),
		Texture: texture,
	}
	if roll < TranslucentChance {
		tile.Type = TileTranslucent
	}
	return tile
}

func (wg *WorldGenerator) inClearing(global vec.Vec2) bool {
	r := wg.ClearRadius
	return global.X >= -r && global.X <= r && global.Y >= -r && global.Y <= r
}
