package world

import (
	"errors"
	"math"
)

const (
	ChunkSize  = 16                         // Размер чанка в тайлах по каждой оси
	ChunkBits  = 6                          // Бит на ось в индексе чанка
	ChunkSpan  = 1 << ChunkBits             // Чанков по одной оси
	ChunkMin   = -ChunkSpan / 2             // Минимальная координата чанка
	ChunkMax   = ChunkSpan/2 - 1            // Максимальная координата чанка
	ChunkCount = ChunkSpan * ChunkSpan      // Емкость плоского массива чанков
	chunkMask  = ChunkSpan - 1              // Маска 6-битного дополнительного кода
	WorldMin   = ChunkMin * ChunkSize       // Минимальная мировая координата
	WorldMax   = (ChunkMax + 1) * ChunkSize // Граница мира (не включительно)
)

// ErrChunkOutOfRange возвращается (или передается в panic) при обращении
// к координатам чанка вне [ChunkMin, ChunkMax].
var ErrChunkOutOfRange = errors.New("chunk coordinates out of range")

// spreadNibble раздвигает 3 бита с промежутком в один бит: abc -> a0b0c
var spreadNibble = [8]int{
	0b00000, 0b00001, 0b00100, 0b00101,
	0b10000, 0b10001, 0b10100, 0b10101,
}

// spread раздвигает 6-битное значение в два прохода по 3 бита
func spread(v int) int {
	return spreadNibble[v&7] | spreadNibble[(v>>3)&7]<<6
}

// compact собирает четные биты обратно в 6-битное значение
func compact(v int) int {
	r := 0
	for i := 0; i < ChunkBits; i++ {
		r |= ((v >> (2 * i)) & 1) << i
	}
	return r
}

// ChunkInRange проверяет, что координаты чанка лежат в допустимом диапазоне
func ChunkInRange(x, y int) bool {
	return x >= ChunkMin && x <= ChunkMax && y >= ChunkMin && y <= ChunkMax
}

// ChunkIndex возвращает слот плоского массива для координат чанка.
// Биты координат (в 6-битном дополнительном коде) чередуются по кривой Мортона,
// поэтому соседние чанки чаще оказываются рядом в памяти.
// Координаты должны лежать в диапазоне; проверку выполняет вызывающий код.
func ChunkIndex(x, y int) int {
	return spread(x&chunkMask) | spread(y&chunkMask)<<1
}

// ChunkCoords декодирует слот обратно в координаты чанка
func ChunkCoords(slot int) (x, y int) {
	return signExtend(compact(slot)), signExtend(compact(slot >> 1))
}

func signExtend(v int) int {
	if v > ChunkMax {
		return v - ChunkSpan
	}
	return v
}

// chunkCoord делит мировую координату на размер чанка с округлением к -∞
func chunkCoord(f float64) int {
	return int(math.Floor(f / ChunkSize))
}

// tileOffset возвращает смещение тайла внутри чанка chunk по одной оси.
func tileOffset(f float64, chunk int) int {
	return int(math.Floor(f)) - chunk*ChunkSize
}

// legacyTileOffset повторяет остаток от деления прежнего рендерера:
// усечение к нулю и сдвиг отрицательных значений на ChunkSize-1.
// Для отрицательных координат это дает два артефакта, которые сохраняются
// намеренно ради совпадения со старыми кадрами:
//   - последняя ячейка каждого чанка (например f в (-1, 0) или (-17, -16))
//     попадает в слот 0 того же чанка, на 15 ячеек левее;
//   - целые координаты (f = -1, -2, ...) попадают на ячейку ниже.
//
// Остальные дробные отрицательные координаты совпадают с точным остатком.
func legacyTileOffset(f float64) int {
	t := int(f) % ChunkSize
	if t < 0 {
		t += ChunkSize - 1
	}
	return t
}
