package main

import (
	"math"
	"strings"

	"github.com/annel0/tilecaster/internal/camera"
	"github.com/annel0/tilecaster/internal/frame"
	"github.com/annel0/tilecaster/internal/projection"
	"github.com/annel0/tilecaster/internal/raycast"
	"github.com/annel0/tilecaster/internal/world"
)

// Символы ASCII-кадра
const (
	glyphSky         = ' '
	glyphFloor       = '.'
	glyphWallX       = '#' // Грани West/East
	glyphWallY       = '%' // Грани South/North
	glyphTranslucent = ':'
	glyphSprite      = '@'
)

// renderASCII раскладывает кадр в текст: стены рисуются от дальних к ближним,
// тела поверх стен, если они ближе первой непрозрачной стены столбца.
func renderASCII(f *frame.Frame, cam *camera.Camera, proj projection.Projector) string {
	vp := f.Viewport
	grid := make([][]byte, vp.Height)
	horizon := projection.Horizon(cam, vp)
	for y := range grid {
		grid[y] = make([]byte, vp.Width)
		fill := byte(glyphSky)
		if float64(y) >= horizon {
			fill = glyphFloor
		}
		for x := range grid[y] {
			grid[y][x] = fill
		}
	}

	occlusion := make([]float64, len(f.Columns))
	for x := range f.Columns {
		occlusion[x] = math.Inf(1)
		hits := f.Columns[x].Slice()
		for i := len(hits) - 1; i >= 0; i-- {
			h := hits[i]
			if h.Floor {
				continue
			}
			span := proj.ProjectTileSpan(cam, h.Tile.Offset, h.Tile.Height, h.Front.Dist, vp)
			paintColumn(grid, x, span, glyphFor(h))
			if h.Tile.Type == world.TileSolid && h.Front.Dist < occlusion[x] {
				occlusion[x] = h.Front.Dist
			}
		}
	}

	for _, s := range f.Sprites {
		x0 := int(math.Max(0, math.Floor(s.Rect.X)))
		x1 := int(math.Min(float64(vp.Width), math.Ceil(s.Rect.X+s.Rect.W)))
		for x := x0; x < x1; x++ {
			if s.Depth < occlusion[x] {
				paintColumn(grid, x, s.Rect, glyphSprite)
			}
		}
	}

	var sb strings.Builder
	sb.Grow((vp.Width + 1) * vp.Height)
	for _, row := range grid {
		sb.Write(row)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func glyphFor(h raycast.Hit) byte {
	if h.Tile.Type == world.TileTranslucent {
		return glyphTranslucent
	}
	if h.Face.Vertical() {
		return glyphWallX
	}
	return glyphWallY
}

// paintColumn закрашивает строки столбца x, покрытые прямоугольником r
func paintColumn(grid [][]byte, x int, r projection.Rect, glyph byte) {
	if r.Empty() {
		return
	}
	y0 := int(math.Max(0, math.Floor(r.Y)))
	y1 := int(math.Min(float64(len(grid)), math.Ceil(r.Bottom())))
	for y := y0; y < y1; y++ {
		grid[y][x] = glyph
	}
}
