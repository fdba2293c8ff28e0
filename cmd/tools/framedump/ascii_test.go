package main

import (
	"context"
	"strings"
	"testing"

	"github.com/annel0/tilecaster/internal/camera"
	"github.com/annel0/tilecaster/internal/frame"
	"github.com/annel0/tilecaster/internal/projection"
	"github.com/annel0/tilecaster/internal/vec"
	"github.com/annel0/tilecaster/internal/world"
	"github.com/annel0/tilecaster/internal/world/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderASCII(t *testing.T) {
	w := world.NewWorld()
	for y := -10; y <= 10; y++ {
		w.SetTile(vec.Vec2{X: 4, Y: y}, world.Tile{Type: world.TileSolid, Height: 1})
	}

	cam := camera.New(vec.Vec3Float{X: 0.5, Y: 0.5, Z: 0.5}, 0, camera.DefaultFOV)
	vp := projection.Viewport{Width: 21, Height: 12}
	p := frame.NewPipeline(w, vp)

	near := entity.NewEntity(1, entity.EntityTypeNPC, vec.Vec3Float{X: 2.5, Y: 0.5}, 0.5)
	hidden := entity.NewEntity(2, entity.EntityTypeNPC, vec.Vec3Float{X: 8.5, Y: 0.5}, 0.5)
	f := p.Update(context.Background(), cam, frame.Input{}, []entity.Entity{*near, *hidden})

	out := renderASCII(f, cam, p.Projector())
	rows := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, rows, 12)
	for _, row := range rows {
		assert.Len(t, row, 21)
	}

	// Горизонт проходит посередине: верх — небо или стена, низ — пол или стена
	assert.Equal(t, byte(glyphWallX), rows[6][0])
	assert.NotContains(t, rows[0], string(glyphFloor))
	assert.NotContains(t, rows[11], string(glyphSky))

	// Ближнее тело видно в центре, дальнее закрыто стеной
	assert.Equal(t, 12, strings.Count(out, "@"))
	assert.Equal(t, byte(glyphSprite), rows[7][10])
}
