package dda

import (
	"testing"

	"github.com/annel0/tilecaster/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraversal_AxisAligned(t *testing.T) {
	tr := New(vec.Vec2Float{X: 3.25, Y: -1.5}, vec.Vec2Float{X: 1, Y: 0})
	require.Equal(t, vec.Vec2{X: 3, Y: -2}, tr.Cell())
	require.Equal(t, FaceNone, tr.Face())

	prev := tr.Step()
	assert.InDelta(t, 0.75, prev, 1e-12)
	assert.Equal(t, vec.Vec2{X: 4, Y: -2}, tr.Cell())
	assert.Equal(t, FaceWest, tr.Face())

	for i := 2; i <= 10; i++ {
		dist := tr.Step()
		assert.Equal(t, vec.Vec2{X: 3 + i, Y: -2}, tr.Cell())
		assert.InDelta(t, 1.0, dist-prev, 1e-12, "шаг %d", i)
		prev = dist
	}
}

func TestTraversal_NegativeAxis(t *testing.T) {
	tr := New(vec.Vec2Float{X: 0.5, Y: 0.25}, vec.Vec2Float{X: 0, Y: -2})

	assert.InDelta(t, 0.125, tr.Step(), 1e-12)
	assert.Equal(t, vec.Vec2{X: 0, Y: -1}, tr.Cell())
	assert.Equal(t, FaceNorth, tr.Face())

	assert.InDelta(t, 0.625, tr.Step(), 1e-12)
	assert.Equal(t, vec.Vec2{X: 0, Y: -2}, tr.Cell())
}

func TestTraversal_DiagonalAlternates(t *testing.T) {
	tr := New(vec.Vec2Float{X: 0.5, Y: 0.5}, vec.Vec2Float{X: 1, Y: 1})

	// Равные знаки шага: при равенстве сначала шаг по Y, затем по X
	wantFaces := []Face{FaceSouth, FaceWest, FaceSouth, FaceWest, FaceSouth, FaceWest}
	wantCells := []vec.Vec2{{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 2}, {X: 2, Y: 2}, {X: 2, Y: 3}, {X: 3, Y: 3}}
	for i := range wantFaces {
		dist := tr.Step()
		assert.Equal(t, wantFaces[i], tr.Face(), "шаг %d", i)
		assert.Equal(t, wantCells[i], tr.Cell(), "шаг %d", i)
		assert.InDelta(t, 0.5+float64(i/2), dist, 1e-12, "шаг %d", i)
	}
}

func TestTraversal_TieBreakPrefersSmallerStep(t *testing.T) {
	// stepX = -1 < stepY = +1: при равенстве шаг по X
	tr := New(vec.Vec2Float{X: 0.5, Y: 0.5}, vec.Vec2Float{X: -1, Y: 1})
	tr.Step()
	assert.Equal(t, FaceEast, tr.Face())
	assert.Equal(t, vec.Vec2{X: -1, Y: 0}, tr.Cell())

	// stepX = +1 > stepY = -1: при равенстве шаг по Y
	tr = New(vec.Vec2Float{X: 0.5, Y: 0.5}, vec.Vec2Float{X: 1, Y: -1})
	tr.Step()
	assert.Equal(t, FaceNorth, tr.Face())
	assert.Equal(t, vec.Vec2{X: 0, Y: -1}, tr.Cell())
}

func TestTraversal_DistanceUsesOriginalDirection(t *testing.T) {
	dir := vec.Vec2Float{X: 2, Y: 0.5}
	tr := New(vec.Vec2Float{X: 0.5, Y: 0.5}, dir)

	for i := 0; i < 8; i++ {
		dist := tr.Step()
		p := tr.PointAt(dist)
		if tr.Face().Vertical() {
			assert.InDelta(t, float64(tr.Cell().X), p.X, 1e-9)
		} else {
			assert.InDelta(t, float64(tr.Cell().Y), p.Y, 1e-9)
		}
	}
}

func TestTraversal_PeekDoesNotCommit(t *testing.T) {
	tr := New(vec.Vec2Float{X: 1.2, Y: 1.7}, vec.Vec2Float{X: 0.8, Y: -0.3})
	before := tr

	cell, dist, face := tr.Peek()
	assert.Equal(t, before, tr)

	got := tr.Step()
	assert.Equal(t, cell, tr.Cell())
	assert.Equal(t, dist, got)
	assert.Equal(t, face, tr.Face())
}

func TestTraversal_ZeroDirectionPanics(t *testing.T) {
	assert.Panics(t, func() { New(vec.Vec2Float{X: 1, Y: 1}, vec.Vec2Float{}) })
}
