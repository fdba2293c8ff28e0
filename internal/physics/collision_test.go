package physics

import (
	"testing"

	"github.com/annel0/tilecaster/internal/vec"
	"github.com/annel0/tilecaster/internal/world"
	"github.com/stretchr/testify/assert"
)

func newTestWorld() *world.World {
	w := world.NewWorld()
	w.SetTile(vec.Vec2{X: 2, Y: 0}, world.Tile{Type: world.TileSolid, Height: 2})
	w.SetTile(vec.Vec2{X: 0, Y: 2}, world.Tile{Type: world.TileSolid, Height: 0.2})
	w.SetTile(vec.Vec2{X: -1, Y: 0}, world.Tile{Type: world.TileTranslucent, Offset: 3, Height: 0.5})
	return w
}

func TestCheckBoxCollision(t *testing.T) {
	c := NewBoxCollider(1, 1)
	assert.True(t, CheckBoxCollision(vec.Vec2Float{}, c, vec.Vec2Float{X: 0.9}, c))
	assert.False(t, CheckBoxCollision(vec.Vec2Float{}, c, vec.Vec2Float{X: 1}, c))
}

func TestBlocked_WallsStepsAndOverhangs(t *testing.T) {
	w := newTestWorld()
	c := NewBoxCollider(0.4, 1.5)

	assert.False(t, Blocked(w, vec.Vec3Float{X: 0.5, Y: 0.5}, c))
	assert.True(t, Blocked(w, vec.Vec3Float{X: 2.5, Y: 0.5}, c), "стена")
	assert.True(t, Blocked(w, vec.Vec3Float{X: 1.9, Y: 0.5}, c), "угол коллайдера в стене")
	assert.False(t, Blocked(w, vec.Vec3Float{X: 0.5, Y: 2.5}, c), "низкий уступ")
	assert.False(t, Blocked(w, vec.Vec3Float{X: -0.5, Y: 0.5}, c), "уступ над головой")
	assert.True(t, Blocked(w, vec.Vec3Float{X: -0.5, Y: 0.5, Z: 2}, c), "голова в уступе")
}

func TestCanMoveToPosition_WorldBounds(t *testing.T) {
	w := newTestWorld()
	c := NewBoxCollider(0.4, 1.5)

	assert.True(t, CanMoveToPosition(w, vec.Vec3Float{X: 0.5, Y: 0.5}, c))
	assert.False(t, CanMoveToPosition(w, vec.Vec3Float{X: float64(world.WorldMax) - 0.1, Y: 0.5}, c))
}

func TestSlide_AlongWall(t *testing.T) {
	w := newTestWorld()
	c := NewBoxCollider(0.4, 1.5)

	// Диагональный шаг в стену превращается в движение по Y
	got, moved := Slide(w, vec.Vec3Float{X: 1.5, Y: 0.5}, vec.Vec2Float{X: 0.5, Y: 0.3}, c)
	assert.True(t, moved)
	assert.InDelta(t, 1.5+0.5/3, got.X, 1e-9)
	assert.InDelta(t, 0.8, got.Y, 1e-9)

	// Прямо в стену вплотную — стоим на месте
	start := vec.Vec3Float{X: 1.75, Y: 0.5}
	got, moved = Slide(w, start, vec.Vec2Float{X: 0.5}, c)
	assert.False(t, moved)
	assert.Equal(t, start, got)

	got, moved = Slide(w, start, vec.Vec2Float{}, c)
	assert.False(t, moved)
	assert.Equal(t, start, got)
}

func TestSlide_NoTunneling(t *testing.T) {
	w := newTestWorld()
	c := NewBoxCollider(0.4, 1.5)

	// Длинный шаг останавливается перед стеной в клетке (2,0)
	got, moved := Slide(w, vec.Vec3Float{X: 0.5, Y: 0.5}, vec.Vec2Float{X: 10}, c)
	assert.True(t, moved)
	assert.InDelta(t, 1.75, got.X, 1e-9)
}

func TestGroundHeight(t *testing.T) {
	w := newTestWorld()
	assert.Equal(t, 0.2, GroundHeight(w, vec.Vec2Float{X: 0.5, Y: 2.5}))
	assert.Equal(t, 0.0, GroundHeight(w, vec.Vec2Float{X: -0.5, Y: 0.5}))
	assert.Equal(t, 0.0, GroundHeight(w, vec.Vec2Float{X: 5.5, Y: 5.5}))
}
