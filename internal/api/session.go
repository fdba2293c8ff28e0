package api

import (
	"context"
	"sync"

	"github.com/annel0/tilecaster/internal/camera"
	"github.com/annel0/tilecaster/internal/eventbus"
	"github.com/annel0/tilecaster/internal/frame"
	"github.com/annel0/tilecaster/internal/logging"
	"github.com/annel0/tilecaster/internal/physics"
	"github.com/annel0/tilecaster/internal/vec"
	"github.com/annel0/tilecaster/internal/world"
	"github.com/annel0/tilecaster/internal/world/entity"
)

// DefaultEyeHeight — высота камеры над опорой
const DefaultEyeHeight = 0.5

// eventSource — поле Source событий сессии
const eventSource = "tilecaster.session"

type correlationKey struct{}

// WithCorrelationID кладет идентификатор запроса в контекст событий
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// Session владеет миром, камерой и конвейером кадров.
// Все обращения к ядру рендера идут под одним мьютексом.
type Session struct {
	mu        sync.Mutex
	world     *world.World
	camera    *camera.Camera
	pipeline  *frame.Pipeline
	entities  *entity.EntityManager
	collider  *physics.BoxCollider
	eyeHeight float64
	last      *FrameView
	bus       eventbus.EventBus
}

// SessionOption настраивает Session
type SessionOption func(*Session)

// WithEventBus включает публикацию событий камеры и тел
func WithEventBus(bus eventbus.EventBus) SessionOption {
	return func(s *Session) { s.bus = bus }
}

// WithEyeHeight задает высоту камеры над опорой и высоту коллайдера
func WithEyeHeight(h float64) SessionOption {
	return func(s *Session) {
		s.eyeHeight = h
		s.collider = physics.NewBoxCollider(s.collider.Width, h)
	}
}

// NewSession создаёт сессию; entities может быть nil
func NewSession(w *world.World, cam *camera.Camera, p *frame.Pipeline, entities *entity.EntityManager, opts ...SessionOption) *Session {
	if entities == nil {
		entities = entity.NewEntityManager()
	}
	s := &Session{
		world:     w,
		camera:    cam,
		pipeline:  p,
		entities:  entities,
		collider:  physics.NewBoxCollider(0.4, DefaultEyeHeight),
		eyeHeight: DefaultEyeHeight,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// publish отправляет событие в шину, ошибки только логируются
func (s *Session) publish(ctx context.Context, eventType string, payload interface{}) {
	if s.bus == nil {
		return
	}
	ev, err := eventbus.NewEnvelope(eventSource, eventType, payload)
	if err != nil {
		logging.Warn("событие %s не создано: %v", eventType, err)
		return
	}
	if id, ok := ctx.Value(correlationKey{}).(string); ok {
		ev.CorrelationID = id
	}
	if err := s.bus.Publish(ctx, ev); err != nil {
		logging.Warn("событие %s не опубликовано: %v", eventType, err)
	}
}

func cameraPayload(cam *camera.Camera) eventbus.CameraPayload {
	return eventbus.CameraPayload{
		X:     cam.Position.X,
		Y:     cam.Position.Y,
		Z:     cam.Position.Z,
		Yaw:   cam.Yaw(),
		Pitch: cam.Pitch(),
	}
}

// Entities возвращает менеджер тел сессии
func (s *Session) Entities() *entity.EntityManager {
	return s.entities
}

// Step применяет ввод и строит новый кадр
func (s *Session) Step(ctx context.Context, in frame.Input) FrameView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stepLocked(ctx, in)
}

func (s *Session) stepLocked(ctx context.Context, in frame.Input) FrameView {
	f := s.pipeline.Update(ctx, s.camera, in, s.entities.Snapshot())
	view := newFrameView(f, s.camera, s.pipeline.Projector())
	s.last = &view
	return view
}

// Rotate поворачивает камеру и строит кадр
func (s *Session) Rotate(ctx context.Context, yawDelta, pitchDelta float64) FrameView {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := s.stepLocked(ctx, frame.Input{YawDelta: yawDelta, PitchDelta: pitchDelta})
	s.publish(ctx, eventbus.EventCameraRotated, cameraPayload(s.camera))
	return view
}

// Frame возвращает последний кадр, строя его при первом обращении
func (s *Session) Frame(ctx context.Context) FrameView {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return s.stepLocked(ctx, frame.Input{})
	}
	return *s.last
}

// EntitiesNear возвращает тела в радиусе radius от камеры по плоскости XY
func (s *Session) EntitiesNear(radius float64) []entity.Entity {
	s.mu.Lock()
	center := s.camera.Position.XY()
	s.mu.Unlock()
	return s.entities.GetEntitiesInRange(center, radius)
}

// Camera возвращает состояние камеры
func (s *Session) Camera() CameraView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return newCameraView(s.camera)
}

// Move сдвигает камеру по плоскости с проверкой коллизий и скольжением вдоль стен.
// Высота камеры следует за опорой под ней.
func (s *Session) Move(ctx context.Context, delta vec.Vec2Float) (CameraView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos := s.camera.Position
	base := vec.Vec3Float{X: pos.X, Y: pos.Y, Z: pos.Z - s.eyeHeight}

	next, moved := physics.Slide(s.world, base, delta, s.collider)
	if moved {
		ground := physics.GroundHeight(s.world, next.XY())
		s.camera.MoveTo(vec.Vec3Float{X: next.X, Y: next.Y, Z: ground + s.eyeHeight})
		s.last = nil
		s.publish(ctx, eventbus.EventCameraMoved, cameraPayload(s.camera))
	} else {
		s.publish(ctx, eventbus.EventCameraBlocked, cameraPayload(s.camera))
	}
	return newCameraView(s.camera), moved
}

// Spawn создаёт тело; Frame после него уже строит кадр с этим телом
func (s *Session) Spawn(ctx context.Context, typ entity.EntityType, pos vec.Vec3Float, size float64) uint64 {
	id := s.entities.SpawnEntity(typ, pos, size)
	s.invalidate()
	s.publish(ctx, eventbus.EventEntitySpawned, eventbus.EntityPayload{
		ID: id, Type: typ.String(), X: pos.X, Y: pos.Y, Z: pos.Z, Size: size,
	})
	return id
}

// Despawn удаляет тело
func (s *Session) Despawn(ctx context.Context, id uint64) bool {
	e, ok := s.entities.GetEntity(id)
	if !ok || !s.entities.DespawnEntity(id) {
		return false
	}
	s.invalidate()
	s.publish(ctx, eventbus.EventEntityDespawned, eventbus.EntityPayload{
		ID: id, Type: e.Type.String(), X: e.Position.X, Y: e.Position.Y, Z: e.Position.Z,
	})
	return true
}

// invalidate сбрасывает сохранённый кадр: следующий Frame построит новый
func (s *Session) invalidate() {
	s.mu.Lock()
	s.last = nil
	s.mu.Unlock()
}

// Tile возвращает копию тайла в точке pos
func (s *Session) Tile(pos vec.Vec2Float) (world.Tile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !world.InBounds(pos) {
		return world.Tile{}, false
	}
	if t := s.world.TileAt(pos); t != nil {
		return *t, true
	}
	return world.Tile{}, true
}

// TileCount возвращает число непустых тайлов мира
func (s *Session) TileCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for slot := 0; slot < world.ChunkCount; slot++ {
		total += s.world.ChunkBySlot(slot).CountTiles()
	}
	return total
}
