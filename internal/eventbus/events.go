package eventbus

// Типы событий сессии рендера
const (
	EventCameraRotated   = "camera.rotated"
	EventCameraMoved     = "camera.moved"
	EventCameraBlocked   = "camera.blocked"
	EventEntitySpawned   = "entity.spawned"
	EventEntityDespawned = "entity.despawned"
)

// CameraPayload — поза камеры после события
type CameraPayload struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
}

// EntityPayload — тело, которого касается событие
type EntityPayload struct {
	ID   uint64  `json:"id"`
	Type string  `json:"type,omitempty"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Z    float64 `json:"z"`
	Size float64 `json:"size,omitempty"`
}

// PriorityOf возвращает приоритет доставки для типа события: изменения состава
// тел не теряются, поза камеры может быть отброшена под нагрузкой
func PriorityOf(eventType string) Priority {
	switch eventType {
	case EventEntitySpawned, EventEntityDespawned:
		return PriorityHigh
	default:
		return PriorityLow
	}
}
