package entity

import "github.com/annel0/tilecaster/internal/vec"

// EntityType представляет тип сущности
type EntityType uint16

const (
	EntityTypePlayer EntityType = iota
	EntityTypeNPC
	EntityTypeItem
	EntityTypeProjectile
	EntityTypeDecoration
)

// String возвращает строковое представление типа
func (t EntityType) String() string {
	switch t {
	case EntityTypePlayer:
		return "player"
	case EntityTypeNPC:
		return "npc"
	case EntityTypeItem:
		return "item"
	case EntityTypeProjectile:
		return "projectile"
	case EntityTypeDecoration:
		return "decoration"
	default:
		return "unknown"
	}
}

// ParseEntityType разбирает имя типа, обратное String
func ParseEntityType(name string) (EntityType, bool) {
	for t := EntityTypePlayer; t <= EntityTypeDecoration; t++ {
		if t.String() == name {
			return t, true
		}
	}
	return 0, false
}

// Entity — тело в мире, которое рендер рисует как билборд
type Entity struct {
	ID       uint64        // Уникальный идентификатор сущности
	Type     EntityType    // Тип сущности
	Position vec.Vec3Float // Центр основания; Z — высота над полом
	Size     float64       // Сторона квадратного билборда в мировых единицах
	Sprite   uint16        // Ссылка на спрайт для компоновщика
	Active   bool          // Участвует ли сущность в кадре
}

// NewEntity создаёт новую сущность
func NewEntity(id uint64, entityType EntityType, position vec.Vec3Float, size float64) *Entity {
	return &Entity{
		ID:       id,
		Type:     entityType,
		Position: position,
		Size:     size,
		Active:   true,
	}
}
