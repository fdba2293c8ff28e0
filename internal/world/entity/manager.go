package entity

import (
	"sort"
	"sync"

	"github.com/annel0/tilecaster/internal/vec"
)

// EntityManager управляет всеми сущностями в мире
type EntityManager struct {
	entities     map[uint64]*Entity // Хранилище всех сущностей
	nextEntityID uint64             // Счетчик для генерации ID
	mu           sync.RWMutex       // Мьютекс для безопасного доступа
}

// NewEntityManager создаёт новый менеджер сущностей
func NewEntityManager() *EntityManager {
	return &EntityManager{
		entities:     make(map[uint64]*Entity),
		nextEntityID: 1,
	}
}

// SpawnEntity создаёт новую сущность и возвращает её ID
func (em *EntityManager) SpawnEntity(entityType EntityType, position vec.Vec3Float, size float64) uint64 {
	em.mu.Lock()
	defer em.mu.Unlock()

	entityID := em.nextEntityID
	em.nextEntityID++

	em.entities[entityID] = NewEntity(entityID, entityType, position, size)
	return entityID
}

// DespawnEntity удаляет сущность
func (em *EntityManager) DespawnEntity(entityID uint64) bool {
	em.mu.Lock()
	defer em.mu.Unlock()

	if _, exists := em.entities[entityID]; !exists {
		return false
	}
	delete(em.entities, entityID)
	return true
}

// GetEntity возвращает копию сущности по ID
func (em *EntityManager) GetEntity(entityID uint64) (Entity, bool) {
	em.mu.RLock()
	defer em.mu.RUnlock()

	e, exists := em.entities[entityID]
	if !exists {
		return Entity{}, false
	}
	return *e, true
}

// MoveEntity переносит сущность в новую позицию
func (em *EntityManager) MoveEntity(entityID uint64, position vec.Vec3Float) bool {
	em.mu.Lock()
	defer em.mu.Unlock()

	e, exists := em.entities[entityID]
	if !exists {
		return false
	}
	e.Position = position
	return true
}

// Snapshot возвращает копии активных сущностей, упорядоченные по ID.
// Рендер получает стабильный порядок кадр за кадром.
func (em *EntityManager) Snapshot() []Entity {
	em.mu.RLock()
	defer em.mu.RUnlock()

	result := make([]Entity, 0, len(em.entities))
	for _, e := range em.entities {
		if e.Active {
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// GetEntitiesInRange возвращает сущности в радиусе от точки (по плоскости XY)
func (em *EntityManager) GetEntitiesInRange(center vec.Vec2Float, radius float64) []Entity {
	em.mu.RLock()
	defer em.mu.RUnlock()

	var result []Entity
	for _, e := range em.entities {
		if e.Position.XY().DistanceTo(center) <= radius {
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// GetStats возвращает статистику по сущностям
func (em *EntityManager) GetStats() map[string]interface{} {
	em.mu.RLock()
	defer em.mu.RUnlock()

	byType := make(map[string]int)
	active := 0
	for _, e := range em.entities {
		byType[e.Type.String()]++
		if e.Active {
			active++
		}
	}

	return map[string]interface{}{
		"total":   len(em.entities),
		"active":  active,
		"by_type": byType,
	}
}
