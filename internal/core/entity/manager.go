// Package entity holds live entities and the id allocator for one world.
package entity

import (
	"errors"
	"fmt"
	"slices"

	"github.com/zeusync/worldsave/internal/core/models"
)

var (
	ErrEntityNotFound = errors.New("entity not found")
	ErrIDInUse        = errors.New("entity id already in use")
	ErrIDFreed        = errors.New("entity id is in the freed pool")
	ErrIDOutOfRange   = errors.New("entity id outside allocated range")
)

// PrefabSource resolves the effective components of a prefab for instantiation.
type PrefabSource interface {
	EffectiveComponents(name string) ([]models.Component, error)
}

// Manager owns live entities and the id allocation state. It is not safe for
// concurrent use; callers serialize access per world.
type Manager struct {
	entities map[models.EntityID]*Entity
	nextID   models.EntityID
	freed    map[models.EntityID]struct{}
}

func NewManager() *Manager {
	return &Manager{
		entities: make(map[models.EntityID]*Entity),
		nextID:   1,
		freed:    make(map[models.EntityID]struct{}),
	}
}

// Create allocates an id and adds a persistent entity holding components.
// The lowest freed id is reused before the cursor advances.
func (m *Manager) Create(components ...models.Component) *Entity {
	e := newEntity(m.allocate(), true, "")
	for _, c := range components {
		e.AddComponent(c)
	}
	m.entities[e.id] = e
	return e
}

// Instantiate creates an entity from the effective components of a prefab.
// Components are cloned, so later prefab changes do not leak into the entity.
func (m *Manager) Instantiate(prefabs PrefabSource, prefab string, overrides ...models.Component) (*Entity, error) {
	base, err := prefabs.EffectiveComponents(prefab)
	if err != nil {
		return nil, err
	}
	e := newEntity(m.allocate(), true, prefab)
	for _, c := range models.MergeComponents(models.CloneComponents(base), overrides) {
		e.AddComponent(c)
	}
	m.entities[e.id] = e
	return e, nil
}

func (m *Manager) allocate() models.EntityID {
	if len(m.freed) > 0 {
		id := lowest(m.freed)
		delete(m.freed, id)
		return id
	}
	id := m.nextID
	m.nextID++
	return id
}

func lowest(set map[models.EntityID]struct{}) models.EntityID {
	first := true
	var low models.EntityID
	for id := range set {
		if first || id < low {
			low, first = id, false
		}
	}
	return low
}

// Destroy removes the entity and returns its id to the freed pool.
func (m *Manager) Destroy(id models.EntityID) error {
	if _, ok := m.entities[id]; !ok {
		return fmt.Errorf("%w: %d", ErrEntityNotFound, id)
	}
	delete(m.entities, id)
	m.freed[id] = struct{}{}
	return nil
}

func (m *Manager) Get(id models.EntityID) (*Entity, bool) {
	e, ok := m.entities[id]
	return e, ok
}

func (m *Manager) Count() int {
	return len(m.entities)
}

// Entities returns live entities ordered by id.
func (m *Manager) Entities() []*Entity {
	out := make([]*Entity, 0, len(m.entities))
	for _, e := range m.entities {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b *Entity) int {
		switch {
		case a.id < b.id:
			return -1
		case a.id > b.id:
			return 1
		}
		return 0
	})
	return out
}

// AllEntities returns detached views of every live entity, ordered by id.
// Component instances are shared with the live entities and must be treated
// as read-only.
func (m *Manager) AllEntities() []models.EntityData {
	entities := m.Entities()
	out := make([]models.EntityData, len(entities))
	for i, e := range entities {
		out[i] = e.data()
	}
	return out
}

func (m *Manager) NextID() models.EntityID {
	return m.nextID
}

// FreedIDs returns the freed pool in ascending order.
func (m *Manager) FreedIDs() []models.EntityID {
	out := make([]models.EntityID, 0, len(m.freed))
	for id := range m.freed {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

func (m *Manager) SetNextID(id models.EntityID) {
	m.nextID = id
}

// SetFreedIDs replaces the freed pool.
func (m *Manager) SetFreedIDs(ids []models.EntityID) {
	m.freed = make(map[models.EntityID]struct{}, len(ids))
	for _, id := range ids {
		m.freed[id] = struct{}{}
	}
}

// Register adds an entity under its own id without touching the allocator
// cursor. It is used when restoring a world.
func (m *Manager) Register(data models.EntityData) error {
	switch {
	case data.ID == models.NullEntityID || data.ID >= m.nextID:
		return fmt.Errorf("%w: %d (next id %d)", ErrIDOutOfRange, data.ID, m.nextID)
	case m.entities[data.ID] != nil:
		return fmt.Errorf("%w: %d", ErrIDInUse, data.ID)
	}
	if _, ok := m.freed[data.ID]; ok {
		return fmt.Errorf("%w: %d", ErrIDFreed, data.ID)
	}
	e := newEntity(data.ID, data.Persistent, data.Prefab)
	for _, c := range data.Components {
		e.AddComponent(c)
	}
	m.entities[e.id] = e
	return nil
}

// Reset drops every entity and rewinds the allocator.
func (m *Manager) Reset() {
	m.entities = make(map[models.EntityID]*Entity)
	m.freed = make(map[models.EntityID]struct{})
	m.nextID = 1
}
