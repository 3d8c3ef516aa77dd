package entity

import "github.com/zeusync/worldsave/internal/core/models"

// Entity is a live entity. Components keep insertion order; adding a
// component of a type already present replaces it in place.
type Entity struct {
	id         models.EntityID
	persistent bool
	prefab     string
	components []models.Component
}

func newEntity(id models.EntityID, persistent bool, prefab string) *Entity {
	return &Entity{id: id, persistent: persistent, prefab: prefab}
}

func (e *Entity) ID() models.EntityID { return e.id }

// Persistent reports whether the entity is written by compact saves.
func (e *Entity) Persistent() bool { return e.persistent }

func (e *Entity) SetPersistent(persistent bool) { e.persistent = persistent }

// Prefab returns the name of the prefab the entity came from, if any.
func (e *Entity) Prefab() string { return e.prefab }

func (e *Entity) AddComponent(c models.Component) {
	for i, existing := range e.components {
		if existing.TypeName() == c.TypeName() {
			e.components[i] = c
			return
		}
	}
	e.components = append(e.components, c)
}

func (e *Entity) RemoveComponent(typeName string) bool {
	for i, existing := range e.components {
		if existing.TypeName() == typeName {
			e.components = append(e.components[:i], e.components[i+1:]...)
			return true
		}
	}
	return false
}

func (e *Entity) Component(typeName string) (models.Component, bool) {
	for _, c := range e.components {
		if c.TypeName() == typeName {
			return c, true
		}
	}
	return nil, false
}

func (e *Entity) Components() []models.Component {
	out := make([]models.Component, len(e.components))
	copy(out, e.components)
	return out
}

func (e *Entity) data() models.EntityData {
	return models.EntityData{
		ID:         e.id,
		Persistent: e.persistent,
		Prefab:     e.prefab,
		Components: e.Components(),
	}
}
