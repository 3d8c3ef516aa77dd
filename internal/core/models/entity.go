package models

// EntityID identifies an entity within one world. Zero is the null id and is
// never handed out by an allocator.
type EntityID uint64

// NullEntityID is the id of no entity.
const NullEntityID EntityID = 0

// Component is a typed bundle of field values attached to an entity or prefab.
// TypeName must be stable across process restarts since it is what gets
// persisted in verbose snapshots and in compact type tables.
type Component interface {
	TypeName() string
	Clone() Component
}

// EntityData is the detached form of an entity handed between the entity
// manager and the persistence layer.
type EntityData struct {
	ID         EntityID
	Persistent bool
	// Prefab names the prefab the entity was instantiated from, empty if none.
	Prefab     string
	Components []Component
}

// PrefabData is the detached form of a prefab. Components holds only the
// prefab's own components, not the ones inherited from Parent.
type PrefabData struct {
	Name       string
	Parent     string
	Components []Component
}

// HasParent reports whether the prefab extends another prefab.
func (p PrefabData) HasParent() bool {
	return p.Parent != ""
}

// CloneComponents returns deep copies of components.
func CloneComponents(components []Component) []Component {
	if components == nil {
		return nil
	}
	out := make([]Component, len(components))
	for i, c := range components {
		out[i] = c.Clone()
	}
	return out
}

// MergeComponents overlays override on base. A component in override replaces
// the base component of the same type in place; new types are appended in
// override order. Neither input is modified.
func MergeComponents(base, override []Component) []Component {
	out := make([]Component, 0, len(base)+len(override))
	index := make(map[string]int, len(base)+len(override))
	for _, c := range base {
		index[c.TypeName()] = len(out)
		out = append(out, c)
	}
	for _, c := range override {
		if i, ok := index[c.TypeName()]; ok {
			out[i] = c
			continue
		}
		index[c.TypeName()] = len(out)
		out = append(out, c)
	}
	return out
}
