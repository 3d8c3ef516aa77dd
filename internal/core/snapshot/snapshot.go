// Package snapshot defines the persisted world layout and its binary form.
//
// The layout uses protobuf wire encoding so that snapshots stay readable by
// any protobuf tooling given the schema below:
//
//	message World {
//	  repeated Entity entity = 1;
//	  repeated Prefab prefab = 2;
//	  uint64 next_entity_id = 3;
//	  repeated uint64 freed_entity_id = 4 [packed = true];
//	  ComponentTypeTable component_type_table = 5;
//	}
//	message ComponentTypeTable { repeated string name = 1; }
//	message Entity {
//	  uint64 id = 1;
//	  bool persistent = 2;
//	  repeated Component component = 3;
//	  string prefab = 4;
//	}
//	message Prefab {
//	  string name = 1;
//	  string parent_name = 2;
//	  repeated Component component = 3;
//	}
//	message Component {
//	  uint32 type_index = 1;
//	  string type_name = 2;
//	  bytes payload = 3;
//	}
package snapshot

// World is the aggregate written by one save and consumed by one load.
// A non-nil TypeTable marks a compact snapshot; nil marks a verbose one.
type World struct {
	TypeTable *TypeTable
	Prefabs   []Prefab
	Entities  []Entity
	NextID    uint64
	FreedIDs  []uint64
}

// Compact reports whether components reference the type table by index.
func (w *World) Compact() bool {
	return w.TypeTable != nil
}

// TypeTable lists component type names; a component's TypeIndex points into Names.
type TypeTable struct {
	Names []string
}

// Len is safe on a nil table.
func (t *TypeTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Names)
}

type Entity struct {
	ID         uint64
	Persistent bool
	Prefab     string
	Components []Component
}

type Prefab struct {
	Name       string
	Parent     string
	Components []Component
}

// Component is one encoded component. Compact snapshots set TypeIndex,
// verbose ones set TypeName.
type Component struct {
	TypeIndex uint32
	TypeName  string
	Payload   []byte
}
