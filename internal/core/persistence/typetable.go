package persistence

import (
	"fmt"

	"github.com/zeusync/worldsave/internal/core/models"
	"github.com/zeusync/worldsave/internal/core/schema/registry"
	"github.com/zeusync/worldsave/internal/core/snapshot"
)

// TypeTable maps component type names to dense indices for one save or one
// load. It must not outlive that call: indices depend on registry order at
// the time the table was built.
type TypeTable struct {
	index map[string]uint32
	names []string
	// types[i] is zero for names the registry could not resolve.
	types []models.ComponentType
}

// BuildTypeTable assigns indices in the order types are given, skipping
// repeated names.
func BuildTypeTable(types []models.ComponentType) *TypeTable {
	t := &TypeTable{index: make(map[string]uint32, len(types))}
	for _, typ := range types {
		if _, ok := t.index[typ.Name]; ok {
			continue
		}
		t.index[typ.Name] = uint32(len(t.names))
		t.names = append(t.names, typ.Name)
		t.types = append(t.types, typ)
	}
	return t
}

// LoadTypeTable rebuilds a table from the names stored in a snapshot. Names
// the registry does not know keep their slot so that later indices stay
// aligned; they only fail when a component actually references them.
func LoadTypeTable(names []string, types registry.TypeRegistry) *TypeTable {
	t := &TypeTable{
		index: make(map[string]uint32, len(names)),
		names: append([]string(nil), names...),
		types: make([]models.ComponentType, len(names)),
	}
	for i, name := range names {
		if _, ok := t.index[name]; !ok {
			t.index[name] = uint32(i)
		}
		if typ, err := types.TypeOf(name); err == nil {
			t.types[i] = typ
		}
	}
	return t
}

// IndexOf returns the index assigned to a type name.
func (t *TypeTable) IndexOf(name string) (uint32, error) {
	i, ok := t.index[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s not in type table", ErrUnknownType, name)
	}
	return i, nil
}

// TypeAt returns the component type stored at index.
func (t *TypeTable) TypeAt(index uint32) (models.ComponentType, error) {
	if int(index) >= len(t.types) {
		return models.ComponentType{}, fmt.Errorf("%w: %d (table has %d types)", ErrIndexOutOfRange, index, len(t.types))
	}
	typ := t.types[index]
	if typ.IsZero() {
		return models.ComponentType{}, fmt.Errorf("%w: %s at index %d", ErrUnknownType, t.names[index], index)
	}
	return typ, nil
}

func (t *TypeTable) Len() int {
	return len(t.names)
}

// Names returns type names in index order.
func (t *TypeTable) Names() []string {
	return append([]string(nil), t.names...)
}

func (t *TypeTable) record() *snapshot.TypeTable {
	return &snapshot.TypeTable{Names: t.Names()}
}
