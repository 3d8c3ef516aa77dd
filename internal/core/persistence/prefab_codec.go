package persistence

import (
	"fmt"

	"github.com/zeusync/worldsave/internal/core/models"
	"github.com/zeusync/worldsave/internal/core/schema/registry"
	"github.com/zeusync/worldsave/internal/core/snapshot"
)

// PrefabCodec converts prefabs to and from snapshot records. A nil table
// selects verbose (name-tagged) components.
type PrefabCodec struct {
	components componentCodec
}

func NewPrefabCodec(types registry.TypeRegistry, values ValueCodec) *PrefabCodec {
	return &PrefabCodec{components: componentCodec{types: types, values: values}}
}

func (c *PrefabCodec) Serialize(p models.PrefabData, table *TypeTable) (snapshot.Prefab, error) {
	components, err := c.components.encodeAll(p.Components, table)
	if err != nil {
		return snapshot.Prefab{}, fmt.Errorf("prefab %s: %w", p.Name, err)
	}
	return snapshot.Prefab{Name: p.Name, Parent: p.Parent, Components: components}, nil
}

// Deserialize decodes a record without registering it anywhere.
func (c *PrefabCodec) Deserialize(rec snapshot.Prefab, table *TypeTable) (models.PrefabData, error) {
	components, err := c.components.decodeAll(rec.Components, table)
	if err != nil {
		return models.PrefabData{}, fmt.Errorf("prefab %s: %w", rec.Name, err)
	}
	return models.PrefabData{Name: rec.Name, Parent: rec.Parent, Components: components}, nil
}
