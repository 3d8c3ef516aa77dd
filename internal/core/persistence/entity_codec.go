package persistence

import (
	"fmt"

	"github.com/zeusync/worldsave/internal/core/models"
	"github.com/zeusync/worldsave/internal/core/schema/registry"
	"github.com/zeusync/worldsave/internal/core/snapshot"
)

// EntityCodec converts entities to and from snapshot records.
type EntityCodec struct {
	components componentCodec
}

func NewEntityCodec(types registry.TypeRegistry, values ValueCodec) *EntityCodec {
	return &EntityCodec{components: componentCodec{types: types, values: values}}
}

// Serialize encodes e. It reports ok == false, with no error, for a
// non-persistent entity in a non-verbose save; the caller still owes that
// entity's id to the id-allocation bookkeeping.
func (c *EntityCodec) Serialize(e models.EntityData, table *TypeTable, verbose bool) (rec snapshot.Entity, ok bool, err error) {
	if !verbose && !e.Persistent {
		return snapshot.Entity{}, false, nil
	}
	components, err := c.components.encodeAll(e.Components, table)
	if err != nil {
		return snapshot.Entity{}, false, fmt.Errorf("entity %d: %w", e.ID, err)
	}
	return snapshot.Entity{
		ID:         uint64(e.ID),
		Persistent: e.Persistent,
		Prefab:     e.Prefab,
		Components: components,
	}, true, nil
}

// Deserialize decodes a record without registering it anywhere.
func (c *EntityCodec) Deserialize(rec snapshot.Entity, table *TypeTable) (models.EntityData, error) {
	components, err := c.components.decodeAll(rec.Components, table)
	if err != nil {
		return models.EntityData{}, fmt.Errorf("entity %d: %w", rec.ID, err)
	}
	return models.EntityData{
		ID:         models.EntityID(rec.ID),
		Persistent: rec.Persistent,
		Prefab:     rec.Prefab,
		Components: components,
	}, nil
}
