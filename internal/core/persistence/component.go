package persistence

import (
	"errors"
	"fmt"

	"github.com/zeusync/worldsave/internal/core/models"
	"github.com/zeusync/worldsave/internal/core/schema/registry"
	"github.com/zeusync/worldsave/internal/core/snapshot"
	"github.com/zeusync/worldsave/pkg/encoding"
)

// ValueCodec turns a component's field values into an opaque payload and back.
type ValueCodec interface {
	Encode(c models.Component) ([]byte, error)
	Decode(typ models.ComponentType, data []byte) (models.Component, error)
}

type valueCodec struct {
	codec encoding.Codec
}

// NewValueCodec adapts a generic codec. Components implementing
// encoding.Serializable bypass it.
func NewValueCodec(codec encoding.Codec) ValueCodec {
	return valueCodec{codec: codec}
}

// DefaultValueCodec encodes payloads as JSON.
func DefaultValueCodec() ValueCodec {
	return NewValueCodec(encoding.JSON{})
}

func (v valueCodec) Encode(c models.Component) ([]byte, error) {
	data, err := encoding.Marshal(v.codec, c)
	if err != nil {
		return nil, fmt.Errorf("%w: encode %s with %s: %w", ErrMalformedComponent, c.TypeName(), v.codec.Name(), err)
	}
	return data, nil
}

func (v valueCodec) Decode(typ models.ComponentType, data []byte) (models.Component, error) {
	c := typ.New()
	if err := encoding.Unmarshal(v.codec, data, c); err != nil {
		return nil, fmt.Errorf("%w: decode %s with %s: %w", ErrMalformedComponent, typ.Name, v.codec.Name(), err)
	}
	return c, nil
}

// componentCodec tags payloads with a type index when a table is in use and
// with the type name otherwise.
type componentCodec struct {
	types  registry.TypeRegistry
	values ValueCodec
}

func (cc componentCodec) encodeAll(components []models.Component, table *TypeTable) ([]snapshot.Component, error) {
	if len(components) == 0 {
		return nil, nil
	}
	out := make([]snapshot.Component, len(components))
	for i, c := range components {
		rec, err := cc.encode(c, table)
		if err != nil {
			return nil, err
		}
		out[i] = rec
	}
	return out, nil
}

func (cc componentCodec) encode(c models.Component, table *TypeTable) (snapshot.Component, error) {
	payload, err := cc.values.Encode(c)
	if err != nil {
		return snapshot.Component{}, err
	}
	rec := snapshot.Component{Payload: payload}
	if table == nil {
		rec.TypeName = c.TypeName()
		return rec, nil
	}
	rec.TypeIndex, err = table.IndexOf(c.TypeName())
	if err != nil {
		return snapshot.Component{}, err
	}
	return rec, nil
}

func (cc componentCodec) decodeAll(records []snapshot.Component, table *TypeTable) ([]models.Component, error) {
	if len(records) == 0 {
		return nil, nil
	}
	out := make([]models.Component, len(records))
	seen := make(map[string]struct{}, len(records))
	for i, rec := range records {
		c, err := cc.decode(rec, table)
		if err != nil {
			return nil, err
		}
		// An entity or prefab holds at most one component per type.
		if _, dup := seen[c.TypeName()]; dup {
			return nil, fmt.Errorf("%w: duplicate component type %s", ErrMalformedComponent, c.TypeName())
		}
		seen[c.TypeName()] = struct{}{}
		out[i] = c
	}
	return out, nil
}

func (cc componentCodec) decode(rec snapshot.Component, table *TypeTable) (models.Component, error) {
	typ, err := cc.resolve(rec, table)
	if err != nil {
		return nil, err
	}
	return cc.values.Decode(typ, rec.Payload)
}

// resolve prefers an inline name, so a record written in verbose form still
// decodes inside a compact snapshot.
func (cc componentCodec) resolve(rec snapshot.Component, table *TypeTable) (models.ComponentType, error) {
	if rec.TypeName != "" {
		return cc.types.TypeOf(rec.TypeName)
	}
	if table == nil {
		return models.ComponentType{}, fmt.Errorf("%w: index %d without a type table", ErrUnknownComponentIndex, rec.TypeIndex)
	}
	typ, err := table.TypeAt(rec.TypeIndex)
	if err != nil {
		return models.ComponentType{}, errors.Join(ErrUnknownComponentIndex, err)
	}
	return typ, nil
}
