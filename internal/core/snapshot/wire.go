package snapshot

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/zeusync/worldsave/pkg/generic"
)

var ErrMalformed = errors.New("malformed snapshot")

const (
	worldEntity    protowire.Number = 1
	worldPrefab    protowire.Number = 2
	worldNextID    protowire.Number = 3
	worldFreedID   protowire.Number = 4
	worldTypeTable protowire.Number = 5

	typeTableName protowire.Number = 1

	entityID         protowire.Number = 1
	entityPersistent protowire.Number = 2
	entityComponent  protowire.Number = 3
	entityPrefab     protowire.Number = 4

	prefabName      protowire.Number = 1
	prefabParent    protowire.Number = 2
	prefabComponent protowire.Number = 3

	componentTypeIndex protowire.Number = 1
	componentTypeName  protowire.Number = 2
	componentPayload   protowire.Number = 3
)

// scratch holds buffers for nested messages, which must be fully encoded
// before their length prefix can be written.
var scratch = generic.NewBytesPool(512, 1<<20)

// Marshal encodes w in the protobuf wire format.
func Marshal(w *World) []byte {
	var b []byte
	for i := range w.Entities {
		e := &w.Entities[i]
		b = appendMessage(b, worldEntity, func(dst []byte) []byte { return appendEntity(dst, e) })
	}
	for i := range w.Prefabs {
		p := &w.Prefabs[i]
		b = appendMessage(b, worldPrefab, func(dst []byte) []byte { return appendPrefab(dst, p) })
	}
	if w.NextID != 0 {
		b = protowire.AppendTag(b, worldNextID, protowire.VarintType)
		b = protowire.AppendVarint(b, w.NextID)
	}
	if len(w.FreedIDs) > 0 {
		b = appendMessage(b, worldFreedID, func(dst []byte) []byte {
			for _, id := range w.FreedIDs {
				dst = protowire.AppendVarint(dst, id)
			}
			return dst
		})
	}
	if w.TypeTable != nil {
		b = appendMessage(b, worldTypeTable, func(dst []byte) []byte {
			for _, name := range w.TypeTable.Names {
				dst = protowire.AppendTag(dst, typeTableName, protowire.BytesType)
				dst = protowire.AppendString(dst, name)
			}
			return dst
		})
	}
	return b
}

func appendMessage(b []byte, num protowire.Number, build func([]byte) []byte) []byte {
	buf := scratch.Get()
	*buf = build((*buf)[:0])
	b = protowire.AppendTag(b, num, protowire.BytesType)
	b = protowire.AppendBytes(b, *buf)
	scratch.Put(buf)
	return b
}

func appendEntity(b []byte, e *Entity) []byte {
	if e.ID != 0 {
		b = protowire.AppendTag(b, entityID, protowire.VarintType)
		b = protowire.AppendVarint(b, e.ID)
	}
	if e.Persistent {
		b = protowire.AppendTag(b, entityPersistent, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeBool(true))
	}
	for i := range e.Components {
		c := &e.Components[i]
		b = appendMessage(b, entityComponent, func(dst []byte) []byte { return appendComponent(dst, c) })
	}
	if e.Prefab != "" {
		b = protowire.AppendTag(b, entityPrefab, protowire.BytesType)
		b = protowire.AppendString(b, e.Prefab)
	}
	return b
}

func appendPrefab(b []byte, p *Prefab) []byte {
	b = protowire.AppendTag(b, prefabName, protowire.BytesType)
	b = protowire.AppendString(b, p.Name)
	if p.Parent != "" {
		b = protowire.AppendTag(b, prefabParent, protowire.BytesType)
		b = protowire.AppendString(b, p.Parent)
	}
	for i := range p.Components {
		c := &p.Components[i]
		b = appendMessage(b, prefabComponent, func(dst []byte) []byte { return appendComponent(dst, c) })
	}
	return b
}

func appendComponent(b []byte, c *Component) []byte {
	if c.TypeName != "" {
		b = protowire.AppendTag(b, componentTypeName, protowire.BytesType)
		b = protowire.AppendString(b, c.TypeName)
	} else {
		b = protowire.AppendTag(b, componentTypeIndex, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(c.TypeIndex))
	}
	b = protowire.AppendTag(b, componentPayload, protowire.BytesType)
	b = protowire.AppendBytes(b, c.Payload)
	return b
}

// Unmarshal decodes a World. Unknown fields are skipped.
func Unmarshal(data []byte) (*World, error) {
	w := &World{}
	err := walk(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case worldEntity:
			v, n, err := consumeBytes(typ, b)
			if err != nil {
				return 0, err
			}
			e, err := unmarshalEntity(v)
			if err != nil {
				return 0, fmt.Errorf("entity %d: %w", len(w.Entities), err)
			}
			w.Entities = append(w.Entities, e)
			return n, nil
		case worldPrefab:
			v, n, err := consumeBytes(typ, b)
			if err != nil {
				return 0, err
			}
			p, err := unmarshalPrefab(v)
			if err != nil {
				return 0, fmt.Errorf("prefab %d: %w", len(w.Prefabs), err)
			}
			w.Prefabs = append(w.Prefabs, p)
			return n, nil
		case worldNextID:
			v, n, err := consumeVarint(typ, b)
			w.NextID = v
			return n, err
		case worldFreedID:
			return consumeUint64s(typ, b, &w.FreedIDs)
		case worldTypeTable:
			v, n, err := consumeBytes(typ, b)
			if err != nil {
				return 0, err
			}
			table, err := unmarshalTypeTable(v)
			if err != nil {
				return 0, fmt.Errorf("type table: %w", err)
			}
			w.TypeTable = table
			return n, nil
		}
		return skipField, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return w, nil
}

func unmarshalTypeTable(data []byte) (*TypeTable, error) {
	t := &TypeTable{Names: []string{}}
	err := walk(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != typeTableName {
			return skipField, nil
		}
		v, n, err := consumeBytes(typ, b)
		t.Names = append(t.Names, string(v))
		return n, err
	})
	return t, err
}

func unmarshalEntity(data []byte) (Entity, error) {
	var e Entity
	err := walk(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case entityID:
			v, n, err := consumeVarint(typ, b)
			e.ID = v
			return n, err
		case entityPersistent:
			v, n, err := consumeVarint(typ, b)
			e.Persistent = protowire.DecodeBool(v)
			return n, err
		case entityComponent:
			v, n, err := consumeBytes(typ, b)
			if err != nil {
				return 0, err
			}
			c, err := unmarshalComponent(v)
			if err != nil {
				return 0, err
			}
			e.Components = append(e.Components, c)
			return n, nil
		case entityPrefab:
			v, n, err := consumeBytes(typ, b)
			e.Prefab = string(v)
			return n, err
		}
		return skipField, nil
	})
	return e, err
}

func unmarshalPrefab(data []byte) (Prefab, error) {
	var p Prefab
	err := walk(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case prefabName:
			v, n, err := consumeBytes(typ, b)
			p.Name = string(v)
			return n, err
		case prefabParent:
			v, n, err := consumeBytes(typ, b)
			p.Parent = string(v)
			return n, err
		case prefabComponent:
			v, n, err := consumeBytes(typ, b)
			if err != nil {
				return 0, err
			}
			c, err := unmarshalComponent(v)
			if err != nil {
				return 0, err
			}
			p.Components = append(p.Components, c)
			return n, nil
		}
		return skipField, nil
	})
	return p, err
}

func unmarshalComponent(data []byte) (Component, error) {
	var c Component
	err := walk(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case componentTypeIndex:
			v, n, err := consumeVarint(typ, b)
			if err == nil && v > uint64(^uint32(0)) {
				err = fmt.Errorf("type index %d overflows uint32", v)
			}
			c.TypeIndex = uint32(v)
			return n, err
		case componentTypeName:
			v, n, err := consumeBytes(typ, b)
			c.TypeName = string(v)
			return n, err
		case componentPayload:
			v, n, err := consumeBytes(typ, b)
			c.Payload = append([]byte(nil), v...)
			return n, err
		}
		return skipField, nil
	})
	return c, err
}

const skipField = -1

type fieldFunc func(num protowire.Number, typ protowire.Type, b []byte) (int, error)

func walk(data []byte, fn fieldFunc) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		n, err := fn(num, typ, data)
		if err != nil {
			return fmt.Errorf("field %d: %w", num, err)
		}
		if n == skipField {
			n = protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return protowire.ParseError(n)
			}
		}
		data = data[n:]
	}
	return nil
}

func consumeBytes(typ protowire.Type, b []byte) ([]byte, int, error) {
	if typ != protowire.BytesType {
		return nil, 0, fmt.Errorf("wire type %d, want bytes", typ)
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, protowire.ParseError(n)
	}
	return v, n, nil
}

func consumeVarint(typ protowire.Type, b []byte) (uint64, int, error) {
	if typ != protowire.VarintType {
		return 0, 0, fmt.Errorf("wire type %d, want varint", typ)
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, protowire.ParseError(n)
	}
	return v, n, nil
}

// consumeUint64s accepts both packed and unpacked repeated varints.
func consumeUint64s(typ protowire.Type, b []byte, out *[]uint64) (int, error) {
	if typ == protowire.VarintType {
		v, n, err := consumeVarint(typ, b)
		if err == nil {
			*out = append(*out, v)
		}
		return n, err
	}
	packed, n, err := consumeBytes(typ, b)
	if err != nil {
		return 0, err
	}
	for len(packed) > 0 {
		v, m := protowire.ConsumeVarint(packed)
		if m < 0 {
			return 0, protowire.ParseError(m)
		}
		*out = append(*out, v)
		packed = packed[m:]
	}
	return n, nil
}
