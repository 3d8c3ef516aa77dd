package models

import "github.com/goccy/go-json"

// ComponentType is the registry-side description of a component type: its
// persisted name and a factory producing a zero value to decode into.
type ComponentType struct {
	Name    string
	factory func() Component
}

// NewComponentType describes a component type.
func NewComponentType(name string, factory func() Component) ComponentType {
	return ComponentType{Name: name, factory: factory}
}

// New returns a fresh zero-valued component of this type.
func (t ComponentType) New() Component {
	if t.factory == nil {
		return &RawComponent{Type: t.Name}
	}
	return t.factory()
}

// IsZero reports whether t describes no type at all.
func (t ComponentType) IsZero() bool {
	return t.Name == ""
}

// RawComponent carries a component whose Go type is not compiled in. The
// payload is kept verbatim so that it re-encodes byte for byte.
type RawComponent struct {
	Type string
	Data json.RawMessage
}

func (r *RawComponent) TypeName() string { return r.Type }

func (r *RawComponent) Clone() Component {
	data := make(json.RawMessage, len(r.Data))
	copy(data, r.Data)
	return &RawComponent{Type: r.Type, Data: data}
}

// Serialize returns the raw payload.
func (r *RawComponent) Serialize() ([]byte, error) {
	return r.Data, nil
}

// Deserialize keeps a copy of data as the payload.
func (r *RawComponent) Deserialize(data []byte) error {
	r.Data = append(json.RawMessage(nil), data...)
	return nil
}

// RawType returns a ComponentType that decodes into RawComponent.
func RawType(name string) ComponentType {
	return NewComponentType(name, func() Component { return &RawComponent{Type: name} })
}
