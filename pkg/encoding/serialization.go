package encoding

// Serializable is implemented by values that own their binary form. Codecs
// prefer it over their generic encoding.
type Serializable interface {
	Serialize() ([]byte, error)
	Deserialize([]byte) error
}

// Codec encodes and decodes arbitrary values.
type Codec interface {
	// Marshal serializes v into bytes.
	Marshal(v any) ([]byte, error)
	// Unmarshal deserializes data into v, which must be a pointer.
	Unmarshal(data []byte, v any) error
	// Name identifies the codec in logs and diagnostics.
	Name() string
}

// Marshal uses v's own Serialize when available and falls back to codec.
func Marshal(codec Codec, v any) ([]byte, error) {
	if s, ok := v.(Serializable); ok {
		return s.Serialize()
	}
	return codec.Marshal(v)
}

// Unmarshal uses v's own Deserialize when available and falls back to codec.
func Unmarshal(codec Codec, data []byte, v any) error {
	if s, ok := v.(Serializable); ok {
		return s.Deserialize(data)
	}
	return codec.Unmarshal(data, v)
}
