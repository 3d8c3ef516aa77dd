package encoding

import (
	"bytes"
	"errors"
	"io"

	"github.com/goccy/go-json"
)

var (
	ErrTrailingData = errors.New("trailing data after JSON value")
	ErrNullValue    = errors.New("null JSON value")
)

var _ Codec = JSON{}

// JSON is a Codec backed by goccy/go-json. Unknown fields are rejected on
// decode so that a payload written for a different type does not silently
// decode into a zero value. The payload must hold exactly one non-null value.
type JSON struct{}

func (JSON) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSON) Unmarshal(data []byte, v any) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return ErrNullValue
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return ErrTrailingData
	}
	return nil
}

func (JSON) Name() string { return "json" }
