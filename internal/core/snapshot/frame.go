package snapshot

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Frame layout: magic(4) | version(1) | xxhash64(body)(8, big endian) | body.
const (
	frameVersion    byte = 1
	frameHeaderSize      = 4 + 1 + 8
)

var frameMagic = [4]byte{'W', 'S', 'N', 'P'}

var (
	ErrBadMagic           = errors.New("not a world snapshot")
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
	ErrChecksumMismatch   = errors.New("snapshot checksum mismatch")
)

// Frame wraps an encoded body with a header and checksum for storage.
func Frame(body []byte) []byte {
	out := make([]byte, frameHeaderSize, frameHeaderSize+len(body))
	copy(out, frameMagic[:])
	out[4] = frameVersion
	binary.BigEndian.PutUint64(out[5:], xxhash.Sum64(body))
	return append(out, body...)
}

// Unframe validates the header and checksum and returns the body.
func Unframe(data []byte) ([]byte, error) {
	if len(data) < frameHeaderSize || [4]byte(data[:4]) != frameMagic {
		return nil, ErrBadMagic
	}
	if data[4] != frameVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, data[4])
	}
	body := data[frameHeaderSize:]
	if want, got := binary.BigEndian.Uint64(data[5:]), xxhash.Sum64(body); want != got {
		return nil, fmt.Errorf("%w: header %016x, body %016x", ErrChecksumMismatch, want, got)
	}
	return body, nil
}

// Encode marshals and frames w.
func Encode(w *World) []byte {
	return Frame(Marshal(w))
}

// Decode unframes and unmarshals data.
func Decode(data []byte) (*World, error) {
	body, err := Unframe(data)
	if err != nil {
		return nil, err
	}
	return Unmarshal(body)
}
