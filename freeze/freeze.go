// Package freeze provides stored-form strategies for cocache.
//
// Encoded turns any Codec into a cocache.Freezer: records are stored as their
// encoded bytes and decoded on every read. Callers never share memory with
// the cache, and "did this write change anything" becomes a byte comparison,
// so the codec should be deterministic:
//
//   - JSON:     encoding/json, map keys sorted.
//   - CBOR:     fxamacker/cbor, deterministic mode sorts map keys.
//   - Msgpack:  vmihailenco/msgpack, map keys sorted.
//   - Protobuf: google.golang.org/protobuf, deterministic marshaling.
//
// Usage:
//
//	c, _ := cocache.New[Slide](cocache.Options[Slide]{
//	    Freezer: freeze.Encoded[Slide]{Codec: freeze.MustCBOR[Slide](true)},
//	})
package freeze

import (
	"bytes"
	"fmt"
)

// Codec encodes/decodes values V to []byte.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

// Encoded stores records as the bytes produced by Codec.
//
// MaxThaw bounds the size of a stored form accepted on read; 0 disables the
// check. Records larger than MaxThaw are still accepted on write, so a limit
// set too low turns into thaw errors rather than silent loss.
type Encoded[R any] struct {
	Codec   Codec[R]
	MaxThaw int
}

func (e Encoded[R]) Freeze(record R) (any, error) {
	if e.Codec == nil {
		return nil, fmt.Errorf("freeze: no codec configured")
	}
	return e.Codec.Encode(record)
}

func (e Encoded[R]) Thaw(stored any) (R, error) {
	var zero R
	b, ok := stored.([]byte)
	if !ok {
		return zero, fmt.Errorf("freeze: stored form is %T, want []byte", stored)
	}
	if e.MaxThaw > 0 && len(b) > e.MaxThaw {
		return zero, fmt.Errorf("freeze: payload too large: %d > %d", len(b), e.MaxThaw)
	}
	if e.Codec == nil {
		return zero, fmt.Errorf("freeze: no codec configured")
	}
	return e.Codec.Decode(b)
}

// Equal compares two stored forms produced by Encoded. It is a cheaper
// drop-in for cocache.Options.Equal when every record goes through Encoded.
func Equal(a, b any) bool {
	ab, aok := a.([]byte)
	bb, bok := b.([]byte)
	if !aok || !bok {
		return false
	}
	return bytes.Equal(ab, bb)
}
