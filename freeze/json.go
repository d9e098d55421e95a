package freeze

import "encoding/json"

// JSON is a Codec backed by encoding/json. Map keys are emitted sorted, so
// equal maps encode to equal bytes. The zero value is ready to use.
type JSON[V any] struct{}

func (JSON[V]) Encode(v V) ([]byte, error) { return json.Marshal(v) }

func (JSON[V]) Decode(b []byte) (V, error) {
	var v V
	err := json.Unmarshal(b, &v)
	return v, err
}
