package codec

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"
)

// Msgpack serializes values with vmihailenco/msgpack. Map keys are sorted
// and integers packed to their smallest width, so equal tables encode to
// equal bytes. The zero value writes structs as maps keyed by field name.
type Msgpack[V any] struct {
	// Positional writes structs as arrays in field order. Wide metric
	// records shrink noticeably, but adding or reordering a field makes
	// every stored frame undecodable; change the tier namespace with it.
	Positional bool
}

var _ Codec[struct{}] = Msgpack[struct{}]{}

func (c Msgpack[V]) Encode(v V) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.GetEncoder()
	defer msgpack.PutEncoder(enc)

	enc.Reset(&buf)
	enc.SetSortMapKeys(true)
	enc.UseCompactInts(true)
	enc.UseArrayEncodedStructs(c.Positional)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode accepts both struct layouts regardless of Positional.
func (Msgpack[V]) Decode(b []byte) (V, error) {
	dec := msgpack.GetDecoder()
	defer msgpack.PutDecoder(dec)

	var v V
	dec.Reset(bytes.NewReader(b))
	err := dec.Decode(&v)
	return v, err
}
