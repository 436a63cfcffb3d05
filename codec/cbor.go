package codec

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// CBOROptions tune NewCBOR. The zero value encodes with preferred
// (smallest) sizes and decodes with the library's default limits.
type CBOROptions struct {
	// Deterministic sorts map keys (RFC 8949 core deterministic encoding),
	// so equal glyph tables encode to equal bytes on every replica.
	Deterministic bool
	// MaxElements caps array elements and map pairs accepted by Decode.
	// 0 keeps the library default; otherwise it must be at least 16.
	MaxElements int
}

// CBOR serializes values with fxamacker/cbor. Duplicate map keys are
// rejected on decode. The zero value is not usable; call NewCBOR.
type CBOR[V any] struct {
	em cbor.EncMode
	dm cbor.DecMode
}

var _ Codec[struct{}] = CBOR[struct{}]{}

func NewCBOR[V any](opts CBOROptions) (CBOR[V], error) {
	eo := cbor.PreferredUnsortedEncOptions()
	if opts.Deterministic {
		eo = cbor.CoreDetEncOptions()
	}
	em, err := eo.EncMode()
	if err != nil {
		return CBOR[V]{}, fmt.Errorf("codec: cbor encoder: %w", err)
	}
	dm, err := cbor.DecOptions{
		DupMapKey:        cbor.DupMapKeyEnforcedAPF,
		MaxArrayElements: opts.MaxElements,
		MaxMapPairs:      opts.MaxElements,
	}.DecMode()
	if err != nil {
		return CBOR[V]{}, fmt.Errorf("codec: cbor decoder: %w", err)
	}
	return CBOR[V]{em: em, dm: dm}, nil
}

// MustCBOR is NewCBOR for package-level codecs; it panics on bad options.
func MustCBOR[V any](opts CBOROptions) CBOR[V] {
	c, err := NewCBOR[V](opts)
	if err != nil {
		panic(err)
	}
	return c
}

func (c CBOR[V]) Encode(v V) ([]byte, error) { return c.em.Marshal(v) }

func (c CBOR[V]) Decode(b []byte) (V, error) {
	var v V
	err := c.dm.Unmarshal(b, &v)
	return v, err
}
