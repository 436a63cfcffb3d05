// Package codec converts tier values to and from bytes.
package codec

// Codec encodes/decodes values V to []byte for storage in a tier provider.
// Implementations must be safe for concurrent use.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
