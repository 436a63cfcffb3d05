// Package wire frames tier payloads with the generation they were computed
// under.
//
//	offset  size  field
//	0       4     magic "FNTC"
//	4       1     version
//	5       1     kind (1 = single artifact)
//	6       8     generation, big endian
//	14      4     payload length, big endian
//	18      n     payload
package wire

import (
	"encoding/binary"
	"errors"
)

const (
	version    byte = 1
	kindSingle byte = 1

	genOff    = 6
	lenOff    = genOff + 8
	headerLen = lenOff + 4
)

var ErrCorrupt = errors.New("fontcache: corrupt tier entry")

const magic = "FNTC"

func EncodeSingle(gen uint64, payload []byte) []byte {
	b := make([]byte, 0, headerLen+len(payload))
	b = append(b, magic...)
	b = append(b, version, kindSingle)
	b = binary.BigEndian.AppendUint64(b, gen)
	b = binary.BigEndian.AppendUint32(b, uint32(len(payload)))
	return append(b, payload...)
}

// DecodeSingle parses a frame written by EncodeSingle. The payload aliases b.
// Short frames, unknown versions or kinds, and trailing bytes are ErrCorrupt.
func DecodeSingle(b []byte) (gen uint64, payload []byte, err error) {
	if len(b) < headerLen || string(b[:len(magic)]) != magic || b[4] != version || b[5] != kindSingle {
		return 0, nil, ErrCorrupt
	}
	n := binary.BigEndian.Uint32(b[lenOff:headerLen])
	if uint64(n) != uint64(len(b)-headerLen) {
		return 0, nil, ErrCorrupt
	}
	return binary.BigEndian.Uint64(b[genOff:lenOff]), b[headerLen:], nil
}
