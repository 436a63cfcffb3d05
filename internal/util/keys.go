package util

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// ContentKey returns a deterministic key for a font's bytes:
// prefix + ":" + first 16 bytes (32 hex chars) of sha256(offset u32 be || data).
// Two refs over identical bytes and offset map to the same key in any process.
func ContentKey(prefix string, data []byte, offset uint32) string {
	h := sha256.New()
	var u4 [4]byte
	binary.BigEndian.PutUint32(u4[:], offset)
	h.Write(u4[:])
	h.Write(data)
	sum := h.Sum(nil)
	return prefix + ":" + hex.EncodeToString(sum[:16])
}
