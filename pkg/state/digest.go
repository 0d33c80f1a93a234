package state

import (
	"encoding/binary"

	"github.com/zeebo/blake3"
)

// Digest hashes every field in FieldNames order. Each field is prefixed
// with its length so that bytes cannot move between adjacent fields.
func (h *Heap) Digest() ([]byte, error) {
	hasher := blake3.New()
	var size [8]byte
	for _, name := range FieldNames {
		data, err := h.FieldBytes(name)
		if err != nil {
			return nil, err
		}
		binary.LittleEndian.PutUint64(size[:], uint64(len(data)))
		_, _ = hasher.Write(size[:])
		_, _ = hasher.Write(data)
	}
	return hasher.Sum(nil), nil
}
