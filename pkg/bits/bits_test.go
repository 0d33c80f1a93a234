package bits

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_MSBFirst(t *testing.T) {
	w := &Writer{}
	w.WriteBit(true)
	w.WriteBits(0b0101, 4)

	assert.Equal(t, 5, w.Len())
	assert.Equal(t, []byte{0b10101000}, w.Bytes())
}

func TestReader_RoundTrip(t *testing.T) {
	w := &Writer{}
	w.WriteBits(0x2a, 6)
	w.WriteBits(0x3ff, 10)
	w.WriteBit(true)

	r := NewReader(w.Bytes())
	v, err := r.ReadBits(6)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x2a), v)

	v, err = r.ReadBits(10)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x3ff), v)

	b, err := r.ReadBit()
	require.NoError(t, err)
	assert.True(t, b)
	assert.Equal(t, 7, r.Remaining())
}

func TestReader_PastEnd(t *testing.T) {
	r := NewReader([]byte{0xff})
	_, err := r.ReadBits(9)
	assert.ErrorIs(t, err, ErrEndOfBits)
}
