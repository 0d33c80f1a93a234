package codec

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"
)

func TestU8_RoundTrip(t *testing.T) {
	for _, v := range []uint8{0, 1, 0x7f, 0x80, 0xff} {
		var buf bytes.Buffer
		n, err := U8.Encode(&buf, v)
		require.NoError(t, err)
		assert.Equal(t, U8Size, n)

		got, ok, err := U8.Decode(&buf)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, v, got)
	}
}

func TestU128_RoundTrip(t *testing.T) {
	testCases := []struct {
		name  string
		value uint128.Uint128
	}{
		{"zero", uint128.Zero},
		{"one", uint128.From64(1)},
		{"max uint64", uint128.From64(^uint64(0))},
		{"high word only", uint128.New(0, 1)},
		{"mixed", uint128.New(0x0123456789abcdef, 0xfedcba9876543210)},
		{"max", uint128.Max},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := EncodeToBytes(U128, tc.value)
			require.NoError(t, err)
			assert.Len(t, encoded, U128Size)

			got, ok, err := DecodeBytes(U128, encoded)
			require.NoError(t, err)
			require.True(t, ok)
			assert.True(t, tc.value.Equals(got), "got %s, want %s", got, tc.value)
		})
	}
}

func TestU128_LittleEndian(t *testing.T) {
	encoded, err := EncodeToBytes(U128, uint128.From64(0x0102))
	require.NoError(t, err)

	want := make([]byte, U128Size)
	want[0] = 0x02
	want[1] = 0x01
	assert.Equal(t, want, encoded)
}

func TestI128_RoundTrip(t *testing.T) {
	testCases := []struct {
		name  string
		value Int128
	}{
		{"zero", Int128{}},
		{"one", Int128From64(1)},
		{"minus one", Int128From64(-1)},
		{"min int64", Int128From64(-1 << 63)},
		{"min", MinInt128},
		{"max", MaxInt128},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := EncodeToBytes(I128, tc.value)
			require.NoError(t, err)
			assert.Len(t, encoded, I128Size)

			got, ok, err := DecodeBytes(I128, encoded)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, tc.value, got)
		})
	}
}

func TestI128_TwosComplement(t *testing.T) {
	encoded, err := EncodeToBytes(I128, Int128From64(-1))
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{0xff}, I128Size), encoded)

	assert.Equal(t, "-170141183460469231731687303715884105728", MinInt128.String())
	assert.Equal(t, "170141183460469231731687303715884105727", MaxInt128.String())
	assert.Equal(t, -1, MinInt128.Sign())
	assert.Equal(t, 0, Int128{}.Sign())
	assert.Equal(t, Int128From64(-3), Int128From64(2).Add(Int128From64(-5)))
}

func TestPrimitive_CleanEnd(t *testing.T) {
	_, ok, err := U8.Decode(bytes.NewReader(nil))
	assert.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = U128.Decode(bytes.NewReader(nil))
	assert.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = I128.Decode(bytes.NewReader(nil))
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestPrimitive_Truncated(t *testing.T) {
	encoded, err := EncodeToBytes(U128, uint128.Max)
	require.NoError(t, err)

	for size := 1; size < U128Size; size++ {
		_, ok, err := DecodeBytes(U128, encoded[:size])
		assert.False(t, ok, "size %d", size)
		assert.ErrorIs(t, err, ErrTruncated, "size %d", size)
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF, "size %d", size)

		_, ok, err = DecodeBytes(I128, encoded[:size])
		assert.False(t, ok, "size %d", size)
		assert.ErrorIs(t, err, ErrTruncated, "size %d", size)
	}
}

func TestPrimitive_ShortReadsAreNotTruncation(t *testing.T) {
	encoded, err := EncodeToBytes(U128, uint128.New(7, 9))
	require.NoError(t, err)

	got, ok, err := U128.Decode(iotest.OneByteReader(bytes.NewReader(encoded)))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint128.New(7, 9), got)
}

func TestPrimitive_ReaderErrorPassesThrough(t *testing.T) {
	boom := errors.New("disk on fire")

	_, ok, err := U128.Decode(iotest.ErrReader(boom))
	assert.False(t, ok)
	assert.Same(t, boom, err)
}

type failingWriter struct{ err error }

func (w failingWriter) Write(p []byte) (int, error) { return 0, w.err }

func TestPrimitive_WriterErrorPassesThrough(t *testing.T) {
	boom := errors.New("disk full")

	_, err := U128.Encode(failingWriter{boom}, uint128.Max)
	assert.Same(t, boom, err)
}
