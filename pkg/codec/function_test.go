package codec

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"
)

type rawFn struct{ body string }

type compiledFn struct {
	raw  rawFn
	size int
}

func (f compiledFn) Source() rawFn { return f.raw }

// textPacker stands in for a bit-level packer: "fn:" followed by the body.
type textPacker struct{}

func (textPacker) Pack(fn rawFn) []byte { return []byte("fn:" + fn.body) }

func (textPacker) Unpack(data []byte) (rawFn, bool) {
	s := string(data)
	if !strings.HasPrefix(s, "fn:") {
		return rawFn{}, false
	}
	return rawFn{body: strings.TrimPrefix(s, "fn:")}, true
}

var errRejected = errors.New("body is empty")

var testCompiler = CompilerFunc[rawFn, compiledFn](func(fn rawFn) (compiledFn, error) {
	if fn.body == "" {
		return compiledFn{}, errRejected
	}
	return compiledFn{raw: fn, size: len(fn.body)}, nil
})

func newTestFuncCodec() Codec[compiledFn] {
	return CompiledFunc[rawFn, compiledFn](textPacker{}, testCompiler)
}

// slot builds a function-slot stream by hand: a length prefix then payload.
func slot(length uint64, payload []byte) []byte {
	var buf bytes.Buffer
	_, _ = U128.Encode(&buf, uint128.From64(length))
	buf.Write(payload)
	return buf.Bytes()
}

func TestCompiledFunc_RoundTrip(t *testing.T) {
	c := newTestFuncCodec()
	fn, err := testCompiler(rawFn{body: "(Id x) = x"})
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := c.Encode(&buf, fn)
	require.NoError(t, err)
	assert.Equal(t, U128Size+len("fn:(Id x) = x"), n)
	assert.Equal(t, slot(uint64(len("fn:(Id x) = x")), []byte("fn:(Id x) = x")), buf.Bytes())

	got, ok, err := c.Decode(&buf)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, fn, got)
}

func TestCompiledFunc_CleanEnd(t *testing.T) {
	_, ok, err := DecodeBytes(newTestFuncCodec(), nil)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestCompiledFunc_DecodeFailures(t *testing.T) {
	testCases := []struct {
		name  string
		data  []byte
		kind  error
		cause error
	}{
		{
			name: "truncated length",
			data: []byte{5, 0, 0},
			kind: ErrTruncated,
		},
		{
			name: "payload shorter than length",
			data: slot(10, []byte("fn:ab")),
			kind: ErrTruncated,
		},
		{
			name: "length with no payload",
			data: slot(4, nil),
			kind: ErrTruncated,
		},
		{
			name: "huge length",
			data: func() []byte {
				var buf bytes.Buffer
				_, _ = U128.Encode(&buf, uint128.Max)
				return buf.Bytes()
			}(),
			kind: ErrTruncated,
		},
		{
			name:  "malformed payload",
			data:  slot(5, []byte("xx:ab")),
			kind:  ErrInvalidData,
			cause: ErrMalformedPayload,
		},
		{
			name:  "uncompilable function",
			data:  slot(3, []byte("fn:")),
			kind:  ErrInvalidData,
			cause: ErrUncompilable,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok, err := DecodeBytes(newTestFuncCodec(), tc.data)
			require.Error(t, err)
			assert.False(t, ok)
			assert.Equal(t, compiledFn{}, got)
			assert.ErrorIs(t, err, tc.kind)
			if tc.cause != nil {
				assert.ErrorIs(t, err, tc.cause)
			}
		})
	}
}

func TestCompiledFunc_CompilerErrorIsKept(t *testing.T) {
	_, _, err := DecodeBytes(newTestFuncCodec(), slot(3, []byte("fn:")))
	assert.ErrorIs(t, err, errRejected)

	var codecErr *Error
	require.True(t, errors.As(err, &codecErr))
	assert.Equal(t, KindInvalidData, codecErr.Kind)
}

// Function slots are usually stored as a map from name to a shared
// compiled function.
func TestCompiledFunc_InMapOfShared(t *testing.T) {
	c := Map(U128, Shared(newTestFuncCodec()))

	a, err := testCompiler(rawFn{body: "a"})
	require.NoError(t, err)
	b, err := testCompiler(rawFn{body: "bb"})
	require.NoError(t, err)
	value := map[uint128.Uint128]*compiledFn{
		uint128.From64(1): &a,
		uint128.From64(2): &b,
	}

	encoded, err := EncodeToBytes(c, value)
	require.NoError(t, err)

	got, ok, err := DecodeBytes(c, encoded)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 2)
	assert.Equal(t, a, *got[uint128.From64(1)])
	assert.Equal(t, b, *got[uint128.From64(2)])
	assert.NotSame(t, &a, got[uint128.From64(1)])

	// dropping the last byte leaves one slot short of its payload
	_, ok, err = DecodeBytes(c, encoded[:len(encoded)-1])
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestError_Message(t *testing.T) {
	err := invalidData(ErrMalformedPayload, "%d byte payload", 12)
	assert.Equal(t, "codec: invalid_data: 12 byte payload (caused by: payload is not a bit-packed function)", err.Error())

	assert.True(t, errors.Is(truncated("x"), ErrTruncated))
	assert.False(t, errors.Is(truncated("x"), ErrInvalidData))
}
