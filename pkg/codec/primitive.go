package codec

import (
	"io"

	"lukechampine.com/uint128"
)

// Fixed widths of the primitive encodings, in bytes.
const (
	U8Size   = 1
	U128Size = 16
	I128Size = 16
)

// U8 encodes a single byte.
var U8 Codec[uint8] = u8Codec{}

// U128 encodes an unsigned 128-bit integer as 16 little-endian bytes.
var U128 Codec[uint128.Uint128] = u128Codec{}

// I128 encodes a signed 128-bit integer as 16 little-endian bytes in two's
// complement.
var I128 Codec[Int128] = i128Codec{}

type u8Codec struct{}

func (u8Codec) Encode(w io.Writer, v uint8) (int, error) {
	return w.Write([]byte{v})
}

func (u8Codec) Decode(r io.Reader) (uint8, bool, error) {
	var buf [U8Size]byte
	ok, err := readFixed(r, buf[:])
	if !ok {
		return 0, false, err
	}
	return buf[0], true, nil
}

type u128Codec struct{}

func (u128Codec) Encode(w io.Writer, v uint128.Uint128) (int, error) {
	var buf [U128Size]byte
	v.PutBytes(buf[:])
	return w.Write(buf[:])
}

func (u128Codec) Decode(r io.Reader) (uint128.Uint128, bool, error) {
	var buf [U128Size]byte
	ok, err := readFixed(r, buf[:])
	if !ok {
		return uint128.Zero, false, err
	}
	return uint128.FromBytes(buf[:]), true, nil
}

type i128Codec struct{}

func (i128Codec) Encode(w io.Writer, v Int128) (int, error) {
	var buf [I128Size]byte
	v.bits().PutBytes(buf[:])
	return w.Write(buf[:])
}

func (i128Codec) Decode(r io.Reader) (Int128, bool, error) {
	var buf [I128Size]byte
	ok, err := readFixed(r, buf[:])
	if !ok {
		return Int128{}, false, err
	}
	return int128FromBits(uint128.FromBytes(buf[:])), true, nil
}
