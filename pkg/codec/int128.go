package codec

import (
	"math/big"

	"lukechampine.com/uint128"
)

// Int128 is a signed 128-bit integer in two's complement.
type Int128 struct {
	Lo uint64
	Hi int64
}

// Bounds of Int128.
var (
	MinInt128 = Int128{Lo: 0, Hi: -1 << 63}
	MaxInt128 = Int128{Lo: ^uint64(0), Hi: 1<<63 - 1}
)

// Int128From64 sign-extends v.
func Int128From64(v int64) Int128 {
	hi := int64(0)
	if v < 0 {
		hi = -1
	}
	return Int128{Lo: uint64(v), Hi: hi}
}

// Add returns x+y, wrapping on overflow.
func (x Int128) Add(y Int128) Int128 {
	return int128FromBits(x.bits().AddWrap(y.bits()))
}

// Sign returns -1, 0 or +1.
func (x Int128) Sign() int {
	switch {
	case x.Hi < 0:
		return -1
	case x.Hi == 0 && x.Lo == 0:
		return 0
	default:
		return 1
	}
}

// Big returns x as a big.Int.
func (x Int128) Big() *big.Int {
	if x.Hi >= 0 {
		return x.bits().Big()
	}
	// -(^x + 1)
	neg := int128FromBits(uint128.Uint128{Lo: ^x.Lo, Hi: ^uint64(x.Hi)}.AddWrap64(1))
	b := neg.bits().Big()
	return b.Neg(b)
}

func (x Int128) String() string {
	return x.Big().String()
}

func (x Int128) bits() uint128.Uint128 {
	return uint128.New(x.Lo, uint64(x.Hi))
}

func int128FromBits(u uint128.Uint128) Int128 {
	return Int128{Lo: u.Lo, Hi: int64(u.Hi)}
}
