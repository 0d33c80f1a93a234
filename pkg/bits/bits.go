// Package bits implements the bit-packed encoding of raw functions stored
// in function slots.
//
// Fields are packed most significant bit first and are not byte aligned;
// only the final byte is padded with zero bits.
package bits

import "errors"

// ErrEndOfBits is returned when a read runs past the last bit.
var ErrEndOfBits = errors.New("bits: read past end")

// Writer accumulates bits.
type Writer struct {
	buf []byte
	n   int // bits written
}

// WriteBit appends one bit.
func (w *Writer) WriteBit(b bool) {
	if w.n%8 == 0 {
		w.buf = append(w.buf, 0)
	}
	if b {
		w.buf[w.n/8] |= 0x80 >> (w.n % 8)
	}
	w.n++
}

// WriteBits appends the low width bits of v, high bit first.
func (w *Writer) WriteBits(v uint64, width int) {
	for i := width - 1; i >= 0; i-- {
		w.WriteBit(v>>i&1 == 1)
	}
}

// Len returns the number of bits written.
func (w *Writer) Len() int {
	return w.n
}

// Bytes returns the written bits, zero padded to a whole byte.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Reader consumes bits from a byte slice.
type Reader struct {
	buf []byte
	pos int // bits read
}

// NewReader returns a Reader positioned at the first bit of data.
func NewReader(data []byte) *Reader {
	return &Reader{buf: data}
}

// ReadBit returns the next bit.
func (r *Reader) ReadBit() (bool, error) {
	if r.pos >= len(r.buf)*8 {
		return false, ErrEndOfBits
	}
	b := r.buf[r.pos/8]&(0x80>>(r.pos%8)) != 0
	r.pos++
	return b, nil
}

// ReadBits reads width bits as an unsigned number, high bit first.
func (r *Reader) ReadBits(width int) (uint64, error) {
	var v uint64
	for i := 0; i < width; i++ {
		b, err := r.ReadBit()
		if err != nil {
			return 0, err
		}
		v <<= 1
		if b {
			v |= 1
		}
	}
	return v, nil
}

// Remaining returns the number of unread bits.
func (r *Reader) Remaining() int {
	return len(r.buf)*8 - r.pos
}
