package codec

import (
	"bytes"
	"io"
)

// Codec converts values of type T to and from a raw byte stream.
//
// Encode writes v and returns the number of bytes written. Decode reads one
// value: it returns ok=false with a nil error when the stream was already at
// its end before the first byte (clean end), and an error for any shorter
// read or invalid content.
type Codec[T any] interface {
	Encode(w io.Writer, v T) (int, error)
	Decode(r io.Reader) (value T, ok bool, err error)
}

// EncodeToBytes encodes v into a fresh byte slice.
func EncodeToBytes[T any](c Codec[T], v T) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := c.Encode(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeBytes decodes a single value from data. An empty slice is a clean
// end and reports ok=false.
func DecodeBytes[T any](c Codec[T], data []byte) (T, bool, error) {
	return c.Decode(bytes.NewReader(data))
}

// readFixed fills buf from r. Zero bytes is a clean end; a partial fill is
// a truncation.
func readFixed(r io.Reader, buf []byte) (bool, error) {
	n, err := io.ReadFull(r, buf)
	switch {
	case err == nil:
		return true, nil
	case err == io.EOF:
		return false, nil
	case err == io.ErrUnexpectedEOF:
		return false, truncated("read %d of %d bytes", n, len(buf))
	default:
		return false, err
	}
}
