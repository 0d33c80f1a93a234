package codec

import "io"

// Shared wraps inner so values are handled through a pointer. The wire
// format is exactly inner's; every successful decode allocates a new value.
func Shared[T any](inner Codec[T]) Codec[*T] {
	return sharedCodec[T]{inner: inner}
}

type sharedCodec[T any] struct {
	inner Codec[T]
}

func (c sharedCodec[T]) Encode(w io.Writer, v *T) (int, error) {
	return c.inner.Encode(w, *v)
}

func (c sharedCodec[T]) Decode(r io.Reader) (*T, bool, error) {
	v, ok, err := c.inner.Decode(r)
	if !ok {
		return nil, false, err
	}
	p := new(T)
	*p = v
	return p, true, nil
}
