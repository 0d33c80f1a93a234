package codec

import "io"

// Slice returns a codec for an ordered list of E.
//
// Elements are concatenated with no length or terminator, so a list owns the
// rest of its stream: decoding reads elements until the element codec
// reports a clean end, and nothing may be written after it.
func Slice[E any](elem Codec[E]) Codec[[]E] {
	return sliceCodec[E]{elem: elem}
}

type sliceCodec[E any] struct {
	elem Codec[E]
}

func (c sliceCodec[E]) Encode(w io.Writer, v []E) (int, error) {
	total := 0
	for _, e := range v {
		n, err := c.elem.Encode(w, e)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Decode always succeeds with a (possibly empty) list unless an element
// fails; an empty stream is an empty list, not a clean end.
func (c sliceCodec[E]) Decode(r io.Reader) ([]E, bool, error) {
	res := make([]E, 0)
	for {
		e, ok, err := c.elem.Decode(r)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return res, true, nil
		}
		res = append(res, e)
	}
}
