package codec

import (
	"io"
	"slices"
)

// Map returns a codec for a mapping from K to V.
//
// Each entry is written as the key followed by its value, in map iteration
// order, with no length or terminator. Like Slice, a map owns the rest of its
// stream. When a key appears more than once the last value wins.
func Map[K comparable, V any](key Codec[K], val Codec[V]) Codec[map[K]V] {
	return mapCodec[K, V]{key: key, val: val}
}

type mapCodec[K comparable, V any] struct {
	key Codec[K]
	val Codec[V]
}

func (c mapCodec[K, V]) Encode(w io.Writer, m map[K]V) (int, error) {
	total := 0
	for k, v := range m {
		n, err := c.key.Encode(w, k)
		total += n
		if err != nil {
			return total, err
		}
		n, err = c.val.Encode(w, v)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (c mapCodec[K, V]) Decode(r io.Reader) (map[K]V, bool, error) {
	res := make(map[K]V)
	for {
		k, ok, err := c.key.Decode(r)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return res, true, nil
		}
		v, ok, err := c.val.Decode(r)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, false, truncated("key without value")
		}
		res[k] = v
	}
}

// OrderedMap is Map with entries written in ascending key order, so equal
// maps always encode to the same bytes. The wire format is Map's.
func OrderedMap[K comparable, V any](key Codec[K], val Codec[V], cmp func(a, b K) int) Codec[map[K]V] {
	return orderedMapCodec[K, V]{mapCodec: mapCodec[K, V]{key: key, val: val}, cmp: cmp}
}

type orderedMapCodec[K comparable, V any] struct {
	mapCodec[K, V]
	cmp func(a, b K) int
}

func (c orderedMapCodec[K, V]) Encode(w io.Writer, m map[K]V) (int, error) {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, c.cmp)

	total := 0
	for _, k := range keys {
		n, err := c.key.Encode(w, k)
		total += n
		if err != nil {
			return total, err
		}
		n, err = c.val.Encode(w, m[k])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
