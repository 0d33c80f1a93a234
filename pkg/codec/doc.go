// Package codec converts a node's persistent state to and from raw byte
// streams.
//
// Every persisted type has a Codec. Codecs compose: containers are built
// from the codecs of their elements, and the whole thing is resolved at
// compile time.
//
//	funcs := codec.Map(codec.U128, codec.Shared(codec.CompiledFunc[hvm.Func, hvm.CompFunc](
//	    bits.Serializer{}, codec.CompilerFunc[hvm.Func, hvm.CompFunc](hvm.Compile))))
//
// # Formats
//
// There are no type tags, version fields or checksums; the reader must know
// the expected type.
//
//   - U8: 1 byte.
//   - U128, I128: 16 bytes, little-endian (I128 in two's complement).
//   - Slice: the elements' encodings concatenated.
//   - Map: key, value, key, value, ... in unspecified order.
//   - OrderedMap: as Map, with entries sorted by key so equal maps encode
//     to equal bytes.
//   - Shared: the inner encoding unchanged.
//   - CompiledFunc: [PayloadLen(16)][Payload], where Payload is the
//     bit-packed raw function.
//
// Slice, Map and OrderedMap carry no length. They read until their stream ends, so each
// must be the only, or last, value in its stream.
//
// # End of stream
//
// Decode distinguishes three outcomes:
//
//   - ok=false, err=nil: nothing was left to read (clean end).
//   - ok=true: a value was decoded.
//   - err!=nil: the stream ended part way through a value (ErrTruncated),
//     a complete value held bad content (ErrInvalidData), or the reader
//     failed, in which case its error is returned as is.
//
// Decoding is all-or-nothing: on error no partial value is returned.
//
// # Thread Safety
//
// Codec values are stateless and safe for concurrent use. A single stream
// must not be shared between concurrent encode or decode calls.
package codec
