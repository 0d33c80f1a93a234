package codec

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"lukechampine.com/uint128"
)

// Packer converts raw functions to and from a bit-packed byte payload.
// Unpack reports false when data does not hold a function.
type Packer[F any] interface {
	Pack(fn F) []byte
	Unpack(data []byte) (F, bool)
}

// Compiler turns a raw function into its executable form, failing on
// functions that are not semantically valid.
type Compiler[F, C any] interface {
	Compile(fn F) (C, error)
}

// CompilerFunc adapts a plain function to the Compiler interface.
type CompilerFunc[F, C any] func(fn F) (C, error)

// Compile calls f(fn).
func (f CompilerFunc[F, C]) Compile(fn F) (C, error) {
	return f(fn)
}

// Compiled is implemented by compiled functions that keep the raw function
// they were built from.
type Compiled[F any] interface {
	Source() F
}

// CompiledFunc returns a codec for compiled functions.
//
// The raw function is stored, not the compiled form:
//
//	[PayloadLen(16, little-endian)][Payload(PayloadLen)]
//
// where Payload is the packer's encoding. Decoding unpacks and recompiles
// the function; a payload that fails either step is reported as
// KindInvalidData, with ErrMalformedPayload or ErrUncompilable as the cause.
func CompiledFunc[F any, C Compiled[F]](packer Packer[F], compiler Compiler[F, C]) Codec[C] {
	return funcCodec[F, C]{packer: packer, compiler: compiler}
}

type funcCodec[F any, C Compiled[F]] struct {
	packer   Packer[F]
	compiler Compiler[F, C]
}

func (c funcCodec[F, C]) Encode(w io.Writer, fn C) (int, error) {
	payload := c.packer.Pack(fn.Source())

	n1, err := U128.Encode(w, uint128.From64(uint64(len(payload))))
	if err != nil {
		return n1, err
	}
	n2, err := w.Write(payload)
	return n1 + n2, err
}

func (c funcCodec[F, C]) Decode(r io.Reader) (C, bool, error) {
	var zero C

	size, ok, err := U128.Decode(r)
	if !ok {
		return zero, false, err
	}
	if size.Hi != 0 || size.Lo > math.MaxInt64 {
		return zero, false, truncated("payload length %s exceeds any stream", size)
	}

	var buf bytes.Buffer
	n, err := io.CopyN(&buf, r, int64(size.Lo))
	if err == io.EOF {
		return zero, false, truncated("read %d of %d payload bytes", n, size.Lo)
	}
	if err != nil {
		return zero, false, err
	}

	raw, ok := c.packer.Unpack(buf.Bytes())
	if !ok {
		return zero, false, invalidData(ErrMalformedPayload, "%d byte payload", size.Lo)
	}

	compiled, err := c.compiler.Compile(raw)
	if err != nil {
		return zero, false, invalidData(fmt.Errorf("%w: %w", ErrUncompilable, err), "%d byte payload", size.Lo)
	}
	return compiled, true, nil
}
