package state

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ssargent/nodestate/pkg/bits"
	"github.com/ssargent/nodestate/pkg/codec"
	"github.com/ssargent/nodestate/pkg/hvm"
	"lukechampine.com/uint128"
)

// Field file names, in the order they are saved and digested.
const (
	FieldMemo = "memo"
	FieldDisk = "disk"
	FieldArit = "arit"
	FieldOwnr = "ownr"
	FieldBals = "bals"
	FieldFile = "file"
	FieldTick = "tick"
	FieldHash = "hash"
)

// FieldNames lists every heap field.
var FieldNames = []string{FieldMemo, FieldDisk, FieldArit, FieldOwnr, FieldBals, FieldFile, FieldTick, FieldHash}

// FuncCodec stores compiled functions as their bit-packed source and
// recompiles them on load.
var FuncCodec = codec.CompiledFunc[hvm.Func, hvm.CompFunc](
	bits.Serializer{},
	codec.CompilerFunc[hvm.Func, hvm.CompFunc](hvm.Compile),
)

func cmpU128(a, b uint128.Uint128) int { return a.Cmp(b) }

var (
	memoCodec = codec.Slice(codec.U128)
	wordCodec = codec.OrderedMap(codec.U128, codec.U128, cmpU128)
	balsCodec = codec.OrderedMap(codec.U128, codec.I128, cmpU128)
	fileCodec = codec.OrderedMap(codec.U128, codec.Shared(FuncCodec), cmpU128)
	hashCodec = codec.Slice(codec.U8)
)

// EncodeField writes one field of h to w.
func (h *Heap) EncodeField(name string, w io.Writer) (int, error) {
	switch name {
	case FieldMemo:
		return memoCodec.Encode(w, h.Memo)
	case FieldDisk:
		return wordCodec.Encode(w, h.Disk)
	case FieldArit:
		return wordCodec.Encode(w, h.Arit)
	case FieldOwnr:
		return wordCodec.Encode(w, h.Ownr)
	case FieldBals:
		return balsCodec.Encode(w, h.Bals)
	case FieldFile:
		return fileCodec.Encode(w, h.File)
	case FieldTick:
		return codec.U128.Encode(w, h.Tick)
	case FieldHash:
		return hashCodec.Encode(w, h.Hash)
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
}

// DecodeField reads one field from r into h. The reader must hold exactly
// that field: list and map fields read until r ends.
func (h *Heap) DecodeField(name string, r io.Reader) error {
	var err error
	switch name {
	case FieldMemo:
		h.Memo, _, err = memoCodec.Decode(r)
	case FieldDisk:
		h.Disk, _, err = wordCodec.Decode(r)
	case FieldArit:
		h.Arit, _, err = wordCodec.Decode(r)
	case FieldOwnr:
		h.Ownr, _, err = wordCodec.Decode(r)
	case FieldBals:
		h.Bals, _, err = balsCodec.Decode(r)
	case FieldFile:
		h.File, _, err = fileCodec.Decode(r)
	case FieldTick:
		var ok bool
		h.Tick, ok, err = codec.U128.Decode(r)
		if err == nil && !ok {
			err = ErrEmptyField
		}
	case FieldHash:
		h.Hash, _, err = hashCodec.Decode(r)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return err
}

// FieldBytes encodes one field into a fresh slice.
func (h *Heap) FieldBytes(name string) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := h.EncodeField(name, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
