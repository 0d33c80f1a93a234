package bits

import (
	"github.com/ssargent/nodestate/pkg/hvm"
	"lukechampine.com/uint128"
)

// Term tags, 3 bits each.
const (
	tagVar = iota
	tagLam
	tagApp
	tagCtr
	tagFun
	tagNum
	tagOp2
)

const (
	tagWidth   = 3
	lenWidth   = 4
	charWidth  = 6
	operWidth  = 4
	argsWidth  = 4
	groupWidth = 8

	maxDepth = 1024
)

// Serializer packs raw functions for the compiled-function codec.
type Serializer struct{}

// Pack encodes fn. See PackFunc.
func (Serializer) Pack(fn hvm.Func) []byte {
	return PackFunc(fn)
}

// Unpack decodes data. See UnpackFunc.
func (Serializer) Unpack(data []byte) (hvm.Func, bool) {
	return UnpackFunc(data)
}

// PackFunc encodes fn. Each rule is preceded by a 1 bit and the list ends
// with a 0 bit. Terms whose names or argument counts cannot be represented
// are written so that unpacking fails.
func PackFunc(fn hvm.Func) []byte {
	w := &Writer{}
	for _, rule := range fn.Rules {
		w.WriteBit(true)
		writeTerm(w, rule.Lhs)
		writeTerm(w, rule.Rhs)
	}
	w.WriteBit(false)
	return w.Bytes()
}

// UnpackFunc decodes a payload produced by PackFunc. It reports false for
// anything else, including payloads with stray bits after the rule list.
func UnpackFunc(data []byte) (hvm.Func, bool) {
	r := NewReader(data)
	var fn hvm.Func
	for {
		more, err := r.ReadBit()
		if err != nil {
			return hvm.Func{}, false
		}
		if !more {
			break
		}
		lhs, ok := readTerm(r, 0)
		if !ok {
			return hvm.Func{}, false
		}
		rhs, ok := readTerm(r, 0)
		if !ok {
			return hvm.Func{}, false
		}
		fn.Rules = append(fn.Rules, hvm.Rule{Lhs: lhs, Rhs: rhs})
	}

	if r.Remaining() >= 8 {
		return hvm.Func{}, false
	}
	if pad, _ := r.ReadBits(r.Remaining()); pad != 0 {
		return hvm.Func{}, false
	}
	return fn, true
}

func writeTerm(w *Writer, t hvm.Term) {
	switch t := t.(type) {
	case hvm.Var:
		w.WriteBits(tagVar, tagWidth)
		writeName(w, t.Name)
	case hvm.Lam:
		w.WriteBits(tagLam, tagWidth)
		writeName(w, t.Name)
		writeTerm(w, t.Body)
	case hvm.App:
		w.WriteBits(tagApp, tagWidth)
		writeTerm(w, t.Func)
		writeTerm(w, t.Argm)
	case hvm.Ctr:
		w.WriteBits(tagCtr, tagWidth)
		writeCall(w, t.Name, t.Args)
	case hvm.Fun:
		w.WriteBits(tagFun, tagWidth)
		writeCall(w, t.Name, t.Args)
	case hvm.Num:
		w.WriteBits(tagNum, tagWidth)
		writeNum(w, t.Value)
	case hvm.Op2:
		w.WriteBits(tagOp2, tagWidth)
		w.WriteBits(uint64(t.Oper), operWidth)
		writeTerm(w, t.Val0)
		writeTerm(w, t.Val1)
	default:
		// unknown terms have no tag; 7 never unpacks
		w.WriteBits(1<<tagWidth-1, tagWidth)
	}
}

// writeName writes a 4-bit length then 6 bits per character. Invalid names
// are written with length 0, which never unpacks.
func writeName(w *Writer, name string) {
	num, err := hvm.NameToU128(name)
	if err != nil {
		w.WriteBits(0, lenWidth)
		return
	}
	w.WriteBits(uint64(len(name)), lenWidth)
	for i := len(name) - 1; i >= 0; i-- {
		w.WriteBits(num.Rsh(uint(i*charWidth)).Lo&(1<<charWidth-1), charWidth)
	}
}

func writeCall(w *Writer, name string, args []hvm.Term) {
	writeName(w, name)
	if len(args) > hvm.MaxArgs {
		// truncating would change meaning; drop the call body so the
		// payload cannot be unpacked into a different function
		w.WriteBits(0, argsWidth)
		w.WriteBits(1<<tagWidth-1, tagWidth)
		return
	}
	w.WriteBits(uint64(len(args)), argsWidth)
	for _, arg := range args {
		writeTerm(w, arg)
	}
}

// writeNum writes v in 8-bit groups, least significant first, each followed
// by a continuation bit.
func writeNum(w *Writer, v uint128.Uint128) {
	for {
		w.WriteBits(v.Lo&0xff, groupWidth)
		v = v.Rsh(groupWidth)
		more := !v.IsZero()
		w.WriteBit(more)
		if !more {
			return
		}
	}
}

func readTerm(r *Reader, depth int) (hvm.Term, bool) {
	if depth > maxDepth {
		return nil, false
	}
	tag, err := r.ReadBits(tagWidth)
	if err != nil {
		return nil, false
	}
	switch tag {
	case tagVar:
		name, ok := readName(r)
		if !ok {
			return nil, false
		}
		return hvm.Var{Name: name}, true
	case tagLam:
		name, ok := readName(r)
		if !ok {
			return nil, false
		}
		body, ok := readTerm(r, depth+1)
		if !ok {
			return nil, false
		}
		return hvm.Lam{Name: name, Body: body}, true
	case tagApp:
		fn, ok := readTerm(r, depth+1)
		if !ok {
			return nil, false
		}
		arg, ok := readTerm(r, depth+1)
		if !ok {
			return nil, false
		}
		return hvm.App{Func: fn, Argm: arg}, true
	case tagCtr:
		name, args, ok := readCall(r, depth)
		if !ok {
			return nil, false
		}
		return hvm.Ctr{Name: name, Args: args}, true
	case tagFun:
		name, args, ok := readCall(r, depth)
		if !ok {
			return nil, false
		}
		return hvm.Fun{Name: name, Args: args}, true
	case tagNum:
		v, ok := readNum(r)
		if !ok {
			return nil, false
		}
		return hvm.Num{Value: v}, true
	case tagOp2:
		op, err := r.ReadBits(operWidth)
		if err != nil {
			return nil, false
		}
		val0, ok := readTerm(r, depth+1)
		if !ok {
			return nil, false
		}
		val1, ok := readTerm(r, depth+1)
		if !ok {
			return nil, false
		}
		return hvm.Op2{Oper: hvm.Oper(op), Val0: val0, Val1: val1}, true
	default:
		return nil, false
	}
}

func readName(r *Reader) (string, bool) {
	size, err := r.ReadBits(lenWidth)
	if err != nil || size == 0 || size > hvm.MaxNameLen {
		return "", false
	}
	num := uint128.Zero
	for i := uint64(0); i < size; i++ {
		c, err := r.ReadBits(charWidth)
		if err != nil {
			return "", false
		}
		num = num.Lsh(charWidth).Or64(c)
	}
	name, err := hvm.U128ToName(num)
	if err != nil || len(name) != int(size) {
		return "", false
	}
	return name, true
}

func readCall(r *Reader, depth int) (string, []hvm.Term, bool) {
	name, ok := readName(r)
	if !ok {
		return "", nil, false
	}
	count, err := r.ReadBits(argsWidth)
	if err != nil {
		return "", nil, false
	}
	var args []hvm.Term
	for i := uint64(0); i < count; i++ {
		arg, ok := readTerm(r, depth+1)
		if !ok {
			return "", nil, false
		}
		args = append(args, arg)
	}
	return name, args, true
}

func readNum(r *Reader) (uint128.Uint128, bool) {
	v := uint128.Zero
	for shift := uint(0); ; shift += groupWidth {
		if shift >= 128 {
			return uint128.Zero, false
		}
		group, err := r.ReadBits(groupWidth)
		if err != nil {
			return uint128.Zero, false
		}
		more, err := r.ReadBit()
		if err != nil {
			return uint128.Zero, false
		}
		v = v.Or(uint128.From64(group).Lsh(shift))
		if !more {
			// writeNum never ends on a zero group past the first
			if group == 0 && shift > 0 {
				return uint128.Zero, false
			}
			return v, true
		}
	}
}
