// Package state holds a node's persistent heap and saves it to disk, one
// file per field.
package state

import (
	"errors"
	"fmt"

	"github.com/ssargent/nodestate/pkg/codec"
	"github.com/ssargent/nodestate/pkg/hvm"
	"lukechampine.com/uint128"
)

// Errors
var (
	ErrAlreadyDeployed = errors.New("function already deployed")
	ErrMissingField    = errors.New("heap field missing")
	ErrEmptyField      = errors.New("heap field is empty")
	ErrUnknownField    = errors.New("unknown heap field")
)

// Heap is the persistent state of a node.
type Heap struct {
	Memo []uint128.Uint128                   // node memory
	Disk map[uint128.Uint128]uint128.Uint128 // function-owned storage
	Arit map[uint128.Uint128]uint128.Uint128 // arity of each deployed function
	Ownr map[uint128.Uint128]uint128.Uint128 // owner of each deployed function
	Bals map[uint128.Uint128]codec.Int128    // signed balance per owner
	File map[uint128.Uint128]*hvm.CompFunc   // function slots
	Tick uint128.Uint128                     // block height the heap was taken at
	Hash []byte                              // hash of that block
}

// NewHeap returns an empty heap.
func NewHeap() *Heap {
	return &Heap{
		Memo: []uint128.Uint128{},
		Disk: make(map[uint128.Uint128]uint128.Uint128),
		Arit: make(map[uint128.Uint128]uint128.Uint128),
		Ownr: make(map[uint128.Uint128]uint128.Uint128),
		Bals: make(map[uint128.Uint128]codec.Int128),
		File: make(map[uint128.Uint128]*hvm.CompFunc),
		Hash: []byte{},
	}
}

// Deploy installs fn in its function slot, recording its arity and owner.
func (h *Heap) Deploy(fn *hvm.CompFunc, owner uint128.Uint128) error {
	key, err := hvm.NameToU128(fn.Name())
	if err != nil {
		return err
	}
	if _, exists := h.File[key]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyDeployed, fn.Name())
	}
	h.File[key] = fn
	h.Arit[key] = uint128.From64(uint64(fn.Arity()))
	h.Ownr[key] = owner
	return nil
}

// Function returns the compiled function deployed under name.
func (h *Heap) Function(name string) (*hvm.CompFunc, bool) {
	key, err := hvm.NameToU128(name)
	if err != nil {
		return nil, false
	}
	fn, ok := h.File[key]
	return fn, ok
}

// Credit adds amount, which may be negative, to owner's balance.
func (h *Heap) Credit(owner uint128.Uint128, amount codec.Int128) {
	h.Bals[owner] = h.Bals[owner].Add(amount)
}
