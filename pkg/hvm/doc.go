// Package hvm defines raw functions, the rewrite-rule programs a node keeps
// in its function slots, and the compiler that turns them into CompFunc
// values.
//
// A raw function is a list of rules. Each rule rewrites a call whose
// arguments match the left-hand side patterns into the right-hand side:
//
//	(Add {Succ a} b) = {Succ (Add a b)}
//	(Add {Zero} b)   = b
//
// Raw functions come from source text (Parse) or from a bit-packed payload
// (see package bits). They are only executable after Compile accepts them.
package hvm
