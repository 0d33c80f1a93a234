package hvm

import (
	"fmt"
	"strings"

	"lukechampine.com/uint128"
)

// Term is a node of a raw function body.
type Term interface {
	fmt.Stringer
	isTerm()
}

// Var references a variable bound by a rule pattern or a lambda.
type Var struct {
	Name string
}

// Lam is a lambda binding Name in Body.
type Lam struct {
	Name string
	Body Term
}

// App applies Func to Argm.
type App struct {
	Func Term
	Argm Term
}

// Ctr is a constructor.
type Ctr struct {
	Name string
	Args []Term
}

// Fun is a function call.
type Fun struct {
	Name string
	Args []Term
}

// Num is a numeric literal.
type Num struct {
	Value uint128.Uint128
}

// Op2 is a binary numeric operation.
type Op2 struct {
	Oper Oper
	Val0 Term
	Val1 Term
}

func (Var) isTerm() {}
func (Lam) isTerm() {}
func (App) isTerm() {}
func (Ctr) isTerm() {}
func (Fun) isTerm() {}
func (Num) isTerm() {}
func (Op2) isTerm() {}

func (t Var) String() string { return t.Name }
func (t Lam) String() string { return "@" + t.Name + " " + t.Body.String() }
func (t App) String() string { return "(!" + t.Func.String() + " " + t.Argm.String() + ")" }
func (t Ctr) String() string { return "{" + call(t.Name, t.Args) + "}" }
func (t Fun) String() string { return "(" + call(t.Name, t.Args) + ")" }
func (t Num) String() string { return "#" + t.Value.String() }
func (t Op2) String() string {
	return "(" + t.Oper.String() + " " + t.Val0.String() + " " + t.Val1.String() + ")"
}

func call(name string, args []Term) string {
	var b strings.Builder
	b.WriteString(name)
	for _, arg := range args {
		b.WriteByte(' ')
		b.WriteString(arg.String())
	}
	return b.String()
}

// Oper is a binary numeric operator.
type Oper uint8

const (
	OpAdd Oper = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	OpLtn
	OpLte
	OpEql
	OpGte
	OpGtn
	OpNeq

	numOpers
)

var operSymbols = [numOpers]string{
	"+", "-", "*", "/", "%", "&", "|", "^", "<<", ">>", "<", "<=", "==", ">=", ">", "!=",
}

// Valid reports whether o is a known operator.
func (o Oper) Valid() bool {
	return o < numOpers
}

func (o Oper) String() string {
	if !o.Valid() {
		return fmt.Sprintf("oper(%d)", uint8(o))
	}
	return operSymbols[o]
}

// ParseOper returns the operator spelled sym.
func ParseOper(sym string) (Oper, bool) {
	for i, s := range operSymbols {
		if s == sym {
			return Oper(i), true
		}
	}
	return 0, false
}

// Rule rewrites calls matching Lhs into Rhs.
type Rule struct {
	Lhs Term
	Rhs Term
}

func (r Rule) String() string {
	return r.Lhs.String() + " = " + r.Rhs.String()
}

// Func is a raw, uncompiled function.
type Func struct {
	Rules []Rule
}
