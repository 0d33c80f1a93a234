package hvm

import (
	"errors"
	"fmt"
)

// Reasons Compile rejects a function.
var (
	ErrNoRules     = errors.New("function has no rules")
	ErrBadLHS      = errors.New("left-hand side is not a function call")
	ErrNameClash   = errors.New("rules define different functions")
	ErrArity       = errors.New("rules disagree on arity")
	ErrBadPattern  = errors.New("argument is not a pattern")
	ErrNonLinear   = errors.New("variable bound twice in pattern")
	ErrUnbound     = errors.New("unbound variable")
	ErrInvalidName = errors.New("invalid name")
	ErrBadOper     = errors.New("unknown operator")
	ErrTooManyArgs = errors.New("too many arguments")
)

// MaxArgs is the largest argument count of a call or constructor.
const MaxArgs = 15

// Erased is the variable name that matches anything without binding.
const Erased = "_"

// Binding locates a pattern variable inside the arguments of a call.
// Field is -1 when the variable matches the whole argument.
type Binding struct {
	Name  string
	Param int
	Field int
}

// CompRule is a rule with its pattern variables resolved.
type CompRule struct {
	Cond []Term
	Vars []Binding
	Body Term
}

// CompFunc is a function accepted by Compile. The zero value is not a
// usable function.
type CompFunc struct {
	source Func
	name   string
	arity  int
	redux  []int
	rules  []CompRule
}

// Source returns the raw function f was compiled from.
func (f CompFunc) Source() Func { return f.source }

// Name returns the function name shared by every rule.
func (f CompFunc) Name() string { return f.name }

// Arity returns the number of arguments.
func (f CompFunc) Arity() int { return f.arity }

// Redux returns the argument positions some rule matches on, which must be
// reduced before a rule can be selected.
func (f CompFunc) Redux() []int { return f.redux }

// Rules returns the compiled rules in source order.
func (f CompFunc) Rules() []CompRule { return f.rules }

// Compile checks fn and resolves its pattern variables.
func Compile(fn Func) (CompFunc, error) {
	if len(fn.Rules) == 0 {
		return CompFunc{}, ErrNoRules
	}

	out := CompFunc{source: fn}
	strict := make(map[int]bool)

	for i, rule := range fn.Rules {
		lhs, ok := rule.Lhs.(Fun)
		if !ok {
			return CompFunc{}, fmt.Errorf("rule %d: %w", i, ErrBadLHS)
		}
		if !ValidName(lhs.Name) {
			return CompFunc{}, fmt.Errorf("rule %d: %w: %q", i, ErrInvalidName, lhs.Name)
		}
		if len(lhs.Args) > MaxArgs {
			return CompFunc{}, fmt.Errorf("rule %d: %w: %d", i, ErrTooManyArgs, len(lhs.Args))
		}
		if i == 0 {
			out.name = lhs.Name
			out.arity = len(lhs.Args)
		} else if lhs.Name != out.name {
			return CompFunc{}, fmt.Errorf("rule %d: %w: %s and %s", i, ErrNameClash, out.name, lhs.Name)
		} else if len(lhs.Args) != out.arity {
			return CompFunc{}, fmt.Errorf("rule %d: %w: %d and %d", i, ErrArity, out.arity, len(lhs.Args))
		}

		comp, err := compileRule(lhs, rule.Rhs, strict)
		if err != nil {
			return CompFunc{}, fmt.Errorf("rule %d: %w", i, err)
		}
		out.rules = append(out.rules, comp)
	}

	for param := 0; param < out.arity; param++ {
		if strict[param] {
			out.redux = append(out.redux, param)
		}
	}
	return out, nil
}

func compileRule(lhs Fun, rhs Term, strict map[int]bool) (CompRule, error) {
	rule := CompRule{Body: rhs}
	seen := make(map[string]bool)

	bind := func(name string, param, field int) error {
		if name == Erased {
			return nil
		}
		if !ValidName(name) {
			return fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
		if seen[name] {
			return fmt.Errorf("%w: %s", ErrNonLinear, name)
		}
		seen[name] = true
		rule.Vars = append(rule.Vars, Binding{Name: name, Param: param, Field: field})
		return nil
	}

	for param, arg := range lhs.Args {
		rule.Cond = append(rule.Cond, arg)
		switch arg := arg.(type) {
		case Var:
			if err := bind(arg.Name, param, -1); err != nil {
				return CompRule{}, err
			}
		case Num:
			strict[param] = true
		case Ctr:
			if !ValidName(arg.Name) {
				return CompRule{}, fmt.Errorf("%w: %q", ErrInvalidName, arg.Name)
			}
			if len(arg.Args) > MaxArgs {
				return CompRule{}, fmt.Errorf("%w: %s", ErrTooManyArgs, arg)
			}
			strict[param] = true
			for field, sub := range arg.Args {
				switch sub := sub.(type) {
				case Var:
					if err := bind(sub.Name, param, field); err != nil {
						return CompRule{}, err
					}
				case Num:
				default:
					return CompRule{}, fmt.Errorf("%w: %s", ErrBadPattern, sub)
				}
			}
		default:
			return CompRule{}, fmt.Errorf("%w: %s", ErrBadPattern, arg)
		}
	}

	if err := checkBody(rhs, seen); err != nil {
		return CompRule{}, err
	}
	return rule, nil
}

// checkBody verifies every variable in t is bound by the pattern or an
// enclosing lambda.
func checkBody(t Term, scope map[string]bool) error {
	switch t := t.(type) {
	case Var:
		if !scope[t.Name] {
			return fmt.Errorf("%w: %s", ErrUnbound, t.Name)
		}
	case Lam:
		if t.Name != Erased && !ValidName(t.Name) {
			return fmt.Errorf("%w: %q", ErrInvalidName, t.Name)
		}
		inner := make(map[string]bool, len(scope)+1)
		for name := range scope {
			inner[name] = true
		}
		if t.Name != Erased {
			inner[t.Name] = true
		}
		return checkBody(t.Body, inner)
	case App:
		if err := checkBody(t.Func, scope); err != nil {
			return err
		}
		return checkBody(t.Argm, scope)
	case Ctr:
		return checkArgs(t.Name, t.Args, scope)
	case Fun:
		return checkArgs(t.Name, t.Args, scope)
	case Num:
	case Op2:
		if !t.Oper.Valid() {
			return fmt.Errorf("%w: %s", ErrBadOper, t.Oper)
		}
		if err := checkBody(t.Val0, scope); err != nil {
			return err
		}
		return checkBody(t.Val1, scope)
	default:
		return fmt.Errorf("unknown term %T", t)
	}
	return nil
}

func checkArgs(name string, args []Term, scope map[string]bool) error {
	if !ValidName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if len(args) > MaxArgs {
		return fmt.Errorf("%w: %s has %d", ErrTooManyArgs, name, len(args))
	}
	for _, arg := range args {
		if err := checkBody(arg, scope); err != nil {
			return err
		}
	}
	return nil
}
