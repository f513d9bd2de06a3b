package evaluator

import (
	"errors"
	"fmt"

	"github.com/thisisjab/boolscript/fault"
	"github.com/thisisjab/boolscript/script/terminal"
	"github.com/thisisjab/boolscript/script/token"
)

// ErrMalformed is returned for sequences the parser can never produce.
var ErrMalformed = errors.New("malformed terminal record")

// Reduce collapses seq to a single boolean. Each round removes at least one
// symbol, resolving in order: parentheses, every not, the first and, the
// first or.
//
// Collapsing only the first and/or occurrence per round relies on the
// operators being pure, associative and commutative. Operands with side
// effects would need exhaustive left-to-right collapsing instead.
func Reduce(env *Environment, seq []terminal.Symbol) (bool, error) {
	switch len(seq) {
	case 0:
		return false, fmt.Errorf("%w: empty expression", ErrMalformed)
	case 1:
		return resolve(env, seq[0])
	}

	if open := terminal.Index(seq, token.LPAREN); open >= 0 {
		closing, err := matchingParen(seq, open)
		if err != nil {
			return false, err
		}

		inner, err := Reduce(env, seq[open+1:closing])
		if err != nil {
			return false, err
		}

		return Reduce(env, splice(seq, open, closing+1, terminal.Literal{Value: inner, Pos: seq[open].Position()}))
	}

	if terminal.Index(seq, token.NOT) >= 0 {
		next, err := negateAll(env, seq)
		if err != nil {
			return false, err
		}
		return Reduce(env, next)
	}

	if i := terminal.Index(seq, token.AND); i >= 0 {
		next, err := collapse(env, seq, i, func(a, b bool) bool { return a && b })
		if err != nil {
			return false, err
		}
		return Reduce(env, next)
	}

	if i := terminal.Index(seq, token.OR); i >= 0 {
		next, err := collapse(env, seq, i, func(a, b bool) bool { return a || b })
		if err != nil {
			return false, err
		}
		return Reduce(env, next)
	}

	return false, fmt.Errorf("%w: no operator joins %q", ErrMalformed, terminal.Join(seq))
}

// resolve turns a single operand into its boolean value.
func resolve(env *Environment, sym terminal.Symbol) (bool, error) {
	switch s := sym.(type) {
	case terminal.Literal:
		return s.Value, nil
	case terminal.Identifier:
		v, ok := env.Get(s.Name)
		if !ok {
			return false, &UnboundVariableError{Name: s.Name, Pos: s.Pos}
		}
		return v, nil
	default:
		return false, fmt.Errorf("%w: operator %q used as operand at %s", ErrMalformed, sym, sym.Position())
	}
}

// matchingParen returns the index of the ) closing the ( at open.
func matchingParen(seq []terminal.Symbol, open int) (int, error) {
	depth := 0
	for i := open; i < len(seq); i++ {
		switch {
		case terminal.Is(seq[i], token.LPAREN):
			depth++
		case terminal.Is(seq[i], token.RPAREN):
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: unbalanced ( at %s", ErrMalformed, seq[open].Position())
}

// negateAll replaces every "not X" pair with the negated value of X in a
// single left-to-right pass.
func negateAll(env *Environment, seq []terminal.Symbol) ([]terminal.Symbol, error) {
	out := make([]terminal.Symbol, 0, len(seq))
	for i := 0; i < len(seq); i++ {
		if !terminal.Is(seq[i], token.NOT) {
			out = append(out, seq[i])
			continue
		}
		if i+1 >= len(seq) {
			return nil, fmt.Errorf("%w: not without operand at %s", ErrMalformed, seq[i].Position())
		}

		v, err := resolve(env, seq[i+1])
		if err != nil {
			return nil, err
		}
		out = append(out, terminal.Literal{Value: !v, Pos: seq[i].Position()})
		i++
	}
	return out, nil
}

// collapse applies op to the neighbours of the binary operator at i and
// replaces the three symbols with the result.
func collapse(env *Environment, seq []terminal.Symbol, i int, op func(a, b bool) bool) ([]terminal.Symbol, error) {
	if i == 0 || i+1 >= len(seq) {
		return nil, fmt.Errorf("%w: %s is missing an operand at %s", ErrMalformed, seq[i], seq[i].Position())
	}

	left, err := resolve(env, seq[i-1])
	if err != nil {
		return nil, err
	}
	right, err := resolve(env, seq[i+1])
	if err != nil {
		return nil, err
	}

	return splice(seq, i-1, i+2, terminal.Literal{Value: op(left, right), Pos: seq[i-1].Position()}), nil
}

// splice returns a new sequence with seq[from:to] replaced by sym.
func splice(seq []terminal.Symbol, from, to int, sym terminal.Symbol) []terminal.Symbol {
	out := make([]terminal.Symbol, 0, len(seq)-(to-from)+1)
	out = append(out, seq[:from]...)
	out = append(out, sym)
	return append(out, seq[to:]...)
}

// UnboundVariableError reports a read of a name that was never assigned.
type UnboundVariableError struct {
	Name string
	Pos  token.Position
}

func (e *UnboundVariableError) Error() string {
	return e.Message()
}

func (e *UnboundVariableError) Message() string {
	return fmt.Sprintf("variable %q referenced before assignment", e.Name)
}

func (e *UnboundVariableError) Code() fault.Code {
	return fault.UnboundVariableCode
}

func (e *UnboundVariableError) Location() (int, int) {
	return e.Pos.Line, e.Pos.Column
}
