// Package terminal holds the flat record of resolved terminal symbols that the
// parser collects for one statement and the evaluator reduces.
package terminal

import (
	"strconv"
	"strings"

	"github.com/thisisjab/boolscript/script/token"
)

// Symbol is one resolved terminal. The private marker method keeps the set of
// variants closed to Identifier, Literal and Operator.
type Symbol interface {
	symbol()
	Position() token.Position
	String() string
}

// Identifier is a variable name, resolved against the environment when reduced.
type Identifier struct {
	Name string
	Pos  token.Position
}

func (Identifier) symbol() {}

func (s Identifier) Position() token.Position { return s.Pos }

func (s Identifier) String() string { return s.Name }

// Literal is a decoded boolean, either from the source or produced by a
// reduction step.
type Literal struct {
	Value bool
	Pos   token.Position
}

func (Literal) symbol() {}

func (s Literal) Position() token.Position { return s.Pos }

func (s Literal) String() string { return strconv.FormatBool(s.Value) }

// Operator is any other terminal: and, or, not, parentheses, = and print.
type Operator struct {
	Op  token.Type
	Pos token.Position
}

func (Operator) symbol() {}

func (s Operator) Position() token.Position { return s.Pos }

func (s Operator) String() string { return s.Op.String() }

// Is reports whether sym is the operator op.
func Is(sym Symbol, op token.Type) bool {
	o, ok := sym.(Operator)
	return ok && o.Op == op
}

// Index returns the position of the first op operator in seq, or -1.
func Index(seq []Symbol, op token.Type) int {
	for i, sym := range seq {
		if Is(sym, op) {
			return i
		}
	}
	return -1
}

// FromToken resolves a matched token into its symbol.
func FromToken(tok token.Token) Symbol {
	switch tok.Type {
	case token.IDENTIFIER:
		return Identifier{Name: tok.Literal, Pos: tok.Pos}
	case token.BOOL:
		v, _ := token.DecodeBool(tok.Literal)
		return Literal{Value: v, Pos: tok.Pos}
	default:
		return Operator{Op: tok.Type, Pos: tok.Pos}
	}
}

// Record is the terminal sequence of a single statement.
type Record struct {
	symbols []Symbol
}

func (r *Record) Append(sym Symbol) {
	r.symbols = append(r.symbols, sym)
}

// Reset empties the record, keeping its backing storage.
func (r *Record) Reset() {
	clear(r.symbols)
	r.symbols = r.symbols[:0]
}

func (r *Record) Len() int {
	return len(r.symbols)
}

// Symbols returns a copy of the recorded sequence.
func (r *Record) Symbols() []Symbol {
	out := make([]Symbol, len(r.symbols))
	copy(out, r.symbols)
	return out
}

func (r *Record) String() string {
	return Join(r.symbols)
}

// Join renders seq with single spaces, e.g. "x = ( true or y )".
func Join(seq []Symbol) string {
	parts := make([]string, len(seq))
	for i, sym := range seq {
		parts[i] = sym.String()
	}
	return strings.Join(parts, " ")
}
