package evaluator

import (
	"fmt"

	"github.com/thisisjab/boolscript/script/terminal"
	"github.com/thisisjab/boolscript/script/token"
)

type StatementKind uint8

const (
	StatementAssign StatementKind = iota
	StatementPrint
)

func (k StatementKind) String() string {
	if k == StatementPrint {
		return "print"
	}
	return "assign"
}

// Statement is the outcome of reducing one record, before its side effect is
// applied.
type Statement struct {
	Kind  StatementKind
	Name  string // assigned variable, empty for print
	Value bool
	Pos   token.Position
	Expr  []terminal.Symbol
}

// Output is a value produced by a print statement.
type Output struct {
	Value bool
	Pos   token.Position
}

// Emitter receives print outputs in program order.
type Emitter interface {
	Emit(out Output) error
}

type EmitterFunc func(out Output) error

func (f EmitterFunc) Emit(out Output) error {
	return f(out)
}

// Evaluator reduces statement records and applies their side effect to the
// environment or the emitter.
type Evaluator struct {
	env *Environment
	out Emitter
}

func New(env *Environment, out Emitter) *Evaluator {
	return &Evaluator{env: env, out: out}
}

func (e *Evaluator) Env() *Environment {
	return e.env
}

// Evaluate strips the statement marker from rec and reduces the expression.
// It has no side effects.
func (e *Evaluator) Evaluate(rec *terminal.Record) (Statement, error) {
	syms := rec.Symbols()

	var st Statement
	switch {
	case len(syms) >= 2 && terminal.Is(syms[0], token.PRINT):
		st = Statement{Kind: StatementPrint, Pos: syms[0].Position(), Expr: syms[1:]}
	case len(syms) >= 3 && terminal.Is(syms[1], token.ASSIGN):
		ident, ok := syms[0].(terminal.Identifier)
		if !ok {
			return Statement{}, fmt.Errorf("%w: cannot assign to %q", ErrMalformed, syms[0])
		}
		st = Statement{Kind: StatementAssign, Name: ident.Name, Pos: ident.Pos, Expr: syms[2:]}
	default:
		return Statement{}, fmt.Errorf("%w: %q is not a statement", ErrMalformed, terminal.Join(syms))
	}

	v, err := Reduce(e.env, st.Expr)
	if err != nil {
		return Statement{}, err
	}
	st.Value = v

	return st, nil
}

// Apply performs the single side effect of st.
func (e *Evaluator) Apply(st Statement) error {
	switch st.Kind {
	case StatementAssign:
		e.env.Set(st.Name, st.Value)
		return nil
	case StatementPrint:
		if e.out == nil {
			return nil
		}
		return e.out.Emit(Output{Value: st.Value, Pos: st.Pos})
	default:
		return fmt.Errorf("unknown statement kind %d", st.Kind)
	}
}

// Execute evaluates rec and applies the result.
func (e *Evaluator) Execute(rec *terminal.Record) error {
	st, err := e.Evaluate(rec)
	if err != nil {
		return err
	}
	return e.Apply(st)
}
