// Package oracle provides reference evaluations used to cross-check the
// reduction of statement expressions.
package oracle

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/thisisjab/boolscript/script/evaluator"
	"github.com/thisisjab/boolscript/script/terminal"
	"github.com/thisisjab/boolscript/script/token"
	lua "github.com/yuin/gopher-lua"
)

// LuaOracle evaluates an expression as a lua boolean expression. Lua gives
// not, and, or the same relative precedence, so both evaluations must agree.
type LuaOracle struct {
	pool sync.Pool
}

func NewLuaOracle() *LuaOracle {
	return &LuaOracle{
		pool: sync.Pool{
			New: func() any {
				// Only boolean operators are evaluated; no library is needed.
				return lua.NewState(lua.Options{SkipOpenLibs: true})
			},
		},
	}
}

func (o *LuaOracle) Evaluate(env *evaluator.Environment, expr []terminal.Symbol) (bool, error) {
	chunk, err := Translate(env, expr)
	if err != nil {
		return false, err
	}

	L := o.pool.Get().(*lua.LState)
	defer o.pool.Put(L)

	top := L.GetTop()
	if err := L.DoString(chunk); err != nil {
		L.SetTop(top)
		return false, fmt.Errorf("lua evaluation of %q failed: %w", chunk, err)
	}

	ret := L.Get(-1)
	L.SetTop(top)

	b, ok := ret.(lua.LBool)
	if !ok {
		return false, fmt.Errorf("lua evaluation of %q returned %s", chunk, ret.Type())
	}

	return bool(b), nil
}

// Translate renders expr as a lua chunk returning its value, with every
// identifier replaced by its bound value.
func Translate(env *evaluator.Environment, expr []terminal.Symbol) (string, error) {
	if len(expr) == 0 {
		return "", errors.New("empty expression")
	}

	var sb strings.Builder
	sb.WriteString("return")

	for _, sym := range expr {
		sb.WriteByte(' ')

		switch s := sym.(type) {
		case terminal.Identifier:
			v, ok := env.Get(s.Name)
			if !ok {
				return "", &evaluator.UnboundVariableError{Name: s.Name, Pos: s.Pos}
			}
			fmt.Fprint(&sb, v)
		case terminal.Literal:
			fmt.Fprint(&sb, s.Value)
		case terminal.Operator:
			switch s.Op {
			case token.AND, token.OR, token.NOT, token.LPAREN, token.RPAREN:
				sb.WriteString(s.Op.String())
			default:
				return "", fmt.Errorf("operator %s cannot appear in an expression", s.Op)
			}
		}
	}

	return sb.String(), nil
}
