package oracle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thisisjab/boolscript/script/evaluator"
	"github.com/thisisjab/boolscript/script/lexer"
	"github.com/thisisjab/boolscript/script/parser"
	"github.com/thisisjab/boolscript/script/terminal"
	"github.com/thisisjab/boolscript/script/token"
)

// expressions returns the expression part of every statement in src.
func expressions(t *testing.T, src string) [][]terminal.Symbol {
	t.Helper()

	var out [][]terminal.Symbol
	err := parser.New(lexer.New(src), parser.HandlerFunc(func(rec *terminal.Record) error {
		out = append(out, rec.Symbols()[1:])
		return nil
	})).Parse()
	require.NoError(t, err)

	return out
}

func TestTranslate(t *testing.T) {
	env := evaluator.NewEnvironment()
	env.Set("end", true)

	chunk, err := Translate(env, expressions(t, "print not (end and 0) or T")[0])
	require.NoError(t, err)
	assert.Equal(t, "return not ( true and false ) or true", chunk)

	_, err = Translate(env, expressions(t, "print x")[0])
	var unbound *evaluator.UnboundVariableError
	require.True(t, errors.As(err, &unbound))
	assert.Equal(t, "x", unbound.Name)

	_, err = Translate(env, []terminal.Symbol{terminal.Operator{Op: token.ASSIGN}})
	assert.Error(t, err)

	_, err = Translate(env, nil)
	assert.Error(t, err)
}

func TestLuaOracleAgreesWithReduce(t *testing.T) {
	programs := []string{
		"print a or b and c",
		"print not a and b or not c",
		"print (a or b) and (not c or a)",
		"print not (a and (b or not (c)))",
		"print a and b and c or a and not b",
		"print ((a)) or (((b and c)))",
		"print 1 and not 0 or f",
	}

	o := NewLuaOracle()

	for mask := range 8 {
		env := evaluator.NewEnvironment()
		env.Set("a", mask&1 != 0)
		env.Set("b", mask&2 != 0)
		env.Set("c", mask&4 != 0)

		for _, src := range programs {
			expr := expressions(t, src)[0]

			want, err := evaluator.Reduce(env, expr)
			require.NoError(t, err)

			got, err := o.Evaluate(env, expr)
			require.NoError(t, err)
			assert.Equal(t, want, got, "%s with mask %03b", src, mask)
		}
	}
}

func TestLuaOracleMalformed(t *testing.T) {
	o := NewLuaOracle()

	_, err := o.Evaluate(evaluator.NewEnvironment(), []terminal.Symbol{
		terminal.Literal{Value: true},
		terminal.Operator{Op: token.AND},
	})
	assert.Error(t, err)

	got, err := o.Evaluate(evaluator.NewEnvironment(), []terminal.Symbol{terminal.Literal{Value: true}})
	require.NoError(t, err)
	assert.True(t, got)
}
