package parser_test

import (
	"testing"

	"github.com/thisisjab/boolscript/fault"
	"github.com/thisisjab/boolscript/script/evaluator"
	"github.com/thisisjab/boolscript/script/lexer"
	"github.com/thisisjab/boolscript/script/parser"
)

// FuzzRun feeds random programs through the parser and evaluator. Every
// failure must be one of the three program diagnostics; a record the parser
// accepted must always reduce.
func FuzzRun(f *testing.F) {
	seeds := []string{
		"",
		"x = true\nprint x",
		"print (true or false) and not false",
		"y = 1\nprint y and 0",
		"print z",
		"a = t b = not a print ((a or b) and not (b))",
		"print not not x",
		"x = = y",
		"print (x",
		"print 10",
		"print t & f",
		"x\r\n=\tT",
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, input string) {
		ev := evaluator.New(evaluator.NewEnvironment(), nil)
		err := parser.New(lexer.New(input), ev).Parse()
		if err == nil {
			return
		}

		switch code := fault.CodeOf(err); code {
		case fault.ScanCode, fault.SyntaxCode, fault.UnboundVariableCode:
			if line, column := err.(fault.Diagnostic).Location(); line < 1 || column < 1 {
				t.Fatalf("diagnostic without position for %q: %v", input, err)
			}
		default:
			t.Fatalf("unexpected %s error for %q: %v", code, input, err)
		}
	})
}
