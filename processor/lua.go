package processor

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/thisisjab/boolscript/entity"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
	luajson "layeh.com/gopher-json"
)

const formatFuncName = "format_output"

type LuaOutputProcessorConfig struct {
	Name       string `yaml:"-"`
	ScriptPath string `yaml:"script-path"`
}

// LuaOutputProcessor renders outputs with a user provided lua script.
// Provided script MUST define a function named `format_output` which receives
// the printed value, its line and column, and a table describing the output
// (id, run_id, program, seq, text). It must return the text to emit.
// Note that user can have access to JSON helper using `local json = require("json")`
type LuaOutputProcessor struct {
	cfg   LuaOutputProcessorConfig
	proto *lua.FunctionProto
	pool  *sync.Pool
}

func NewLuaOutputProcessor(cfg LuaOutputProcessorConfig) (*LuaOutputProcessor, error) {
	if cfg.ScriptPath == "" {
		return nil, errors.New("lua script path is required")
	}

	proto, err := compileScript(cfg.ScriptPath)
	if err != nil {
		return nil, err
	}

	lp := &LuaOutputProcessor{cfg: cfg, proto: proto}
	lp.pool = &sync.Pool{
		New: func() any {
			L, err := lp.newState()
			if err != nil {
				return err
			}
			return L
		},
	}

	// Load one VM upfront so a broken script fails here rather than on the
	// first output.
	L, err := lp.newState()
	if err != nil {
		return nil, err
	}
	lp.pool.Put(L)

	return lp, nil
}

// compileScript parses the script once; every VM in the pool runs the same
// compiled chunk.
func compileScript(path string) (*lua.FunctionProto, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read lua script: %w", err)
	}

	chunk, err := parse.Parse(strings.NewReader(string(src)), path)
	if err != nil {
		return nil, fmt.Errorf("cannot parse lua script: %w", err)
	}

	proto, err := lua.Compile(chunk, path)
	if err != nil {
		return nil, fmt.Errorf("cannot compile lua script: %w", err)
	}

	return proto, nil
}

func (lp *LuaOutputProcessor) newState() (*lua.LState, error) {
	L := newSandbox()

	L.Push(L.NewFunctionFromProto(lp.proto))
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		L.Close()
		return nil, fmt.Errorf("lua script error: %w", err)
	}

	if L.GetGlobal(formatFuncName).Type() != lua.LTFunction {
		L.Close()
		return nil, fmt.Errorf("lua script does not define %s", formatFuncName)
	}

	return L, nil
}

// newSandbox creates a VM with only the safe libraries and the json module.
func newSandbox() *lua.LState {
	L := lua.NewState(lua.Options{
		SkipOpenLibs: true, // Don't load anything by default
	})

	// We skip 'os' and 'io' to prevent system commands/file access
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.LoadLibName, lua.OpenPackage},  // Allows 'require'
		{lua.BaseLibName, lua.OpenBase},     // Allows 'print', 'pairs', etc.
		{lua.TabLibName, lua.OpenTable},     // Allows 'table.insert', etc.
		{lua.StringLibName, lua.OpenString}, // Allows string manipulation
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}

	// This allows the user to do: local json = require("json")
	luajson.Preload(L)

	return L
}

func (lp *LuaOutputProcessor) Name() string {
	return lp.cfg.Name
}

func (lp *LuaOutputProcessor) Process(out entity.Output) (entity.Output, error) {
	var L *lua.LState
	switch v := lp.pool.Get().(type) {
	case *lua.LState:
		L = v
	case error:
		return out, v
	}
	defer lp.pool.Put(L)

	err := L.CallByParam(lua.P{
		Fn:      L.GetGlobal(formatFuncName),
		NRet:    1,
		Protect: true,
	}, lua.LBool(out.Value), lua.LNumber(out.Line), lua.LNumber(out.Column), outputTable(L, out))
	if err != nil {
		return out, fmt.Errorf("lua script error: %w", err)
	}

	ret := L.Get(-1)
	L.Pop(1)

	if ret.Type() != lua.LTString && ret.Type() != lua.LTNumber {
		return out, fmt.Errorf("%s returned %s, expected a string", formatFuncName, ret.Type())
	}

	out.Text = lua.LVAsString(ret)

	return out, nil
}

func outputTable(L *lua.LState, out entity.Output) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("id", lua.LString(out.ID.String()))
	t.RawSetString("run_id", lua.LString(out.RunID.String()))
	t.RawSetString("program", lua.LString(out.Program))
	t.RawSetString("seq", lua.LNumber(out.Seq))
	t.RawSetString("text", lua.LString(out.Text))
	return t
}
