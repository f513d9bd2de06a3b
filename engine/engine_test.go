package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thisisjab/boolscript/entity"
	"github.com/thisisjab/boolscript/fault"
	"github.com/thisisjab/boolscript/script/evaluator"
	"github.com/thisisjab/boolscript/script/terminal"
)

type program struct {
	name string
	text string
	err  error
}

func (p program) Name() string { return p.name }

func (p program) Read(context.Context) (string, error) { return p.text, p.err }

type memoryStorage struct {
	mu      sync.Mutex
	batches [][]entity.Output
	err     error
	closed  bool
}

func (s *memoryStorage) Name() string { return "memory" }

func (s *memoryStorage) StoreOutputs(_ context.Context, outputs ...entity.Output) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	s.batches = append(s.batches, outputs)
	return nil
}

func (s *memoryStorage) Close(context.Context) error {
	s.closed = true
	return nil
}

func (s *memoryStorage) texts() []string {
	var out []string
	for _, b := range s.batches {
		for _, o := range b {
			out = append(out, o.Text)
		}
	}
	return out
}

type processorFunc struct {
	name string
	fn   func(entity.Output) (entity.Output, error)
}

func (p processorFunc) Name() string { return p.name }

func (p processorFunc) Process(out entity.Output) (entity.Output, error) { return p.fn(out) }

type verifierFunc func(env *evaluator.Environment, expr []terminal.Symbol) (bool, error)

func (f verifierFunc) Evaluate(env *evaluator.Environment, expr []terminal.Symbol) (bool, error) {
	return f(env, expr)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()

	e, err := New(cfg, discardLogger())
	require.NoError(t, err)
	return e
}

func TestConfigValidate(t *testing.T) {
	_, err := New(Config{}, discardLogger())
	assert.Error(t, err)

	_, err = New(Config{Storages: []Storage{nil}}, discardLogger())
	assert.Error(t, err)

	_, err = New(Config{Storages: []Storage{&memoryStorage{}}, Processors: []OutputProcessor{nil}}, discardLogger())
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	st := &memoryStorage{}
	e := newEngine(t, Config{Storages: []Storage{st}})

	res, err := e.Run(context.Background(), program{name: "demo", text: "x = true\nprint x\nprint x and 0"})
	require.NoError(t, err)

	assert.Equal(t, "demo", res.Program)
	assert.Equal(t, 3, res.Statements)
	assert.Equal(t, map[string]bool{"x": true}, res.Variables)
	require.Len(t, res.Outputs, 2)
	assert.Equal(t, []string{"true", "false"}, st.texts())

	first := res.Outputs[0]
	assert.Equal(t, res.RunID, first.RunID)
	assert.Equal(t, 1, first.Seq)
	assert.True(t, first.Value)
	assert.Equal(t, 2, first.Line)
	assert.Equal(t, 1, first.Column)
	assert.Equal(t, 2, res.Outputs[1].Seq)
	assert.NotEqual(t, first.ID, res.Outputs[1].ID)
}

func TestRunBuffersOutputs(t *testing.T) {
	st := &memoryStorage{}
	e := newEngine(t, Config{Storages: []Storage{st}, OutputBufferSize: 2})

	_, err := e.Run(context.Background(), program{name: "buf", text: "print t print f print t print t print f"})
	require.NoError(t, err)

	require.Len(t, st.batches, 3)
	assert.Len(t, st.batches[0], 2)
	assert.Len(t, st.batches[1], 2)
	assert.Len(t, st.batches[2], 1)
	assert.Equal(t, []string{"true", "false", "true", "true", "false"}, st.texts())
}

func TestRunFailedRunKeepsEarlierOutputs(t *testing.T) {
	st := &memoryStorage{}
	e := newEngine(t, Config{Storages: []Storage{st}, OutputBufferSize: 10})

	res, err := e.Run(context.Background(), program{name: "bad", text: "a = t\nprint a\nprint b"})
	require.Error(t, err)

	var unbound *evaluator.UnboundVariableError
	require.True(t, errors.As(err, &unbound))
	assert.Equal(t, "b", unbound.Name)
	assert.Equal(t, fault.UnboundVariableCode, fault.CodeOf(err))

	assert.Equal(t, 2, res.Statements)
	assert.Equal(t, map[string]bool{"a": true}, res.Variables)
	assert.Equal(t, []string{"true"}, st.texts())
}

func TestRunReadError(t *testing.T) {
	e := newEngine(t, Config{Storages: []Storage{&memoryStorage{}}})

	_, err := e.Run(context.Background(), program{name: "missing", err: errors.New("no such file")})
	assert.Equal(t, fault.IOCode, fault.CodeOf(err))
}

func TestRunStorageError(t *testing.T) {
	broken := &memoryStorage{err: errors.New("connection refused")}
	healthy := &memoryStorage{}
	e := newEngine(t, Config{Storages: []Storage{broken, healthy}})

	res, err := e.Run(context.Background(), program{name: "s", text: "print t print f"})
	assert.Equal(t, fault.IOCode, fault.CodeOf(err))
	assert.Equal(t, 0, res.Statements)
	assert.Equal(t, []string{"true"}, healthy.texts())
}

func TestRunProcessors(t *testing.T) {
	st := &memoryStorage{}
	upper := processorFunc{name: "upper", fn: func(o entity.Output) (entity.Output, error) {
		o.Text = strings.ToUpper(o.Text)
		return o, nil
	}}
	broken := processorFunc{name: "broken", fn: func(o entity.Output) (entity.Output, error) {
		return entity.Output{}, errors.New("boom")
	}}
	suffix := processorFunc{name: "suffix", fn: func(o entity.Output) (entity.Output, error) {
		o.Text += "!"
		return o, nil
	}}

	e := newEngine(t, Config{Storages: []Storage{st}, Processors: []OutputProcessor{upper, broken, suffix}})

	res, err := e.Run(context.Background(), program{name: "p", text: "print t"})
	require.NoError(t, err)
	assert.Equal(t, []string{"TRUE!"}, st.texts())
	assert.Equal(t, "TRUE!", res.Outputs[0].Text)
	assert.True(t, res.Outputs[0].Value)
}

func TestRunVerifier(t *testing.T) {
	calls := 0
	agree := verifierFunc(func(env *evaluator.Environment, expr []terminal.Symbol) (bool, error) {
		calls++
		return evaluator.Reduce(env, expr)
	})

	e := newEngine(t, Config{Storages: []Storage{&memoryStorage{}}, Verifier: agree})
	_, err := e.Run(context.Background(), program{name: "v", text: "x = t or f\nprint not x"})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	disagree := verifierFunc(func(env *evaluator.Environment, expr []terminal.Symbol) (bool, error) {
		v, err := evaluator.Reduce(env, expr)
		return !v, err
	})

	e = newEngine(t, Config{Storages: []Storage{&memoryStorage{}}, Verifier: disagree})
	res, err := e.Run(context.Background(), program{name: "v", text: "x = t\nprint x"})
	assert.Equal(t, fault.VerificationCode, fault.CodeOf(err))
	assert.Empty(t, res.Variables)
	assert.Equal(t, `Verification Error: "true" reduced to true but the reference evaluation gives false at line 1 char 1`, fault.Format(err))
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := newEngine(t, Config{Storages: []Storage{&memoryStorage{}}})
	_, err := e.Run(ctx, program{name: "c", text: "print t"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClose(t *testing.T) {
	st := &memoryStorage{}
	e := newEngine(t, Config{Storages: []Storage{st}})

	require.NoError(t, e.Close(context.Background()))
	assert.True(t, st.closed)
}
