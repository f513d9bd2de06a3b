package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/thisisjab/boolscript/entity"
	"github.com/thisisjab/boolscript/fault"
	"github.com/thisisjab/boolscript/script/lexer"
	"github.com/thisisjab/boolscript/script/parser"
)

type Config struct {
	Storages   []Storage
	Processors []OutputProcessor

	// Verifier, when set, cross-checks every statement before its side effect
	// is applied.
	Verifier Verifier

	// OutputBufferSize defines how many outputs are held before they are
	// handed to the storages. Zero hands every output over immediately.
	// The buffer is always flushed when a run ends.
	OutputBufferSize uint
}

// Result describes a finished run. It is returned for failed runs as well,
// holding everything produced up to the failing statement.
type Result struct {
	RunID      uuid.UUID       `json:"run_id"`
	Program    string          `json:"program"`
	Statements int             `json:"statements"`
	Outputs    []entity.Output `json:"outputs"`
	Variables  map[string]bool `json:"variables"`
	Duration   time.Duration   `json:"duration"`
}

// Engine runs programs against the configured processors and storages.
// A single Engine can serve concurrent runs; every run gets its own
// environment and output buffer.
type Engine struct {
	cfg    Config
	logger *slog.Logger
}

func New(cfg Config, logger *slog.Logger) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &Engine{
		cfg:    cfg,
		logger: logger,
	}, nil
}

func (c Config) validate() error {
	if len(c.Storages) == 0 {
		return errors.New("no output storage is configured")
	}

	for i, s := range c.Storages {
		if s == nil {
			return fmt.Errorf("storage #%d is nil", i)
		}
	}

	for i, p := range c.Processors {
		if p == nil {
			return fmt.Errorf("processor #%d is nil", i)
		}
	}

	return nil
}

// Run reads the program from src and executes it statement by statement until
// the end of input or the first error.
func (e *Engine) Run(ctx context.Context, src ProgramSource) (Result, error) {
	start := time.Now()
	res := Result{RunID: uuid.New(), Program: src.Name()}
	logger := e.logger.With("run_id", res.RunID, "program", res.Program)

	text, err := src.Read(ctx)
	if err != nil {
		return res, fault.New(fault.IOCode, "cannot read program").WithOriginal(err)
	}

	logger.Info("run started", "size", len(text))

	sm := newStorageManager(logger, e.cfg.Storages, e.cfg.OutputBufferSize)
	r := newRunner(ctx, logger, res.RunID, res.Program, e.cfg, sm)
	p := parser.New(lexer.New(text), r)

	runErr := p.Parse()

	// Outputs of a failed run are kept, so the buffer is flushed even when
	// the run was cancelled.
	if err := sm.flush(context.WithoutCancel(ctx)); err != nil && runErr == nil {
		runErr = fault.New(fault.IOCode, "cannot store outputs").WithOriginal(err)
	}

	res.Statements = p.Statements()
	res.Outputs = r.outputs
	res.Variables = r.eval.Env().Snapshot()
	res.Duration = time.Since(start)

	if runErr != nil {
		logger.Warn("run failed", "code", fault.CodeOf(runErr), "statements", res.Statements, "error", runErr)
		return res, runErr
	}

	logger.Info("run finished", "statements", res.Statements, "outputs", len(res.Outputs), "duration", res.Duration)

	return res, nil
}

// Close releases the storages that hold resources.
func (e *Engine) Close(ctx context.Context) error {
	var errs []error
	for _, s := range e.cfg.Storages {
		c, ok := s.(interface{ Close(context.Context) error })
		if !ok {
			continue
		}
		if err := c.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("cannot close storage %s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}
