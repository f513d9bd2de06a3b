package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/thisisjab/boolscript/entity"
	"github.com/thisisjab/boolscript/fault"
	"github.com/thisisjab/boolscript/script/evaluator"
	"github.com/thisisjab/boolscript/script/terminal"
)

// Verifier computes a reference value for an expression under env.
type Verifier interface {
	Evaluate(env *evaluator.Environment, expr []terminal.Symbol) (bool, error)
}

// runner receives every parsed statement of one run. It evaluates the
// statement, optionally verifies it and then applies its side effect.
type runner struct {
	ctx      context.Context
	logger   *slog.Logger
	runID    uuid.UUID
	program  string
	eval     *evaluator.Evaluator
	verifier Verifier
	chain    processorChain
	storage  *storageManager
	outputs  []entity.Output
}

func newRunner(ctx context.Context, logger *slog.Logger, runID uuid.UUID, program string, cfg Config, sm *storageManager) *runner {
	r := &runner{
		ctx:      ctx,
		logger:   logger,
		runID:    runID,
		program:  program,
		verifier: cfg.Verifier,
		chain:    processorChain{logger: logger, processors: cfg.Processors},
		storage:  sm,
	}
	r.eval = evaluator.New(evaluator.NewEnvironment(), r)

	return r
}

func (r *runner) Execute(rec *terminal.Record) error {
	if err := r.ctx.Err(); err != nil {
		return err
	}

	st, err := r.eval.Evaluate(rec)
	if err != nil {
		return err
	}

	r.logger.Debug("evaluated statement", "kind", st.Kind, "name", st.Name, "value", st.Value, "position", st.Pos)

	if r.verifier != nil {
		if err := r.verify(st); err != nil {
			return err
		}
	}

	return r.eval.Apply(st)
}

func (r *runner) verify(st evaluator.Statement) error {
	want, err := r.verifier.Evaluate(r.eval.Env(), st.Expr)
	if err != nil {
		return fault.New(fault.VerificationCode, "reference evaluation failed").
			WithOriginal(err).
			WithLocation(st.Pos.Line, st.Pos.Column)
	}

	if want != st.Value {
		msg := fmt.Sprintf("%q reduced to %t but the reference evaluation gives %t", terminal.Join(st.Expr), st.Value, want)
		return fault.New(fault.VerificationCode, msg).WithLocation(st.Pos.Line, st.Pos.Column)
	}

	return nil
}

// Emit turns a printed value into an output, processes it and stores it.
func (r *runner) Emit(out evaluator.Output) error {
	o := entity.NewOutput(r.runID, r.program, len(r.outputs)+1, out.Value, out.Pos.Line, out.Pos.Column)
	o = r.chain.process(o)
	r.outputs = append(r.outputs, o)

	if err := r.storage.add(r.ctx, o); err != nil {
		return fault.New(fault.IOCode, "cannot store outputs").WithOriginal(err)
	}

	return nil
}
