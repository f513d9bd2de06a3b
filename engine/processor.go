package engine

import (
	"log/slog"

	"github.com/thisisjab/boolscript/entity"
)

// OutputProcessor is an interface that defines the contract for output processors.
type OutputProcessor interface {
	Name() string
	Process(out entity.Output) (entity.Output, error)
}

// processorChain passes an output through every processor in order. A failing
// processor is skipped and the output it received moves on unchanged.
type processorChain struct {
	logger     *slog.Logger
	processors []OutputProcessor
}

func (c processorChain) process(out entity.Output) entity.Output {
	for _, p := range c.processors {
		processed, err := p.Process(out)
		if err != nil {
			c.logger.Error("failed to process output", "processor", p.Name(), "output_id", out.ID, "error", err)
			continue
		}

		out = processed
	}

	return out
}
