package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/thisisjab/boolscript/entity"
)

// Storage represents an output storage for the engine.
// Storages are shared between runs and must be safe for concurrent use.
type Storage interface {
	Name() string
	StoreOutputs(ctx context.Context, outputs ...entity.Output) error
}

// storageManager buffers the outputs of one run and hands them to every
// storage in emission order.
type storageManager struct {
	storages []Storage
	logger   *slog.Logger
	buffer   []entity.Output

	// bufferMaxSize defines the maximum items that buffer holds before flushing.
	// Setting this to zero flushes on every output.
	bufferMaxSize uint
}

func newStorageManager(logger *slog.Logger, storages []Storage, bufferMaxSize uint) *storageManager {
	return &storageManager{
		logger:        logger,
		storages:      storages,
		bufferMaxSize: bufferMaxSize,
		buffer:        make([]entity.Output, 0, bufferMaxSize),
	}
}

func (sm *storageManager) add(ctx context.Context, outputs ...entity.Output) error {
	if len(outputs) == 0 {
		return nil
	}

	sm.buffer = append(sm.buffer, outputs...)

	if uint(len(sm.buffer)) >= sm.bufferMaxSize {
		return sm.flush(ctx)
	}

	return nil
}

// flush empties the buffer into every storage. A failing storage does not
// keep the others from receiving the outputs.
func (sm *storageManager) flush(ctx context.Context) error {
	if len(sm.buffer) == 0 {
		return nil
	}

	toFlush := sm.buffer
	sm.buffer = make([]entity.Output, 0, sm.bufferMaxSize)

	var errs []error
	for _, s := range sm.storages {
		if err := s.StoreOutputs(ctx, toFlush...); err != nil {
			sm.logger.Error("failed to flush outputs", "storage", s.Name(), "error", err)
			errs = append(errs, fmt.Errorf("storage %s: %w", s.Name(), err))
			continue
		}

		sm.logger.Debug("flushed outputs successfully", "storage", s.Name(), "count", len(toFlush))
	}

	return errors.Join(errs...)
}
