package storage

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/thisisjab/boolscript/entity"
)

type WriterStorageConfig struct {
	Name string `yaml:"-"`

	// WithPosition prefixes every line with the position of its print
	// statement, e.g. "3:1 true".
	WithPosition bool `yaml:"with_position"`
}

// WriterStorage writes the text of every output on its own line.
type WriterStorage struct {
	mu  sync.Mutex
	w   io.Writer
	cfg WriterStorageConfig
}

func NewWriterStorage(w io.Writer, cfg WriterStorageConfig) *WriterStorage {
	if cfg.Name == "" {
		cfg.Name = "stdout"
	}

	return &WriterStorage{w: w, cfg: cfg}
}

func (s *WriterStorage) Name() string {
	return s.cfg.Name
}

func (s *WriterStorage) StoreOutputs(_ context.Context, outputs ...entity.Output) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range outputs {
		var err error
		if s.cfg.WithPosition {
			_, err = fmt.Fprintf(s.w, "%d:%d %s\n", o.Line, o.Column, o.Text)
		} else {
			_, err = fmt.Fprintln(s.w, o.Text)
		}

		if err != nil {
			return fmt.Errorf("cannot write output: %w", err)
		}
	}

	return nil
}
