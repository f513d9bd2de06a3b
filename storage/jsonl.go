package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/thisisjab/boolscript/entity"
)

type JSONLinesStorageConfig struct {
	Name string `yaml:"-"`
	Path string `yaml:"path"`
}

// JSONLinesStorage appends one JSON object per output to a file.
type JSONLinesStorage struct {
	mu   sync.Mutex
	file *os.File
	cfg  JSONLinesStorageConfig
}

func NewJSONLinesStorage(cfg JSONLinesStorageConfig) (*JSONLinesStorage, error) {
	if cfg.Path == "" {
		return nil, errors.New("jsonl storage path is required")
	}

	if cfg.Name == "" {
		cfg.Name = "jsonl"
	}

	return &JSONLinesStorage{cfg: cfg}, nil
}

func (s *JSONLinesStorage) Name() string {
	return s.cfg.Name
}

func (s *JSONLinesStorage) StoreOutputs(_ context.Context, outputs ...entity.Output) error {
	if len(outputs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		f, err := os.OpenFile(s.cfg.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("cannot open file: %w", err)
		}
		s.file = f
	}

	var buf []byte
	for _, o := range outputs {
		js, err := json.Marshal(o)
		if err != nil {
			return fmt.Errorf("cannot encode output %s: %w", o.ID, err)
		}
		buf = append(buf, js...)
		buf = append(buf, '\n')
	}

	if _, err := s.file.Write(buf); err != nil {
		return fmt.Errorf("cannot write outputs: %w", err)
	}

	return nil
}

func (s *JSONLinesStorage) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}

	err := s.file.Close()
	s.file = nil

	return err
}
