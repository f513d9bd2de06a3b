package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/thisisjab/boolscript/entity"
)

type ClickHouseStorageConfig struct {
	Name     string   `yaml:"-"`
	Addr     []string `yaml:"addr"`
	Database string   `yaml:"database"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
}

func (c ClickHouseStorageConfig) validate() error {
	if len(c.Addr) == 0 {
		return errors.New("at least one clickhouse address is required")
	}

	if c.Database == "" {
		return errors.New("clickhouse database is required")
	}

	return nil
}

// ClickHouseStorage inserts outputs in batches into the program_outputs table.
// The connection is opened on first use.
type ClickHouseStorage struct {
	mu   sync.Mutex
	conn driver.Conn
	cfg  ClickHouseStorageConfig
}

func NewClickHouseStorage(cfg ClickHouseStorageConfig) (*ClickHouseStorage, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.Name == "" {
		cfg.Name = "clickhouse"
	}

	return &ClickHouseStorage{cfg: cfg}, nil
}

func (s *ClickHouseStorage) Name() string {
	return s.cfg.Name
}

func setupClickHouseTables(ctx context.Context, conn driver.Conn) error {
	return conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS program_outputs (
			id UUID,
			run_id UUID,
			program String,
			seq UInt32,
			value Bool,
			text String,
			line UInt32,
			col UInt32,
			timestamp DateTime64(3)
		)
		ENGINE = MergeTree
		ORDER BY (program, timestamp, run_id, seq)
		PARTITION BY toYYYYMM(timestamp)
	`)
}

func (s *ClickHouseStorage) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.connect(ctx)
}

func (s *ClickHouseStorage) connect(ctx context.Context) error {
	if s.conn != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: s.cfg.Addr,
		Auth: clickhouse.Auth{
			Database: s.cfg.Database,
			Username: s.cfg.Username,
			Password: s.cfg.Password,
		},
		DialTimeout: 5 * time.Second,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		conn.Close() //nolint:errcheck
		return fmt.Errorf("failed to ping the database: %w", err)
	}

	if err := setupClickHouseTables(ctx, conn); err != nil {
		conn.Close() //nolint:errcheck
		return fmt.Errorf("failed to create table: %w", err)
	}

	s.conn = conn

	return nil
}

func (s *ClickHouseStorage) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}

	err := s.conn.Close()
	s.conn = nil

	return err
}

func (s *ClickHouseStorage) StoreOutputs(ctx context.Context, outputs ...entity.Output) error {
	if len(outputs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.connect(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 1*time.Minute)
	defer cancel()

	batch, err := s.conn.PrepareBatch(ctx, "INSERT INTO program_outputs (id, run_id, program, seq, value, text, line, col, timestamp)")
	if err != nil {
		return fmt.Errorf("couldn't prepare batch: %w", err)
	}

	for _, o := range outputs {
		err = batch.Append(o.ID, o.RunID, o.Program, uint32(o.Seq), o.Value, o.Text, uint32(o.Line), uint32(o.Column), o.Timestamp)
		if err != nil {
			return fmt.Errorf("couldn't append output to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("couldn't send batch: %w", err)
	}

	return nil
}
