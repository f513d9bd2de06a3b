package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/thisisjab/boolscript/api"
	"github.com/thisisjab/boolscript/engine"
	"github.com/thisisjab/boolscript/oracle"
	"github.com/thisisjab/boolscript/processor"
	"github.com/thisisjab/boolscript/storage"
	"go.yaml.in/yaml/v3"
)

// Environment variables overriding the file configuration.
const (
	EnvLogLevel    = "BOOLSCRIPT_LOG_LEVEL"
	EnvLogType     = "BOOLSCRIPT_LOG_TYPE"
	EnvVerify      = "BOOLSCRIPT_VERIFY"
	EnvAPIAddr     = "BOOLSCRIPT_API_ADDR"
	EnvCORSOrigins = "BOOLSCRIPT_CORS_ORIGINS"
)

type Config struct {
	Logger           LoggerConfig      `yaml:"logger"`
	Storages         []StorageConfig   `yaml:"storages"`
	Processors       []ProcessorConfig `yaml:"processors"`
	Verify           bool              `yaml:"verify"`
	OutputBufferSize uint              `yaml:"output_buffer_size"`
	API              api.Config        `yaml:"api"`
}

type LoggerConfig struct {
	Level string `yaml:"level"`
	Type  string `yaml:"type"`
}

type StorageConfig struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Config any    `yaml:"config"`
}

type ProcessorConfig struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Config any    `yaml:"config"`
}

// Default is the configuration used when no file is given: programs print to
// stdout and logs are plain text at info level.
func Default() Config {
	return Config{
		Logger:   LoggerConfig{Level: "info", Type: "text"},
		Storages: []StorageConfig{{Name: "stdout", Type: "stdout"}},
		API:      api.Config{Addr: "localhost:8000"},
	}
}

// LoadDotEnv loads environment variables from a .env file. A missing file is
// not an error. Variables already set in the environment win.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("cannot load env file: %w", err)
	}

	return nil
}

// ApplyEnv overrides the configuration with the BOOLSCRIPT_* variables.
func (cfg *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvLogLevel); v != "" {
		cfg.Logger.Level = v
	}

	if v := getenv(EnvLogType); v != "" {
		cfg.Logger.Type = v
	}

	if v := getenv(EnvVerify); v != "" {
		verify, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvVerify, err)
		}
		cfg.Verify = verify
	}

	if v := getenv(EnvAPIAddr); v != "" {
		cfg.API.Addr = v
	}

	if v := getenv(EnvCORSOrigins); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.API.CORS.TrustedOrigins = origins
	}

	return nil
}

// Parse builds the engine configuration and the logger. Program output goes
// to stdout, logs go to stderr.
func (cfg Config) Parse(stdout, stderr io.Writer) (*engine.Config, *slog.Logger, error) {
	logger, err := parseLoggerConfig(cfg.Logger, stderr)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot create logger: %w", err)
	}

	if len(cfg.Storages) == 0 {
		return nil, logger, errors.New("no storage is configured")
	}

	storages := make([]engine.Storage, len(cfg.Storages))
	for i, sc := range cfg.Storages {
		s, err := parseStorageConfig(sc, stdout)
		if err != nil {
			return nil, logger, fmt.Errorf("cannot create storage `%s`: %w", sc.Name, err)
		}
		storages[i] = s
	}

	processors := make([]engine.OutputProcessor, len(cfg.Processors))
	for i, pc := range cfg.Processors {
		p, err := parseProcessorConfig(pc)
		if err != nil {
			return nil, logger, fmt.Errorf("cannot create processor `%s`: %w", pc.Name, err)
		}
		processors[i] = p
	}

	engineCfg := &engine.Config{
		Storages:         storages,
		Processors:       processors,
		OutputBufferSize: cfg.OutputBufferSize,
	}

	if cfg.Verify {
		engineCfg.Verifier = oracle.NewLuaOracle()
	}

	return engineCfg, logger, nil
}

func parseLoggerConfig(cfg LoggerConfig, w io.Writer) (*slog.Logger, error) {
	var handler slog.Handler

	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log level: %s", cfg.Level)
	}

	switch cfg.Type {
	case "json":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	case "text":
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	case "colored-text":
		handler = tint.NewHandler(w, &tint.Options{Level: level, AddSource: true, NoColor: !isTerminal(w)})
	default:
		return nil, fmt.Errorf("invalid log type: %s", cfg.Type)
	}

	return slog.New(handler), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func parseStorageConfig(cfg StorageConfig, stdout io.Writer) (engine.Storage, error) {
	switch cfg.Type {
	case "stdout":
		var writerConfig storage.WriterStorageConfig
		if err := remarshal(cfg.Config, &writerConfig); err != nil {
			return nil, fmt.Errorf("cannot parse stdout storage config: %w", err)
		}

		writerConfig.Name = cfg.Name

		return storage.NewWriterStorage(stdout, writerConfig), nil

	case "jsonl":
		var jsonlConfig storage.JSONLinesStorageConfig
		if err := remarshal(cfg.Config, &jsonlConfig); err != nil {
			return nil, fmt.Errorf("cannot parse jsonl storage config: %w", err)
		}

		jsonlConfig.Name = cfg.Name

		s, err := storage.NewJSONLinesStorage(jsonlConfig)
		if err != nil {
			return nil, fmt.Errorf("cannot create jsonl storage: %w", err)
		}

		return s, nil

	case "clickhouse":
		var clickHouseConfig storage.ClickHouseStorageConfig
		if err := remarshal(cfg.Config, &clickHouseConfig); err != nil {
			return nil, fmt.Errorf("cannot parse clickhouse storage config: %w", err)
		}

		clickHouseConfig.Name = cfg.Name

		s, err := storage.NewClickHouseStorage(clickHouseConfig)
		if err != nil {
			return nil, fmt.Errorf("cannot create clickhouse storage: %w", err)
		}

		return s, nil

	default:
		return nil, fmt.Errorf("invalid storage type: %s", cfg.Type)
	}
}

func parseProcessorConfig(cfg ProcessorConfig) (engine.OutputProcessor, error) {
	switch cfg.Type {
	case "lua":
		var luaConfig processor.LuaOutputProcessorConfig
		if err := remarshal(cfg.Config, &luaConfig); err != nil {
			return nil, fmt.Errorf("cannot parse lua processor config: %w", err)
		}

		luaConfig.Name = cfg.Name

		p, err := processor.NewLuaOutputProcessor(luaConfig)
		if err != nil {
			return nil, fmt.Errorf("cannot create lua processor: %w", err)
		}

		return p, nil

	case "case":
		var caseConfig processor.CaseProcessorConfig
		if err := remarshal(cfg.Config, &caseConfig); err != nil {
			return nil, fmt.Errorf("cannot parse case processor config: %w", err)
		}

		caseConfig.Name = cfg.Name

		p, err := processor.NewCaseProcessor(caseConfig)
		if err != nil {
			return nil, fmt.Errorf("cannot create case processor: %w", err)
		}

		return p, nil

	default:
		return nil, fmt.Errorf("invalid processor type: %s", cfg.Type)
	}
}

// remarshal takes an input value, marshals it to YAML, and then unmarshals it into a new value of the same type.
// This is useful for converting generic interfaces (like map[string]any) into concrete struct types.
// The output parameter must be a pointer to the target type.
func remarshal(input any, output any) error {
	if input == nil {
		return nil
	}

	yamlBytes, err := yaml.Marshal(input)
	if err != nil {
		return fmt.Errorf("failed to marshal to YAML: %w", err)
	}

	if err := yaml.Unmarshal(yamlBytes, output); err != nil {
		return fmt.Errorf("failed to unmarshal from YAML: %w", err)
	}

	return nil
}
