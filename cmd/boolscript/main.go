package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/thisisjab/boolscript/config"
	"github.com/thisisjab/boolscript/engine"
	"github.com/thisisjab/boolscript/fault"
	"github.com/thisisjab/boolscript/source"
	"gopkg.in/yaml.v3"
)

const (
	exitOK         = 0
	exitDiagnostic = 1
	exitFailure    = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("boolscript", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", "", "path to config file")
	envFile := fs.String("env-file", ".env", "path to env file")
	verify := fs.Bool("verify", false, "cross-check every statement against the lua evaluator")
	watch := fs.Bool("watch", false, "run the program again whenever the file changes")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: boolscript [-config path] [-env-file path] [-verify] [-watch] <file|->")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return exitFailure
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return exitFailure
	}
	path := fs.Arg(0)

	if *watch && path == "-" {
		fmt.Fprintln(stderr, "cannot watch stdin")
		return exitFailure
	}

	cfg, err := loadConfig(*cfgPath, *envFile)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailure
	}

	if *verify {
		cfg.Verify = true
	}

	engineCfg, logger, err := cfg.Parse(stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "cannot parse config: %v\n", err)
		return exitFailure
	}

	eng, err := engine.New(*engineCfg, logger)
	if err != nil {
		logger.Error("engine error.", "error", err)
		return exitFailure
	}
	defer func() {
		if err := eng.Close(context.Background()); err != nil {
			logger.Error("cannot close engine.", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if path == "-" {
		return runOnce(ctx, eng, source.NewReader("stdin", stdin), stderr)
	}

	file := source.NewFile(logger, path)
	code := runOnce(ctx, eng, file, stderr)
	if !*watch {
		return code
	}

	logger.Info("watching program for changes.", "path", path)
	err = file.Watch(ctx, func(ctx context.Context) {
		runOnce(ctx, eng, file, stderr)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("watch error.", "error", err)
		return exitFailure
	}

	logger.Info("watch stopped.")
	return exitOK
}

// runOnce runs the program and prints its diagnostic, if any.
func runOnce(ctx context.Context, eng *engine.Engine, src engine.ProgramSource, stderr io.Writer) int {
	_, err := eng.Run(ctx, src)
	if err == nil {
		return exitOK
	}

	fmt.Fprintln(stderr, fault.Format(err))
	return exitCode(err)
}

func exitCode(err error) int {
	switch fault.CodeOf(err) {
	case fault.ScanCode, fault.SyntaxCode, fault.UnboundVariableCode, fault.VerificationCode:
		return exitDiagnostic
	default:
		return exitFailure
	}
}

func loadConfig(path, envFile string) (config.Config, error) {
	cfg := config.Default()

	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("cannot read config file content: %w", err)
		}

		if err := yaml.Unmarshal(content, &cfg); err != nil {
			return cfg, fmt.Errorf("cannot parse config file: %w", err)
		}
	}

	if err := config.LoadDotEnv(envFile); err != nil {
		return cfg, err
	}

	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return cfg, err
	}

	return cfg, nil
}
