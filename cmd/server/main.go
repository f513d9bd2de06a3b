package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/thisisjab/boolscript/api"
	"github.com/thisisjab/boolscript/config"
	"github.com/thisisjab/boolscript/engine"
	"gopkg.in/yaml.v3"
)

func main() {
	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfgPath := flag.String("config", "", "path to config file")
	envFile := flag.String("env-file", ".env", "path to env file")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		fileContent, err := os.ReadFile(*cfgPath)
		if err != nil {
			panic(fmt.Errorf("cannot read config file content: %w", err))
		}

		if err := yaml.Unmarshal(fileContent, &cfg); err != nil {
			panic(fmt.Errorf("cannot parse config file: %w", err))
		}
	}

	if err := config.LoadDotEnv(*envFile); err != nil {
		panic(err)
	}

	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		panic(err)
	}

	engineCfg, logger, err := cfg.Parse(os.Stdout, os.Stderr)
	if err != nil {
		if logger != nil {
			logger.Error("cannot parse config file", "error", err)
			os.Exit(1)
		}
		panic(fmt.Errorf("cannot parse config file: %w", err))
	}

	// Setup signal handling to catch Ctrl+C (SIGINT) or Terminate (SIGTERM)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info("received signal. shutting down.", "signal", sig)
		cancel()
	}()

	eng, err := engine.New(*engineCfg, logger)
	if err != nil {
		logger.Error("engine error.", "error", err)
		os.Exit(1)
	}
	defer eng.Close(context.Background()) //nolint:errcheck

	server, err := api.NewServer(cfg.API, logger, eng)
	if err != nil {
		logger.Error("server error.", "error", err)
		os.Exit(1)
	}

	if err := server.Serve(ctx); err != nil {
		logger.Error("server error.", "error", err)
		cancel()
		os.Exit(1)
	}

	logger.Info("server stopped.")
}
