package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settleDelay groups the burst of events an editor produces for one save.
const settleDelay = 100 * time.Millisecond

// File reads a program from a file and can watch it for changes.
type File struct {
	path   string
	logger *slog.Logger
}

func NewFile(logger *slog.Logger, path string) *File {
	return &File{
		logger: logger,
		path:   path,
	}
}

func (f *File) Name() string {
	return f.path
}

func (f *File) Read(context.Context) (string, error) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		return "", fmt.Errorf("cannot read file: %w", err)
	}
	return string(b), nil
}

// Watch calls onChange every time the file is written or recreated, until ctx
// is done. The parent directory is watched rather than the file itself, so
// editors that save by replacing the file are noticed as well.
func (f *File) Watch(ctx context.Context, onChange func(ctx context.Context)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("cannot create watcher: %w", err)
	}
	defer watcher.Close()

	target := filepath.Clean(f.path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("cannot add directory to watcher: %w", err)
	}

	timer := time.NewTimer(settleDelay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				f.logger.Debug("fsnotify watcher channel is closed.")
				return nil
			}

			if filepath.Clean(event.Name) != target {
				continue
			}

			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				f.logger.Debug("Received unhandled event from fsnotify.", "event", event.String())
				continue
			}

			timer.Reset(settleDelay)

		case <-timer.C:
			f.logger.Debug("program file changed", "path", f.path)
			onChange(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}
