package source

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFileRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.bs")
	require.NoError(t, os.WriteFile(path, []byte("print t\n"), 0o600))

	f := NewFile(discardLogger(), path)
	assert.Equal(t, path, f.Name())

	text, err := f.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "print t\n", text)

	_, err = NewFile(discardLogger(), filepath.Join(t.TempDir(), "missing.bs")).Read(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.bs")
	require.NoError(t, os.WriteFile(path, []byte("print t\n"), 0o600))

	f := NewFile(discardLogger(), path)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan string, 8)
	done := make(chan error, 1)
	go func() {
		done <- f.Watch(ctx, func(ctx context.Context) {
			text, err := f.Read(ctx)
			if err != nil {
				return
			}
			select {
			case changed <- text:
			default:
			}
		})
	}()

	// Writes to unrelated files are ignored.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(filepath.Join(dir, "other.bs"), []byte("x"), 0o600)
		_ = os.WriteFile(path, []byte("print f\n"), 0o600)

		select {
		case text := <-changed:
			return text == "print f\n"
		case <-time.After(500 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestReader(t *testing.T) {
	r := NewReader("stdin", strings.NewReader("x = 1\nprint x"))
	assert.Equal(t, "stdin", r.Name())

	for range 2 {
		text, err := r.Read(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "x = 1\nprint x", text)
	}

	boom := errors.New("boom")
	_, err := NewReader("pipe", iotest.ErrReader(boom)).Read(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestString(t *testing.T) {
	s := NewString("request", "print t")
	assert.Equal(t, "request", s.Name())

	text, err := s.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "print t", text)
}
