package cli

import (
	"bytes"
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// lockedBuffer is a bytes.Buffer safe for one writer and one reader.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.lia")
	require.NoError(t, os.WriteFile(path, []byte("x + 1 = 5\n"), 0o644))

	a := &app{
		fs:     afero.NewOsFs(),
		cfg:    defaultConfig(),
		logger: log.New(io.Discard, "", 0),
	}
	w, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var out lockedBuffer
	done := make(chan error, 1)
	go func() { done <- a.watch(ctx, w, path, &out) }()

	contains := func(s string) func() bool {
		return func() bool { return strings.Contains(out.String(), s) }
	}
	require.Eventually(t, contains("x = 4\n"), 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("x + 1 = 7\n"), 0o644))
	require.Eventually(t, contains("x = 6\n"), 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not return after cancel")
	}
}
