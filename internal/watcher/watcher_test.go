package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, ch <-chan string, want int, timeout time.Duration) []string {
	t.Helper()
	var got []string
	deadline := time.After(timeout)
	for len(got) < want {
		select {
		case p, ok := <-ch:
			if !ok {
				return got
			}
			got = append(got, p)
		case <-deadline:
			return got
		}
	}
	return got
}

func TestWatcherEmitsAllowedFiles(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	evCh, _, err := Start(ctx, Config{Dir: dir}, nil)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "scan.pdf"), []byte("pdf"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.pdf"), []byte("skip"), 0o644))

	got := collect(t, evCh, 1, 2*time.Second)
	require.NotEmpty(t, got)
	for _, p := range got {
		require.Equal(t, "scan.pdf", filepath.Base(p))
	}
}

func TestWatcherInitialScanFindsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "old.tiff"), []byte("tiff"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	evCh, _, err := Start(ctx, Config{Dir: dir, InitialScan: true}, nil)
	require.NoError(t, err)

	got := collect(t, evCh, 1, 2*time.Second)
	require.Len(t, got, 1)
	require.Equal(t, "old.tiff", filepath.Base(got[0]))
}

func TestWatcherRequiresDir(t *testing.T) {
	_, _, err := Start(context.Background(), Config{}, nil)
	require.Error(t, err)
}
