package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/doc-intake/internal/common"
)

func TestWaitStableReturnsOnceSizeSettles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.pdf")
	require.NoError(t, os.WriteFile(path, []byte("complete content"), 0o644))

	size, err := WaitStable(context.Background(), path, 5*time.Millisecond, time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(len("complete content")), size)
}

func TestWaitStableTimesOutOnGrowingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.pdf")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	stop := make(chan struct{})
	go func() {
		f, _ := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
		defer f.Close()
		for {
			select {
			case <-stop:
				return
			case <-time.After(2 * time.Millisecond):
				f.Write([]byte("more"))
			}
		}
	}()
	defer close(stop)

	_, err := WaitStable(context.Background(), path, 5*time.Millisecond, 40*time.Millisecond)
	require.ErrorIs(t, err, common.ErrStageTimeout)

	_, statErr := os.Stat(path)
	assert.NoError(t, statErr, "timed-out file must stay in place")
}

func TestWaitStableMissingFile(t *testing.T) {
	_, err := WaitStable(context.Background(), filepath.Join(t.TempDir(), "gone.pdf"), time.Millisecond, 10*time.Millisecond)
	require.Error(t, err)
}

func TestDedupSuppressesRepeatSize(t *testing.T) {
	d := NewDedup()
	assert.True(t, d.FirstTime("/w/a.pdf", 100))
	assert.False(t, d.FirstTime("/w/a.pdf", 100))
	assert.True(t, d.FirstTime("/w/a.pdf", 200), "a new size means a new write")

	d.Forget("/w/a.pdf")
	assert.True(t, d.FirstTime("/w/a.pdf", 200))
}
