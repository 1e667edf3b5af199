package watcher

import (
	"context"
	"os"
	"time"

	"github.com/joseph-ayodele/doc-intake/internal/common"
)

// WaitStable polls the file size until two consecutive reads agree, meaning
// the scanner has finished writing. Timing out returns ErrStageTimeout and
// leaves the file where it is.
func WaitStable(ctx context.Context, path string, interval, timeout time.Duration) (int64, error) {
	if interval <= 0 {
		interval = time.Second
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := int64(-1)
	for {
		info, err := os.Stat(path)
		if err != nil {
			return 0, err
		}
		size := info.Size()
		if size == last {
			return size, nil
		}
		last = size

		if time.Now().After(deadline) {
			return 0, common.NewAppError("STAGE_TIMEOUT",
				"file size still changing at deadline: "+path, common.ErrStageTimeout)
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Dedup suppresses repeat deliveries of the same path at the same size, so a
// burst of fsnotify events becomes one dispatch.
type Dedup struct {
	seen map[string]int64
}

func NewDedup() *Dedup {
	return &Dedup{seen: map[string]int64{}}
}

// FirstTime reports whether path at size has not been dispatched before and
// records it.
func (d *Dedup) FirstTime(path string, size int64) bool {
	if prev, ok := d.seen[path]; ok && prev == size {
		return false
	}
	d.seen[path] = size
	return true
}

// Forget drops the record for a path, e.g. after the file moved on.
func (d *Dedup) Forget(path string) {
	delete(d.seen, path)
}
