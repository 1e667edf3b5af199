package stager

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/doc-intake/internal/common"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// existsExactlyIn asserts the basename exists in exactly one of the given dirs.
func existsExactlyIn(t *testing.T, base string, dirs ...string) string {
	t.Helper()
	var found []string
	for _, d := range dirs {
		if _, err := os.Stat(filepath.Join(d, base)); err == nil {
			found = append(found, d)
		}
	}
	require.Len(t, found, 1, "file %q should exist in exactly one location, found in %v", base, found)
	return found[0]
}

func TestStageAndFinalizeMoveExactlyOnce(t *testing.T) {
	watch := t.TempDir()
	work := t.TempDir()
	final := t.TempDir()
	s := New(work, final, nil)

	src := filepath.Join(watch, "doc.pdf")
	writeFile(t, src, "pdf-bytes")
	require.Equal(t, watch, existsExactlyIn(t, "doc.pdf", watch, work, final))

	wp, err := s.Stage(src)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(work, "doc.pdf"), wp)
	require.Equal(t, work, existsExactlyIn(t, "doc.pdf", watch, work, final))

	fp, err := s.Finalize(wp)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(final, "doc.pdf"), fp)
	require.Equal(t, final, existsExactlyIn(t, "doc.pdf", watch, work, final))

	got, err := os.ReadFile(fp)
	require.NoError(t, err)
	require.Equal(t, "pdf-bytes", string(got))
}

func TestStageCreatesWorkDir(t *testing.T) {
	watch := t.TempDir()
	root := t.TempDir()
	work := filepath.Join(root, "work")
	final := filepath.Join(root, "final")
	s := New(work, final, nil)

	src := filepath.Join(watch, "a.tif")
	writeFile(t, src, "x")
	wp, err := s.Stage(src)
	require.NoError(t, err)
	require.FileExists(t, wp)
}

func TestCollisionFailsLoudlyWithoutClobbering(t *testing.T) {
	watch := t.TempDir()
	work := t.TempDir()
	s := New(work, t.TempDir(), nil)

	writeFile(t, filepath.Join(work, "doc.pdf"), "already-here")
	src := filepath.Join(watch, "doc.pdf")
	writeFile(t, src, "incoming")

	_, err := s.Stage(src)
	require.Error(t, err)
	require.True(t, errors.Is(err, common.ErrCollision))

	// Neither file was lost or overwritten.
	got, err := os.ReadFile(filepath.Join(work, "doc.pdf"))
	require.NoError(t, err)
	require.Equal(t, "already-here", string(got))
	require.FileExists(t, src)
}
