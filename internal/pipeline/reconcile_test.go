package pipeline

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/doc-intake/constants"
	"github.com/joseph-ayodele/doc-intake/internal/common"
	"github.com/joseph-ayodele/doc-intake/internal/imaging"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestReconcileRewritesTIFFInPlace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.tiff")
	writeFile(t, path, []byte("old contents"))

	pages := []*image.Gray{grayPage(12, 8, 255), grayPage(12, 8, 0)}
	require.NoError(t, Reconcile(path, constants.TIFF, pages))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	n, err := imaging.TIFFPageCount(raw)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestReconcileEmptyPagesIsRegenerationError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.tiff")
	writeFile(t, path, []byte("original"))

	err := Reconcile(path, constants.TIFF, nil)
	require.ErrorIs(t, err, common.ErrRegeneration)

	raw, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, []byte("original"), raw, "failed rebuild keeps the original file")
}

func TestReconcileUnknownFormatKeepsOriginal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.bin")
	writeFile(t, path, []byte("original"))

	err := Reconcile(path, "BMP", []*image.Gray{grayPage(4, 4, 255)})
	require.ErrorIs(t, err, common.ErrRegeneration)

	raw, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, []byte("original"), raw)

	entries, err2 := os.ReadDir(dir)
	require.NoError(t, err2)
	assert.Len(t, entries, 1, "temp file cleaned up on failure")
}

func TestReconcileTwoPageTIFFOneRotated(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.tiff")
	writeFile(t, path, []byte("stale"))

	rotated := imaging.RotateCW(grayPage(20, 30, 255), 90)
	pages := []*image.Gray{rotated, grayPage(40, 50, 255)}
	require.NoError(t, Reconcile(path, constants.TIFF, pages))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	decoded, err := imaging.DecodeTIFFPages(raw)
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	assert.Equal(t, 30, decoded[0].Bounds().Dx())
	assert.Equal(t, 40, decoded[1].Bounds().Dx())
}
