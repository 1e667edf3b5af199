package pdfutil

import (
	"bytes"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grayPage(w, h int, fill uint8) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for i := range g.Pix {
		g.Pix[i] = fill
	}
	return g
}

func TestWriteThenCountPages(t *testing.T) {
	var buf bytes.Buffer
	pages := []*image.Gray{grayPage(40, 60, 255), grayPage(40, 60, 200), grayPage(40, 60, 128)}
	require.NoError(t, WritePDFFromPages(&buf, pages))

	path := filepath.Join(t.TempDir(), "out.pdf")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	n, err := PageCount(path)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestWritePDFFromPagesRejectsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.Error(t, WritePDFFromPages(&buf, nil))
}

func TestPageCountRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf"), 0o644))
	_, err := PageCount(path)
	require.Error(t, err)
}
