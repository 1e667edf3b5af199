// Package ocr wraps the tesseract engine behind small interfaces so the
// pipeline can recognize page text and detect page orientation without caring
// how the binary is invoked.
package ocr

import (
	"context"
	"image"
)

// Mode selects the page segmentation strategy for a recognition pass.
type Mode int

const (
	// ModeDocument is full automatic page segmentation, used for PDF pages.
	ModeDocument Mode = iota
	// ModeBlock assumes a single uniform block of text, used for TIFF pages.
	ModeBlock
)

// psm maps a Mode to the tesseract --psm value.
func (m Mode) psm() int {
	if m == ModeBlock {
		return 6
	}
	return 3
}

// Engine recognizes the text on a single page image.
type Engine interface {
	Recognize(ctx context.Context, img image.Image, mode Mode) (string, error)
}

// Orienter reports the clockwise rotation (0, 90, 180, 270) that would bring
// a page upright.
type Orienter interface {
	DetectRotation(ctx context.Context, img image.Image) (int, error)
}

// Config holds tesseract invocation settings.
type Config struct {
	Tesseract   string // binary name or absolute path; if empty -> "tesseract"
	Lang        string // default "eng"
	TessdataDir string
	OEM         int    // 1 = LSTM; 0 uses the tesseract default
	CacheDir    string // scratch dir for temp page images, default "./tmp"
}
