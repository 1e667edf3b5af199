// Package extract turns preprocessed page images into document text.
package extract

import (
	"context"
	"image"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/doc-intake/internal/imaging"
	"github.com/joseph-ayodele/doc-intake/internal/ocr"
)

// Result is the text of a whole document, page texts concatenated in order.
// A page whose recognition failed contributes an empty string and its index
// appears in FailedPages.
type Result struct {
	Text        string
	PageTexts   []string
	FailedPages []int
	Duration    time.Duration
}

// Extractor runs recognition over each page. The top header band is cropped
// off before OCR so patient banners stamped by the scanner never reach the
// extracted text.
type Extractor struct {
	engine       ocr.Engine
	headerCropPx int
	logger       *slog.Logger
}

func NewExtractor(engine ocr.Engine, headerCropPx int, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{engine: engine, headerCropPx: headerCropPx, logger: logger}
}

// ExtractPages recognizes every page in order. Per-page failures degrade to
// empty text; only a cancelled context aborts the document.
func (e *Extractor) ExtractPages(ctx context.Context, pages []*image.Gray, mode ocr.Mode) (Result, error) {
	start := time.Now()
	res := Result{PageTexts: make([]string, 0, len(pages))}

	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		img := page
		if e.headerCropPx > 0 {
			img = imaging.CropTop(page, e.headerCropPx)
		}
		txt, err := e.engine.Recognize(ctx, img, mode)
		if err != nil {
			e.logger.Warn("extract.page.failed", "page", i, "error", err)
			res.FailedPages = append(res.FailedPages, i)
			txt = ""
		}
		res.PageTexts = append(res.PageTexts, txt)
	}

	// Pages run together with no added separator; any break between them is
	// whatever the engine itself emitted.
	res.Text = strings.Join(res.PageTexts, "")
	res.Duration = time.Since(start)
	e.logger.Debug("extract.done",
		"pages", len(pages),
		"failed_pages", len(res.FailedPages),
		"chars", len(res.Text),
		"duration_ms", res.Duration.Milliseconds())
	return res, nil
}
