//go:build gosseract

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"

	"github.com/otiai10/gosseract/v2"
)

// GosseractEngine recognizes text in-process through the tesseract C API.
// Built only with the gosseract tag since it needs libtesseract at link time.
type GosseractEngine struct {
	cfg    Config
	logger *slog.Logger
}

func NewGosseractEngine(cfg Config, logger *slog.Logger) (*GosseractEngine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	return &GosseractEngine{cfg: cfg, logger: logger}, nil
}

func (e *GosseractEngine) Recognize(ctx context.Context, img image.Image, mode Mode) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.cfg.Lang); err != nil {
		return "", fmt.Errorf("gosseract language: %w", err)
	}
	if e.cfg.TessdataDir != "" {
		if err := client.SetTessdataPrefix(e.cfg.TessdataDir); err != nil {
			return "", fmt.Errorf("gosseract tessdata: %w", err)
		}
	}
	psm := gosseract.PSM_AUTO
	if mode == ModeBlock {
		psm = gosseract.PSM_SINGLE_BLOCK
	}
	if err := client.SetPageSegMode(psm); err != nil {
		return "", fmt.Errorf("gosseract psm: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode page image: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("gosseract image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("gosseract recognize: %w", err)
	}
	return text, nil
}
