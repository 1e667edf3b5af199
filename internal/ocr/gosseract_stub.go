//go:build !gosseract

package ocr

import (
	"context"
	"errors"
	"image"
	"log/slog"
)

// GosseractEngine is only available when built with the gosseract tag.
type GosseractEngine struct{}

func NewGosseractEngine(Config, *slog.Logger) (*GosseractEngine, error) {
	return nil, errors.New("gosseract engine not compiled in; build with -tags gosseract")
}

func (*GosseractEngine) Recognize(context.Context, image.Image, Mode) (string, error) {
	return "", errors.New("gosseract engine not compiled in")
}
