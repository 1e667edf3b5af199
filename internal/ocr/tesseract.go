package ocr

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
)

// TesseractEngine shells out to the tesseract binary. Page images are written
// to a scratch file because the CLI reads from a path, not stdin.
type TesseractEngine struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewTesseractEngine(cfg Config, logger *slog.Logger) *TesseractEngine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = "./tmp"
	}
	return &TesseractEngine{cfg: cfg, runner: execRunner{}, logger: logger}
}

// WithRunner swaps the command runner, for tests.
func (e *TesseractEngine) WithRunner(r Runner) *TesseractEngine {
	e.runner = r
	return e
}

// Recognize runs a text recognition pass over one page image.
func (e *TesseractEngine) Recognize(ctx context.Context, img image.Image, mode Mode) (string, error) {
	path, cleanup, err := e.writeTemp(img)
	if err != nil {
		return "", err
	}
	defer cleanup()

	args := []string{path, "stdout", "-l", e.cfg.Lang, "--psm", strconv.Itoa(mode.psm())}
	if e.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(e.cfg.OEM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w (stderr: %s)", err, truncate(string(errb), 512))
	}
	return string(out), nil
}

// DetectRotation runs an orientation-and-script pass (--psm 0) and parses the
// suggested rotation out of its report.
func (e *TesseractEngine) DetectRotation(ctx context.Context, img image.Image) (int, error) {
	path, cleanup, err := e.writeTemp(img)
	if err != nil {
		return 0, err
	}
	defer cleanup()

	args := []string{path, "stdout", "--psm", "0"}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return 0, fmt.Errorf("tesseract osd: %w (stderr: %s)", err, truncate(string(errb), 512))
	}
	return ParseOSDRotation(string(out))
}

func (e *TesseractEngine) writeTemp(img image.Image) (string, func(), error) {
	if err := os.MkdirAll(e.cfg.CacheDir, 0o755); err != nil {
		return "", nil, fmt.Errorf("ocr cache dir: %w", err)
	}
	path := filepath.Join(e.cfg.CacheDir, "page-"+uuid.NewString()+".png")
	f, err := os.Create(path)
	if err != nil {
		return "", nil, fmt.Errorf("ocr temp file: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return "", nil, fmt.Errorf("encode page image: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", nil, err
	}
	return path, func() { os.Remove(path) }, nil
}
