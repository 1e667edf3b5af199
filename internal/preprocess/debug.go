package preprocess

import (
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
)

// debugSaver dumps intermediate stage images as PNGs when debug.save_images
// is on. Save failures are logged and otherwise ignored.
type debugSaver struct {
	cfg    DebugConfig
	logger *slog.Logger
}

func newDebugSaver(cfg DebugConfig, logger *slog.Logger) *debugSaver {
	return &debugSaver{cfg: cfg, logger: logger}
}

func (d *debugSaver) save(g *image.Gray, baseName, stage string, pageIdx int) {
	if !d.cfg.SaveImages {
		return
	}
	sub := d.cfg.Subfolders[stage]
	if sub == "" {
		sub = stage
	}
	dir := filepath.Join(d.cfg.BaseFolder, sub)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		d.logger.Warn("preprocess.debug.mkdir_failed", "dir", dir, "error", err)
		return
	}
	name := fmt.Sprintf("%s_%s_page_%d.png", baseName, stage, pageIdx)
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		d.logger.Warn("preprocess.debug.create_failed", "file", name, "error", err)
		return
	}
	defer f.Close()
	if err := png.Encode(f, g); err != nil {
		d.logger.Warn("preprocess.debug.encode_failed", "file", name, "error", err)
	}
}
