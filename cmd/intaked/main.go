// intaked is the document intake daemon: it watches a folder for scanned
// PDF/TIFF files and runs each through preprocessing, OCR, classification and
// persistence.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joseph-ayodele/doc-intake/internal/classify"
	"github.com/joseph-ayodele/doc-intake/internal/common"
	"github.com/joseph-ayodele/doc-intake/internal/extract"
	"github.com/joseph-ayodele/doc-intake/internal/ocr"
	"github.com/joseph-ayodele/doc-intake/internal/pipeline"
	"github.com/joseph-ayodele/doc-intake/internal/preprocess"
	repo "github.com/joseph-ayodele/doc-intake/internal/repository"
	"github.com/joseph-ayodele/doc-intake/internal/stager"
	"github.com/joseph-ayodele/doc-intake/internal/watcher"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	db, dialect, err := repo.Open(ctx, repo.Config{
		DSN:         cfg.Database.DSN,
		DialTimeout: cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		logger.Error("open db", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := repo.Migrate(ctx, db, dialect); err != nil {
		logger.Error("migrate", "error", err)
		os.Exit(1)
	}
	store := repo.NewDocumentStore(db, dialect, logger)

	pcfg, err := preprocess.LoadConfig(cfg.PreprocessConfigPath)
	if err != nil {
		logger.Error("load preprocess config", "path", cfg.PreprocessConfigPath, "error", err)
		os.Exit(2)
	}

	engine := ocr.NewTesseractEngine(ocr.Config{
		Tesseract:   cfg.OCR.Tesseract,
		Lang:        cfg.OCR.TesseractLang,
		TessdataDir: cfg.OCR.TessdataDir,
		OEM:         cfg.OCR.OEM,
		CacheDir:    cfg.OCR.CacheDir,
	}, logger)

	var primary classify.Classifier
	if cfg.Classify.ModelPath != "" {
		mc, err := classify.LoadModel(cfg.Classify.ModelPath)
		if err != nil {
			if errors.Is(err, common.ErrNoModel) {
				logger.Warn("classifier model missing, using rules only", "path", cfg.Classify.ModelPath)
			} else {
				logger.Error("load classifier model", "path", cfg.Classify.ModelPath, "error", err)
				os.Exit(2)
			}
		} else {
			primary = mc
		}
	}
	classifier := classify.NewFallbackClassifier(primary, classify.NewRuleClassifier(), logger)

	proc := pipeline.NewProcessor(
		logger,
		stager.New(cfg.Dirs.WorkDir, cfg.Dirs.FinalDir, logger),
		preprocess.New(pcfg, engine, preprocess.LogObserver{Logger: logger}, logger),
		extract.NewExtractor(engine, cfg.OCR.HeaderCropPx, logger),
		classifier,
		store,
	)

	evCh, errCh, err := watcher.Start(ctx, watcher.Config{
		Dir:         cfg.Dirs.WatchDir,
		InitialScan: true,
		Debounce:    200 * time.Millisecond,
	}, logger)
	if err != nil {
		logger.Error("start watcher", "dir", cfg.Dirs.WatchDir, "error", err)
		os.Exit(1)
	}

	logger.Info("intaked started",
		"watch_dir", cfg.Dirs.WatchDir,
		"work_dir", cfg.Dirs.WorkDir,
		"final_dir", cfg.Dirs.FinalDir)

	dedup := watcher.NewDedup()
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return
		case werr, ok := <-errCh:
			if ok && werr != nil {
				logger.Error("watcher error", "error", werr)
			}
		case path, ok := <-evCh:
			if !ok {
				logger.Info("watch channel closed, exiting")
				return
			}
			size, err := watcher.WaitStable(ctx, path, cfg.Watcher.PollInterval, cfg.Watcher.StableTimeout)
			if err != nil {
				if errors.Is(err, common.ErrStageTimeout) {
					logger.Warn("file never stabilized, leaving in watch folder", "path", path)
				} else if !errors.Is(err, context.Canceled) {
					logger.Warn("stable wait failed", "path", path, "error", err)
				}
				continue
			}
			if !dedup.FirstTime(path, size) {
				continue
			}
			// Drop the entry either way: on success the file is gone, and a
			// failed file stays in the watch folder for another attempt.
			_, perr := proc.ProcessFile(ctx, path)
			dedup.Forget(path)
			if perr != nil {
				logger.Error("processing failed", "path", path, "error", perr)
			}
		}
	}
}
