// runpipeline processes a single file through the intake pipeline and exits.
// Useful for reprocessing a document or debugging stage configuration.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/joseph-ayodele/doc-intake/internal/classify"
	"github.com/joseph-ayodele/doc-intake/internal/common"
	"github.com/joseph-ayodele/doc-intake/internal/extract"
	"github.com/joseph-ayodele/doc-intake/internal/ocr"
	"github.com/joseph-ayodele/doc-intake/internal/pipeline"
	"github.com/joseph-ayodele/doc-intake/internal/preprocess"
	repo "github.com/joseph-ayodele/doc-intake/internal/repository"
	"github.com/joseph-ayodele/doc-intake/internal/stager"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "runpipeline <file.pdf|file.tiff>")
		os.Exit(2)
	}
	path := os.Args[1]

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

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

	pcfg, err := preprocess.LoadConfig(cfg.PreprocessConfigPath)
	if err != nil {
		logger.Error("load preprocess config", "error", err)
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
		if mc, err := classify.LoadModel(cfg.Classify.ModelPath); err == nil {
			primary = mc
		} else if !errors.Is(err, common.ErrNoModel) {
			logger.Error("load classifier model", "error", err)
			os.Exit(2)
		}
	}

	proc := pipeline.NewProcessor(
		logger,
		stager.New(cfg.Dirs.WorkDir, cfg.Dirs.FinalDir, logger),
		preprocess.New(pcfg, engine, preprocess.LogObserver{Logger: logger}, logger),
		extract.NewExtractor(engine, cfg.OCR.HeaderCropPx, logger),
		classify.NewFallbackClassifier(primary, classify.NewRuleClassifier(), logger),
		repo.NewDocumentStore(db, dialect, logger),
	)

	start := time.Now()
	doc, err := proc.ProcessFile(ctx, path)
	if err != nil {
		logger.Error("pipeline failed", "path", path, "error", err,
			"duration_ms", time.Since(start).Milliseconds())
		os.Exit(1)
	}

	logger.Info("pipeline OK",
		"id", doc.ID,
		"final_path", doc.FileName,
		"type", doc.DocumentType,
		"orientation_corrected", doc.OrientationCorrected,
		"chars", len(doc.ExtractedText),
		"duration_ms", time.Since(start).Milliseconds())
}
