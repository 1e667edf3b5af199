// docexport writes an XLSX summary of recorded documents for a date window.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joseph-ayodele/doc-intake/internal/export"
	repo "github.com/joseph-ayodele/doc-intake/internal/repository"
)

func parseDate(logger *slog.Logger, name, v string) *time.Time {
	if v == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		logger.Error("invalid date, want YYYY-MM-DD", "flag", name, "value", v)
		os.Exit(2)
	}
	return &t
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	var (
		fromStr = flag.String("from", "", "start date (YYYY-MM-DD, inclusive)")
		toStr   = flag.String("to", "", "end date (YYYY-MM-DD, inclusive)")
		out     = flag.String("o", "documents.xlsx", "output file")
	)
	flag.Parse()

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		logger.Error("DB_DSN env var is required")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, dialect, err := repo.Open(ctx, repo.Config{DSN: dsn, DialTimeout: 3 * time.Second}, logger)
	if err != nil {
		logger.Error("open db", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	svc := export.NewService(repo.NewDocumentStore(db, dialect, logger), logger)
	raw, err := svc.ExportDocumentsXLSX(ctx, parseDate(logger, "from", *fromStr), parseDate(logger, "to", *toStr))
	if err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*out, raw, 0o644); err != nil {
		logger.Error("write output", "path", *out, "error", err)
		os.Exit(1)
	}
	logger.Info("export written", "path", *out, "bytes", len(raw))
}
