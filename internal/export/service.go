// Package export produces operator-facing XLSX summaries of recorded
// documents.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/doc-intake/internal/repository"
)

// Service is a tiny façade over the document store that produces XLSX bytes.
type Service struct {
	store  repository.DocumentStore
	logger *slog.Logger
}

func NewService(store repository.DocumentStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

const textPreviewLen = 200

// ExportDocumentsXLSX returns an XLSX workbook (as bytes) for the date window.
// If only from is provided -> from..today (inclusive).
// If only to is provided   -> beginning..to (inclusive).
// If neither is provided   -> every recorded document.
func (s *Service) ExportDocumentsXLSX(ctx context.Context, from, to *time.Time) ([]byte, error) {
	start := time.Now()

	// Normalize dates (date-only, UTC)
	var fromDate, toDate *time.Time
	if from != nil {
		f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
		fromDate = &f
	}
	if to != nil {
		t := time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, 0, time.UTC)
		toDate = &t
	}
	if fromDate != nil && toDate == nil {
		today := time.Now().UTC()
		t := time.Date(today.Year(), today.Month(), today.Day(), 23, 59, 59, 0, time.UTC)
		toDate = &t
	}

	docs, err := s.store.List(ctx, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Documents"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Processed At",
		"Basename",
		"Document Type",
		"Orientation Corrected",
		"Flagged For Reprocessing",
		"Final Path",
		"Text Preview",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, d := range docs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		preview := d.ExtractedText
		if len(preview) > textPreviewLen {
			preview = preview[:textPreviewLen] + "…"
		}

		write(1, d.ProcessedAt.Format("2006-01-02 15:04:05"))
		write(2, d.Basename)
		write(3, string(d.DocumentType))
		write(4, d.OrientationCorrected)
		write(5, d.FlaggedForReprocess)
		write(6, d.FileName)
		write(7, preview)
		row++
	}

	// Drop the default sheet excelize creates.
	_ = f.DeleteSheet("Sheet1")

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"documents", len(docs),
		"bytes", buf.Len(),
		"duration_ms", time.Since(start).Milliseconds())
	return buf.Bytes(), nil
}
