package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/doc-intake/constants"
)

// Document represents a processed document record for data transfer between layers.
// It mirrors the documents table.
type Document struct {
	ID                   uuid.UUID         `json:"id"`
	FileName             string            `json:"file_name"` // full final path
	Basename             string            `json:"basename"`
	DocumentType         constants.DocType `json:"document_type"`
	ExtractedText        string            `json:"extracted_text"`
	OrientationCorrected bool              `json:"orientation_corrected"`
	FlaggedForReprocess  bool              `json:"flagged_for_reprocessing"`
	ProcessedAt          time.Time         `json:"processed_at"`
}
