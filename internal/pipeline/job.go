// Package pipeline orchestrates one document's trip from the watch folder to
// the final folder: stage, preprocess, recognize, reconcile, classify, record.
package pipeline

import (
	"image"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/doc-intake/internal/classify"
)

// Job carries one document through the pipeline. A job is owned by exactly
// one worker and never shared.
type Job struct {
	ID       uuid.UUID
	Basename string
	Format   string // constants.PDF | constants.TIFF

	SourcePath string // watch location
	WorkPath   string // after staging
	FinalPath  string // after finalize

	Pages                []*image.Gray
	OrientationCorrected bool
	DegradedStages       int

	Text   string
	Result classify.Result
}
