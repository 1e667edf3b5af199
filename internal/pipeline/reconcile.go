package pipeline

import (
	"image"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/doc-intake/constants"
	"github.com/joseph-ayodele/doc-intake/internal/common"
	"github.com/joseph-ayodele/doc-intake/internal/imaging"
	"github.com/joseph-ayodele/doc-intake/internal/pdfutil"
)

// Reconcile rewrites the working file from the processed pages so the stored
// artifact matches the orientation the text was read in. Called only when at
// least one page was rotated; otherwise the file is never opened for write.
// The rebuild goes to a temp file in the same directory and replaces the
// original atomically, so a failure leaves the original intact.
func Reconcile(workPath, format string, pages []*image.Gray) error {
	if len(pages) == 0 {
		return common.NewAppError("REGENERATE", "no pages to rebuild "+workPath, common.ErrRegeneration)
	}

	dir := filepath.Dir(workPath)
	tmp, err := os.CreateTemp(dir, ".rebuild-*"+filepath.Ext(workPath))
	if err != nil {
		return common.NewAppError("REGENERATE", "temp file for "+workPath+": "+err.Error(), common.ErrRegeneration)
	}
	tmpPath := tmp.Name()

	switch format {
	case constants.TIFF:
		err = imaging.EncodeTIFFPages(tmp, pages)
	case constants.PDF:
		err = pdfutil.WritePDFFromPages(tmp, pages)
	default:
		err = common.ErrInvalidInput
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmpPath)
		return common.NewAppError("REGENERATE", "rebuild "+workPath+": "+err.Error(), common.ErrRegeneration)
	}

	if err := os.Rename(tmpPath, workPath); err != nil {
		os.Remove(tmpPath)
		return common.NewAppError("REGENERATE", "replace "+workPath+": "+err.Error(), common.ErrRegeneration)
	}
	return nil
}
