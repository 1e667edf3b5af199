package pipeline

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/doc-intake/constants"
	"github.com/joseph-ayodele/doc-intake/internal/classify"
	"github.com/joseph-ayodele/doc-intake/internal/common"
	"github.com/joseph-ayodele/doc-intake/internal/entity"
	"github.com/joseph-ayodele/doc-intake/internal/extract"
	"github.com/joseph-ayodele/doc-intake/internal/imaging"
	"github.com/joseph-ayodele/doc-intake/internal/ocr"
	"github.com/joseph-ayodele/doc-intake/internal/pdfutil"
	"github.com/joseph-ayodele/doc-intake/internal/preprocess"
	"github.com/joseph-ayodele/doc-intake/internal/repository"
	"github.com/joseph-ayodele/doc-intake/internal/stager"
)

// Processor coordinates staging, preprocessing, recognition, orientation
// reconciliation, classification and persistence for one file at a time.
type Processor struct {
	logger     *slog.Logger
	stager     *stager.Stager
	pre        *preprocess.Pipeline
	extractor  *extract.Extractor
	classifier classify.Classifier
	store      repository.DocumentStore
}

func NewProcessor(
	logger *slog.Logger,
	st *stager.Stager,
	pre *preprocess.Pipeline,
	extractor *extract.Extractor,
	classifier classify.Classifier,
	store repository.DocumentStore,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		logger:     logger,
		stager:     st,
		pre:        pre,
		extractor:  extractor,
		classifier: classifier,
		store:      store,
	}
}

// ProcessFile runs the full pipeline for one watched file. Only staging
// collisions and pre-stage problems fail the job; every later failure
// degrades output and the job completes. A job that fails after staging
// leaves the file in the work location.
func (p *Processor) ProcessFile(ctx context.Context, path string) (*entity.Document, error) {
	job := &Job{
		ID:         uuid.New(),
		SourcePath: path,
		Basename:   filepath.Base(path),
		Format:     constants.MapExtToFormat(filepath.Ext(path)),
	}
	if job.Format == "" {
		return nil, common.NewAppError("INVALID_INPUT", "unsupported file type: "+path, common.ErrInvalidInput)
	}

	workPath, err := p.stager.Stage(path)
	if err != nil {
		p.logger.Error("processor.stage.failed", "path", path, "err", err)
		return nil, err
	}
	job.WorkPath = workPath

	p.runPages(ctx, job)
	p.runExtract(ctx, job)
	p.runReconcile(job)
	p.runClassify(ctx, job)

	finalPath, err := p.stager.Finalize(job.WorkPath)
	if err != nil {
		p.logger.Error("processor.finalize.failed", "path", job.WorkPath, "err", err)
		return nil, err
	}
	job.FinalPath = finalPath

	doc := &entity.Document{
		ID:                   job.ID,
		FileName:             job.FinalPath,
		Basename:             job.Basename,
		DocumentType:         job.Result.DocumentType,
		ExtractedText:        job.Text,
		OrientationCorrected: job.OrientationCorrected,
	}
	if _, err := p.store.Record(ctx, doc); err != nil {
		p.logger.Error("processor.record.failed", "basename", job.Basename, "err", err)
		return doc, err
	}

	p.logger.Info("processor.done",
		"basename", job.Basename,
		"type", doc.DocumentType,
		"confidence", job.Result.Confidence,
		"pages", len(job.Pages),
		"entities", job.Result.Entities.Count(),
		"orientation_corrected", doc.OrientationCorrected,
		"degraded_stages", job.DegradedStages)
	return doc, nil
}

// runPages loads and preprocesses every page. Load failures degrade to an
// empty page set; the document still flows through.
func (p *Processor) runPages(ctx context.Context, job *Job) {
	raw, err := loadPages(job.WorkPath, job.Format)
	if err != nil {
		p.logger.Warn("processor.pages.load_failed", "path", job.WorkPath, "err", err)
		return
	}

	base := trimExt(job.Basename)
	for i, page := range raw {
		if page == nil {
			p.logger.Warn("processor.pages.undecodable", "path", job.WorkPath, "page", i)
			page = blankPage()
		}
		res := p.pre.ProcessPage(ctx, page, base, i)
		job.Pages = append(job.Pages, res.Image)
		if res.OrientationCorrected {
			job.OrientationCorrected = true
		}
		job.DegradedStages += len(res.Degradations)
	}
}

func (p *Processor) runExtract(ctx context.Context, job *Job) {
	mode := ocr.ModeDocument
	if job.Format == constants.TIFF {
		mode = ocr.ModeBlock
	}
	res, err := p.extractor.ExtractPages(ctx, job.Pages, mode)
	if err != nil {
		p.logger.Warn("processor.extract.aborted", "basename", job.Basename, "err", err)
		return
	}
	job.Text = res.Text
}

// runReconcile rebuilds the working file only when a page was rotated.
// Rebuild failure keeps the original file and the already-extracted text.
func (p *Processor) runReconcile(job *Job) {
	if !job.OrientationCorrected {
		return
	}
	if err := Reconcile(job.WorkPath, job.Format, job.Pages); err != nil {
		if errors.Is(err, common.ErrRegeneration) {
			p.logger.Warn("processor.reconcile.degraded", "basename", job.Basename, "err", err)
			return
		}
		p.logger.Error("processor.reconcile.failed", "basename", job.Basename, "err", err)
	}
}

// runClassify types the document. Classification failure degrades to "other",
// but the entity pass still runs over whatever text was extracted.
func (p *Processor) runClassify(ctx context.Context, job *Job) {
	res, err := p.classifier.Classify(ctx, job.Text)
	if err != nil {
		p.logger.Warn("processor.classify.degraded", "basename", job.Basename, "err", err)
		res = classify.Result{
			DocumentType: constants.DocTypeOther,
			Confidence:   0,
			Entities:     classify.ExtractEntities(job.Text),
		}
	}
	job.Result = res
}

func loadPages(path, format string) ([]*image.Gray, error) {
	switch format {
	case constants.TIFF:
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		decoded, err := imaging.DecodeTIFFPages(raw)
		if err != nil {
			return nil, err
		}
		out := make([]*image.Gray, len(decoded))
		for i, d := range decoded {
			out[i] = imaging.ToGray(d)
		}
		return out, nil
	case constants.PDF:
		decoded, err := pdfutil.ExtractPageImages(path)
		if err != nil {
			return nil, err
		}
		out := make([]*image.Gray, len(decoded))
		for i, d := range decoded {
			if d == nil {
				continue
			}
			out[i] = imaging.ToGray(d)
		}
		return out, nil
	default:
		return nil, common.ErrInvalidInput
	}
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}

func blankPage() *image.Gray {
	g := image.NewGray(image.Rect(0, 0, 1, 1))
	g.Pix[0] = imaging.Background
	return g
}
