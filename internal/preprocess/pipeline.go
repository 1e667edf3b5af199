package preprocess

import (
	"context"
	"image"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/doc-intake/internal/imaging"
)

// Stage names, in execution order.
const (
	StageOrientation = "orientation_correction"
	StageBasic       = "basic_preprocessing"
	StageNoise       = "noise_removal"
	StageMorph       = "morphological_operations"
	StageLines       = "line_removal"
)

// Orienter reports the clockwise rotation (0, 90, 180 or 270 degrees) that
// would bring a page upright.
type Orienter interface {
	DetectRotation(ctx context.Context, img image.Image) (int, error)
}

// Observer receives a timing event after every enabled stage. A nil observer
// is replaced with a no-op.
type Observer interface {
	StageCompleted(stage string, page int, elapsed time.Duration, degraded bool)
}

type nopObserver struct{}

func (nopObserver) StageCompleted(string, int, time.Duration, bool) {}

// LogObserver emits stage timings as structured log events.
type LogObserver struct {
	Logger *slog.Logger
}

func (o LogObserver) StageCompleted(stage string, page int, elapsed time.Duration, degraded bool) {
	o.Logger.Info("preprocess.stage.ok",
		"stage", stage,
		"page", page,
		"elapsed_ms", elapsed.Milliseconds(),
		"degraded", degraded)
}

// Degradation records a stage that failed and was skipped. The page continues
// through the pipeline with the last good image.
type Degradation struct {
	Stage  string
	Reason string
}

// PageResult is the outcome of preprocessing a single page.
type PageResult struct {
	Image                *image.Gray
	OrientationCorrected bool
	Degradations         []Degradation
}

// Pipeline applies the configured stages to pages, one page at a time. Stage
// failures degrade the page rather than fail the document.
type Pipeline struct {
	cfg      Config
	orienter Orienter
	obs      Observer
	logger   *slog.Logger
	debug    *debugSaver
}

func New(cfg Config, orienter Orienter, obs Observer, logger *slog.Logger) *Pipeline {
	if obs == nil {
		obs = nopObserver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		cfg:      cfg,
		orienter: orienter,
		obs:      obs,
		logger:   logger,
		debug:    newDebugSaver(cfg.Debug, logger),
	}
}

type stageFunc func(ctx context.Context, g *image.Gray) (*image.Gray, error)

// ProcessPage runs the enabled stages in fixed order. baseName and pageIdx
// identify the page in logs and debug dumps.
func (p *Pipeline) ProcessPage(ctx context.Context, img image.Image, baseName string, pageIdx int) PageResult {
	g := imaging.ToGray(img)
	res := PageResult{}
	p.debug.save(g, baseName, "original", pageIdx)

	if p.cfg.OrientationEnabled() {
		out, corrected := p.runOrientation(ctx, g, baseName, pageIdx)
		g = out
		res.OrientationCorrected = corrected
	}

	stages := []struct {
		name    string
		enabled bool
		fn      stageFunc
	}{
		{StageBasic, p.cfg.BasicEnabled(), p.runBasic},
		{StageNoise, p.cfg.NoiseEnabled(), p.runNoise},
		{StageMorph, p.cfg.MorphEnabled(), p.runMorph},
		{StageLines, p.cfg.LinesEnabled(), p.runLines},
	}
	for _, s := range stages {
		if !s.enabled {
			continue
		}
		start := time.Now()
		out, err := s.fn(ctx, g)
		degraded := err != nil
		if degraded {
			p.logger.Warn("preprocess.stage.degraded",
				"stage", s.name, "page", pageIdx, "error", err)
			res.Degradations = append(res.Degradations, Degradation{Stage: s.name, Reason: err.Error()})
		} else {
			g = out
			p.debug.save(g, baseName, s.name, pageIdx)
		}
		p.obs.StageCompleted(s.name, pageIdx, time.Since(start), degraded)
	}

	res.Image = g
	return res
}

// runOrientation rotates the page by the detected amount. Detection failure
// means no rotation, not a degraded page.
func (p *Pipeline) runOrientation(ctx context.Context, g *image.Gray, baseName string, pageIdx int) (*image.Gray, bool) {
	start := time.Now()
	defer func() {
		p.obs.StageCompleted(StageOrientation, pageIdx, time.Since(start), false)
	}()

	if p.orienter == nil {
		return g, false
	}
	deg, err := p.orienter.DetectRotation(ctx, g)
	if err != nil {
		p.logger.Warn("preprocess.orientation.undetected", "page", pageIdx, "error", err)
		return g, false
	}
	deg = ((deg % 360) + 360) % 360
	if deg%90 != 0 {
		p.logger.Warn("preprocess.orientation.invalid_hint", "page", pageIdx, "degrees", deg)
		return g, false
	}
	if deg == 0 {
		return g, false
	}
	rotated := imaging.RotateCW(g, deg)
	p.debug.save(rotated, baseName, StageOrientation, pageIdx)
	p.logger.Info("preprocess.orientation.rotated", "page", pageIdx, "degrees", deg)
	return rotated, true
}

func (p *Pipeline) runBasic(_ context.Context, g *image.Gray) (*image.Gray, error) {
	c := p.cfg.Basic
	out := imaging.AdaptiveThreshold(g, c.AdaptiveThreshold.BlockSize, c.AdaptiveThreshold.CValue)
	out = imaging.MedianBlur(out, c.MedianBlur.KernelSize)
	if orDefault(c.Sharpen.Enabled, true) {
		out = imaging.Sharpen(out)
	}
	if c.Contrast.Factor != 1.0 {
		out = imaging.Contrast(out, c.Contrast.Factor)
	}
	return out, nil
}

func (p *Pipeline) runNoise(_ context.Context, g *image.Gray) (*image.Gray, error) {
	c := p.cfg.Noise
	switch c.Method {
	case "bilateralFilter":
		return imaging.Bilateral(g, c.D, c.SigmaColor, c.SigmaSpace), nil
	default:
		return imaging.FastNLMeans(g, c.H, c.TemplateWindowSize, c.SearchWindowSize), nil
	}
}

func (p *Pipeline) runMorph(_ context.Context, g *image.Gray) (*image.Gray, error) {
	out := g
	for _, op := range p.cfg.Morph.Operations {
		kw, kh := 3, 3
		if len(op.KernelSize) == 2 {
			kw, kh = op.KernelSize[0], op.KernelSize[1]
		}
		shape := imaging.KernelEllipse
		switch op.KernelShape {
		case "cross":
			shape = imaging.KernelCross
		case "rect":
			shape = imaging.KernelRect
		}
		iters := op.Iterations
		if iters <= 0 {
			iters = 1
		}
		k := imaging.StructuringElement(shape, kw, kh)
		switch op.Type {
		case "erode", "erosion":
			out = imaging.Erode(out, k, iters)
		case "dilate", "dilation":
			out = imaging.Dilate(out, k, iters)
		case "open", "opening":
			out = imaging.Open(out, k, iters)
		case "close", "closing":
			out = imaging.Close(out, k, iters)
		default:
			p.logger.Warn("preprocess.morph.unknown_op", "type", op.Type)
		}
	}
	return out, nil
}

func (p *Pipeline) runLines(_ context.Context, g *image.Gray) (*image.Gray, error) {
	c := p.cfg.Lines
	params := imaging.HoughParams{
		Rho:           c.Rho,
		ThetaDegrees:  c.ThetaDegrees,
		Threshold:     c.Threshold,
		MinLineLength: c.MinLineLength,
		MaxLineGap:    c.MaxLineGap,
	}
	segs := imaging.DetectLineSegments(g, params)
	if len(segs) == 0 {
		return g, nil
	}
	wantH := orDefault(c.HorizontalLines, true)
	wantV := orDefault(c.VerticalLines, true)
	out := imaging.Clone(g)
	for _, s := range segs {
		a := s.Angle()
		horizontal := a <= c.AngleTolerance || a >= 180-c.AngleTolerance
		vertical := a >= 90-c.AngleTolerance && a <= 90+c.AngleTolerance
		if (horizontal && wantH) || (vertical && wantV) {
			imaging.EraseSegment(out, s, c.LineThickness)
		}
	}
	return out, nil
}
