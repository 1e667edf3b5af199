package classify

import (
	"context"
	"log/slog"
)

// FallbackClassifier tries the primary classifier and downgrades to the
// fallback when the primary errors. Both failures together surface the
// fallback's error.
type FallbackClassifier struct {
	primary  Classifier
	fallback Classifier
	logger   *slog.Logger
}

func NewFallbackClassifier(primary, fallback Classifier, logger *slog.Logger) *FallbackClassifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackClassifier{primary: primary, fallback: fallback, logger: logger}
}

func (f *FallbackClassifier) Classify(ctx context.Context, text string) (Result, error) {
	if f.primary != nil {
		res, err := f.primary.Classify(ctx, text)
		if err == nil {
			return res, nil
		}
		f.logger.Warn("classify.primary.failed", "error", err)
	}
	return f.fallback.Classify(ctx, text)
}
