// Package classify assigns a document type to extracted text and pulls out
// clinical entities. A trained model is preferred; keyword rules are the
// fallback when no model is available or prediction fails.
package classify

import (
	"context"

	"github.com/joseph-ayodele/doc-intake/constants"
)

// Result is a document type prediction together with the entities found in
// the text. Confidence is the winning class posterior for model predictions
// and 0 for rule-based ones.
type Result struct {
	DocumentType constants.DocType
	Confidence   float64
	Entities     EntitySet
}

// Classifier predicts the type of a document from its text.
type Classifier interface {
	Classify(ctx context.Context, text string) (Result, error)
}
