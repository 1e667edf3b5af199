package classify

import (
	"context"
	"strings"

	"github.com/joseph-ayodele/doc-intake/constants"
)

// ruleSet entries are checked in order; the first label whose keyword list
// matches wins.
var ruleSet = []struct {
	label    constants.DocType
	keywords []string
}{
	{constants.DocTypeReferral, []string{"referral", "refer", "consultation request", "please see"}},
	{constants.DocTypeOrder, []string{"order", "prescription", "rx", "lab order", "imaging order", "prescribe"}},
	{constants.DocTypeProgressNote, []string{"progress note", "clinical note", "assessment", "plan", "soap", "subjective", "objective"}},
	{constants.DocTypeCorrespondence, []string{"letter", "correspondence", "dear", "sincerely", "regards"}},
	{constants.DocTypeInvoice, []string{"invoice", "amount due", "billing statement"}},
	{constants.DocTypeReceipt, []string{"receipt", "payment received", "paid in full"}},
	{constants.DocTypeReport, []string{"report", "findings", "impression"}},
}

// RuleClassifier is the keyword fallback used when no trained model is
// available. Its confidence is always 0 so downstream consumers can tell a
// rule match from a model prediction.
type RuleClassifier struct{}

func NewRuleClassifier() *RuleClassifier { return &RuleClassifier{} }

func (RuleClassifier) Classify(_ context.Context, text string) (Result, error) {
	entities := ExtractEntities(text)
	lower := strings.ToLower(text)
	for _, r := range ruleSet {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return Result{DocumentType: r.label, Confidence: 0, Entities: entities}, nil
			}
		}
	}
	return Result{DocumentType: constants.DocTypeOther, Confidence: 0, Entities: entities}, nil
}
