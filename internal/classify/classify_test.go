package classify

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/doc-intake/constants"
	"github.com/joseph-ayodele/doc-intake/internal/common"
)

func TestRuleClassifierFirstMatchWins(t *testing.T) {
	rc := NewRuleClassifier()
	ctx := context.Background()

	res, err := rc.Classify(ctx, "Order: CBC with differential, comprehensive metabolic panel, lipid panel. Patient fasting required.")
	require.NoError(t, err)
	assert.Equal(t, constants.DocTypeOrder, res.DocumentType)
	assert.Equal(t, 0.0, res.Confidence)

	res, err = rc.Classify(ctx, "Patient is referred to cardiology for evaluation.")
	require.NoError(t, err)
	assert.Equal(t, constants.DocTypeReferral, res.DocumentType)

	res, err = rc.Classify(ctx, "Dear Dr. Smith, thank you for seeing Mrs. Johnson. Sincerely, Dr. Brown")
	require.NoError(t, err)
	assert.Equal(t, constants.DocTypeCorrespondence, res.DocumentType)

	res, err = rc.Classify(ctx, "SOAP note. Subjective: feeling better. Objective: afebrile.")
	require.NoError(t, err)
	assert.Equal(t, constants.DocTypeProgressNote, res.DocumentType)

	res, err = rc.Classify(ctx, "zzz qqq nothing recognizable here")
	require.NoError(t, err)
	assert.Equal(t, constants.DocTypeOther, res.DocumentType)
}

func TestClassifyResultCarriesEntities(t *testing.T) {
	ctx := context.Background()

	res, err := NewRuleClassifier().Classify(ctx, "Order: CBC and chest x-ray for chest pain")
	require.NoError(t, err)
	assert.Equal(t, constants.DocTypeOrder, res.DocumentType)
	require.NotZero(t, res.Entities.Count())
	assert.Len(t, res.Entities.Procedures, 2, "cbc and x-ray")
	assert.Len(t, res.Entities.Conditions, 1, "chest pain")

	res, err = tinyModel(t).Classify(ctx, "Referral to cardiology, history of hypertension.")
	require.NoError(t, err)
	assert.Equal(t, constants.DocTypeReferral, res.DocumentType)
	require.Len(t, res.Entities.Conditions, 1)
	assert.Equal(t, "hypertension", res.Entities.Conditions[0].Text)
}

func writeModel(t *testing.T, m map[string]any) string {
	t.Helper()
	raw, err := json.Marshal(m)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	return path
}

// tinyModel prefers "referral" when the text mentions referral terms and
// "order" for order terms.
func tinyModel(t *testing.T) *ModelClassifier {
	path := writeModel(t, map[string]any{
		"labels":          []string{"referral", "order"},
		"vocabulary":      map[string]int{"referral": 0, "cardiology": 1, "prescription": 2, "tablets": 3},
		"idf":             []float64{1.2, 1.5, 1.3, 1.4},
		"class_log_prior": []float64{-0.69, -0.69},
		"feature_log_prob": [][]float64{
			{-0.5, -0.7, -3.0, -3.2},
			{-3.1, -3.3, -0.6, -0.8},
		},
	})
	mc, err := LoadModel(path)
	require.NoError(t, err)
	return mc
}

func TestModelClassifierPredicts(t *testing.T) {
	mc := tinyModel(t)
	ctx := context.Background()

	res, err := mc.Classify(ctx, "Referral to cardiology for chest pain.")
	require.NoError(t, err)
	assert.Equal(t, constants.DocTypeReferral, res.DocumentType)
	assert.Greater(t, res.Confidence, 0.5)
	assert.LessOrEqual(t, res.Confidence, 1.0)

	res, err = mc.Classify(ctx, "Prescription: dispense 60 tablets.")
	require.NoError(t, err)
	assert.Equal(t, constants.DocTypeOrder, res.DocumentType)
}

func TestModelClassifierErrorsOnUnknownText(t *testing.T) {
	mc := tinyModel(t)
	_, err := mc.Classify(context.Background(), "completely unrelated words")
	require.Error(t, err)
}

func TestLoadModelMissingFile(t *testing.T) {
	_, err := LoadModel(filepath.Join(t.TempDir(), "nope.json"))
	require.ErrorIs(t, err, common.ErrNoModel)
}

func TestLoadModelRejectsBadShapes(t *testing.T) {
	path := writeModel(t, map[string]any{
		"labels":           []string{"referral"},
		"vocabulary":       map[string]int{"a": 0, "b": 1},
		"idf":              []float64{1.0}, // wrong length
		"class_log_prior":  []float64{0},
		"feature_log_prob": [][]float64{{-1, -1}},
	})
	_, err := LoadModel(path)
	require.Error(t, err)

	path = writeModel(t, map[string]any{
		"labels":           []string{"memo"}, // unknown label
		"vocabulary":       map[string]int{"a": 0},
		"idf":              []float64{1.0},
		"class_log_prior":  []float64{0},
		"feature_log_prob": [][]float64{{-1}},
	})
	_, err = LoadModel(path)
	require.Error(t, err)

	path = writeModel(t, map[string]any{
		"labels":           []string{"referral"},
		"vocabulary":       map[string]int{"a": 0, "b": 99}, // index past idf
		"idf":              []float64{1.0, 1.0},
		"class_log_prior":  []float64{0},
		"feature_log_prob": [][]float64{{-1, -1}},
	})
	_, err = LoadModel(path)
	require.Error(t, err, "out-of-range vocabulary index must be rejected at load")
}

type failingClassifier struct{}

func (failingClassifier) Classify(context.Context, string) (Result, error) {
	return Result{}, errors.New("model exploded")
}

func TestFallbackClassifierDowngradesToRules(t *testing.T) {
	fc := NewFallbackClassifier(failingClassifier{}, NewRuleClassifier(), nil)
	res, err := fc.Classify(context.Background(), "Order: lab order for CBC")
	require.NoError(t, err)
	assert.Equal(t, constants.DocTypeOrder, res.DocumentType)
	assert.Equal(t, 0.0, res.Confidence)
}

func TestFallbackClassifierNilPrimaryUsesRules(t *testing.T) {
	fc := NewFallbackClassifier(nil, NewRuleClassifier(), nil)
	res, err := fc.Classify(context.Background(), "progress note: assessment and plan")
	require.NoError(t, err)
	assert.Equal(t, constants.DocTypeProgressNote, res.DocumentType)
}
