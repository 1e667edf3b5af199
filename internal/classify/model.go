package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/doc-intake/constants"
	"github.com/joseph-ayodele/doc-intake/internal/common"
)

// modelArtifact is the JSON export of the offline-trained TF-IDF + multinomial
// naive Bayes model.
type modelArtifact struct {
	Labels         []string       `json:"labels"`
	Vocabulary     map[string]int `json:"vocabulary"`
	IDF            []float64      `json:"idf"`
	ClassLogPrior  []float64      `json:"class_log_prior"`
	FeatureLogProb [][]float64    `json:"feature_log_prob"`
}

var tokenRe = regexp.MustCompile(`[a-z0-9]{2,}`)

// ModelClassifier scores text against a trained artifact. The loaded model is
// read-only and safe for concurrent use.
type ModelClassifier struct {
	m modelArtifact
}

// LoadModel reads and sanity-checks a model artifact. A missing file returns
// ErrNoModel so callers can fall back to rules.
func LoadModel(path string) (*ModelClassifier, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, common.NewAppError("NO_MODEL", fmt.Sprintf("classifier model %s not found", path), common.ErrNoModel)
		}
		return nil, fmt.Errorf("read model: %w", err)
	}
	var m modelArtifact
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if len(m.Labels) == 0 {
		return nil, fmt.Errorf("model has no labels")
	}
	for _, l := range m.Labels {
		if !constants.IsDocType(l) {
			return nil, fmt.Errorf("model label %q is not a known document type", l)
		}
	}
	if len(m.IDF) != len(m.Vocabulary) {
		return nil, fmt.Errorf("idf length %d does not match vocabulary size %d", len(m.IDF), len(m.Vocabulary))
	}
	if len(m.ClassLogPrior) != len(m.Labels) {
		return nil, fmt.Errorf("class prior length %d does not match label count %d", len(m.ClassLogPrior), len(m.Labels))
	}
	if len(m.FeatureLogProb) != len(m.Labels) {
		return nil, fmt.Errorf("feature matrix has %d rows, want %d", len(m.FeatureLogProb), len(m.Labels))
	}
	for i, row := range m.FeatureLogProb {
		if len(row) != len(m.Vocabulary) {
			return nil, fmt.Errorf("feature row %d has %d columns, want %d", i, len(row), len(m.Vocabulary))
		}
	}
	for term, j := range m.Vocabulary {
		if j < 0 || j >= len(m.IDF) {
			return nil, fmt.Errorf("vocabulary index %d for %q out of range [0, %d)", j, term, len(m.IDF))
		}
	}
	return &ModelClassifier{m: m}, nil
}

// Classify computes the naive Bayes posterior over the label set and returns
// the argmax with its probability.
func (c *ModelClassifier) Classify(_ context.Context, text string) (Result, error) {
	x := c.vectorize(text)
	if len(x) == 0 {
		return Result{}, fmt.Errorf("no known terms in text")
	}

	scores := make([]float64, len(c.m.Labels))
	for k := range c.m.Labels {
		s := c.m.ClassLogPrior[k]
		row := c.m.FeatureLogProb[k]
		for j, v := range x {
			s += v * row[j]
		}
		scores[k] = s
	}

	// softmax in log space
	maxS := scores[0]
	for _, s := range scores[1:] {
		if s > maxS {
			maxS = s
		}
	}
	var sum float64
	for _, s := range scores {
		sum += math.Exp(s - maxS)
	}
	logSum := maxS + math.Log(sum)

	best, bestP := 0, math.Inf(-1)
	for k, s := range scores {
		if s > bestP {
			best, bestP = k, s
		}
	}
	return Result{
		DocumentType: constants.DocType(c.m.Labels[best]),
		Confidence:   math.Exp(bestP - logSum),
		Entities:     ExtractEntities(text),
	}, nil
}

// vectorize builds a sparse L2-normalized TF-IDF vector over the model
// vocabulary.
func (c *ModelClassifier) vectorize(text string) map[int]float64 {
	counts := map[int]float64{}
	for _, tok := range tokenRe.FindAllString(strings.ToLower(text), -1) {
		if j, ok := c.m.Vocabulary[tok]; ok {
			counts[j]++
		}
	}
	if len(counts) == 0 {
		return nil
	}
	var norm float64
	for j, tf := range counts {
		w := tf * c.m.IDF[j]
		counts[j] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	for j := range counts {
		counts[j] /= norm
	}
	return counts
}
