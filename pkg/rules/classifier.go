package rules

import (
	"context"

	"github.com/newscope/nctl/pkg/ensemble"
	"github.com/newscope/nctl/pkg/explain"
)

// TextClassifier adapts the rule detector to the classifier contract
// the detection pipeline runs, including token attribution.
type TextClassifier struct {
	d *Detector
}

// NewTextClassifier builds a pipeline-ready rule classifier.
func NewTextClassifier() *TextClassifier {
	return &TextClassifier{d: NewDetector()}
}

// ID implements the classifier contract.
func (c *TextClassifier) ID() string {
	return ClassifierID
}

// Classify scores the text and returns the probability pair.
func (c *TextClassifier) Classify(_ context.Context, content string) (ensemble.ClassifierOutput, error) {
	return c.d.Analyze(content).ClassifierOutput(), nil
}

// Explain returns the matched tokens as signed importance weights.
func (c *TextClassifier) Explain(_ context.Context, content string) ([]explain.WordWeight, error) {
	return c.d.Analyze(content).WordWeights(), nil
}
