// Package ensemble combines probability outputs from multiple text
// classifiers into a single label and confidence using weighted voting.
// Weights of classifiers missing from a call are redistributed
// proportionally among the classifiers that did report.
package ensemble

import (
	"errors"
	"fmt"
)

const (
	// LabelFake marks content classified as fake.
	LabelFake = "fake"
	// LabelReal marks content classified as real.
	LabelReal = "real"

	// ProbabilityEpsilon is the tolerance for the fake/real probability pair sum.
	ProbabilityEpsilon = 1e-6
)

var (
	// ErrNoClassifiers is returned when Vote is called with no classifier outputs.
	ErrNoClassifiers = errors.New("no classifier outputs to vote on")

	// ErrZeroWeight is returned when all reporting classifiers carry zero configured weight.
	ErrZeroWeight = errors.New("all reporting classifiers have zero weight")
)

// ClassifierOutput is the probability pair reported by one classifier.
// Producers guarantee ProbFake + ProbReal == 1 within ProbabilityEpsilon.
type ClassifierOutput struct {
	ClassifierID string  `json:"classifier_id" yaml:"classifierId"`
	ProbFake     float64 `json:"probability_fake" yaml:"probabilityFake"`
	ProbReal     float64 `json:"probability_real" yaml:"probabilityReal"`
}

// Prediction is the per-classifier view included in an ensemble result.
type Prediction struct {
	Label      string  `json:"prediction" yaml:"prediction"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
	ProbFake   float64 `json:"probability_fake" yaml:"probabilityFake"`
	ProbReal   float64 `json:"probability_real" yaml:"probabilityReal"`
}

// EnsembleResult is the combined vote. Created per call, never mutated.
type EnsembleResult struct {
	Label           string                `json:"prediction" yaml:"prediction"`
	Confidence      float64               `json:"confidence" yaml:"confidence"`
	ProbFake        float64               `json:"probability_fake" yaml:"probabilityFake"`
	ProbReal        float64               `json:"probability_real" yaml:"probabilityReal"`
	PerClassifier   map[string]Prediction `json:"individual_predictions" yaml:"individualPredictions"`
	ClassifiersUsed []string              `json:"classifiers_used" yaml:"classifiersUsed"`
}

// WeightTable maps classifier ID to its static voting weight in (0,1].
// Constructed once at startup and treated as immutable afterwards.
// Weights need not sum to 1; the subset present in a call is renormalized.
type WeightTable map[string]float64

// NewWeightTable validates the given weights and returns an immutable table.
func NewWeightTable(weights map[string]float64) (WeightTable, error) {
	if len(weights) == 0 {
		return nil, errors.New("weight table requires at least one classifier")
	}
	t := make(WeightTable, len(weights))
	for id, w := range weights {
		if id == "" {
			return nil, errors.New("weight table contains empty classifier id")
		}
		if w <= 0 || w > 1 {
			return nil, fmt.Errorf("weight for classifier %s must be in (0,1], got %f", id, w)
		}
		t[id] = w
	}
	return t, nil
}

// Weight returns the configured weight for the classifier, 0 if unknown.
func (t WeightTable) Weight(classifierID string) float64 {
	return t[classifierID]
}

// Vote combines classifier probability pairs using weighted voting.
//
// Each output's probabilities are multiplied by the classifier's static
// weight and accumulated; the sums are then divided by the total weight
// of the classifiers actually present, so a missing classifier shifts
// its share proportionally onto the rest instead of biasing the result.
// An exact fake/real tie resolves to fake.
func Vote(outputs []ClassifierOutput, weights WeightTable) (*EnsembleResult, error) {
	if len(outputs) == 0 {
		return nil, ErrNoClassifiers
	}

	var fakeSum, realSum, totalWeight float64
	per := make(map[string]Prediction, len(outputs))
	used := make([]string, 0, len(outputs))

	for _, out := range outputs {
		w := weights.Weight(out.ClassifierID)
		fakeSum += out.ProbFake * w
		realSum += out.ProbReal * w
		totalWeight += w

		label := LabelReal
		if out.ProbFake > out.ProbReal {
			label = LabelFake
		}
		per[out.ClassifierID] = Prediction{
			Label:      label,
			Confidence: max(out.ProbFake, out.ProbReal),
			ProbFake:   out.ProbFake,
			ProbReal:   out.ProbReal,
		}
		used = append(used, out.ClassifierID)
	}

	if totalWeight == 0 {
		return nil, ErrZeroWeight
	}

	fakeSum /= totalWeight
	realSum /= totalWeight

	label := LabelFake
	if realSum > fakeSum {
		label = LabelReal
	}

	return &EnsembleResult{
		Label:           label,
		Confidence:      max(fakeSum, realSum),
		ProbFake:        fakeSum,
		ProbReal:        realSum,
		PerClassifier:   per,
		ClassifiersUsed: used,
	}, nil
}
