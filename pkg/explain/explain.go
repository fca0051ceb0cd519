// Package explain merges per-classifier word-importance weights into a
// single ranked explanation, reusing the ensemble voting weights so the
// explanation agrees with the vote that produced it.
package explain

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/newscope/nctl/pkg/ensemble"
)

const (
	// DefaultNumFeatures is applied by callers when no feature count is requested.
	DefaultNumFeatures = 10

	// MinNumFeatures and MaxNumFeatures bound the requested feature count.
	MinNumFeatures = 1
	MaxNumFeatures = 50
)

// ErrInvalidParameter is returned when numFeatures falls outside [MinNumFeatures, MaxNumFeatures].
var ErrInvalidParameter = errors.New("invalid parameter")

// WordWeight is one token's contribution. Positive weights push toward
// fake, negative toward real.
type WordWeight struct {
	Token  string  `json:"token" yaml:"token"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// AggregatedExplanation is the merged, ranked explanation for one input.
type AggregatedExplanation struct {
	Label         string                  `json:"prediction" yaml:"prediction"`
	Confidence    float64                 `json:"confidence" yaml:"confidence"`
	RankedWeights []WordWeight            `json:"weights" yaml:"weights"`
	PerClassifier map[string][]WordWeight `json:"individual_explanations" yaml:"individualExplanations"`
}

// Aggregate merges already-computed per-classifier explanations under the
// ensemble weight table. Tokens absent from a classifier's list simply
// contribute nothing for that classifier. The merged weights of the
// classifiers present are renormalized the same way Vote renormalizes
// probabilities, so explanations stay comparable when classifiers drop out.
func Aggregate(vote *ensemble.EnsembleResult, perClassifier map[string][]WordWeight, weights ensemble.WeightTable, numFeatures int) (*AggregatedExplanation, error) {
	if numFeatures < MinNumFeatures || numFeatures > MaxNumFeatures {
		return nil, fmt.Errorf("%w: num_features must be in [%d,%d], got %d",
			ErrInvalidParameter, MinNumFeatures, MaxNumFeatures, numFeatures)
	}
	if vote == nil {
		return nil, errors.New("ensemble result is required")
	}
	if len(perClassifier) == 0 {
		return nil, ensemble.ErrNoClassifiers
	}

	var totalWeight float64
	ids := make([]string, 0, len(perClassifier))
	for id := range perClassifier {
		ids = append(ids, id)
		totalWeight += weights.Weight(id)
	}
	if totalWeight == 0 {
		return nil, ensemble.ErrZeroWeight
	}

	// Classifiers are visited in sorted ID order so first-seen token
	// order, and therefore tie breaking, is deterministic.
	sort.Strings(ids)

	accumulated := make(map[string]float64)
	firstSeen := make(map[string]int)
	for _, id := range ids {
		w := weights.Weight(id) / totalWeight
		for _, ww := range perClassifier[id] {
			if _, ok := firstSeen[ww.Token]; !ok {
				firstSeen[ww.Token] = len(firstSeen)
			}
			accumulated[ww.Token] += w * ww.Weight
		}
	}

	ranked := make([]WordWeight, 0, len(accumulated))
	for token, weight := range accumulated {
		ranked = append(ranked, WordWeight{Token: token, Weight: weight})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		ai, aj := math.Abs(ranked[i].Weight), math.Abs(ranked[j].Weight)
		if ai != aj {
			return ai > aj
		}
		return firstSeen[ranked[i].Token] < firstSeen[ranked[j].Token]
	})

	if len(ranked) > numFeatures {
		ranked = ranked[:numFeatures]
	}

	return &AggregatedExplanation{
		Label:         vote.Label,
		Confidence:    vote.Confidence,
		RankedWeights: ranked,
		PerClassifier: perClassifier,
	}, nil
}
