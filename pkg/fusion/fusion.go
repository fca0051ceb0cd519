// Package fusion converts a basket of independently computed,
// differently weighted signals into a bounded fake score, a discrete
// verdict, and a ranked list of human-readable reasons. The same engine
// serves the text flow and the image flow with different configs.
package fusion

import (
	"errors"
	"math"
	"sort"
)

const (
	// FakeMidpoint is the fixed score threshold for the IsFake flag.
	// It is deliberately independent of the verdict ladder: the ladder
	// has several bands while the midpoint has exactly two.
	FakeMidpoint = 50.0

	// contributionEpsilon filters near-zero contributions out of the reasons list.
	contributionEpsilon = 1e-9
)

// ErrInsufficientSignals is returned when no present signal carries a
// configured weight budget, leaving nothing to fuse.
var ErrInsufficientSignals = errors.New("no signals available to fuse")

// Kind identifies the type of a signal.
type Kind string

const (
	KindEnsemble          Kind = "ensemble"
	KindSourceCredibility Kind = "source_credibility"
	KindSentimentRisk     Kind = "sentiment_risk"
	KindImageManipulation Kind = "image_manipulation"
	KindAIGeneration      Kind = "ai_generation"
	KindImageContext      Kind = "image_context"
	KindContextMatch      Kind = "context_match"
	KindOCRConfidence     Kind = "ocr_confidence"
)

// Signal is one independently computed indicator about an input.
// Present=false means the signal was not computed for this request and
// must not consume its weight budget.
type Signal struct {
	Kind     Kind    `json:"kind" yaml:"kind"`
	Value    float64 `json:"value" yaml:"value"`
	Category string  `json:"category,omitempty" yaml:"category,omitempty"`
	Present  bool    `json:"present" yaml:"present"`
}

// Contribution is one signal's realized share of the fake score.
type Contribution struct {
	Kind   Kind    `json:"kind" yaml:"kind"`
	Points float64 `json:"points" yaml:"points"`
	Reason string  `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Result is the fused verdict. Created per call, never mutated.
type Result struct {
	FakeScore      float64        `json:"fake_score" yaml:"fakeScore"`
	Verdict        string         `json:"verdict" yaml:"verdict"`
	VerdictLabel   string         `json:"verdict_label" yaml:"verdictLabel"`
	Confidence     float64        `json:"confidence" yaml:"confidence"`
	IsFake         bool           `json:"is_fake" yaml:"isFake"`
	Reasons        []string       `json:"reasons" yaml:"reasons"`
	Contributions  []Contribution `json:"confidence_breakdown" yaml:"confidenceBreakdown"`
	Recommendation string         `json:"recommendation" yaml:"recommendation"`
}

// Fuse scores the present signals under the given config.
//
// Each present signal's rule maps its raw value to a contribution in
// [-budget, budget]; the running total is clamped at zero so a strong
// trust signal can cancel accumulated suspicion but never produce a
// negative score. The realized denominator is the sum of budgets of the
// present signals only, so absent signals shrink the scale instead of
// dragging the score down.
//
// Contributions record realized points, after the contribution and
// running-total clamps: a trust adjustment truncated at the zero floor
// shows the truncated value, not the rule's nominal score.
func Fuse(signals []Signal, cfg *Config) (*Result, error) {
	if cfg == nil {
		return nil, errors.New("fusion config is required")
	}

	byKind := make(map[Kind]Signal, len(signals))
	for _, sig := range signals {
		if sig.Present {
			byKind[sig.Kind] = sig
		}
	}
	if len(byKind) == 0 {
		return nil, ErrInsufficientSignals
	}

	var raw, denominator float64
	contributions := make([]Contribution, 0, len(cfg.Rules))

	// Rules are applied in config order; the running-total clamp makes
	// the order part of the contract.
	for _, rule := range cfg.Rules {
		sig, ok := byKind[rule.Kind]
		if !ok {
			continue
		}
		denominator += rule.Budget

		points := clamp(rule.Score(sig), -rule.Budget, rule.Budget)
		if raw+points < 0 {
			points = -raw
		}
		raw += points

		if math.Abs(points) > contributionEpsilon {
			contributions = append(contributions, Contribution{
				Kind:   rule.Kind,
				Points: points,
				Reason: rule.Reason(sig, points),
			})
		}
	}

	if denominator == 0 {
		return nil, ErrInsufficientSignals
	}

	sort.SliceStable(contributions, func(i, j int) bool {
		return math.Abs(contributions[i].Points) > math.Abs(contributions[j].Points)
	})

	reasons := make([]string, 0, len(contributions))
	for _, c := range contributions {
		if c.Reason != "" {
			reasons = append(reasons, c.Reason)
		}
	}

	score := clamp(raw/denominator*100, 0, 100)
	verdict, label := cfg.verdictFor(score)

	return &Result{
		FakeScore:      score,
		Verdict:        verdict,
		VerdictLabel:   label,
		Confidence:     score,
		IsFake:         score >= FakeMidpoint,
		Reasons:        reasons,
		Contributions:  contributions,
		Recommendation: cfg.recommendationFor(verdict),
	}, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
