package fusion

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/newscope/nctl/pkg/ensemble"
)

// Verdict values used by the stock configs, ordered by severity.
const (
	VerdictFake            = "FAKE"
	VerdictLikelyFake      = "LIKELY_FAKE"
	VerdictSuspicious      = "SUSPICIOUS"
	VerdictLikelyReal      = "LIKELY_REAL"
	VerdictReal            = "REAL"
	VerdictLikelyAuthentic = "LIKELY_AUTHENTIC"
)

// Signal categories recognized by the stock mapping functions.
// Producers set these on the signals they emit.
const (
	CategoryKnownFake       = "KNOWN_FAKE"
	CategoryTrusted         = "TRUSTED"
	CategoryUnknown         = "UNKNOWN"
	CategoryFakeContext     = "FAKE_CONTEXT"
	CategoryContextMatch    = "CONTEXT_MATCHES"
	CategoryContextMismatch = "CONTEXT_MISMATCH"

	RiskLow      = "LOW"
	RiskMedium   = "MEDIUM"
	RiskHigh     = "HIGH"
	RiskVeryHigh = "VERY_HIGH"
)

// ScoreFunc maps a present signal's raw value to a contribution within
// [-budget, budget]. Implementations must be monotonic in the signal value.
type ScoreFunc func(Signal) float64

// ReasonFunc renders the human-readable reason for a realized contribution.
type ReasonFunc func(sig Signal, points float64) string

// Rule binds one signal kind to its weight budget and mapping.
type Rule struct {
	Kind   Kind
	Budget float64
	Score  ScoreFunc
	Reason ReasonFunc
}

// Band is one step of the verdict ladder: scores at or above Min map to Verdict.
type Band struct {
	Min     float64
	Verdict string
	Label   string
}

// Config drives one fusion flow. Constructed once at startup via
// NewConfig and treated as immutable afterwards.
type Config struct {
	Rules           []Rule
	Ladder          []Band
	Recommendations map[string]string
}

// NewConfig validates and freezes a fusion configuration. Budgets must
// be positive, kinds unique, and ladder thresholds strictly decreasing
// down to a catch-all band at zero.
func NewConfig(rules []Rule, ladder []Band, recommendations map[string]string) (*Config, error) {
	if len(rules) == 0 {
		return nil, errors.New("fusion config requires at least one rule")
	}
	seen := make(map[Kind]bool, len(rules))
	for _, r := range rules {
		if r.Kind == "" {
			return nil, errors.New("fusion rule has empty kind")
		}
		if seen[r.Kind] {
			return nil, errors.Errorf("duplicate fusion rule for kind %s", r.Kind)
		}
		seen[r.Kind] = true
		if r.Budget <= 0 {
			return nil, errors.Errorf("budget for %s must be positive, got %f", r.Kind, r.Budget)
		}
		if r.Score == nil || r.Reason == nil {
			return nil, errors.Errorf("rule for %s is missing score or reason func", r.Kind)
		}
	}

	if len(ladder) == 0 {
		return nil, errors.New("fusion config requires a verdict ladder")
	}
	for i, b := range ladder {
		if b.Verdict == "" {
			return nil, errors.New("verdict ladder contains empty verdict")
		}
		if i > 0 && b.Min >= ladder[i-1].Min {
			return nil, errors.Errorf("verdict ladder thresholds must strictly decrease, got %f after %f",
				b.Min, ladder[i-1].Min)
		}
	}
	if last := ladder[len(ladder)-1]; last.Min != 0 {
		return nil, errors.Errorf("verdict ladder must end at zero, got %f", last.Min)
	}

	return &Config{
		Rules:           rules,
		Ladder:          ladder,
		Recommendations: recommendations,
	}, nil
}

func (c *Config) verdictFor(score float64) (string, string) {
	for _, b := range c.Ladder {
		if score >= b.Min {
			return b.Verdict, b.Label
		}
	}
	last := c.Ladder[len(c.Ladder)-1]
	return last.Verdict, last.Label
}

func (c *Config) recommendationFor(verdict string) string {
	return c.Recommendations[verdict]
}

// Customize returns a copy of cfg with budget and ladder overrides
// applied. An overridden budget rescales the rule's contributions
// proportionally; kinds without an override keep their stock budget.
// A nil or empty ladder keeps the stock ladder.
func Customize(cfg *Config, budgets map[Kind]float64, ladder []Band) (*Config, error) {
	if cfg == nil {
		return nil, errors.New("fusion config is required")
	}

	rules := make([]Rule, len(cfg.Rules))
	copy(rules, cfg.Rules)
	for i := range rules {
		budget, ok := budgets[rules[i].Kind]
		if !ok || budget == rules[i].Budget {
			continue
		}
		scale := budget / rules[i].Budget
		inner := rules[i].Score
		rules[i].Score = func(s Signal) float64 {
			return inner(s) * scale
		}
		rules[i].Budget = budget
	}

	if len(ladder) == 0 {
		ladder = cfg.Ladder
	} else {
		ladder = append([]Band(nil), ladder...)
		for i := range ladder {
			if ladder[i].Label == "" {
				ladder[i].Label = ladder[i].Verdict
			}
		}
	}

	return NewConfig(rules, ladder, cfg.Recommendations)
}

// TextConfig is the stock configuration for the article-text flow:
// ML ensemble 40, source credibility 30, sentiment 20, OCR 10.
func TextConfig() *Config {
	cfg, err := NewConfig(
		[]Rule{
			{
				Kind:   KindEnsemble,
				Budget: 40,
				Score: func(s Signal) float64 {
					if s.Category == ensemble.LabelFake {
						return 40 * s.Value
					}
					return 0
				},
				Reason: func(s Signal, _ float64) string {
					return fmt.Sprintf("ML ensemble: %.0f%% fake", s.Value*100)
				},
			},
			{
				Kind:   KindSourceCredibility,
				Budget: 30,
				Score: func(s Signal) float64 {
					switch s.Category {
					case CategoryKnownFake:
						return 30
					case CategoryTrusted:
						return -30
					default:
						if s.Value < 4 {
							return 15
						}
						return 0
					}
				},
				Reason: func(s Signal, points float64) string {
					switch s.Category {
					case CategoryKnownFake:
						return "Known fake news source"
					case CategoryTrusted:
						return "Trusted source"
					default:
						return "Low credibility source"
					}
				},
			},
			{
				Kind:   KindSentimentRisk,
				Budget: 20,
				Score: func(s Signal) float64 {
					switch s.Category {
					case RiskVeryHigh:
						return 20
					case RiskHigh:
						return 15
					case RiskMedium:
						return 10
					default:
						return 0
					}
				},
				Reason: func(s Signal, _ float64) string {
					if s.Category == RiskMedium {
						return "Moderate emotional language"
					}
					return "High emotional manipulation detected"
				},
			},
			{
				Kind:   KindOCRConfidence,
				Budget: 10,
				Score: func(s Signal) float64 {
					// Low OCR confidence means the extracted text itself is unreliable.
					if s.Value < 0.7 {
						return (1 - s.Value) * 10
					}
					return 0
				},
				Reason: func(s Signal, _ float64) string {
					return fmt.Sprintf("Low OCR confidence (%.0f%%)", s.Value*100)
				},
			},
		},
		[]Band{
			{Min: 80, Verdict: VerdictFake, Label: "Very likely fake news"},
			{Min: 60, Verdict: VerdictLikelyFake, Label: "Probably fake news"},
			{Min: 40, Verdict: VerdictSuspicious, Label: "Suspicious - verify independently"},
			{Min: 20, Verdict: VerdictLikelyReal, Label: "Probably legitimate"},
			{Min: 0, Verdict: VerdictReal, Label: "Likely legitimate news"},
		},
		map[string]string{
			VerdictFake:       "Do not trust or share this content. Verify with credible sources.",
			VerdictLikelyFake: "Highly questionable. Cross-check with multiple trusted sources.",
			VerdictSuspicious: "Exercise caution. Verify key claims independently.",
			VerdictLikelyReal: "Appears credible, but always verify important claims.",
			VerdictReal:       "Likely legitimate, from credible source.",
		},
	)
	if err != nil {
		panic(err) // static configuration, validated by tests
	}
	return cfg
}

// ImageConfig is the stock configuration for the image flow:
// manipulation 25, AI generation 35, context classification 20, context match 15.
func ImageConfig() *Config {
	cfg, err := NewConfig(
		[]Rule{
			{
				Kind:   KindImageManipulation,
				Budget: 25,
				Score: func(s Signal) float64 {
					// Value is the manipulation probability in [0,100].
					if s.Value > 50 {
						return 25
					}
					return 0
				},
				Reason: func(s Signal, _ float64) string {
					return "Image shows signs of manipulation"
				},
			},
			{
				Kind:   KindAIGeneration,
				Budget: 35,
				Score: func(s Signal) float64 {
					if s.Value > 50 {
						return 35 * s.Value / 100
					}
					return 0
				},
				Reason: func(s Signal, _ float64) string {
					if s.Category != "" {
						return fmt.Sprintf("AI-generated (%s, %.1f%% confidence)", s.Category, s.Value)
					}
					return fmt.Sprintf("AI-generated (%.1f%% confidence)", s.Value)
				},
			},
			{
				Kind:   KindImageContext,
				Budget: 20,
				Score: func(s Signal) float64 {
					if s.Category == CategoryFakeContext {
						return 20 * s.Value / 100
					}
					return 0
				},
				Reason: func(s Signal, _ float64) string {
					return fmt.Sprintf("Fake news context detected (%.1f%% confidence)", s.Value)
				},
			},
			{
				Kind:   KindContextMatch,
				Budget: 15,
				Score: func(s Signal) float64 {
					if s.Category == CategoryContextMismatch {
						return 15
					}
					return 0
				},
				Reason: func(s Signal, _ float64) string {
					return "Image does not match its claimed context"
				},
			},
		},
		[]Band{
			{Min: 70, Verdict: VerdictFake, Label: "Image is manipulated, AI-generated, or misused"},
			{Min: 40, Verdict: VerdictSuspicious, Label: "Image authenticity questionable"},
			{Min: 0, Verdict: VerdictLikelyAuthentic, Label: "Image appears authentic"},
		},
		map[string]string{
			VerdictFake:            "Do not trust this image - likely manipulated or misused in wrong context.",
			VerdictSuspicious:      "Verify image authenticity - perform additional verification.",
			VerdictLikelyAuthentic: "Image appears authentic, but always verify claims independently.",
		},
	)
	if err != nil {
		panic(err)
	}
	return cfg
}
