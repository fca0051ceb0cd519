// Package rules implements a pattern-matching classifier for news
// text. It scores linguistic markers of fabricated content (sensational
// phrasing, clickbait, conspiracy framing) against markers of
// conventional reporting (citations, formal connectives, dated quotes)
// and emits a probability usable alongside model-based classifiers.
package rules

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/newscope/nctl/pkg/ensemble"
	"github.com/newscope/nctl/pkg/explain"
	"github.com/newscope/nctl/pkg/text"
)

// ClassifierID identifies this detector in ensemble weight tables.
const ClassifierID = "rules"

const maxConfidence = 0.95

// indicator categories reported in match summaries.
const (
	CategorySensational    = "sensational"
	CategoryClickbait      = "clickbait"
	CategoryExcessiveCaps  = "excessive_caps"
	CategoryExcessivePunct = "excessive_punctuation"
	CategoryConspiracy     = "conspiracy"
	CategoryUrgency        = "urgency"
	CategoryCitations      = "citations"
	CategoryFormal         = "formal_language"
	CategoryDates          = "specific_dates"
	CategoryQuotes         = "quotes"
)

type patternGroup struct {
	category string
	patterns []*regexp.Regexp
	// rawCase groups match against the original text, the rest
	// against its lowercased form.
	rawCase bool
}

func compileGroup(category string, exprs ...string) patternGroup {
	g := patternGroup{category: category}
	for _, e := range exprs {
		g.patterns = append(g.patterns, regexp.MustCompile(e))
	}
	return g
}

// Match records the occurrences of one pattern in the analyzed text.
type Match struct {
	Category string   `json:"category"`
	Pattern  string   `json:"pattern"`
	Tokens   []string `json:"tokens"`
}

// Analysis is the full result of a rule pass over one text.
type Analysis struct {
	Prediction  string        `json:"prediction"`
	Confidence  float64       `json:"confidence"`
	FakeScore   int           `json:"fake_score"`
	RealScore   int           `json:"real_score"`
	FakeMatches []Match       `json:"fake_matches"`
	RealMatches []Match       `json:"real_matches"`
	Features    text.Features `json:"features"`
}

// Detector holds the compiled indicator patterns. Construct with
// NewDetector and share freely; it is immutable after construction.
type Detector struct {
	fake []patternGroup
	real []patternGroup
}

// NewDetector compiles the built-in indicator patterns.
func NewDetector() *Detector {
	caps := compileGroup(CategoryExcessiveCaps, `[A-Z\s]{15,}`)
	caps.rawCase = true
	quotes := compileGroup(CategoryQuotes, `"[^"]{20,}"`)
	quotes.rawCase = true

	return &Detector{
		fake: []patternGroup{
			compileGroup(CategorySensational,
				`\bshocking\b`, `\bunbelievable\b`, `\bbreaking\b`,
				`\bexclusive\b`, `\byou won't believe\b`, `\bamaze\b`,
				`\bstunning\b`, `\bmind[- ]blowing\b`, `\binsane\b`),
			compileGroup(CategoryClickbait,
				`what happens next`, `will shock you`, `you need to know`,
				`this is why`, `the truth about`, `number \d+ will`,
				`doctors hate`, `one simple trick`),
			caps,
			compileGroup(CategoryExcessivePunct, `[!?]{3,}`),
			compileGroup(CategoryConspiracy,
				`\bcover[- ]?up\b`, `\bthey don't want\b`, `\bhidden truth\b`,
				`\bwake up\b`, `\bsheeple\b`, `\bmainstream media lies\b`),
			compileGroup(CategoryUrgency,
				`\bright now\b`, `\bimmediately\b`, `\bact fast\b`,
				`\blimited time\b`, `\bhurry\b`, `\bdon't wait\b`),
		},
		real: []patternGroup{
			compileGroup(CategoryCitations,
				`according to`, `reported by`, `said in a statement`,
				`told reporters`, `sources say`, `officials said`),
			compileGroup(CategoryFormal,
				`\bhowever\b`, `\bnevertheless\b`, `\bfurthermore\b`,
				`\bmoreover\b`, `\btherefore\b`, `\bconsequently\b`),
			compileGroup(CategoryDates,
				`\b(?:january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2},?\s+\d{4}\b`),
			quotes,
		},
	}
}

func runGroups(groups []patternGroup, raw, lower string) (int, []Match) {
	var score int
	var matches []Match
	for _, g := range groups {
		subject := lower
		if g.rawCase {
			subject = raw
		}
		for _, p := range g.patterns {
			found := p.FindAllString(subject, -1)
			if len(found) == 0 {
				continue
			}
			score += len(found)
			matches = append(matches, Match{
				Category: g.category,
				Pattern:  p.String(),
				Tokens:   found,
			})
		}
	}
	return score, matches
}

// Analyze scores the text against both indicator sets. With no matches
// on either side the prediction is "uncertain" at confidence 0.5.
func (d *Detector) Analyze(s string) *Analysis {
	lower := strings.ToLower(s)

	fakeScore, fakeMatches := runGroups(d.fake, s, lower)
	realScore, realMatches := runGroups(d.real, s, lower)

	a := &Analysis{
		FakeScore:   fakeScore,
		RealScore:   realScore,
		FakeMatches: fakeMatches,
		RealMatches: realMatches,
		Features:    text.Extract(s),
	}

	total := fakeScore + realScore
	switch {
	case total == 0:
		a.Prediction = "uncertain"
		a.Confidence = 0.5
	case fakeScore > realScore:
		a.Prediction = ensemble.LabelFake
		a.Confidence = min(0.5+float64(fakeScore)/float64(total*2), maxConfidence)
	default:
		a.Prediction = ensemble.LabelReal
		a.Confidence = min(0.5+float64(realScore)/float64(total*2), maxConfidence)
	}
	return a
}

// ClassifierOutput converts an analysis into the probability pair the
// voting combiner consumes. An uncertain analysis contributes an even
// split.
func (a *Analysis) ClassifierOutput() ensemble.ClassifierOutput {
	out := ensemble.ClassifierOutput{ClassifierID: ClassifierID}
	switch a.Prediction {
	case ensemble.LabelFake:
		out.ProbFake = a.Confidence
		out.ProbReal = 1 - a.Confidence
	case ensemble.LabelReal:
		out.ProbReal = a.Confidence
		out.ProbFake = 1 - a.Confidence
	default:
		out.ProbFake = 0.5
		out.ProbReal = 0.5
	}
	return out
}

// WordWeights maps matched tokens to importance weights for the
// explanation aggregator. Tokens that matched a fabrication pattern
// weigh positive, credibility tokens negative, each scaled by its share
// of the total match count.
func (a *Analysis) WordWeights() []explain.WordWeight {
	total := a.FakeScore + a.RealScore
	if total == 0 {
		return nil
	}

	seen := map[string]float64{}
	var order []string

	add := func(matches []Match, sign float64) {
		for _, m := range matches {
			for _, tok := range m.Tokens {
				key := strings.ToLower(strings.TrimSpace(tok))
				if key == "" {
					continue
				}
				if _, ok := seen[key]; !ok {
					order = append(order, key)
				}
				seen[key] += sign / float64(total)
			}
		}
	}
	add(a.FakeMatches, 1)
	add(a.RealMatches, -1)

	weights := make([]explain.WordWeight, 0, len(order))
	for _, tok := range order {
		weights = append(weights, explain.WordWeight{Token: tok, Weight: seen[tok]})
	}
	return weights
}

// Explanation renders the analysis as human-readable indicator lines,
// grouped by category.
func (a *Analysis) Explanation() []string {
	var lines []string

	summarize := func(header string, matches []Match) {
		if len(matches) == 0 {
			return
		}
		lines = append(lines, fmt.Sprintf("%s %d", header, len(matches)))
		counts := map[string]int{}
		for _, m := range matches {
			counts[m.Category]++
		}
		cats := make([]string, 0, len(counts))
		for c := range counts {
			cats = append(cats, c)
		}
		sort.Strings(cats)
		for _, c := range cats {
			lines = append(lines, fmt.Sprintf("  - %d %s pattern(s)", counts[c], c))
		}
	}

	summarize("fake news indicators found:", a.FakeMatches)
	summarize("credibility indicators found:", a.RealMatches)

	if len(lines) == 0 {
		lines = append(lines, "no strong indicators found")
	}
	return lines
}
