// Package sentiment scores emotional tone and subjectivity of article
// text with a built-in lexicon. Fabricated stories tend to run hotter
// and more opinionated than straight reporting, so extreme polarity and
// heavy subjectivity raise a manipulation risk score.
package sentiment

import (
	"regexp"
	"strings"

	"github.com/newscope/nctl/pkg/fusion"
)

// manipulation score thresholds mirror the risk bands the fusion
// engine consumes.
const (
	riskVeryHighMin = 70
	riskHighMin     = 50
	riskMediumMin   = 30
)

const inconsistencyVariance = 0.3

// word entry: polarity in [-1, 1], subjectivity in [0, 1].
type entry struct {
	polarity     float64
	subjectivity float64
}

// lexicon covers the emotionally loaded vocabulary common in
// manipulative news text plus neutral reporting terms. Small by
// dictionary standards but tuned for the headline register.
var lexicon = map[string]entry{
	"amazing":      {0.9, 0.9},
	"incredible":   {0.9, 0.9},
	"wonderful":    {0.8, 0.8},
	"fantastic":    {0.9, 0.9},
	"great":        {0.7, 0.6},
	"good":         {0.5, 0.4},
	"best":         {0.9, 0.7},
	"perfect":      {0.9, 0.8},
	"miracle":      {0.9, 0.9},
	"stunning":     {0.7, 0.9},
	"beautiful":    {0.7, 0.8},
	"love":         {0.6, 0.7},
	"happy":        {0.6, 0.6},
	"win":          {0.5, 0.4},
	"success":      {0.6, 0.4},
	"terrible":     {-0.9, 0.9},
	"horrible":     {-0.9, 0.9},
	"awful":        {-0.9, 0.9},
	"disaster":     {-0.8, 0.7},
	"catastrophe":  {-0.9, 0.8},
	"disgusting":   {-0.9, 0.9},
	"outrageous":   {-0.8, 0.9},
	"shocking":     {-0.7, 0.9},
	"horrifying":   {-0.9, 0.9},
	"devastating":  {-0.8, 0.7},
	"bad":          {-0.5, 0.5},
	"worst":        {-0.9, 0.7},
	"hate":         {-0.7, 0.8},
	"fear":         {-0.6, 0.6},
	"dangerous":    {-0.6, 0.5},
	"crisis":       {-0.6, 0.4},
	"scandal":      {-0.7, 0.6},
	"corrupt":      {-0.8, 0.7},
	"lies":         {-0.7, 0.7},
	"fraud":        {-0.8, 0.6},
	"destroy":      {-0.7, 0.6},
	"fail":         {-0.6, 0.5},
	"threat":       {-0.6, 0.5},
	"panic":        {-0.7, 0.7},
	"fury":         {-0.7, 0.8},
	"angry":        {-0.6, 0.7},
	"sad":          {-0.5, 0.7},
	"reported":     {0, 0.1},
	"according":    {0, 0.1},
	"stated":       {0, 0.1},
	"announced":    {0, 0.2},
	"confirmed":    {0.1, 0.2},
	"estimated":    {0, 0.2},
	"allegedly":    {0, 0.3},
	"believe":      {0, 0.7},
	"think":        {0, 0.6},
	"feel":         {0, 0.8},
	"opinion":      {0, 0.8},
	"obviously":    {0, 0.9},
	"clearly":      {0.1, 0.8},
	"undoubtedly":  {0.1, 0.9},
	"must":         {0, 0.6},
	"should":       {0, 0.6},
	"always":       {0, 0.7},
	"never":        {0, 0.7},
	"everyone":     {0, 0.6},
	"nobody":       {0, 0.6},
	"unbelievable": {-0.4, 0.9},
	"insane":       {-0.5, 0.9},
	"crazy":        {-0.4, 0.9},
}

// intensifiers boost the following lexicon word.
var intensifiers = map[string]float64{
	"very":       1.3,
	"extremely":  1.5,
	"absolutely": 1.5,
	"totally":    1.4,
	"completely": 1.4,
	"really":     1.2,
	"so":         1.2,
	"utterly":    1.5,
}

var (
	sentenceExp = regexp.MustCompile(`[.!?]+`)
	wordExp     = regexp.MustCompile(`[a-z']+`)
)

// Analysis is the sentiment profile of one text.
type Analysis struct {
	Polarity          float64  `json:"polarity"`
	PolarityLabel     string   `json:"polarity_label"`
	Subjectivity      float64  `json:"subjectivity"`
	SubjectivityLabel string   `json:"subjectivity_label"`
	IsExtreme         bool     `json:"is_extreme_sentiment"`
	IsSubjective      bool     `json:"is_highly_subjective"`
	ManipulationScore int      `json:"manipulation_score"`
	ManipulationRisk  string   `json:"manipulation_risk"`
	SentenceCount     int      `json:"sentence_count"`
	SentimentVariance float64  `json:"sentiment_variance"`
	IsInconsistent    bool     `json:"is_inconsistent"`
	WarningFlags      []string `json:"warning_flags"`
	Recommendation    string   `json:"recommendation"`
}

// Analyzer scores text against the built-in lexicon. Stateless and
// safe for concurrent use.
type Analyzer struct{}

// NewAnalyzer returns a ready analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// score returns average polarity and subjectivity over the lexicon
// words in s, with intensifier boosting. Texts with no lexicon words
// score neutral and objective.
func score(s string) (polarity, subjectivity float64) {
	words := wordExp.FindAllString(strings.ToLower(s), -1)

	var pSum, sSum float64
	var n int
	boost := 1.0
	for _, w := range words {
		if f, ok := intensifiers[w]; ok {
			boost = f
			continue
		}
		if e, ok := lexicon[w]; ok {
			pSum += clamp(e.polarity*boost, -1, 1)
			sSum += clamp(e.subjectivity*boost, 0, 1)
			n++
		}
		boost = 1.0
	}
	if n == 0 {
		return 0, 0
	}
	return pSum / float64(n), sSum / float64(n)
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

// Analyze profiles the text and derives the manipulation risk band.
func (a *Analyzer) Analyze(s string) *Analysis {
	polarity, subjectivity := score(s)

	isExtreme := abs(polarity) > 0.5
	isVeryExtreme := abs(polarity) > 0.7
	isSubjective := subjectivity > 0.6
	isVerySubjective := subjectivity > 0.8

	var manipulation int
	if isExtreme {
		manipulation += 30
	}
	if isVeryExtreme {
		manipulation += 20
	}
	if isSubjective {
		manipulation += 30
	}
	if isVerySubjective {
		manipulation += 20
	}

	risk := riskLevel(manipulation)

	sentences := splitSentences(s)
	var polarities []float64
	for _, sent := range sentences {
		p, _ := score(sent)
		if p != 0 {
			polarities = append(polarities, p)
		}
	}
	sentVariance := variance(polarities)
	inconsistent := sentVariance > inconsistencyVariance

	return &Analysis{
		Polarity:          polarity,
		PolarityLabel:     polarityLabel(polarity),
		Subjectivity:      subjectivity,
		SubjectivityLabel: subjectivityLabel(subjectivity),
		IsExtreme:         isExtreme,
		IsSubjective:      isSubjective,
		ManipulationScore: manipulation,
		ManipulationRisk:  risk,
		SentenceCount:     len(sentences),
		SentimentVariance: sentVariance,
		IsInconsistent:    inconsistent,
		WarningFlags:      warningFlags(isExtreme, isSubjective, inconsistent),
		Recommendation:    recommendation(risk, isExtreme, isSubjective),
	}
}

// Signal converts the analysis into the fusion engine's sentiment
// risk signal.
func (a *Analysis) Signal() fusion.Signal {
	return fusion.Signal{
		Kind:     fusion.KindSentimentRisk,
		Value:    float64(a.ManipulationScore),
		Category: a.ManipulationRisk,
		Present:  true,
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func splitSentences(s string) []string {
	var out []string
	for _, part := range sentenceExp.Split(s, -1) {
		if strings.TrimSpace(part) != "" {
			out = append(out, part)
		}
	}
	return out
}

func variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	var sum float64
	for _, v := range values {
		sum += (v - mean) * (v - mean)
	}
	return sum / float64(len(values))
}

func riskLevel(score int) string {
	switch {
	case score >= riskVeryHighMin:
		return fusion.RiskVeryHigh
	case score >= riskHighMin:
		return fusion.RiskHigh
	case score >= riskMediumMin:
		return fusion.RiskMedium
	default:
		return fusion.RiskLow
	}
}

func polarityLabel(p float64) string {
	switch {
	case p > 0.7:
		return "Very Positive"
	case p > 0.3:
		return "Positive"
	case p > 0.1:
		return "Slightly Positive"
	case p > -0.1:
		return "Neutral"
	case p > -0.3:
		return "Slightly Negative"
	case p > -0.7:
		return "Negative"
	default:
		return "Very Negative"
	}
}

func subjectivityLabel(s float64) string {
	switch {
	case s > 0.8:
		return "Highly Subjective"
	case s > 0.6:
		return "Subjective"
	case s > 0.4:
		return "Somewhat Subjective"
	case s > 0.2:
		return "Mostly Objective"
	default:
		return "Objective"
	}
}

func warningFlags(extreme, subjective, inconsistent bool) []string {
	var flags []string
	if extreme {
		flags = append(flags, "Extreme emotional language")
	}
	if subjective {
		flags = append(flags, "Highly opinionated content")
	}
	if inconsistent {
		flags = append(flags, "Inconsistent sentiment (potential manipulation)")
	}
	return flags
}

func recommendation(risk string, extreme, subjective bool) string {
	switch {
	case risk == fusion.RiskVeryHigh || risk == fusion.RiskHigh:
		return "High risk of emotional manipulation - verify facts independently"
	case risk == fusion.RiskMedium && (extreme || subjective):
		return "Moderate manipulation risk - cross-check with neutral sources"
	case subjective:
		return "Opinion-heavy content - look for factual reporting"
	default:
		return "Appears relatively objective"
	}
}
