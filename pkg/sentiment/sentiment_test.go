package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newscope/nctl/pkg/fusion"
)

func TestAnalyzeNeutral(t *testing.T) {
	a := NewAnalyzer().Analyze("The committee reported its quarterly figures on schedule.")

	assert.InDelta(t, 0.0, a.Polarity, 0.2)
	assert.False(t, a.IsExtreme)
	assert.False(t, a.IsSubjective)
	assert.Equal(t, 0, a.ManipulationScore)
	assert.Equal(t, fusion.RiskLow, a.ManipulationRisk)
	assert.Empty(t, a.WarningFlags)
	assert.Equal(t, "Appears relatively objective", a.Recommendation)
}

func TestAnalyzeManipulative(t *testing.T) {
	a := NewAnalyzer().Analyze(
		"Absolutely horrifying disaster! This disgusting corrupt scandal is the worst catastrophe ever, utterly terrible and outrageous!")

	assert.True(t, a.IsExtreme)
	assert.True(t, a.IsSubjective)
	assert.Less(t, a.Polarity, -0.5)
	assert.GreaterOrEqual(t, a.ManipulationScore, 70)
	assert.Equal(t, fusion.RiskVeryHigh, a.ManipulationRisk)
	assert.Contains(t, a.WarningFlags, "Extreme emotional language")
	assert.Contains(t, a.Recommendation, "verify facts independently")
}

func TestRiskBands(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{0, fusion.RiskLow},
		{29, fusion.RiskLow},
		{30, fusion.RiskMedium},
		{49, fusion.RiskMedium},
		{50, fusion.RiskHigh},
		{69, fusion.RiskHigh},
		{70, fusion.RiskVeryHigh},
		{100, fusion.RiskVeryHigh},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, riskLevel(tc.score), "score %d", tc.score)
	}
}

func TestManipulationScoreSteps(t *testing.T) {
	// extreme but not very extreme, subjective but not very subjective
	// lands exactly one step into each band
	tests := []struct {
		name     string
		polarity float64
		subj     float64
		want     int
	}{
		{"calm objective", 0.2, 0.3, 0},
		{"extreme only", 0.6, 0.3, 30},
		{"very extreme", 0.8, 0.3, 50},
		{"subjective only", 0.2, 0.7, 30},
		{"very subjective", 0.2, 0.9, 50},
		{"everything", 0.8, 0.9, 100},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var score int
			if abs(tc.polarity) > 0.5 {
				score += 30
			}
			if abs(tc.polarity) > 0.7 {
				score += 20
			}
			if tc.subj > 0.6 {
				score += 30
			}
			if tc.subj > 0.8 {
				score += 20
			}
			assert.Equal(t, tc.want, score)
		})
	}
}

func TestIntensifierBoost(t *testing.T) {
	plain, _ := score("a bad outcome")
	boosted, _ := score("an extremely bad outcome")
	assert.Less(t, boosted, plain, "intensifier should deepen negative polarity")
}

func TestSentenceVariance(t *testing.T) {
	a := NewAnalyzer().Analyze(
		"This is amazing and wonderful news. This is a terrible horrible disaster. Truly the best fantastic outcome.")

	assert.GreaterOrEqual(t, a.SentenceCount, 3)
	assert.Greater(t, a.SentimentVariance, 0.3)
	assert.True(t, a.IsInconsistent)
	assert.Contains(t, a.WarningFlags, "Inconsistent sentiment (potential manipulation)")
}

func TestVariance(t *testing.T) {
	assert.Equal(t, 0.0, variance(nil))
	assert.Equal(t, 0.0, variance([]float64{0.5}))
	assert.InDelta(t, 0.25, variance([]float64{0, 1, 0, 1}), 1e-9)
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "Very Positive", polarityLabel(0.9))
	assert.Equal(t, "Neutral", polarityLabel(0.0))
	assert.Equal(t, "Very Negative", polarityLabel(-0.9))
	assert.Equal(t, "Highly Subjective", subjectivityLabel(0.9))
	assert.Equal(t, "Objective", subjectivityLabel(0.1))
}

func TestSignal(t *testing.T) {
	a := NewAnalyzer().Analyze("utterly disgusting and horrifying corrupt lies everywhere")
	sig := a.Signal()

	require.True(t, sig.Present)
	assert.Equal(t, fusion.KindSentimentRisk, sig.Kind)
	assert.Equal(t, float64(a.ManipulationScore), sig.Value)
	assert.Equal(t, a.ManipulationRisk, sig.Category)
}
