package fusion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newscope/nctl/pkg/ensemble"
)

func TestFuse_EnsembleAndTrustedSource(t *testing.T) {
	// Ensemble contributes its full 40 budget (fake at 1.0), the
	// trusted source cancels 30 of it: max(0, 40-30) = 10 over a
	// realized denominator of 70.
	signals := []Signal{
		{Kind: KindEnsemble, Value: 1.0, Category: ensemble.LabelFake, Present: true},
		{Kind: KindSourceCredibility, Value: 10, Category: CategoryTrusted, Present: true},
	}

	res, err := Fuse(signals, TextConfig())
	require.NoError(t, err)

	assert.InDelta(t, 10.0/70.0*100, res.FakeScore, 1e-9)
	assert.False(t, res.IsFake)
	assert.Equal(t, VerdictReal, res.Verdict)
}

func TestFuse_NoSignals(t *testing.T) {
	_, err := Fuse(nil, TextConfig())
	assert.ErrorIs(t, err, ErrInsufficientSignals)
}

func TestFuse_AllSignalsAbsent(t *testing.T) {
	signals := []Signal{
		{Kind: KindEnsemble, Value: 1.0, Category: ensemble.LabelFake, Present: false},
		{Kind: KindSentimentRisk, Category: RiskVeryHigh, Present: false},
	}

	_, err := Fuse(signals, TextConfig())
	assert.ErrorIs(t, err, ErrInsufficientSignals)
}

func TestFuse_UnconfiguredSignalsOnly(t *testing.T) {
	// Present signals with no rule in the active config carry no budget.
	signals := []Signal{
		{Kind: KindImageManipulation, Value: 90, Present: true},
	}

	_, err := Fuse(signals, TextConfig())
	assert.ErrorIs(t, err, ErrInsufficientSignals)
}

func TestFuse_AbsentSignalShrinksDenominator(t *testing.T) {
	fakeEnsemble := Signal{Kind: KindEnsemble, Value: 0.9, Category: ensemble.LabelFake, Present: true}

	withAbsent, err := Fuse([]Signal{
		fakeEnsemble,
		{Kind: KindSentimentRisk, Category: RiskLow, Present: false},
	}, TextConfig())
	require.NoError(t, err)

	withNeutral, err := Fuse([]Signal{
		fakeEnsemble,
		{Kind: KindSentimentRisk, Category: RiskLow, Present: true},
	}, TextConfig())
	require.NoError(t, err)

	// Absent: 36/40. Present-but-low: 36/60. The denominator must differ.
	assert.InDelta(t, 36.0/40.0*100, withAbsent.FakeScore, 1e-9)
	assert.InDelta(t, 36.0/60.0*100, withNeutral.FakeScore, 1e-9)
	assert.Greater(t, withAbsent.FakeScore, withNeutral.FakeScore)
}

func TestFuse_Monotonicity(t *testing.T) {
	base := []Signal{
		{Kind: KindEnsemble, Value: 0.5, Category: ensemble.LabelFake, Present: true},
		{Kind: KindSentimentRisk, Category: RiskMedium, Present: true},
	}

	prev := -1.0
	for _, conf := range []float64{0.5, 0.6, 0.7, 0.8, 0.9, 1.0} {
		signals := make([]Signal, len(base))
		copy(signals, base)
		signals[0].Value = conf

		res, err := Fuse(signals, TextConfig())
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.FakeScore, prev, "confidence %f", conf)
		prev = res.FakeScore
	}
}

func TestFuse_ScoreNeverNegative(t *testing.T) {
	// Trusted source alone: -30 clamped to 0.
	signals := []Signal{
		{Kind: KindSourceCredibility, Value: 10, Category: CategoryTrusted, Present: true},
	}

	res, err := Fuse(signals, TextConfig())
	require.NoError(t, err)
	assert.Zero(t, res.FakeScore)
	assert.Equal(t, VerdictReal, res.Verdict)
}

func TestFuse_BreakdownRecordsRealizedPoints(t *testing.T) {
	// Ensemble at 0.5 contributes +20; the trusted source's nominal -30
	// hits the zero floor and realizes only -20, which is what the
	// breakdown must report.
	signals := []Signal{
		{Kind: KindEnsemble, Value: 0.5, Category: ensemble.LabelFake, Present: true},
		{Kind: KindSourceCredibility, Value: 10, Category: CategoryTrusted, Present: true},
	}

	res, err := Fuse(signals, TextConfig())
	require.NoError(t, err)
	assert.Zero(t, res.FakeScore)

	var found bool
	for _, c := range res.Contributions {
		if c.Kind == KindSourceCredibility {
			found = true
			assert.InDelta(t, -20.0, c.Points, 1e-9)
		}
	}
	assert.True(t, found, "truncated contribution still appears in the breakdown")
}

func TestFuse_VerdictLadder(t *testing.T) {
	cases := []struct {
		value   float64
		verdict string
	}{
		{1.0, VerdictFake},        // 40/40 -> 100
		{0.65, VerdictLikelyFake}, // 26/40 -> 65
		{0.45, VerdictSuspicious}, // 18/40 -> 45
		{0.25, VerdictLikelyReal}, // 10/40 -> 25
		{0.1, VerdictReal},        // 4/40 -> 10
	}

	for _, tc := range cases {
		res, err := Fuse([]Signal{
			{Kind: KindEnsemble, Value: tc.value, Category: ensemble.LabelFake, Present: true},
		}, TextConfig())
		require.NoError(t, err)
		assert.Equal(t, tc.verdict, res.Verdict, "ensemble confidence %f", tc.value)
	}
}

func TestFuse_MidpointIndependentOfLadder(t *testing.T) {
	// 20/40 -> 50: SUSPICIOUS band, yet IsFake is true. Both outputs
	// are preserved; neither is derived from the other.
	res, err := Fuse([]Signal{
		{Kind: KindEnsemble, Value: 0.5, Category: ensemble.LabelFake, Present: true},
	}, TextConfig())
	require.NoError(t, err)

	assert.InDelta(t, 50, res.FakeScore, 1e-9)
	assert.Equal(t, VerdictSuspicious, res.Verdict)
	assert.True(t, res.IsFake)
}

func TestFuse_ReasonsOrderedByMagnitude(t *testing.T) {
	signals := []Signal{
		{Kind: KindEnsemble, Value: 0.4, Category: ensemble.LabelFake, Present: true},   // 16
		{Kind: KindSourceCredibility, Value: 0, Category: CategoryKnownFake, Present: true}, // 30
		{Kind: KindSentimentRisk, Category: RiskMedium, Present: true},                  // 10
	}

	res, err := Fuse(signals, TextConfig())
	require.NoError(t, err)

	require.Len(t, res.Contributions, 3)
	assert.Equal(t, KindSourceCredibility, res.Contributions[0].Kind)
	assert.Equal(t, KindEnsemble, res.Contributions[1].Kind)
	assert.Equal(t, KindSentimentRisk, res.Contributions[2].Kind)

	require.Len(t, res.Reasons, 3)
	assert.Equal(t, "Known fake news source", res.Reasons[0])
}

func TestFuse_ZeroContributionsProduceNoReasons(t *testing.T) {
	res, err := Fuse([]Signal{
		{Kind: KindEnsemble, Value: 0.9, Category: ensemble.LabelReal, Present: true},
	}, TextConfig())
	require.NoError(t, err)

	assert.Empty(t, res.Reasons)
	assert.Empty(t, res.Contributions)
	assert.Zero(t, res.FakeScore)
}

func TestFuse_RealEnsembleContributesNothing(t *testing.T) {
	res, err := Fuse([]Signal{
		{Kind: KindEnsemble, Value: 0.95, Category: ensemble.LabelReal, Present: true},
		{Kind: KindSentimentRisk, Category: RiskVeryHigh, Present: true},
	}, TextConfig())
	require.NoError(t, err)

	// Only sentiment contributes: 20/60.
	assert.InDelta(t, 20.0/60.0*100, res.FakeScore, 1e-9)
}

func TestFuse_LowOCRConfidence(t *testing.T) {
	res, err := Fuse([]Signal{
		{Kind: KindEnsemble, Value: 0.6, Category: ensemble.LabelFake, Present: true},
		{Kind: KindOCRConfidence, Value: 0.5, Present: true},
	}, TextConfig())
	require.NoError(t, err)

	// Ensemble 24 + OCR (1-0.5)*10=5 over 50.
	assert.InDelta(t, 29.0/50.0*100, res.FakeScore, 1e-9)
}

func TestFuse_ImageFlow(t *testing.T) {
	signals := []Signal{
		{Kind: KindImageManipulation, Value: 80, Present: true},
		{Kind: KindAIGeneration, Value: 90, Category: "midjourney", Present: true},
		{Kind: KindImageContext, Value: 75, Category: CategoryFakeContext, Present: true},
		{Kind: KindContextMatch, Category: CategoryContextMismatch, Present: true},
	}

	res, err := Fuse(signals, ImageConfig())
	require.NoError(t, err)

	// 25 + 31.5 + 15 + 15 = 86.5 over 95.
	assert.InDelta(t, 86.5/95.0*100, res.FakeScore, 1e-9)
	assert.Equal(t, VerdictFake, res.Verdict)
	assert.True(t, res.IsFake)
}

func TestFuse_ImageFlowAuthentic(t *testing.T) {
	signals := []Signal{
		{Kind: KindImageManipulation, Value: 10, Present: true},
		{Kind: KindAIGeneration, Value: 20, Present: true},
		{Kind: KindContextMatch, Category: CategoryContextMatch, Present: true},
	}

	res, err := Fuse(signals, ImageConfig())
	require.NoError(t, err)
	assert.Zero(t, res.FakeScore)
	assert.Equal(t, VerdictLikelyAuthentic, res.Verdict)
}

func TestFuse_NilConfig(t *testing.T) {
	_, err := Fuse([]Signal{{Kind: KindEnsemble, Present: true}}, nil)
	assert.Error(t, err)
}
