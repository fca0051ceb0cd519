package data

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndGetAnalysis(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	rec := &AnalysisRecord{
		Content:     ContentText,
		Fingerprint: "abc123",
		URL:         "https://example.com/story",
		Verdict:     "SUSPICIOUS",
		Label:       "fake",
		FakeScore:   47.5,
		IsFake:      false,
		Reasons:     []string{"ML model prediction", "Unverified source"},
	}

	id, err := SaveAnalysis(ctx, db, rec)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	got, err := GetAnalysis(ctx, db, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec.Fingerprint, got.Fingerprint)
	assert.Equal(t, rec.URL, got.URL)
	assert.Equal(t, rec.Verdict, got.Verdict)
	assert.Equal(t, rec.FakeScore, got.FakeScore)
	assert.Equal(t, rec.Reasons, got.Reasons)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestGetAnalysis_NotFound(t *testing.T) {
	db := setupTestDB(t)

	got, err := GetAnalysis(context.Background(), db, "missing-id")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSaveAnalysis_NilArgs(t *testing.T) {
	db := setupTestDB(t)

	_, err := SaveAnalysis(context.Background(), nil, &AnalysisRecord{})
	assert.Error(t, err)

	_, err = SaveAnalysis(context.Background(), db, nil)
	assert.Error(t, err)
}

func TestListAnalyses(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := SaveAnalysis(ctx, db, &AnalysisRecord{
			Content:     ContentText,
			Fingerprint: "fp",
			Verdict:     "REAL",
			Label:       "real",
		})
		require.NoError(t, err)
	}

	all, err := ListAnalyses(ctx, db, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	limited, err := ListAnalyses(ctx, db, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestVerdictDistribution(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	verdicts := []string{"FAKE", "FAKE", "REAL", "SUSPICIOUS"}
	for _, v := range verdicts {
		_, err := SaveAnalysis(ctx, db, &AnalysisRecord{
			Content:     ContentText,
			Fingerprint: "fp",
			Verdict:     v,
			Label:       "fake",
		})
		require.NoError(t, err)
	}

	dist, err := VerdictDistribution(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, int64(2), dist["FAKE"])
	assert.Equal(t, int64(1), dist["REAL"])
	assert.Equal(t, int64(1), dist["SUSPICIOUS"])
}

func TestSaveAnalysis_NoReasons(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	id, err := SaveAnalysis(ctx, db, &AnalysisRecord{
		Content:     ContentImage,
		Fingerprint: "img-fp",
		Verdict:     "LIKELY_AUTHENTIC",
		Label:       "real",
	})
	require.NoError(t, err)

	got, err := GetAnalysis(ctx, db, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got.Reasons)
}
