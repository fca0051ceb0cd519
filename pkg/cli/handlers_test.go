package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newscope/nctl/pkg/data"
)

func newTestRouter(t *testing.T) (*gin.Engine, *appConfig) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app := newTestApp(t)

	r := gin.New()
	v1 := r.Group("/v1")
	v1.GET("/health", healthHandler)
	v1.POST("/predict", app.predictHandler)
	v1.POST("/explain", app.explainHandler)
	v1.POST("/analyze/text", app.analyzeTextHandler)
	v1.POST("/analyze/image", app.analyzeImageHandler)
	v1.GET("/history", app.historyHandler)
	v1.GET("/history/:id", app.historyItemHandler)
	v1.GET("/verdicts", app.verdictsHandler)
	v1.GET("/cache/stats", app.cacheStatsHandler)
	v1.POST("/cache/clear", app.cacheClearHandler)
	return r, app
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthHandler(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/v1/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestPredictHandler(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/v1/predict", predictRequest{
		Text: "SHOCKING!!! Doctors HATE this one weird trick, share before they delete it!!!",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Cached bool `json:"cached"`
		Result struct {
			Prediction string  `json:"prediction"`
			Confidence float64 `json:"confidence"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Cached)
	assert.Equal(t, "fake", body.Result.Prediction)
	assert.Greater(t, body.Result.Confidence, 0.5)
}

func TestPredictHandler_InvalidInput(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/v1/predict", predictRequest{Text: "too short"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/v1/predict", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExplainHandler(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/v1/explain", explainRequest{
		Text:        "SHOCKING secret they don't want you to know, share before it is deleted!",
		NumFeatures: 5,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Prediction string `json:"prediction"`
		Weights    []struct {
			Token  string  `json:"token"`
			Weight float64 `json:"weight"`
		} `json:"weights"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Weights)
	assert.LessOrEqual(t, len(body.Weights), 5)
}

func TestAnalyzeTextHandler(t *testing.T) {
	r, app := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/v1/analyze/text", map[string]any{
		"text": "SHOCKING!!! You won't believe what they are hiding from you, wake up sheeple!!!",
		"url":  "https://worldnewsdailyreport.com/story",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Cached bool `json:"cached"`
		Result struct {
			Verdict   string  `json:"verdict"`
			FakeScore float64 `json:"fake_score"`
			IsFake    bool    `json:"is_fake"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Result.IsFake)
	assert.Greater(t, body.Result.FakeScore, 50.0)

	// first analysis was recorded
	list, err := data.ListAnalyses(context.Background(), app.DB, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, data.ContentText, list[0].Content)
	assert.Equal(t, body.Result.Verdict, list[0].Verdict)

	// repeat hits the cache and does not add a record
	w = doJSON(t, r, http.MethodPost, "/v1/analyze/text", map[string]any{
		"text": "SHOCKING!!! You won't believe what they are hiding from you, wake up sheeple!!!",
		"url":  "https://worldnewsdailyreport.com/story",
	})
	require.Equal(t, http.StatusOK, w.Code)
	list, err = data.ListAnalyses(context.Background(), app.DB, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAnalyzeImageHandler(t *testing.T) {
	r, app := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/v1/analyze/image", map[string]any{
		"image_id":      "sha256:abc123",
		"manipulation":  86.5,
		"ai_generation": 95.0,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Result struct {
			Verdict string `json:"verdict"`
			IsFake  bool   `json:"is_fake"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Result.IsFake)

	list, err := data.ListAnalyses(context.Background(), app.DB, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, data.ContentImage, list[0].Content)
}

func TestAnalyzeImageHandler_MissingID(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/v1/analyze/image", map[string]any{"manipulation": 80.0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHistoryItemHandler(t *testing.T) {
	r, app := newTestRouter(t)

	doJSON(t, r, http.MethodPost, "/v1/analyze/text", map[string]any{
		"text": "SHOCKING!!! You won't believe what they are hiding from you, wake up sheeple!!!",
	})

	list, err := data.ListAnalyses(context.Background(), app.DB, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)

	w := doJSON(t, r, http.MethodGet, "/v1/history/"+list[0].ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var rec data.AnalysisRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, list[0].ID, rec.ID)
	assert.Equal(t, list[0].Verdict, rec.Verdict)

	w = doJSON(t, r, http.MethodGet, "/v1/history/no-such-id", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVerdictsHandler(t *testing.T) {
	r, _ := newTestRouter(t)

	doJSON(t, r, http.MethodPost, "/v1/analyze/text", map[string]any{
		"text": "SHOCKING!!! You won't believe what they are hiding from you, wake up sheeple!!!",
	})

	w := doJSON(t, r, http.MethodGet, "/v1/verdicts", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var dist map[string]int64
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dist))
	assert.NotEmpty(t, dist)
}

func TestCacheHandlers(t *testing.T) {
	r, _ := newTestRouter(t)

	doJSON(t, r, http.MethodPost, "/v1/predict", predictRequest{
		Text: "The committee reported its findings to parliament on Tuesday morning.",
	})

	w := doJSON(t, r, http.MethodGet, "/v1/cache/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats map[string]struct {
		Size int `json:"size"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats["votes"].Size)

	w = doJSON(t, r, http.MethodPost, "/v1/cache/clear", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/v1/cache/stats", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 0, stats["votes"].Size)
}
