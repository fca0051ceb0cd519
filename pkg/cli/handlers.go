package cli

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/newscope/nctl/pkg/data"
	"github.com/newscope/nctl/pkg/detector"
)

type predictRequest struct {
	Text  string `json:"text"`
	Model string `json:"model,omitempty"`
}

type explainRequest struct {
	Text        string `json:"text"`
	Model       string `json:"model,omitempty"`
	NumFeatures int    `json:"num_features,omitempty"`
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": version,
	})
}

func (a *appConfig) predictHandler(c *gin.Context) {
	var req predictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, cached, err := a.Detector.FuseText(c.Request.Context(), req.Text, req.Model)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": res, "cached": cached})
}

func (a *appConfig) explainHandler(c *gin.Context) {
	var req explainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := a.Detector.ExplainText(c.Request.Context(), req.Text, req.NumFeatures, req.Model)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (a *appConfig) analyzeTextHandler(c *gin.Context) {
	var req detector.TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, cached, err := a.Detector.AnalyzeText(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !cached {
		rec := &data.AnalysisRecord{
			Content:     data.ContentText,
			Fingerprint: contentFingerprint(data.ContentText, req.Text),
			URL:         req.URL,
			Verdict:     res.Verdict,
			Label:       res.VerdictLabel,
			FakeScore:   res.FakeScore,
			IsFake:      res.IsFake,
			Reasons:     res.Reasons,
		}
		if _, err := data.SaveAnalysis(c.Request.Context(), a.DB, rec); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"result": res, "cached": cached})
}

func (a *appConfig) analyzeImageHandler(c *gin.Context) {
	var req detector.ImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, cached, err := a.Detector.AnalyzeImage(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !cached {
		rec := &data.AnalysisRecord{
			Content:     data.ContentImage,
			Fingerprint: contentFingerprint(data.ContentImage, req.ImageID),
			Verdict:     res.Verdict,
			Label:       res.VerdictLabel,
			FakeScore:   res.FakeScore,
			IsFake:      res.IsFake,
			Reasons:     res.Reasons,
		}
		if _, err := data.SaveAnalysis(c.Request.Context(), a.DB, rec); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"result": res, "cached": cached})
}

func (a *appConfig) historyHandler(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	list, err := data.ListAnalyses(c.Request.Context(), a.DB, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

func (a *appConfig) historyItemHandler(c *gin.Context) {
	rec, err := data.GetAnalysis(c.Request.Context(), a.DB, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "analysis record not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (a *appConfig) verdictsHandler(c *gin.Context) {
	dist, err := data.VerdictDistribution(c.Request.Context(), a.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dist)
}

func (a *appConfig) cacheStatsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, a.Detector.CacheStats())
}

func (a *appConfig) cacheClearHandler(c *gin.Context) {
	a.Detector.ClearCaches()
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}
