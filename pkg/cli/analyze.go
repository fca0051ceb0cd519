package cli

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"strings"

	urfave "github.com/urfave/cli/v2"

	"github.com/newscope/nctl/pkg/data"
	"github.com/newscope/nctl/pkg/detector"
	"github.com/newscope/nctl/pkg/fusion"
	"github.com/newscope/nctl/pkg/text"
)

var (
	textFlag = &urfave.StringFlag{
		Name:    "text",
		Aliases: []string{"t"},
		Usage:   "Content to analyze (or use --file)",
	}

	fileFlag = &urfave.StringFlag{
		Name:    "file",
		Aliases: []string{"f"},
		Usage:   "Path to a file with the content to analyze",
	}

	urlFlag = &urfave.StringFlag{
		Name:  "url",
		Usage: "Source URL of the content (optional)",
	}

	modelFlag = &urfave.StringFlag{
		Name:  "model",
		Usage: "Classifier to use (optional, default: full ensemble)",
	}

	ocrFlag = &urfave.Float64Flag{
		Name:  "ocr-confidence",
		Usage: "OCR confidence in [0,1] when the text was extracted from an image",
		Value: -1,
	}

	topFeaturesFlag = &urfave.IntFlag{
		Name:    "top",
		Aliases: []string{"k"},
		Usage:   "Number of top word attributions to return",
		Value:   10,
	}

	noSaveFlag = &urfave.BoolFlag{
		Name:  "no-save",
		Usage: "Skip recording the result in analysis history",
	}

	imageIDFlag = &urfave.StringFlag{
		Name:  "id",
		Usage: "Stable identifier for the image, typically a digest of the bytes",
	}

	manipulationFlag = &urfave.Float64Flag{
		Name:  "manipulation",
		Usage: "Pixel-forensics manipulation score in [0,100]",
		Value: -1,
	}

	aiGenerationFlag = &urfave.Float64Flag{
		Name:  "ai-generation",
		Usage: "Synthetic-content probability in [0,100]",
		Value: -1,
	}

	contextScoreFlag = &urfave.Float64Flag{
		Name:  "context-score",
		Usage: "Scene context confidence in [0,100]",
		Value: -1,
	}

	contextCategoryFlag = &urfave.StringFlag{
		Name:  "context-category",
		Usage: "Scene context category reported by the image analyzer",
	}

	contextMatchFlag = &urfave.StringFlag{
		Name:  "context-match",
		Usage: "Whether the image matches the claimed story context [true, false]",
	}
)

var analyzeCmd = &urfave.Command{
	Name:  "analyze",
	Usage: "Analyze content and fuse the available signals into a verdict",
	Subcommands: []*urfave.Command{
		{
			Name:   "text",
			Usage:  "Analyze a text article",
			Flags:  []urfave.Flag{textFlag, fileFlag, urlFlag, modelFlag, ocrFlag, noSaveFlag},
			Action: runAnalyzeTextCmd,
		},
		{
			Name:  "image",
			Usage: "Fuse precomputed image-forensics signals into a verdict",
			Flags: []urfave.Flag{
				imageIDFlag, manipulationFlag, aiGenerationFlag,
				contextScoreFlag, contextCategoryFlag, contextMatchFlag, noSaveFlag,
			},
			Action: runAnalyzeImageCmd,
		},
		{
			Name:   "explain",
			Usage:  "Explain which words drove the classification",
			Flags:  []urfave.Flag{textFlag, fileFlag, modelFlag, topFeaturesFlag},
			Action: runExplainCmd,
		},
	},
}

func contentArg(c *urfave.Context) (string, error) {
	if v := c.String(textFlag.Name); v != "" {
		return v, nil
	}
	if p := c.String(fileFlag.Name); p != "" {
		b, err := os.ReadFile(p)
		if err != nil {
			return "", fmt.Errorf("reading content file: %w", err)
		}
		return string(b), nil
	}
	if c.Args().Present() {
		return strings.Join(c.Args().Slice(), " "), nil
	}
	return "", fmt.Errorf("content is required, use --%s or --%s", textFlag.Name, fileFlag.Name)
}

func runAnalyzeTextCmd(c *urfave.Context) error {
	app := getConfig(c)

	content, err := contentArg(c)
	if err != nil {
		return err
	}

	req := detector.TextRequest{
		Text: content,
		URL:  c.String(urlFlag.Name),
		Mode: c.String(modelFlag.Name),
	}
	if v := c.Float64(ocrFlag.Name); v >= 0 {
		req.OCRConfidence = &v
	}

	res, cached, err := app.Detector.AnalyzeText(c.Context, req)
	if err != nil {
		return err
	}
	slog.Debug("text analysis completed", "cached", cached, "verdict", res.Verdict)

	if !cached && !c.Bool(noSaveFlag.Name) {
		saveResult(c, data.ContentText, content, req.URL, res)
	}
	return encode(res)
}

func runAnalyzeImageCmd(c *urfave.Context) error {
	app := getConfig(c)

	req := detector.ImageRequest{
		ImageID:         c.String(imageIDFlag.Name),
		ContextCategory: c.String(contextCategoryFlag.Name),
	}
	if v := c.Float64(manipulationFlag.Name); v >= 0 {
		req.Manipulation = &v
	}
	if v := c.Float64(aiGenerationFlag.Name); v >= 0 {
		req.AIGeneration = &v
	}
	if v := c.Float64(contextScoreFlag.Name); v >= 0 {
		req.ContextScore = &v
	}
	switch strings.ToLower(c.String(contextMatchFlag.Name)) {
	case "true", "yes":
		t := true
		req.ContextMatches = &t
	case "false", "no":
		f := false
		req.ContextMatches = &f
	}

	res, cached, err := app.Detector.AnalyzeImage(c.Context, req)
	if err != nil {
		return err
	}
	slog.Debug("image analysis completed", "cached", cached, "verdict", res.Verdict)

	if !cached && !c.Bool(noSaveFlag.Name) {
		saveResult(c, data.ContentImage, req.ImageID, "", res)
	}
	return encode(res)
}

func runExplainCmd(c *urfave.Context) error {
	app := getConfig(c)

	content, err := contentArg(c)
	if err != nil {
		return err
	}

	exp, err := app.Detector.ExplainText(c.Context, content, c.Int(topFeaturesFlag.Name), c.String(modelFlag.Name))
	if err != nil {
		return err
	}
	return encode(exp)
}

// saveResult records the analysis in history, logging instead of
// failing when the write does not go through.
func saveResult(c *urfave.Context, contentType, content, url string, res *fusion.Result) {
	app := getConfig(c)
	rec := &data.AnalysisRecord{
		Content:     contentType,
		Fingerprint: contentFingerprint(contentType, content),
		URL:         url,
		Verdict:     res.Verdict,
		Label:       res.VerdictLabel,
		FakeScore:   res.FakeScore,
		IsFake:      res.IsFake,
		Reasons:     res.Reasons,
	}
	if _, err := data.SaveAnalysis(c.Context, app.DB, rec); err != nil {
		slog.Warn("failed to save analysis record", "error", err)
	}
}

func contentFingerprint(contentType, content string) string {
	sum := sha256.Sum256([]byte(contentType + ":" + text.Normalize(content)))
	return hex.EncodeToString(sum[:])
}
