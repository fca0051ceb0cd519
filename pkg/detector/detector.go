// Package detector is the boundary layer of the veracity pipeline. It
// wires classifiers, the source verifier, and the sentiment analyzer
// into the voting combiner and fusion engine, memoizing results in
// bounded caches keyed by content fingerprints.
package detector

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/newscope/nctl/pkg/cache"
	"github.com/newscope/nctl/pkg/ensemble"
	"github.com/newscope/nctl/pkg/explain"
	"github.com/newscope/nctl/pkg/fusion"
	"github.com/newscope/nctl/pkg/sentiment"
	"github.com/newscope/nctl/pkg/sources"
	"github.com/newscope/nctl/pkg/text"
)

// ModeEnsemble runs every configured classifier; any other mode names
// a single classifier by ID.
const ModeEnsemble = "ensemble"

// Classifier produces a fake/real probability pair for a text.
type Classifier interface {
	ID() string
	Classify(ctx context.Context, content string) (ensemble.ClassifierOutput, error)
}

// Explainer is implemented by classifiers that can attribute their
// prediction to individual tokens.
type Explainer interface {
	Explain(ctx context.Context, content string) ([]explain.WordWeight, error)
}

// TextRequest carries one article through text analysis.
type TextRequest struct {
	Text string `json:"text"`
	URL  string `json:"url,omitempty"`
	Mode string `json:"mode,omitempty"`
	// OCRConfidence is set when the text came out of an image, in
	// [0, 1]. Nil means the signal is absent.
	OCRConfidence *float64 `json:"ocr_confidence,omitempty"`
}

// ImageRequest carries externally computed image forensics signals.
// Nil fields are absent signals.
type ImageRequest struct {
	// ImageID is the caller's stable identifier for the image
	// content, typically a digest of the bytes.
	ImageID string `json:"image_id"`
	// Manipulation is the pixel-forensics score in [0, 100].
	Manipulation *float64 `json:"manipulation,omitempty"`
	// AIGeneration is the synthetic-content probability in [0, 100].
	AIGeneration *float64 `json:"ai_generation,omitempty"`
	// ContextScore and ContextCategory describe the scene
	// classification of the image.
	ContextScore    *float64 `json:"context_score,omitempty"`
	ContextCategory string   `json:"context_category,omitempty"`
	// ContextMatches reports whether the image context agrees with
	// the surrounding article.
	ContextMatches *bool `json:"context_matches,omitempty"`
}

// Options configures a Detector. Zero-value fields get defaults where
// a default exists; Classifiers and Weights are required.
type Options struct {
	Classifiers []Classifier
	Weights     ensemble.WeightTable
	Verifier    *sources.Verifier
	Sentiment   *sentiment.Analyzer
	TextConfig  *fusion.Config
	ImageConfig *fusion.Config
	CacheSize   int
	CacheTTL    int // seconds; <=0 means the cache default
	Logger      *slog.Logger
}

// Detector runs the full analysis pipeline. Construct once with New
// and share; all methods are safe for concurrent use.
type Detector struct {
	classifiers map[string]Classifier
	order       []string
	weights     ensemble.WeightTable
	verifier    *sources.Verifier
	sentiment   *sentiment.Analyzer
	textCfg     *fusion.Config
	imageCfg    *fusion.Config
	votes       *cache.Cache[ensemble.EnsembleResult]
	results     *cache.Cache[fusion.Result]
	log         *slog.Logger
}

// New validates the options and builds a ready detector.
func New(opts Options) (*Detector, error) {
	if len(opts.Classifiers) == 0 {
		return nil, errors.New("at least one classifier is required")
	}
	if len(opts.Weights) == 0 {
		return nil, errors.New("weight table is required")
	}

	byID := make(map[string]Classifier, len(opts.Classifiers))
	order := make([]string, 0, len(opts.Classifiers))
	for _, c := range opts.Classifiers {
		id := c.ID()
		if id == "" {
			return nil, errors.New("classifier with empty ID")
		}
		if _, ok := byID[id]; ok {
			return nil, errors.Errorf("duplicate classifier ID: %s", id)
		}
		if opts.Weights.Weight(id) == 0 {
			return nil, errors.Errorf("classifier %s has no weight", id)
		}
		byID[id] = c
		order = append(order, id)
	}
	sort.Strings(order)

	textCfg := opts.TextConfig
	if textCfg == nil {
		textCfg = fusion.TextConfig()
	}
	imageCfg := opts.ImageConfig
	if imageCfg == nil {
		imageCfg = fusion.ImageConfig()
	}
	if opts.Verifier == nil {
		opts.Verifier = sources.NewVerifier()
	}
	if opts.Sentiment == nil {
		opts.Sentiment = sentiment.NewAnalyzer()
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	ttl := cache.DefaultTTL
	if opts.CacheTTL > 0 {
		ttl = time.Duration(opts.CacheTTL) * time.Second
	}

	return &Detector{
		classifiers: byID,
		order:       order,
		weights:     opts.Weights,
		verifier:    opts.Verifier,
		sentiment:   opts.Sentiment,
		textCfg:     textCfg,
		imageCfg:    imageCfg,
		votes:       cache.New[ensemble.EnsembleResult](opts.CacheSize, ttl),
		results:     cache.New[fusion.Result](opts.CacheSize, ttl),
		log:         log,
	}, nil
}

// selected resolves the classifier set for a mode.
func (d *Detector) selected(mode string) ([]string, error) {
	if mode == "" || mode == ModeEnsemble {
		return d.order, nil
	}
	if _, ok := d.classifiers[mode]; !ok {
		return nil, errors.Errorf("unknown model: %s", mode)
	}
	return []string{mode}, nil
}

// classify runs the selected classifiers concurrently. A classifier
// failure is logged and its output dropped; only a total failure
// surfaces as an error, from the voting step.
func (d *Detector) classify(ctx context.Context, content string, ids []string) []ensemble.ClassifierOutput {
	outputs := make([]*ensemble.ClassifierOutput, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		c := d.classifiers[id]
		g.Go(func() error {
			out, err := c.Classify(ctx, content)
			if err != nil {
				d.log.Warn("classifier failed, dropping its vote",
					"classifier", id, "error", err)
				return nil
			}
			outputs[i] = &out
			return nil
		})
	}
	g.Wait() //nolint:errcheck // workers never return errors

	present := make([]ensemble.ClassifierOutput, 0, len(ids))
	for _, out := range outputs {
		if out != nil {
			present = append(present, *out)
		}
	}
	return present
}

// FuseText runs the classifier ensemble over the text and combines the
// votes. The boolean reports whether the result came from cache.
func (d *Detector) FuseText(ctx context.Context, content, mode string) (*ensemble.EnsembleResult, bool, error) {
	if err := text.Validate(content); err != nil {
		return nil, false, err
	}
	ids, err := d.selected(mode)
	if err != nil {
		return nil, false, err
	}

	key := fingerprint("vote", text.Normalize(content), strings.Join(ids, ","))
	if v, ok := d.votes.Get(key); ok {
		return &v, true, nil
	}

	outputs := d.classify(ctx, content, ids)
	vote, err := ensemble.Vote(outputs, d.weights)
	if err != nil {
		return nil, false, err
	}

	d.votes.Put(key, *vote)
	return vote, false, nil
}

// ExplainText combines per-classifier token attributions under the
// ensemble weights. k <= 0 selects the default feature count.
func (d *Detector) ExplainText(ctx context.Context, content string, k int, mode string) (*explain.AggregatedExplanation, error) {
	vote, _, err := d.FuseText(ctx, content, mode)
	if err != nil {
		return nil, err
	}
	if k <= 0 {
		k = explain.DefaultNumFeatures
	}

	var mu sync.Mutex
	perClassifier := make(map[string][]explain.WordWeight)

	g, ctx := errgroup.WithContext(ctx)
	for _, id := range vote.ClassifiersUsed {
		ex, ok := d.classifiers[id].(Explainer)
		if !ok {
			continue
		}
		g.Go(func() error {
			ww, err := ex.Explain(ctx, content)
			if err != nil {
				d.log.Warn("explainer failed, dropping its attribution",
					"classifier", id, "error", err)
				return nil
			}
			mu.Lock()
			perClassifier[id] = ww
			mu.Unlock()
			return nil
		})
	}
	g.Wait() //nolint:errcheck // workers never return errors

	if len(perClassifier) == 0 {
		return nil, errors.New("no classifier produced token attributions")
	}
	return explain.Aggregate(vote, perClassifier, d.weights, k)
}

// AnalyzeText runs the full text pipeline: ensemble vote, source
// check, sentiment profile, optional OCR confidence, fused into a
// verdict. The boolean reports a cache hit.
func (d *Detector) AnalyzeText(ctx context.Context, req TextRequest) (*fusion.Result, bool, error) {
	if err := text.Validate(req.Text); err != nil {
		return nil, false, err
	}

	ocr := "-"
	if req.OCRConfidence != nil {
		ocr = fmt.Sprintf("%.4f", *req.OCRConfidence)
	}
	key := fingerprint("text", text.Normalize(req.Text), req.URL, req.Mode, ocr)
	if v, ok := d.results.Get(key); ok {
		return &v, true, nil
	}

	vote, _, err := d.FuseText(ctx, req.Text, req.Mode)
	if err != nil {
		return nil, false, err
	}

	signals := []fusion.Signal{
		{
			Kind:     fusion.KindEnsemble,
			Value:    vote.Confidence,
			Category: vote.Label,
			Present:  true,
		},
		d.sentiment.Analyze(req.Text).Signal(),
	}
	if req.URL != "" {
		signals = append(signals, d.verifier.CheckDomain(req.URL).Signal())
	}
	if req.OCRConfidence != nil {
		signals = append(signals, fusion.Signal{
			Kind:    fusion.KindOCRConfidence,
			Value:   *req.OCRConfidence,
			Present: true,
		})
	}

	result, err := fusion.Fuse(signals, d.textCfg)
	if err != nil {
		return nil, false, err
	}

	d.results.Put(key, *result)
	return result, false, nil
}

// AnalyzeImage fuses externally computed image forensics signals into
// a verdict. The boolean reports a cache hit.
func (d *Detector) AnalyzeImage(ctx context.Context, req ImageRequest) (*fusion.Result, bool, error) {
	if req.ImageID == "" {
		return nil, false, errors.New("image ID is required")
	}

	key := fingerprint("image", req.ImageID)
	if v, ok := d.results.Get(key); ok {
		return &v, true, nil
	}

	var signals []fusion.Signal
	if req.Manipulation != nil {
		signals = append(signals, fusion.Signal{
			Kind:    fusion.KindImageManipulation,
			Value:   *req.Manipulation,
			Present: true,
		})
	}
	if req.AIGeneration != nil {
		signals = append(signals, fusion.Signal{
			Kind:    fusion.KindAIGeneration,
			Value:   *req.AIGeneration,
			Present: true,
		})
	}
	if req.ContextScore != nil {
		signals = append(signals, fusion.Signal{
			Kind:     fusion.KindImageContext,
			Value:    *req.ContextScore,
			Category: req.ContextCategory,
			Present:  true,
		})
	}
	if req.ContextMatches != nil {
		category := fusion.CategoryContextMatch
		if !*req.ContextMatches {
			category = fusion.CategoryContextMismatch
		}
		signals = append(signals, fusion.Signal{
			Kind:     fusion.KindContextMatch,
			Category: category,
			Present:  true,
		})
	}

	result, err := fusion.Fuse(signals, d.imageCfg)
	if err != nil {
		return nil, false, err
	}

	d.results.Put(key, *result)
	return result, false, nil
}

// CacheStats reports the state of both caches.
func (d *Detector) CacheStats() map[string]cache.Stats {
	return map[string]cache.Stats{
		"votes":   d.votes.Stats(),
		"results": d.results.Stats(),
	}
}

// ClearCaches drops all cached results and resets counters.
func (d *Detector) ClearCaches() {
	d.votes.Clear()
	d.results.Clear()
}

// fingerprint derives an opaque cache key from the given parts.
func fingerprint(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
