package sources

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pkg/errors"

	"github.com/newscope/nctl/pkg/net"
)

const (
	newsAPIEndpoint = "https://newsapi.org/v2/everything"
	maxQueryLength  = 100

	// cross-check credibility levels.
	CredibilityHigh   = "HIGH"
	CredibilityMedium = "MEDIUM"
	CredibilityLow    = "LOW"
)

// CrossCheckSource is one corroborating article found for a claim.
type CrossCheckSource struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	Title     string `json:"title"`
	Published string `json:"published"`
}

// CrossCheck is the outcome of searching news coverage for a title.
type CrossCheck struct {
	Checked        bool               `json:"checked"`
	Found          bool               `json:"found"`
	TotalResults   int                `json:"total_results"`
	Sources        []CrossCheckSource `json:"sources"`
	TrustedSources []string           `json:"trusted_sources_found"`
	Credibility    string             `json:"credibility"`
	Recommendation string             `json:"recommendation"`
}

type newsAPIResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	TotalResults int    `json:"totalResults"`
	Articles     []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		URL         string `json:"url"`
		Title       string `json:"title"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// CrossChecker corroborates article titles against indexed news
// coverage via the NewsAPI search endpoint.
type CrossChecker struct {
	apiKey   string
	endpoint string
	client   *http.Client
	verifier *Verifier
}

// NewCrossChecker builds a checker. The API key is required; get one
// at newsapi.org.
func NewCrossChecker(apiKey string, verifier *Verifier) *CrossChecker {
	return &CrossChecker{
		apiKey:   apiKey,
		endpoint: newsAPIEndpoint,
		verifier: verifier,
	}
}

// Verify searches coverage for the given title and reports whether
// trusted publishers carry the story.
func (c *CrossChecker) Verify(ctx context.Context, title string, maxResults int) (*CrossCheck, error) {
	if c.apiKey == "" {
		return nil, errors.New("news API key not provided")
	}
	if maxResults <= 0 {
		maxResults = 10
	}
	if len(title) > maxQueryLength {
		title = title[:maxQueryLength]
	}

	params := url.Values{}
	params.Set("q", title)
	params.Set("apiKey", c.apiKey)
	params.Set("language", "en")
	params.Set("sortBy", "relevancy")
	params.Set("pageSize", strconv.Itoa(maxResults))

	var resp newsAPIResponse
	if err := net.GetJSON(ctx, c.client, c.endpoint, params, &resp); err != nil {
		return nil, errors.Wrap(err, "error querying news API")
	}
	if resp.Status != "ok" {
		return nil, errors.Errorf("news API error: %s", resp.Message)
	}

	check := &CrossCheck{
		Checked:      true,
		Found:        len(resp.Articles) > 0,
		TotalResults: resp.TotalResults,
	}
	for _, a := range resp.Articles {
		if a.Source.Name == "" {
			continue
		}
		check.Sources = append(check.Sources, CrossCheckSource{
			Name:      a.Source.Name,
			URL:       a.URL,
			Title:     a.Title,
			Published: a.PublishedAt,
		})
		if c.verifier != nil && c.verifier.IsTrustedURL(a.URL) {
			check.TrustedSources = append(check.TrustedSources, a.Source.Name)
		}
	}

	switch {
	case len(check.TrustedSources) > 0:
		check.Credibility = CredibilityHigh
		check.Recommendation = "VERIFIED"
	case len(check.Sources) > 0:
		check.Credibility = CredibilityMedium
		check.Recommendation = "UNVERIFIED"
	default:
		check.Credibility = CredibilityLow
		check.Recommendation = "UNVERIFIED"
	}
	return check, nil
}
