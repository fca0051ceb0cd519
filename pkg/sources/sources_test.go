package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newscope/nctl/pkg/fusion"
)

func TestCheckDomainTrusted(t *testing.T) {
	v := NewVerifier()

	c := v.CheckDomain("https://www.reuters.com/world/some-story")
	assert.Equal(t, "reuters.com", c.Domain)
	assert.Equal(t, StatusTrusted, c.Status)
	assert.Equal(t, 10, c.CredibilityScore)
	assert.True(t, c.Trusted)
	assert.Equal(t, "Major News Organization", c.Category)
	assert.Equal(t, "HIGHLY CREDIBLE", c.Recommendation)

	c = v.CheckDomain("https://time.com/article")
	assert.Equal(t, 6, c.CredibilityScore)
	assert.Equal(t, "Known Source", c.Category)
	assert.Equal(t, "CREDIBLE", c.Recommendation)
}

func TestCheckDomainKnownFake(t *testing.T) {
	v := NewVerifier()

	c := v.CheckDomain("http://theonion.com/story")
	assert.Equal(t, StatusKnownFake, c.Status)
	assert.Equal(t, 0, c.CredibilityScore)
	assert.False(t, c.Trusted)
	assert.Equal(t, "DO NOT TRUST", c.Recommendation)
}

func TestCheckDomainUnknown(t *testing.T) {
	v := NewVerifier()

	c := v.CheckDomain("https://random-blog.example/post")
	assert.Equal(t, StatusUnknown, c.Status)
	assert.Equal(t, 0, c.CredibilityScore)
	assert.False(t, c.Trusted)
	assert.Equal(t, "VERIFY CAREFULLY", c.Recommendation)
}

func TestCheckDomainBare(t *testing.T) {
	v := NewVerifier()

	c := v.CheckDomain("bbc.co.uk")
	assert.Equal(t, StatusTrusted, c.Status)
	assert.Equal(t, 10, c.CredibilityScore)

	c = v.CheckDomain("www.npr.org/sections/news")
	assert.Equal(t, "npr.org", c.Domain)
	assert.Equal(t, StatusTrusted, c.Status)
}

func TestCheckDomainEmpty(t *testing.T) {
	v := NewVerifier()
	c := v.CheckDomain("")
	assert.Equal(t, "unknown", c.Domain)
	assert.Equal(t, StatusUnknown, c.Status)
}

func TestOverrides(t *testing.T) {
	v := NewVerifier(
		WithTrustedOverrides(map[string]int{"local-paper.example": 7, "time.com": 9}),
		WithFakeOverrides([]string{"www.hoax-central.example"}),
	)

	c := v.CheckDomain("https://local-paper.example/news")
	assert.Equal(t, StatusTrusted, c.Status)
	assert.Equal(t, 7, c.CredibilityScore)

	c = v.CheckDomain("https://time.com/x")
	assert.Equal(t, 9, c.CredibilityScore, "override should replace built-in score")

	c = v.CheckDomain("https://hoax-central.example/x")
	assert.Equal(t, StatusKnownFake, c.Status)
}

func TestSignal(t *testing.T) {
	v := NewVerifier()

	sig := v.CheckDomain("https://reuters.com/x").Signal()
	require.True(t, sig.Present)
	assert.Equal(t, fusion.KindSourceCredibility, sig.Kind)
	assert.Equal(t, 10.0, sig.Value)
	assert.Equal(t, fusion.CategoryTrusted, sig.Category)

	sig = v.CheckDomain("https://huzlers.com/x").Signal()
	assert.Equal(t, fusion.CategoryKnownFake, sig.Category)
	assert.Equal(t, 0.0, sig.Value)
}

func TestTrustedDomains(t *testing.T) {
	v := NewVerifier()
	list := v.TrustedDomains()

	require.NotEmpty(t, list)
	assert.Equal(t, 10, list[0].CredibilityScore, "sorted by score descending")
	for i := 1; i < len(list); i++ {
		assert.GreaterOrEqual(t, list[i-1].CredibilityScore, list[i].CredibilityScore)
	}
}

func TestIsTrustedURL(t *testing.T) {
	v := NewVerifier()
	assert.True(t, v.IsTrustedURL("https://www.bbc.com/news/article"))
	assert.False(t, v.IsTrustedURL("https://unknown.example/x"))
}
