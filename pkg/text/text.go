// Package text provides normalization, validation, and lightweight
// statistical feature extraction for article content ahead of analysis.
package text

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

const (
	// MinLength is the minimum number of characters in analyzable text.
	MinLength = 10

	// MaxLength is the maximum number of characters in analyzable text.
	MaxLength = 50000

	// MinWords is the minimum number of whitespace-separated words.
	MinWords = 3
)

var (
	htmlTagExp    = regexp.MustCompile(`<[^>]+>`)
	htmlEntityExp = regexp.MustCompile(`&[a-z]+;`)
	urlExp        = regexp.MustCompile(`(?:https?://|www\.)\S+`)
	emailExp      = regexp.MustCompile(`\S+@\S+`)
	spaceExp      = regexp.MustCompile(`\s+`)
)

// Normalize cleans raw article text into canonical form: HTML markup,
// URLs, and email addresses removed, lowercased, and runs of whitespace
// collapsed to single spaces. Two inputs that differ only in markup or
// casing normalize to the same string, which makes the output suitable
// as a cache fingerprint base.
func Normalize(s string) string {
	s = htmlTagExp.ReplaceAllString(s, "")
	s = htmlEntityExp.ReplaceAllString(s, " ")
	s = urlExp.ReplaceAllString(s, "")
	s = emailExp.ReplaceAllString(s, "")
	s = strings.ToLower(s)
	s = spaceExp.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Validate checks that text is long enough to analyze and short enough
// to process. The limits are deliberately generous: the goal is to
// reject empty or degenerate input early, not to police article style.
func Validate(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("text is empty")
	}
	if len(strings.TrimSpace(s)) < MinLength {
		return errors.Errorf("text too short (minimum %d characters)", MinLength)
	}
	if len(s) > MaxLength {
		return errors.Errorf("text too long (maximum %d characters)", MaxLength)
	}
	if len(strings.Fields(s)) < MinWords {
		return errors.Errorf("text must contain at least %d words", MinWords)
	}
	return nil
}

// Features holds surface statistics of a text, attached to every rule
// analysis alongside the pattern matches.
type Features struct {
	Length           int     `json:"length"`
	WordCount        int     `json:"word_count"`
	AvgWordLength    float64 `json:"avg_word_length"`
	CapsRatio        float64 `json:"caps_ratio"`
	PunctuationRatio float64 `json:"punctuation_ratio"`
	ExclamationCount int     `json:"exclamation_count"`
	QuestionCount    int     `json:"question_count"`
	URLCount         int     `json:"url_count"`
}

// Extract computes surface statistics over the raw (un-normalized)
// text, since casing and punctuation are themselves signals.
func Extract(s string) Features {
	words := strings.Fields(s)

	var wordLen int
	for _, w := range words {
		wordLen += len(w)
	}

	var caps, punct int
	for _, r := range s {
		if unicode.IsUpper(r) {
			caps++
		}
		if strings.ContainsRune(".,!?;:", r) {
			punct++
		}
	}

	runes := len([]rune(s))

	f := Features{
		Length:           runes,
		WordCount:        len(words),
		ExclamationCount: strings.Count(s, "!"),
		QuestionCount:    strings.Count(s, "?"),
		URLCount:         len(urlExp.FindAllString(s, -1)),
	}
	if len(words) > 0 {
		f.AvgWordLength = float64(wordLen) / float64(len(words))
	}
	if runes > 0 {
		f.CapsRatio = float64(caps) / float64(runes)
		f.PunctuationRatio = float64(punct) / float64(runes)
	}
	return f
}
