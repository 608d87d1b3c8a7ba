package themes

import (
	"fmt"
	"strings"
)

// Sentiment is the upstream classifier's label for one comment or the
// dominant label for a theme.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// ParseSentiment converts an upstream sentiment label to its canonical form.
func ParseSentiment(s string) (Sentiment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive":
		return SentimentPositive, nil
	case "neutral", "":
		return SentimentNeutral, nil
	case "negative":
		return SentimentNegative, nil
	}
	return "", fmt.Errorf("unknown sentiment %q", s)
}

// CommentRow is one survey comment already classified upstream: sentiment
// and theme assignment are inputs here, never computed.
type CommentRow struct {
	ResponseID   string          `json:"responseId"`
	SegmentFlags map[string]bool `json:"segmentFlags"`
	Sentiment    Sentiment       `json:"sentiment"`
	ThemeLabel   string          `json:"themeLabel"`
	Keywords     []string        `json:"keywords"`
	Text         string          `json:"text"`
}

// ThemeRecord is one qualitative cluster for a segment. Read-only after
// construction by the Index.
type ThemeRecord struct {
	Segment    string   `json:"segment"`
	ThemeLabel string   `json:"themeLabel"`
	// Keywords are lower-cased, deduplicated and sorted so that equal
	// inputs always produce byte-identical records.
	Keywords             []string  `json:"keywords"`
	Prevalence           float64   `json:"prevalence"`
	RepresentativeQuotes []string  `json:"representativeQuotes"`
	Sentiment            Sentiment `json:"sentiment"`
	CommentCount         int       `json:"commentCount"`
}

// HasKeyword reports whether the theme carries the given lower-cased keyword.
func (t ThemeRecord) HasKeyword(kw string) bool {
	for _, k := range t.Keywords {
		if k == kw {
			return true
		}
	}
	return false
}
