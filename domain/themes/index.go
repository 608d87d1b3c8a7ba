package themes

import (
	"sort"
	"strings"
)

// maxRepresentativeQuotes caps the quotes carried per theme.
const maxRepresentativeQuotes = 5

// Index aggregates classified comments into ThemeRecords keyed by
// (segment, themeLabel) and serves prevalence-ordered lookups. The index
// is the sole owner of its records; callers must treat lookup results as
// read-only.
type Index struct {
	bySegment map[string][]ThemeRecord
}

// themeAccumulator gathers one (segment, themeLabel) cell during a build.
type themeAccumulator struct {
	label          string
	keywords       map[string]struct{}
	sentimentCount map[Sentiment]int
	comments       []indexedComment
}

type indexedComment struct {
	order     int // original input position, for deterministic ties
	sentiment Sentiment
	text      string
	tokens    int
}

// BuildIndex aggregates per-comment records into an Index.
//
// Prevalence for a theme is the count of the segment's comments carrying
// the theme divided by the segment's total comment count. Representative
// quotes are the shortest comments (by token count) among those aligned
// with the theme's dominant sentiment, capped at five, ties broken by
// input order.
func BuildIndex(comments []CommentRow) *Index {
	segmentTotals := make(map[string]int)
	cells := make(map[string]map[string]*themeAccumulator) // segment -> label -> acc

	for i, c := range comments {
		label := strings.TrimSpace(c.ThemeLabel)
		for segment, flagged := range c.SegmentFlags {
			if !flagged {
				continue
			}
			segmentTotals[segment]++
			if label == "" {
				continue
			}
			byLabel := cells[segment]
			if byLabel == nil {
				byLabel = make(map[string]*themeAccumulator)
				cells[segment] = byLabel
			}
			acc := byLabel[label]
			if acc == nil {
				acc = &themeAccumulator{
					label:          label,
					keywords:       make(map[string]struct{}),
					sentimentCount: make(map[Sentiment]int),
				}
				byLabel[label] = acc
			}
			for _, kw := range c.Keywords {
				kw = strings.ToLower(strings.TrimSpace(kw))
				if kw != "" {
					acc.keywords[kw] = struct{}{}
				}
			}
			acc.sentimentCount[c.Sentiment]++
			acc.comments = append(acc.comments, indexedComment{
				order:     i,
				sentiment: c.Sentiment,
				text:      c.Text,
				tokens:    len(strings.Fields(c.Text)),
			})
		}
	}

	ix := &Index{bySegment: make(map[string][]ThemeRecord, len(cells))}
	for segment, byLabel := range cells {
		total := segmentTotals[segment]
		records := make([]ThemeRecord, 0, len(byLabel))
		for _, acc := range byLabel {
			records = append(records, acc.finalize(segment, total))
		}
		sort.Slice(records, func(a, b int) bool {
			if records[a].Prevalence != records[b].Prevalence {
				return records[a].Prevalence > records[b].Prevalence
			}
			return records[a].ThemeLabel < records[b].ThemeLabel
		})
		ix.bySegment[segment] = records
	}
	return ix
}

// ThemesFor returns the segment's themes ordered by prevalence descending,
// ties broken alphabetically by label. Returns nil for unknown segments.
func (ix *Index) ThemesFor(segment string) []ThemeRecord {
	return ix.bySegment[segment]
}

// Segments returns all indexed segment names in sorted order.
func (ix *Index) Segments() []string {
	out := make([]string, 0, len(ix.bySegment))
	for s := range ix.bySegment {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func (acc *themeAccumulator) finalize(segment string, segmentTotal int) ThemeRecord {
	keywords := make([]string, 0, len(acc.keywords))
	for kw := range acc.keywords {
		keywords = append(keywords, kw)
	}
	sort.Strings(keywords)

	dominant := acc.dominantSentiment()

	aligned := make([]indexedComment, 0, len(acc.comments))
	for _, c := range acc.comments {
		if c.sentiment == dominant && strings.TrimSpace(c.text) != "" {
			aligned = append(aligned, c)
		}
	}
	sort.Slice(aligned, func(a, b int) bool {
		if aligned[a].tokens != aligned[b].tokens {
			return aligned[a].tokens < aligned[b].tokens
		}
		return aligned[a].order < aligned[b].order
	})
	if len(aligned) > maxRepresentativeQuotes {
		aligned = aligned[:maxRepresentativeQuotes]
	}
	quotes := make([]string, len(aligned))
	for i, c := range aligned {
		quotes[i] = c.text
	}

	prevalence := 0.0
	if segmentTotal > 0 {
		prevalence = float64(len(acc.comments)) / float64(segmentTotal)
	}

	return ThemeRecord{
		Segment:              segment,
		ThemeLabel:           acc.label,
		Keywords:             keywords,
		Prevalence:           prevalence,
		RepresentativeQuotes: quotes,
		Sentiment:            dominant,
		CommentCount:         len(acc.comments),
	}
}

// dominantSentiment picks the majority sentiment among the theme's
// comments. Ties resolve positive, then negative, then neutral.
func (acc *themeAccumulator) dominantSentiment() Sentiment {
	order := []Sentiment{SentimentPositive, SentimentNegative, SentimentNeutral}
	best := SentimentNeutral
	bestCount := -1
	for _, s := range order {
		if acc.sentimentCount[s] > bestCount {
			best = s
			bestCount = acc.sentimentCount[s]
		}
	}
	return best
}
