package report

import (
	"fmt"
	"strings"

	"adlift/domain/recommend"
	"adlift/models"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// MarkdownExporter renders a run as a markdown report.
type MarkdownExporter struct{}

// NewMarkdownExporter creates a markdown report exporter.
func NewMarkdownExporter() *MarkdownExporter {
	return &MarkdownExporter{}
}

func (e *MarkdownExporter) ContentType() string   { return "text/markdown; charset=utf-8" }
func (e *MarkdownExporter) FileExtension() string { return "md" }

func (e *MarkdownExporter) Export(exp *models.Experiment, recs []recommend.Recommendation) ([]byte, error) {
	return []byte(renderMarkdown(exp, recs)), nil
}

// HTMLExporter renders the same report through the markdown engine so the
// two formats can never drift apart.
type HTMLExporter struct{}

// NewHTMLExporter creates an HTML report exporter.
func NewHTMLExporter() *HTMLExporter {
	return &HTMLExporter{}
}

func (e *HTMLExporter) ContentType() string   { return "text/html; charset=utf-8" }
func (e *HTMLExporter) FileExtension() string { return "html" }

func (e *HTMLExporter) Export(exp *models.Experiment, recs []recommend.Recommendation) ([]byte, error) {
	md := renderMarkdown(exp, recs)

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(md))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.Render(doc, renderer), nil
}

func renderMarkdown(exp *models.Experiment, recs []recommend.Recommendation) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Creative Recommendations: %s\n\n", exp.Title)
	if exp.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", exp.Description)
	}

	if exp.Summary != nil {
		s := exp.Summary
		b.WriteString("## Summary\n\n")
		fmt.Fprintf(&b, "- Overall favorability delta: %+.3f\n", s.OverallFavorability)
		fmt.Fprintf(&b, "- Overall purchase intent delta: %+.3f\n", s.OverallIntent)
		fmt.Fprintf(&b, "- Overall brand associations delta: %+.3f\n", s.OverallAssociations)
		if s.TopSegment != "" {
			fmt.Fprintf(&b, "- Strongest segment: %s\n", s.TopSegment)
		}
		if s.WeakSegment != "" {
			fmt.Fprintf(&b, "- Weakest segment: %s\n", s.WeakSegment)
		}
		b.WriteString("\n")
	}

	if len(recs) == 0 {
		b.WriteString("No recommendations cleared the impact thresholds for this run.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "## Recommendations (%d)\n\n", len(recs))
	for i, rec := range recs {
		element := "General creative approach"
		if rec.CreativeElement != nil {
			element = rec.CreativeElement.Description
		}
		fmt.Fprintf(&b, "### %d. [%s] %s: %s\n\n",
			i+1, strings.ToUpper(string(rec.Priority)), titleCase(string(rec.Type)), element)

		fmt.Fprintf(&b, "- Segment: %s", rec.Segment)
		if rec.Breakdown != "" {
			fmt.Fprintf(&b, " (%s)", rec.Breakdown)
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "- Brand goal: %s\n", rec.BrandGoal)
		fmt.Fprintf(&b, "- Impact score: %.4f\n", rec.ImpactScore)

		q := rec.QuantitativeSupport
		sig := "directional"
		if q.StatisticalSignificance {
			sig = "significant"
		}
		fmt.Fprintf(&b, "- Evidence: delta %+.3f, 95%% CI %s, p=%.4f (%s)\n",
			q.Delta, q.CI95.String(), q.PValue, sig)

		if len(rec.QualitativeSupport) > 0 {
			b.WriteString("\nSupporting comments:\n\n")
			for _, quote := range rec.QualitativeSupport {
				fmt.Fprintf(&b, "> %s\n>\n> *%s, %.0f%% prevalence, %s*\n\n",
					quote.Comment, quote.Theme, quote.ThemePrevalence*100, quote.Sentiment)
			}
		} else {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
