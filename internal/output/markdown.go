package output

import (
	"io"
	"strings"

	"github.com/dshills/reviewlens/internal/report"
)

// MarkdownWriter outputs a summary table followed by collapsible evidence
// sections, one per reported attribute.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, run *report.Run) error {
	ew := &errWriter{w: w}

	ew.printf("## Review Summary: %s\n\n", mdEscape(productLabel(run)))
	ew.printf("*%s* | %s/%s | mixed: %s | %d of %d reviews classified\n\n",
		mdEscape(run.Category), run.Provider, run.Model, run.MixedPolicy,
		run.Stats.Classified, run.Stats.Attempted)

	if len(run.Tables.Summary) == 0 {
		ew.println("No attributes with positive or negative mentions.")
		return ew.err
	}

	ew.println("| Attribute | Mentions | Positive | Negative |")
	ew.println("|-----------|----------|----------|----------|")
	for _, r := range run.Tables.Summary {
		ew.printf("| %s | %d | %d | %d |\n", mdEscape(r.Attribute), r.MentionCount, r.PositiveCount, r.NegativeCount)
	}
	ew.println("")

	quotes := evidenceByAttribute(run.Tables.Details)
	for _, r := range run.Tables.Summary {
		rows := quotes[r.Attribute]
		ew.printf("<details>\n<summary>%s (%d)</summary>\n\n", mdEscape(r.Attribute), len(rows))
		for _, d := range rows {
			ew.printf("- %s **%s** review `%s`", mdSentimentIcon(string(d.Sentiment)), d.Sentiment, d.ReviewID)
			if d.ReviewRating != nil {
				ew.printf(" (%.1f stars)", *d.ReviewRating)
			}
			ew.printf("\n  > %s\n", strings.ReplaceAll(d.Evidence, "\n", " "))
		}
		ew.println("\n</details>\n")
	}

	ew.printf("*Run `%s` completed in %dms*\n", run.ID, run.DurationMs)
	return ew.err
}

func mdSentimentIcon(s string) string {
	switch s {
	case "positive":
		return ":green_circle:"
	case "negative":
		return ":red_circle:"
	case "mixed":
		return ":yellow_circle:"
	default:
		return ":white_circle:"
	}
}

var mdReplacer = strings.NewReplacer("|", `\|`, "\n", " ")

func mdEscape(s string) string {
	return mdReplacer.Replace(s)
}
