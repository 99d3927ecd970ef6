package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dshills/reviewlens/internal/report"
)

const (
	textTopAttributes = 5
	textQuotesPerAttr = 2
)

// TextWriter outputs a human-readable terminal summary.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, run *report.Run) error {
	ew := &errWriter{w: w}

	ew.printf("Review summary: %s\n", productLabel(run))
	ew.printf("Category: %s | Model: %s/%s | Mixed: %s\n", run.Category, run.Provider, run.Model, run.MixedPolicy)
	ew.println(strings.Repeat("─", 60))
	ew.printf("Reviews: %d attempted, %d classified, %d skipped\n",
		run.Stats.Attempted, run.Stats.Classified, run.Stats.Skipped)
	ew.printf("Attributes: %d reported, %d in vocabulary", len(run.Tables.Summary), len(run.Vocabulary))
	if run.Stats.NearDuplicates > 0 {
		ew.printf(" (%d near-duplicate names)", run.Stats.NearDuplicates)
	}
	ew.println("")
	ew.println(strings.Repeat("─", 60))

	if len(run.Tables.Summary) == 0 {
		ew.println("\nNo attributes with positive or negative mentions.")
		return ew.err
	}

	width := len("ATTRIBUTE")
	for _, r := range run.Tables.Summary {
		width = max(width, len(r.Attribute))
	}
	width = min(width, 40)

	ew.printf("\n%-*s  %8s  %8s  %8s\n", width, "ATTRIBUTE", "MENTIONS", "POSITIVE", "NEGATIVE")
	for _, r := range run.Tables.Summary {
		ew.printf("%-*s  %8d  %8d  %8d\n", width, truncate(r.Attribute, width),
			r.MentionCount, r.PositiveCount, r.NegativeCount)
	}

	quotes := evidenceByAttribute(run.Tables.Details)
	top := run.Tables.Summary
	if len(top) > textTopAttributes {
		top = top[:textTopAttributes]
	}
	ew.printf("\n%s\n", "Evidence")
	ew.println(strings.Repeat("─", 40))
	for _, r := range top {
		ew.printf("\n  %s\n", r.Attribute)
		rows := quotes[r.Attribute]
		if len(rows) > textQuotesPerAttr {
			rows = rows[:textQuotesPerAttr]
		}
		for _, d := range rows {
			ew.printf("  %s review %s (%.0f%%)\n", sentimentIcon(string(d.Sentiment)), d.ReviewID, d.Confidence*100)
			for _, line := range wrapText(d.Evidence, 70) {
				ew.printf("    %s\n", line)
			}
		}
	}

	ew.printf("\n%s\n", strings.Repeat("─", 60))
	ew.printf("Run %s completed in %dms\n", run.ID, run.DurationMs)

	return ew.err
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}

func productLabel(run *report.Run) string {
	title := run.Product.Title
	if title == "" {
		title = run.Product.ParentASIN
	}
	if run.Product.ParentASIN != "" && title != run.Product.ParentASIN {
		return fmt.Sprintf("%s (%s)", title, run.Product.ParentASIN)
	}
	return title
}

func evidenceByAttribute(details []report.DetailRow) map[string][]report.DetailRow {
	m := make(map[string][]report.DetailRow)
	for _, d := range details {
		m[d.Attribute] = append(m[d.Attribute], d)
	}
	return m
}

func sentimentIcon(s string) string {
	switch s {
	case "positive":
		return "[+]"
	case "negative":
		return "[-]"
	case "mixed":
		return "[~]"
	default:
		return "[?]"
	}
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}

func wrapText(text string, width int) []string {
	if len(text) <= width {
		return []string{text}
	}
	var lines []string
	words := strings.Fields(text)
	var current strings.Builder
	for _, word := range words {
		if current.Len()+len(word)+1 > width && current.Len() > 0 {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
