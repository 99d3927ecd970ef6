package output

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/dshills/reviewlens/internal/report"
)

var (
	summaryHeader = []string{"attribute", "mention_count", "positive_count", "negative_count"}
	detailsHeader = []string{"attribute", "review_id", "sentiment", "evidence", "confidence",
		"review_title", "review_text", "review_rating"}
)

// WriteSummaryCSV writes summary rows with a header line.
func WriteSummaryCSV(w io.Writer, rows []report.SummaryRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(summaryHeader); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.Attribute,
			strconv.Itoa(r.MentionCount),
			strconv.Itoa(r.PositiveCount),
			strconv.Itoa(r.NegativeCount),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteDetailsCSV writes detail rows with a header line. A missing rating is
// an empty cell.
func WriteDetailsCSV(w io.Writer, rows []report.DetailRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(detailsHeader); err != nil {
		return err
	}
	for _, r := range rows {
		rating := ""
		if r.ReviewRating != nil {
			rating = strconv.FormatFloat(*r.ReviewRating, 'f', -1, 64)
		}
		rec := []string{
			r.Attribute,
			r.ReviewID,
			string(r.Sentiment),
			r.Evidence,
			strconv.FormatFloat(r.Confidence, 'f', -1, 64),
			r.ReviewTitle,
			r.ReviewText,
			rating,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadSummaryCSV parses a file written by WriteSummaryCSV. Columns are found
// by header name, so extra columns are ignored.
func ReadSummaryCSV(r io.Reader) ([]report.SummaryRow, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("summary CSV is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("reading summary header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, name := range summaryHeader {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("summary CSV has no %q column", name)
		}
	}

	rows := []report.SummaryRow{}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading summary line %d: %w", line, err)
		}
		row := report.SummaryRow{Attribute: rec[col["attribute"]]}
		counts := []struct {
			name string
			dst  *int
		}{
			{"mention_count", &row.MentionCount},
			{"positive_count", &row.PositiveCount},
			{"negative_count", &row.NegativeCount},
		}
		for _, c := range counts {
			n, err := strconv.Atoi(rec[col[c.name]])
			if err != nil {
				return nil, fmt.Errorf("summary line %d: %s: %w", line, c.name, err)
			}
			*c.dst = n
		}
		rows = append(rows, row)
	}
}
