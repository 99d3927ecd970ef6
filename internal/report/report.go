package report

import (
	"fmt"
	"sort"

	"github.com/dshills/reviewlens/internal/aggregate"
	"github.com/dshills/reviewlens/internal/extract"
	"github.com/dshills/reviewlens/internal/reviews"
)

// SummaryRow is one reported attribute.
type SummaryRow struct {
	Attribute     string `json:"attribute"`
	MentionCount  int    `json:"mention_count"`
	PositiveCount int    `json:"positive_count"`
	NegativeCount int    `json:"negative_count"`
}

// DetailRow is one piece of evidence joined with the review it came from.
// Review fields are empty when the review has no metadata record.
type DetailRow struct {
	Attribute    string            `json:"attribute"`
	ReviewID     string            `json:"review_id"`
	Sentiment    extract.Sentiment `json:"sentiment"`
	Evidence     string            `json:"evidence"`
	Confidence   float64           `json:"confidence"`
	ReviewTitle  string            `json:"review_title"`
	ReviewText   string            `json:"review_text"`
	ReviewRating *float64          `json:"review_rating"`
}

// Tables holds both report views.
type Tables struct {
	Summary []SummaryRow `json:"summary"`
	Details []DetailRow  `json:"details"`
}

// IntegrityError reports a review id with more than one metadata record.
type IntegrityError struct {
	ReviewID string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("review %s has more than one metadata record", e.ReviewID)
}

// Build projects agg into summary and detail rows. Attributes with no
// positive and no negative count are left out of both. Summary rows are
// ordered by mention count, highest first, keeping first-seen order on ties.
// Details follow the aggregate's first-seen order.
//
// metadata must hold at most one record per review id; see
// reviews.DedupeRecords.
func Build(agg *aggregate.Aggregation, metadata []reviews.Record) (Tables, error) {
	byID := make(map[string]reviews.Record, len(metadata))
	for _, rec := range metadata {
		if _, dup := byID[rec.ReviewID]; dup {
			return Tables{}, &IntegrityError{ReviewID: rec.ReviewID}
		}
		byID[rec.ReviewID] = rec
	}

	t := Tables{Summary: []SummaryRow{}, Details: []DetailRow{}}
	if agg == nil {
		return t, nil
	}

	for _, name := range agg.Order {
		e := agg.Entries[name]
		if e == nil || (e.PositiveCount == 0 && e.NegativeCount == 0) {
			continue
		}
		t.Summary = append(t.Summary, SummaryRow{
			Attribute:     name,
			MentionCount:  e.MentionCount,
			PositiveCount: e.PositiveCount,
			NegativeCount: e.NegativeCount,
		})
		for _, ev := range e.Evidence {
			row := DetailRow{
				Attribute:  name,
				ReviewID:   ev.ReviewID,
				Sentiment:  ev.Sentiment,
				Evidence:   ev.Evidence,
				Confidence: ev.Confidence,
			}
			if rec, ok := byID[ev.ReviewID]; ok {
				row.ReviewTitle = rec.Title
				row.ReviewText = rec.Text
				row.ReviewRating = rec.Rating
			}
			t.Details = append(t.Details, row)
		}
	}

	sort.SliceStable(t.Summary, func(i, j int) bool {
		return t.Summary[i].MentionCount > t.Summary[j].MentionCount
	})
	return t, nil
}

// Attributes returns the attribute names of the summary rows in order.
func (t Tables) Attributes() []string {
	out := make([]string, len(t.Summary))
	for i, r := range t.Summary {
		out[i] = r.Attribute
	}
	return out
}
