package reviews

import (
	"strings"
	"unicode/utf8"
)

// Prepare filters raw reviews down to the ones worth classifying.
//
// A record is dropped when its title or text is empty, or when its text has
// more than maxWords whitespace-separated tokens. Text is passed through
// untouched so evidence quotes can later be matched byte-for-byte.
func Prepare(raw []RawReview, maxWords int) []Review {
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}

	prepared := make([]Review, 0, len(raw))
	for _, r := range raw {
		if r.Title == "" || r.Text == "" {
			continue
		}
		if len(strings.Fields(r.Text)) > maxWords {
			continue
		}
		prepared = append(prepared, Review{
			ID:     r.ID(),
			Title:  r.Title,
			Text:   r.Text,
			Rating: r.Rating,
		})
	}
	return prepared
}

// DedupeRecords keeps one record per review id: the one with the longest
// text, measured in characters. Ties keep the record seen first. Output is in
// first-seen id order.
func DedupeRecords(records []Record) []Record {
	best := make(map[string]int, len(records))
	var order []string
	var kept []Record

	for _, rec := range records {
		idx, ok := best[rec.ReviewID]
		if !ok {
			best[rec.ReviewID] = len(kept)
			order = append(order, rec.ReviewID)
			kept = append(kept, rec)
			continue
		}
		if utf8.RuneCountInString(rec.Text) > utf8.RuneCountInString(kept[idx].Text) {
			kept[idx] = rec
		}
	}

	out := make([]Record, 0, len(order))
	for _, id := range order {
		out = append(out, kept[best[id]])
	}
	return out
}
