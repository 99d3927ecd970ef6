package reviews

import (
	"strings"
	"testing"
)

func rating(v float64) *float64 { return &v }

func TestPrepare_DropsEmptyTitleOrText(t *testing.T) {
	raw := []RawReview{
		{Title: "", Text: "x", Timestamp: 1},
		{Title: "t", Text: "", Timestamp: 2},
		{Title: "", Text: "", Timestamp: 3},
	}
	got := Prepare(raw, 100)
	if len(got) != 0 {
		t.Errorf("Prepare() = %v, want empty", got)
	}
}

func TestPrepare_WordCeilingBoundary(t *testing.T) {
	exact := strings.TrimSpace(strings.Repeat("word ", 5))
	over := strings.TrimSpace(strings.Repeat("word ", 6))

	raw := []RawReview{
		{Title: "exact", Text: exact, Timestamp: 10},
		{Title: "over", Text: over, Timestamp: 11},
	}
	got := Prepare(raw, 5)
	if len(got) != 1 {
		t.Fatalf("got %d reviews, want 1", len(got))
	}
	if got[0].ID != "10" {
		t.Errorf("kept review ID = %q, want %q", got[0].ID, "10")
	}
}

func TestPrepare_WhitespaceSplitting(t *testing.T) {
	// Tabs and newlines separate words just like spaces.
	raw := []RawReview{{Title: "t", Text: "one\ttwo\nthree   four", Timestamp: 1}}
	if got := Prepare(raw, 4); len(got) != 1 {
		t.Errorf("4 words with mixed whitespace should be kept at ceiling 4")
	}
	if got := Prepare(raw, 3); len(got) != 0 {
		t.Errorf("4 words should be dropped at ceiling 3")
	}
}

func TestPrepare_DefaultCeiling(t *testing.T) {
	long := strings.TrimSpace(strings.Repeat("w ", DefaultMaxWords+1))
	raw := []RawReview{{Title: "t", Text: long, Timestamp: 1}}
	if got := Prepare(raw, 0); len(got) != 0 {
		t.Errorf("non-positive ceiling should fall back to %d words", DefaultMaxWords)
	}
}

func TestPrepare_PreservesOrderAndText(t *testing.T) {
	raw := []RawReview{
		{Title: "A", Text: "  Great LAMP!!  ", Timestamp: 3, Rating: rating(5)},
		{Title: "B", Text: "meh", Timestamp: 1},
		{Title: "C", Text: "Died in a day.", Timestamp: 2, Rating: rating(1)},
	}
	got := Prepare(raw, 100)
	if len(got) != 3 {
		t.Fatalf("got %d reviews, want 3", len(got))
	}
	wantIDs := []string{"3", "1", "2"}
	for i, id := range wantIDs {
		if got[i].ID != id {
			t.Errorf("got[%d].ID = %q, want %q", i, got[i].ID, id)
		}
	}
	if got[0].Text != "  Great LAMP!!  " {
		t.Errorf("text should be untouched, got %q", got[0].Text)
	}
	if got[0].Rating == nil || *got[0].Rating != 5 {
		t.Errorf("rating not carried over: %v", got[0].Rating)
	}
	if got[1].Rating != nil {
		t.Errorf("missing rating should stay nil")
	}
}

func TestPrepare_DoesNotMutateInput(t *testing.T) {
	raw := []RawReview{{Title: "t", Text: "x", Timestamp: 7}}
	_ = Prepare(raw, 10)
	if raw[0].Text != "x" || raw[0].Timestamp != 7 {
		t.Errorf("input mutated: %+v", raw[0])
	}
}

func TestDedupeRecords_KeepsLongestText(t *testing.T) {
	records := []Record{
		{ReviewID: "1", Text: "short"},
		{ReviewID: "2", Text: "only"},
		{ReviewID: "1", Text: "much longer text"},
		{ReviewID: "1", Text: "mid text"},
	}
	got := DedupeRecords(records)
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[0].ReviewID != "1" || got[0].Text != "much longer text" {
		t.Errorf("got[0] = %+v, want longest text for id 1", got[0])
	}
	if got[1].ReviewID != "2" {
		t.Errorf("got[1].ReviewID = %q, want %q", got[1].ReviewID, "2")
	}
}

func TestDedupeRecords_TieKeepsFirst(t *testing.T) {
	records := []Record{
		{ReviewID: "1", Title: "first", Text: "abc"},
		{ReviewID: "1", Title: "second", Text: "xyz"},
	}
	got := DedupeRecords(records)
	if len(got) != 1 || got[0].Title != "first" {
		t.Errorf("DedupeRecords() = %+v, want first record on tie", got)
	}
}

func TestDedupeRecords_CountsCharactersNotBytes(t *testing.T) {
	records := []Record{
		{ReviewID: "1", Title: "accented", Text: "ééé"}, // 3 chars, 6 bytes
		{ReviewID: "1", Title: "ascii", Text: "abcd"},   // 4 chars
	}
	got := DedupeRecords(records)
	if got[0].Title != "ascii" {
		t.Errorf("expected the 4-character text to win, got %q", got[0].Title)
	}
}

func TestRecords_UsesTimestampID(t *testing.T) {
	recs := Records([]RawReview{{Timestamp: 1588687728923, Title: "t", Text: "x"}})
	if recs[0].ReviewID != "1588687728923" {
		t.Errorf("ReviewID = %q", recs[0].ReviewID)
	}
}
