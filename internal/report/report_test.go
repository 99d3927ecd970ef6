package report

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/reviewlens/internal/aggregate"
	"github.com/dshills/reviewlens/internal/extract"
	"github.com/dshills/reviewlens/internal/reviews"
)

func rating(v float64) *float64 { return &v }

func TestBuild_BatteryLifeScenario(t *testing.T) {
	results := []extract.ReviewResult{
		{ReviewID: "A", Attributes: []extract.AttributeMention{
			{Attribute: "battery life", MatchType: extract.MatchNew, Sentiment: extract.SentimentPositive, Evidence: "lasts forever", Confidence: 0.9},
		}},
		{ReviewID: "B", Attributes: []extract.AttributeMention{
			{Attribute: "battery life", MatchType: extract.MatchExisting, Sentiment: extract.SentimentNegative, Evidence: "died in a day", Confidence: 0.8},
		}},
	}
	agg, err := aggregate.Aggregate(results, aggregate.MixedBoth)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	e := agg.Entries["battery life"]
	if e.MentionCount != 2 || e.PositiveCount != 1 || e.NegativeCount != 1 {
		t.Fatalf("aggregate = %+v", e)
	}
	if e.Evidence[0].ReviewID != "A" || e.Evidence[1].ReviewID != "B" {
		t.Errorf("evidence order = %+v", e.Evidence)
	}

	metadata := []reviews.Record{
		{ReviewID: "A", Title: "Love it", Text: "Battery lasts forever", Rating: rating(5)},
		{ReviewID: "B", Title: "Meh", Text: "It died in a day", Rating: rating(1)},
	}
	tables, err := Build(agg, metadata)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	wantSummary := []SummaryRow{{Attribute: "battery life", MentionCount: 2, PositiveCount: 1, NegativeCount: 1}}
	if diff := cmp.Diff(wantSummary, tables.Summary); diff != "" {
		t.Errorf("summary (-want +got):\n%s", diff)
	}
	wantDetails := []DetailRow{
		{Attribute: "battery life", ReviewID: "A", Sentiment: "positive", Evidence: "lasts forever", Confidence: 0.9,
			ReviewTitle: "Love it", ReviewText: "Battery lasts forever", ReviewRating: rating(5)},
		{Attribute: "battery life", ReviewID: "B", Sentiment: "negative", Evidence: "died in a day", Confidence: 0.8,
			ReviewTitle: "Meh", ReviewText: "It died in a day", ReviewRating: rating(1)},
	}
	if diff := cmp.Diff(wantDetails, tables.Details); diff != "" {
		t.Errorf("details (-want +got):\n%s", diff)
	}
}

func TestBuild_DropsAttributesWithoutPolarity(t *testing.T) {
	agg := &aggregate.Aggregation{
		Order: []string{"battery"},
		Entries: map[string]*aggregate.AttributeAggregate{
			"battery": {MentionCount: 2, Evidence: []aggregate.EvidenceEntry{{ReviewID: "1"}, {ReviewID: "2"}}},
		},
	}
	tables, err := Build(agg, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(tables.Summary) != 0 || len(tables.Details) != 0 {
		t.Errorf("want no rows, got %+v", tables)
	}
}

func TestBuild_StableSortByMentions(t *testing.T) {
	agg := &aggregate.Aggregation{
		Order: []string{"a", "b", "c", "d"},
		Entries: map[string]*aggregate.AttributeAggregate{
			"a": {MentionCount: 1, PositiveCount: 1},
			"b": {MentionCount: 3, NegativeCount: 3},
			"c": {MentionCount: 1, NegativeCount: 1},
			"d": {MentionCount: 3, PositiveCount: 2},
		},
	}
	tables, err := Build(agg, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if diff := cmp.Diff([]string{"b", "d", "a", "c"}, tables.Attributes()); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}
}

func TestBuild_MissingMetadataLeavesFieldsEmpty(t *testing.T) {
	agg := &aggregate.Aggregation{
		Order: []string{"price"},
		Entries: map[string]*aggregate.AttributeAggregate{
			"price": {MentionCount: 1, PositiveCount: 1, Evidence: []aggregate.EvidenceEntry{
				{ReviewID: "404", Sentiment: "positive", Evidence: "cheap", Confidence: 1},
			}},
		},
	}
	tables, err := Build(agg, []reviews.Record{{ReviewID: "1", Title: "other"}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	row := tables.Details[0]
	if row.ReviewTitle != "" || row.ReviewText != "" || row.ReviewRating != nil {
		t.Errorf("unjoined row should have empty review fields: %+v", row)
	}
}

func TestBuild_DuplicateMetadataIsIntegrityError(t *testing.T) {
	metadata := []reviews.Record{
		{ReviewID: "1", Text: "short"},
		{ReviewID: "2", Text: "x"},
		{ReviewID: "1", Text: "longer text"},
	}
	_, err := Build(&aggregate.Aggregation{}, metadata)
	var ie *IntegrityError
	if !errors.As(err, &ie) {
		t.Fatalf("err = %v, want *IntegrityError", err)
	}
	if ie.ReviewID != "1" {
		t.Errorf("ReviewID = %q, want 1", ie.ReviewID)
	}

	if _, err := Build(&aggregate.Aggregation{}, reviews.DedupeRecords(metadata)); err != nil {
		t.Errorf("deduplicated metadata should join cleanly: %v", err)
	}
}

func TestBuild_NilAggregation(t *testing.T) {
	tables, err := Build(nil, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if tables.Summary == nil || tables.Details == nil {
		t.Error("tables should be empty, not nil")
	}
}
