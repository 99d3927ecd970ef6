package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/reviewlens/internal/aggregate"
	"github.com/dshills/reviewlens/internal/extract"
	"github.com/dshills/reviewlens/internal/report"
	"github.com/dshills/reviewlens/internal/reviews"
	"github.com/dshills/reviewlens/internal/storage"
)

func sampleRun() *report.Run {
	four := 4.0
	return &report.Run{
		ID:          "run-1",
		Category:    "Toys",
		OutputName:  "exp",
		Product:     reviews.Product{ParentASIN: "B01", Title: "Glow Lantern"},
		Provider:    "openai",
		Model:       "gpt-4o-mini",
		MixedPolicy: aggregate.MixedBoth,
		DurationMs:  1500,
		Stats:       extract.BatchStats{Attempted: 3, Classified: 2, Skipped: 1},
		Vocabulary:  []string{"brightness", "battery life", "color"},
		Tables: report.Tables{
			Summary: []report.SummaryRow{
				{Attribute: "brightness", MentionCount: 2, PositiveCount: 2},
				{Attribute: "battery life", MentionCount: 1, NegativeCount: 1},
			},
			Details: []report.DetailRow{
				{Attribute: "brightness", ReviewID: "10", Sentiment: extract.SentimentPositive, Evidence: "lights up the room", Confidence: 0.9, ReviewTitle: "Bright", ReviewText: "It lights up the room", ReviewRating: &four},
				{Attribute: "brightness", ReviewID: "11", Sentiment: extract.SentimentPositive, Evidence: "very bright", Confidence: 0.8},
				{Attribute: "battery life", ReviewID: "11", Sentiment: extract.SentimentNegative, Evidence: "battery died, sadly", Confidence: 0.75},
			},
		},
	}
}

func TestGetWriter(t *testing.T) {
	for _, f := range Formats {
		if _, err := GetWriter(f); err != nil {
			t.Errorf("GetWriter(%q): %v", f, err)
		}
	}
	if _, err := GetWriter("sarif"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestTextWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TextWriter{}).Write(&buf, sampleRun()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Glow Lantern (B01)",
		"3 attempted, 2 classified, 1 skipped",
		"2 reported, 3 in vocabulary",
		"brightness",
		"[-] review 11 (75%)",
		"battery died, sadly",
		"Run run-1 completed in 1500ms",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTextWriter_Empty(t *testing.T) {
	run := sampleRun()
	run.Tables = report.Tables{}
	var buf bytes.Buffer
	if err := (&TextWriter{}).Write(&buf, run); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if !strings.Contains(buf.String(), "No attributes") {
		t.Errorf("empty run should say so:\n%s", buf.String())
	}
}

func TestMarkdownWriter(t *testing.T) {
	run := sampleRun()
	run.Tables.Summary[0].Attribute = "size|fit"
	run.Tables.Details[0].Attribute = "size|fit"
	run.Tables.Details[1].Attribute = "size|fit"

	var buf bytes.Buffer
	if err := (&MarkdownWriter{}).Write(&buf, run); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"## Review Summary: Glow Lantern (B01)",
		`| size\|fit | 2 | 2 | 0 |`,
		"<summary>battery life (1)</summary>",
		"(4.0 stars)",
		"> lights up the room",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestJSONWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONWriter{}).Write(&buf, sampleRun()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	var parsed report.Run
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if parsed.ID != "run-1" || len(parsed.Tables.Details) != 3 {
		t.Errorf("parsed = %+v", parsed)
	}
}

func TestArtifacts(t *testing.T) {
	arts, err := Artifacts(sampleRun(), []string{ArtifactCSV, ArtifactJSON})
	if err != nil {
		t.Fatalf("Artifacts: %v", err)
	}
	var names, types []string
	for _, a := range arts {
		names = append(names, a.Name)
		types = append(types, a.ContentType)
	}
	wantNames := []string{"Toys/Toys_summary_exp.csv", "Toys/Toys_details_exp.csv", "Toys/Toys_run_exp.json"}
	if diff := cmp.Diff(wantNames, names); diff != "" {
		t.Errorf("names (-want +got):\n%s", diff)
	}
	wantTypes := []string{storage.ContentTypeCSV, storage.ContentTypeCSV, storage.ContentTypeJSON}
	if diff := cmp.Diff(wantTypes, types); diff != "" {
		t.Errorf("content types (-want +got):\n%s", diff)
	}

	if _, err := Artifacts(sampleRun(), []string{"xlsx"}); err == nil {
		t.Error("expected error for unsupported artifact format")
	}
}

func TestArtifactName_FallsBackToRunID(t *testing.T) {
	run := sampleRun()
	run.OutputName = ""
	if got := ArtifactName(run, "summary", "csv"); got != "Toys/Toys_summary_run-1.csv" {
		t.Errorf("ArtifactName = %q", got)
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five six", 10)
	if diff := cmp.Diff([]string{"one two", "three four", "five six"}, lines); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if got := wrapText("short", 10); len(got) != 1 || got[0] != "short" {
		t.Errorf("wrapText(short) = %v", got)
	}
}
