package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/go-cmp/cmp"

	"github.com/dshills/reviewlens/internal/aggregate"
	"github.com/dshills/reviewlens/internal/extract"
	"github.com/dshills/reviewlens/internal/report"
	"github.com/dshills/reviewlens/internal/reviews"
)

func TestLocalSink_Put(t *testing.T) {
	dir := t.TempDir()
	sink := &LocalSink{Dir: dir}

	loc, err := sink.Put(context.Background(), Artifact{Name: "Toys/Toys_summary_r1.csv", Data: []byte("a,b\n")})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	want := filepath.Join(dir, "Toys", "Toys_summary_r1.csv")
	if loc != want {
		t.Errorf("location = %q, want %q", loc, want)
	}
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "a,b\n" {
		t.Errorf("content = %q", data)
	}
}

type fakeS3 struct {
	inputs []*s3.PutObjectInput
	err    error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.inputs = append(f.inputs, in)
	return &s3.PutObjectOutput{}, f.err
}

func TestS3Sink_Put(t *testing.T) {
	fake := &fakeS3{}
	sink := newS3Sink(fake, "bucket", "/results/")

	loc, err := sink.Put(context.Background(), Artifact{Name: "Toys/x.json", ContentType: ContentTypeJSON, Data: []byte("{}")})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if loc != "s3://bucket/results/Toys/x.json" {
		t.Errorf("location = %q", loc)
	}
	in := fake.inputs[0]
	if aws.ToString(in.Bucket) != "bucket" || aws.ToString(in.Key) != "results/Toys/x.json" {
		t.Errorf("bucket/key = %s/%s", aws.ToString(in.Bucket), aws.ToString(in.Key))
	}
	if aws.ToString(in.ContentType) != ContentTypeJSON {
		t.Errorf("content type = %q", aws.ToString(in.ContentType))
	}
}

func TestPutAll_StopsOnError(t *testing.T) {
	fake := &fakeS3{err: errors.New("denied")}
	locs, err := PutAll(context.Background(), newS3Sink(fake, "b", ""), []Artifact{{Name: "a"}, {Name: "b"}})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(locs) != 0 || len(fake.inputs) != 1 {
		t.Errorf("locations = %v, uploads = %d", locs, len(fake.inputs))
	}
}

func TestParseS3URL(t *testing.T) {
	tests := []struct {
		in      string
		bucket  string
		prefix  string
		wantErr bool
	}{
		{"s3://bucket", "bucket", "", false},
		{"s3://bucket/a/b/", "bucket", "a/b", false},
		{"s3:///nobucket", "", "", true},
		{"https://bucket/a", "", "", true},
	}
	for _, tt := range tests {
		bucket, prefix, err := ParseS3URL(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseS3URL(%q) err = %v", tt.in, err)
			continue
		}
		if bucket != tt.bucket || prefix != tt.prefix {
			t.Errorf("ParseS3URL(%q) = %q, %q", tt.in, bucket, prefix)
		}
	}
}

func TestOpen_LocalDir(t *testing.T) {
	sink, err := Open(context.Background(), t.TempDir(), S3Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, ok := sink.(*LocalSink); !ok {
		t.Errorf("sink = %T, want *LocalSink", sink)
	}
	if _, err := Open(context.Background(), "", S3Options{}); err == nil {
		t.Error("empty target should fail")
	}
}

func testRun(id string, started time.Time) *report.Run {
	five := 5.0
	return &report.Run{
		ID:          id,
		Category:    "Toys",
		OutputName:  "exp",
		Product:     reviews.Product{ParentASIN: "P1", Title: "Lantern"},
		Provider:    "openai",
		Model:       "gpt-4o-mini",
		MixedPolicy: aggregate.MixedBoth,
		StartedAt:   started,
		DurationMs:  1200,
		Stats:       extract.BatchStats{Attempted: 2, Classified: 2},
		Tables: report.Tables{
			Summary: []report.SummaryRow{
				{Attribute: "brightness", MentionCount: 2, PositiveCount: 2},
				{Attribute: "battery life", MentionCount: 1, NegativeCount: 1},
			},
			Details: []report.DetailRow{
				{Attribute: "brightness", ReviewID: "1", Sentiment: extract.SentimentPositive, Evidence: "so bright", Confidence: 0.9, ReviewTitle: "Great", ReviewText: "so bright", ReviewRating: &five},
				{Attribute: "battery life", ReviewID: "2", Sentiment: extract.SentimentNegative, Evidence: "dies", Confidence: 0.7},
			},
		},
	}
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "runs", "reviewlens.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	older, newer := testRun("r1", base), testRun("r2", base.Add(time.Hour))
	for _, run := range []*report.Run{older, newer} {
		if err := store.SaveRun(ctx, run); err != nil {
			t.Fatalf("SaveRun(%s): %v", run.ID, err)
		}
	}

	latest, err := store.LatestRun(ctx, "Toys")
	if err != nil || latest != "r2" {
		t.Fatalf("LatestRun = %q, %v", latest, err)
	}

	summary, err := store.Summary(ctx, "r1")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if diff := cmp.Diff(older.Tables.Summary, summary); diff != "" {
		t.Errorf("summary (-want +got):\n%s", diff)
	}
	details, err := store.Details(ctx, "r1")
	if err != nil {
		t.Fatalf("Details: %v", err)
	}
	if diff := cmp.Diff(older.Tables.Details, details); diff != "" {
		t.Errorf("details (-want +got):\n%s", diff)
	}
}

func TestSQLiteStore_LoadRun(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "db.sqlite"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	want := testRun("r1", time.Date(2026, 1, 2, 3, 4, 5, 600, time.UTC))
	want.Stats = extract.BatchStats{Attempted: 3, Classified: 2, Skipped: 1, NearDuplicates: 1}
	if err := store.SaveRun(ctx, want); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	got, err := store.LoadRun(ctx, "r1")
	if err != nil {
		t.Fatalf("LoadRun: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("run (-want +got):\n%s", diff)
	}

	if _, err := store.LoadRun(ctx, "missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("err = %v, want ErrRunNotFound", err)
	}
}

func TestSQLiteStore_DuplicateRunRollsBack(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "db.sqlite"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	run := testRun("dup", time.Now())
	if err := store.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if err := store.SaveRun(ctx, run); err == nil {
		t.Fatal("saving the same run id twice should fail")
	}
	summary, err := store.Summary(ctx, "dup")
	if err != nil {
		t.Fatal(err)
	}
	if len(summary) != 2 {
		t.Errorf("summary rows = %d, want 2", len(summary))
	}
}

func TestSQLiteStore_LatestRunMissing(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "db.sqlite"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer store.Close()

	if _, err := store.LatestRun(context.Background(), "Nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("err = %v, want ErrRunNotFound", err)
	}
}
