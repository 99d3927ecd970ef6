package dataset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/gzip"
)

func writeFile(t *testing.T, path string, lines []string, compress bool) {
	t.Helper()
	data := []byte(strings.Join(lines, "\n") + "\n")
	if compress {
		f, err := os.Create(path)
		if err != nil {
			t.Fatal(err)
		}
		gz := gzip.NewWriter(f)
		if _, err := gz.Write(data); err != nil {
			t.Fatal(err)
		}
		if err := gz.Close(); err != nil {
			t.Fatal(err)
		}
		if err := f.Close(); err != nil {
			t.Fatal(err)
		}
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func reviewLine(asin string, ts int64, rating float64) string {
	return fmt.Sprintf(`{"parent_asin":%q,"asin":%q,"title":"t%d","text":"text %d","timestamp":%d,"rating":%v,"helpful_vote":0,"verified_purchase":true}`,
		asin, asin, ts, ts, ts, rating)
}

// fixture writes 3 reviews for P1, 3 for P2 (P1 seen first) and 1 for P3.
func fixture(t *testing.T, compress bool) string {
	t.Helper()
	dir := t.TempDir()
	ext := ".jsonl"
	if compress {
		ext += ".gz"
	}
	writeFile(t, filepath.Join(dir, "Toys"+ext), []string{
		reviewLine("P1", 1, 5),
		reviewLine("P2", 2, 4),
		reviewLine("P2", 3, 1),
		"",
		reviewLine("P1", 4, 5),
		reviewLine("P3", 5, 3),
		reviewLine("P1", 6, 2),
		reviewLine("P2", 7, 4),
	}, compress)
	writeFile(t, filepath.Join(dir, "meta_Toys"+ext), []string{
		`{"parent_asin":"P2","title":"Other","main_category":"Toys"}`,
		`{"parent_asin":"P1","title":"Lantern","main_category":"Toys & Games","average_rating":4.1,"rating_number":900,"store":"ACME","features":["floats"],"price":null,"details":{"color":"red"}}`,
	}, compress)
	return dir
}

func TestLoad_PicksMostReviewedFirstSeen(t *testing.T) {
	for _, compress := range []bool{false, true} {
		t.Run(fmt.Sprintf("gzip=%v", compress), func(t *testing.T) {
			sel, err := Load(context.Background(), Options{Dir: fixture(t, compress), Category: "Toys", MinReviews: 3})
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if sel.Product.ParentASIN != "P1" || sel.Product.Title != "Lantern" || sel.Product.Store != "ACME" {
				t.Errorf("product = %+v", sel.Product)
			}
			var ids []string
			for _, r := range sel.Reviews {
				ids = append(ids, r.ID())
			}
			if diff := cmp.Diff([]string{"1", "4", "6"}, ids); diff != "" {
				t.Errorf("review ids (-want +got):\n%s", diff)
			}
			if sel.Scanned != 7 {
				t.Errorf("Scanned = %d, want 7", sel.Scanned)
			}
			if diff := cmp.Diff(map[string]int{"5.0": 2, "2.0": 1}, sel.Ratings); diff != "" {
				t.Errorf("ratings (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoad_ScanLimit(t *testing.T) {
	// Only the first three lines are read: P2 leads with two reviews.
	sel, err := Load(context.Background(), Options{Dir: fixture(t, false), Category: "Toys", ScanReviews: 3, MinReviews: 2})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if sel.Product.ParentASIN != "P2" || len(sel.Reviews) != 2 || sel.Scanned != 3 {
		t.Errorf("got %s with %d reviews after %d scanned", sel.Product.ParentASIN, len(sel.Reviews), sel.Scanned)
	}
}

func TestLoad_NotEnoughReviews(t *testing.T) {
	_, err := Load(context.Background(), Options{Dir: fixture(t, false), Category: "Toys"})
	var ne *NotEnoughReviewsError
	if !errors.As(err, &ne) {
		t.Fatalf("err = %v, want *NotEnoughReviewsError", err)
	}
	if ne.ParentASIN != "P1" || ne.Found != 3 || ne.Required != DefaultMinReviews {
		t.Errorf("error = %+v", ne)
	}
}

func TestLoad_ProductNotFound(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Toys.jsonl"), []string{reviewLine("P9", 1, 5)}, false)
	writeFile(t, filepath.Join(dir, "meta_Toys.jsonl"), []string{`{"parent_asin":"P1","title":"x"}`}, false)

	_, err := Load(context.Background(), Options{Dir: dir, Category: "Toys", MinReviews: 1})
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("err = %v, want ErrProductNotFound", err)
	}
}

func TestLoad_MissingFiles(t *testing.T) {
	if _, err := Load(context.Background(), Options{Dir: t.TempDir(), Category: "Toys"}); err == nil {
		t.Error("expected error for missing dataset files")
	}
}

func TestLoad_MalformedLine(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Toys.jsonl"), []string{reviewLine("P1", 1, 5), "{not json"}, false)
	writeFile(t, filepath.Join(dir, "meta_Toys.jsonl"), []string{`{"parent_asin":"P1"}`}, false)

	_, err := Load(context.Background(), Options{Dir: dir, Category: "Toys", MinReviews: 1})
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("err = %v, want error naming line 2", err)
	}
}

func TestSortedRatings(t *testing.T) {
	got := SortedRatings(map[string]int{"5.0": 1, "none": 2, "1.0": 3})
	if diff := cmp.Diff([]string{"1.0", "5.0", "none"}, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestFormatRatings(t *testing.T) {
	got := FormatRatings(map[string]int{"5.0": 2, "none": 1, "1.0": 3})
	if want := "1.0=3 5.0=2 none=1"; got != want {
		t.Errorf("FormatRatings = %q, want %q", got, want)
	}
	if got := FormatRatings(nil); got != "" {
		t.Errorf("FormatRatings(nil) = %q, want empty", got)
	}
}
