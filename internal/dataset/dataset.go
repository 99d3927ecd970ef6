package dataset

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/dshills/reviewlens/internal/reviews"
)

const (
	DefaultScanReviews = 100000
	DefaultMinReviews  = 100

	maxLineBytes = 16 * 1024 * 1024
)

// ErrProductNotFound is returned when the metadata file has no record for
// the selected product.
var ErrProductNotFound = errors.New("product metadata not found")

// NotEnoughReviewsError reports that the most-reviewed product in the
// scanned window has fewer reviews than required.
type NotEnoughReviewsError struct {
	Category   string
	ParentASIN string
	Found      int
	Required   int
}

func (e *NotEnoughReviewsError) Error() string {
	if e.ParentASIN == "" {
		return fmt.Sprintf("category %s: no reviews found (need %d)", e.Category, e.Required)
	}
	return fmt.Sprintf("category %s: most reviewed product %s has %d reviews, need %d; pick another category or scan more reviews",
		e.Category, e.ParentASIN, e.Found, e.Required)
}

// Options locates a category and bounds the scan.
type Options struct {
	Dir      string
	Category string
	// ScanReviews caps how many review lines are read. Zero means
	// DefaultScanReviews.
	ScanReviews int
	// MinReviews is the minimum review count for the chosen product. Zero
	// means DefaultMinReviews.
	MinReviews int
	Logger     *zap.Logger
}

// Selection is the product chosen from a category and all of its scanned
// reviews in file order.
type Selection struct {
	Product reviews.Product
	Reviews []reviews.RawReview
	Scanned int
	// Ratings counts reviews per rating value ("none" for missing ratings).
	Ratings map[string]int
}

// Load scans the category's review file, picks the product with the most
// reviews (first seen wins a tie) and reads its metadata.
//
// Files are <Dir>/<Category>.jsonl and <Dir>/meta_<Category>.jsonl, each
// optionally gzip-compressed with a .gz suffix.
func Load(ctx context.Context, opts Options) (*Selection, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	scanLimit := opts.ScanReviews
	if scanLimit <= 0 {
		scanLimit = DefaultScanReviews
	}
	minReviews := opts.MinReviews
	if minReviews <= 0 {
		minReviews = DefaultMinReviews
	}

	reviewPath, err := findFile(opts.Dir, opts.Category)
	if err != nil {
		return nil, err
	}
	metaPath, err := findFile(opts.Dir, "meta_"+opts.Category)
	if err != nil {
		return nil, err
	}

	var (
		byProduct = make(map[string][]reviews.RawReview)
		order     []string
		scanned   int
	)
	err = eachLine(ctx, reviewPath, func(line []byte) (bool, error) {
		var r reviews.RawReview
		if err := json.Unmarshal(line, &r); err != nil {
			return false, err
		}
		scanned++
		if r.ParentASIN != "" {
			if _, seen := byProduct[r.ParentASIN]; !seen {
				order = append(order, r.ParentASIN)
			}
			byProduct[r.ParentASIN] = append(byProduct[r.ParentASIN], r)
		}
		return scanned < scanLimit, nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading reviews: %w", err)
	}

	var best string
	for _, id := range order {
		if len(byProduct[id]) > len(byProduct[best]) {
			best = id
		}
	}
	if best == "" || len(byProduct[best]) < minReviews {
		return nil, &NotEnoughReviewsError{
			Category:   opts.Category,
			ParentASIN: best,
			Found:      len(byProduct[best]),
			Required:   minReviews,
		}
	}

	product, err := findProduct(ctx, metaPath, best)
	if err != nil {
		return nil, err
	}

	sel := &Selection{
		Product: *product,
		Reviews: byProduct[best],
		Scanned: scanned,
		Ratings: RatingCounts(byProduct[best]),
	}
	log.Info("selected product",
		zap.String("category", product.MainCategory),
		zap.String("product", product.Title),
		zap.String("parent_asin", best),
		zap.Int("reviews", len(sel.Reviews)),
		zap.Int("scanned", scanned),
		zap.String("ratings", FormatRatings(sel.Ratings)),
	)
	return sel, nil
}

// RatingCounts tallies reviews by rating.
func RatingCounts(raw []reviews.RawReview) map[string]int {
	counts := make(map[string]int)
	for _, r := range raw {
		key := "none"
		if r.Rating != nil {
			key = strconv.FormatFloat(*r.Rating, 'f', 1, 64)
		}
		counts[key]++
	}
	return counts
}

// FormatRatings renders counts as "1.0=3 5.0=2 none=1" in rating order.
func FormatRatings(counts map[string]int) string {
	parts := make([]string, 0, len(counts))
	for _, k := range SortedRatings(counts) {
		parts = append(parts, k+"="+strconv.Itoa(counts[k]))
	}
	return strings.Join(parts, " ")
}

// SortedRatings returns the keys of counts in ascending order.
func SortedRatings(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func findProduct(ctx context.Context, path, parentASIN string) (*reviews.Product, error) {
	var found *reviews.Product
	err := eachLine(ctx, path, func(line []byte) (bool, error) {
		var head struct {
			ParentASIN string `json:"parent_asin"`
		}
		if err := json.Unmarshal(line, &head); err != nil {
			return false, err
		}
		if head.ParentASIN != parentASIN {
			return true, nil
		}
		var p reviews.Product
		if err := json.Unmarshal(line, &p); err != nil {
			return false, err
		}
		found = &p
		return false, nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading product metadata: %w", err)
	}
	if found == nil {
		return nil, fmt.Errorf("%s: %w", parentASIN, ErrProductNotFound)
	}
	return found, nil
}

func findFile(dir, base string) (string, error) {
	for _, name := range []string{base + ".jsonl", base + ".jsonl.gz"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("no %s.jsonl or %s.jsonl.gz in %s", base, base, dir)
}

// eachLine calls fn for every non-empty line until fn returns false.
func eachLine(ctx context.Context, path string, fn func(line []byte) (bool, error)) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var r io.Reader = f
	if filepath.Ext(path) == ".gz" {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("opening gzip stream: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	lineNum := 0
	for sc.Scan() {
		lineNum++
		if lineNum%10_000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		more, err := fn(line)
		if err != nil {
			return fmt.Errorf("%s line %d: %w", filepath.Base(path), lineNum, err)
		}
		if !more {
			return nil
		}
	}
	return sc.Err()
}
