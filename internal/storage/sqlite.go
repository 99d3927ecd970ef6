package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"github.com/dshills/reviewlens/internal/aggregate"
	"github.com/dshills/reviewlens/internal/report"
)

// ErrRunNotFound is returned when no stored run matches a lookup.
var ErrRunNotFound = errors.New("run not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	category TEXT NOT NULL,
	output_name TEXT NOT NULL,
	parent_asin TEXT NOT NULL,
	product_title TEXT NOT NULL,
	provider TEXT NOT NULL,
	model TEXT NOT NULL,
	mixed_policy TEXT NOT NULL,
	started_at TEXT NOT NULL,
	duration_ms INTEGER NOT NULL,
	attempted INTEGER NOT NULL,
	classified INTEGER NOT NULL,
	skipped INTEGER NOT NULL,
	near_duplicates INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS summary (
	run_id TEXT NOT NULL REFERENCES runs(run_id),
	position INTEGER NOT NULL,
	attribute TEXT NOT NULL,
	mention_count INTEGER NOT NULL,
	positive_count INTEGER NOT NULL,
	negative_count INTEGER NOT NULL,
	PRIMARY KEY (run_id, position)
);
CREATE TABLE IF NOT EXISTS details (
	run_id TEXT NOT NULL REFERENCES runs(run_id),
	position INTEGER NOT NULL,
	attribute TEXT NOT NULL,
	review_id TEXT NOT NULL,
	sentiment TEXT NOT NULL,
	evidence TEXT NOT NULL,
	confidence REAL NOT NULL,
	review_title TEXT NOT NULL,
	review_text TEXT NOT NULL,
	review_rating REAL,
	PRIMARY KEY (run_id, position)
);
CREATE INDEX IF NOT EXISTS idx_runs_category ON runs(category, started_at);
`

// SQLiteStore keeps completed runs and their tables in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun writes the run and both tables in one transaction.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *report.Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	inserts := []sq.InsertBuilder{
		sq.Insert("runs").
			Columns("run_id", "category", "output_name", "parent_asin", "product_title",
				"provider", "model", "mixed_policy", "started_at", "duration_ms",
				"attempted", "classified", "skipped", "near_duplicates").
			Values(run.ID, run.Category, run.OutputName, run.Product.ParentASIN, run.Product.Title,
				run.Provider, run.Model, string(run.MixedPolicy), run.StartedAt.UTC().Format(time.RFC3339Nano), run.DurationMs,
				run.Stats.Attempted, run.Stats.Classified, run.Stats.Skipped, run.Stats.NearDuplicates),
	}
	for i, row := range run.Tables.Summary {
		inserts = append(inserts, sq.Insert("summary").
			Columns("run_id", "position", "attribute", "mention_count", "positive_count", "negative_count").
			Values(run.ID, i, row.Attribute, row.MentionCount, row.PositiveCount, row.NegativeCount))
	}
	for i, row := range run.Tables.Details {
		inserts = append(inserts, sq.Insert("details").
			Columns("run_id", "position", "attribute", "review_id", "sentiment", "evidence",
				"confidence", "review_title", "review_text", "review_rating").
			Values(run.ID, i, row.Attribute, row.ReviewID, string(row.Sentiment), row.Evidence,
				row.Confidence, row.ReviewTitle, row.ReviewText, row.ReviewRating))
	}

	for _, ins := range inserts {
		query, args, err := ins.ToSql()
		if err != nil {
			return fmt.Errorf("building insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("saving run %s: %w", run.ID, err)
		}
	}
	return tx.Commit()
}

// LatestRun returns the id of the most recent run for category.
func (s *SQLiteStore) LatestRun(ctx context.Context, category string) (string, error) {
	query, args, err := sq.Select("run_id").
		From("runs").
		Where(sq.Eq{"category": category}).
		OrderBy("started_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return "", err
	}
	var id string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("category %s: %w", category, ErrRunNotFound)
	}
	return id, err
}

// LoadRun reads a stored run header and both of its tables.
func (s *SQLiteStore) LoadRun(ctx context.Context, runID string) (*report.Run, error) {
	query, args, err := sq.Select("category", "output_name", "parent_asin", "product_title",
		"provider", "model", "mixed_policy", "started_at", "duration_ms",
		"attempted", "classified", "skipped", "near_duplicates").
		From("runs").
		Where(sq.Eq{"run_id": runID}).
		ToSql()
	if err != nil {
		return nil, err
	}
	var (
		run     = &report.Run{ID: runID}
		policy  string
		started string
	)
	err = s.db.QueryRowContext(ctx, query, args...).Scan(
		&run.Category, &run.OutputName, &run.Product.ParentASIN, &run.Product.Title,
		&run.Provider, &run.Model, &policy, &started, &run.DurationMs,
		&run.Stats.Attempted, &run.Stats.Classified, &run.Stats.Skipped, &run.Stats.NearDuplicates)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", runID, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying run: %w", err)
	}
	run.MixedPolicy = aggregate.MixedPolicy(policy)
	if run.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return nil, fmt.Errorf("run %s: parsing start time: %w", runID, err)
	}

	if run.Tables.Summary, err = s.Summary(ctx, runID); err != nil {
		return nil, err
	}
	if run.Tables.Details, err = s.Details(ctx, runID); err != nil {
		return nil, err
	}
	return run, nil
}

// Summary returns the stored summary rows of a run in report order.
func (s *SQLiteStore) Summary(ctx context.Context, runID string) ([]report.SummaryRow, error) {
	query, args, err := sq.Select("attribute", "mention_count", "positive_count", "negative_count").
		From("summary").
		Where(sq.Eq{"run_id": runID}).
		OrderBy("position").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying summary: %w", err)
	}
	defer rows.Close()

	out := []report.SummaryRow{}
	for rows.Next() {
		var r report.SummaryRow
		if err := rows.Scan(&r.Attribute, &r.MentionCount, &r.PositiveCount, &r.NegativeCount); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Details returns the stored detail rows of a run in report order.
func (s *SQLiteStore) Details(ctx context.Context, runID string) ([]report.DetailRow, error) {
	query, args, err := sq.Select("attribute", "review_id", "sentiment", "evidence", "confidence",
		"review_title", "review_text", "review_rating").
		From("details").
		Where(sq.Eq{"run_id": runID}).
		OrderBy("position").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying details: %w", err)
	}
	defer rows.Close()

	out := []report.DetailRow{}
	for rows.Next() {
		var (
			r      report.DetailRow
			rating sql.NullFloat64
		)
		if err := rows.Scan(&r.Attribute, &r.ReviewID, &r.Sentiment, &r.Evidence, &r.Confidence,
			&r.ReviewTitle, &r.ReviewText, &rating); err != nil {
			return nil, err
		}
		if rating.Valid {
			v := rating.Float64
			r.ReviewRating = &v
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
