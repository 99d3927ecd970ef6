package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dshills/reviewlens/internal/aggregate"
	"github.com/dshills/reviewlens/internal/cache"
	"github.com/dshills/reviewlens/internal/extract"
	"github.com/dshills/reviewlens/internal/providers"
	"github.com/dshills/reviewlens/internal/report"
	"github.com/dshills/reviewlens/internal/reviews"
)

// Pipeline runs prepare, classify, aggregate and report for one product.
type Pipeline struct {
	Generator   providers.Generator
	Cache       cache.Store
	Retry       extract.RetryPolicy
	MaxTokens   int
	Temperature float64
	Logger      *zap.Logger
	OnProgress  func(done, total int)

	// now and newID are replaced in tests.
	now   func() time.Time
	newID func() string
}

// Request describes one summarization.
type Request struct {
	Category string
	Product  reviews.Product
	// Reviews are the raw records for the product; they are also the
	// metadata that detail rows are joined against.
	Reviews     []reviews.RawReview
	NumReviews  int
	MaxWords    int
	MixedPolicy string
	// Seed pre-loads the attribute vocabulary.
	Seed       []string
	OutputName string
}

// Summarize classifies up to req.NumReviews prepared reviews and builds the
// report tables. An invalid mixed policy fails before any model call.
func (p *Pipeline) Summarize(ctx context.Context, req Request) (*report.Run, error) {
	policy, err := aggregate.ParseMixedPolicy(req.MixedPolicy)
	if err != nil {
		return nil, err
	}
	log := p.Logger
	if log == nil {
		log = zap.NewNop()
	}
	now := p.now
	if now == nil {
		now = time.Now
	}
	newID := p.newID
	if newID == nil {
		newID = func() string { return uuid.New().String() }
	}

	start := now()
	run := &report.Run{
		ID:          newID(),
		Category:    req.Category,
		OutputName:  req.OutputName,
		Product:     req.Product,
		Provider:    p.Generator.Name(),
		Model:       p.Generator.Model(),
		MixedPolicy: policy,
		StartedAt:   start,
	}
	log = log.With(zap.String("run_id", run.ID),
		zap.String("provider", run.Provider),
		zap.String("model", run.Model))

	prepared := reviews.Prepare(req.Reviews, req.MaxWords)
	classifying := len(prepared)
	if req.NumReviews > 0 {
		classifying = min(classifying, req.NumReviews)
	}
	log.Info("prepared reviews",
		zap.Int("raw", len(req.Reviews)),
		zap.Int("kept", len(prepared)),
		zap.Int("classifying", classifying))

	vocab := extract.NewVocabulary()
	vocab.Seed(req.Seed...)

	opts := []extract.Option{
		extract.WithRetryPolicy(p.Retry),
		extract.WithLogger(log),
		extract.WithTemperature(p.Temperature),
	}
	if p.Cache != nil {
		opts = append(opts, extract.WithCache(p.Cache))
	}
	if p.MaxTokens > 0 {
		opts = append(opts, extract.WithMaxTokens(p.MaxTokens))
	}
	runner := &extract.Runner{
		Classifier: extract.NewClassifier(p.Generator, opts...),
		Product:    req.Product.Title,
		Vocabulary: vocab,
		Logger:     log,
		OnProgress: p.OnProgress,
	}
	batch, err := runner.Run(ctx, prepared, req.NumReviews)
	if err != nil {
		return nil, err
	}
	log.Info("classified reviews",
		zap.Int("classified", batch.Stats.Classified),
		zap.Int("skipped", batch.Stats.Skipped),
		zap.Int("vocabulary", len(batch.Vocabulary)))

	agg, err := aggregate.Aggregate(batch.Results, policy)
	if err != nil {
		return nil, err
	}
	tables, err := report.Build(agg, reviews.DedupeRecords(reviews.Records(req.Reviews)))
	if err != nil {
		return nil, fmt.Errorf("building report: %w", err)
	}

	run.Stats = batch.Stats
	run.Vocabulary = batch.Vocabulary
	run.Tables = tables
	run.DurationMs = now().Sub(start).Milliseconds()
	return run, nil
}
