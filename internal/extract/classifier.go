package extract

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/dshills/reviewlens/internal/cache"
	"github.com/dshills/reviewlens/internal/providers"
	"github.com/dshills/reviewlens/internal/reviews"
)

const defaultMaxTokens = 2048

// Classifier turns one review into a validated ReviewResult using a
// text-generation backend.
type Classifier struct {
	gen         providers.Generator
	cache       cache.Store
	policy      RetryPolicy
	log         *zap.Logger
	maxTokens   int
	temperature *float64
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithCache stores validated responses in s and reuses them on later calls.
func WithCache(s cache.Store) Option {
	return func(c *Classifier) { c.cache = s }
}

// WithRetryPolicy replaces DefaultRetryPolicy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Classifier) { c.policy = p }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Classifier) {
		if l != nil {
			c.log = l
		}
	}
}

func WithMaxTokens(n int) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithTemperature overrides the sampling temperature (default 0).
func WithTemperature(t float64) Option {
	return func(c *Classifier) { c.temperature = providers.Temperature(t) }
}

// NewClassifier creates a Classifier for gen.
func NewClassifier(gen providers.Generator, opts ...Option) *Classifier {
	c := &Classifier{
		gen:         gen,
		policy:      DefaultRetryPolicy(),
		log:         zap.NewNop(),
		maxTokens:   defaultMaxTokens,
		temperature: providers.Temperature(0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify extracts the attributes discussed in review. known is the
// vocabulary snapshot offered to the model and used to check its answer.
//
// A response that fails validation on every attempt yields (nil, nil); the
// review is skipped. Backend errors are returned immediately.
func (c *Classifier) Classify(ctx context.Context, review reviews.Review, known []string, product string) (*ReviewResult, error) {
	req := providers.Request{
		SystemPrompt: SystemPrompt(),
		UserPrompt:   BuildUserPrompt(product, known, review),
		MaxTokens:    c.maxTokens,
		Temperature:  c.temperature,
	}
	log := c.log.With(
		zap.String("review_id", review.ID),
		zap.String("provider", c.gen.Name()),
		zap.String("model", c.gen.Model()),
	)

	var key string
	if c.cache != nil && c.cache.Enabled() {
		key = cache.BuildCacheKey(c.gen.Name(), c.gen.Model(), req.SystemPrompt+"\n"+req.UserPrompt)
		if content, ok := c.cache.Get(ctx, key); ok {
			if result, err := parseReviewResult(content, review, known); err == nil {
				log.Debug("cache hit")
				return result, nil
			}
			log.Debug("discarding cached response that no longer validates")
		}
	}

	var result *ReviewResult
	attempts, err := c.policy.Do(ctx, func(attempt int) error {
		resp, err := c.gen.Generate(ctx, req)
		if errors.Is(err, providers.ErrEmptyResponse) {
			err = &ValidationError{Reason: "empty model response", Err: err}
			log.Warn("rejected model response", zap.Int("attempt", attempt), zap.Error(err))
			return err
		}
		if err != nil {
			return fmt.Errorf("generating classification: %w", err)
		}
		parsed, err := parseReviewResult(resp.Content, review, known)
		if err != nil {
			log.Warn("rejected model response", zap.Int("attempt", attempt), zap.Error(err))
			return err
		}
		result = parsed
		if key != "" {
			if err := c.cache.Put(ctx, key, resp.Content); err != nil {
				log.Warn("cache write failed", zap.Error(err))
			}
		}
		return nil
	})
	if err != nil {
		if c.policy.retryable(err) {
			log.Warn("skipping review after repeated invalid responses",
				zap.Int("attempt", attempts), zap.Error(err))
			return nil, nil
		}
		return nil, err
	}
	return result, nil
}
