package extract

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dshills/reviewlens/internal/reviews"
)

// ReviewClassifier is the per-review step used by Runner. *Classifier
// implements it.
type ReviewClassifier interface {
	Classify(ctx context.Context, review reviews.Review, known []string, product string) (*ReviewResult, error)
}

// Runner classifies reviews one at a time, growing the vocabulary as it goes
// so each review sees every name produced before it.
type Runner struct {
	Classifier ReviewClassifier
	Product    string
	// Vocabulary may be pre-seeded; nil means start empty.
	Vocabulary *Vocabulary
	Logger     *zap.Logger
	// OnProgress, when set, is called after each review.
	OnProgress func(done, total int)
}

// Run classifies the first limit reviews (all when limit <= 0) in order.
// A review whose responses never validate is skipped. Any other error stops
// the run.
func (r *Runner) Run(ctx context.Context, revs []reviews.Review, limit int) (Batch, error) {
	log := r.Logger
	if log == nil {
		log = zap.NewNop()
	}
	vocab := r.Vocabulary
	if vocab == nil {
		vocab = NewVocabulary()
	}
	if limit > 0 && limit < len(revs) {
		revs = revs[:limit]
	}

	batch := Batch{Results: []ReviewResult{}}
	total := len(revs)
	for i, rev := range revs {
		if err := ctx.Err(); err != nil {
			return batch, err
		}
		batch.Stats.Attempted++

		result, err := r.Classifier.Classify(ctx, rev, vocab.Current(), r.Product)
		if err != nil {
			batch.Vocabulary = vocab.Current()
			return batch, fmt.Errorf("classifying review %s: %w", rev.ID, err)
		}
		if result == nil {
			batch.Stats.Skipped++
			log.Warn("review skipped", zap.String("review_id", rev.ID))
		} else {
			pending := make(map[string]string)
			for _, m := range result.Attributes {
				if existing, ok := nearDuplicate(vocab, pending, m.Attribute); ok {
					batch.Stats.NearDuplicates++
					log.Warn("new attribute differs from a known one only in case or spacing",
						zap.String("review_id", rev.ID),
						zap.String("attribute", m.Attribute),
						zap.String("existing", existing))
				}
			}
			vocab.Observe(result)
			batch.Results = append(batch.Results, *result)
			batch.Stats.Classified++
			log.Debug("review classified",
				zap.String("review_id", rev.ID),
				zap.Int("attributes", len(result.Attributes)))
		}

		if r.OnProgress != nil {
			r.OnProgress(i+1, total)
		}
	}

	batch.Vocabulary = vocab.Current()
	return batch, nil
}

// nearDuplicate reports the name that attr collides with after folding,
// looking first at the vocabulary and then at names earlier in the same
// result, which pending collects.
func nearDuplicate(vocab *Vocabulary, pending map[string]string, attr string) (string, bool) {
	if existing, ok := vocab.NearDuplicate(attr); ok {
		return existing, true
	}
	if vocab.Contains(attr) {
		return "", false
	}
	key := foldKey(attr)
	prev, seen := pending[key]
	if !seen {
		pending[key] = attr
		return "", false
	}
	return prev, prev != attr
}
