package aggregate

import (
	"fmt"
	"strings"

	"github.com/dshills/reviewlens/internal/extract"
)

// MixedPolicy decides how a "mixed" mention is counted.
type MixedPolicy string

const (
	MixedBoth     MixedPolicy = "both"
	MixedNeither  MixedPolicy = "neither"
	MixedPositive MixedPolicy = "positive"
	MixedNegative MixedPolicy = "negative"
)

// MixedPolicies lists the accepted policy names.
var MixedPolicies = []MixedPolicy{MixedBoth, MixedNeither, MixedPositive, MixedNegative}

// ConfigError reports an invalid aggregation setting.
type ConfigError struct {
	Field string
	Value string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}

// ParseMixedPolicy validates a policy name.
func ParseMixedPolicy(s string) (MixedPolicy, error) {
	for _, p := range MixedPolicies {
		if string(p) == s {
			return p, nil
		}
	}
	return "", &ConfigError{Field: "mixed policy", Value: s}
}

// EvidenceEntry ties one quote to the review it came from.
type EvidenceEntry struct {
	ReviewID   string            `json:"review_id"`
	Sentiment  extract.Sentiment `json:"sentiment"`
	Evidence   string            `json:"evidence"`
	Confidence float64           `json:"confidence"`
}

// AttributeAggregate holds the counters for one attribute across reviews.
type AttributeAggregate struct {
	MentionCount  int `json:"mention_count"`
	PositiveCount int `json:"positive_count"`
	NegativeCount int `json:"negative_count"`
	// NeutralCount is carried for output compatibility; neutral mentions
	// change no counter, so it stays zero.
	NeutralCount int             `json:"neutral_count"`
	Evidence     []EvidenceEntry `json:"evidence"`
}

// Aggregation maps attribute names to their aggregates. Order lists the
// names in the order they were first counted.
type Aggregation struct {
	Order   []string                       `json:"order"`
	Entries map[string]*AttributeAggregate `json:"entries"`
}

func newAggregation() *Aggregation {
	return &Aggregation{Order: []string{}, Entries: make(map[string]*AttributeAggregate)}
}

func (a *Aggregation) getOrInsert(name string) *AttributeAggregate {
	if e, ok := a.Entries[name]; ok {
		return e
	}
	e := &AttributeAggregate{Evidence: []EvidenceEntry{}}
	a.Entries[name] = e
	a.Order = append(a.Order, name)
	return e
}

// Aggregate folds per-review results into per-attribute counters. The
// policy is validated before any result is read.
func Aggregate(results []extract.ReviewResult, policy MixedPolicy) (*Aggregation, error) {
	if _, err := ParseMixedPolicy(string(policy)); err != nil {
		return nil, err
	}

	agg := newAggregation()
	for _, r := range results {
		for _, m := range r.Attributes {
			if m.Attribute == "" {
				continue
			}
			sentiment := extract.Sentiment(strings.ToLower(strings.TrimSpace(string(m.Sentiment))))
			if sentiment == extract.SentimentNeutral {
				continue
			}

			e := agg.getOrInsert(m.Attribute)
			e.MentionCount++
			e.Evidence = append(e.Evidence, EvidenceEntry{
				ReviewID:   r.ReviewID,
				Sentiment:  sentiment,
				Evidence:   m.Evidence,
				Confidence: m.Confidence,
			})

			switch sentiment {
			case extract.SentimentPositive:
				e.PositiveCount++
			case extract.SentimentNegative:
				e.NegativeCount++
			case extract.SentimentMixed:
				switch policy {
				case MixedBoth:
					e.PositiveCount++
					e.NegativeCount++
				case MixedPositive:
					e.PositiveCount++
				case MixedNegative:
					e.NegativeCount++
				}
			}
		}
	}
	return agg, nil
}
