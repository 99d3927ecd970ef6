package extract

// Sentiment is the polarity of a review toward one attribute.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentMixed    Sentiment = "mixed"
	// SentimentNeutral is never produced by the classifier; downstream
	// aggregation tolerates it.
	SentimentNeutral Sentiment = "neutral"
)

// MatchType records whether a mention reuses a vocabulary entry.
type MatchType string

const (
	MatchExisting MatchType = "existing"
	MatchNew      MatchType = "new"
)

// AttributeMention is one attribute found in one review.
type AttributeMention struct {
	Attribute  string    `json:"attribute"`
	MatchType  MatchType `json:"match_type"`
	Sentiment  Sentiment `json:"sentiment"`
	Evidence   string    `json:"evidence"`
	Confidence float64   `json:"confidence"`
}

// ReviewResult is the validated classification of a single review.
type ReviewResult struct {
	ReviewID   string             `json:"review_id"`
	Attributes []AttributeMention `json:"attributes"`
}

// BatchStats counts what happened during a batch run.
type BatchStats struct {
	Attempted      int `json:"attempted"`
	Classified     int `json:"classified"`
	Skipped        int `json:"skipped"`
	NearDuplicates int `json:"nearDuplicates"`
}

// Batch is the outcome of classifying a list of reviews in order.
type Batch struct {
	Results    []ReviewResult `json:"results"`
	Vocabulary []string       `json:"vocabulary"`
	Stats      BatchStats     `json:"stats"`
}
