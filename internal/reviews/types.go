package reviews

import "strconv"

// DefaultMaxWords is the word ceiling applied when Prepare is given a
// non-positive limit.
const DefaultMaxWords = 100

// RawReview is one review record in the Amazon-Reviews-2023 field layout.
type RawReview struct {
	ParentASIN       string   `json:"parent_asin"`
	ASIN             string   `json:"asin"`
	UserID           string   `json:"user_id"`
	Title            string   `json:"title"`
	Text             string   `json:"text"`
	Timestamp        int64    `json:"timestamp"`
	Rating           *float64 `json:"rating"`
	HelpfulVote      int      `json:"helpful_vote"`
	VerifiedPurchase bool     `json:"verified_purchase"`
}

// ID returns the review identifier, the decimal form of its timestamp.
func (r RawReview) ID() string {
	return strconv.FormatInt(r.Timestamp, 10)
}

// Review is a review in the shape consumed by the classifier.
type Review struct {
	ID     string   `json:"review_id"`
	Title  string   `json:"title"`
	Text   string   `json:"text"`
	Rating *float64 `json:"rating,omitempty"`
}

// Product describes the product whose reviews are summarized.
type Product struct {
	ParentASIN    string   `json:"parent_asin"`
	Title         string   `json:"title"`
	MainCategory  string   `json:"main_category"`
	AverageRating float64  `json:"average_rating"`
	RatingNumber  int      `json:"rating_number"`
	Store         string   `json:"store"`
	Features      []string `json:"features,omitempty"`
}

// Record is a row of review metadata that detail rows are joined against.
type Record struct {
	ReviewID string
	Title    string
	Text     string
	Rating   *float64
}

// Records projects raw reviews onto metadata records without deduplicating.
func Records(raw []RawReview) []Record {
	out := make([]Record, 0, len(raw))
	for _, r := range raw {
		out = append(out, Record{
			ReviewID: r.ID(),
			Title:    r.Title,
			Text:     r.Text,
			Rating:   r.Rating,
		})
	}
	return out
}
