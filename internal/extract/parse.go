package extract

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/dshills/reviewlens/internal/reviews"
)

// stripFence trims whitespace and removes a surrounding markdown code fence.
func stripFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	lines := strings.Split(content, "\n")
	if len(lines) < 2 {
		return strings.Trim(content, "`")
	}
	// Remove first line (```json) and last line (```)
	end := len(lines)
	if strings.TrimSpace(lines[end-1]) == "```" {
		end--
	}
	return strings.TrimSpace(strings.Join(lines[1:end], "\n"))
}

// parseReviewResult turns raw model text into a ReviewResult that has passed
// schema validation and the semantic checks against review and known.
func parseReviewResult(content string, review reviews.Review, known []string) (*ReviewResult, error) {
	if err := compileSchemas(); err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}

	content = stripFence(content)
	if err := validateDocument(reviewResultSchema, content); err != nil {
		return nil, err
	}

	var result ReviewResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, &ValidationError{Reason: "decoding response", Err: err}
	}

	if err := checkMentions(&result, review, known); err != nil {
		return nil, err
	}
	result.ReviewID = review.ID
	if result.Attributes == nil {
		result.Attributes = []AttributeMention{}
	}
	return &result, nil
}

// checkMentions enforces the rules the schema cannot express. A "new"
// mention whose name is already known is rewritten to "existing".
func checkMentions(result *ReviewResult, review reviews.Review, known []string) error {
	for i := range result.Attributes {
		m := &result.Attributes[i]
		if !strings.Contains(review.Text, m.Evidence) && !strings.Contains(review.Title, m.Evidence) {
			return &ValidationError{
				Reason: fmt.Sprintf("attribute %q: evidence is not a verbatim quote from the review", m.Attribute),
			}
		}
		inVocab := slices.Contains(known, m.Attribute)
		switch m.MatchType {
		case MatchExisting:
			if !inVocab {
				return &ValidationError{
					Reason: fmt.Sprintf("attribute %q is marked existing but is not in the vocabulary", m.Attribute),
				}
			}
		case MatchNew:
			if inVocab {
				m.MatchType = MatchExisting
			}
		}
	}
	return nil
}
