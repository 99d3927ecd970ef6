package extract

import (
	"fmt"
	"strings"

	"github.com/dshills/reviewlens/internal/reviews"
)

const systemPrompt = `You are an expert in aspect-based sentiment analysis and attribute normalization.

You will be given a product name, one customer review and a controlled vocabulary of canonical attribute names.

Rules:
1. Identify the product attributes the review talks about that would help a future customer decide.
2. If an attribute is similar to an entry of the vocabulary, you MUST use that entry EXACTLY as written (character-for-character) and set "match_type" to "existing".
3. Otherwise create a new attribute that is concise (1-3 words), standardized, lowercase and customer friendly, and set "match_type" to "new".
4. "sentiment" is "positive" when the review praises the attribute, "negative" when it complains, "mixed" when it does both.
5. "evidence" is a short quote copied verbatim from the review title or text. Do NOT infer sentiment without textual evidence.
6. "confidence" is a number from 0.0 to 1.0 for the sentiment.

You MUST respond with ONLY a JSON object. No markdown, no explanation, no preamble. Do not wrap it in a code fence.

The object must have this exact structure:
{
  "review_id": "<review id>",
  "attributes": [
    {
      "attribute": "<existing vocabulary entry or new attribute name>",
      "match_type": "existing|new",
      "sentiment": "positive|negative|mixed",
      "evidence": "<verbatim quote>",
      "confidence": 0.0-1.0
    }
  ]
}

If the review mentions no attributes, respond with an empty "attributes" array.`

// SystemPrompt returns the classification instructions.
func SystemPrompt() string {
	return systemPrompt
}

// BuildUserPrompt renders the per-review part of the instruction. The
// vocabulary is listed one entry per line, verbatim.
func BuildUserPrompt(product string, known []string, review reviews.Review) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Product name:\n%s\n\n", product)

	b.WriteString("Existing canonical attributes:\n")
	if len(known) == 0 {
		b.WriteString("(none yet)\n")
	} else {
		b.WriteString(strings.Join(known, "\n"))
		b.WriteString("\n")
	}

	b.WriteString("\n--- BEGIN REVIEW ---\n")
	fmt.Fprintf(&b, "Review ID: %s\n", review.ID)
	fmt.Fprintf(&b, "Title: %s\n", review.Title)
	fmt.Fprintf(&b, "Text: %s\n", review.Text)
	b.WriteString("--- END REVIEW ---\n")

	return b.String()
}
