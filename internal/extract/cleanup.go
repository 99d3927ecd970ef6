package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dshills/reviewlens/internal/providers"
)

// Consolidation is a model-proposed cleanup of a run's vocabulary.
type Consolidation struct {
	FinalAttributes     []MergedAttribute    `json:"final_attributes"`
	DiscardedAttributes []DiscardedAttribute `json:"discarded_attributes"`
}

// MergedAttribute is one canonical name and the names folded into it.
type MergedAttribute struct {
	Attribute    string   `json:"attribute"`
	CombinedFrom []string `json:"combined_from"`
}

type DiscardedAttribute struct {
	Attribute string `json:"attribute"`
	Reason    string `json:"reason"`
}

const cleanupSystemPrompt = `You are an expert in product attribute taxonomy design.

You will be given a product name and a list of extracted attribute names that may contain redundancy, noise or low-quality attributes.

Rules:
1. Remove attributes that do NOT present any meaningful value to a customer reading the reviews.
2. Group attributes that refer to the same underlying product concept and create ONE canonical name per group. Canonical names are concise (1-3 words), standardized, lowercase and meaningful to a buyer.
3. For each final attribute list ALL original attributes combined into it. If an attribute is valid and cannot be merged, keep it as-is.
4. List each discarded attribute separately with a short reason.
5. Do NOT invent new attributes beyond consolidation and do NOT lose information when merging.

You MUST respond with ONLY a JSON object. No markdown, no explanation, no preamble.

The object must have this exact structure:
{
  "final_attributes": [
    {"attribute": "<canonical attribute name>", "combined_from": ["<original attribute>", "..."]}
  ],
  "discarded_attributes": [
    {"attribute": "<original attribute>", "reason": "<short reason>"}
  ]
}`

// BuildCleanupPrompt renders the attribute list for consolidation.
func BuildCleanupPrompt(product string, attributes []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Product:\n%s\n\n", product)
	b.WriteString("Extracted attributes:\n")
	b.WriteString(strings.Join(attributes, "\n"))
	b.WriteString("\n")
	return b.String()
}

// Cleanup asks gen to consolidate attributes. It makes one attempt; a
// response that does not match the consolidation schema is a
// *ValidationError.
func Cleanup(ctx context.Context, gen providers.Generator, product string, attributes []string) (*Consolidation, error) {
	if len(attributes) == 0 {
		return &Consolidation{FinalAttributes: []MergedAttribute{}, DiscardedAttributes: []DiscardedAttribute{}}, nil
	}
	if err := compileSchemas(); err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}

	resp, err := gen.Generate(ctx, providers.Request{
		SystemPrompt: cleanupSystemPrompt,
		UserPrompt:   BuildCleanupPrompt(product, attributes),
		MaxTokens:    4096,
		Temperature:  providers.Temperature(0),
	})
	if err != nil {
		return nil, fmt.Errorf("generating consolidation: %w", err)
	}

	content := stripFence(resp.Content)
	if err := validateDocument(consolidationSchema, content); err != nil {
		return nil, err
	}
	var out Consolidation
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, &ValidationError{Reason: "decoding consolidation", Err: err}
	}
	if out.DiscardedAttributes == nil {
		out.DiscardedAttributes = []DiscardedAttribute{}
	}
	return &out, nil
}
