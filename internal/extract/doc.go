// Package extract classifies reviews into attribute mentions with a language
// model and tracks the growing attribute vocabulary of a run.
//
// Model output is never trusted: each response is stripped of a markdown
// fence, validated against an embedded JSON Schema, decoded, and then checked
// against the review (evidence must be quoted verbatim) and the vocabulary
// snapshot it was given. Rejected responses are retried under a RetryPolicy;
// a review that never yields a valid response is skipped, not fatal.
//
// Runner drives a batch sequentially. Ordering matters: every review is
// classified against the vocabulary produced by all reviews before it.
package extract
