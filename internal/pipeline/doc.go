// Package pipeline wires the review summarization steps together: prepare
// the raw reviews, classify them in order with a growing attribute
// vocabulary, aggregate per attribute and build the report tables. Publisher
// then stores the results.
package pipeline
