// Reviewlens turns raw product reviews into an attribute-level summary using
// an LLM classifier.
//
// It picks the most-reviewed product from an Amazon-Reviews-2023 category,
// extracts the attributes each review talks about together with their
// sentiment, and writes summary and detail tables with deterministic exit
// codes.
//
// Usage:
//
//	reviewlens summarize --category Toys_and_Games --num-reviews 50
//	reviewlens summarize --output-dir s3://bucket/runs --artifacts csv,json
//	reviewlens cleanup --summary Results/Toys_and_Games/Toys_and_Games_summary_trial.csv
//	reviewlens config init
//	reviewlens models doctor
package main
