package storage

import (
	"context"
	"fmt"
	"strings"
)

// Content types used by the artifacts this tool produces.
const (
	ContentTypeCSV  = "text/csv"
	ContentTypeJSON = "application/json"
)

// Artifact is one named output file.
type Artifact struct {
	// Name is a slash-separated relative path, e.g. "Toys/Toys_summary_run1.csv".
	Name        string
	ContentType string
	Data        []byte
}

// Sink stores artifacts and reports where each one went.
type Sink interface {
	Put(ctx context.Context, a Artifact) (string, error)
}

// S3Options configures the S3 sink. Empty values fall back to the standard
// AWS configuration chain.
type S3Options struct {
	Region       string
	Profile      string
	UsePathStyle bool
}

// Open returns the sink for target: an "s3://bucket/prefix" URL selects S3,
// anything else is a local directory.
func Open(ctx context.Context, target string, s3opts S3Options) (Sink, error) {
	if strings.HasPrefix(target, "s3://") {
		bucket, prefix, err := ParseS3URL(target)
		if err != nil {
			return nil, err
		}
		return NewS3Sink(ctx, bucket, prefix, s3opts)
	}
	if target == "" {
		return nil, fmt.Errorf("output directory is empty")
	}
	return &LocalSink{Dir: target}, nil
}

// PutAll stores artifacts in order and returns their locations. It stops at
// the first failure.
func PutAll(ctx context.Context, sink Sink, artifacts []Artifact) ([]string, error) {
	locations := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		loc, err := sink.Put(ctx, a)
		if err != nil {
			return locations, fmt.Errorf("storing %s: %w", a.Name, err)
		}
		locations = append(locations, loc)
	}
	return locations, nil
}
