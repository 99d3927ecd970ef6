// Package storage persists run artifacts. Sinks place CSV and JSON files in a
// local directory or an S3 bucket; SQLiteStore keeps runs queryable.
package storage
