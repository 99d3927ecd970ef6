// Package cache stores raw model responses so re-running a summary over the
// same reviews does not pay for the same generation twice.
//
// Entries are keyed by a SHA-256 hash of the provider name, model and full
// prompt. The file backend writes one JSON file per entry under
// $XDG_CACHE_HOME/reviewlens (or the OS-appropriate equivalent) and skips
// expired entries on read. The Redis backend stores entries under the
// "reviewlens:cache:" prefix and lets Redis expire them.
package cache
