// Package output renders a completed run.
//
// Display formats (see [GetWriter]):
//   - text     human-readable terminal summary (default)
//   - markdown summary table with collapsible evidence per attribute
//   - json     the full run
//   - none     nothing
//
// [Artifacts] renders the files that are stored for a run: the summary and
// details tables as CSV, and optionally the whole run as JSON.
package output
