// Package cli wires together the Cobra command tree for the reviewlens binary.
//
// It defines the root command and all subcommands (summarize, cleanup, show,
// config, models, cache, version), binds flags, reads configuration, runs the
// summarization pipeline and returns deterministic exit codes:
// 0 success, 2 usage, 3 configuration or credentials, 4 runtime, 5 data
// integrity.
package cli
