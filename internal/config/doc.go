// Package config loads and merges reviewlens configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (REVIEWLENS_PROVIDER, REVIEWLENS_MODEL, REVIEWLENS_CATEGORY, etc.)
//  3. Config file ($XDG_CONFIG_HOME/reviewlens/config.json, or a JSON/YAML file given with --config)
//  4. Built-in defaults
//
// Use [Load] or [LoadFrom] to obtain a merged [Config], [Config.Validate]
// before running, [Save] to write the config file and [SetField] to update a
// single dotted key such as "cache.backend".
package config
