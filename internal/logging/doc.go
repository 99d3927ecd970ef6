// Package logging builds the zap logger shared by the command tree.
package logging
