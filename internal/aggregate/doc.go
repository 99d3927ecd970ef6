// Package aggregate combines classified reviews into per-attribute mention,
// positive and negative counts with the supporting evidence.
package aggregate
