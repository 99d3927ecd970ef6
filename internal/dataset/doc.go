// Package dataset reads a category of the Amazon-Reviews-2023 dump from local
// JSON Lines files (plain or gzip) and selects the most-reviewed product.
package dataset
