// Package report turns an aggregation into the attribute summary table and
// the attribute/review detail table, joining details to review metadata.
package report
