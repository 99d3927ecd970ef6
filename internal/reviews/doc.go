// Package reviews holds the review and product types shared by the pipeline
// and the preparation step that filters raw dataset records before
// classification.
//
// [Prepare] drops records without a title or text and records longer than the
// configured word ceiling. [DedupeRecords] collapses the review metadata
// table to one row per review id so detail rows can be joined against it.
package reviews
