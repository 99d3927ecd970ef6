package report

import (
	"time"

	"github.com/dshills/reviewlens/internal/aggregate"
	"github.com/dshills/reviewlens/internal/extract"
	"github.com/dshills/reviewlens/internal/reviews"
)

// Run describes one completed summarization and carries its tables.
type Run struct {
	ID          string                `json:"runId"`
	Category    string                `json:"category"`
	OutputName  string                `json:"outputName"`
	Product     reviews.Product       `json:"product"`
	Provider    string                `json:"provider"`
	Model       string                `json:"model"`
	MixedPolicy aggregate.MixedPolicy `json:"mixedPolicy"`
	StartedAt   time.Time             `json:"startedAt"`
	DurationMs  int64                 `json:"durationMs"`
	Stats       extract.BatchStats    `json:"stats"`
	Vocabulary  []string              `json:"vocabulary"`
	Tables      Tables                `json:"tables"`
}
