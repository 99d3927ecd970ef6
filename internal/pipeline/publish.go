package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dshills/reviewlens/internal/output"
	"github.com/dshills/reviewlens/internal/report"
	"github.com/dshills/reviewlens/internal/storage"
)

// RunSaver persists a completed run. *storage.SQLiteStore implements it.
type RunSaver interface {
	SaveRun(ctx context.Context, run *report.Run) error
}

// Publisher stores a run's artifacts and, optionally, the run itself.
type Publisher struct {
	Sink    storage.Sink
	Formats []string
	Store   RunSaver
	Logger  *zap.Logger
}

// Publish writes the artifacts for every configured format and returns
// where they went.
func (p *Publisher) Publish(ctx context.Context, run *report.Run) ([]string, error) {
	log := p.Logger
	if log == nil {
		log = zap.NewNop()
	}

	artifacts, err := output.Artifacts(run, p.Formats)
	if err != nil {
		return nil, err
	}
	locations, err := storage.PutAll(ctx, p.Sink, artifacts)
	if err != nil {
		return locations, err
	}
	for _, loc := range locations {
		log.Info("wrote artifact", zap.String("location", loc))
	}

	if p.Store != nil {
		if err := p.Store.SaveRun(ctx, run); err != nil {
			return locations, fmt.Errorf("saving run to database: %w", err)
		}
		log.Debug("saved run to database", zap.String("run_id", run.ID))
	}
	return locations, nil
}

// PublishCleanup stores a consolidation result next to the run's other
// artifacts.
func (p *Publisher) PublishCleanup(ctx context.Context, run *report.Run, data []byte) (string, error) {
	return p.Sink.Put(ctx, storage.Artifact{
		Name:        output.ArtifactName(run, "cleanup", "json"),
		ContentType: storage.ContentTypeJSON,
		Data:        data,
	})
}
