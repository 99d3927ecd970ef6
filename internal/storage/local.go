package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalSink writes artifacts below a directory on disk.
type LocalSink struct {
	Dir string
}

func (l *LocalSink) Put(ctx context.Context, a Artifact) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := filepath.Join(l.Dir, filepath.FromSlash(a.Name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(path, a.Data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
