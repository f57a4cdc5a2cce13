package query

import (
	"context"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"

	"github.com/spektr-org/vizgroup/engine"
	"github.com/spektr-org/vizgroup/helpers"
)

// ErrNoSource is returned when no file holds records for an object type.
var ErrNoSource = errors.New("no record source for object type")

var fileExtensions = []string{".json", ".jsonl", ".ndjson", ".yaml", ".yml", ".csv"}
var compressionExtensions = []string{"", ".gz", ".zst"}

// FileSearcher serves object types from files named after them, e.g.
// <dir>/metric.json or <dir>/texts.yaml.gz.
type FileSearcher struct {
	Dir string
	Log logr.Logger
}

// NewFileSearcher creates a FileSearcher over dir.
func NewFileSearcher(dir string, log logr.Logger) *FileSearcher {
	return &FileSearcher{Dir: dir, Log: log}
}

// Search loads the type's file and applies the JSONPath query.
func (s *FileSearcher) Search(ctx context.Context, objectType, q string) ([]engine.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.source(objectType)
	if err != nil {
		return nil, err
	}
	records, err := helpers.Load(path)
	if err != nil {
		return nil, err
	}
	out, err := Filter(records, q)
	if err != nil {
		return nil, err
	}
	s.Log.V(1).Info("file search", "type", objectType, "path", path, "loaded", len(records), "matched", len(out))
	return out, nil
}

func (s *FileSearcher) source(objectType string) (string, error) {
	for _, ext := range fileExtensions {
		for _, comp := range compressionExtensions {
			path := filepath.Join(s.Dir, objectType+ext+comp)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
	}
	return "", errors.Wrapf(ErrNoSource, "%q in %s", objectType, s.Dir)
}
