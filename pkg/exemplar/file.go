package exemplar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/vozaid/vozaid/pkg/storage"
)

// DefaultSnapshotPath is the snapshot file name within the data
// directory.
const DefaultSnapshotPath = "intent_embeddings.json"

// FileSnapshot persists the exemplar mapping as one JSON document on a
// [storage.FileStore]. With a [storage.Local] store this is a plain file
// in the data directory; with [storage.S3Store] the same document lives
// in an object store shared across restarts and hosts.
type FileSnapshot struct {
	fs   storage.FileStore
	path string
}

// NewFileSnapshot creates a snapshot backend writing to path on fs.
// An empty path uses DefaultSnapshotPath.
func NewFileSnapshot(fs storage.FileStore, path string) *FileSnapshot {
	if path == "" {
		path = DefaultSnapshotPath
	}
	return &FileSnapshot{fs: fs, path: path}
}

// Load reads and decodes the snapshot document.
// A missing file yields an empty mapping with no error; the store treats
// that as a fresh start.
func (f *FileSnapshot) Load(ctx context.Context) (map[string][][]float32, error) {
	data, err := f.fs.ReadFile(ctx, f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string][][]float32{}, nil
		}
		return nil, fmt.Errorf("exemplar: read snapshot %s: %w", f.path, err)
	}

	var m map[string][][]float32
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("exemplar: decode snapshot %s: %w", f.path, err)
	}
	return m, nil
}

// Save encodes the full mapping and replaces the snapshot document.
func (f *FileSnapshot) Save(ctx context.Context, m map[string][][]float32) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("exemplar: encode snapshot: %w", err)
	}
	if err := f.fs.WriteFile(ctx, f.path, data); err != nil {
		return fmt.Errorf("exemplar: write snapshot %s: %w", f.path, err)
	}
	return nil
}
