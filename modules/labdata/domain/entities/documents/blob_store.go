package documents

import (
	"context"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
)

// BlobStore abstracts where uploaded originals live. The pipeline only ever
// sees byte buffers; the upload collaborator owns retention and naming.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
}

// NewLocalStore returns a BlobStore backed by a directory. The CLI uses it;
// server deployments plug in their own object-storage implementation.
func NewLocalStore(root string) BlobStore {
	return &localStore{root: root}
}

type localStore struct {
	root string
}

func (s *localStore) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.root, filepath.Base(key)))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read blob "+key)
	}
	return data, nil
}

func (s *localStore) Put(_ context.Context, key string, data []byte) error {
	path := filepath.Join(s.root, filepath.Base(key))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write blob "+key)
	}
	return nil
}
