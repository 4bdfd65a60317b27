package blob

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// FSStore keeps blobs on local disk and serves them under a public base URL.
// Stands in for the managed object storage bucket in self-hosted deployments.
type FSStore struct {
	dir     string
	baseURL string
}

func NewFSStore(dir, baseURL string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "blob.NewFSStore.MkdirAll")
	}
	return &FSStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *FSStore) Put(ctx context.Context, path string, data []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full := filepath.Join(s.dir, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return errors.Wrap(err, "blob.Put.MkdirAll")
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return errors.Wrap(err, "blob.Put.WriteFile")
	}
	return nil
}

func (s *FSStore) PublicURL(path string) string {
	return s.baseURL + "/" + path
}
