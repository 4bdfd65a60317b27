// Package blob abstracts the object storage collaborator: put bytes under a
// path, get back a publicly resolvable URL.
package blob

import "context"

type Store interface {
	Put(ctx context.Context, path string, data []byte, contentType string) error
	PublicURL(path string) string
}
