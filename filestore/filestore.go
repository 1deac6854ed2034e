// Package filestore stores uploaded material files under opaque keys. The
// fs store backs development, the gcs store production; both are selected
// by configuration in main.
package filestore

import (
	"context"
	"io"
)

type Store interface {
	Put(ctx context.Context, key string, r io.Reader) (string, error) // returns canonical key
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
