// Package file implements the local-filesystem data source for sales files.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Local opens a sales file from the local disk.
type Local struct{ path string }

// NewLocal returns a source bound to path. The value is safe for concurrent
// use as long as the path is valid for concurrent reads.
func NewLocal(path string) *Local { return &Local{path: path} }

// Open opens the configured path for reading. A context that is already
// canceled short-circuits without touching the filesystem. Filesystem errors
// are wrapped with the path and stay matchable with errors.Is (for example
// os.ErrNotExist). The file is hinted for sequential reading; the pipeline
// consumes it front to back exactly once.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	adviseSequential(f)
	return f, nil
}
