// Package datasource abstracts where the raw sales file comes from. A
// Source yields a byte stream; the parsers decide what the bytes mean.
package datasource

import (
	"context"
	"io"
)

// Source is anything that can open the raw input for reading. Open respects
// the context; the caller closes the reader.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// ReadAll opens src and drains it. The pipeline wants the whole input in
// memory anyway: format sniffing looks at the head and the Excel reader
// needs random access.
func ReadAll(ctx context.Context, src Source) ([]byte, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
