// Package datasource abstracts where pipeline input bytes come from.
package datasource

import (
	"context"
	"io"
)

// Source opens a readable stream of input bytes. Callers close it.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}
