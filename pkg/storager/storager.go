package storager

import (
	"context"
	"fmt"
	"io"
	"strings"

	// _ "go.beyondstorage.io/services/azblob/v3"
	// _ "go.beyondstorage.io/services/gcs/v3"
	_ "go.beyondstorage.io/services/minio"
	_ "go.beyondstorage.io/services/s3/v3"

	"go.beyondstorage.io/v5/services"
	"go.beyondstorage.io/v5/types"

	"github.com/flowshot-io/zipfolders/pkg/storage/fs"
)

// LocalScheme selects a plain directory instead of a storage service.
const LocalScheme = "fs://"

type (
	// Writer is the part of types.Storager a Publisher needs.
	Writer interface {
		WriteWithContext(ctx context.Context, path string, r io.Reader, size int64, pairs ...types.Pair) (int64, error)
	}

	// Publisher copies finished archives into object storage.
	Publisher struct {
		store Writer
	}
)

// New opens a storage target from a connection string such as
// "s3://bucket/prefix?credential=hmac:key:secret&endpoint=https:host",
// or "fs:///path/to/dir" for a local directory.
func New(connStr string) (Writer, error) {
	if root, ok := strings.CutPrefix(connStr, LocalScheme); ok {
		if root == "" {
			return nil, fmt.Errorf("missing directory in %s", connStr)
		}
		return fs.NewBackend(root), nil
	}

	return services.NewStoragerFromString(connStr)
}

func NewPublisher(store Writer) *Publisher {
	return &Publisher{store: store}
}

// Publish stores size bytes from r under name, relative to the storager's work dir.
func (p *Publisher) Publish(ctx context.Context, name string, r io.Reader, size int64) error {
	n, err := p.store.WriteWithContext(ctx, name, r, size)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	if n != size {
		return fmt.Errorf("short write for %s: wrote %d of %d bytes", name, n, size)
	}

	return nil
}
