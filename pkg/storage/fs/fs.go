package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.beyondstorage.io/v5/types"
)

// ErrSameFile is returned when the destination is the file being read.
var ErrSameFile = errors.New("destination is the source file")

// Backend stores objects as plain files below Root.
type Backend struct {
	Root string
}

func NewBackend(root string) *Backend {
	return &Backend{Root: root}
}

// WriteWithContext copies size bytes from reader to Root/path, creating
// parent directories and replacing any existing file. Pairs are ignored.
// Writing a file onto itself is refused.
func (fs *Backend) WriteWithContext(ctx context.Context, path string, reader io.Reader, size int64, pairs ...types.Pair) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	fullPath, err := fs.resolve(path)
	if err != nil {
		return 0, err
	}

	if err := checkNotSource(reader, fullPath); err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), os.ModePerm); err != nil {
		return 0, err
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	n, err := io.CopyN(file, reader, size)
	if err != nil {
		return n, err
	}

	return n, file.Close()
}

func (fs *Backend) resolve(path string) (string, error) {
	fullPath := filepath.Join(fs.Root, path)
	rel, err := filepath.Rel(fs.Root, fullPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %s escapes %s", path, fs.Root)
	}

	return fullPath, nil
}

// checkNotSource fails when reader is an open file that already lives at
// fullPath, since creating fullPath would truncate it.
func checkNotSource(reader io.Reader, fullPath string) error {
	src, ok := reader.(interface{ Stat() (os.FileInfo, error) })
	if !ok {
		return nil
	}

	srcInfo, err := src.Stat()
	if err != nil {
		return nil
	}

	dstInfo, err := os.Stat(fullPath)
	if err != nil {
		return nil
	}

	if os.SameFile(srcInfo, dstInfo) {
		return fmt.Errorf("%w: %s", ErrSameFile, fullPath)
	}

	return nil
}
