package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowshot-io/zipfolders/pkg/storage/fs"
)

func TestWrite(t *testing.T) {
	root := filepath.Join(t.TempDir(), "mirror")
	backend := fs.NewBackend(root)

	n, err := backend.WriteWithContext(context.Background(), "nested/a.zip", strings.NewReader("archive"), 7)
	require.NoError(t, err)
	assert.EqualValues(t, 7, n)

	data, err := os.ReadFile(filepath.Join(root, "nested", "a.zip"))
	require.NoError(t, err)
	assert.Equal(t, "archive", string(data))

}

func TestWriteRefusesSourceFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.zip")
	require.NoError(t, os.WriteFile(path, []byte("archive"), 0o644))

	src, err := os.Open(path)
	require.NoError(t, err)
	defer src.Close()

	_, err = fs.NewBackend(root).WriteWithContext(context.Background(), "a.zip", src, 7)
	assert.ErrorIs(t, err, fs.ErrSameFile)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "archive", string(data), "source must not be truncated")
}

func TestWriteFromOtherFile(t *testing.T) {
	srcDir, root := t.TempDir(), t.TempDir()
	path := filepath.Join(srcDir, "a.zip")
	require.NoError(t, os.WriteFile(path, []byte("archive"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.zip"), []byte("stale"), 0o644))

	src, err := os.Open(path)
	require.NoError(t, err)
	defer src.Close()

	_, err = fs.NewBackend(root).WriteWithContext(context.Background(), "a.zip", src, 7)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, "a.zip"))
	require.NoError(t, err)
	assert.Equal(t, "archive", string(data))
}

func TestWriteShortReader(t *testing.T) {
	backend := fs.NewBackend(t.TempDir())

	n, err := backend.WriteWithContext(context.Background(), "a.zip", strings.NewReader("abc"), 10)
	assert.Error(t, err)
	assert.EqualValues(t, 3, n)
}

func TestWriteRejectsEscape(t *testing.T) {
	backend := fs.NewBackend(t.TempDir())

	_, err := backend.WriteWithContext(context.Background(), "../outside.zip", strings.NewReader("x"), 1)
	assert.ErrorContains(t, err, "escapes")
}

func TestWriteCancelled(t *testing.T) {
	backend := fs.NewBackend(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := backend.WriteWithContext(ctx, "a.zip", strings.NewReader("x"), 1)
	assert.ErrorIs(t, err, context.Canceled)
}
