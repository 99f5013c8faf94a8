package archiver_test

import (
	"archive/zip"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowshot-io/zipfolders/pkg/archiver"
)

func writeTree(t *testing.T, root string, files map[string]string, dirs ...string) {
	t.Helper()
	for _, d := range dirs {
		require.NoError(t, os.MkdirAll(filepath.Join(root, d), 0o755))
	}
	for name, content := range files {
		p := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func entries(t *testing.T, path string) map[string]*zip.File {
	t.Helper()
	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })

	out := make(map[string]*zip.File)
	for _, f := range r.File {
		out[f.Name] = f
	}
	return out
}

func TestArchiveDirEntries(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "project")
	writeTree(t, src, map[string]string{
		"readme.txt":     "hello",
		"x/y.txt":        "nested",
		"x/deeper/z.bin": "zzz",
	}, "empty")

	dest := filepath.Join(base, "project.zip")
	require.NoError(t, archiver.New(nil).ArchiveDir(src, dest))

	got := entries(t, dest)
	names := make([]string, 0, len(got))
	for name := range got {
		names = append(names, name)
	}
	sort.Strings(names)

	assert.Equal(t, []string{
		"empty/",
		"readme.txt",
		"x/",
		"x/deeper/",
		"x/deeper/z.bin",
		"x/y.txt",
	}, names)

	for name, f := range got {
		assert.Equal(t, zip.Store, f.Method, name)
	}
}

func TestArchiveDirOverwrites(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "a")
	dest := filepath.Join(base, "a.zip")
	writeTree(t, src, map[string]string{"one.txt": "1", "two.txt": "2"})

	arc := archiver.New(nil)
	require.NoError(t, arc.ArchiveDir(src, dest))

	require.NoError(t, os.Remove(filepath.Join(src, "two.txt")))
	require.NoError(t, arc.ArchiveDir(src, dest))

	got := entries(t, dest)
	assert.Len(t, got, 1)
	assert.Contains(t, got, "one.txt")
}

func TestArchiveDirRoundTrip(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "src")
	files := map[string]string{
		"a.txt":       "alpha",
		"b/c.txt":     "charlie",
		"b/d/e/f.txt": "foxtrot",
	}
	writeTree(t, src, files, "b/empty")

	dest := filepath.Join(base, "src.zip")
	arc := archiver.New(nil)
	require.NoError(t, arc.ArchiveDir(src, dest))

	out := filepath.Join(base, "out")
	require.NoError(t, arc.Unarchive(dest, out))

	for name, content := range files {
		data, err := os.ReadFile(filepath.Join(out, name))
		require.NoError(t, err, name)
		assert.Equal(t, content, string(data), name)
	}

	info, err := os.Stat(filepath.Join(out, "b", "empty"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = os.Stat(filepath.Join(out, "src"))
	assert.True(t, os.IsNotExist(err), "archive must not nest the source folder name")
}

func TestArchiveDirFollowsFileLinks(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "linked")
	writeTree(t, src, map[string]string{"real.txt": "data"})
	if err := os.Symlink(filepath.Join(src, "real.txt"), filepath.Join(src, "alias.txt")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	dest := filepath.Join(base, "linked.zip")
	require.NoError(t, archiver.New(nil).ArchiveDir(src, dest))

	got := entries(t, dest)
	require.Contains(t, got, "alias.txt")
	assert.EqualValues(t, 4, got["alias.txt"].UncompressedSize64)
}

func TestArchiveDirLinkedDirectory(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "project")
	target := filepath.Join(base, "outside", "tgt")
	writeTree(t, src, map[string]string{"keep.txt": "k"})
	writeTree(t, target, map[string]string{"inner.txt": "not archived"})
	if err := os.Symlink(target, filepath.Join(src, "link")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	dest := filepath.Join(base, "project.zip")
	require.NoError(t, archiver.New(nil).ArchiveDir(src, dest))

	got := entries(t, dest)
	require.Contains(t, got, "link/")
	assert.True(t, got["link/"].FileInfo().IsDir())
	for name := range got {
		assert.False(t, strings.HasPrefix(name, "link/") && name != "link/", "walk must not descend into %s", name)
	}
	assert.Len(t, got, 2)
}

func TestArchiveDirMemFs(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/base/a/sub", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/base/a/sub/file.txt", []byte("mem"), 0o644))

	require.NoError(t, archiver.New(fs).ArchiveDir("/base/a", "/base/a.zip"))

	ok, err := afero.Exists(fs, "/base/a.zip")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestArchiveDirMissingRoot(t *testing.T) {
	base := t.TempDir()
	dest := filepath.Join(base, "missing.zip")
	err := archiver.New(nil).ArchiveDir(filepath.Join(base, "missing"), dest)
	assert.Error(t, err)
	assert.NoFileExists(t, dest, "a failed archive leaves nothing behind")
}
