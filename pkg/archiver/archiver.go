package archiver

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mholt/archiver/v3"
	"github.com/spf13/afero"
)

// Archiver writes uncompressed zip archives of directory trees.
type Archiver struct {
	fs afero.Fs
}

// New returns an Archiver operating on fs. A nil fs means the host filesystem.
func New(fs afero.Fs) *Archiver {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	return &Archiver{fs: fs}
}

// ArchiveDir writes every directory and file below root into a zip at
// destination, overwriting it if present. Entry names are relative to root,
// so root's own name never appears in the archive. On failure destination
// is removed.
func (a *Archiver) ArchiveDir(root string, destination string) (err error) {
	out, err := a.fs.Create(destination)
	if err != nil {
		return fmt.Errorf("error creating archive file: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("error closing archive file: %w", cerr)
		}
		if err != nil {
			a.fs.Remove(destination)
		}
	}()

	z := archiver.NewZip()
	z.FileMethod = archiver.Store
	z.SelectiveCompression = false

	if err := z.Create(out); err != nil {
		return fmt.Errorf("error creating zip writer: %w", err)
	}

	walkErr := afero.Walk(a.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		return a.writeEntry(z, path, filepath.ToSlash(rel), info)
	})
	if walkErr != nil {
		z.Close()
		return fmt.Errorf("error walking directory: %s, error: %w", root, walkErr)
	}

	if err := z.Close(); err != nil {
		return fmt.Errorf("error finalizing zip: %w", err)
	}

	return nil
}

func (a *Archiver) writeEntry(z *archiver.Zip, path string, name string, info os.FileInfo) error {
	// Links are stored as what they point to. The walk itself never
	// descends into a linked directory.
	if info.Mode()&os.ModeSymlink != 0 {
		target, err := a.fs.Stat(path)
		if err != nil {
			return err
		}
		info = target
	}

	if info.IsDir() {
		return z.Write(archiver.File{
			FileInfo: archiver.FileInfo{FileInfo: info, CustomName: name},
		})
	}

	if !info.Mode().IsRegular() {
		return nil
	}

	file, err := a.fs.Open(path)
	if err != nil {
		return fmt.Errorf("error opening file: %s, error: %w", path, err)
	}
	defer file.Close()

	err = z.Write(archiver.File{
		FileInfo:   archiver.FileInfo{FileInfo: info, CustomName: name},
		ReadCloser: file,
	})
	if err != nil {
		return fmt.Errorf("error adding file: %s, error: %w", path, err)
	}

	return nil
}

// Unarchive extracts the zip at source into destination on the host filesystem.
func (a *Archiver) Unarchive(source string, destination string) error {
	return archiver.NewZip().Unarchive(source, destination)
}
