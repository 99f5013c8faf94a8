package zipall

import (
	"context"
	"fmt"
	"io"
	"iter"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/flowshot-io/zipfolders/pkg/archiver"
	"github.com/flowshot-io/zipfolders/pkg/logger"
	"github.com/flowshot-io/zipfolders/pkg/prettysize"
)

// Extension is appended to a folder name to form its archive name.
const Extension = ".zip"

type (
	// Publisher receives every archive once it has been written.
	Publisher interface {
		Publish(ctx context.Context, name string, r io.Reader, size int64) error
	}

	Options struct {
		// Location is the base directory. Empty means the current directory.
		Location      string
		RemoveFolders bool
		Fs            afero.Fs
		Logger        logger.Logger
		// Publisher is optional.
		Publisher Publisher
	}

	// Zipper archives every immediate subdirectory of a base directory into
	// its own store-mode zip next to it.
	//
	// A Zipper is not safe for concurrent use.
	Zipper struct {
		location      string
		removeFolders bool
		precision     int
		fs            afero.Fs
		archiver      *archiver.Archiver
		publisher     Publisher
		logger        logger.Logger
	}
)

// New creates a Zipper. It fails with a *ConfigurationError when the
// location is not an existing directory.
func New(opts *Options) (*Zipper, error) {
	if opts == nil {
		opts = &Options{}
	}

	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}

	if opts.Logger == nil {
		opts.Logger = logger.NoOp()
	}

	z := &Zipper{
		removeFolders: opts.RemoveFolders,
		precision:     prettysize.DefaultPrecision,
		fs:            opts.Fs,
		archiver:      archiver.New(opts.Fs),
		publisher:     opts.Publisher,
		logger:        opts.Logger,
	}

	location := opts.Location
	if location == "" {
		location = "."
	}

	if err := z.SetLocation(location); err != nil {
		return nil, err
	}

	return z, nil
}

// Location returns the absolute base directory.
func (z *Zipper) Location() string {
	return z.location
}

// SetLocation validates location and makes it the base directory. On error
// the previous location is kept.
func (z *Zipper) SetLocation(location string) error {
	abs, err := filepath.Abs(location)
	if err != nil {
		return &ConfigurationError{Location: location}
	}

	ok, err := afero.IsDir(z.fs, abs)
	if err != nil || !ok {
		return &ConfigurationError{Location: abs}
	}

	z.location = abs
	return nil
}

func (z *Zipper) RemoveFolders() bool {
	return z.removeFolders
}

func (z *Zipper) SetRemoveFolders(remove bool) {
	z.removeFolders = remove
}

// SetSizePrecision sets the decimals ZipVerbose uses for archive sizes.
func (z *Zipper) SetSizePrecision(precision int) {
	z.precision = precision
}

// ArchivePath returns where the archive of folder is written.
func (z *Zipper) ArchivePath(folder string) string {
	return filepath.Join(z.location, folder+Extension)
}

// ListFolders returns the names of the immediate subdirectories of the
// location. Symbolic links to directories are not folders: they are never
// archived, and a run never deletes through them.
func (z *Zipper) ListFolders() ([]string, error) {
	infos, err := afero.ReadDir(z.fs, z.location)
	if err != nil {
		return nil, fmt.Errorf("error listing %s: %w", z.location, err)
	}

	var folders []string
	for _, info := range infos {
		if info.IsDir() {
			folders = append(folders, info.Name())
		}
	}

	return folders, nil
}

// Zip archives all folders without producing any output. The first failure
// stops the run.
func (z *Zipper) Zip(ctx context.Context) error {
	for _, err := range z.Folders(ctx) {
		if err != nil {
			return err
		}
	}

	return nil
}

// ZipVerbose archives all folders like Zip and reports each one to w.
func (z *Zipper) ZipVerbose(ctx context.Context, w io.Writer) error {
	folders, err := z.ListFolders()
	if err != nil {
		return err
	}

	for i, folder := range folders {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprintf(w, "Folder %d: %s\n", i+1, folder)

		size, err := z.archive(ctx, folder)
		if err != nil {
			return err
		}

		fmt.Fprintln(w, "Size ~", prettysize.Format(size, z.precision))

		if z.removeFolders {
			if err := z.remove(folder); err != nil {
				return err
			}
			fmt.Fprintln(w, "Folder deleted.")
		}

		fmt.Fprintln(w)
	}

	return nil
}

// Folders returns a sequence that archives one folder per step and yields
// its name. Nothing happens until the sequence is ranged over, and stopping
// early leaves the remaining folders untouched. A failed step yields the
// folder's name with the error and ends the sequence.
func (z *Zipper) Folders(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		folders, err := z.ListFolders()
		if err != nil {
			yield("", err)
			return
		}

		for _, folder := range folders {
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}

			err := z.process(ctx, folder)
			if !yield(folder, err) || err != nil {
				return
			}
		}
	}
}

func (z *Zipper) process(ctx context.Context, folder string) error {
	if _, err := z.archive(ctx, folder); err != nil {
		return err
	}

	if z.removeFolders {
		return z.remove(folder)
	}

	return nil
}

// archive writes and publishes the archive of folder and returns its size.
func (z *Zipper) archive(ctx context.Context, folder string) (int64, error) {
	src := filepath.Join(z.location, folder)
	dest := z.ArchivePath(folder)
	fields := map[string]interface{}{
		"folder":  src,
		"archive": dest,
	}

	z.logger.Debug("Archiving folder", fields)

	if err := z.archiver.ArchiveDir(src, dest); err != nil {
		z.logger.Error("Error archiving folder", withError(fields, err))
		return 0, &ArchiveWriteError{Folder: folder, Archive: dest, Err: err}
	}

	info, err := z.fs.Stat(dest)
	if err != nil {
		return 0, &ArchiveWriteError{Folder: folder, Archive: dest, Err: err}
	}
	fields["size"] = info.Size()

	if z.publisher != nil {
		if err := z.publish(ctx, dest, info.Size()); err != nil {
			z.logger.Error("Error publishing archive", withError(fields, err))
			return 0, &PublishError{Folder: folder, Archive: dest, Err: err}
		}
		z.logger.Debug("Archive published", fields)
	}

	z.logger.Info("Folder archived", fields)
	return info.Size(), nil
}

func (z *Zipper) publish(ctx context.Context, path string, size int64) error {
	file, err := z.fs.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return z.publisher.Publish(ctx, filepath.Base(path), file, size)
}

func (z *Zipper) remove(folder string) error {
	path := filepath.Join(z.location, folder)

	if err := z.fs.RemoveAll(path); err != nil {
		z.logger.Error("Error removing folder", withError(map[string]interface{}{"folder": path}, err))
		return &DeletionError{Folder: folder, Err: err}
	}

	z.logger.Info("Folder removed", map[string]interface{}{"folder": path})
	return nil
}

func withError(fields map[string]interface{}, err error) map[string]interface{} {
	out := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out["error"] = err.Error()
	return out
}
