package zipall

import "fmt"

type (
	// ConfigurationError reports a location that is missing or not a directory.
	ConfigurationError struct {
		Location string
	}

	// ArchiveWriteError wraps any failure while building a folder's archive.
	ArchiveWriteError struct {
		Folder  string
		Archive string
		Err     error
	}

	// PublishError wraps a failure copying a finished archive to storage.
	PublishError struct {
		Folder  string
		Archive string
		Err     error
	}

	// DeletionError wraps a failure removing a folder after it was archived.
	DeletionError struct {
		Folder string
		Err    error
	}
)

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("location %q not found or is not a directory", e.Location)
}

func (e *ArchiveWriteError) Error() string {
	return fmt.Sprintf("error archiving folder %s to %s: %v", e.Folder, e.Archive, e.Err)
}

func (e *ArchiveWriteError) Unwrap() error { return e.Err }

func (e *PublishError) Error() string {
	return fmt.Sprintf("error publishing archive %s of folder %s: %v", e.Archive, e.Folder, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

func (e *DeletionError) Error() string {
	return fmt.Sprintf("error removing folder %s: %v", e.Folder, e.Err)
}

func (e *DeletionError) Unwrap() error { return e.Err }
