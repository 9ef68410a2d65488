package repository

import "github.com/spf13/afero"

// FileSystemRepository is the filesystem manifests and the journal are
// written to. Tests substitute afero.NewMemMapFs.
type FileSystemRepository interface {
	afero.Fs
}

// NewFileSystemRepository returns the OS filesystem.
func NewFileSystemRepository() FileSystemRepository {
	return afero.NewOsFs()
}
