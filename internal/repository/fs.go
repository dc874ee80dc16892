package repository

import "github.com/spf13/afero"

// FileSystemRepository is the filesystem the registry file lives on.
type FileSystemRepository interface {
	afero.Fs
}
