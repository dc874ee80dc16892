package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/compozy/gitmerge/internal/domain"
	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

const (
	// RegistryFileName is the default name of the release registry file
	RegistryFileName = "releases.json"
	// RegistryFilePermissions defines the permissions for the registry file, which is committed
	RegistryFilePermissions = 0644
	// LockTimeout defines the maximum time to wait for a lock
	LockTimeout = 30 * time.Second
	// LockRetryInterval defines the interval between lock attempts
	LockRetryInterval = 100 * time.Millisecond
)

// StoreErrorKind classifies registry persistence failures.
type StoreErrorKind string

const (
	StoreNotFound      StoreErrorKind = "not_found"
	StoreCorrupt       StoreErrorKind = "corrupt"
	StoreIO            StoreErrorKind = "io"
	StoreAlreadyExists StoreErrorKind = "already_exists"
)

// Sentinels for errors.Is matching against a *StoreError of the same kind.
var (
	ErrRegistryNotFound = &StoreError{Kind: StoreNotFound}
	ErrRegistryCorrupt  = &StoreError{Kind: StoreCorrupt}
	ErrRegistryIO       = &StoreError{Kind: StoreIO}
	ErrRegistryExists   = &StoreError{Kind: StoreAlreadyExists}
)

// StoreError reports a failure to read or write the registry file.
type StoreError struct {
	Kind StoreErrorKind
	Path string
	Err  error
}

func (e *StoreError) Error() string {
	var msg string
	switch e.Kind {
	case StoreNotFound:
		msg = fmt.Sprintf("%s does not exist", e.Path)
	case StoreCorrupt:
		msg = fmt.Sprintf("%s is corrupt", e.Path)
	case StoreAlreadyExists:
		msg = fmt.Sprintf("%s already exists", e.Path)
	default:
		msg = fmt.Sprintf("failed to access %s", e.Path)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is matches on Kind so callers can compare against the package sentinels.
func (e *StoreError) Is(target error) bool {
	other, ok := target.(*StoreError)
	return ok && other.Kind == e.Kind
}

// RegistryRepository loads and persists the release registry. Implementations
// keep no state between calls; every Load returns a fresh value.
type RegistryRepository interface {
	Load(ctx context.Context, path string) (*domain.Registry, error)
	Save(ctx context.Context, path string, reg *domain.Registry) error
	Create(ctx context.Context, path string) error
	Lock(ctx context.Context, path string) (unlock func() error, err error)
}

// JSONRegistryRepository implements RegistryRepository on top of an afero filesystem
type JSONRegistryRepository struct {
	fs afero.Fs
}

// NewJSONRegistryRepository creates a registry repository backed by fs
func NewJSONRegistryRepository(fs afero.Fs) *JSONRegistryRepository {
	return &JSONRegistryRepository{fs: fs}
}

// Load reads and decodes the registry at path.
func (r *JSONRegistryRepository) Load(ctx context.Context, path string) (*domain.Registry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &StoreError{Kind: StoreNotFound, Path: path, Err: err}
		}
		return nil, &StoreError{Kind: StoreIO, Path: path, Err: err}
	}
	reg, err := DecodeRegistry(data)
	if err != nil {
		return nil, &StoreError{Kind: StoreCorrupt, Path: path, Err: err}
	}
	return reg, nil
}

// Save validates reg and atomically replaces the file at path with it.
// Readers observe either the previous content or the new one, never a mix.
func (r *JSONRegistryRepository) Save(ctx context.Context, path string, reg *domain.Registry) error {
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid registry: %w", err)
	}
	data, err := EncodeRegistry(reg)
	if err != nil {
		return fmt.Errorf("failed to encode registry: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.writeAtomic(path, data); err != nil {
		return &StoreError{Kind: StoreIO, Path: path, Err: err}
	}
	return nil
}

// Create writes an empty registry at path. It never overwrites an existing file.
func (r *JSONRegistryRepository) Create(ctx context.Context, path string) error {
	exists, err := afero.Exists(r.fs, path)
	if err != nil {
		return &StoreError{Kind: StoreIO, Path: path, Err: err}
	}
	if exists {
		return &StoreError{Kind: StoreAlreadyExists, Path: path}
	}
	return r.Save(ctx, path, domain.NewRegistry())
}

// Lock takes an exclusive advisory lock next to the registry file. The lock
// is only honoured by other git-merge processes that also lock. The lock
// file is left in place after unlock so every process locks the same inode.
func (r *JSONRegistryRepository) Lock(ctx context.Context, path string) (func() error, error) {
	lock := flock.New(path + ".lock")
	lockCtx, cancel := context.WithTimeout(ctx, LockTimeout)
	defer cancel()
	locked, err := lock.TryLockContext(lockCtx, LockRetryInterval)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock on %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("could not acquire lock on %s within %s", path, LockTimeout)
	}
	return func() error {
		if err := lock.Unlock(); err != nil {
			return fmt.Errorf("failed to unlock %s: %w", path, err)
		}
		return nil
	}, nil
}

// writeAtomic writes data to a temp file in the target directory and renames
// it over path. The temp file is removed on any failure.
func (r *JSONRegistryRepository) writeAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	tempPath := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), uuid.NewString()))
	f, err := r.fs.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, RegistryFilePermissions)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			if removeErr := r.fs.Remove(tempPath); removeErr != nil && !os.IsNotExist(removeErr) {
				err = errors.Join(err, fmt.Errorf("failed to remove temp file: %w", removeErr))
			}
		}
	}()
	if _, err = f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err = f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err = r.fs.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
