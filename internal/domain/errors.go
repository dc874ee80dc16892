package domain

import "fmt"

// RegistryErrorKind identifies which registry invariant a mutation violated.
type RegistryErrorKind string

const (
	KindInvalidBranchName  RegistryErrorKind = "invalid_branch_name"
	KindBranchDoesNotExist RegistryErrorKind = "branch_does_not_exist"
	KindDuplicateRelease   RegistryErrorKind = "duplicate_release"
	KindReleaseNotFound    RegistryErrorKind = "release_not_found"
	KindDuplicateBranch    RegistryErrorKind = "duplicate_branch"
)

// Sentinels for errors.Is matching against a *RegistryError of the same kind.
var (
	ErrInvalidBranchName  = &RegistryError{Kind: KindInvalidBranchName}
	ErrBranchDoesNotExist = &RegistryError{Kind: KindBranchDoesNotExist}
	ErrDuplicateRelease   = &RegistryError{Kind: KindDuplicateRelease}
	ErrReleaseNotFound    = &RegistryError{Kind: KindReleaseNotFound}
	ErrDuplicateBranch    = &RegistryError{Kind: KindDuplicateBranch}
)

// RegistryError reports a rejected registry mutation.
type RegistryError struct {
	Kind   RegistryErrorKind
	Branch string
	// Target is set when the offending branch belongs to a release.
	Target string
	Err    error
}

func (e *RegistryError) Error() string {
	var msg string
	switch e.Kind {
	case KindInvalidBranchName:
		msg = fmt.Sprintf("invalid branch name %q", e.Branch)
	case KindBranchDoesNotExist:
		msg = fmt.Sprintf("branch %s does not exist", e.Branch)
	case KindDuplicateRelease:
		msg = fmt.Sprintf("branch %s is already configured as a release", e.Branch)
	case KindReleaseNotFound:
		msg = fmt.Sprintf("release %s is not configured", e.Branch)
	case KindDuplicateBranch:
		msg = fmt.Sprintf("branch %s is already part of release %s", e.Branch, e.Target)
	default:
		msg = fmt.Sprintf("registry error on branch %s", e.Branch)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *RegistryError) Unwrap() error {
	return e.Err
}

// Is matches on Kind so callers can compare against the package sentinels.
func (e *RegistryError) Is(target error) bool {
	other, ok := target.(*RegistryError)
	return ok && other.Kind == e.Kind
}
