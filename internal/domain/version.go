package domain

import (
	"github.com/Masterminds/semver/v3"
)

// Version wraps semver.Version for release ordering.
type Version struct {
	*semver.Version
}

// NewVersion creates a new Version from a string.
func NewVersion(s string) (*Version, error) {
	v, err := semver.NewVersion(s)
	if err != nil {
		return nil, err
	}
	return &Version{v}, nil
}

// Compare orders versions ascending. A nil version sorts after any other.
func (v *Version) Compare(other *Version) int {
	switch {
	case v == nil && other == nil:
		return 0
	case v == nil:
		return 1
	case other == nil:
		return -1
	}
	return v.Version.Compare(other.Version)
}

// String returns the normalized version without a v prefix.
func (v *Version) String() string {
	return v.Version.String()
}
