package domain

import (
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
)

// ReleaseNamespace is the prefix every release target branch must carry.
const ReleaseNamespace = "release/"

// maxBranchNameLength caps names well below filesystem path limits
const maxBranchNameLength = 255

// IsValidTargetBranch reports whether name lives under the release namespace
// and names something after it.
func IsValidTargetBranch(name string) bool {
	return strings.HasPrefix(name, ReleaseNamespace) && len(name) > len(ReleaseNamespace)
}

// ValidateBranchName checks branch against git's ref format rules.
func ValidateBranchName(branch string) error {
	if branch == "" {
		return fmt.Errorf("branch name cannot be empty")
	}
	if len(branch) > maxBranchNameLength {
		return fmt.Errorf("branch name too long: %d characters (max: %d)", len(branch), maxBranchNameLength)
	}
	if err := plumbing.NewBranchReferenceName(branch).Validate(); err != nil {
		return fmt.Errorf("invalid branch name format %s: %w", branch, err)
	}
	return nil
}

// ValidateTargetBranch combines the namespace rule with the git ref format
// rules. The returned error is always a *RegistryError.
func ValidateTargetBranch(target string) error {
	if !IsValidTargetBranch(target) {
		return &RegistryError{
			Kind:   KindInvalidBranchName,
			Branch: target,
			Err:    fmt.Errorf("target branch names must start with %s", ReleaseNamespace),
		}
	}
	if err := ValidateBranchName(target); err != nil {
		return &RegistryError{Kind: KindInvalidBranchName, Branch: target, Err: err}
	}
	return nil
}
