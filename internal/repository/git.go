package repository

import "context"

// GitRepository defines the branch queries the registry needs from git.
type GitRepository interface {
	// BranchExists reports whether name is a local branch or a branch of the
	// configured remote. Failures to read refs are returned as errors.
	BranchExists(ctx context.Context, name string) (bool, error)
	ListLocalBranches(ctx context.Context) ([]string, error)
}
