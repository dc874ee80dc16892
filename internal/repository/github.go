package repository

import "context"

// GithubRepository looks up branches through the GitHub API. It backs the
// branch existence check when the github oracle is configured.
type GithubRepository interface {
	BranchExists(ctx context.Context, name string) (bool, error)
}
