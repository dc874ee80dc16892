package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// gitRepository is the implementation of the GitRepository interface.
type gitRepository struct {
	repo   *git.Repository
	remote string
}

// NewGitRepository opens the repository containing dir. Branches of remote
// count as existing branches; pass an empty remote to consult local refs only.
func NewGitRepository(dir, remote string) (GitRepository, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository: %w", err)
	}
	return &gitRepository{repo: repo, remote: remote}, nil
}

// BranchExists checks refs/heads/<name>, then refs/remotes/<remote>/<name>.
func (r *gitRepository) BranchExists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	found, err := r.hasReference(plumbing.NewBranchReferenceName(name))
	if err != nil || found || r.remote == "" {
		return found, err
	}
	return r.hasReference(plumbing.NewRemoteReferenceName(r.remote, name))
}

func (r *gitRepository) hasReference(name plumbing.ReferenceName) (bool, error) {
	_, err := r.repo.Reference(name, true)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to resolve %s: %w", name, err)
	}
	return true, nil
}

// ListLocalBranches returns a list of all local branch names.
func (r *gitRepository) ListLocalBranches(_ context.Context) ([]string, error) {
	iter, err := r.repo.Branches()
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	var branches []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		branches = append(branches, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate branches: %w", err)
	}
	return branches, nil
}
