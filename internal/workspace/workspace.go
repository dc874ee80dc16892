// Package workspace locates the repository a command runs in and decides
// whether the invocation comes from a nested Go module.
package workspace

import (
	"fmt"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/spf13/afero"
)

const moduleFile = "go.mod"

// Workspace describes where a command was invoked.
type Workspace struct {
	// Root is the top-level directory of the git work tree.
	Root string
	// ModuleDir is the directory of the closest go.mod at or above the
	// invocation directory, or empty when there is none below Root.
	ModuleDir string
	// Nested is true when ModuleDir is a child module of a root module.
	Nested bool
}

// Path resolves name relative to the repository root.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.Root, name)
}

// Discover finds the repository containing dir.
func Discover(fs afero.Fs, dir string) (*Workspace, error) {
	abs, err := resolve(dir)
	if err != nil {
		return nil, err
	}
	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to find git repository from %s (are you in a git repo?): %w", dir, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}
	root, err := resolve(wt.Filesystem.Root())
	if err != nil {
		return nil, err
	}
	ws := &Workspace{Root: root}
	rootModule, err := afero.Exists(fs, filepath.Join(root, moduleFile))
	if err != nil {
		return nil, fmt.Errorf("failed to check %s: %w", moduleFile, err)
	}
	for current := abs; current != root; {
		found, err := afero.Exists(fs, filepath.Join(current, moduleFile))
		if err != nil {
			return nil, fmt.Errorf("failed to check %s: %w", moduleFile, err)
		}
		if found {
			ws.ModuleDir = current
			ws.Nested = rootModule
			break
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	if ws.ModuleDir == "" && rootModule {
		ws.ModuleDir = root
	}
	return ws, nil
}

func resolve(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	return resolved, nil
}
