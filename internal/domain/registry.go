package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// MergeStrategy declares how the branches of a release are combined.
type MergeStrategy string

const (
	MergeStrategyOctopus   MergeStrategy = "OCTOPUS"
	MergeStrategyResolve   MergeStrategy = "RESOLVE"
	MergeStrategyRecursive MergeStrategy = "RECURSIVE"
	MergeStrategyOrt       MergeStrategy = "ORT"
	MergeStrategyOurs      MergeStrategy = "OURS"
	MergeStrategySubtree   MergeStrategy = "SUBTREE"
)

// DefaultMergeStrategy is assigned to newly registered releases.
const DefaultMergeStrategy = MergeStrategyOctopus

var knownStrategies = []MergeStrategy{
	MergeStrategyOctopus,
	MergeStrategyResolve,
	MergeStrategyRecursive,
	MergeStrategyOrt,
	MergeStrategyOurs,
	MergeStrategySubtree,
}

// ParseMergeStrategy maps a persisted token onto a known strategy.
func ParseMergeStrategy(token string) (MergeStrategy, error) {
	for _, s := range knownStrategies {
		if string(s) == token {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown merge strategy %q", token)
}

// Extra holds JSON members this tool does not interpret. Values are kept in
// compact form so they survive a load/save cycle unchanged.
type Extra map[string]json.RawMessage

func (e Extra) clone() Extra {
	if e == nil {
		return nil
	}
	out := make(Extra, len(e))
	for k, v := range e {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

// Branch is a source branch waiting to be merged into a release.
type Branch struct {
	Name  string
	Extra Extra
}

// Release is a target branch plus the branches that will be merged into it.
type Release struct {
	TargetBranch string
	Strategy     MergeStrategy
	Branches     []Branch
	Extra        Extra
}

// NewRelease creates an empty release using the default strategy.
func NewRelease(target string) Release {
	return Release{
		TargetBranch: target,
		Strategy:     DefaultMergeStrategy,
		Branches:     []Branch{},
	}
}

// ContainsBranch reports whether name is already one of the release branches.
func (r Release) ContainsBranch(name string) bool {
	for _, b := range r.Branches {
		if b.Name == name {
			return true
		}
	}
	return false
}

// Version parses the part after the release namespace as a semantic version.
// It returns nil when the release is not named after a version.
func (r Release) Version() *Version {
	v, err := NewVersion(strings.TrimPrefix(r.TargetBranch, ReleaseNamespace))
	if err != nil {
		return nil
	}
	return v
}

func (r Release) clone() Release {
	branches := make([]Branch, len(r.Branches))
	for i, b := range r.Branches {
		branches[i] = Branch{Name: b.Name, Extra: b.Extra.clone()}
	}
	return Release{
		TargetBranch: r.TargetBranch,
		Strategy:     r.Strategy,
		Branches:     branches,
		Extra:        r.Extra.clone(),
	}
}

// Registry is the full set of release trains tracked in releases.json.
type Registry struct {
	Releases []Release
	Extra    Extra
}

// NewRegistry returns a registry without releases.
func NewRegistry() *Registry {
	return &Registry{Releases: []Release{}}
}

// Clone returns a deep copy that shares no mutable state with r.
func (r *Registry) Clone() *Registry {
	releases := make([]Release, len(r.Releases))
	for i, rel := range r.Releases {
		releases[i] = rel.clone()
	}
	return &Registry{Releases: releases, Extra: r.Extra.clone()}
}

// Find returns the release targeting target.
func (r *Registry) Find(target string) (Release, bool) {
	for _, rel := range r.Releases {
		if rel.TargetBranch == target {
			return rel, true
		}
	}
	return Release{}, false
}

// Validate checks the invariants that can be verified without a repository:
// target names live in the release namespace, targets are unique and no
// release lists the same branch twice.
func (r *Registry) Validate() error {
	seen := make(map[string]struct{}, len(r.Releases))
	for _, rel := range r.Releases {
		if !IsValidTargetBranch(rel.TargetBranch) {
			return &RegistryError{Kind: KindInvalidBranchName, Branch: rel.TargetBranch}
		}
		if _, dup := seen[rel.TargetBranch]; dup {
			return &RegistryError{Kind: KindDuplicateRelease, Branch: rel.TargetBranch}
		}
		seen[rel.TargetBranch] = struct{}{}
		names := make(map[string]struct{}, len(rel.Branches))
		for _, b := range rel.Branches {
			if _, dup := names[b.Name]; dup {
				return &RegistryError{Kind: KindDuplicateBranch, Branch: b.Name, Target: rel.TargetBranch}
			}
			names[b.Name] = struct{}{}
		}
	}
	return nil
}

// BranchOracle answers whether a branch exists in the backing repository.
type BranchOracle interface {
	BranchExists(ctx context.Context, name string) (bool, error)
}

// ContainsTarget reports whether a release for target is already registered.
func ContainsTarget(reg *Registry, target string) bool {
	_, ok := reg.Find(target)
	return ok
}

// Register appends a new release for target. The name is validated before
// the oracle is consulted, and reg itself is never modified.
func Register(ctx context.Context, reg *Registry, target string, oracle BranchOracle) (*Registry, Release, error) {
	if err := ValidateTargetBranch(target); err != nil {
		return nil, Release{}, err
	}
	if ContainsTarget(reg, target) {
		return nil, Release{}, &RegistryError{Kind: KindDuplicateRelease, Branch: target}
	}
	if err := requireBranch(ctx, oracle, target, ""); err != nil {
		return nil, Release{}, err
	}
	release := NewRelease(target)
	next := reg.Clone()
	next.Releases = append(next.Releases, release)
	return next, release.clone(), nil
}

// AddBranch appends branch to the release targeting target.
func AddBranch(
	ctx context.Context,
	reg *Registry,
	target, branch string,
	oracle BranchOracle,
) (*Registry, Release, error) {
	if err := ValidateBranchName(branch); err != nil {
		return nil, Release{}, &RegistryError{Kind: KindInvalidBranchName, Branch: branch, Target: target, Err: err}
	}
	if branch == target {
		return nil, Release{}, &RegistryError{
			Kind:   KindInvalidBranchName,
			Branch: branch,
			Target: target,
			Err:    fmt.Errorf("a release cannot merge its own target branch"),
		}
	}
	idx := -1
	for i, rel := range reg.Releases {
		if rel.TargetBranch == target {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, Release{}, &RegistryError{Kind: KindReleaseNotFound, Branch: target}
	}
	if reg.Releases[idx].ContainsBranch(branch) {
		return nil, Release{}, &RegistryError{Kind: KindDuplicateBranch, Branch: branch, Target: target}
	}
	if err := requireBranch(ctx, oracle, branch, target); err != nil {
		return nil, Release{}, err
	}
	next := reg.Clone()
	next.Releases[idx].Branches = append(next.Releases[idx].Branches, Branch{Name: branch})
	return next, next.Releases[idx].clone(), nil
}

func requireBranch(ctx context.Context, oracle BranchOracle, branch, target string) error {
	exists, err := oracle.BranchExists(ctx, branch)
	if err != nil {
		return fmt.Errorf("failed to check whether branch %s exists: %w", branch, err)
	}
	if !exists {
		return &RegistryError{Kind: KindBranchDoesNotExist, Branch: branch, Target: target}
	}
	return nil
}
