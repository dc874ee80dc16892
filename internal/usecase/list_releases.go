package usecase

import (
	"context"
	"fmt"
	"slices"

	"github.com/compozy/gitmerge/internal/domain"
	"github.com/compozy/gitmerge/internal/repository"
)

// ReleaseOrder selects how releases are listed.
type ReleaseOrder string

const (
	// OrderFile keeps the order of releases.json
	OrderFile ReleaseOrder = "file"
	// OrderVersion sorts by the semantic version in the release name
	OrderVersion ReleaseOrder = "version"
)

// ParseReleaseOrder validates an order flag value.
func ParseReleaseOrder(s string) (ReleaseOrder, error) {
	switch ReleaseOrder(s) {
	case OrderFile, OrderVersion:
		return ReleaseOrder(s), nil
	default:
		return "", fmt.Errorf("invalid sort order %q: expected %s or %s", s, OrderFile, OrderVersion)
	}
}

// ReleaseSummary is one row of the release listing.
type ReleaseSummary struct {
	Release domain.Release
	// Local is true when the target branch exists as a local branch.
	Local bool
}

// ListReleasesUseCase reads the registry without modifying it.
type ListReleasesUseCase struct {
	Store   repository.RegistryRepository
	GitRepo repository.GitRepository
}

// Execute returns the registered releases in the requested order. Releases
// whose names are not versions sort after versioned ones, in file order.
func (uc *ListReleasesUseCase) Execute(
	ctx context.Context,
	path string,
	order ReleaseOrder,
) ([]ReleaseSummary, error) {
	reg, err := uc.Store.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	local := map[string]bool{}
	if uc.GitRepo != nil {
		branches, err := uc.GitRepo.ListLocalBranches(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list local branches: %w", err)
		}
		for _, b := range branches {
			local[b] = true
		}
	}
	summaries := make([]ReleaseSummary, 0, len(reg.Releases))
	for _, rel := range reg.Releases {
		summaries = append(summaries, ReleaseSummary{Release: rel, Local: local[rel.TargetBranch]})
	}
	if order == OrderVersion {
		slices.SortStableFunc(summaries, func(a, b ReleaseSummary) int {
			return a.Release.Version().Compare(b.Release.Version())
		})
	}
	return summaries, nil
}
