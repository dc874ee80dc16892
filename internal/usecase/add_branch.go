package usecase

import (
	"context"

	"github.com/compozy/gitmerge/internal/domain"
	"github.com/compozy/gitmerge/internal/repository"
	"go.uber.org/zap"
)

// AddBranchUseCase appends a source branch to a registered release.
type AddBranchUseCase struct {
	Store  repository.RegistryRepository
	Oracle domain.BranchOracle
	Logger *zap.Logger
	Lock   bool
}

// Execute adds branch to the release targeting target.
func (uc *AddBranchUseCase) Execute(ctx context.Context, path, target, branch string) (domain.Release, error) {
	log := loggerOrNop(uc.Logger).With(
		zap.String("path", path),
		zap.String("target", target),
		zap.String("branch", branch),
	)
	var updated domain.Release
	err := mutateRegistry(ctx, uc.Store, log, uc.Lock, path,
		func(ctx context.Context, reg *domain.Registry) (*domain.Registry, error) {
			next, release, err := domain.AddBranch(ctx, reg, target, branch, uc.Oracle)
			if err != nil {
				return nil, err
			}
			updated = release
			return next, nil
		})
	if err != nil {
		return domain.Release{}, err
	}
	log.Info("added branch to release", zap.Int("branches", len(updated.Branches)))
	return updated, nil
}
