package usecase

import (
	"context"

	"github.com/compozy/gitmerge/internal/domain"
	"github.com/compozy/gitmerge/internal/repository"
	"go.uber.org/zap"
)

// RegisterReleaseUseCase adds a new release train to the registry.
type RegisterReleaseUseCase struct {
	Store  repository.RegistryRepository
	Oracle domain.BranchOracle
	Logger *zap.Logger
	Lock   bool
}

// Execute registers target in the registry at path.
func (uc *RegisterReleaseUseCase) Execute(ctx context.Context, path, target string) (domain.Release, error) {
	log := loggerOrNop(uc.Logger).With(zap.String("path", path), zap.String("target", target))
	// Invalid names are rejected before touching the file or the repository.
	if err := domain.ValidateTargetBranch(target); err != nil {
		return domain.Release{}, err
	}
	var created domain.Release
	err := mutateRegistry(ctx, uc.Store, log, uc.Lock, path,
		func(ctx context.Context, reg *domain.Registry) (*domain.Registry, error) {
			next, release, err := domain.Register(ctx, reg, target, uc.Oracle)
			if err != nil {
				return nil, err
			}
			created = release
			return next, nil
		})
	if err != nil {
		log.Debug("release registration failed", zap.Error(err))
		return domain.Release{}, err
	}
	log.Info("registered release", zap.String("strategy", string(created.Strategy)))
	return created, nil
}
