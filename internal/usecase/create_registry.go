package usecase

import (
	"context"

	"github.com/compozy/gitmerge/internal/repository"
	"go.uber.org/zap"
)

// CreateRegistryUseCase bootstraps an empty registry file.
type CreateRegistryUseCase struct {
	Store  repository.RegistryRepository
	Logger *zap.Logger
}

// Execute runs the use case.
func (uc *CreateRegistryUseCase) Execute(ctx context.Context, path string) error {
	if err := uc.Store.Create(ctx, path); err != nil {
		return err
	}
	loggerOrNop(uc.Logger).Info("created release registry", zap.String("path", path))
	return nil
}
