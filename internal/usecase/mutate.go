package usecase

import (
	"context"
	"fmt"

	"github.com/compozy/gitmerge/internal/domain"
	"github.com/compozy/gitmerge/internal/repository"
	"go.uber.org/zap"
)

// registryMutation computes the next registry from the loaded one.
type registryMutation func(ctx context.Context, reg *domain.Registry) (*domain.Registry, error)

// mutateRegistry runs one load, mutate, save cycle. When the mutation fails
// nothing is written and the file keeps its previous content.
func mutateRegistry(
	ctx context.Context,
	store repository.RegistryRepository,
	log *zap.Logger,
	lock bool,
	path string,
	mutation registryMutation,
) error {
	if lock {
		unlock, err := store.Lock(ctx, path)
		if err != nil {
			return err
		}
		defer func() {
			if err := unlock(); err != nil {
				log.Warn("failed to release registry lock", zap.Error(err))
			}
		}()
	}
	reg, err := store.Load(ctx, path)
	if err != nil {
		return err
	}
	log.Debug("loaded registry", zap.String("path", path), zap.Int("releases", len(reg.Releases)))
	next, err := mutation(ctx, reg)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", path, err)
	}
	if err := store.Save(ctx, path, next); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

func loggerOrNop(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
