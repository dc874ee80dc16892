package cmd

import (
	"errors"
	"fmt"

	"github.com/compozy/gitmerge/internal/config"
	"github.com/compozy/gitmerge/internal/domain"
	"github.com/compozy/gitmerge/internal/logger"
	"github.com/compozy/gitmerge/internal/repository"
	"github.com/compozy/gitmerge/internal/workspace"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// container holds all the dependencies for the application.
type container struct {
	cfg *config.Config
	log *zap.Logger
	ws  *workspace.Workspace

	fsRepo  repository.FileSystemRepository
	gitRepo repository.GitRepository
	oracle  domain.BranchOracle
	store   repository.RegistryRepository
}

// newContainer creates a new container with all the dependencies.
func newContainer() (*container, error) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	fsRepo := repository.FileSystemRepository(afero.NewOsFs())
	ws, err := workspace.Discover(fsRepo, ".")
	if err != nil {
		return nil, err
	}
	gitRepo, err := repository.NewGitRepository(ws.Root, cfg.Remote)
	if err != nil {
		return nil, err
	}

	// The local clone answers branch queries unless the GitHub API is requested
	var oracle domain.BranchOracle = gitRepo
	if cfg.Oracle == config.OracleGithub {
		ghRepo, err := repository.NewGithubRepository(cfg.GithubToken, cfg.GithubOwner, cfg.GithubRepo)
		if err != nil {
			return nil, err
		}
		oracle = ghRepo
	}

	return &container{
		cfg:     cfg,
		log:     log.With(zap.String("root", ws.Root)),
		ws:      ws,
		fsRepo:  fsRepo,
		gitRepo: gitRepo,
		oracle:  oracle,
		store:   repository.NewJSONRegistryRepository(fsRepo),
	}, nil
}

// registryPath is the absolute location of the registry file.
func (c *container) registryPath() string {
	return c.ws.Path(c.cfg.ReleasesFile)
}

// skipNested reports whether the command runs inside a child module, where
// the registry of the root module must not be touched.
func (c *container) skipNested(command string) bool {
	if !c.ws.Nested {
		return false
	}
	c.log.Info("skipping nested module",
		zap.String("command", command),
		zap.String("module", c.ws.ModuleDir),
	)
	return true
}

func (c *container) close() {
	_ = c.log.Sync()
}

// explain adds a hint to errors the user can fix with another command.
func explain(err error) error {
	if errors.Is(err, repository.ErrRegistryNotFound) {
		return fmt.Errorf("%w (run 'git-merge create' first)", err)
	}
	return err
}
