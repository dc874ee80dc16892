package usecase

import (
	"context"
	"testing"

	"github.com/compozy/gitmerge/internal/domain"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAddBranchUseCase_Execute(t *testing.T) {
	ctx := context.Background()
	t.Run("Should append the branch and keep unknown members", func(t *testing.T) {
		fs, store := newMemRegistry(t,
			`{"releases":[{"targetBranch":"release/2.0","branches":[{"name":"feature/a","merged":true}]}]}`)
		oracle := new(mockBranchOracle)
		oracle.On("BranchExists", mock.Anything, "feature/b").Return(true, nil)
		uc := &AddBranchUseCase{Store: store, Oracle: oracle}
		release, err := uc.Execute(ctx, registryPath, "release/2.0", "feature/b")
		require.NoError(t, err)
		require.Len(t, release.Branches, 2)
		assert.Equal(t, "feature/b", release.Branches[1].Name)
		data, err := afero.ReadFile(fs, registryPath)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"merged": true`)
		assert.Contains(t, string(data), `"name": "feature/b"`)
	})
	t.Run("Should leave the file unchanged for duplicate branches", func(t *testing.T) {
		original := `{"releases":[{"targetBranch":"release/2.0","branches":[{"name":"feature/a"}]}]}`
		fs, store := newMemRegistry(t, original)
		uc := &AddBranchUseCase{Store: store, Oracle: new(mockBranchOracle)}
		_, err := uc.Execute(ctx, registryPath, "release/2.0", "feature/a")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrDuplicateBranch)
		data, err := afero.ReadFile(fs, registryPath)
		require.NoError(t, err)
		assert.Equal(t, original, string(data))
	})
	t.Run("Should fail for unregistered releases", func(t *testing.T) {
		_, store := newMemRegistry(t, `{"releases":[]}`)
		uc := &AddBranchUseCase{Store: store, Oracle: new(mockBranchOracle)}
		_, err := uc.Execute(ctx, registryPath, "release/2.0", "feature/a")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrReleaseNotFound)
	})
}
