package domain

import (
	"strings"
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestIsValidTargetBranch(t *testing.T) {
	t.Run("Should accept names under the release namespace", func(t *testing.T) {
		assert.True(t, IsValidTargetBranch("release/2.0"))
		assert.True(t, IsValidTargetBranch("release/x"))
		assert.True(t, IsValidTargetBranch("release/2024/q1"))
	})
	t.Run("Should reject names outside the namespace", func(t *testing.T) {
		assert.False(t, IsValidTargetBranch(""))
		assert.False(t, IsValidTargetBranch("release/"))
		assert.False(t, IsValidTargetBranch("release"))
		assert.False(t, IsValidTargetBranch("feature/foo"))
		assert.False(t, IsValidTargetBranch("Release/2.0"))
		assert.False(t, IsValidTargetBranch(" release/2.0"))
	})
	t.Run("Should accept any suffix after the namespace", func(t *testing.T) {
		rapid.Check(t, func(r *rapid.T) {
			suffix := rapid.StringN(1, 40, -1).Draw(r, "suffix")
			assert.True(r, IsValidTargetBranch(ReleaseNamespace+suffix))
		})
	})
	t.Run("Should reject names lacking the prefix", func(t *testing.T) {
		rapid.Check(t, func(r *rapid.T) {
			name := rapid.String().
				Filter(func(s string) bool { return !strings.HasPrefix(s, ReleaseNamespace) }).
				Draw(r, "name")
			assert.False(r, IsValidTargetBranch(name))
		})
	})
}

func TestValidateBranchName(t *testing.T) {
	t.Run("Should accept names git allows", func(t *testing.T) {
		names := []string{
			"main",
			"feature/login",
			"release/1.2.3",
			"fix_42-bug",
			"release/1.0.0+build.5",
			"release/v2@q3",
			"release/2.0#hotfix",
			"release/été",
		}
		for _, name := range names {
			assert.NoError(t, ValidateBranchName(name), name)
		}
	})
	t.Run("Should reject empty and oversized names", func(t *testing.T) {
		err := ValidateBranchName("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be empty")
		err = ValidateBranchName(strings.Repeat("a", 256))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "too long")
	})
	t.Run("Should reject names that break the ref format", func(t *testing.T) {
		names := []string{
			"/feature",
			"feature/",
			"feature/../main",
			"a..b",
			"feature//x",
			"feature.lock",
			"feature with space",
			"feature~1",
			"feature^",
			"feature:x",
			"feature@{1}",
			"@",
			"-feature",
			"feature.",
			".hidden",
		}
		for _, name := range names {
			err := ValidateBranchName(name)
			require.Error(t, err, name)
			assert.ErrorIs(t, err, plumbing.ErrInvalidReferenceName, name)
		}
	})
}

func TestValidateTargetBranch(t *testing.T) {
	t.Run("Should return InvalidBranchName for names outside the namespace", func(t *testing.T) {
		err := ValidateTargetBranch("feature/foo")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidBranchName)
		assert.Contains(t, err.Error(), "feature/foo")
	})
	t.Run("Should return InvalidBranchName for malformed refs in the namespace", func(t *testing.T) {
		err := ValidateTargetBranch("release/a..b")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidBranchName)
	})
	t.Run("Should accept a valid release name", func(t *testing.T) {
		assert.NoError(t, ValidateTargetBranch("release/2.0"))
	})
	t.Run("Should accept release names with build metadata", func(t *testing.T) {
		assert.NoError(t, ValidateTargetBranch("release/1.0.0+build.5"))
		v := NewRelease("release/1.0.0+build.5").Version()
		require.NotNil(t, v)
		assert.Equal(t, "build.5", v.Metadata())
	})
}
