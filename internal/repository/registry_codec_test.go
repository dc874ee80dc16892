package repository

import (
	"encoding/json"
	"testing"

	"github.com/compozy/gitmerge/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDecodeRegistry(t *testing.T) {
	t.Run("Should decode releases in file order", func(t *testing.T) {
		data := []byte(`{"releases":[
			{"targetBranch":"release/2.0","strategy":"OCTOPUS","branches":[{"name":"feature/a"},{"name":"feature/b"}]},
			{"targetBranch":"release/1.0","strategy":"RESOLVE","branches":[]}
		]}`)
		reg, err := DecodeRegistry(data)
		require.NoError(t, err)
		require.Len(t, reg.Releases, 2)
		assert.Equal(t, "release/2.0", reg.Releases[0].TargetBranch)
		assert.Equal(t, domain.MergeStrategyOctopus, reg.Releases[0].Strategy)
		assert.Equal(t, []domain.Branch{{Name: "feature/a"}, {Name: "feature/b"}}, reg.Releases[0].Branches)
		assert.Equal(t, domain.MergeStrategyResolve, reg.Releases[1].Strategy)
	})
	t.Run("Should treat missing or null releases as empty", func(t *testing.T) {
		for _, doc := range []string{`{}`, `{"releases":null}`, `{"releases":[]}`} {
			reg, err := DecodeRegistry([]byte(doc))
			require.NoError(t, err, doc)
			assert.NotNil(t, reg.Releases, doc)
			assert.Empty(t, reg.Releases, doc)
		}
	})
	t.Run("Should default absent branches and strategy", func(t *testing.T) {
		reg, err := DecodeRegistry([]byte(`{"releases":[{"targetBranch":"release/2.0"}]}`))
		require.NoError(t, err)
		assert.Equal(t, domain.MergeStrategyOctopus, reg.Releases[0].Strategy)
		assert.NotNil(t, reg.Releases[0].Branches)
		assert.Empty(t, reg.Releases[0].Branches)
	})
	t.Run("Should keep unknown members", func(t *testing.T) {
		data := []byte(`{"schema": 2, "releases":[{"targetBranch":"release/2.0","owner":{"team": "core"},
			"branches":[{"name":"feature/a","merged":true}]}]}`)
		reg, err := DecodeRegistry(data)
		require.NoError(t, err)
		assert.Equal(t, domain.Extra{"schema": json.RawMessage(`2`)}, reg.Extra)
		assert.Equal(t, domain.Extra{"owner": json.RawMessage(`{"team":"core"}`)}, reg.Releases[0].Extra)
		assert.Equal(t, domain.Extra{"merged": json.RawMessage(`true`)}, reg.Releases[0].Branches[0].Extra)
	})
	t.Run("Should reject structurally invalid documents", func(t *testing.T) {
		cases := []struct {
			name string
			doc  string
		}{
			{name: "empty input", doc: ``},
			{name: "truncated", doc: `{"releases":[{"targetBranch":"release/2.0"`},
			{name: "top level array", doc: `[]`},
			{name: "top level null", doc: `null`},
			{name: "releases not an array", doc: `{"releases":{}}`},
			{name: "null release", doc: `{"releases":[null]}`},
			{name: "missing target", doc: `{"releases":[{"strategy":"OCTOPUS"}]}`},
			{name: "numeric target", doc: `{"releases":[{"targetBranch":2}]}`},
			{name: "unknown strategy", doc: `{"releases":[{"targetBranch":"release/2.0","strategy":"SQUASH"}]}`},
			{name: "branches not an array", doc: `{"releases":[{"targetBranch":"release/2.0","branches":"a"}]}`},
			{name: "branch without name", doc: `{"releases":[{"targetBranch":"release/2.0","branches":[{}]}]}`},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				reg, err := DecodeRegistry([]byte(tc.doc))
				require.Error(t, err)
				assert.Nil(t, reg)
				var decodeErr *DecodeError
				assert.ErrorAs(t, err, &decodeErr)
			})
		}
	})
	t.Run("Should name the offending member", func(t *testing.T) {
		_, err := DecodeRegistry([]byte(`{"releases":[{"targetBranch":"release/1.0"},{"targetBranch":"release/2.0","strategy":"X"}]}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "releases[1].strategy")
	})
}

func TestEncodeRegistry(t *testing.T) {
	t.Run("Should produce an indented document with a stable member order", func(t *testing.T) {
		reg := domain.NewRegistry()
		release := domain.NewRelease("release/2.0")
		release.Branches = []domain.Branch{{Name: "feature/a", Extra: domain.Extra{"merged": json.RawMessage(`false`)}}}
		reg.Releases = append(reg.Releases, release)
		data, err := EncodeRegistry(reg)
		require.NoError(t, err)
		expected := `{
  "releases": [
    {
      "targetBranch": "release/2.0",
      "strategy": "OCTOPUS",
      "branches": [
        {
          "name": "feature/a",
          "merged": false
        }
      ]
    }
  ]
}
`
		assert.Equal(t, expected, string(data))
	})
	t.Run("Should encode an empty registry with an empty array", func(t *testing.T) {
		data, err := EncodeRegistry(domain.NewRegistry())
		require.NoError(t, err)
		assert.Equal(t, "{\n  \"releases\": []\n}\n", string(data))
	})
	t.Run("Should sort unknown members after known ones", func(t *testing.T) {
		reg := domain.NewRegistry()
		reg.Extra = domain.Extra{"zeta": json.RawMessage(`1`), "alpha": json.RawMessage(`"x"`)}
		data, err := EncodeRegistry(reg)
		require.NoError(t, err)
		assert.Equal(t, "{\n  \"releases\": [],\n  \"alpha\": \"x\",\n  \"zeta\": 1\n}\n", string(data))
	})
	t.Run("Should not escape HTML characters", func(t *testing.T) {
		reg := domain.NewRegistry()
		release := domain.NewRelease("release/a&b")
		reg.Releases = append(reg.Releases, release)
		data, err := EncodeRegistry(reg)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"release/a&b"`)
	})
	t.Run("Should be deterministic", func(t *testing.T) {
		reg := domain.NewRegistry()
		reg.Extra = domain.Extra{"b": json.RawMessage(`1`), "a": json.RawMessage(`2`), "c": json.RawMessage(`3`)}
		first, err := EncodeRegistry(reg)
		require.NoError(t, err)
		for i := 0; i < 10; i++ {
			again, err := EncodeRegistry(reg)
			require.NoError(t, err)
			assert.Equal(t, first, again)
		}
	})
}

func extraGen() *rapid.Generator[domain.Extra] {
	return rapid.Custom(func(t *rapid.T) domain.Extra {
		n := rapid.IntRange(0, 2).Draw(t, "extraCount")
		if n == 0 {
			return nil
		}
		extra := domain.Extra{}
		for i := 0; i < n; i++ {
			key := rapid.StringMatching(`x[a-z]{1,6}`).Draw(t, "extraKey")
			value := rapid.SampledFrom([]string{`true`, `1`, `"done"`, `{"a":[1,2]}`, `null`}).Draw(t, "extraValue")
			extra[key] = json.RawMessage(value)
		}
		return extra
	})
}

func registryGen() *rapid.Generator[*domain.Registry] {
	strategies := []domain.MergeStrategy{
		domain.MergeStrategyOctopus,
		domain.MergeStrategyResolve,
		domain.MergeStrategyRecursive,
		domain.MergeStrategyOrt,
		domain.MergeStrategyOurs,
		domain.MergeStrategySubtree,
	}
	return rapid.Custom(func(t *rapid.T) *domain.Registry {
		reg := domain.NewRegistry()
		reg.Extra = extraGen().Draw(t, "registryExtra")
		releases := rapid.IntRange(0, 5).Draw(t, "releases")
		for i := 0; i < releases; i++ {
			release := domain.Release{
				TargetBranch: "release/" + rapid.String().Draw(t, "target"),
				Strategy:     rapid.SampledFrom(strategies).Draw(t, "strategy"),
				Branches:     []domain.Branch{},
				Extra:        extraGen().Draw(t, "releaseExtra"),
			}
			branches := rapid.IntRange(0, 4).Draw(t, "branches")
			for j := 0; j < branches; j++ {
				release.Branches = append(release.Branches, domain.Branch{
					Name:  rapid.String().Draw(t, "branch"),
					Extra: extraGen().Draw(t, "branchExtra"),
				})
			}
			reg.Releases = append(reg.Releases, release)
		}
		return reg
	})
}

func TestRegistryCodecRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		reg := registryGen().Draw(t, "registry")
		data, err := EncodeRegistry(reg)
		require.NoError(t, err)
		decoded, err := DecodeRegistry(data)
		require.NoError(t, err)
		assert.Equal(t, reg, decoded)
		again, err := EncodeRegistry(decoded)
		require.NoError(t, err)
		assert.Equal(t, string(data), string(again))
	})
}
