package repository

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/compozy/gitmerge/internal/domain"
)

const (
	keyReleases     = "releases"
	keyTargetBranch = "targetBranch"
	keyStrategy     = "strategy"
	keyBranches     = "branches"
	keyName         = "name"
)

// DecodeError reports a releases document that cannot be turned into a
// registry.
type DecodeError struct {
	// Field is the JSON path of the offending member, empty for the document.
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("malformed releases document: %v", e.Err)
	}
	return fmt.Sprintf("malformed releases document at %s: %v", e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// DecodeRegistry parses a releases document. A missing or null releases
// array yields an empty registry; members it does not know are kept.
func DecodeRegistry(data []byte) (*domain.Registry, error) {
	root, err := decodeObject(data, "")
	if err != nil {
		return nil, err
	}
	reg := domain.NewRegistry()
	if raw, ok := root[keyReleases]; ok {
		delete(root, keyReleases)
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, &DecodeError{Field: keyReleases, Err: err}
		}
		for i, item := range items {
			release, err := decodeRelease(item, fmt.Sprintf("%s[%d]", keyReleases, i))
			if err != nil {
				return nil, err
			}
			reg.Releases = append(reg.Releases, release)
		}
	}
	extra, err := compactExtra(root)
	if err != nil {
		return nil, err
	}
	reg.Extra = extra
	return reg, nil
}

func decodeRelease(data []byte, path string) (domain.Release, error) {
	obj, err := decodeObject(data, path)
	if err != nil {
		return domain.Release{}, err
	}
	release := domain.Release{Strategy: domain.DefaultMergeStrategy, Branches: []domain.Branch{}}
	target, err := requiredString(obj, keyTargetBranch, path)
	if err != nil {
		return domain.Release{}, err
	}
	release.TargetBranch = target
	if raw, ok := obj[keyStrategy]; ok {
		delete(obj, keyStrategy)
		var token *string
		if err := json.Unmarshal(raw, &token); err != nil {
			return domain.Release{}, &DecodeError{Field: path + "." + keyStrategy, Err: err}
		}
		if token != nil {
			strategy, err := domain.ParseMergeStrategy(*token)
			if err != nil {
				return domain.Release{}, &DecodeError{Field: path + "." + keyStrategy, Err: err}
			}
			release.Strategy = strategy
		}
	}
	if raw, ok := obj[keyBranches]; ok {
		delete(obj, keyBranches)
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return domain.Release{}, &DecodeError{Field: path + "." + keyBranches, Err: err}
		}
		for i, item := range items {
			branch, err := decodeBranch(item, fmt.Sprintf("%s.%s[%d]", path, keyBranches, i))
			if err != nil {
				return domain.Release{}, err
			}
			release.Branches = append(release.Branches, branch)
		}
	}
	if release.Extra, err = compactExtra(obj); err != nil {
		return domain.Release{}, err
	}
	return release, nil
}

func decodeBranch(data []byte, path string) (domain.Branch, error) {
	obj, err := decodeObject(data, path)
	if err != nil {
		return domain.Branch{}, err
	}
	name, err := requiredString(obj, keyName, path)
	if err != nil {
		return domain.Branch{}, err
	}
	extra, err := compactExtra(obj)
	if err != nil {
		return domain.Branch{}, err
	}
	return domain.Branch{Name: name, Extra: extra}, nil
}

// decodeObject unmarshals data into its members. Null and non-object values
// are rejected.
func decodeObject(data []byte, path string) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, &DecodeError{Field: path, Err: err}
	}
	if obj == nil {
		return nil, &DecodeError{Field: path, Err: fmt.Errorf("expected an object, got null")}
	}
	return obj, nil
}

func requiredString(obj map[string]json.RawMessage, key, path string) (string, error) {
	field := key
	if path != "" {
		field = path + "." + key
	}
	raw, ok := obj[key]
	if !ok {
		return "", &DecodeError{Field: field, Err: fmt.Errorf("missing required member")}
	}
	delete(obj, key)
	var value *string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", &DecodeError{Field: field, Err: err}
	}
	if value == nil {
		return "", &DecodeError{Field: field, Err: fmt.Errorf("must not be null")}
	}
	return *value, nil
}

func compactExtra(obj map[string]json.RawMessage) (domain.Extra, error) {
	if len(obj) == 0 {
		return nil, nil
	}
	extra := make(domain.Extra, len(obj))
	for k, v := range obj {
		var buf bytes.Buffer
		if err := json.Compact(&buf, v); err != nil {
			return nil, &DecodeError{Field: k, Err: err}
		}
		extra[k] = buf.Bytes()
	}
	return extra, nil
}

// EncodeRegistry renders reg as an indented document. Known members come
// first in a fixed order, followed by unknown members sorted by key, so the
// same registry always produces the same bytes.
func EncodeRegistry(reg *domain.Registry) ([]byte, error) {
	var buf bytes.Buffer
	releases := make([]json.RawMessage, 0, len(reg.Releases))
	for _, release := range reg.Releases {
		raw, err := encodeRelease(release)
		if err != nil {
			return nil, err
		}
		releases = append(releases, raw)
	}
	if err := writeObject(&buf, []member{{key: keyReleases, value: rawArray(releases)}}, reg.Extra); err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, fmt.Errorf("failed to indent releases document: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

func encodeRelease(release domain.Release) (json.RawMessage, error) {
	branches := make([]json.RawMessage, 0, len(release.Branches))
	for _, branch := range release.Branches {
		var buf bytes.Buffer
		if err := writeObject(&buf, []member{{key: keyName, value: branch.Name}}, branch.Extra); err != nil {
			return nil, err
		}
		branches = append(branches, buf.Bytes())
	}
	var buf bytes.Buffer
	members := []member{
		{key: keyTargetBranch, value: release.TargetBranch},
		{key: keyStrategy, value: string(release.Strategy)},
		{key: keyBranches, value: rawArray(branches)},
	}
	if err := writeObject(&buf, members, release.Extra); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type member struct {
	key   string
	value any
}

// rawArray marshals to a JSON array of already encoded elements.
type rawArray []json.RawMessage

func (a rawArray) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, item := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(item)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func writeObject(buf *bytes.Buffer, known []member, extra domain.Extra) error {
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		known = append(known, member{key: k, value: extra[k]})
	}
	buf.WriteByte('{')
	for i, m := range known {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeValue(buf, m.key); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := writeValue(buf, m.value); err != nil {
			return fmt.Errorf("failed to encode %s: %w", m.key, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

func writeValue(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	// Encoder terminates every value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}
