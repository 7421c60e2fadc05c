package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/blockreplace/pkg/block"
	"github.com/walteh/blockreplace/pkg/eligibility"
	"github.com/walteh/blockreplace/pkg/richtext"
	"github.com/walteh/blockreplace/pkg/session"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_YAML(t *testing.T) {
	ctx := context.Background()
	path := writeFile(t, "search.yaml", `
shortcut: Ctrl+H
case_sensitive: true
types:
  add:
    - callout
    - embed/*
  remove:
    - code
fields:
  image:
    - caption
`)

	cfg, err := Load(ctx, path)
	require.NoError(t, err)

	assert.Equal(t, "Ctrl+H", cfg.Shortcut)
	require.NotNil(t, cfg.CaseSensitive)
	assert.True(t, *cfg.CaseSensitive)
	assert.Equal(t, []string{"callout", "embed/*"}, cfg.Types.Add)
	assert.Equal(t, []string{"code"}, cfg.Types.Remove)
	assert.Equal(t, map[string][]string{"image": {"caption"}}, cfg.Fields)
}

func TestLoad_JSON(t *testing.T) {
	ctx := context.Background()
	path := writeFile(t, "search.json", `{
  "shortcut": "Ctrl+H",
  "types": {"add": ["callout"]},
  "fields": {"image": ["caption", "alt"]}
}`)

	cfg, err := Load(ctx, path)
	require.NoError(t, err)

	assert.Equal(t, "Ctrl+H", cfg.Shortcut)
	assert.Nil(t, cfg.CaseSensitive)
	assert.Equal(t, []string{"callout"}, cfg.Types.Add)
	assert.Equal(t, map[string][]string{"image": {"caption", "alt"}}, cfg.Fields)
}

func TestLoad_HCL(t *testing.T) {
	ctx := context.Background()
	path := writeFile(t, "search.hcl", `
shortcut       = "Ctrl+H"
case_sensitive = false

types {
  add    = ["callout"]
  remove = ["code"]
}

fields "image" {
  names = ["caption"]
}
`)

	cfg, err := Load(ctx, path)
	require.NoError(t, err)

	assert.Equal(t, "Ctrl+H", cfg.Shortcut)
	require.NotNil(t, cfg.CaseSensitive)
	assert.False(t, *cfg.CaseSensitive)
	assert.Equal(t, []string{"callout"}, cfg.Types.Add)
	assert.Equal(t, []string{"code"}, cfg.Types.Remove)
	assert.Equal(t, map[string][]string{"image": {"caption"}}, cfg.Fields)
}

func TestLoad_Errors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		filename string
		content  string
	}{
		{
			name:     "unknown_extension",
			filename: "search.toml",
			content:  "shortcut = 'x'",
		},
		{
			name:     "invalid_yaml",
			filename: "search.yaml",
			content:  "shortcut: [",
		},
		{
			name:     "invalid_json",
			filename: "search.json",
			content:  "{",
		},
		{
			name:     "invalid_hcl",
			filename: "search.hcl",
			content:  "types {",
		},
		{
			name:     "malformed_type_pattern",
			filename: "search.yaml",
			content:  "types:\n  add:\n    - \"[bad\"\n",
		},
		{
			name:     "empty_field_pattern",
			filename: "search.yaml",
			content:  "fields:\n  image:\n    - \"\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.filename, tt.content)
			_, err := Load(ctx, path)
			require.Error(t, err)
		})
	}

	t.Run("missing_file", func(t *testing.T) {
		_, err := Load(ctx, filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})
}

func TestFile_Provider(t *testing.T) {
	ctx := context.Background()
	registry := block.NewStaticRegistry(
		block.TypeInfo{Name: "paragraph", Category: block.CategoryText},
		block.TypeInfo{Name: "code", Category: block.CategoryText},
		block.TypeInfo{Name: "image", Category: block.CategoryMedia},
	)

	cfg := &File{
		Types: TypeRules{
			Add:    []string{"image"},
			Remove: []string{"code"},
		},
	}

	rules, err := eligibility.Resolve(ctx, registry, cfg.Provider())
	require.NoError(t, err)

	assert.True(t, rules.Eligible(&block.Unit{Type: "paragraph"}))
	assert.True(t, rules.Eligible(&block.Unit{Type: "image"}))
	assert.False(t, rules.Eligible(&block.Unit{Type: "code"}))
}

func TestFile_ProviderGlobRemove(t *testing.T) {
	ctx := context.Background()
	registry := block.NewStaticRegistry(
		block.TypeInfo{Name: "paragraph", Category: block.CategoryText},
		block.TypeInfo{Name: "embed/tweet", Category: block.CategoryText},
		block.TypeInfo{Name: "embed/video", Category: block.CategoryText},
	)

	cfg := &File{Types: TypeRules{Remove: []string{"embed/*"}}}

	rules, err := eligibility.Resolve(ctx, registry, cfg.Provider())
	require.NoError(t, err)

	assert.True(t, rules.Eligible(&block.Unit{Type: "paragraph"}))
	assert.False(t, rules.Eligible(&block.Unit{Type: "embed/tweet"}))
	assert.False(t, rules.Eligible(&block.Unit{Type: "embed/video"}))
}

func TestFile_Options(t *testing.T) {
	yes := true
	cfg := &File{
		Shortcut:      "Ctrl+H",
		CaseSensitive: &yes,
	}

	opts := cfg.Options()
	assert.Equal(t, "Ctrl+H", opts.Shortcut)
	assert.True(t, opts.CaseSensitive)
	require.Len(t, opts.Providers, 1)

	empty := &File{}
	assert.False(t, empty.Options().CaseSensitive)
	assert.Equal(t, "", empty.Options().Shortcut)
}

func TestFile_OptionsDriveSession(t *testing.T) {
	ctx := context.Background()
	path := writeFile(t, "search.yaml", "case_sensitive: true\n")

	cfg, err := Load(ctx, path)
	require.NoError(t, err)

	host := block.NewMemoryHost(&block.Unit{
		ID:     "u1",
		Type:   "paragraph",
		Fields: []block.Field{{Name: "text", Value: richtext.Plain("Cat cat")}},
	})
	registry := block.NewStaticRegistry(
		block.TypeInfo{Name: "paragraph", Category: block.CategoryText},
	)

	s, err := session.New(ctx, host, registry, cfg.Options())
	require.NoError(t, err)
	assert.Equal(t, session.DefaultShortcut, s.Shortcut())

	require.NoError(t, s.SetQuery(ctx, "cat"))
	assert.Equal(t, 1, s.MatchCount())
}
