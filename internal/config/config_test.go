package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefault_Validates(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestResolve_RelativeJoinsRoot(t *testing.T) {
	cfg := Default()
	cfg.Root = "/srv/blog"

	require.Equal(t, filepath.Join("/srv/blog", "posts"), cfg.PostsPath())
	require.Equal(t, "/tmp/out", cfg.Resolve("/tmp/out"))
	require.Equal(t, "", cfg.Resolve(""))
}

func TestValidate_RejectsBadSettings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty output", func(c *Config) { c.OutputDir = "" }},
		{"empty posts", func(c *Config) { c.PostsDir = " " }},
		{"output is root", func(c *Config) { c.OutputDir = "." }},
		{"output is posts", func(c *Config) { c.OutputDir = "posts" }},
		{"output is filesystem root", func(c *Config) { c.OutputDir = "/" }},
		{"output contains posts", func(c *Config) { c.PostsDir = "public/src" }},
		{"output contains assets", func(c *Config) { c.AssetsDir = "public/static" }},
		{"output contains template", func(c *Config) { c.TemplatePath = "public/index.html" }},
		{"output is parent of root", func(c *Config) { c.OutputDir = ".." }},
		{"output is absolute ancestor of root", func(c *Config) { c.OutputDir = filepath.Dir(c.Root) }},
		{"extension without dot", func(c *Config) { c.Extension = "md" }},
		{"bare dot extension", func(c *Config) { c.Extension = "." }},
		{"unknown metadata", func(c *Config) { c.Metadata = "toml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Root = t.TempDir()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestValidate_SiblingWithSharedPrefixIsAllowed(t *testing.T) {
	cfg := Default()
	cfg.Root = t.TempDir()
	cfg.OutputDir = "posts-out"
	require.NoError(t, cfg.Validate())
}

func TestWithin(t *testing.T) {
	require.True(t, Within("/a/b", "/a/b"))
	require.True(t, Within("/a/b", "/a/b/c/d"))
	require.True(t, Within("/a/b/", "/a/b/c"))
	require.True(t, Within("/", "/x"))
	require.False(t, Within("/a/b", "/a/bc"))
	require.False(t, Within("/a/b", "/a"))
}
