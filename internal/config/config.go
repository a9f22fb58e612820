package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrInvalidConfig is wrapped by every error returned from Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Metadata extraction modes.
const (
	MetadataAuto        = "auto"
	MetadataFrontMatter = "frontmatter"
	MetadataPositional  = "positional"
)

// DefaultMarker is the insertion point looked up in the site template.
const DefaultMarker = "<!-- POSTS -->"

// Config describes where a build reads from and writes to. Relative
// directories are resolved against Root.
type Config struct {
	Root         string `mapstructure:"root"`
	PostsDir     string `mapstructure:"postsDir"`
	OutputDir    string `mapstructure:"outputDir"`
	AssetsDir    string `mapstructure:"assetsDir"`
	AssetsDest   string `mapstructure:"assetsDest"`
	TemplatePath string `mapstructure:"template"`
	Extension    string `mapstructure:"extension"`

	SiteTitle    string `mapstructure:"siteTitle"`
	Lang         string `mapstructure:"lang"`
	Stylesheet   string `mapstructure:"stylesheet"`
	IndexHeading string `mapstructure:"indexHeading"`
	IndexMarker  string `mapstructure:"indexMarker"`

	// Metadata selects the metadata parser: auto, frontmatter or positional.
	Metadata string `mapstructure:"metadata"`
}

// Default returns the conventional project layout rooted at the
// current directory.
func Default() Config {
	return Config{
		Root:         ".",
		PostsDir:     "posts",
		OutputDir:    "public",
		AssetsDir:    "assets",
		AssetsDest:   "assets",
		TemplatePath: filepath.Join("templates", "index.html"),
		Extension:    ".md",
		SiteTitle:    "My Blog",
		Lang:         "en",
		Stylesheet:   "assets/css/style.css",
		IndexHeading: "Latest Posts",
		IndexMarker:  DefaultMarker,
		Metadata:     MetadataAuto,
	}
}

// Resolve joins p onto Root unless p is already absolute.
func (c Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	root := c.Root
	if root == "" {
		root = "."
	}
	return filepath.Join(root, p)
}

func (c Config) PostsPath() string    { return c.Resolve(c.PostsDir) }
func (c Config) OutputPath() string   { return c.Resolve(c.OutputDir) }
func (c Config) AssetsPath() string   { return c.Resolve(c.AssetsDir) }
func (c Config) TemplateFile() string { return c.Resolve(c.TemplatePath) }

// Validate reports settings a build cannot run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("%w: output directory is empty", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.PostsDir) == "" {
		return fmt.Errorf("%w: posts directory is empty", ErrInvalidConfig)
	}

	out, err := filepath.Abs(c.OutputPath())
	if err != nil {
		return fmt.Errorf("%w: output directory: %v", ErrInvalidConfig, err)
	}
	root, err := filepath.Abs(c.Resolve("."))
	if err != nil {
		return fmt.Errorf("%w: root: %v", ErrInvalidConfig, err)
	}
	posts, err := filepath.Abs(c.PostsPath())
	if err != nil {
		return fmt.Errorf("%w: posts directory: %v", ErrInvalidConfig, err)
	}
	if out == filepath.Dir(out) {
		return fmt.Errorf("%w: output directory %q is a filesystem root", ErrInvalidConfig, c.OutputDir)
	}

	// The output directory is removed on every build, so nothing the
	// build reads may live inside it.
	protected := []struct{ name, path string }{
		{"project root", root},
		{"posts directory", posts},
		{"assets directory", c.AssetsPath()},
		{"site template", c.TemplateFile()},
	}
	for _, p := range protected {
		if p.path == "" {
			continue
		}
		abs, err := filepath.Abs(p.path)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, p.name, err)
		}
		if Within(out, abs) {
			return fmt.Errorf("%w: output directory %q contains the %s", ErrInvalidConfig, c.OutputDir, p.name)
		}
	}

	if !strings.HasPrefix(c.Extension, ".") || len(c.Extension) < 2 {
		return fmt.Errorf("%w: extension %q must start with a dot", ErrInvalidConfig, c.Extension)
	}

	switch c.Metadata {
	case MetadataAuto, MetadataFrontMatter, MetadataPositional:
	default:
		return fmt.Errorf("%w: unknown metadata mode %q", ErrInvalidConfig, c.Metadata)
	}
	return nil
}

// Within reports whether path is dir or lies below it. Both are cleaned
// before comparing.
func Within(dir, path string) bool {
	dir, path = filepath.Clean(dir), filepath.Clean(path)
	if path == dir {
		return true
	}
	if !strings.HasSuffix(dir, string(filepath.Separator)) {
		dir += string(filepath.Separator)
	}
	return strings.HasPrefix(path, dir)
}
