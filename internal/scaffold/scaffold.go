// Package scaffold creates new post files with a front matter block.
package scaffold

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/Bitlatte/postpress/internal/loader"
	"github.com/Bitlatte/postpress/internal/slug"
)

var (
	ErrPostExists  = errors.New("post already exists")
	ErrNoPostsDir  = errors.New("posts directory not found")
	ErrEmptyTitle  = errors.New("title is required")
	ErrInvalidDate = errors.New("date must be YYYY-MM-DD")
)

const starterBody = `
Start writing!

<!-- Put images next to the site assets and reference them like this: -->
<!-- <p align="center"><img src="../assets/img/cover.svg" alt="cover"></p> -->
`

// Post describes the post to create.
type Post struct {
	Title   string
	Date    string
	Tags    []string
	Excerpt string
	Cover   string
}

type frontMatter struct {
	Title   string   `yaml:"title"`
	Date    string   `yaml:"date"`
	Tags    []string `yaml:"tags"`
	Excerpt string   `yaml:"excerpt"`
	Cover   string   `yaml:"cover,omitempty"`
}

// NewPost writes <date>-<slug>.md into dir and returns its path. An empty
// Date means the day of now.
func NewPost(dir string, p Post, now time.Time) (string, error) {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return "", ErrEmptyTitle
	}
	date := p.Date
	if date == "" {
		date = now.Format(loader.DateLayout)
	} else if _, err := time.Parse(loader.DateLayout, date); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}

	if info, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) || (err == nil && !info.IsDir()) {
		return "", fmt.Errorf("%w: %s", ErrNoPostsDir, dir)
	} else if err != nil {
		return "", err
	}

	tags := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	meta, err := yaml.Marshal(frontMatter{
		Title:   title,
		Date:    date,
		Tags:    tags,
		Excerpt: p.Excerpt,
		Cover:   p.Cover,
	})
	if err != nil {
		return "", fmt.Errorf("encode front matter: %w", err)
	}

	path := filepath.Join(dir, date+"-"+slug.Make(title)+".md")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return "", fmt.Errorf("%w: %s", ErrPostExists, path)
	}
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}

	content := "---\n" + string(meta) + "---\n" + starterBody
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, f.Close()
}

// SplitTags parses a comma separated flag value.
func SplitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
