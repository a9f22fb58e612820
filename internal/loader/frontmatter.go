package loader

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v2"
)

// FrontMatter reads a leading YAML (---) or TOML (+++) block.
type FrontMatter struct {
	formats []*frontmatter.Format
}

func NewFrontMatter() *FrontMatter {
	return &FrontMatter{
		formats: []*frontmatter.Format{
			frontmatter.NewFormat("---", "---", yaml.Unmarshal),
			frontmatter.NewFormat("+++", "+++", toml.Unmarshal),
		},
	}
}

func (*FrontMatter) Name() string { return "frontmatter" }

// frontMatterFields are decoded loosely so that dates and tags can be
// written in more than one shape.
type frontMatterFields struct {
	Title   string `yaml:"title" toml:"title"`
	Date    any    `yaml:"date" toml:"date"`
	Excerpt string `yaml:"excerpt" toml:"excerpt"`
	Summary string `yaml:"summary" toml:"summary"`
	Tags    any    `yaml:"tags" toml:"tags"`
	Cover   string `yaml:"cover" toml:"cover"`
	Image   string `yaml:"image" toml:"image"`
}

// Parse returns the metadata and the body after the block. A document
// without a block is all body.
func (p *FrontMatter) Parse(src []byte) (Metadata, string, error) {
	if !p.hasBlock(src) {
		return Metadata{}, string(src), nil
	}

	var fields frontMatterFields
	body, err := frontmatter.Parse(bytes.NewReader(src), &fields, p.formats...)
	if err != nil {
		return Metadata{}, string(src), fmt.Errorf("%w: %v", ErrMalformedMetadata, err)
	}

	meta := Metadata{
		Title:   fields.Title,
		Date:    normalizeDate(fields.Date),
		Excerpt: fields.Excerpt,
		Tags:    normalizeTags(fields.Tags),
		Cover:   fields.Cover,
	}
	if meta.Excerpt == "" {
		meta.Excerpt = fields.Summary
	}
	if meta.Cover == "" {
		meta.Cover = fields.Image
	}
	if meta.Date == "" {
		meta.RawDate = rawString(fields.Date)
	}
	return meta, string(body), nil
}

// hasBlock reports whether the first line is an opening delimiter.
func (p *FrontMatter) hasBlock(src []byte) bool {
	first, _, _ := bytes.Cut(src, []byte("\n"))
	first = bytes.TrimSpace(first)
	for _, f := range p.formats {
		if string(first) == f.Start {
			return true
		}
	}
	return false
}
