package model

import (
	"path"
	"sort"
)

// PostsDir is the directory, relative to the index page, that holds
// generated post pages.
const PostsDir = "posts"

// Document is a single source post. It lives for one build.
type Document struct {
	Identifier   string
	SourcePath   string
	Title        string
	Date         string // YYYY-MM-DD or empty
	BodyText     string
	RenderedHTML string
	Excerpt      string
	Tags         []string
	Cover        string
}

// URL returns the page location relative to the index page.
func (d *Document) URL() string {
	return path.Join(PostsDir, d.Identifier+".html")
}

// Summary returns the index record for d.
func (d *Document) Summary() Summary {
	return Summary{
		Title:   d.Title,
		Date:    d.Date,
		URL:     d.URL(),
		Excerpt: d.Excerpt,
		Tags:    append([]string(nil), d.Tags...),
		Cover:   d.Cover,
	}
}

// Summary is one card on the index page.
type Summary struct {
	Title   string
	Date    string
	URL     string
	Excerpt string
	Tags    []string
	Cover   string
}

// SiteIndex holds summaries in loader enumeration order.
type SiteIndex struct {
	Entries []Summary
}

// NewSiteIndex builds an index from docs, preserving their order.
func NewSiteIndex(docs []*Document) *SiteIndex {
	idx := &SiteIndex{Entries: make([]Summary, 0, len(docs))}
	for _, d := range docs {
		idx.Add(d.Summary())
	}
	return idx
}

func (s *SiteIndex) Add(sum Summary) { s.Entries = append(s.Entries, sum) }

func (s *SiteIndex) Len() int { return len(s.Entries) }

// Tags returns every tag used across the index, sorted and deduplicated.
func (s *SiteIndex) Tags() []string {
	seen := map[string]struct{}{}
	var tags []string
	for _, e := range s.Entries {
		for _, t := range e.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	sort.Strings(tags)
	return tags
}
