package loader

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Bitlatte/postpress/internal/config"
)

// ErrMalformedMetadata is returned by a parser that found a metadata block
// it could not decode. The body returned alongside it is the whole source.
var ErrMalformedMetadata = errors.New("malformed metadata")

// StructuredAvailable reports whether front matter parsing is compiled in.
var StructuredAvailable = true

// DateLayout is the only date form a Document carries.
const DateLayout = "2006-01-02"

// Metadata is what a parser extracts ahead of the body.
type Metadata struct {
	Title   string
	Date    string
	Excerpt string
	Tags    []string
	Cover   string

	// RawDate is the date value as written, kept when it failed to
	// normalize so the caller can report it.
	RawDate string
}

// MetadataParser splits a source document into metadata and body text.
type MetadataParser interface {
	Name() string
	Parse(src []byte) (Metadata, string, error)
}

// Select picks the parser for mode once, at startup.
func Select(mode string) (MetadataParser, error) {
	switch mode {
	case config.MetadataAuto, "":
		if StructuredAvailable {
			return NewFrontMatter(), nil
		}
		return Positional{}, nil
	case config.MetadataFrontMatter:
		if !StructuredAvailable {
			return nil, fmt.Errorf("front matter parsing is not available")
		}
		return NewFrontMatter(), nil
	case config.MetadataPositional:
		return Positional{}, nil
	default:
		return nil, fmt.Errorf("unknown metadata mode %q", mode)
	}
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	DateLayout,
}

// normalizeDate returns v as YYYY-MM-DD, or "" when v is not a date.
func normalizeDate(v any) string {
	switch d := v.(type) {
	case nil:
		return ""
	case time.Time:
		if d.IsZero() {
			return ""
		}
		return d.Format(DateLayout)
	case string:
		s := strings.TrimSpace(d)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.Format(DateLayout)
			}
		}
		return ""
	default:
		return normalizeDate(fmt.Sprint(d))
	}
}

func rawString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

// normalizeTags accepts a list or a comma separated string.
func normalizeTags(v any) []string {
	var raw []string
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		raw = strings.Split(t, ",")
	case []string:
		raw = t
	case []any:
		for _, item := range t {
			raw = append(raw, fmt.Sprint(item))
		}
	default:
		raw = []string{fmt.Sprint(t)}
	}

	var tags []string
	for _, tag := range raw {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
