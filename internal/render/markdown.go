// Package render converts post bodies to HTML and wraps them in the
// page shell.
package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Markdown renders a markdown body into an HTML fragment.
type Markdown interface {
	Render(body []byte) ([]byte, error)
}

// Goldmark is a stateless Markdown backed by goldmark with GFM enabled.
type Goldmark struct {
	md goldmark.Markdown
}

func NewGoldmark() *Goldmark {
	return &Goldmark{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				gmhtml.WithUnsafe(),
			),
		),
	}
}

func (g *Goldmark) Render(body []byte) ([]byte, error) {
	if len(body) == 0 {
		return []byte{}, nil
	}
	var buf bytes.Buffer
	if err := g.md.Convert(body, &buf); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}
	return buf.Bytes(), nil
}
