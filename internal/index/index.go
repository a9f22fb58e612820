// Package index assembles the site index page from post summaries.
package index

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/Bitlatte/postpress/internal/logfields"
	"github.com/Bitlatte/postpress/internal/model"
	"github.com/Bitlatte/postpress/internal/render"
)

// MainClose is the closing tag the fragment is inserted before when the
// template has no marker.
const MainClose = "</main>"

// Tier names the splice strategy that produced the index page.
type Tier string

const (
	TierMarker   Tier = "marker"
	TierMain     Tier = "main"
	TierAppend   Tier = "append"
	TierFallback Tier = "fallback"
)

const fragmentHTML = `<h2>{{.Heading}}</h2>
{{- if .Tags}}
<ul class="tag-list">{{range .Tags}}<li><a href="#" data-tag="{{.}}">{{.}}</a></li>{{end}}</ul>
{{- end}}
<div class="post-list">
{{- range .Entries}}
  <div class="post-card" data-tags="{{join .Tags ","}}">
    {{- if .Cover}}
    <img class="post-thumb" src="{{.Cover}}" alt="{{.Title}}">
    {{- else}}
    <div class="post-thumb placeholder"></div>
    {{- end}}
    <h3><a href="./{{.URL}}">{{.Title}}</a></h3>
    {{- if .Date}}
    <small class="post-date">{{.Date}}</small>
    {{- end}}
    {{- if .Excerpt}}
    <p class="post-excerpt">{{.Excerpt}}</p>
    {{- end}}
    {{- if .Tags}}
    <ul class="post-tags">{{range .Tags}}<li>{{.}}</li>{{end}}</ul>
    {{- end}}
    <a class="read-more" href="./{{.URL}}">Read more</a>
  </div>
{{- end}}
</div>
`

var fragmentTpl = template.Must(template.New("index").
	Funcs(template.FuncMap{"join": strings.Join}).
	Parse(fragmentHTML))

// Fragment renders the heading, the tag list when any post is tagged,
// and one card per entry.
func Fragment(heading string, idx *model.SiteIndex) ([]byte, error) {
	var buf bytes.Buffer
	data := struct {
		Heading string
		Tags    []string
		Entries []model.Summary
	}{heading, idx.Tags(), idx.Entries}
	if err := fragmentTpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render index fragment: %w", err)
	}
	return buf.Bytes(), nil
}

// Splice inserts fragment into tpl: at the first marker, else before the
// first MainClose, else at the end.
func Splice(tpl []byte, marker string, fragment []byte) ([]byte, Tier) {
	if marker != "" {
		if i := bytes.Index(tpl, []byte(marker)); i >= 0 {
			return join(tpl[:i], fragment, tpl[i+len(marker):]), TierMarker
		}
	}
	if i := bytes.Index(tpl, []byte(MainClose)); i >= 0 {
		return join(tpl[:i], fragment, tpl[i:]), TierMain
	}
	return join(tpl, fragment, nil), TierAppend
}

func join(head, mid, tail []byte) []byte {
	out := make([]byte, 0, len(head)+len(mid)+len(tail))
	out = append(out, head...)
	out = append(out, mid...)
	return append(out, tail...)
}

// Assembler produces the index page.
type Assembler struct {
	TemplatePath string
	Marker       string
	Heading      string
	Shell        *render.Shell
	// Page supplies the shell fields used when no template exists.
	Page   model.PageData
	Logger *slog.Logger
}

// Assemble renders idx and places it into the site template, or into the
// page shell when the template file does not exist.
func (a *Assembler) Assemble(idx *model.SiteIndex) ([]byte, Tier, error) {
	logger := a.Logger
	if logger == nil {
		logger = slog.Default()
	}

	fragment, err := Fragment(a.Heading, idx)
	if err != nil {
		return nil, "", err
	}

	tpl, err := os.ReadFile(a.TemplatePath)
	switch {
	case a.TemplatePath == "" || errors.Is(err, fs.ErrNotExist):
		shell := a.Shell
		if shell == nil {
			shell = render.NewShell()
		}
		data := a.Page
		data.Content = template.HTML(fragment)
		page, err := shell.Page(data)
		if err != nil {
			return nil, "", err
		}
		logger.Info("No site template, using fallback page", logfields.Path(a.TemplatePath))
		return page, TierFallback, nil
	case err != nil:
		return nil, "", fmt.Errorf("read site template %s: %w", a.TemplatePath, err)
	}

	page, tier := Splice(tpl, a.Marker, fragment)
	if tier == TierAppend {
		logger.Warn("Site template has no marker or closing main tag, appending index",
			logfields.Path(a.TemplatePath), slog.String("marker", a.Marker))
	}
	return page, tier, nil
}
