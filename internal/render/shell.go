package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/Bitlatte/postpress/internal/model"
)

const shellHTML = `<!doctype html>
<html lang="{{.Lang}}">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width,initial-scale=1">
  <title>{{.PageTitle}}</title>
  <link rel="stylesheet" href="{{.Stylesheet}}">
</head>
<body>
  <div class="container">
    <a href="{{.IndexURL}}" class="site-title"><h1>{{.SiteTitle}}</h1></a>
    <hr>
    {{.Content}}
    <hr>
    <footer>Generated {{.Generated}}</footer>
  </div>
</body>
</html>
`

// Shell is the fixed page layout shared by every post page and by the
// index page when no site template exists.
type Shell struct {
	tpl *template.Template
}

func NewShell() *Shell {
	return &Shell{tpl: template.Must(template.New("page").Parse(shellHTML))}
}

// Page executes the shell with data.
func (s *Shell) Page(data model.PageData) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.tpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute page shell for %q: %w", data.PageTitle, err)
	}
	return buf.Bytes(), nil
}

// Article wraps a rendered body for embedding in the shell.
func Article(fragment []byte) template.HTML {
	return template.HTML("<article>\n" + string(fragment) + "\n</article>")
}
