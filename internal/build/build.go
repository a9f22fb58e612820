// Package build runs the post-to-site pipeline: load, render, assemble
// the index, write everything out.
package build

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"
	"time"

	"github.com/Bitlatte/postpress/internal/config"
	"github.com/Bitlatte/postpress/internal/index"
	"github.com/Bitlatte/postpress/internal/loader"
	"github.com/Bitlatte/postpress/internal/logfields"
	"github.com/Bitlatte/postpress/internal/model"
	"github.com/Bitlatte/postpress/internal/output"
	"github.com/Bitlatte/postpress/internal/render"
)

// IndexFile is the name of the aggregated index page.
const IndexFile = "index.html"

// Report summarizes a finished build.
type Report struct {
	Output     string
	Documents  int
	Pages      []string
	Collisions []loader.Collision
	Tier       index.Tier
	Assets     bool
	Duration   time.Duration
}

type options struct {
	now      func() time.Time
	logger   *slog.Logger
	renderer render.Markdown
	parser   loader.MetadataParser
}

// Option customizes Run.
type Option func(*options)

// WithClock fixes the generation timestamp source.
func WithClock(now func() time.Time) Option { return func(o *options) { o.now = now } }

func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }

func WithRenderer(r render.Markdown) Option { return func(o *options) { o.renderer = r } }

// WithParser overrides the parser chosen from cfg.Metadata.
func WithParser(p loader.MetadataParser) Option { return func(o *options) { o.parser = p } }

type renderedPage struct {
	rel  string
	data []byte
}

// Run builds the site described by cfg. Documents are read and rendered
// before the output directory is touched; a failure after that point
// leaves a partially written output directory.
func Run(cfg config.Config, opts ...Option) (*Report, error) {
	o := options{now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	start := o.now()

	if err := cfg.Validate(); err != nil {
		return nil, wrap(err, CategoryConfig, "validate config")
	}

	postsDir := cfg.PostsPath()
	if _, err := os.Stat(postsDir); errors.Is(err, fs.ErrNotExist) {
		logger.Warn("No posts directory, skipping build", logfields.Path(postsDir))
		return nil, wrap(ErrNoSources, CategoryInput, "%s", postsDir)
	} else if err != nil {
		return nil, wrap(err, CategoryInput, "stat posts directory")
	}

	parser := o.parser
	if parser == nil {
		p, err := loader.Select(cfg.Metadata)
		if err != nil {
			return nil, wrap(err, CategoryConfig, "select metadata parser")
		}
		parser = p
	}
	renderer := o.renderer
	if renderer == nil {
		renderer = render.NewGoldmark()
	}

	logger.Info("Loading posts", logfields.Stage("load"), logfields.Path(postsDir),
		slog.String("parser", parser.Name()))
	loaded, err := loader.New(parser, cfg.Extension, logger).Load(postsDir)
	if err != nil {
		return nil, wrap(err, CategoryDocument, "load posts")
	}
	for _, c := range loaded.Collisions {
		logger.Warn("Two posts share a slug, the later one wins",
			logfields.Slug(c.Identifier), slog.String("kept", c.Kept), slog.String("replaced", c.Replaced))
	}

	generated := o.now().UTC().Format(time.RFC3339)
	shell := render.NewShell()
	pages := make([]renderedPage, 0, len(loaded.Documents))
	for _, doc := range loaded.Documents {
		html, err := renderer.Render([]byte(doc.BodyText))
		if err != nil {
			return nil, wrap(err, CategoryRender, "render %s", doc.SourcePath)
		}
		doc.RenderedHTML = string(html)

		page, err := shell.Page(model.PageData{
			Lang:       cfg.Lang,
			SiteTitle:  cfg.SiteTitle,
			PageTitle:  doc.Title,
			Content:    render.Article(html),
			IndexURL:   "../" + IndexFile,
			Stylesheet: relativeTo(model.PostsDir, cfg.Stylesheet),
			Generated:  generated,
		})
		if err != nil {
			return nil, wrap(err, CategoryRender, "page shell for %s", doc.SourcePath)
		}
		pages = append(pages, renderedPage{rel: doc.URL(), data: page})
	}

	siteIndex := model.NewSiteIndex(loaded.Documents)
	assembler := &index.Assembler{
		TemplatePath: cfg.TemplateFile(),
		Marker:       cfg.IndexMarker,
		Heading:      cfg.IndexHeading,
		Shell:        shell,
		Page: model.PageData{
			Lang:       cfg.Lang,
			SiteTitle:  cfg.SiteTitle,
			PageTitle:  cfg.SiteTitle,
			IndexURL:   "./" + IndexFile,
			Stylesheet: cfg.Stylesheet,
			Generated:  generated,
		},
		Logger: logger,
	}
	indexPage, tier, err := assembler.Assemble(siteIndex)
	if err != nil {
		return nil, wrap(err, CategoryRender, "assemble index")
	}

	out := cfg.OutputPath()
	writer := output.NewWriter(out, logger)
	writer.Protect = []string{cfg.Resolve("."), postsDir, cfg.AssetsPath(), cfg.TemplateFile()}
	if err := writer.Prepare(); err != nil {
		return nil, wrap(err, CategoryOutput, "prepare output")
	}
	copied, err := writer.CopyAssets(cfg.AssetsPath(), cfg.AssetsDest)
	if err != nil {
		return nil, wrap(err, CategoryOutput, "copy assets")
	}

	report := &Report{
		Output:     out,
		Documents:  len(loaded.Documents),
		Collisions: loaded.Collisions,
		Tier:       tier,
		Assets:     copied,
	}
	for _, p := range pages {
		written, err := writer.WritePage(p.rel, p.data)
		if err != nil {
			return nil, wrap(err, CategoryOutput, "write page")
		}
		report.Pages = append(report.Pages, written)
		logger.Debug("Wrote page", logfields.Path(written))
	}
	if _, err := writer.WritePage(IndexFile, indexPage); err != nil {
		return nil, wrap(err, CategoryOutput, "write index")
	}

	report.Duration = o.now().Sub(start)
	logger.Info("Build complete",
		logfields.Path(out), logfields.Count(report.Documents),
		logfields.Tier(string(tier)), logfields.Duration(report.Duration))
	return report, nil
}

// relativeTo rewrites a site-root relative href for a page living in dir.
func relativeTo(dir, href string) string {
	if href == "" || strings.HasPrefix(href, "/") || strings.Contains(href, "://") {
		return href
	}
	up := strings.Repeat("../", len(strings.Split(path.Clean(dir), "/")))
	return up + strings.TrimPrefix(href, "./")
}
