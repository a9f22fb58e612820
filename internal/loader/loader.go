// Package loader turns a directory of markdown posts into Documents.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/Bitlatte/postpress/internal/logfields"
	"github.com/Bitlatte/postpress/internal/model"
	"github.com/Bitlatte/postpress/internal/slug"
)

// ErrInvalidEncoding marks a source file that is not UTF-8.
var ErrInvalidEncoding = errors.New("not valid UTF-8")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadError reports a document that could not be read. It aborts the build.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string { return fmt.Sprintf("read %s: %v", e.Path, e.Err) }
func (e *ReadError) Unwrap() error { return e.Err }

// Collision records two sources that produced the same identifier. The
// later file wins.
type Collision struct {
	Identifier string
	Kept       string
	Replaced   string
}

// Result is the outcome of loading a directory.
type Result struct {
	Documents  []*model.Document
	Collisions []Collision
}

// Loader reads posts with a single metadata parser.
type Loader struct {
	parser    MetadataParser
	extension string
	logger    *slog.Logger
}

func New(parser MetadataParser, extension string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		parser:    parser,
		extension: strings.ToLower(extension),
		logger:    logger,
	}
}

// Load reads every file in dir with the configured extension, in
// lexicographic filename order. Subdirectories are not descended into.
func (l *Loader) Load(dir string) (*Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	var docs []*model.Document
	for _, entry := range entries {
		name := entry.Name()
		if !strings.EqualFold(filepath.Ext(name), l.extension) {
			continue
		}
		path := filepath.Join(dir, name)
		if entry.IsDir() {
			continue
		}
		if entry.Type()&os.ModeSymlink != 0 {
			info, err := os.Stat(path)
			if err != nil || !info.Mode().IsRegular() {
				l.logger.Warn("Skipping unresolvable link", logfields.File(path))
				continue
			}
		}

		doc, err := l.LoadFile(path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return dedupe(docs), nil
}

// LoadFile reads and parses a single post.
func (l *Loader) LoadFile(path string) (*model.Document, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	if !utf8.Valid(src) {
		return nil, &ReadError{Path: path, Err: ErrInvalidEncoding}
	}
	src = bytes.TrimPrefix(src, utf8BOM)

	meta, body, err := l.parser.Parse(src)
	if err != nil {
		if !errors.Is(err, ErrMalformedMetadata) {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		l.logger.Warn("Could not parse metadata, treating file as plain markdown",
			logfields.File(path), logfields.Error(err))
	}
	if meta.Date == "" && meta.RawDate != "" {
		l.logger.Warn("Ignoring date that is not YYYY-MM-DD",
			logfields.File(path), slog.String("date", meta.RawDate))
	}

	name := filepath.Base(path)
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	// A blank title falls back to the stem; any other title is kept as written.
	title := meta.Title
	if strings.TrimSpace(title) == "" {
		title = stem
	}

	doc := &model.Document{
		Identifier: slug.Make(stem),
		SourcePath: path,
		Title:      title,
		Date:       meta.Date,
		BodyText:   body,
		Excerpt:    meta.Excerpt,
		Tags:       meta.Tags,
		Cover:      meta.Cover,
	}
	l.logger.Debug("Loaded post", logfields.File(path), logfields.Slug(doc.Identifier),
		slog.String("parser", l.parser.Name()))
	return doc, nil
}

// dedupe keeps the last document for each identifier, in the position
// of that last document.
func dedupe(docs []*model.Document) *Result {
	last := make(map[string]int, len(docs))
	for i, d := range docs {
		last[d.Identifier] = i
	}

	res := &Result{Documents: make([]*model.Document, 0, len(last))}
	for i, d := range docs {
		if keep := last[d.Identifier]; keep != i {
			res.Collisions = append(res.Collisions, Collision{
				Identifier: d.Identifier,
				Kept:       docs[keep].SourcePath,
				Replaced:   d.SourcePath,
			})
			continue
		}
		res.Documents = append(res.Documents, d)
	}
	return res
}
