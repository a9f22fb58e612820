// Package output owns the destination tree of a build.
package output

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Bitlatte/postpress/internal/config"
	"github.com/Bitlatte/postpress/internal/logfields"
)

// ErrUnsafeDestination is returned when the destination would remove
// something other than a build output directory.
var ErrUnsafeDestination = errors.New("unsafe destination")

// Writer writes into Dir. Prepare must run before any other call.
type Writer struct {
	Dir    string
	Logger *slog.Logger
	// Protect lists paths Prepare must never remove, such as the build's
	// own inputs.
	Protect []string
}

func NewWriter(dir string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{Dir: dir, Logger: logger}
}

// Prepare removes the destination and recreates it empty.
func (w *Writer) Prepare() error {
	abs, err := filepath.Abs(w.Dir)
	if err != nil {
		return fmt.Errorf("resolve output directory %s: %w", w.Dir, err)
	}
	if abs == filepath.Dir(abs) {
		return fmt.Errorf("%w: %s", ErrUnsafeDestination, abs)
	}
	for _, p := range w.Protect {
		if p == "" {
			continue
		}
		pabs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolve protected path %s: %w", p, err)
		}
		if config.Within(abs, pabs) {
			return fmt.Errorf("%w: %s contains %s", ErrUnsafeDestination, abs, pabs)
		}
	}

	w.Logger.Debug("Cleaning output directory", logfields.Path(w.Dir))
	if err := os.RemoveAll(w.Dir); err != nil {
		return fmt.Errorf("clear output directory %s: %w", w.Dir, err)
	}
	if err := os.MkdirAll(w.Dir, os.ModePerm); err != nil {
		return fmt.Errorf("create output directory %s: %w", w.Dir, err)
	}
	return nil
}

// CopyAssets copies src into destRel under the output directory. A
// missing src is not an error. It reports whether anything was copied.
func (w *Writer) CopyAssets(src, destRel string) (bool, error) {
	info, err := os.Stat(src)
	if errors.Is(err, fs.ErrNotExist) {
		w.Logger.Debug("Static assets directory not found, skipping copy", logfields.Path(src))
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat assets directory %s: %w", src, err)
	}
	if !info.IsDir() {
		return false, fmt.Errorf("assets path %s is not a directory", src)
	}

	dst := filepath.Join(w.Dir, destRel)
	n, err := w.copyTree(src, dst, map[string]bool{})
	if err != nil {
		return false, fmt.Errorf("copy assets %s: %w", src, err)
	}
	w.Logger.Debug("Static assets copied", logfields.Path(dst), logfields.Count(n))
	return true, nil
}

// WritePage writes data to rel under the output directory.
func (w *Writer) WritePage(rel string, data []byte) (string, error) {
	p := filepath.Join(w.Dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), os.ModePerm); err != nil {
		return "", fmt.Errorf("create directory %s: %w", filepath.Dir(p), err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", p, err)
	}
	return p, nil
}

// copyTree mirrors src into dst and returns the number of files copied.
// Symlinks are followed; a linked directory is copied as a real directory
// unless it is one of its own ancestors.
func (w *Writer) copyTree(src, dst string, visited map[string]bool) (int, error) {
	resolved, err := filepath.EvalSymlinks(src)
	if err != nil {
		return 0, err
	}
	if visited[resolved] {
		w.Logger.Warn("Skipping asset link cycle", logfields.Path(src))
		return 0, nil
	}
	visited[resolved] = true
	defer delete(visited, resolved)

	copied := 0
	err = filepath.WalkDir(resolved, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(resolved, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case d.IsDir():
			return os.MkdirAll(target, os.ModePerm)
		case d.Type()&fs.ModeSymlink != 0:
			info, err := os.Stat(path)
			if err != nil {
				w.Logger.Warn("Skipping broken asset link", logfields.Path(path), logfields.Error(err))
				return nil
			}
			if info.IsDir() {
				n, err := w.copyTree(path, target, visited)
				copied += n
				return err
			}
		case !d.Type().IsRegular():
			w.Logger.Debug("Skipping special file", logfields.Path(path))
			return nil
		}

		if err := copyFile(path, target); err != nil {
			return fmt.Errorf("copy %s: %w", rel, err)
		}
		copied++
		return nil
	})
	return copied, err
}

// copyFile copies a single file and keeps its permission bits.
func copyFile(srcFile, dstFile string) error {
	srcF, err := os.Open(srcFile)
	if err != nil {
		return err
	}
	defer srcF.Close()

	srcInfo, err := srcF.Stat()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dstFile), os.ModePerm); err != nil {
		return err
	}
	dstF, err := os.OpenFile(dstFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return err
	}

	if err := dstF.Chmod(srcInfo.Mode().Perm()); err != nil {
		dstF.Close()
		return err
	}
	if _, err := io.Copy(dstF, srcF); err != nil {
		dstF.Close()
		return err
	}
	return dstF.Close()
}
