// Package logfields holds canonical slog attribute names shared by the
// build pipeline.
package logfields

import (
	"log/slog"
	"time"
)

const (
	KeyFile       = "file"
	KeySlug       = "slug"
	KeyStage      = "stage"
	KeyTier       = "tier"
	KeyCount      = "count"
	KeyPath       = "path"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

func File(p string) slog.Attr { return slog.String(KeyFile, p) }
func Slug(s string) slog.Attr { return slog.String(KeySlug, s) }
func Stage(s string) slog.Attr { return slog.String(KeyStage, s) }
func Tier(s string) slog.Attr { return slog.String(KeyTier, s) }
func Count(n int) slog.Attr { return slog.Int(KeyCount, n) }
func Path(p string) slog.Attr { return slog.String(KeyPath, p) }
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
