package loader

import (
	"strings"
	"time"
)

// Positional reads a "# Title" first line and an optional YYYY-MM-DD
// second line.
type Positional struct{}

func (Positional) Name() string { return "positional" }

func (Positional) Parse(src []byte) (Metadata, string, error) {
	text := string(src)
	if text == "" {
		return Metadata{}, "", nil
	}

	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	if !strings.HasPrefix(lines[0], "#") {
		return Metadata{}, text, nil
	}

	meta := Metadata{Title: strings.TrimSpace(strings.TrimLeft(lines[0], "#"))}
	if len(lines) == 1 {
		return meta, "", nil
	}

	maybe := strings.TrimSpace(lines[1])
	if _, err := time.Parse(DateLayout, maybe); err == nil {
		meta.Date = maybe
		return meta, strings.Join(lines[2:], "\n"), nil
	}
	return meta, strings.Join(lines[1:], "\n"), nil
}
