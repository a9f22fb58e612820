package build

import (
	"errors"
	"fmt"
)

// ErrNoSources means the posts directory does not exist. Nothing was
// built and nothing was written.
var ErrNoSources = errors.New("no posts directory")

// Category classifies a build failure.
type Category string

const (
	CategoryConfig   Category = "config"
	CategoryInput    Category = "input"
	CategoryDocument Category = "document"
	CategoryRender   Category = "render"
	CategoryOutput   Category = "output"
)

// Error is a build failure tagged with the stage it came from.
type Error struct {
	Category Category
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Category, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func wrap(err error, category Category, format string, args ...any) *Error {
	return &Error{Category: category, Message: fmt.Sprintf(format, args...), Cause: err}
}

// CategoryOf returns the category of err, or "" when err is not an *Error.
func CategoryOf(err error) Category {
	var be *Error
	if errors.As(err, &be) {
		return be.Category
	}
	return ""
}
