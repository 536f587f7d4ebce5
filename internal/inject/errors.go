package inject

import (
	"errors"
	"fmt"
)

// Kind classifies expansion failures.
type Kind int

const (
	StreamUnsupported Kind = iota + 1
	FileNotFound
	MissingEndTag
	CircularReference
)

// Sentinels for errors.Is matching against an *Error of the same Kind.
var (
	ErrStreamUnsupported = errors.New("streams not supported")
	ErrFileNotFound      = errors.New("file not found")
	ErrMissingEndTag     = errors.New("missing end tag")
	ErrCircularReference = errors.New("circular reference")
)

func (k Kind) String() string {
	switch k {
	case StreamUnsupported:
		return "stream unsupported"
	case FileNotFound:
		return "file not found"
	case MissingEndTag:
		return "missing end tag"
	case CircularReference:
		return "circular reference"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is a fatal expansion error for one document.
type Error struct {
	Kind Kind
	Path string // Offending file
	Tag  string // Start tag text, for MissingEndTag
	Err  error  // Underlying cause, if any
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch e.Kind {
	case StreamUnsupported:
		return fmt.Sprintf("%s: streams not supported for target templates", e.Path)
	case FileNotFound:
		return fmt.Sprintf("%s not found", e.Path)
	case MissingEndTag:
		return fmt.Sprintf("missing end tag for start tag: %s", e.Tag)
	case CircularReference:
		return fmt.Sprintf("circular definition found: %s referenced in a child file", e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Path)
}

// Is matches the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

func (k Kind) sentinel() error {
	switch k {
	case StreamUnsupported:
		return ErrStreamUnsupported
	case FileNotFound:
		return ErrFileNotFound
	case MissingEndTag:
		return ErrMissingEndTag
	case CircularReference:
		return ErrCircularReference
	}
	return nil
}
