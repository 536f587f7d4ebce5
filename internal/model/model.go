// Package model defines core data structures for partials.
package model

import (
	"io"

	"github.com/phobologic/partials/internal/tags"
)

// Document is a text being expanded. Its identity is the absolute Path.
type Document struct {
	Path string
	Text string
}

// Reference is a partial reference found in a document.
type Reference struct {
	From    string     // Path of the document containing the tag
	Target  string     // Resolved absolute path of the partial
	Literal string     // Path as written in the start tag
	At      tags.Match // Start tag location in the text of From
	Tags    *tags.Pair // Pair compiled for Literal
	Content string     // Loaded partial content
}

// File is what the pipeline host hands to the engine.
// Contents == nil && Reader == nil means the file carries no content.
// A non-nil Reader is a live stream and is rejected.
type File struct {
	Path     string
	Contents []byte
	Reader   io.Reader
}

// IsNull reports whether f carries no content.
func (f *File) IsNull() bool { return f.Contents == nil && f.Reader == nil }

// IsStream reports whether f is backed by a live stream.
func (f *File) IsStream() bool { return f.Reader != nil }

// Dependency is an include edge: Source contains a reference to Target.
type Dependency struct {
	Source string
	Target string
}

// Outcome is the result of processing a single file.
type Outcome struct {
	File     File
	Injected int
	Edges    []Dependency
	Err      error
}

// PartialInfo describes a partial used during a run.
type PartialInfo struct {
	Path string
	Uses int
	Rank float64
}

// Report summarizes a run, ready for serialization.
type Report struct {
	Root         string
	Outcomes     []Outcome
	Partials     []PartialInfo
	Dependencies []Dependency
}
