// Package inject recursively expands partial references in documents.
//
// A document references a partial with a start tag naming the partial's
// path and an end tag closing the region the partial's content replaces:
//
//	<!-- partial:./header.html -->
//	<!-- partial -->
//
// Partials may reference further partials. References are resolved
// relative to the file that contains them, and a file that reappears in
// its own chain of includes is rejected.
package inject

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/phobologic/partials/internal/config"
	"github.com/phobologic/partials/internal/loader"
	"github.com/phobologic/partials/internal/logging"
	"github.com/phobologic/partials/internal/model"
	"github.com/phobologic/partials/internal/tags"
)

// Engine expands documents. It holds only read-only state and may be
// reused across documents.
type Engine struct {
	opts    config.Options
	generic *tags.Pair
	loader  loader.Loader
	logger  *slog.Logger
}

// Result is the outcome of expanding one root document.
type Result struct {
	Text     string
	Injected int                // References spliced into the root document
	Edges    []model.Dependency // Every include edge followed during expansion
}

// New validates opts and returns an Engine loading partials through l.
// A nil logger discards all output.
func New(opts config.Options, l loader.Loader, logger *slog.Logger) (*Engine, error) {
	generic, err := tags.Compile(opts.Template(), "")
	if err != nil {
		return nil, fmt.Errorf("invalid tags: %w", err)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{opts: opts, generic: generic, loader: l, logger: logger}, nil
}

// Expand fully expands doc. On error no text is produced and the Result
// carries only the include edges followed before the failure.
func (e *Engine) Expand(doc model.Document) (Result, error) {
	var res Result
	text, refs, err := e.expand(doc, nil, &res.Edges)
	if err != nil {
		return Result{Edges: res.Edges}, err
	}
	res.Text = text
	res.Injected = refs

	if !e.opts.Quiet && refs > 0 {
		e.logger.Info(fmt.Sprintf("%d partials injected into %s.", refs, doc.Path),
			"count", refs, "path", doc.Path)
	}
	return res, nil
}

// chain is the list of documents being expanded, root first. Each call
// extends its own copy so siblings never observe each other's entries.
type chain []string

func (c chain) with(path string) (chain, error) {
	if slices.Contains(c, path) {
		return nil, &Error{Kind: CircularReference, Path: path}
	}
	return append(slices.Clip(c), path), nil
}

func (e *Engine) expand(doc model.Document, active chain, edges *[]model.Dependency) (string, int, error) {
	active, err := active.with(doc.Path)
	if err != nil {
		return "", 0, err
	}

	refs, err := e.extract(doc)
	if err != nil {
		return "", 0, err
	}

	// Text past cursor is still doc.Text shifted by delta, so reference
	// offsets stay valid there. Inserted content is never scanned.
	var (
		text    = doc.Text
		cursor  int
		delta   int
		spliced int
	)
	for _, ref := range refs {
		at := ref.At.Start + delta
		if at < cursor {
			e.logger.Debug("reference inside replaced region", "path", doc.Path, "partial", ref.Target)
			continue
		}

		*edges = append(*edges, model.Dependency{Source: ref.From, Target: ref.Target})

		child, _, err := e.expand(model.Document{Path: ref.Target, Text: ref.Content}, active, edges)
		if err != nil {
			return "", 0, err
		}

		var next int
		text, next, err = splice(text, at, ref.Tags, child, e.opts.RemoveTags)
		if err != nil {
			var ie *Error
			if errors.As(err, &ie) && ie.Path == "" {
				ie.Path = doc.Path
			}
			return "", 0, err
		}
		if next < 0 {
			continue
		}
		cursor = next
		delta = len(text) - len(doc.Text)
		spliced++
		e.logger.Debug("partial spliced", "path", doc.Path, "partial", ref.Target)
	}

	return text, spliced, nil
}
