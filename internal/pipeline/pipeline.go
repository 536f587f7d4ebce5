// Package pipeline feeds documents to the injection engine one at a time.
package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/phobologic/partials/internal/graph"
	"github.com/phobologic/partials/internal/inject"
	"github.com/phobologic/partials/internal/logging"
	"github.com/phobologic/partials/internal/model"
)

// Host runs files through an Engine.
type Host struct {
	engine *inject.Engine
	logger *slog.Logger
}

// New returns a Host. A nil logger discards all output.
func New(engine *inject.Engine, logger *slog.Logger) *Host {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Host{engine: engine, logger: logger}
}

// Process expands a single file. Files without content pass through
// unchanged and streams are rejected. A failed file keeps only its path
// and the include edges followed before the failure.
func (h *Host) Process(f model.File) model.Outcome {
	if f.IsNull() {
		return model.Outcome{File: f}
	}
	if f.IsStream() {
		return model.Outcome{
			File: model.File{Path: f.Path},
			Err:  &inject.Error{Kind: inject.StreamUnsupported, Path: f.Path},
		}
	}

	res, err := h.engine.Expand(model.Document{Path: f.Path, Text: string(f.Contents)})
	if err != nil {
		return model.Outcome{File: model.File{Path: f.Path}, Edges: res.Edges, Err: err}
	}

	return model.Outcome{
		File:     model.File{Path: f.Path, Contents: []byte(res.Text)},
		Injected: res.Injected,
		Edges:    res.Edges,
	}
}

// Run processes files in order. A failure is recorded in its Outcome and
// does not stop the remaining files.
func (h *Host) Run(files []model.File) []model.Outcome {
	outcomes := make([]model.Outcome, 0, len(files))
	for _, f := range files {
		o := h.Process(f)
		if o.Err != nil {
			h.logger.Error("expansion failed", "path", f.Path, "error", o.Err)
		}
		outcomes = append(outcomes, o)
	}
	return outcomes
}

// ReadFiles loads root-relative paths into Files with absolute paths.
func ReadFiles(root string, rels []string) ([]model.File, error) {
	files := make([]model.File, 0, len(rels))
	for _, rel := range rels {
		path := filepath.Join(root, rel)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", rel, err)
		}
		if data == nil {
			data = []byte{}
		}
		files = append(files, model.File{Path: path, Contents: data})
	}
	return files, nil
}

// WriteOutcomes writes every successfully expanded file under out,
// mirroring its location relative to root. Failed and empty files are
// not written.
func WriteOutcomes(root, out string, outcomes []model.Outcome) error {
	for _, o := range outcomes {
		if o.Err != nil || o.File.IsNull() {
			continue
		}
		rel, err := filepath.Rel(root, o.File.Path)
		if err != nil {
			return fmt.Errorf("locating %s: %w", o.File.Path, err)
		}
		dest := filepath.Join(out, rel)
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(dest), err)
		}
		if err := os.WriteFile(dest, o.File.Contents, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", dest, err)
		}
	}
	return nil
}

// Summarize builds the run Report for outcomes.
func Summarize(root string, outcomes []model.Outcome) *model.Report {
	var edges []model.Dependency
	for _, o := range outcomes {
		edges = append(edges, o.Edges...)
	}
	deps := graph.Build(edges)
	return &model.Report{
		Root:         root,
		Outcomes:     outcomes,
		Partials:     graph.Rank(deps),
		Dependencies: deps,
	}
}

// Failed returns the number of outcomes carrying an error.
func Failed(outcomes []model.Outcome) int {
	var n int
	for _, o := range outcomes {
		if o.Err != nil {
			n++
		}
	}
	return n
}
