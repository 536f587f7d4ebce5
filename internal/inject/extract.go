package inject

import (
	"path/filepath"

	"github.com/phobologic/partials/internal/model"
	"github.com/phobologic/partials/internal/tags"
)

// extract returns the references in doc in order of appearance, with
// each partial loaded. Missing partials are skipped when IgnoreError is
// set, leaving their tags in place.
func (e *Engine) extract(doc model.Document) ([]model.Reference, error) {
	var refs []model.Reference

	for m := range e.generic.Starts(doc.Text) {
		target := e.resolve(doc.Path, m.Path)

		data, err := e.loader.Load(target)
		if err != nil {
			if e.opts.IgnoreError {
				e.logger.Warn(target+" not found.", "path", target, "from", doc.Path, "error", err)
				continue
			}
			return nil, &Error{Kind: FileNotFound, Path: target, Err: err}
		}

		pair, err := tags.Compile(e.opts.Template(), m.Path)
		if err != nil {
			return nil, err
		}

		refs = append(refs, model.Reference{
			From:    doc.Path,
			Target:  target,
			Literal: m.Path,
			At:      m,
			Tags:    pair,
			Content: string(data),
		})
	}

	return refs, nil
}

// resolve maps a referenced path to an absolute one. Absolute references
// are used as written; others get the prefix and are resolved against the
// directory of the referencing document.
func (e *Engine) resolve(from, ref string) string {
	if filepath.IsAbs(ref) {
		return filepath.Clean(ref)
	}
	return filepath.Join(filepath.Dir(from), e.opts.Prefix+ref)
}
