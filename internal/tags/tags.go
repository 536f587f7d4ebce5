// Package tags compiles start/end tag templates into matchers for partial references.
package tags

import (
	"errors"
	"fmt"
	"iter"
	"regexp"
	"strings"
)

// Placeholder marks where the referenced path appears in a start template.
const Placeholder = "{{path}}"

// Default templates.
const (
	DefaultStart = "<!-- partial:" + Placeholder + " -->"
	DefaultEnd   = "<!-- partial -->"
)

// pathPattern accepts relative and absolute file paths: optional leading
// "/" or "./", any number of "../", then slash-separated segments of word
// characters and hyphens with single-character dot extensions chained.
const pathPattern = `((/|\./)?((\.\./)+)?((\w|\-)(\.(\w|\-))?)+((/((\w|\-)(\.(\w|\-))?)+)+)?)`

var quotedPlaceholder = regexp.QuoteMeta(Placeholder)

// Template is a start/end tag pair. Start must contain Placeholder once.
type Template struct {
	Start string
	End   string
}

// Validate reports whether the templates can be compiled.
func (t Template) Validate() error {
	if t.Start == "" {
		return errors.New("start tag template is empty")
	}
	if t.End == "" {
		return errors.New("end tag template is empty")
	}
	if n := strings.Count(t.Start, Placeholder); n != 1 {
		return fmt.Errorf("start tag template %q must contain %s exactly once, found %d", t.Start, Placeholder, n)
	}
	if strings.Contains(t.End, Placeholder) {
		return fmt.Errorf("end tag template %q must not contain %s", t.End, Placeholder)
	}
	return nil
}

// Match is one tag occurrence: text[Start:End]. Path is the referenced
// path of a start tag and empty for end tags.
type Match struct {
	Start int
	End   int
	Path  string
}

// Pair is a compiled Template. A generic pair (no literal path) captures
// any referenced path; a specific pair only matches one literal path.
type Pair struct {
	start   *regexp.Regexp
	end     *regexp.Regexp
	literal string
}

// Compile builds a Pair from tpl. If path is non-empty the pair matches
// only start tags referencing exactly that path.
func Compile(tpl Template, path string) (*Pair, error) {
	if err := tpl.Validate(); err != nil {
		return nil, err
	}

	replacement := pathPattern
	if path != "" {
		replacement = "(" + regexp.QuoteMeta(path) + ")"
	}

	start, err := regexp.Compile(strings.Replace(regexp.QuoteMeta(tpl.Start), quotedPlaceholder, replacement, 1))
	if err != nil {
		return nil, fmt.Errorf("compiling start tag %q: %w", tpl.Start, err)
	}
	end, err := regexp.Compile(regexp.QuoteMeta(tpl.End))
	if err != nil {
		return nil, fmt.Errorf("compiling end tag %q: %w", tpl.End, err)
	}

	return &Pair{start: start, end: end, literal: path}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(tpl Template, path string) *Pair {
	p, err := Compile(tpl, path)
	if err != nil {
		panic(err)
	}
	return p
}

// Literal returns the path a specific pair was compiled for.
func (p *Pair) Literal() string { return p.literal }

// FindStart returns the first start tag at or after from.
func (p *Pair) FindStart(text string, from int) (Match, bool) {
	return find(p.start, text, from)
}

// FindEnd returns the first end tag at or after from.
func (p *Pair) FindEnd(text string, from int) (Match, bool) {
	return find(p.end, text, from)
}

// Starts yields every start tag in text, left to right. Each range over
// the sequence scans text from the beginning.
func (p *Pair) Starts(text string) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		pos := 0
		for {
			m, ok := p.FindStart(text, pos)
			if !ok || !yield(m) {
				return
			}
			pos = m.End
			if m.End == m.Start {
				pos++
			}
		}
	}
}

func find(re *regexp.Regexp, text string, from int) (Match, bool) {
	if from > len(text) {
		return Match{}, false
	}
	loc := re.FindStringSubmatchIndex(text[from:])
	if loc == nil {
		return Match{}, false
	}
	m := Match{Start: from + loc[0], End: from + loc[1]}
	if len(loc) >= 4 && loc[2] >= 0 {
		m.Path = text[from+loc[2] : from+loc[3]]
	}
	return m, true
}
