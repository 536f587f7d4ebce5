package inject

import (
	"strings"
	"unicode"

	"github.com/phobologic/partials/internal/tags"
)

// splice replaces the first tag-delimited region matched by pair at or
// after from with replacement. The old content between the tags is
// dropped. Tags are kept unless removeTags is set, joined to the
// replacement by the leading whitespace of the old content.
//
// It returns the new text and the offset just past the inserted content,
// where scanning for the next reference resumes. The offset is -1 when
// pair has no start tag at or after from.
func splice(text string, from int, pair *tags.Pair, replacement string, removeTags bool) (string, int, error) {
	start, ok := pair.FindStart(text, from)
	if !ok {
		return text, -1, nil
	}
	end, ok := pair.FindEnd(text, start.End)
	if !ok {
		return "", -1, &Error{Kind: MissingEndTag, Tag: text[start.Start:start.End]}
	}

	var inserted string
	if removeTags {
		inserted = replacement
	} else {
		indent := leadingWhitespace(text[start.End:end.Start])
		inserted = strings.Join([]string{
			text[start.Start:start.End],
			replacement,
			text[end.Start:end.End],
		}, indent)
	}

	return text[:start.Start] + inserted + text[end.End:], start.Start + len(inserted), nil
}

func leadingWhitespace(s string) string {
	return s[:len(s)-len(strings.TrimLeftFunc(s, unicode.IsSpace))]
}
