package inject

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  *Error
		want string
	}{
		{&Error{Kind: StreamUnsupported, Path: "/a.html"}, "/a.html: streams not supported for target templates"},
		{&Error{Kind: FileNotFound, Path: "/b.html"}, "/b.html not found"},
		{&Error{Kind: MissingEndTag, Path: "/c.html", Tag: "<!-- partial:x -->"}, "missing end tag for start tag: <!-- partial:x -->"},
		{&Error{Kind: CircularReference, Path: "/d.html"}, "circular definition found: /d.html referenced in a child file"},
		{&Error{Kind: Kind(42), Path: "/e.html"}, "Kind(42): /e.html"},
	}

	for _, tt := range tests {
		t.Run(tt.err.Kind.String(), func(t *testing.T) {
			t.Parallel()
			assert.EqualError(t, tt.err, tt.want)
		})
	}
}

func TestErrorIs(t *testing.T) {
	t.Parallel()

	sentinels := map[Kind]error{
		StreamUnsupported: ErrStreamUnsupported,
		FileNotFound:      ErrFileNotFound,
		MissingEndTag:     ErrMissingEndTag,
		CircularReference: ErrCircularReference,
	}

	for kind, sentinel := range sentinels {
		err := fmt.Errorf("wrapped: %w", &Error{Kind: kind})
		assert.ErrorIs(t, err, sentinel, kind.String())
		for other, s := range sentinels {
			if other != kind {
				assert.NotErrorIs(t, err, s)
			}
		}
	}
}

func TestErrorUnwrap(t *testing.T) {
	t.Parallel()

	err := &Error{Kind: FileNotFound, Path: "/x", Err: fs.ErrNotExist}
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.True(t, errors.Is(err, ErrFileNotFound))
}
