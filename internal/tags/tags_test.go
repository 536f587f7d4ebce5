package tags

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultTemplate = Template{Start: DefaultStart, End: DefaultEnd}

func paths(p *Pair, text string) []string {
	var out []string
	for m := range p.Starts(text) {
		out = append(out, m.Path)
	}
	return out
}

func TestTemplateValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		tpl     Template
		wantErr string
	}{
		{"default", defaultTemplate, ""},
		{"custom", Template{Start: "<##:{{path}}>", End: "</##>"}, ""},
		{"no placeholder", Template{Start: "<!-- partial -->", End: "<!-- /partial -->"}, "exactly once"},
		{"two placeholders", Template{Start: "{{path}}{{path}}", End: "x"}, "exactly once"},
		{"placeholder in end", Template{Start: "{{path}}", End: "{{path}}"}, "must not contain"},
		{"empty start", Template{End: "x"}, "start tag template is empty"},
		{"empty end", Template{Start: "{{path}}"}, "end tag template is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.tpl.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGenericCapturesPaths(t *testing.T) {
	t.Parallel()

	p := MustCompile(defaultTemplate, "")

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"relative dot", "<!-- partial:./a.html -->", []string{"./a.html"}},
		{"bare", "<!-- partial:a.html -->", []string{"a.html"}},
		{"parent dirs", "<!-- partial:../../shared/nav.html -->", []string{"../../shared/nav.html"}},
		{"absolute", "<!-- partial:/srv/site/footer.html -->", []string{"/srv/site/footer.html"}},
		{"nested hyphen", "<!-- partial:parts/top-bar/menu-item.tpl.html -->", []string{"parts/top-bar/menu-item.tpl.html"}},
		{"several", "a <!-- partial:x.html --> b <!-- partial:y.html -->", []string{"x.html", "y.html"}},
		{"end tag only", "<!-- partial -->", nil},
		{"spaces in path", "<!-- partial:a b.html -->", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, paths(p, tt.text))
		})
	}
}

func TestSpecificMatchesOnlyItsPath(t *testing.T) {
	t.Parallel()

	p := MustCompile(defaultTemplate, "./a.html")
	assert.Equal(t, "./a.html", p.Literal())

	text := "<!-- partial:./b.html --><!-- partial:./a.html --><!-- partial:xa.html --><!-- partial:./a.html -->"
	var starts []int
	for m := range p.Starts(text) {
		starts = append(starts, m.Start)
		assert.Equal(t, "./a.html", m.Path)
	}
	assert.Equal(t, []int{25, 74}, starts)
}

func TestSpecificEscapesPath(t *testing.T) {
	t.Parallel()

	// "." must not act as a wildcard.
	p := MustCompile(defaultTemplate, "a.html")
	_, ok := p.FindStart("<!-- partial:aXhtml -->", 0)
	assert.False(t, ok)
}

func TestGenericAndSpecificAgree(t *testing.T) {
	t.Parallel()

	generic := MustCompile(defaultTemplate, "")
	text := "x <!-- partial:../inc/a-b.html --> y <!-- partial --> z"

	g, ok := generic.FindStart(text, 0)
	require.True(t, ok)

	specific := MustCompile(defaultTemplate, g.Path)
	s, ok := specific.FindStart(text, 0)
	require.True(t, ok)
	assert.Equal(t, g, s)
}

func TestCustomTemplateEscaping(t *testing.T) {
	t.Parallel()

	p := MustCompile(Template{Start: "<##:{{path}}>", End: "</##>"}, "")
	text := "<##:a.html>old</##>"

	start, ok := p.FindStart(text, 0)
	require.True(t, ok)
	assert.Equal(t, "a.html", start.Path)

	end, ok := p.FindEnd(text, start.End)
	require.True(t, ok)
	assert.Equal(t, "</##>", text[end.Start:end.End])

	// Regex metacharacters in the template are literal.
	q := MustCompile(Template{Start: "[inc {{path}}]", End: "(end)"}, "")
	assert.Equal(t, []string{"x.txt"}, paths(q, "[inc x.txt](end)"))
	assert.Empty(t, paths(q, "inc x.txt"))
}

func TestFindFromOffset(t *testing.T) {
	t.Parallel()

	p := MustCompile(defaultTemplate, "")
	text := "<!-- partial --> <!-- partial -->"

	first, ok := p.FindEnd(text, 0)
	require.True(t, ok)
	second, ok := p.FindEnd(text, first.End)
	require.True(t, ok)
	assert.Equal(t, 17, second.Start)

	_, ok = p.FindEnd(text, second.End)
	assert.False(t, ok)
	_, ok = p.FindEnd(text, len(text)+1)
	assert.False(t, ok)
}

func TestStartsIsRestartable(t *testing.T) {
	t.Parallel()

	p := MustCompile(defaultTemplate, "")
	seq := p.Starts("<!-- partial:a.html --><!-- partial:b.html -->")

	first := slices.Collect(seq)
	second := slices.Collect(seq)
	assert.Len(t, first, 2)
	assert.Equal(t, first, second)

	// Early break leaves nothing behind for the next range.
	for range seq {
		break
	}
	assert.Equal(t, first, slices.Collect(seq))
}

func TestCompileInvalid(t *testing.T) {
	t.Parallel()

	_, err := Compile(Template{Start: "nope", End: "x"}, "")
	require.Error(t, err)
	assert.Panics(t, func() { MustCompile(Template{}, "") })
}
