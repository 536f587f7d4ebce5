package discover

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var html = Options{Extensions: []string{".html"}}

func TestDocumentsByExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "index.html", "<p>home</p>")
	writeFile(t, dir, "blog/post.HTML", "<p>post</p>")
	// Other extensions are ignored
	writeFile(t, dir, "readme.md", "hello")
	// Hidden file should be ignored
	writeFile(t, dir, ".draft.html", "secret")

	docs, err := Documents(dir, html)
	require.NoError(t, err)

	// Should be sorted
	assert.Equal(t, []string{filepath.Join("blog", "post.HTML"), "index.html"}, docs)

	docs, err = Documents(dir, Options{Extensions: []string{".md", ".html"}})
	require.NoError(t, err)
	assert.Len(t, docs, 3)
}

func TestDocumentsSkipDirs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "index.html", "")
	writeFile(t, dir, "node_modules/pkg/index.html", "")
	writeFile(t, dir, ".cache/page.html", "")
	writeFile(t, dir, "dist/index.html", "")

	docs, err := Documents(dir, Options{
		Extensions: []string{".html"},
		SkipDirs:   []string{filepath.Join(dir, "dist")},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"index.html"}, docs)
}

func TestDocumentsExclude(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "index.html", "")
	writeFile(t, dir, "partials/header.html", "")
	writeFile(t, dir, "blog/_footer.html", "")
	writeFile(t, dir, "blog/post.html", "")

	docs, err := Documents(dir, Options{
		Extensions: []string{".html"},
		Exclude:    []string{"partials/", "_*.html"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("blog", "post.html"), "index.html"}, docs)
}

func TestDocumentsGitignore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, ".gitignore", "build/\n*.tmp.html\n")
	writeFile(t, dir, "index.html", "")
	writeFile(t, dir, "build/index.html", "")
	writeFile(t, dir, "scratch.tmp.html", "")

	docs, err := Documents(dir, html)
	require.NoError(t, err)
	assert.Equal(t, []string{"index.html"}, docs)
}

func TestDocumentsSymlinksSkipped(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "real.html", "")

	err := os.Symlink(filepath.Join(dir, "real.html"), filepath.Join(dir, "link.html"))
	if err != nil {
		t.Skip("symlinks not supported")
	}

	docs, err := Documents(dir, html)
	require.NoError(t, err)
	assert.Equal(t, []string{"real.html"}, docs)
}

func TestDocumentsEmpty(t *testing.T) {
	t.Parallel()

	docs, err := Documents(t.TempDir(), html)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
