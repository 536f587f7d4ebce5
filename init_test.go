package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/partials/internal/config"
)

// TestGenerateConfigParses verifies that the generated file is a valid
// configuration carrying the defaults.
func TestGenerateConfigParses(t *testing.T) {
	t.Parallel()

	content, err := generateConfig()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(content, "# partials configuration."))

	cfg, err := config.Parse([]byte(content))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultOptions(), cfg.Options)
	assert.Equal(t, []string{"partials/"}, cfg.Exclude)
	assert.Equal(t, "dist", cfg.Out)
}

// TestInitCreatesFile verifies that runInit writes the config inside a
// directory argument.
func TestInitCreatesFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	var stdout, stderr bytes.Buffer
	require.NoError(t, runInit([]string{dir}, &stdout, &stderr))

	path := filepath.Join(dir, config.FileName)
	_, err := config.Load(path)
	require.NoError(t, err)
	assert.Contains(t, stderr.String(), "wrote "+path)
}

// TestInitRefusesOverwrite verifies that an existing file is kept unless
// -force is given.
func TestInitRefusesOverwrite(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("quiet: true\n"), 0o644))

	var stdout, stderr bytes.Buffer
	err := runInit([]string{path}, &stdout, &stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	data, _ := os.ReadFile(path)
	assert.Equal(t, "quiet: true\n", string(data))

	require.NoError(t, runInit([]string{"-force", path}, &stdout, &stderr))
	data, _ = os.ReadFile(path)
	assert.Contains(t, string(data), "# partials configuration.")
}

// TestInitDryRun verifies that -dry-run prints the configuration and does
// not create a file.
func TestInitDryRun(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	var stdout, stderr bytes.Buffer
	require.NoError(t, runInit([]string{"-dry-run", dir}, &stdout, &stderr))

	assert.NoFileExists(t, filepath.Join(dir, config.FileName))
	assert.Contains(t, stdout.String(), "removeTags: false")
	assert.Contains(t, stdout.String(), "{{path}}")
}
