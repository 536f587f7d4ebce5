// Package loader reads partial files.
package loader

import (
	"bytes"
	"io/fs"
	"path/filepath"
	"strings"
)

var bom = []byte{0xEF, 0xBB, 0xBF}

// Loader returns the raw content of the file at an absolute path.
type Loader interface {
	Load(path string) ([]byte, error)
}

// FS loads files from an fs.FS rooted at "/".
type FS struct {
	fsys fs.FS
}

// New returns a loader over fsys. Absolute paths are mapped onto fsys
// by dropping the volume name and leading separator.
func New(fsys fs.FS) *FS {
	return &FS{fsys: fsys}
}

// Load reads path and strips a leading UTF-8 byte order mark.
func (l *FS) Load(path string) ([]byte, error) {
	data, err := fs.ReadFile(l.fsys, fsPath(path))
	if err != nil {
		return nil, err
	}
	return StripBOM(data), nil
}

// StripBOM removes a leading UTF-8 byte order mark from data.
func StripBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, bom)
}

func fsPath(path string) string {
	path = filepath.Clean(path)
	path = strings.TrimPrefix(path, filepath.VolumeName(path))
	path = filepath.ToSlash(path)
	path = strings.TrimLeft(path, "/")
	if path == "" {
		return "."
	}
	return path
}
