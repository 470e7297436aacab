package migrator

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mandelsoft/vfs/pkg/vfs"
)

// Marker persists the current schema version as a plain decimal string in a
// file. A missing or unparsable marker file means version 0.
type Marker struct {
	fs   vfs.FileSystem
	path string
}

// NewMarker creates a version marker backed by the given file path.
func NewMarker(fsys vfs.FileSystem, path string) *Marker {
	return &Marker{fs: fsys, path: path}
}

// Get returns the currently recorded version. Read and parse failures are
// treated as version 0, so a fresh or damaged marker starts the catalog from
// the beginning.
func (m *Marker) Get() int {
	contents, err := vfs.ReadFile(m.fs, m.path)
	if err != nil {
		return 0
	}

	version, err := strconv.Atoi(strings.TrimSpace(string(contents)))
	if err != nil || version < 0 {
		return 0
	}

	return version
}

// Set overwrites the recorded version. The write is a direct overwrite, not
// write-temp-then-rename, and it isn't part of the migration transaction; a
// crash between a commit and the marker write leaves the marker behind the
// database.
func (m *Marker) Set(version int) error {
	if err := m.fs.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("failed creating marker directory: %w", err)
	}
	err := vfs.WriteFile(m.fs, m.path, []byte(strconv.Itoa(version)+"\n"), 0o644)
	if err != nil {
		return fmt.Errorf("failed writing version marker '%s': %w", m.path, err)
	}

	return nil
}

// Path returns the marker file path.
func (m *Marker) Path() string {
	return m.path
}
