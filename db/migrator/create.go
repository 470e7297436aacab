package migrator

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mandelsoft/vfs/pkg/vfs"
)

// migrationTemplate is the boilerplate written by Create. Both sections are
// empty, so the new migration is a successful no-op until filled in.
const migrationTemplate = `-- Migration %d: %s
-- Statements in each section run in order, inside the batch transaction.

%s


%s
`

// Create scaffolds a new migration file named after the next free catalog
// index. It creates the migrations directory if needed, and fails if the
// target file already exists. The path of the new file is returned.
func (m *Migrator) Create(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("migration name must not be empty")
	}
	if strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("migration name '%s' must not contain path separators", name)
	}

	if err := m.fs.MkdirAll(m.catalog.Dir(), 0o755); err != nil {
		return "", fmt.Errorf("failed creating migrations directory '%s': %w", m.catalog.Dir(), err)
	}

	last, err := m.catalog.LastIndex()
	if err != nil {
		return "", err
	}
	index := last + 1

	filename := fmt.Sprintf("%s%d-%s%s", m.catalog.prefix, index, name, m.catalog.suffix)
	path := filepath.Join(m.catalog.Dir(), filename)
	if _, err = m.fs.Stat(path); err == nil {
		return "", fmt.Errorf("migration file '%s' already exists", path)
	} else if !vfs.IsErrNotExist(err) {
		return "", fmt.Errorf("failed checking migration file '%s': %w", path, err)
	}

	contents := fmt.Sprintf(migrationTemplate, index, name, upMarker, downMarker)
	if err = vfs.WriteFile(m.fs, path, []byte(contents), 0o644); err != nil {
		return "", fmt.Errorf("failed writing migration file '%s': %w", path, err)
	}

	m.logger.Info("created migration", "index", index, "file", filename)

	return path, nil
}
