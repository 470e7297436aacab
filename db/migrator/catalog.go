package migrator

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/mandelsoft/vfs/pkg/vfs"
)

// Default migration filename convention: {prefix}{index}-{name}{suffix},
// e.g. "migration-0-create-users.sql". Indices are decimal and not required
// to be zero-padded.
const (
	DefaultPrefix = "migration-"
	DefaultSuffix = ".sql"
)

// Entry is a single migration file in the catalog.
type Entry struct {
	Index    int
	Name     string
	Filename string
}

// Catalog lists the migration files in a directory, filtered by the filename
// convention and ordered ascending by filename. The ordering is lexicographic
// over the full filename, so unpadded indices sort correctly only below 10
// per digit boundary; keeping indices contiguous from 0 avoids surprises.
type Catalog struct {
	fs     vfs.FileSystem
	dir    string
	prefix string
	suffix string
}

// NewCatalog creates a catalog over the given directory.
func NewCatalog(fsys vfs.FileSystem, dir, prefix, suffix string) *Catalog {
	return &Catalog{fs: fsys, dir: dir, prefix: prefix, suffix: suffix}
}

// Dir returns the directory the catalog reads from.
func (c *Catalog) Dir() string {
	return c.dir
}

// List returns all migration entries, sorted ascending by filename. A missing
// directory yields an empty catalog, not an error.
func (c *Catalog) List() ([]Entry, error) {
	infos, err := vfs.ReadDir(c.fs, c.dir)
	if err != nil {
		if vfs.IsErrNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed reading migrations directory '%s': %w", c.dir, err)
	}

	var entries []Entry
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		index, name, ok := c.parseFilename(info.Name())
		if !ok {
			continue
		}
		entries = append(entries, Entry{Index: index, Name: name, Filename: info.Name()})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Filename < entries[j].Filename
	})

	return entries, nil
}

// LastIndex returns the index parsed from the highest-sorted filename, or -1
// if the catalog is empty.
func (c *Catalog) LastIndex() (int, error) {
	entries, err := c.List()
	if err != nil {
		return -1, err
	}
	if len(entries) == 0 {
		return -1, nil
	}

	return entries[len(entries)-1].Index, nil
}

// Load reads and parses the migration file of the given entry.
func (c *Catalog) Load(entry Entry) (Migration, error) {
	path := filepath.Join(c.dir, entry.Filename)
	contents, err := vfs.ReadFile(c.fs, path)
	if err != nil {
		if vfs.IsErrNotExist(err) {
			return nil, fmt.Errorf("%w: '%s'", ErrMigrationMissing, path)
		}
		return nil, fmt.Errorf("failed reading migration file '%s': %w", path, err)
	}

	m, err := parseMigration(contents)
	if err != nil {
		return nil, fmt.Errorf("%w: '%s': %v", ErrInvalidMigration, path, err)
	}

	return m, nil
}

// parseFilename extracts the index and name from a migration filename.
// Filenames not matching the convention are skipped by the catalog.
func (c *Catalog) parseFilename(filename string) (index int, name string, ok bool) {
	if !strings.HasPrefix(filename, c.prefix) || !strings.HasSuffix(filename, c.suffix) {
		return 0, "", false
	}

	core := strings.TrimSuffix(strings.TrimPrefix(filename, c.prefix), c.suffix)
	indexStr, name, found := strings.Cut(core, "-")
	if !found {
		indexStr = core
	}

	index, err := strconv.Atoi(indexStr)
	if err != nil || index < 0 {
		return 0, "", false
	}

	return index, name, true
}
