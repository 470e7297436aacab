package migrator

import (
	"testing"

	"github.com/mandelsoft/vfs/pkg/memoryfs"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCatalog(t *testing.T, files map[string]string) *Catalog {
	t.Helper()

	fsys := memoryfs.New()
	require.NoError(t, fsys.MkdirAll("/migrations", 0o755))
	for name, contents := range files {
		require.NoError(t,
			vfs.WriteFile(fsys, "/migrations/"+name, []byte(contents), 0o644))
	}

	return NewCatalog(fsys, "/migrations", DefaultPrefix, DefaultSuffix)
}

func TestCatalogList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		files      map[string]string
		expEntries []Entry
	}{
		{
			name: "ok/ordered_by_filename",
			files: map[string]string{
				"migration-1-add-posts.sql":    "",
				"migration-0-create-users.sql": "",
				"migration-2-add-index.sql":    "",
			},
			expEntries: []Entry{
				{Index: 0, Name: "create-users", Filename: "migration-0-create-users.sql"},
				{Index: 1, Name: "add-posts", Filename: "migration-1-add-posts.sql"},
				{Index: 2, Name: "add-index", Filename: "migration-2-add-index.sql"},
			},
		},
		{
			name: "ok/non_matching_files_skipped",
			files: map[string]string{
				"migration-0-init.sql":  "",
				"README.md":             "",
				"migration-x-bad.sql":   "",
				"snapshot-1-foo.sql":    "",
				"migration-1-notes.txt": "",
			},
			expEntries: []Entry{
				{Index: 0, Name: "init", Filename: "migration-0-init.sql"},
			},
		},
		{
			name:       "ok/empty_dir",
			files:      map[string]string{},
			expEntries: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newTestCatalog(t, tt.files)
			entries, err := c.List()
			require.NoError(t, err)
			assert.Equal(t, tt.expEntries, entries)
		})
	}
}

func TestCatalogListMissingDir(t *testing.T) {
	t.Parallel()

	c := NewCatalog(memoryfs.New(), "/nowhere", DefaultPrefix, DefaultSuffix)
	entries, err := c.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCatalogLastIndex(t *testing.T) {
	t.Parallel()

	c := newTestCatalog(t, map[string]string{
		"migration-0-a.sql": "",
		"migration-1-b.sql": "",
		"migration-2-c.sql": "",
	})
	last, err := c.LastIndex()
	require.NoError(t, err)
	assert.Equal(t, 2, last)

	empty := newTestCatalog(t, nil)
	last, err = empty.LastIndex()
	require.NoError(t, err)
	assert.Equal(t, -1, last)
}

func TestCatalogLoad(t *testing.T) {
	t.Parallel()

	c := newTestCatalog(t, map[string]string{
		"migration-0-init.sql": "-- rung:up\nCREATE TABLE t (x);\n-- rung:down\nDROP TABLE t;\n",
		"migration-1-junk.sql": "not sql sections at all\n",
	})

	m, err := c.Load(Entry{Index: 0, Name: "init", Filename: "migration-0-init.sql"})
	require.NoError(t, err)
	require.IsType(t, &sqlMigration{}, m)
	assert.Equal(t, []string{"CREATE TABLE t (x)"}, m.(*sqlMigration).up)

	_, err = c.Load(Entry{Index: 1, Name: "junk", Filename: "migration-1-junk.sql"})
	assert.ErrorIs(t, err, ErrInvalidMigration)

	_, err = c.Load(Entry{Index: 2, Name: "gone", Filename: "migration-2-gone.sql"})
	assert.ErrorIs(t, err, ErrMigrationMissing)
}
