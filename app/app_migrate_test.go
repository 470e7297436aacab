package app

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/mandelsoft/vfs/pkg/memoryfs"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogunbaysal/rung/db"
	"github.com/ogunbaysal/rung/db/migrator"
)

var timeNow = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func timeNowFn() time.Time {
	return timeNow
}

type testApp struct {
	*App
	fs             vfs.FileSystem
	stdout, stderr *bytes.Buffer
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	// A unique name per app, to avoid clashing of in-memory SQLite DBs.
	rndName := make([]byte, 12)
	_, err := rand.Read(rndName)
	require.NoError(t, err)

	// Not using just :memory: to avoid 'no such table' issue.
	// See https://github.com/mattn/go-sqlite3#faq
	d, err := db.Open(context.Background(),
		fmt.Sprintf("file:rung-%x?mode=memory&cache=shared", rndName), timeNowFn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	var (
		fsys           = memoryfs.New()
		stdout, stderr bytes.Buffer
	)
	opts := []Option{
		WithTimeNow(timeNowFn),
		WithDB(d),
		WithContext(context.Background()),
		WithFDs(strings.NewReader(""), &stdout, &stderr),
		WithFS(fsys),
		WithLogger(false, false),
	}
	app, err := New("rung", "/config.json", "/data", opts...)
	require.NoError(t, err)

	return &testApp{App: app, fs: fsys, stdout: &stdout, stderr: &stderr}
}

func (ta *testApp) run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	ta.stdout.Reset()
	ta.stderr.Reset()
	err = ta.Run(args)

	return ta.stdout.String(), ta.stderr.String(), err
}

func (ta *testApp) writeMigration(t *testing.T, filename, contents string) {
	t.Helper()

	require.NoError(t, ta.fs.MkdirAll("/data/migrations", 0o755))
	require.NoError(t,
		vfs.WriteFile(ta.fs, "/data/migrations/"+filename, []byte(contents), 0o644))
}

func TestAppMigrateIntegration(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t)

	ta.writeMigration(t, "migration-0-users.sql",
		"-- rung:up\nCREATE TABLE users (id INTEGER PRIMARY KEY);\n-- rung:down\nDROP TABLE users;\n")
	ta.writeMigration(t, "migration-1-posts.sql",
		"-- rung:up\nCREATE TABLE posts (id INTEGER PRIMARY KEY);\n-- rung:down\nDROP TABLE posts;\n")

	stdout, _, err := ta.run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "0\n", stdout)

	_, _, err = ta.run(t, "up")
	require.NoError(t, err)

	stdout, _, err = ta.run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "2\n", stdout)

	// The marker is persisted as plain text in the data directory.
	marker, err := vfs.ReadFile(ta.fs, "/data/version")
	require.NoError(t, err)
	assert.Equal(t, "2\n", string(marker))

	stdout, _, err = ta.run(t, "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "users")
	assert.Contains(t, stdout, "posts")
	assert.Contains(t, stdout, "applied")
	assert.NotContains(t, stdout, "pending")

	_, _, err = ta.run(t, "down")
	require.NoError(t, err)

	stdout, _, err = ta.run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "1\n", stdout)

	stdout, _, err = ta.run(t, "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "applied")
	assert.Contains(t, stdout, "pending")
}

func TestAppUpOutOfRange(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t)
	ta.writeMigration(t, "migration-0-users.sql",
		"-- rung:up\nCREATE TABLE users (id INTEGER PRIMARY KEY);\n-- rung:down\nDROP TABLE users;\n")

	_, _, err := ta.run(t, "up", "5")
	require.Error(t, err)
	assert.ErrorContains(t, err, "target version out of range")

	stdout, _, err := ta.run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "0\n", stdout)
}

func TestAppNegativeTargetRejected(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t)
	ta.writeMigration(t, "migration-0-users.sql",
		"-- rung:up\nCREATE TABLE users (id INTEGER PRIMARY KEY);\n-- rung:down\nDROP TABLE users;\n")
	ta.writeMigration(t, "migration-1-posts.sql",
		"-- rung:up\nCREATE TABLE posts (id INTEGER PRIMARY KEY);\n-- rung:down\nDROP TABLE posts;\n")

	_, _, err := ta.run(t, "up")
	require.NoError(t, err)

	// An explicit -1 must not be mistaken for "no target given".
	_, _, err = ta.run(t, "up", "--", "-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, migrator.ErrTargetOutOfRange)

	_, _, err = ta.run(t, "down", "--", "-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, migrator.ErrTargetOutOfRange)

	stdout, _, err := ta.run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "2\n", stdout)
}

func TestAppCreate(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t)

	stdout, _, err := ta.run(t, "create", "init-schema")
	require.NoError(t, err)
	assert.Equal(t, "Created migration '/data/migrations/migration-0-init-schema.sql'\n", stdout)

	stdout, _, err = ta.run(t, "create", "add-posts")
	require.NoError(t, err)
	assert.Equal(t, "Created migration '/data/migrations/migration-1-add-posts.sql'\n", stdout)

	// Scaffolded migrations apply as no-ops.
	_, _, err = ta.run(t, "up")
	require.NoError(t, err)

	stdout, _, err = ta.run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "2\n", stdout)
}

func TestAppStatusEmptyCatalog(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t)

	stdout, _, err := ta.run(t, "status")
	require.NoError(t, err)
	assert.Equal(t, "No migrations found.\n", stdout)
}

func TestAppInvalidArgs(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t)

	_, _, err := ta.run(t, "bogus")
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed parsing CLI arguments")
}
