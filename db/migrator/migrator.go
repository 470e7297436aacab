package migrator

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mandelsoft/vfs/pkg/vfs"

	"github.com/ogunbaysal/rung/db"
)

// Sentinel errors returned by migration plans.
var (
	ErrMigrationMissing = errors.New("migration file missing")
	ErrInvalidMigration = errors.New("not a valid migration")
	ErrTargetOutOfRange = errors.New("target version out of range")
)

// TargetDefault selects the default target version: the full catalog for Up,
// and one step back for Down.
const TargetDefault = -1

// Config holds the filesystem layout of the migrator.
type Config struct {
	// Dir is the directory containing the migration files.
	Dir string
	// Prefix and Suffix delimit migration filenames; the part in between is
	// "{index}-{name}".
	Prefix string
	Suffix string
	// MarkerPath is the path of the version marker file.
	MarkerPath string
}

// Migrator applies and reverts migrations sequentially, advancing the version
// marker as it goes. All steps of one invocation run in a single transaction;
// the first failure rolls back the whole batch and restores the marker.
type Migrator struct {
	fs       vfs.FileSystem
	db       *db.DB
	catalog  *Catalog
	marker   *Marker
	registry *Registry
	logger   *slog.Logger
}

// New creates a Migrator. Empty Prefix/Suffix fall back to the default
// filename convention. The registry may be nil if no Go migrations are used.
func New(fsys vfs.FileSystem, d *db.DB, cfg Config, registry *Registry, logger *slog.Logger) *Migrator {
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}
	if cfg.Suffix == "" {
		cfg.Suffix = DefaultSuffix
	}
	if registry == nil {
		registry = NewRegistry()
	}

	return &Migrator{
		fs:       fsys,
		db:       d,
		catalog:  NewCatalog(fsys, cfg.Dir, cfg.Prefix, cfg.Suffix),
		marker:   NewMarker(fsys, cfg.MarkerPath),
		registry: registry,
		logger:   logger,
	}
}

// Catalog returns the migration file catalog.
func (m *Migrator) Catalog() *Catalog {
	return m.catalog
}

// Version returns the currently recorded schema version.
func (m *Migrator) Version() int {
	return m.marker.Get()
}

// Up applies all migrations from the current version up to, but excluding,
// the target index. TargetDefault applies the full catalog. An empty catalog
// and an already-reached target are no-ops.
func (m *Migrator) Up(target int) error {
	entries, err := m.catalog.List()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		m.logger.Info("no migrations found", "dir", m.catalog.Dir())
		return nil
	}

	current := m.marker.Get()
	if target == TargetDefault {
		target = len(entries)
	}
	if target == current {
		m.logger.Info("already at target version", "version", current)
		return nil
	}
	if target < current || target > len(entries) {
		return fmt.Errorf("%w: target %d, current version %d, %d migrations available",
			ErrTargetOutOfRange, target, current, len(entries))
	}

	byIndex := indexEntries(entries)
	ctx := m.db.NewContext()
	tx, err := m.db.Begin(ctx)
	if err != nil {
		return err
	}

	for i := current; i < target; i++ {
		mig, entry, err := m.resolve(byIndex, i)
		if err != nil {
			return m.abort(tx, current, err)
		}
		if err = mig.Up(ctx, tx); err != nil {
			return m.abort(tx, current,
				fmt.Errorf("failed applying migration '%s': %w", entry.Filename, err))
		}
		if err = m.marker.Set(i + 1); err != nil {
			return m.abort(tx, current, err)
		}
		m.logger.Info("applied migration", "index", i, "file", entry.Filename)
	}

	if err = tx.Commit(); err != nil {
		return m.abort(tx, current, fmt.Errorf("failed committing migration batch: %w", err))
	}

	m.logger.Info("migration complete", "version", target,
		"finished_at", m.db.TimeNow().Format(time.RFC3339))

	return nil
}

// Down reverts migrations from the current version down to, and including,
// the migration at the target index. TargetDefault reverts a single step.
func (m *Migrator) Down(target int) error {
	entries, err := m.catalog.List()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		m.logger.Info("no migrations found", "dir", m.catalog.Dir())
		return nil
	}

	current := m.marker.Get()
	if target == TargetDefault {
		target = current - 1
	}
	if target == current {
		m.logger.Info("already at target version", "version", current)
		return nil
	}
	if target < 0 || target > current {
		return fmt.Errorf("%w: target %d, current version %d",
			ErrTargetOutOfRange, target, current)
	}

	byIndex := indexEntries(entries)
	ctx := m.db.NewContext()
	tx, err := m.db.Begin(ctx)
	if err != nil {
		return err
	}

	for i := current - 1; i >= target; i-- {
		mig, entry, err := m.resolve(byIndex, i)
		if err != nil {
			return m.abort(tx, current, err)
		}
		if err = mig.Down(ctx, tx); err != nil {
			return m.abort(tx, current,
				fmt.Errorf("failed reverting migration '%s': %w", entry.Filename, err))
		}
		if err = m.marker.Set(i); err != nil {
			return m.abort(tx, current, err)
		}
		m.logger.Info("reverted migration", "index", i, "file", entry.Filename)
	}

	if err = tx.Commit(); err != nil {
		return m.abort(tx, current, fmt.Errorf("failed committing migration batch: %w", err))
	}

	m.logger.Info("rollback complete", "version", target,
		"finished_at", m.db.TimeNow().Format(time.RFC3339))

	return nil
}

// resolve returns the migration at the given index: a registered Go migration
// if one exists, otherwise the parsed contents of the catalog file.
func (m *Migrator) resolve(byIndex map[int]Entry, index int) (Migration, Entry, error) {
	entry, ok := byIndex[index]
	if !ok {
		return nil, Entry{}, fmt.Errorf("%w: no file with index %d in '%s'",
			ErrMigrationMissing, index, m.catalog.Dir())
	}

	if mig, registered := m.registry.Get(index); registered {
		return mig, entry, nil
	}

	mig, err := m.catalog.Load(entry)
	if err != nil {
		return nil, Entry{}, err
	}

	return mig, entry, nil
}

// abort rolls back the batch transaction and restores the marker to the
// version recorded before the batch started.
func (m *Migrator) abort(tx *db.Tx, startVersion int, err error) error {
	if rbErr := tx.Rollback(); rbErr != nil {
		m.logger.Warn("failed rolling back transaction", "error", rbErr)
	}
	if mErr := m.marker.Set(startVersion); mErr != nil {
		m.logger.Warn("failed restoring version marker", "error", mErr)
	}

	return err
}

func indexEntries(entries []Entry) map[int]Entry {
	byIndex := make(map[int]Entry, len(entries))
	for _, entry := range entries {
		byIndex[entry.Index] = entry
	}

	return byIndex
}
