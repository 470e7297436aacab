package migrator

import (
	"context"
	"fmt"

	"github.com/ogunbaysal/rung/db/types"
)

// Migration is a single schema change step. Up applies the change and Down
// reverts it. Both receive the querier of the transaction the current batch
// runs in, so their statements are rolled back together with the rest of the
// batch on failure.
type Migration interface {
	Up(ctx context.Context, q types.Querier) error
	Down(ctx context.Context, q types.Querier) error
}

// Registry holds migrations written in Go, keyed by their catalog index. A
// registered migration takes precedence over the SQL contents of the catalog
// file with the same index, but the file must still exist to give the
// migration its place in the catalog order.
type Registry struct {
	migrations map[int]Migration
}

// NewRegistry creates an empty migration registry.
func NewRegistry() *Registry {
	return &Registry{migrations: map[int]Migration{}}
}

// Register adds a Go migration at the given catalog index. It returns an
// error if the index is negative or already taken.
func (r *Registry) Register(index int, m Migration) error {
	if index < 0 {
		return fmt.Errorf("invalid migration index %d", index)
	}
	if _, ok := r.migrations[index]; ok {
		return fmt.Errorf("migration with index %d is already registered", index)
	}
	r.migrations[index] = m

	return nil
}

// Get returns the registered migration at the given index, if any.
func (r *Registry) Get(index int) (Migration, bool) {
	m, ok := r.migrations[index]
	return m, ok
}

// sqlMigration is a Migration parsed from the up/down sections of a SQL
// migration file. A section with no statements is a successful no-op.
type sqlMigration struct {
	up   []string
	down []string
}

var _ Migration = (*sqlMigration)(nil)

func (m *sqlMigration) Up(ctx context.Context, q types.Querier) error {
	return execStatements(ctx, q, m.up)
}

func (m *sqlMigration) Down(ctx context.Context, q types.Querier) error {
	return execStatements(ctx, q, m.down)
}

func execStatements(ctx context.Context, q types.Querier, stmts []string) error {
	for _, stmt := range stmts {
		if _, err := q.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed executing statement %q: %w", stmt, err)
		}
	}

	return nil
}
