package cli

import (
	"fmt"

	actx "github.com/ogunbaysal/rung/app/context"
	"github.com/ogunbaysal/rung/db/migrator"
)

// The Up command applies pending migrations in ascending catalog order, inside
// a single transaction.
type Up struct {
	Target *int `kong:"arg,optional,help='Version to migrate up to. Defaults to the full catalog.'"`
}

// Run the up command.
func (c *Up) Run(appCtx *actx.Context) error {
	target := migrator.TargetDefault
	if c.Target != nil {
		// Explicit negative targets must not alias the default sentinel.
		if *c.Target < 0 {
			return fmt.Errorf("%w: target %d", migrator.ErrTargetOutOfRange, *c.Target)
		}
		target = *c.Target
	}

	return appCtx.Migrator.Up(target)
}
