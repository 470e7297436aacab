package cli

import (
	"fmt"

	actx "github.com/ogunbaysal/rung/app/context"
	"github.com/ogunbaysal/rung/db/migrator"
)

// The Down command reverts applied migrations in descending catalog order,
// inside a single transaction.
type Down struct {
	Target *int `kong:"arg,optional,help='Version to migrate down to. Defaults to one below the current version.'"`
}

// Run the down command.
func (c *Down) Run(appCtx *actx.Context) error {
	target := migrator.TargetDefault
	if c.Target != nil {
		// Explicit negative targets must not alias the default sentinel.
		if *c.Target < 0 {
			return fmt.Errorf("%w: target %d", migrator.ErrTargetOutOfRange, *c.Target)
		}
		target = *c.Target
	}

	return appCtx.Migrator.Down(target)
}
