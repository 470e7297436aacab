package cli

import (
	"fmt"

	actx "github.com/ogunbaysal/rung/app/context"
	aerrors "github.com/ogunbaysal/rung/app/errors"
)

// The Create command scaffolds a new migration file under the next free
// catalog index.
type Create struct {
	Name string `kong:"arg,help='Name of the new migration.'"`
}

// Run the create command.
func (c *Create) Run(appCtx *actx.Context) error {
	path, err := appCtx.Migrator.Create(c.Name)
	if err != nil {
		return aerrors.NewWithCause("failed creating migration", err, "name", c.Name)
	}

	_, err = fmt.Fprintf(appCtx.Stdout, "Created migration '%s'\n", path)
	if err != nil {
		return aerrors.NewWithCause("failed writing to stdout", err)
	}

	return nil
}
