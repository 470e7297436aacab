package cli

import (
	"fmt"

	actx "github.com/ogunbaysal/rung/app/context"
	aerrors "github.com/ogunbaysal/rung/app/errors"
)

// The Version command prints the currently recorded schema version.
type Version struct{}

// Run the version command.
func (c *Version) Run(appCtx *actx.Context) error {
	_, err := fmt.Fprintf(appCtx.Stdout, "%d\n", appCtx.Migrator.Version())
	if err != nil {
		return aerrors.NewWithCause("failed writing to stdout", err)
	}

	return nil
}
