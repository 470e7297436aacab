package cli

import (
	"fmt"
	"strconv"

	actx "github.com/ogunbaysal/rung/app/context"
	aerrors "github.com/ogunbaysal/rung/app/errors"
)

// The Status command lists all migrations in the catalog and whether they are
// applied at the current version.
type Status struct{}

// Run the status command.
func (c *Status) Run(appCtx *actx.Context) error {
	entries, err := appCtx.Migrator.Catalog().List()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		if _, err = fmt.Fprintln(appCtx.Stdout, "No migrations found."); err != nil {
			return aerrors.NewWithCause("failed writing to stdout", err)
		}
		return nil
	}

	version := appCtx.Migrator.Version()
	data := make([][]string, 0, len(entries))
	for _, entry := range entries {
		status := "pending"
		if entry.Index < version {
			status = "applied"
		}
		data = append(data, []string{
			strconv.Itoa(entry.Index), entry.Name, status, entry.Filename,
		})
	}

	err = renderTable([]string{"Index", "Name", "Status", "File"}, data, appCtx.Stdout)
	if err != nil {
		return aerrors.NewWithCause("failed rendering migrations table", err)
	}

	return nil
}
