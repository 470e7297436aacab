package migrator

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
)

// Section markers inside SQL migration files. Everything after an up marker
// until the next marker (or EOF) belongs to the up step, and likewise for
// down. Content before the first marker is ignored, which allows free-form
// header comments.
const (
	upMarker   = "-- rung:up"
	downMarker = "-- rung:down"
)

// parseMigration parses the up/down sections of a SQL migration file. A file
// without an up marker doesn't satisfy the migration contract and is
// rejected.
func parseMigration(src []byte) (*sqlMigration, error) {
	var (
		upSection, downSection strings.Builder
		section                *strings.Builder
		sawUp                  bool
	)

	scanner := bufio.NewScanner(bytes.NewReader(src))
	for scanner.Scan() {
		line := scanner.Text()
		switch strings.TrimSpace(line) {
		case upMarker:
			sawUp = true
			section = &upSection
			continue
		case downMarker:
			section = &downSection
			continue
		}

		if section != nil {
			section.WriteString(line)
			section.WriteString("\n")
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed reading migration contents: %w", err)
	}

	if !sawUp {
		return nil, fmt.Errorf("missing '%s' section", upMarker)
	}

	return &sqlMigration{
		up:   splitStatements(upSection.String()),
		down: splitStatements(downSection.String()),
	}, nil
}

// splitStatements splits a section into individual SQL statements on
// semicolons. Semicolons inside string literals or trigger bodies aren't
// handled; migrations needing those should be registered as Go migrations
// instead.
func splitStatements(section string) []string {
	var stmts []string
	for _, stmt := range strings.Split(section, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		stmts = append(stmts, stmt)
	}

	return stmts
}
