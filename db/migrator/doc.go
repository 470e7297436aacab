// Package migrator provides functionality to manage database schema migrations.
//
// Features:
// - Supports both forward (`up`) and rollback (`down`) migrations
// - Loads SQL migration files from a filesystem with structured naming (`{prefix}{index}-{name}{suffix}`)
// - Tracks the current schema version in a plain-text marker file
// - Executes migration plans to a target version inside a single transaction
// - Scaffolds new migration files from a boilerplate template
// - Allows registering migrations written in Go instead of SQL
package migrator
