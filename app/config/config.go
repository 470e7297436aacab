package config

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/mandelsoft/vfs/pkg/vfs"
)

// Config represents the application configuration, backed by a filesystem for
// persistence.
type Config struct {
	Database   Database
	Migrations Migrations

	fs   vfs.FileSystem
	path string
}

// NewConfig creates a new Config instance with the specified filesystem
// and configuration file path.
func NewConfig(fs vfs.FileSystem, path string) *Config {
	return &Config{fs: fs, path: path}
}

// Load reads and parses the configuration file from the filesystem.
// If the file doesn't exist, it initializes with an empty configuration.
func (c *Config) Load() error {
	if err := c.fs.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed creating configuration directory: %w", err)
	}

	configJSON, err := vfs.ReadFile(c.fs, c.path)
	if err != nil && !vfs.IsErrNotExist(err) {
		return fmt.Errorf("failed reading configuration file: %w", err)
	}

	// Ensure that unmarshalling JSON doesn't fail if the file doesn't exist or is empty.
	if len(configJSON) == 0 {
		configJSON = []byte("{}")
	}

	if err = json.Unmarshal(configJSON, c); err != nil {
		return fmt.Errorf("failed parsing configuration file: %w", err)
	}

	return nil
}

// Path returns the filesystem path where the configuration is stored.
func (c *Config) Path() string {
	return c.path
}

// Save writes the current configuration to the filesystem as JSON.
func (c *Config) Save() error {
	if err := c.fs.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed creating configuration directory: %w", err)
	}
	configJSON, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed serializing configuration data: %w", err)
	}
	if err = vfs.WriteFile(c.fs, c.path, configJSON, 0o644); err != nil {
		return fmt.Errorf("failed writing configuration file: %w", err)
	}

	return nil
}

// Database defines configuration options for the target database.
type Database struct {
	// Path is the SQLite database path or DSN migrations are applied to.
	Path sql.Null[string] `json:"path"`
}

// Migrations defines configuration options for the migration catalog and the
// version marker.
type Migrations struct {
	// Dir is the directory containing the migration files.
	Dir sql.Null[string] `json:"dir"`
	// Prefix and Suffix delimit migration filenames; the part in between is
	// "{index}-{name}".
	Prefix sql.Null[string] `json:"prefix"`
	Suffix sql.Null[string] `json:"suffix"`
	// MarkerFile is the path of the file recording the current schema version.
	MarkerFile sql.Null[string] `json:"marker_file"`
}

type cfgWrapper struct {
	Database   dbCfgWrapper  `json:"database"`
	Migrations migCfgWrapper `json:"migrations"`
}
type dbCfgWrapper struct {
	Path string `json:"path,omitempty"`
}
type migCfgWrapper struct {
	Dir        string `json:"dir,omitempty"`
	Prefix     string `json:"prefix,omitempty"`
	Suffix     string `json:"suffix,omitempty"`
	MarkerFile string `json:"marker_file,omitempty"`
}

// MarshalJSON implements custom JSON marshaling to convert sql.Null values
// to their underlying types, omitting invalid/null fields from the output.
func (c Config) MarshalJSON() ([]byte, error) {
	w := cfgWrapper{}

	if c.Database.Path.Valid {
		w.Database.Path = c.Database.Path.V
	}
	if c.Migrations.Dir.Valid {
		w.Migrations.Dir = c.Migrations.Dir.V
	}
	if c.Migrations.Prefix.Valid {
		w.Migrations.Prefix = c.Migrations.Prefix.V
	}
	if c.Migrations.Suffix.Valid {
		w.Migrations.Suffix = c.Migrations.Suffix.V
	}
	if c.Migrations.MarkerFile.Valid {
		w.Migrations.MarkerFile = c.Migrations.MarkerFile.V
	}

	//nolint:wrapcheck // This is fine.
	return json.Marshal(w)
}

// UnmarshalJSON implements custom JSON unmarshaling to convert plain values
// into sql.Null types.
func (c *Config) UnmarshalJSON(data []byte) error {
	var w cfgWrapper
	if err := json.Unmarshal(data, &w); err != nil {
		//nolint:wrapcheck // This is fine.
		return err
	}

	if w.Database.Path != "" {
		c.Database.Path = sql.Null[string]{V: w.Database.Path, Valid: true}
	}
	if w.Migrations.Dir != "" {
		c.Migrations.Dir = sql.Null[string]{V: w.Migrations.Dir, Valid: true}
	}
	if w.Migrations.Prefix != "" {
		c.Migrations.Prefix = sql.Null[string]{V: w.Migrations.Prefix, Valid: true}
	}
	if w.Migrations.Suffix != "" {
		c.Migrations.Suffix = sql.Null[string]{V: w.Migrations.Suffix, Valid: true}
	}
	if w.Migrations.MarkerFile != "" {
		c.Migrations.MarkerFile = sql.Null[string]{V: w.Migrations.MarkerFile, Valid: true}
	}

	return nil
}

// SetDefaults sets default configuration values if they weren't set already.
// Path defaults are resolved relative to the given data directory.
func (c *Config) SetDefaults(dataDir string) {
	if !c.Database.Path.Valid {
		c.Database.Path = sql.Null[string]{V: filepath.Join(dataDir, "rung.db"), Valid: true}
	}
	if !c.Migrations.Dir.Valid {
		c.Migrations.Dir = sql.Null[string]{V: filepath.Join(dataDir, "migrations"), Valid: true}
	}
	if !c.Migrations.Prefix.Valid {
		c.Migrations.Prefix = sql.Null[string]{V: "migration-", Valid: true}
	}
	if !c.Migrations.Suffix.Valid {
		c.Migrations.Suffix = sql.Null[string]{V: ".sql", Valid: true}
	}
	if !c.Migrations.MarkerFile.Valid {
		c.Migrations.MarkerFile = sql.Null[string]{V: filepath.Join(dataDir, "version"), Valid: true}
	}
}
