package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ogunbaysal/rung/app/config"
	actx "github.com/ogunbaysal/rung/app/context"
)

// CLI is the command line interface of rung.
type CLI struct {
	Up      Up      `kong:"cmd,help='Apply pending migrations.'"`
	Down    Down    `kong:"cmd,help='Revert applied migrations.'"`
	Create  Create  `kong:"cmd,help='Scaffold a new migration file.'"`
	Status  Status  `kong:"cmd,help='Show all migrations and whether they are applied.'"`
	Version Version `kong:"cmd,help='Print the current schema version.'"`

	Log struct {
		Level slog.Level `enum:"DEBUG,INFO,WARN,ERROR" default:"INFO" help:"Set the app logging level."`
	} `embed:"" prefix:"log-"`
	// NOTE: Configuration is deliberately managed independently from the CLI,
	// instead of using kong.ConfigFlag; flag values take precedence over
	// config file values via ApplyConfig.
	ConfigFile    string           `kong:"default='${configFile}',help='Path to the rung configuration file.'"`
	DataDir       string           `kong:"default='${dataDir}',help='Path to the directory where rung data is stored.'"`
	DB            string           `kong:"help='SQLite path or DSN of the database migrations are applied to.'"`
	MigrationsDir string           `kong:"help='Path to the directory containing migration files.'"`
	MarkerFile    string           `kong:"help='Path to the file recording the current schema version.'"`
	BuildVersion  kong.VersionFlag `kong:"name='build-version',help='Output version and exit.'"`

	kong *kong.Kong
	kctx *kong.Context
}

// New initializes the command-line interface.
func New(configFilePath, dataDir, version string) (*CLI, error) {
	c := &CLI{}
	kparser, err := kong.New(c,
		kong.Name("rung"),
		kong.UsageOnError(),
		kong.DefaultEnvars("RUNG"),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			Summary:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"configFile": configFilePath,
			"dataDir":    dataDir,
			"version":    version,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed creating the Kong parser: %w", err)
	}

	c.kong = kparser

	return c, nil
}

// Execute starts the command execution. Parse must be called before this method.
func (c *CLI) Execute(appCtx *actx.Context) error {
	if c.kctx == nil {
		panic("the CLI wasn't initialized properly")
	}
	c.kong.Stdout = appCtx.Stdout
	c.kong.Stderr = appCtx.Stderr

	//nolint:wrapcheck // This is fine.
	return c.kctx.Run(appCtx)
}

// Parse the given command line arguments. This method must be called before
// Execute.
func (c *CLI) Parse(args []string) error {
	kctx, err := c.kong.Parse(args)
	if err != nil {
		return fmt.Errorf("failed parsing CLI arguments: %w", err)
	}
	c.kctx = kctx

	return nil
}

// Command returns the full path of the executed command.
func (c *CLI) Command() string {
	if c.kctx == nil {
		panic("the CLI wasn't initialized properly")
	}
	cmdPath := []string{}
	for _, p := range c.kctx.Path {
		if p.Command != nil {
			cmdPath = append(cmdPath, p.Command.Name)
		}
	}

	return strings.Join(cmdPath, " ")
}

// ApplyConfig applies configuration values to the CLI, but only if they weren't
// already set.
func (c *CLI) ApplyConfig(cfg *config.Config) {
	if c.DB == "" && cfg.Database.Path.Valid {
		c.DB = cfg.Database.Path.V
	}
	if c.MigrationsDir == "" && cfg.Migrations.Dir.Valid {
		c.MigrationsDir = cfg.Migrations.Dir.V
	}
	if c.MarkerFile == "" && cfg.Migrations.MarkerFile.Valid {
		c.MarkerFile = cfg.Migrations.MarkerFile.V
	}
}
