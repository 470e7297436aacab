package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mandelsoft/vfs/pkg/memoryfs"

	cfg "github.com/ogunbaysal/rung/app/config"
	actx "github.com/ogunbaysal/rung/app/context"
	"github.com/ogunbaysal/rung/cli"
	"github.com/ogunbaysal/rung/db"
	"github.com/ogunbaysal/rung/db/migrator"
)

// App is the application.
type App struct {
	name     string
	ctx      *actx.Context
	cli      *cli.CLI
	registry *migrator.Registry
	// the logging level is set via the CLI, if the app was initialized with the
	// WithLogger option.
	logLevel *slog.LevelVar
}

// New initializes a new application.
func New(name, configFilePath, dataDir string, opts ...Option) (*App, error) {
	version, err := actx.GetVersion()
	if err != nil {
		return nil, err
	}

	defaultCtx := &actx.Context{
		Ctx:     context.Background(),
		FS:      memoryfs.New(),
		Logger:  slog.Default(),
		Version: version,
	}
	app := &App{name: name, ctx: defaultCtx}

	for _, opt := range opts {
		opt(app)
	}

	ver := fmt.Sprintf("%s %s", app.name, app.ctx.Version.String())
	app.cli, err = cli.New(configFilePath, dataDir, ver)
	if err != nil {
		return nil, err
	}

	return app, nil
}

// Run initializes the application environment and starts execution of the
// application.
func (app *App) Run(args []string) error {
	if err := app.cli.Parse(args); err != nil {
		return err
	}

	if app.logLevel != nil {
		app.logLevel.Set(app.cli.Log.Level)
		slog.SetLogLoggerLevel(app.cli.Log.Level)
	}

	if err := app.setup(); err != nil {
		return err
	}

	return app.cli.Execute(app.ctx)
}

// setup loads the configuration and builds the database handle and the
// migrator, unless they were injected via options.
func (app *App) setup() error {
	config := cfg.NewConfig(app.ctx.FS, app.cli.ConfigFile)
	if err := config.Load(); err != nil {
		return err
	}
	config.SetDefaults(app.cli.DataDir)
	app.ctx.Config = config
	app.cli.ApplyConfig(config)

	if app.ctx.TimeNow == nil {
		app.ctx.TimeNow = time.Now
	}

	if app.ctx.DB == nil {
		d, err := db.Open(app.ctx.Ctx, app.cli.DB, app.ctx.TimeNow)
		if err != nil {
			return err
		}
		app.ctx.DB = d
	}

	if app.ctx.Migrator == nil {
		app.ctx.Migrator = migrator.New(app.ctx.FS, app.ctx.DB,
			migrator.Config{
				Dir:        app.cli.MigrationsDir,
				Prefix:     config.Migrations.Prefix.V,
				Suffix:     config.Migrations.Suffix.V,
				MarkerPath: app.cli.MarkerFile,
			},
			app.registry, app.ctx.Logger,
		)
	}

	return nil
}
