package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/mandelsoft/vfs/pkg/osfs"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/ogunbaysal/rung/app"
	aerrors "github.com/ogunbaysal/rung/app/errors"
)

func main() {
	configFile := filepath.Join(xdg.ConfigHome, "rung", "config.json")
	dataDir := filepath.Join(xdg.DataHome, "rung")

	a, err := app.New("rung", configFile, dataDir,
		app.WithTimeNow(time.Now),
		app.WithFDs(
			os.Stdin,
			colorable.NewColorable(os.Stdout),
			colorable.NewColorable(os.Stderr),
		),
		app.WithFS(osfs.New()),
		app.WithLogger(
			isatty.IsTerminal(os.Stdout.Fd()),
			isatty.IsTerminal(os.Stderr.Fd()),
		),
	)
	if err != nil {
		aerrors.Log(err)
		os.Exit(1)
	}
	if err = a.Run(os.Args[1:]); err != nil {
		aerrors.Log(err)
		os.Exit(1)
	}
}
