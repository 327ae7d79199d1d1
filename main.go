package main

import (
	"embed"
	"log"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"maestro/internal/cli"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	root := cli.NewRootCmd(runApp)
	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func runApp() error {
	app := NewApp()

	return wails.Run(&options.App{
		Title:             "Maestro",
		Width:             420,
		Height:            640,
		HideWindowOnClose: true,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		OnStartup:  app.startup,
		OnShutdown: app.shutdown,
		Bind: []interface{}{
			app,
		},
	})
}
