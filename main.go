// Package main provides the entry point for the Cutout Studio application.
package main

import (
	"flag"
	"fmt"
	"os"

	"cutout-studio/internal/app"
	"cutout-studio/internal/config"
	_ "cutout-studio/internal/export/webp"
	"cutout-studio/internal/logging"
	"cutout-studio/internal/removal/backends"
	"cutout-studio/internal/version"
	"cutout-studio/ui/mainwindow"
	"cutout-studio/ui/prefs"

	fyneapp "fyne.io/fyne/v2/app"
)

const appID = "io.github.cutoutstudio"

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := logging.Setup(os.Stderr, cfg.Log.Level); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level: %v\n", err)
		os.Exit(1)
	}
	log := logging.For("main")
	log.Info("starting", "version", version.String(), "backend", cfg.Removal.Backend)

	remover, err := backends.New(cfg.Removal)
	if err != nil {
		log.Error("background removal unavailable", "error", err)
		os.Exit(1)
	}

	appState := app.NewState(remover, cfg)
	appPrefs := prefs.Load()

	fyneApp := fyneapp.NewWithID(appID)
	fyneApp.Settings().SetTheme(app.NewTheme(appPrefs.String(prefs.KeyTheme, app.ThemeLight)))

	win := mainwindow.New(fyneApp, appState, cfg, appPrefs)

	// Positional arguments are queued as images
	if args := flag.Args(); len(args) > 0 {
		appState.AddFiles(args)
	}

	win.ShowAndRun()

	if err := appPrefs.Save(); err != nil {
		log.Warn("failed to save preferences", "path", appPrefs.Path(), "error", err)
	}
}
