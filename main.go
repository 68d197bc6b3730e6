// Package main provides the entry point for the Image Annotator application.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	fyneapp "fyne.io/fyne/v2/app"

	"image-annotator/internal/app"
	"image-annotator/internal/config"
	"image-annotator/internal/logging"
	"image-annotator/internal/version"
	"image-annotator/ui/mainwindow"
	"image-annotator/ui/prefs"
)

const appID = "io.github.image-annotator"

func main() {
	var configPath, logLevel string
	var showVersion bool

	flag.StringVar(&configPath, "config", config.GetConfigPath(), "configuration file")
	flag.StringVar(&logLevel, "log", "", "log level: debug|info|warn|error (overrides config)")
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] [image]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if showVersion {
		fmt.Println(version.String())
		return
	}

	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config %s: %v\n", configPath, err)
		os.Exit(1)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	logging.SetLogger(logging.NewTextLogger(os.Stderr, cfg.Logging.Level))
	log := logging.WithComponent("main")
	log.Info("starting", slog.String("version", version.String()), slog.String("config", configPath))

	fyneApp := fyneapp.NewWithID(appID)
	fyneApp.Settings().SetTheme(&app.AnnotatorTheme{})

	state := app.NewState(cfg)
	appPrefs := prefs.Load()

	win := mainwindow.New(fyneApp, state, appPrefs)

	if flag.NArg() > 0 {
		win.OpenImage(flag.Arg(0))
	} else {
		win.RestoreLastImage()
	}

	win.ShowAndRun()

	win.SavePreferences()
	log.Info("exiting")
}
