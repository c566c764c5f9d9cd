// Package main is the entry point for the findview viewer.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/findview/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Shutdown()

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	go func() {
		if _, ok := <-signals; ok {
			application.Quit()
		}
	}()

	if err := application.Run(screen); err != nil {
		if errors.Is(err, app.ErrQuit) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	return 0
}

func parseFlags() app.Options {
	var opts app.Options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.PrefsPath, "prefs", "", "Path to the preferences file (.toml or .yaml)")
	flag.StringVar(&opts.PrefsPath, "p", "", "Path to the preferences file (shorthand)")
	flag.StringVar(&opts.LogPath, "log", "", "Write logs to this file")
	flag.StringVar(&opts.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.BoolVar(&opts.Debug, "debug", false, "Enable debug logging")
	flag.BoolVar(&opts.Debug, "d", false, "Enable debug logging (shorthand)")
	flag.BoolVar(&opts.NoWatch, "no-watch", false, "Do not reload the preferences file when it changes")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "findview - incremental find and replace viewer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: findview [options] [files...]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nKeys:\n")
		fmt.Fprintf(os.Stderr, "  Enter / Ctrl-P      Next / previous match\n")
		fmt.Fprintf(os.Stderr, "  Tab                 Switch between find and replace\n")
		fmt.Fprintf(os.Stderr, "  Ctrl-R / Ctrl-E     Replace next / replace selection\n")
		fmt.Fprintf(os.Stderr, "  Ctrl-A              Replace all\n")
		fmt.Fprintf(os.Stderr, "  Ctrl-S              Swap find and replace\n")
		fmt.Fprintf(os.Stderr, "  Ctrl-Y / Ctrl-L     Record / recall history\n")
		fmt.Fprintf(os.Stderr, "  Ctrl-N              Next file\n")
		fmt.Fprintf(os.Stderr, "  F1..F6              Case, word, regex, highlight all, auto history, close on Esc\n")
		fmt.Fprintf(os.Stderr, "  F7                  Reset search modes to defaults\n")
		fmt.Fprintf(os.Stderr, "  Ctrl-Q              Quit\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("findview %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	switch opts.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
		os.Exit(1)
	}

	opts.Files = flag.Args()
	return opts
}
