package main

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"github.com/mattn/go-isatty"
)

var version = ""

func getVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}

// options are the parsed command-line flags.
type options struct {
	help     bool
	version  bool
	setup    bool
	demo     bool
	verbose  bool
	watchDir string
}

var errMissingValue = errors.New("missing value")

func parseArgs(args []string) (options, error) {
	var o options
	for i := 0; i < len(args); i++ {
		switch a := args[i]; a {
		case "--help", "-h":
			o.help = true
		case "--version":
			o.version = true
		case "--setup":
			o.setup = true
		case "--demo":
			o.demo = true
		case "--verbose", "-v":
			o.verbose = true
		case "--watch":
			if i+1 >= len(args) {
				return o, fmt.Errorf("%s: %w", a, errMissingValue)
			}
			i++
			o.watchDir = args[i]
		default:
			return o, fmt.Errorf("unknown flag: %s", a)
		}
	}
	return o, nil
}

func usage() {
	fmt.Println("pillbox: toast notifications that morph from pill to card")
	fmt.Println()
	fmt.Println("Usage: pillbox [flags]")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  --help, -h      Show this help")
	fmt.Println("  --version       Print version")
	fmt.Println("  --setup         Re-run first-time configuration")
	fmt.Println("  --demo          Play the scripted demo on launch")
	fmt.Println("  --watch DIR     Toast file changes in DIR")
	fmt.Println("  --verbose, -v   Debug-level logging")
}

func main() {
	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\nRun pillbox --help for usage.\n", err)
		os.Exit(1)
	}
	if opts.help {
		usage()
		return
	}
	if opts.version {
		fmt.Println("pillbox " + getVersion())
		return
	}

	if opts.setup {
		path, err := configPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		runSetup(path, loadConfigRaw(), nil) // loadConfigRaw avoids triggering first-time setup
		return
	}

	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		fmt.Fprintln(os.Stderr, "Error: pillbox needs a terminal")
		os.Exit(1)
	}

	cfg := loadConfig()
	if opts.watchDir != "" {
		cfg.WatchDir = opts.watchDir
	}
	cfg.WatchDir = expandHome(cfg.WatchDir)

	log, logCloser, err := openLogger(cfg.logPath(), opts.verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open log file: %v\n", err)
	}
	defer logCloser.Close()
	log.Info().Str("version", getVersion()).Str("position", cfg.Position).Msg("starting")

	var watcher *fsnotify.Watcher
	if cfg.WatchDir != "" {
		watcher, err = fsnotify.NewWatcher()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not start file watcher: %v\n", err)
		} else if err := watcher.Add(cfg.WatchDir); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not watch directory: %v\n", err)
			watcher.Close()
			watcher = nil
		} else {
			defer watcher.Close()
			log.Info().Str("dir", cfg.WatchDir).Msg("watching")
		}
	}

	clock := newProgramClock()
	m, err := newModel(cfg, clock, log, watcher)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer m.zones.Close()
	if opts.demo {
		m.enterDemo() // Init schedules the first tick
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	clock.attach(p.Send)
	final, err := p.Run()
	if fm, ok := final.(model); ok {
		fm.teardown()
	}
	if err != nil {
		log.Error().Err(err).Msg("program exited")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("bye")
}
