// Package main is the entry point for gapbuf, a gap buffer playground.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"github.com/amin-mir/gap-buffer/internal/config"
	"github.com/amin-mir/gap-buffer/internal/config/loader"
	"github.com/amin-mir/gap-buffer/internal/demo"
	"github.com/amin-mir/gap-buffer/internal/engine/gapbuffer"
	"github.com/amin-mir/gap-buffer/internal/logging"
	"github.com/amin-mir/gap-buffer/internal/script"
	"github.com/amin-mir/gap-buffer/internal/viewer"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// options holds the parsed command line.
type options struct {
	configPath  string
	scriptPath  string
	watch       bool
	view        bool
	printConfig bool
	overrides   loader.MapLoader
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stdout, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	if opts == nil {
		return 0
	}

	logCfg := logging.DefaultConfig()
	logCfg.Output = stderr
	logger := logging.New(logCfg)

	cfg, err := config.LoadFile(opts.configPath, opts.overrides)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to load configuration: %v\n", err)
		return 1
	}
	logger.SetLevel(cfg.LogLevel())
	logger.WithFields(map[string]any{
		"file":     opts.configPath,
		"gap_size": cfg.Buffer.GapSize,
	}).Debug("configuration loaded")

	switch {
	case opts.printConfig:
		err = cfg.WriteTOML(stdout)
	case opts.scriptPath != "":
		err = runScript(ctx, cfg, opts, stdout, logger)
	case opts.view:
		err = runViewer(ctx, cfg, logger)
	default:
		err = runDemo(cfg, stdout, logger)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags(args []string, stdout, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("gapbuf", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{overrides: loader.MapLoader{}}
	var (
		showVersion bool
		logLevel    string
		format      string
		labelPrefix string
		gapSize     int
		count       int
	)

	fs.StringVar(&opts.configPath, "config", "", "Path to a TOML configuration file")
	fs.StringVar(&opts.configPath, "c", "", "Path to a TOML configuration file (shorthand)")
	fs.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	fs.StringVar(&format, "format", config.FormatText, "Demo output format (text, json)")
	fs.StringVar(&labelPrefix, "label-prefix", "h", "Prefix of the demo element labels")
	fs.IntVar(&gapSize, "gap-size", gapbuffer.DefaultGapSize, "Gap reserved when a buffer is created")
	fs.IntVar(&count, "count", 7, "Number of elements the demo starts with")
	fs.StringVar(&opts.scriptPath, "script", "", "Run a Lua script instead of the demo")
	fs.BoolVar(&opts.watch, "watch", false, "Re-run the script whenever it changes")
	fs.BoolVar(&opts.view, "view", false, "Edit a buffer interactively in the terminal")
	fs.BoolVar(&opts.printConfig, "print-config", false, "Print the effective configuration and exit")
	fs.BoolVar(&showVersion, "version", false, "Show version information")
	fs.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "gapbuf - gap buffer playground\n\n")
		fmt.Fprintf(stderr, "Usage: gapbuf [options]\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  gapbuf                        Run the reference scenario\n")
		fmt.Fprintf(stderr, "  gapbuf -format json -count 10 Print each step as JSON\n")
		fmt.Fprintf(stderr, "  gapbuf -script edit.lua -watch Re-run a script on save\n")
		fmt.Fprintf(stderr, "  gapbuf -view                  Edit a buffer with the keyboard\n")
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	if showVersion {
		fmt.Fprintf(stdout, "gapbuf %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return nil, nil
	}
	if opts.watch && opts.scriptPath == "" {
		return nil, errors.New("-watch requires -script")
	}

	// Only flags given on the command line override the file and environment.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "log-level":
			opts.overrides.Set("logging.level", logLevel)
		case "format":
			opts.overrides.Set("demo.format", format)
		case "label-prefix":
			opts.overrides.Set("demo.label_prefix", labelPrefix)
		case "gap-size":
			opts.overrides.Set("buffer.gap_size", gapSize)
		case "count":
			opts.overrides.Set("demo.count", count)
		}
	})
	return opts, nil
}

func runDemo(cfg *config.Config, stdout io.Writer, logger *logging.Logger) error {
	s, err := demo.Reference(cfg.Demo.LabelPrefix, cfg.Demo.Count)
	if err != nil {
		return err
	}

	runner := demo.NewRunner(stdout,
		demo.WithFormat(cfg.Demo.Format),
		demo.WithGapSize(cfg.Buffer.GapSize),
		demo.WithLogger(logger),
	)
	_, err = runner.Run(s)
	return err
}

func runScript(ctx context.Context, cfg *config.Config, opts *options, stdout io.Writer, logger *logging.Logger) error {
	once := func() error {
		state := script.NewState(
			script.WithGapSize(cfg.Buffer.GapSize),
			script.WithOutput(stdout),
			script.WithLogger(logger),
		)
		defer state.Close()
		return state.DoFile(ctx, opts.scriptPath)
	}

	if err := once(); err != nil {
		if !opts.watch {
			return err
		}
		logger.Error("script failed: %v", err)
	}
	if !opts.watch {
		return nil
	}

	reloader, err := script.NewReloader(opts.scriptPath, script.WithReloadLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to watch script: %w", err)
	}
	defer reloader.Close()

	logger.Info("watching %s", opts.scriptPath)
	return reloader.Run(ctx, once)
}

func runViewer(ctx context.Context, cfg *config.Config, logger *logging.Logger) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	defer screen.Fini()

	// The screen owns the terminal until Fini.
	logger.Disable()
	defer logger.Enable()

	gb := gapbuffer.New(
		demo.Labels(cfg.Demo.LabelPrefix, 0, cfg.Demo.Count),
		gapbuffer.WithGapSize[string](cfg.Buffer.GapSize),
	)
	return viewer.New(screen, gb, logger).Run(ctx)
}
