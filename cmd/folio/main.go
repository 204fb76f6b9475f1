// Command folio runs the portfolio site API, the animated background in a
// desktop window, or a terminal preview of the background.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
	"github.com/phanxgames/backdrop"
	"github.com/phanxgames/backdrop/inbox"
	"github.com/phanxgames/backdrop/site"
	"github.com/phanxgames/backdrop/termview"
)

const envPrefix = "FOLIO"

func main() {
	if err := run(); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return buildCLI().ParseAndRun(ctx, os.Args[1:])
}

// setupLogging installs a text handler on stderr for every package.
func setupLogging(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	l := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(l)
	backdrop.SetLogger(l)
	inbox.SetLogger(l)
	site.SetLogger(l)
	termview.SetLogger(l)
	return nil
}

// backgroundConfig loads the tuning overlay when set and applies the seed.
func backgroundConfig(tuning string, seed uint64) (backdrop.Config, error) {
	cfg := backdrop.DefaultConfig()
	if tuning != "" {
		var err error
		if cfg, err = backdrop.LoadConfig(tuning); err != nil {
			return cfg, err
		}
	}
	if seed != 0 {
		cfg.Seed = seed
	}
	return cfg, nil
}

func openStore(kind, dataDir string) (inbox.Store, error) {
	switch kind {
	case "file":
		return inbox.NewFileStore(filepath.Join(dataDir, "messages.json")), nil
	case "sqlite":
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		db, err := inbox.OpenSQLite(filepath.Join(dataDir, "messages.db"))
		if err != nil {
			return nil, err
		}
		return db, nil
	}
	return nil, fmt.Errorf("unknown store %q (want file or sqlite)", kind)
}

type serveConfig struct {
	addr    string
	store   string
	dataDir string
	secret  string
}

func execServe(ctx context.Context, c serveConfig) error {
	store, err := openStore(c.store, c.dataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	if c.secret == "" {
		slog.Warn("no admin secret set; the message list is locked", "env", envPrefix+"_SECRET")
	}
	return site.New(store, inbox.NewAuth(c.secret)).Serve(ctx, c.addr)
}

type windowConfig struct {
	theme       string
	width       int
	height      int
	overlay     bool
	transparent bool
	showFPS     bool
	debug       bool
	script      string
	exitWhen    bool
	fixedStep   bool
	seed        uint64
	tuning      string
}

func execBackground(c windowConfig) error {
	theme, err := backdrop.ParseTheme(c.theme)
	if err != nil {
		return err
	}
	cfg, err := backgroundConfig(c.tuning, c.seed)
	if err != nil {
		return err
	}
	rc := backdrop.RunConfig{
		Title:              "folio",
		Width:              c.width,
		Height:             c.height,
		Theme:              theme,
		Overlay:            c.overlay,
		Transparent:        c.transparent,
		ShowFPS:            c.showFPS,
		Debug:              c.debug,
		ExitWhenScriptDone: c.exitWhen,
		FixedStep:          c.fixedStep,
	}
	if c.script != "" {
		data, err := os.ReadFile(c.script)
		if err != nil {
			return fmt.Errorf("read script: %w", err)
		}
		if rc.Script, err = backdrop.LoadTestScript(data); err != nil {
			return err
		}
	}
	return backdrop.Run(cfg, rc)
}

type termConfig struct {
	theme     string
	fps       int
	seed      uint64
	tuning    string
	fixedStep bool
}

func execTerm(ctx context.Context, c termConfig) error {
	theme, err := backdrop.ParseTheme(c.theme)
	if err != nil {
		return err
	}
	cfg, err := backgroundConfig(c.tuning, c.seed)
	if err != nil {
		return err
	}
	screen, err := termview.Open()
	if err != nil {
		return err
	}
	v := termview.New(screen, cfg, termview.Config{
		Theme:     theme,
		FPS:       c.fps,
		FixedStep: c.fixedStep,
	})
	defer v.Close()
	return v.Run(ctx)
}

func buildCLI() *ffcli.Command {
	rootFlagSet := flag.NewFlagSet("folio", flag.ExitOnError)
	logLevel := rootFlagSet.String("log-level", "info", "Log level: debug, info, warn, error")
	configPath := rootFlagSet.String("config", "", "Config file with one flag per line")

	// Every subcommand reads the root -config file. Lines naming flags of
	// another command are skipped.
	subOptions := []ff.Option{
		ff.WithEnvVarPrefix(envPrefix),
		ff.WithConfigFileVia(configPath),
		ff.WithConfigFileParser(ff.PlainParser),
		ff.WithIgnoreUndefined(true),
	}

	// Serve command
	serveFlagSet := flag.NewFlagSet("folio serve", flag.ExitOnError)
	serveAddr := serveFlagSet.String("addr", ":8080", "Listen address")
	serveStore := serveFlagSet.String("store", "file", "Message store: file or sqlite")
	serveData := serveFlagSet.String("data", "data", "Directory for stored messages")
	serveSecret := serveFlagSet.String("secret", "", "Admin secret for reading messages (or "+envPrefix+"_SECRET)")

	serveCmd := &ffcli.Command{
		Name:       "serve",
		ShortUsage: "folio serve [flags]",
		ShortHelp:  "Serve the site API",
		FlagSet:    serveFlagSet,
		Options:    subOptions,
		Exec: func(ctx context.Context, _ []string) error {
			if err := setupLogging(*logLevel); err != nil {
				return err
			}
			return execServe(ctx, serveConfig{
				addr:    *serveAddr,
				store:   *serveStore,
				dataDir: *serveData,
				secret:  *serveSecret,
			})
		},
	}

	// Background command
	bgFlagSet := flag.NewFlagSet("folio background", flag.ExitOnError)
	bgTheme := bgFlagSet.String("theme", "dark", "Theme: light or dark")
	bgWidth := bgFlagSet.Int("width", 1280, "Window width")
	bgHeight := bgFlagSet.Int("height", 720, "Window height")
	bgOverlay := bgFlagSet.Bool("overlay", false, "Undecorated click-through window on top of the desktop")
	bgTransparent := bgFlagSet.Bool("transparent", false, "Leave the window background see-through")
	bgFPS := bgFlagSet.Bool("fps-overlay", false, "Show an FPS counter")
	bgDebug := bgFlagSet.Bool("debug", false, "Log frame timings at debug level")
	bgScript := bgFlagSet.String("script", "", "JSON test script to drive the window")
	bgExit := bgFlagSet.Bool("exit-when-done", false, "Close the window when the script finishes")
	bgFixed := bgFlagSet.Bool("fixed-step", false, "Advance 1/60 s per frame for reproducible captures")
	bgSeed := bgFlagSet.Uint64("seed", 0, "Random seed (0 picks one)")
	bgTuning := bgFlagSet.String("tuning", "", "JSON file overriding scene tuning")

	bgCmd := &ffcli.Command{
		Name:       "background",
		ShortUsage: "folio background [flags]",
		ShortHelp:  "Show the animated background in a window",
		FlagSet:    bgFlagSet,
		Options:    subOptions,
		Exec: func(_ context.Context, _ []string) error {
			if err := setupLogging(*logLevel); err != nil {
				return err
			}
			return execBackground(windowConfig{
				theme:       *bgTheme,
				width:       *bgWidth,
				height:      *bgHeight,
				overlay:     *bgOverlay,
				transparent: *bgTransparent,
				showFPS:     *bgFPS,
				debug:       *bgDebug,
				script:      *bgScript,
				exitWhen:    *bgExit,
				fixedStep:   *bgFixed,
				seed:        *bgSeed,
				tuning:      *bgTuning,
			})
		},
	}

	// Term command
	termFlagSet := flag.NewFlagSet("folio term", flag.ExitOnError)
	termTheme := termFlagSet.String("theme", "dark", "Theme: light or dark")
	termFPS := termFlagSet.Int("fps", 30, "Target frame rate")
	termSeed := termFlagSet.Uint64("seed", 0, "Random seed (0 picks one)")
	termTuning := termFlagSet.String("tuning", "", "JSON file overriding scene tuning")
	termFixed := termFlagSet.Bool("fixed-step", false, "Advance 1/fps s per frame instead of wall time")

	termCmd := &ffcli.Command{
		Name:       "term",
		ShortUsage: "folio term [flags]",
		ShortHelp:  "Preview the background in the terminal",
		LongHelp:   "Controls:\n  t               Toggle light/dark theme\n  q, Esc, Ctrl-C  Quit",
		FlagSet:    termFlagSet,
		Options:    subOptions,
		Exec: func(ctx context.Context, _ []string) error {
			if err := setupLogging(*logLevel); err != nil {
				return err
			}
			return execTerm(ctx, termConfig{
				theme:     *termTheme,
				fps:       *termFPS,
				seed:      *termSeed,
				tuning:    *termTuning,
				fixedStep: *termFixed,
			})
		},
	}

	// Root command
	root := &ffcli.Command{
		ShortUsage: "folio [flags] <subcommand>",
		ShortHelp:  "Portfolio site API and animated background",
		FlagSet:    rootFlagSet,
		Options: []ff.Option{
			ff.WithEnvVarPrefix(envPrefix),
			ff.WithConfigFileFlag("config"),
			ff.WithConfigFileParser(ff.PlainParser),
			ff.WithIgnoreUndefined(true),
		},
		Subcommands: []*ffcli.Command{serveCmd, bgCmd, termCmd},
	}
	root.Exec = func(context.Context, []string) error {
		fmt.Fprintln(os.Stderr, ffcli.DefaultUsageFunc(root))
		return flag.ErrHelp
	}
	return root
}
