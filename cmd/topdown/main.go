// Package main runs the top-down driving game.
//
// Architecture Overview:
// - One session goroutine runs the control tick (20ms) and physics tick (10ms)
// - The display backend runs on the main goroutine, rendering snapshots and
//   delivering key press/release events to the session's input state
// - SIGINT/SIGTERM, closing the window or quitting the terminal cancel a
//   shared context and everything shuts down cleanly
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/race/topdown/config"
	"github.com/race/topdown/internal/display/terminal"
	"github.com/race/topdown/internal/display/window"
	"github.com/race/topdown/internal/game"
	"github.com/race/topdown/internal/logging"
	"github.com/race/topdown/internal/sprite"
)

// backend is a display that owns the calling goroutine until it exits
type backend interface {
	Presenter() game.Presenter
	Run(ctx context.Context, sink game.KeySink) error
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("topdown", pflag.ContinueOnError)
	configPath := flags.StringP("config", "c", "", "path to a config file")
	displayName := flags.StringP("display", "d", "", "display backend: window or terminal")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	cfg, err := loadConfig(*configPath, *displayName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "topdown: %v\n", err)
		return 1
	}

	log, closer, err := setupLogging(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "topdown: %v\n", err)
		return 1
	}
	defer closer.Close()

	// Print startup banner with configuration
	log.Info().Msg("=================================")
	log.Info().Msg("  Top-down Driving")
	log.Info().Msg("=================================")
	log.Info().Str("display", cfg.Display).Str("title", cfg.Title).Msg("  Config")
	log.Info().Dur("control", config.ControlTickInterval).Dur("physics", config.PhysicsTickInterval).Msg("  Tick rates")
	log.Info().Float64("maxSpeed", config.MaxSpeed).Float64("acceleration", config.Acceleration).Msg("  Vehicle")
	log.Info().Msg("=================================")

	// A missing or broken sprite is fatal at startup
	car, err := sprite.Load(cfg.Sprite)
	if err != nil {
		log.Error().Err(err).Str("sprite", cfg.Sprite).Msg("Failed to load sprite")
		return 1
	}
	log.Debug().Str("sprite", car.ID).Int("width", car.Width).Int("height", car.Height).Msg("Sprite loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var b backend
	switch cfg.Display {
	case config.DisplayTerminal:
		screen, err := tcell.NewScreen()
		if err != nil {
			log.Error().Err(err).Msg("Failed to create terminal screen")
			return 1
		}
		if err := screen.Init(); err != nil {
			log.Error().Err(err).Msg("Failed to initialize terminal screen")
			return 1
		}
		defer screen.Fini()
		b = terminal.New(screen, log)
	default:
		b = window.New(cfg, car, log)
	}

	if err := play(ctx, b, log); err != nil {
		log.Error().Err(err).Msg("Game error")
		return 1
	}
	return 0
}

// loadConfig reads the config file and applies command-line overrides
func loadConfig(path, displayName string) (*config.AppConfig, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if displayName != "" {
		cfg.Display = displayName
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// setupLogging writes to stderr, except in terminal mode where the screen
// is taken and logs go to a file instead.
func setupLogging(cfg *config.AppConfig) (zerolog.Logger, io.Closer, error) {
	opts := logging.Options{
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
		Console: os.Stderr,
	}
	if cfg.Display == config.DisplayTerminal {
		opts.Console = nil
		if opts.File == "" {
			opts.File = filepath.Join(os.TempDir(), "topdown.log")
		}
	}
	return logging.New(opts)
}

// play runs a session against a display until either side stops.
// The display runs on the calling goroutine.
func play(ctx context.Context, b backend, log zerolog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	session := game.NewSession(b.Presenter(), log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return session.Run(gctx)
	})

	err := b.Run(gctx, session.Input())
	cancel()

	if werr := g.Wait(); err == nil {
		err = werr
	}

	stats := session.Stats()
	log.Info().
		Str("session", stats.ID).
		Uint64("controlTicks", stats.ControlTicks).
		Uint64("physicsTicks", stats.PhysicsTicks).
		Msg("Shut down")
	return err
}
