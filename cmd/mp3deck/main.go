// Package main provides the entry point for the mp3deck player.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/jscyril/mp3deck/api"
	"github.com/jscyril/mp3deck/internal/audio"
	"github.com/jscyril/mp3deck/internal/config"
	"github.com/jscyril/mp3deck/internal/library"
	"github.com/jscyril/mp3deck/internal/player"
	"github.com/jscyril/mp3deck/internal/ui"
	"github.com/jscyril/mp3deck/pkg/events"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version is set at build time.
	Version = ""

	configFile string
	v          = viper.New()

	rootCmd = &cobra.Command{
		Use:          "mp3deck [FILE]",
		Short:        "A simple MP3 player for the terminal",
		Long:         "Play a single MP3 file with play/pause, stop, loop, volume, and seek controls.",
		SilenceUsage: true,
		Args:         cobra.MaximumNArgs(1),
		RunE:         execute,
	}
)

func execute(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, closer := setupLog(cfg)
	defer func() { _ = closer() }()

	var file string
	if len(args) == 1 {
		file, err = homedir.Expand(args[0])
		if err != nil {
			return fmt.Errorf("expand %s: %w", args[0], err)
		}
		if abs, err := filepath.Abs(file); err == nil {
			file = abs
		}
		if cfg.StartDir == "" {
			cfg.StartDir = filepath.Dir(file)
		}
	}

	return run(cmd.Context(), cfg, logger, file)
}

func loadConfig() (*config.Config, error) {
	return config.Load(v, config.LoadOptions{
		ConfigFile: configFile,
		EnvFile:    ".env",
	})
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger, file string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	mixer, err := audio.NewBeepMixer(cfg.Audio.SampleRate, cfg.Audio.Buffer)
	if err != nil {
		logger.Error("speaker unavailable", "err", err)
		return fmt.Errorf("init audio: %w", err)
	}
	defer func() { _ = mixer.Close() }()
	mixer.SetLogger(logger)

	bus := events.NewEventBus()
	defer bus.Close()
	go logEvents(ctx, bus.SubscribeAll(), logger)

	ctrl := player.NewController(mixer, player.Options{
		Bus:    bus,
		Logger: logger,
		Reader: library.NewMetadataReader(),
		Volume: cfg.Volume,
		Loop:   cfg.Loop,
	})
	go ctrl.Watch(ctx)

	if file != "" {
		// A bad file leaves the player open with the error message showing
		if err := ctrl.Load(file); err != nil {
			logger.Warn("startup file not loaded", "path", file, "err", err)
		}
	}

	p := ui.NewProgram(ui.NewModel(ctrl, bus, cfg, logger))

	if used := v.ConfigFileUsed(); used != "" {
		logger.Debug("watching config", "path", used)
		config.Watch(v,
			func(c *config.Config) { p.Send(ui.ConfigReloadedMsg{Config: c}) },
			func(err error) { logger.Warn("config reload rejected", "err", err) },
		)
	}

	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	logger.Info("started", "version", Version, "volume", cfg.Volume, "loop", cfg.Loop)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}
	logger.Info("exiting")
	return nil
}

// logEvents writes every controller event to the log until ctx ends or
// the bus closes.
func logEvents(ctx context.Context, ch <-chan api.PlayerEvent, logger *log.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			kv := []interface{}{
				"type", ev.Type,
				"status", ev.State.Status,
				"loop", ev.State.Loop,
				"volume", ev.State.Volume,
			}
			if ev.Payload != nil {
				kv = append(kv, "payload", ev.Payload)
			}
			if ev.Type == api.EventError {
				logger.Error("event", kv...)
				continue
			}
			logger.Debug("event", kv...)
		}
	}
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func init() {
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: search the user config dirs for mp3deck.yml)")
	rootCmd.Flags().Float64("volume", player.DefaultVolume, "initial volume, 0-100")
	rootCmd.Flags().Bool("loop", false, "start with loop mode on")
	rootCmd.Flags().String("start-dir", "", "directory the file picker opens in")
	rootCmd.PersistentFlags().String("log-file", "", "log file path")
	rootCmd.PersistentFlags().Bool("debug", false, "log at debug level")

	_ = v.BindPFlag("volume", rootCmd.Flags().Lookup("volume"))
	_ = v.BindPFlag("loop", rootCmd.Flags().Lookup("loop"))
	_ = v.BindPFlag("start_dir", rootCmd.Flags().Lookup("start-dir"))
	_ = v.BindPFlag("log.file", rootCmd.PersistentFlags().Lookup("log-file"))
	_ = v.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	rootCmd.AddCommand(configCmd)
}
