package main

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/jscyril/mp3deck/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// setupLog sends logs to a rotating file. The terminal belongs to the TUI.
func setupLog(cfg *config.Config) (*log.Logger, func() error) {
	path := cfg.Log.File
	if path == "" {
		path = config.DefaultLogFile()
	}

	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "mp3deck",
		Level:           log.InfoLevel,
	})
	if cfg.Debug {
		logger.SetLevel(log.DebugLevel)
	}
	log.SetDefault(logger)

	return logger, w.Close
}
