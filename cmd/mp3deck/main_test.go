package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jscyril/mp3deck/api"
	"github.com/jscyril/mp3deck/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigCommand_PrintsResolvedValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mp3deck.yml")
	require.NoError(t, os.WriteFile(path, []byte("volume: 70\n"), 0644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"config", "--config", path})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "# config file: "+path)
	assert.Contains(t, out.String(), `volume: "70"`)
	assert.Contains(t, out.String(), `window.title: "Simple MP3 Player"`)
}

func TestSetupLog_WritesToFile(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Log.File = filepath.Join(t.TempDir(), "logs", "mp3deck.log")
	cfg.Debug = true

	logger, closer := setupLog(cfg)
	t.Cleanup(func() { log.SetDefault(log.New(os.Stderr)) })

	logger.Debug("hello", "k", "v")
	require.NoError(t, closer())

	data, err := os.ReadFile(cfg.Log.File)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	assert.Contains(t, string(data), "k=v")
}

func TestLogEvents_StopsWhenChannelCloses(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})

	ch := make(chan api.PlayerEvent, 2)
	ch <- api.PlayerEvent{Type: api.EventTrackLoaded}
	close(ch)

	done := make(chan struct{})
	go func() {
		logEvents(context.Background(), ch, logger)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("logEvents did not return")
	}
	assert.Contains(t, buf.String(), "event")
}
