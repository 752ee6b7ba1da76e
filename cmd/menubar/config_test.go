package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/menubar/internal/config"
	"github.com/jmylchreest/menubar/internal/dbus"
)

func TestSetOption_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menubar", "menubar.toml")

	require.NoError(t, setOption(path, "window.width", "320"))
	require.NoError(t, setOption(path, "window.anchor", "bottom-left"))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 320, cfg.Window.Width)
	assert.Equal(t, "bottom-left", cfg.Window.Anchor)
	assert.Equal(t, config.DefaultHeight, cfg.Window.Height)
}

func TestSetOption_ClearsOptional(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menubar.toml")

	require.NoError(t, setOption(path, "window.x", "25"))
	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Window.X)
	assert.Equal(t, 25, *cfg.Window.X)

	require.NoError(t, setOption(path, "window.x", ""))
	cfg, err = config.LoadConfig(path)
	require.NoError(t, err)
	assert.Nil(t, cfg.Window.X)
}

func TestSetOption_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menubar.toml")

	assert.ErrorIs(t, setOption(path, "window.colour", "red"), config.ErrUnknownOption)
	assert.Error(t, setOption(path, "window.width", "10"))
	assert.Error(t, setOption(path, "window.anchor", "middle"))
	assert.NoFileExists(t, path)
}

func TestGetOption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menubar.toml")
	require.NoError(t, setOption(path, "tray.tooltip", "Notes"))

	var buf bytes.Buffer
	require.NoError(t, getOption(&buf, path, "tray.tooltip"))
	assert.Equal(t, "Notes\n", buf.String())

	buf.Reset()
	require.NoError(t, getOption(&buf, path, "window.height"))
	assert.Equal(t, "400\n", buf.String())

	assert.ErrorIs(t, getOption(&buf, path, "nope"), config.ErrUnknownOption)
}

func TestPrintEvents(t *testing.T) {
	ts := time.Date(2024, 5, 1, 9, 30, 15, 0, time.Local)
	events := make(chan dbus.Lifecycle, 2)
	events <- dbus.Lifecycle{Event: "show", WindowID: "01HZX", Time: ts}
	events <- dbus.Lifecycle{Event: "after-show", WindowID: "01HZX", Time: ts}
	close(events)

	var buf bytes.Buffer
	require.NoError(t, printEvents(context.Background(), &buf, events))
	assert.Equal(t, "09:30:15.000 show 01HZX\n09:30:15.000 after-show 01HZX\n", buf.String())
}

func TestPrintEvents_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	require.NoError(t, printEvents(ctx, &buf, make(chan dbus.Lifecycle)))
	assert.Empty(t, buf.String())
}
